package auth

import "golang.org/x/crypto/bcrypt"

// GeneratePasswordHash produces a salted bcrypt hash of the password.
// Plaintext is never stored.
func GeneratePasswordHash(password string) (string, error) {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}

	return string(hashedPassword), nil
}

// ComparePasswordHash checks a password against its stored hash in constant
// time.
func ComparePasswordHash(hashedPassword []byte, password string) error {
	return bcrypt.CompareHashAndPassword(hashedPassword, []byte(password))
}
