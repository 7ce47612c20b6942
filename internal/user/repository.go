package user

import (
	"database/sql"
	"errors"

	"github.com/sirupsen/logrus"
)

type UserRepository struct{}

type UserRepositoryInterface interface {
	Create(tx *sql.Tx, user *User) error
	GetByEmail(db *sql.DB, email string) (*User, error)
}

func NewUserRepository() UserRepositoryInterface {
	return &UserRepository{}
}

// Create inserts a new user and fills in the store-assigned id.
func (r *UserRepository) Create(tx *sql.Tx, user *User) error {
	query := `
		INSERT INTO users (
			username, email, password, created_at
		)
		VALUES ($1, $2, $3, NOW())
		RETURNING id, created_at
	`

	err := tx.QueryRow(
		query,
		user.Username,
		user.Email,
		user.Password,
	).Scan(&user.ID, &user.CreatedAt)

	if err != nil {
		logrus.WithError(err).Error("Failed to create user")
		return err
	}

	logrus.WithFields(logrus.Fields{
		"user_id": user.ID,
		"email":   user.Email,
	}).Info("User created successfully")

	return nil
}

// GetByEmail retrieves a user by email, the login key.
func (r *UserRepository) GetByEmail(db *sql.DB, email string) (*User, error) {
	query := `
		SELECT id, username, email, password, created_at
		FROM users
		WHERE email = $1
	`

	user := &User{}
	err := db.QueryRow(query, email).Scan(
		&user.ID,
		&user.Username,
		&user.Email,
		&user.Password,
		&user.CreatedAt,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		logrus.WithError(err).Error("Failed to get user by email")
		return nil, err
	}

	return user, nil
}
