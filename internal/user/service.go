package user

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/satyanandshreyash/Albearoti-Solutions-Inc-Assignment/internal/auth"
	"github.com/satyanandshreyash/Albearoti-Solutions-Inc-Assignment/internal/utils"
)

var (
	ErrUserExists         = errors.New("user already exists")
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

type UserServiceInterface interface {
	Register(username, email, password string) (*User, string, error)
	Login(email, password string) (*User, string, error)
}

type UserService struct {
	repo      UserRepositoryInterface
	db        *sql.DB
	jwtSecret string
	tokenTTL  time.Duration
}

func NewUserService(repo UserRepositoryInterface, db *sql.DB, jwtSecret string, tokenTTL time.Duration) UserServiceInterface {
	return &UserService{
		repo:      repo,
		db:        db,
		jwtSecret: jwtSecret,
		tokenTTL:  tokenTTL,
	}
}

// Register creates a user with a hashed password and issues an access token
// for the new identity. Registering an email twice never creates a second
// user.
func (s *UserService) Register(username, email, password string) (*User, string, error) {
	existing, err := s.repo.GetByEmail(s.db, email)
	if err != nil && !errors.Is(err, ErrUserNotFound) {
		return nil, "", err
	}
	if existing != nil {
		return nil, "", ErrUserExists
	}

	hashedPassword, err := auth.GeneratePasswordHash(password)
	if err != nil {
		return nil, "", fmt.Errorf("failed to hash password: %w", err)
	}

	user := &User{
		Username: username,
		Email:    email,
		Password: hashedPassword,
	}

	if err := utils.WithTransaction(s.db, func(tx *sql.Tx) error {
		return s.repo.Create(tx, user)
	}); err != nil {
		return nil, "", err
	}

	token, err := auth.GenerateToken(user.ID, user.Email, s.tokenTTL, s.jwtSecret)
	if err != nil {
		return nil, "", err
	}

	return user, token, nil
}

// Login verifies the credentials against the stored hash and issues an
// access token. Token verification later is stateless, so there is no
// server-side session to create here.
func (s *UserService) Login(email, password string) (*User, string, error) {
	user, err := s.repo.GetByEmail(s.db, email)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, "", ErrUserNotFound
		}
		return nil, "", err
	}

	if err := auth.ComparePasswordHash([]byte(user.Password), password); err != nil {
		return nil, "", ErrInvalidCredentials
	}

	token, err := auth.GenerateToken(user.ID, user.Email, s.tokenTTL, s.jwtSecret)
	if err != nil {
		return nil, "", err
	}

	return user, token, nil
}
