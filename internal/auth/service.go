package auth

import (
	"errors"
	"fmt"

	"github.com/dangcap/market/internal/config"
	"github.com/dangcap/market/internal/entities"
)

var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrUserExists         = errors.New("username already exists")
	ErrUsernameRequired   = errors.New("username is required")
	ErrPasswordRequired   = errors.New("password is required")
	ErrPasswordMismatch   = errors.New("passwords do not match")
)

// UserStore is the credential store the auth service depends on. The
// database/users repository implements it; tests substitute an in-memory fake.
type UserStore interface {
	// CreateUser persists a new user. The password argument is the stored
	// credential, already hashed by the caller.
	CreateUser(username, password string, role entities.UserRole) (*entities.User, error)
	// GetUserByUsername returns an error when no user has that username.
	GetUserByUsername(username string) (*entities.User, error)
	GetUserByID(id uint) (*entities.User, error)
}

// Service handles registration and credential verification.
type Service struct {
	store  UserStore
	config config.Auth
}

// NewService creates a new authentication service.
func NewService(store UserStore, cfg config.Auth) *Service {
	return &Service{store: store, config: cfg}
}

// Register validates the registration form and creates a user with role
// "user". password2 is the confirmation field; an empty confirmation is
// accepted for clients that do not send one.
func (s *Service) Register(username, password, password2 string) (*entities.User, error) {
	if username == "" {
		return nil, ErrUsernameRequired
	}
	if password == "" {
		return nil, ErrPasswordRequired
	}
	if password2 != "" && password != password2 {
		return nil, ErrPasswordMismatch
	}

	if _, err := s.store.GetUserByUsername(username); err == nil {
		return nil, ErrUserExists
	}

	hash, err := HashPassword(password, s.config.BcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user, err := s.store.CreateUser(username, hash, entities.UserRoleUser)
	if err != nil {
		// A concurrent registration can slip past the existence check; the
		// store's unique index catches it.
		return nil, ErrUserExists
	}

	return user, nil
}

// Authenticate verifies a username/password pair and returns the user.
// Lookup failures and bad passwords both map to ErrInvalidCredentials so the
// response does not reveal which usernames exist.
func (s *Service) Authenticate(username, password string) (*entities.User, error) {
	user, err := s.store.GetUserByUsername(username)
	if err != nil {
		return nil, ErrInvalidCredentials
	}

	if err := VerifyPassword(password, user.Password); err != nil {
		if errors.Is(err, ErrInvalidPassword) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	return user, nil
}

// GetUserByID retrieves a user by their ID.
func (s *Service) GetUserByID(id uint) (*entities.User, error) {
	return s.store.GetUserByID(id)
}
