package account

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrUserNotFound is returned when no user has the requested username.
	ErrUserNotFound = errors.New("user not found")
	// ErrDuplicateUser is returned when the username is already taken.
	ErrDuplicateUser = errors.New("user already exists")
	// ErrInvalidInput is returned for an empty username or password.
	ErrInvalidInput = errors.New("invalid account input")
)

// User is a registered account. PasswordHash is a bcrypt digest, never cleartext.
type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Repository persists users.
type Repository interface {
	// CreateUser inserts a user. Returns ErrDuplicateUser when the username
	// violates the uniqueness constraint.
	CreateUser(ctx context.Context, username, passwordHash string) (User, error)

	// GetUserByUsername returns ErrUserNotFound when no row matches.
	GetUserByUsername(ctx context.Context, username string) (User, error)

	// UpdatePasswordHash replaces the stored credential. Returns ErrUserNotFound
	// when no row matches.
	UpdatePasswordHash(ctx context.Context, username, passwordHash string) error
}
