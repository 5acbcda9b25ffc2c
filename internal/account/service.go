package account

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"github.com/i474232898/weather-favorites/internal/apperror"
	"github.com/i474232898/weather-favorites/internal/common"
)

// MaxPasswordBytes is the longest password bcrypt accepts.
const MaxPasswordBytes = 72

// Service is the credential store: account creation, password verification
// and password rotation.
type Service struct {
	repo Repository
	cost int
	log  logrus.FieldLogger
}

// NewService creates a Service hashing with the given bcrypt cost.
// Costs outside bcrypt's accepted range fall back to bcrypt.DefaultCost.
func NewService(repo Repository, cost int, log logrus.FieldLogger) *Service {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &Service{
		repo: repo,
		cost: cost,
		log:  log.WithField("component", "account"),
	}
}

// CreateUser registers username with a freshly salted bcrypt digest of password.
func (s *Service) CreateUser(ctx context.Context, username, password string) (User, error) {
	if common.Blank(username) || password == "" {
		return User{}, apperror.NewValidationError("Username and password are required.", ErrInvalidInput)
	}
	if len(password) > MaxPasswordBytes {
		return User{}, passwordTooLong(ErrInvalidInput)
	}

	_, err := s.repo.GetUserByUsername(ctx, username)
	switch {
	case err == nil:
		return User{}, duplicateUser(username, ErrDuplicateUser)
	case !errors.Is(err, ErrUserNotFound):
		return User{}, apperror.NewInternalError("lookup user", err)
	}

	hash, err := s.hash(password)
	if err != nil {
		return User{}, err
	}

	user, err := s.repo.CreateUser(ctx, username, hash)
	if err != nil {
		// Another request may have registered the name after the lookup above.
		if errors.Is(err, ErrDuplicateUser) {
			return User{}, duplicateUser(username, err)
		}
		return User{}, apperror.NewInternalError("create user", err)
	}

	s.log.WithField("username", username).Info("account created")
	return user, nil
}

// Verify compares password against the stored credential for username.
func (s *Service) Verify(ctx context.Context, username, password string) (bool, error) {
	user, err := s.repo.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return false, apperror.NewNotFoundError(fmt.Sprintf("User '%s' not found.", username), err)
		}
		return false, apperror.NewInternalError("lookup user", err)
	}

	return s.matches(user, password)
}

// UpdatePassword replaces the credential for username with a digest of newPassword.
func (s *Service) UpdatePassword(ctx context.Context, username, newPassword string) error {
	if newPassword == "" {
		return apperror.NewValidationError("New password must not be empty.", ErrInvalidInput)
	}
	if len(newPassword) > MaxPasswordBytes {
		return passwordTooLong(ErrInvalidInput)
	}

	hash, err := s.hash(newPassword)
	if err != nil {
		return err
	}

	if err := s.repo.UpdatePasswordHash(ctx, username, hash); err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return apperror.NewNotFoundError(fmt.Sprintf("User '%s' not found.", username), err)
		}
		return apperror.NewInternalError("update password", err)
	}

	s.log.WithField("username", username).Info("password updated")
	return nil
}

// Authenticate resolves a credential into a typed result; it never panics
// and never returns a bare error.
func (s *Service) Authenticate(ctx context.Context, username, password string) AuthResult {
	log := s.log.WithField("username", username)

	if common.Blank(username) || password == "" {
		return AuthResult{Kind: AuthMissingCredentials}
	}

	user, err := s.repo.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			log.Warn("authentication failed: unknown user")
			return AuthResult{Kind: AuthUnknownUser, Err: err}
		}
		log.WithError(err).Error("authentication failed: user lookup")
		return AuthResult{Kind: AuthUnavailable, Err: err}
	}

	ok, err := s.matches(user, password)
	if err != nil {
		log.WithError(err).Error("authentication failed: hash comparison")
		return AuthResult{Kind: AuthUnavailable, Err: err}
	}
	if !ok {
		log.Warn("authentication failed: bad password")
		return AuthResult{Kind: AuthBadPassword}
	}

	return AuthResult{User: user, Kind: AuthOK}
}

func (s *Service) hash(password string) (string, error) {
	digest, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return "", passwordTooLong(err)
		}
		return "", apperror.NewInternalError("hash password", err)
	}
	return string(digest), nil
}

func (s *Service) matches(user User, password string) (bool, error) {
	// bcrypt compares only the first 72 bytes; longer input never matches.
	if len(password) > MaxPasswordBytes {
		return false, nil
	}
	err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password))
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
		return false, nil
	default:
		return false, apperror.NewInternalError("compare password", err)
	}
}

func passwordTooLong(cause error) error {
	return apperror.NewValidationError(
		fmt.Sprintf("Password must be at most %d bytes.", MaxPasswordBytes), cause)
}

func duplicateUser(username string, cause error) error {
	return apperror.NewConflictError(fmt.Sprintf("User with username '%s' already exists.", username), cause)
}
