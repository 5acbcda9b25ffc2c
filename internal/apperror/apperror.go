// Package apperror defines the error taxonomy shared by the domain services
// and the HTTP layer.
package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an application error.
type Kind int

const (
	// Internal is an unclassified failure; its message is never shown to clients.
	Internal Kind = iota
	// Validation is missing or malformed input.
	Validation
	// Authentication is a bad or missing credential.
	Authentication
	// NotFound is an unknown user or favorite.
	NotFound
	// Conflict is a duplicate user or location.
	Conflict
	// Upstream is a weather provider failure.
	Upstream
)

func (k Kind) String() string {
	switch k {
	case Validation:
		return "validation"
	case Authentication:
		return "authentication"
	case NotFound:
		return "not_found"
	case Conflict:
		return "conflict"
	case Upstream:
		return "upstream"
	default:
		return "internal"
	}
}

// AppError carries a client-facing message plus the underlying cause.
type AppError struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// StatusCode maps the error kind to an HTTP status.
func (e *AppError) StatusCode() int {
	switch e.Kind {
	case Validation, Conflict:
		return http.StatusBadRequest
	case Authentication:
		return http.StatusUnauthorized
	case NotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// Safe reports whether Message may be returned to the caller verbatim.
func (e *AppError) Safe() bool {
	switch e.Kind {
	case Validation, Authentication, NotFound, Conflict:
		return true
	default:
		return false
	}
}

// New creates an AppError of the given kind.
func New(kind Kind, message string, err error) *AppError {
	return &AppError{Kind: kind, Message: message, Err: err}
}

func NewValidationError(message string, err error) *AppError {
	return New(Validation, message, err)
}

func NewAuthError(message string, err error) *AppError {
	return New(Authentication, message, err)
}

func NewNotFoundError(message string, err error) *AppError {
	return New(NotFound, message, err)
}

func NewConflictError(message string, err error) *AppError {
	return New(Conflict, message, err)
}

func NewUpstreamError(message string, err error) *AppError {
	return New(Upstream, message, err)
}

func NewInternalError(message string, err error) *AppError {
	return New(Internal, message, err)
}

// As returns the outermost *AppError in err's chain.
func As(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// KindOf returns the kind of err, or Internal when err is not an AppError.
func KindOf(err error) Kind {
	if appErr, ok := As(err); ok {
		return appErr.Kind
	}
	return Internal
}

func IsValidation(err error) bool { return err != nil && KindOf(err) == Validation }

func IsAuthError(err error) bool { return err != nil && KindOf(err) == Authentication }

func IsNotFound(err error) bool { return err != nil && KindOf(err) == NotFound }

func IsConflict(err error) bool { return err != nil && KindOf(err) == Conflict }

func IsUpstream(err error) bool { return err != nil && KindOf(err) == Upstream }
