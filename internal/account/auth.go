package account

import "github.com/i474232898/weather-favorites/internal/apperror"

// AuthErrorKind says why an authentication attempt was rejected.
type AuthErrorKind int

const (
	AuthOK AuthErrorKind = iota
	AuthMissingCredentials
	AuthUnknownUser
	AuthBadPassword
	AuthUnavailable
)

func (k AuthErrorKind) String() string {
	switch k {
	case AuthOK:
		return "ok"
	case AuthMissingCredentials:
		return "missing_credentials"
	case AuthUnknownUser:
		return "unknown_user"
	case AuthBadPassword:
		return "bad_password"
	default:
		return "unavailable"
	}
}

// AuthResult is either an authenticated User or the reason it was refused.
type AuthResult struct {
	User User
	Kind AuthErrorKind
	Err  error
}

// OK reports whether the credential was accepted.
func (r AuthResult) OK() bool {
	return r.Kind == AuthOK
}

// Message is the client-facing explanation for a refused credential.
func (r AuthResult) Message() string {
	switch r.Kind {
	case AuthOK:
		return ""
	case AuthMissingCredentials:
		return "Username and password are required."
	case AuthUnknownUser, AuthBadPassword:
		return "Invalid username or password."
	default:
		return "Authentication failed due to an unexpected error."
	}
}

// AsError converts a refused result into an AppError. Credential problems
// are unauthorized; a store or hashing failure is internal.
func (r AuthResult) AsError() error {
	switch r.Kind {
	case AuthOK:
		return nil
	case AuthUnavailable:
		return apperror.NewInternalError(r.Message(), r.Err)
	}
	return apperror.NewAuthError(r.Message(), r.Err)
}
