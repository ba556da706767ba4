package errors

import (
	"errors"
	"fmt"
)

// Error taxonomy for the account core. Credential errors are surfaced
// verbatim to callers; reconciliation errors are absorbed by the flow and
// only logged.
var (
	// Credential errors (sign-in/sign-up/password operations)
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrIdentifierTaken    = errors.New("identifier already registered")
	ErrInvalidIdentifier  = errors.New("invalid identifier format")
	ErrWeakSecret         = errors.New("secret does not meet policy")

	// Session errors
	ErrNoAuthenticatedUser = errors.New("no authenticated user")
	ErrSessionExpired      = errors.New("session expired")
	ErrSessionNotFound     = errors.New("session not found")

	// Profile store errors
	ErrProfileNotFound = errors.New("profile not found")
	ErrProfileExists   = errors.New("profile already exists")

	// OAuth handoff errors
	ErrUnsupportedProvider = errors.New("unsupported oauth provider")

	// General errors
	ErrNotFound = errors.New("not found")
	ErrInternal = errors.New("internal error")
)

// Wrapf wraps an error with context using fmt.Errorf
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf(format+": %w", append(args, err)...)
}

// Is reports whether any error in err's chain matches target
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}
