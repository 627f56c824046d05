package domain

import (
	"errors"
	"fmt"
)

var (
	ErrUnauthenticated     = errors.New("authentication required")
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrPrincipalExists     = errors.New("account already exists")
	ErrPrincipalNotFound   = errors.New("account not found")
	ErrForbidden           = errors.New("access forbidden")
	ErrProfileNotFound     = errors.New("profile not found")
	ErrUsernameTaken       = errors.New("username already taken")
	ErrSameUsername        = errors.New("new username must be different from current username")
	ErrBackendUnavailable  = errors.New("backend unavailable")
	ErrValidation          = errors.New("validation failed")
	ErrEmptyContent        = &ValidationError{Field: "content", Message: "content cannot be empty"}
	ErrInvalidStream       = &ValidationError{Field: "stream", Message: "stream must be one of: thought, people"}
	ErrPrincipalRegistered = errors.New("account already owns a profile")
)

// ValidationError reports bad user input. It matches ErrValidation under errors.Is.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// AlreadyRegisteredError is returned when a principal that already owns a
// profile tries to claim a different username. Username is where the caller
// should be sent instead.
type AlreadyRegisteredError struct {
	Username string
}

func (e *AlreadyRegisteredError) Error() string {
	return fmt.Sprintf("account already registered as %q", e.Username)
}

func (e *AlreadyRegisteredError) Is(target error) bool {
	return target == ErrPrincipalRegistered
}

// Unavailable wraps an infrastructure failure so callers can match
// ErrBackendUnavailable while keeping the driver error in the chain.
func Unavailable(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, ErrBackendUnavailable, err)
}
