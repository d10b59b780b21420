package domain

import (
	"errors"
	"fmt"
)

// Error kinds. Every error returned by the core wraps exactly one of these so
// the transport layer can classify it with errors.Is.
var (
	ErrValidation      = errors.New("validation failed")
	ErrConflict        = errors.New("conflict")
	ErrUnauthorized    = errors.New("unauthorized")
	ErrForbidden       = errors.New("forbidden")
	ErrNotFound        = errors.New("not found")
	ErrTooManyAttempts = errors.New("too many attempts")
	ErrConfiguration   = errors.New("configuration error")
)

var (
	ErrUserNotFound      = fmt.Errorf("user %w", ErrNotFound)
	ErrDzongkhagNotFound = fmt.Errorf("dzongkhag %w", ErrNotFound)
	ErrGewogNotFound     = fmt.Errorf("gewog %w", ErrNotFound)
	ErrConsumerNotFound  = fmt.Errorf("consumer %w", ErrNotFound)

	ErrUserExists      = fmt.Errorf("%w: phone or cid already registered", ErrConflict)
	ErrDzongkhagExists = fmt.Errorf("%w: dzongkhag code already exists", ErrConflict)
	ErrDzongkhagInUse  = fmt.Errorf("%w: dzongkhag still has gewogs", ErrConflict)
	ErrGewogInUse      = fmt.Errorf("%w: gewog still has consumers", ErrConflict)

	ErrInvalidCredentials = fmt.Errorf("%w: invalid credentials", ErrUnauthorized)
	ErrMissingToken       = fmt.Errorf("%w: missing token", ErrUnauthorized)
	ErrInvalidToken       = fmt.Errorf("%w: invalid token", ErrUnauthorized)
	ErrIdentityGone       = fmt.Errorf("%w: user no longer exists", ErrUnauthorized)

	// ErrPasswordNotSet carries the same message as ErrInvalidCredentials;
	// only errors.Is tells them apart.
	ErrPasswordNotSet = fmt.Errorf("%w", ErrInvalidCredentials)

	ErrInsufficientRole = fmt.Errorf("%w: insufficient permissions", ErrForbidden)

	ErrMissingSigningSecret = fmt.Errorf("%w: JWT_SECRET is not set", ErrConfiguration)
)

// Invalid builds a validation error carrying a caller-facing message.
func Invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}
