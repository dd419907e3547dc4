package domain

import (
	"errors"
	"fmt"
)

// Error kinds. Match with errors.Is; the concrete error carries the message.
var (
	ErrValidation         = errors.New("validation error")
	ErrInvalidID          = errors.New("invalid identifier")
	ErrNotFound           = errors.New("not found")
	ErrDuplicateEmail     = errors.New("email already registered")
	ErrInsufficientStock  = errors.New("insufficient stock")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrUnauthenticated    = errors.New("access token required")
	ErrForbidden          = errors.New("access forbidden")
	ErrTooManyAttempts    = errors.New("too many failed login attempts")

	// ErrStockLimit is returned by stores when an increment would push the
	// quantity past MaxQuantity.
	ErrStockLimit = errors.New("stock limit exceeded")
)

// Error is a domain failure with a human-readable message.
type Error struct {
	Kind    error
	Message string
}

func (e *Error) Error() string {
	if e.Message == "" {
		return e.Kind.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Kind }

// Errorf builds a domain error of the given kind.
func Errorf(kind error, format string, args ...any) error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Validationf is shorthand for Errorf(ErrValidation, ...).
func Validationf(format string, args ...any) error {
	return Errorf(ErrValidation, format, args...)
}
