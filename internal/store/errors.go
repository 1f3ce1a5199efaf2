package store

import (
	"errors"
	"fmt"

	domainerrors "github.com/padlinkapp/padlink-server/internal/errors"
)

// Error is a persistence error carrying the domain error code it maps to.
type Error struct {
	Code    domainerrors.Code
	Message string // User-facing message
	Err     error  // Underlying error (optional)
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches any store error with the same code, so sentinels survive
// WithMessage and WithCause.
func (e *Error) Is(target error) bool {
	var t *Error
	if errors.As(target, &t) {
		return e.Code == t.Code
	}
	return false
}

// WithMessage returns a new error with a custom message.
func (e *Error) WithMessage(msg string) *Error {
	return &Error{
		Code:    e.Code,
		Message: msg,
		Err:     e.Err,
	}
}

// WithCause wraps an underlying error.
func (e *Error) WithCause(err error) *Error {
	return &Error{
		Code:    e.Code,
		Message: e.Message,
		Err:     err,
	}
}

// Sentinel errors.
var (
	ErrNotFound = &Error{
		Code:    domainerrors.CodeNotFound,
		Message: "resource not found",
	}

	ErrAlreadyExists = &Error{
		Code:    domainerrors.CodeAlreadyExists,
		Message: "resource already exists",
	}

	ErrInvalidInput = &Error{
		Code:    domainerrors.CodeValidation,
		Message: "invalid input",
	}
)

// ToDomain converts a store error into the matching domain error, keeping
// the chain. Other errors are returned unchanged.
func ToDomain(err error) error {
	var se *Error
	if !errors.As(err, &se) {
		return err
	}
	return domainerrors.Wrap(err, se.Code, se.Message)
}
