package etherpad

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for Etherpad API operations.
var (
	ErrNotFound      = errors.New("etherpad: not found")
	ErrAlreadyExists = errors.New("etherpad: already exists")
	ErrBadRequest    = errors.New("etherpad: bad request")
	ErrServer        = errors.New("etherpad: internal server error")
	ErrUnsupported   = errors.New("etherpad: unsupported api method")
	ErrUnauthorized  = errors.New("etherpad: api key rejected")
	ErrUnavailable   = errors.New("etherpad: server unavailable")
	ErrMalformed     = errors.New("etherpad: malformed response")
)

// Response codes defined by the Etherpad HTTP API.
const (
	codeOK           = 0
	codeBadRequest   = 1
	codeInternal     = 2
	codeNoSuchMethod = 3
	codeNoAuth       = 4
)

// Error wraps an underlying error with operation context.
type Error struct {
	Op      string // API method, e.g. "createGroupPad"
	Server  string // Server id the call was made against
	Message string // Message reported by Etherpad, if any
	Err     error
}

func (e *Error) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("etherpad %s [%s]: %v: %s", e.Op, e.Server, e.Err, e.Message)
	}
	return fmt.Sprintf("etherpad %s [%s]: %v", e.Op, e.Server, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// wrapError creates an Error with context.
func wrapError(op, server, message string, err error) error {
	return &Error{
		Op:      op,
		Server:  server,
		Message: message,
		Err:     err,
	}
}

// classify maps an API response code and message to a sentinel.
// Etherpad reports every caller mistake as code 1, so the message text is
// the only way to tell a missing entity from a duplicate or a bad argument.
func classify(code int, message string) error {
	switch code {
	case codeOK:
		return nil
	case codeBadRequest:
		msg := strings.ToLower(message)
		switch {
		case strings.Contains(msg, "does not exist"), strings.Contains(msg, "not found"):
			return ErrNotFound
		case strings.Contains(msg, "already exist"):
			return ErrAlreadyExists
		default:
			return ErrBadRequest
		}
	case codeInternal:
		return ErrServer
	case codeNoSuchMethod:
		return ErrUnsupported
	case codeNoAuth:
		return ErrUnauthorized
	default:
		return ErrMalformed
	}
}

// IsTransient reports whether err means the server could not be reached or
// failed internally, as opposed to rejecting the request.
func IsTransient(err error) bool {
	return errors.Is(err, ErrUnavailable) || errors.Is(err, ErrServer)
}
