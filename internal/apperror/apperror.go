// Package apperror defines the error taxonomy shared by every layer.
//
// Each failure kind is a sentinel error. Constructors return an *AppError that
// wraps the sentinel, so callers can match with errors.Is while boundaries
// (HTTP, CLI) read the human-readable Message.
package apperror

import (
	"errors"
	"fmt"
)

var (
	ErrUnauthorized        = errors.New("unauthorized")
	ErrInvalidDomain       = errors.New("invalid domain")
	ErrInvalidArgument     = errors.New("invalid argument")
	ErrNotFound            = errors.New("not found")
	ErrOracleUnavailable   = errors.New("oracle unavailable")
	ErrHandleNotRegistered = errors.New("handle not registered")
)

// Wire kinds, as written to API and CLI error payloads.
const (
	KindUnauthorized        = "unauthorized"
	KindInvalidDomain       = "invalid_domain"
	KindInvalidArgument     = "invalid_argument"
	KindNotFound            = "not_found"
	KindOracleUnavailable   = "oracle_unavailable"
	KindHandleNotRegistered = "handle_not_registered"
	KindInternal            = "internal"
)

type AppError struct {
	Err     error  // sentinel kind
	Message string // Human-readable error message
	Field   string // Optional: field causing the error
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Unauthorized reports a request with no verified identity attached.
func Unauthorized() *AppError {
	return &AppError{
		Err:     ErrUnauthorized,
		Message: "login required",
	}
}

// InvalidDomain reports a verified identity whose email is rejected by the
// institutional domain policy.
func InvalidDomain(email string) *AppError {
	return &AppError{
		Err:     ErrInvalidDomain,
		Message: fmt.Sprintf("email %q is not from an allowed institution", email),
		Field:   "email",
	}
}

func InvalidArgument(field, message string) *AppError {
	return &AppError{
		Err:     ErrInvalidArgument,
		Message: message,
		Field:   field,
	}
}

// NotFound is returned both for absent entities and for entities owned by
// someone else. The message never distinguishes the two.
func NotFound(resource, id string) *AppError {
	return &AppError{
		Err:     ErrNotFound,
		Message: fmt.Sprintf("%s not found with id %s", resource, id),
	}
}

// OracleUnavailable wraps a ranking-service failure. The cause is kept for
// logs but not exposed in Message.
func OracleUnavailable(op string, cause error) *AppError {
	err := ErrOracleUnavailable
	if cause != nil {
		err = fmt.Errorf("%w: %s: %w", ErrOracleUnavailable, op, cause)
	}
	return &AppError{
		Err:     err,
		Message: "ranking service is unavailable",
	}
}

func HandleNotRegistered() *AppError {
	return &AppError{
		Err:     ErrHandleNotRegistered,
		Message: "register a ranking handle before requesting personal recommendations",
	}
}

// Kind maps err to its wire kind. Anything outside the taxonomy is internal.
func Kind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrUnauthorized):
		return KindUnauthorized
	case errors.Is(err, ErrInvalidDomain):
		return KindInvalidDomain
	case errors.Is(err, ErrInvalidArgument):
		return KindInvalidArgument
	case errors.Is(err, ErrNotFound):
		return KindNotFound
	case errors.Is(err, ErrOracleUnavailable):
		return KindOracleUnavailable
	case errors.Is(err, ErrHandleNotRegistered):
		return KindHandleNotRegistered
	default:
		return KindInternal
	}
}

// Message returns the client-safe message for err.
func Message(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	return "An internal error occurred"
}
