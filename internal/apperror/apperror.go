// Package apperror defines the application's domain errors.
//
// Services return these instead of HTTP status codes, so the same business
// logic can sit behind an HTTP handler, a websocket gateway, or a test
// without knowing how failures are reported to the outside world. The HTTP
// layer translates them in exactly one place (handler/response.go).
package apperror

import (
	"errors"
	"fmt"
)

// Sentinel errors. Callers match on these with errors.Is().
var (
	ErrNotFound     = errors.New("not found")
	ErrValidation   = errors.New("validation error")
	ErrConflict     = errors.New("conflict")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
)

// AppError pairs a sentinel (for errors.Is) with a human-readable message
// (for the API response). Field optionally names the offending input field.
type AppError struct {
	Err     error
	Message string
	Field   string
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func NotFound(resource, id string) *AppError {
	return &AppError{
		Err:     ErrNotFound,
		Message: fmt.Sprintf("%s not found with id %s", resource, id),
	}
}

func ValidationFailed(field, message string) *AppError {
	return &AppError{
		Err:     ErrValidation,
		Message: message,
		Field:   field,
	}
}

func Conflict(resource, message string) *AppError {
	return &AppError{
		Err:     ErrConflict,
		Message: fmt.Sprintf("%s: %s", resource, message),
	}
}

// Unauthorized is returned for failed logins and invalid verification links.
// The message is deliberately generic — it must not reveal whether the
// email, the password, or the link token was the part that failed.
func Unauthorized(message string) *AppError {
	return &AppError{
		Err:     ErrUnauthorized,
		Message: message,
	}
}

// Forbidden indicates the caller is authenticated but lacks permission.
func Forbidden(message string) *AppError {
	return &AppError{
		Err:     ErrForbidden,
		Message: message,
	}
}
