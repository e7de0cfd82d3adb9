// Package apperr holds the error taxonomy shared by the stores, the access
// policy and the HTTP layer. Callers wrap a sentinel with context and the
// handlers map it back with errors.Is.
package apperr

import (
	"errors"
	"fmt"
)

var (
	// ErrAuthFailure is returned for bad credentials or inactive accounts.
	ErrAuthFailure = errors.New("invalid credentials")
	// ErrPermissionDenied is returned when the actor's role lacks the capability.
	ErrPermissionDenied = errors.New("permission denied")
	// ErrValidation is returned for malformed or cross-tenant input.
	ErrValidation = errors.New("validation error")
	// ErrNotFound is returned when a resource is absent from the caller's scope.
	ErrNotFound = errors.New("not found")
	// ErrRateLimited is returned when a throttle scope quota is exhausted.
	ErrRateLimited = errors.New("rate limit exceeded")
)

// Validationf wraps ErrValidation with a formatted detail message.
func Validationf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// Deniedf wraps ErrPermissionDenied with a formatted detail message.
func Deniedf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrPermissionDenied, fmt.Sprintf(format, args...))
}

// NotFoundf wraps ErrNotFound with a formatted detail message.
func NotFoundf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrNotFound, fmt.Sprintf(format, args...))
}
