// Package apperrors holds the error taxonomy shared by services,
// repositories and handlers. Layers wrap these sentinels with context via
// fmt.Errorf("...: %w", ...); handlers match with errors.Is and map each to
// an HTTP status. Errors are never swallowed or retried on the way up.
package apperrors

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation marks malformed or missing required input.
	ErrValidation = errors.New("validation error")
	// ErrNotFound marks an operation targeting a record that does not exist
	// for the caller. Cross-owner access is reported identically, so the
	// response never leaks whether another user's record exists.
	ErrNotFound = errors.New("not found")
	// ErrDuplicate marks a uniqueness conflict, e.g. signup with an email
	// that is already registered.
	ErrDuplicate = errors.New("already exists")
	// ErrAuth marks invalid credentials or a missing/expired bearer token.
	ErrAuth = errors.New("unauthorized")
)

func Validationf(format string, args ...any) error {
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), ErrValidation)
}

func NotFoundf(format string, args ...any) error {
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), ErrNotFound)
}

func Duplicatef(format string, args ...any) error {
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), ErrDuplicate)
}
