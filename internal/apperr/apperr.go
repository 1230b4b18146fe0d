// Package apperr defines the error kinds shared by the scheduling services.
// Domain packages declare their own sentinels wrapping one of these kinds,
// and transports decide on a response by checking the kind with errors.Is.
package apperr

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrInvalidInput = errors.New("invalid input")
	ErrConflict     = errors.New("conflict")
)

// NotFound returns an error reading "<what> not found".
func NotFound(what string) error {
	return fmt.Errorf("%s %w", what, ErrNotFound)
}

// Invalid returns an InvalidInput error carrying a human readable reason.
func Invalid(reason string) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, reason)
}

// Conflict returns a Conflict error carrying a human readable reason.
func Conflict(reason string) error {
	return fmt.Errorf("%w: %s", ErrConflict, reason)
}

// Kind reports which of the three kinds err belongs to, or nil for
// unexpected failures.
func Kind(err error) error {
	switch {
	case errors.Is(err, ErrNotFound):
		return ErrNotFound
	case errors.Is(err, ErrInvalidInput):
		return ErrInvalidInput
	case errors.Is(err, ErrConflict):
		return ErrConflict
	default:
		return nil
	}
}
