// Package apperr defines the error taxonomy shared across Lectio.
package apperr

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound marks lookup failures (unknown file id, missing note).
	ErrNotFound = errors.New("not found")
	// ErrInvalidInput marks requests rejected before any remote call.
	ErrInvalidInput = errors.New("invalid input")
	// ErrRemote marks transport or service failures of the generative backend.
	ErrRemote = errors.New("remote call failed")
	// ErrBadResponse marks model output the caller could not parse.
	ErrBadResponse = errors.New("malformed model response")
)

// BadResponseError carries the raw model output alongside the parse
// failure so it can be surfaced for diagnostics.
type BadResponseError struct {
	Reason string
	Raw    string
}

func (e *BadResponseError) Error() string {
	return fmt.Sprintf("malformed model response: %s", e.Reason)
}

// Unwrap makes errors.Is(err, ErrBadResponse) hold.
func (e *BadResponseError) Unwrap() error { return ErrBadResponse }

// Invalid wraps a human-readable message as an input-validation error.
func Invalid(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrInvalidInput}, args...)...)
}
