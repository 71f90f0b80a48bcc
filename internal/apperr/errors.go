package apperr

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalid is returned when the input fails domain validation.
	ErrInvalid = errors.New("invalid input")
	// ErrNotFound indicates that the requested delivery does not exist.
	ErrNotFound = errors.New("not found")
	// ErrConflict indicates a lost compare-and-swap at the storage level.
	ErrConflict = errors.New("conflict")
	// ErrUnavailable is returned when a delivery can no longer be accepted.
	ErrUnavailable = errors.New("delivery unavailable")
	// ErrUnauthorized is returned when the caller may not act on the delivery.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrInvalidTransition is returned for an operation in the wrong lifecycle state.
	ErrInvalidTransition = errors.New("invalid state transition")
	// ErrInvalidOTP is returned when the supplied completion code does not match.
	ErrInvalidOTP = errors.New("invalid otp")
	// ErrOTPLocked is returned once a delivery has used up its completion attempts.
	ErrOTPLocked = errors.New("otp attempts exhausted")
)

// ValidationError describes a single rejected input field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("%s: %s", ErrInvalid, e.Reason)
	}
	return fmt.Sprintf("%s: %s: %s", ErrInvalid, e.Field, e.Reason)
}

// Is makes every ValidationError match ErrInvalid.
func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalid
}

// Invalidf builds a ValidationError for field.
func Invalidf(field, format string, args ...any) error {
	return &ValidationError{Field: field, Reason: fmt.Sprintf(format, args...)}
}
