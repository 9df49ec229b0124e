package entity

import (
	"errors"
	"fmt"
)

// ErrValidationFailed is matched by every *ValidationError, so callers can
// map bad input to a 400 or a CLI usage message without a type switch.
var ErrValidationFailed = errors.New("validation failed")

// ValidationError reports a rejected field of a record, a query or a
// setting.
type ValidationError struct {
	Field   string
	Message string
}

// Invalidf returns a ValidationError with a formatted message.
func Invalidf(field, format string, args ...any) *ValidationError {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return "invalid input: " + e.Message
	}
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error {
	return ErrValidationFailed
}
