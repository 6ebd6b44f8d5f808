package trade

import (
	"errors"
	"fmt"
)

var (
	// ErrStorage wraps every failure of the persistence medium.
	ErrStorage  = errors.New("storage unavailable")
	ErrNotFound = errors.New("trade not found")
)

// ValidationError reports a missing or malformed required draft field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error: %s: %s", e.Field, e.Message)
}

func newValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// IsValidation reports whether err carries a *ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
