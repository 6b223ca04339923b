package scheduler

import (
	"errors"
	"fmt"
)

// Common errors
var (
	// ErrInvalidTimeFormat indicates time format is invalid
	ErrInvalidTimeFormat = errors.New("invalid time format")
)

// ValidationError represents a validation error when specs exceed limits
type ValidationError struct {
	Field     string // Field that failed validation
	Requested int    // Requested value
	Limit     int    // Maximum allowed value
	Partition string // Partition where limit applies
}

func (e *ValidationError) Error() string {
	if e.Partition != "" {
		return fmt.Sprintf("%s: requested %d exceeds limit %d for partition %s",
			e.Field, e.Requested, e.Limit, e.Partition)
	}
	return fmt.Sprintf("%s: requested %d exceeds limit %d",
		e.Field, e.Requested, e.Limit)
}

// Is allows errors.Is to match ValidationError
func (e *ValidationError) Is(target error) bool {
	_, ok := target.(*ValidationError)
	return ok
}

// IsValidationError checks if an error is a ValidationError
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
