package errors

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is the generic sentinel for missing resources.
	ErrNotFound = errors.New("not found")
	// ErrDuplicateSlug signals a create for a slug that already has an override.
	ErrDuplicateSlug = errors.New("duplicate slug")
	// ErrServiceUnavailable is returned while the people index has no usable data.
	ErrServiceUnavailable = errors.New("service unavailable")
	// ErrNoValidContent signals a subject document that is absent, unreadable or empty.
	ErrNoValidContent = errors.New("no valid content")
)

// ValidationError carries a machine-readable reason alongside the message so
// callers can map it without string matching.
type ValidationError struct {
	Field   string
	Reason  string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed for %s (%s): %s", e.Field, e.Reason, e.Message)
}

func NewValidation(field, reason, message string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason, Message: message}
}

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
