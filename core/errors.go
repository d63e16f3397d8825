package core

import (
	"errors"
	"fmt"
)

// Error codes for programmatic handling of core errors.
const (
	ErrCodeValidation = "VALIDATION"
	ErrCodeNotFound   = "NOT_FOUND"
)

// ValidationError represents bad caller input: an unsupported format,
// a malformed session ID, an oversized or non-PDF upload. It is surfaced
// to the caller immediately and is never retried.
type ValidationError struct {
	Field   string // Input field that failed validation
	Message string // Human-readable explanation
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
	}
	return e.Message
}

// NewValidationError creates a ValidationError for the given input field.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// NotFoundError represents a missing resource: an unknown session,
// a session with no rasterized pages, a missing output file.
type NotFoundError struct {
	Resource string // What was looked up ("session", "page", "file")
	ID       string // Identifier that was not found
}

func (e *NotFoundError) Error() string {
	if e.ID != "" {
		return fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
	}
	return fmt.Sprintf("%s not found", e.Resource)
}

// NewNotFoundError creates a NotFoundError for the given resource.
func NewNotFoundError(resource, id string) *NotFoundError {
	return &NotFoundError{Resource: resource, ID: id}
}

// IsValidationError reports whether err is (or wraps) a ValidationError.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsNotFoundError reports whether err is (or wraps) a NotFoundError.
func IsNotFoundError(err error) bool {
	var nfe *NotFoundError
	return errors.As(err, &nfe)
}

// ErrorCode extracts the error code from core error types.
// Returns an empty string for errors outside the core taxonomy.
func ErrorCode(err error) string {
	switch {
	case IsValidationError(err):
		return ErrCodeValidation
	case IsNotFoundError(err):
		return ErrCodeNotFound
	default:
		return ""
	}
}
