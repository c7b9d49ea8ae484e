// Package domain defines the core business entities and errors.
package domain

import (
	"errors"
	"fmt"
)

// Common domain errors used across the application.
var (
	// ErrValidation is returned when a domain entity fails validation.
	// This is often wrapped with a more specific error message.
	ErrValidation = errors.New("validation failed")

	// ErrInvalidID is returned when an ID is malformed or invalid.
	ErrInvalidID = errors.New("invalid ID")

	// ErrInvalidAttributes is returned when donor-supplied food attributes
	// cannot be accepted (e.g. a non-boolean "featured" flag).
	ErrInvalidAttributes = errors.New("invalid food attributes")

	// ErrInvalidFoodStatus is returned when a food status is not recognised.
	ErrInvalidFoodStatus = errors.New("invalid food status")

	// ErrInvalidRequestStatus is returned when a request status is not recognised.
	ErrInvalidRequestStatus = errors.New("invalid request status")

	// ErrEmptyEmail is returned when an owner or requester email is missing.
	ErrEmptyEmail = errors.New("email cannot be empty")
)

// ValidationError carries the offending field alongside a wrapped sentinel.
type ValidationError struct {
	Field   string
	Message string
	Err     error
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s %s: %v", e.Field, e.Message, e.Err)
	}
	return fmt.Sprintf("%s %s", e.Field, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *ValidationError) Unwrap() error {
	return e.Err
}

// NewValidationError creates a ValidationError for field. A nil err defaults
// to ErrValidation so callers can always match with errors.Is.
func NewValidationError(field, message string, err error) *ValidationError {
	if err == nil {
		err = ErrValidation
	}
	return &ValidationError{
		Field:   field,
		Message: message,
		Err:     err,
	}
}
