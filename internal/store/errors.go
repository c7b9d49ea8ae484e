package store

import (
	"errors"
	"fmt"
)

// Common store errors used across all store implementations.
var (
	// ErrNotFound is returned when a requested entity does not exist in the store.
	// Entity-specific variants (ErrFoodNotFound, ErrRequestNotFound) wrap it.
	ErrNotFound = errors.New("entity not found")

	// ErrDuplicate is returned when an operation would violate a uniqueness
	// constraint.
	ErrDuplicate = errors.New("entity already exists")

	// ErrInvalidID is returned when an identifier is not well-formed for the
	// backing store (not a UUID for Postgres, not an ObjectID for MongoDB).
	ErrInvalidID = errors.New("invalid identifier")

	// ErrInvalidEntity is returned when an entity fails validation before
	// being stored. Check the wrapped error for specific validation details.
	ErrInvalidEntity = errors.New("invalid entity")

	// ErrStaleState is returned by compare-and-swap updates when the stored
	// status no longer matches the expected source status.
	ErrStaleState = errors.New("entity state changed concurrently")

	// ErrFoodNotFound indicates that the requested food listing does not exist.
	ErrFoodNotFound = fmt.Errorf("%w: food", ErrNotFound)

	// ErrRequestNotFound indicates that the requested donation request does not exist.
	ErrRequestNotFound = fmt.Errorf("%w: request", ErrNotFound)

	// ErrDuplicateRequest indicates a request for the same (food_id, user_email)
	// pair already exists.
	ErrDuplicateRequest = fmt.Errorf("%w: request for this food", ErrDuplicate)

	// ErrRequestNotPending indicates a decision was attempted on a request
	// that has already been accepted or rejected.
	ErrRequestNotPending = fmt.Errorf("%w: request is not pending", ErrStaleState)

	// ErrFoodNotAvailable indicates the food was no longer Available when a
	// status transition was attempted.
	ErrFoodNotAvailable = fmt.Errorf("%w: food is not available", ErrStaleState)
)

// IsNotFoundError checks if the error is any kind of "not found" error.
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsDuplicateError checks if the error is any kind of "duplicate" error.
func IsDuplicateError(err error) bool {
	return errors.Is(err, ErrDuplicate)
}

// StoreError is a custom error type for store-specific errors with additional context.
type StoreError struct {
	Entity    string // The entity type (e.g., "food", "request")
	Operation string // The operation that failed (e.g., "create", "update")
	Message   string // Error message
	Err       error  // Original error
}

// Error implements the error interface for StoreError.
func (e *StoreError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf(
			"%s operation on %s failed: %s: %v",
			e.Operation,
			e.Entity,
			e.Message,
			e.Err,
		)
	}
	return fmt.Sprintf("%s operation on %s failed: %s", e.Operation, e.Entity, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *StoreError) Unwrap() error {
	return e.Err
}

// NewStoreError creates a new StoreError with the given entity, operation, message, and wrapped error.
func NewStoreError(entity, operation, message string, err error) *StoreError {
	return &StoreError{
		Entity:    entity,
		Operation: operation,
		Message:   message,
		Err:       err,
	}
}
