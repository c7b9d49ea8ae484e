// Package service provides application-level services for food listings and
// donation requests.
package service

import (
	"errors"
	"fmt"
)

// Common service errors - sentinel errors used across service implementations.
// These errors represent common conditions that callers may want to check for with errors.Is().
//
// Error handling principles:
// 1. Service methods return sentinel errors for expected error conditions
// 2. Unexpected errors are wrapped in ServiceError
// 3. Callers use errors.Is/errors.As to check for specific error conditions
// 4. The API layer maps service errors to appropriate HTTP status codes
var (
	// ErrFoodUnavailable indicates a request was made against a food listing
	// that does not exist or is no longer Available.
	// API layer should map this to HTTP 404 Not Found.
	ErrFoodUnavailable = errors.New("food not available")

	// ErrFoodAlreadyDonated indicates an acceptance raced with another one
	// and the listing is already Donated.
	// API layer should map this to HTTP 409 Conflict.
	ErrFoodAlreadyDonated = errors.New("food is no longer available")

	// ErrDuplicateRequest indicates the requester already asked for this listing.
	// API layer should map this to HTTP 409 Conflict.
	ErrDuplicateRequest = errors.New("request already exists for this food")

	// ErrInvalidTransition indicates a decision on a request that is no longer Pending.
	// API layer should map this to HTTP 409 Conflict.
	ErrInvalidTransition = errors.New("request has already been decided")

	// ErrInvalidStatus indicates a decision other than Accepted or Rejected.
	// API layer should map this to HTTP 400 Bad Request.
	ErrInvalidStatus = errors.New("invalid request status")
)

// ServiceError is a custom error type for unexpected service failures.
type ServiceError struct {
	Service   string
	Operation string
	Message   string
	Err       error
}

// Error implements the error interface for ServiceError.
func (e *ServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s service %s failed: %s: %v", e.Service, e.Operation, e.Message, e.Err)
	}
	return fmt.Sprintf("%s service %s failed: %s", e.Service, e.Operation, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *ServiceError) Unwrap() error {
	return e.Err
}

// NewServiceError creates a new ServiceError.
func NewServiceError(service, operation, message string, err error) *ServiceError {
	return &ServiceError{
		Service:   service,
		Operation: operation,
		Message:   message,
		Err:       err,
	}
}
