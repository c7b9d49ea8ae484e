package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/phrazzld/shareplate-api/internal/api/shared"
	"github.com/phrazzld/shareplate-api/internal/authz"
	"github.com/phrazzld/shareplate-api/internal/domain"
	"github.com/phrazzld/shareplate-api/internal/service"
	"github.com/phrazzld/shareplate-api/internal/service/auth"
	"github.com/phrazzld/shareplate-api/internal/store"
)

// MapErrorToStatusCode maps internal errors to appropriate HTTP status codes
// based on the error type. This prevents leaking internal error types or
// messages to clients.
func MapErrorToStatusCode(err error) int {
	switch {
	// Authentication errors
	case errors.Is(err, auth.ErrCertificateFetch):
		return http.StatusInternalServerError
	case errors.Is(err, auth.ErrMissingToken),
		auth.IsCredentialError(err):
		return http.StatusUnauthorized

	// Authorization errors
	case errors.Is(err, authz.ErrForbidden):
		return http.StatusForbidden

	// Bad request errors
	case errors.Is(err, store.ErrInvalidID),
		errors.Is(err, domain.ErrInvalidID),
		errors.Is(err, service.ErrInvalidStatus),
		errors.Is(err, domain.ErrInvalidRequestStatus),
		errors.Is(err, domain.ErrInvalidAttributes),
		errors.Is(err, domain.ErrValidation),
		errors.Is(err, store.ErrInvalidEntity):
		return http.StatusBadRequest

	// Not found errors
	case errors.Is(err, service.ErrFoodUnavailable),
		store.IsNotFoundError(err):
		return http.StatusNotFound

	// Conflict errors
	case errors.Is(err, service.ErrDuplicateRequest),
		errors.Is(err, service.ErrInvalidTransition),
		errors.Is(err, service.ErrFoodAlreadyDonated),
		store.IsDuplicateError(err):
		return http.StatusConflict

	// Default: internal server error
	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns a sanitized, user-friendly error message
// based on the error type. This prevents leaking sensitive internal details.
func GetSafeErrorMessage(err error) string {
	if err == nil {
		return "An unexpected error occurred"
	}

	switch {
	// Authentication errors
	case errors.Is(err, auth.ErrCertificateFetch):
		return "Authentication error"
	case errors.Is(err, auth.ErrMissingToken):
		return "Unauthorized: No token provided"
	case auth.IsCredentialError(err):
		return "Unauthorized: Invalid token"

	// Authorization errors
	case errors.Is(err, authz.ErrNotOwner):
		return "Forbidden: Only owner can update"
	case errors.Is(err, authz.ErrForbidden):
		return "Forbidden: Access denied"

	// Bad request errors
	case errors.Is(err, store.ErrInvalidID),
		errors.Is(err, domain.ErrInvalidID):
		return "Invalid ID format"
	case errors.Is(err, service.ErrInvalidStatus),
		errors.Is(err, domain.ErrInvalidRequestStatus):
		return "Invalid status"
	case errors.Is(err, domain.ErrInvalidAttributes):
		return "Invalid food attributes"
	case errors.Is(err, domain.ErrValidation),
		errors.Is(err, store.ErrInvalidEntity):
		return "Missing required fields"

	// Not found errors
	case errors.Is(err, service.ErrFoodUnavailable):
		return "Food not available"
	case errors.Is(err, store.ErrFoodNotFound):
		return "Food not found"
	case errors.Is(err, store.ErrRequestNotFound):
		return "Request not found"

	// Conflict errors
	case errors.Is(err, service.ErrDuplicateRequest),
		errors.Is(err, store.ErrDuplicateRequest):
		return "Already requested this food"
	case errors.Is(err, service.ErrInvalidTransition):
		return "Request has already been decided"
	case errors.Is(err, service.ErrFoodAlreadyDonated):
		return "Food is no longer available"

	default:
		return "An unexpected error occurred"
	}
}

// HandleAPIError writes the status and safe message for err. serverMessage,
// when not empty, replaces the generic text of a 500 response so callers can
// name the operation that failed.
func HandleAPIError(w http.ResponseWriter, r *http.Request, err error, serverMessage string) {
	status := MapErrorToStatusCode(err)
	message := GetSafeErrorMessage(err)
	if status == http.StatusInternalServerError && serverMessage != "" {
		message = serverMessage
	}
	shared.RespondWithErrorAndLog(w, r, status, message, err)
}

// SanitizeValidationError removes sensitive details from validation errors
// and returns a user-friendly message.
func SanitizeValidationError(err error) string {
	errMsg := err.Error()

	if strings.Contains(errMsg, "Field validation") {
		// Format: "Key: 'DecisionBody.Status' Error:Field validation for 'Status' failed on the 'oneof' tag"
		parts := strings.Split(errMsg, "Error:")
		if len(parts) >= 2 {
			fieldParts := strings.Split(parts[1], "'")
			if len(fieldParts) >= 3 {
				field := fieldParts[1]
				var tag string
				if len(fieldParts) >= 5 {
					tag = fieldParts[3]
				}
				if tag != "" {
					return fmt.Sprintf("Invalid %s: %s", field, getValidationTagMessage(tag))
				}
				return fmt.Sprintf("Invalid %s", field)
			}
		}
	}

	return "Validation error"
}

func getValidationTagMessage(tag string) string {
	switch tag {
	case "required":
		return "required field"
	case "email":
		return "invalid email format"
	case "oneof":
		return "invalid value"
	default:
		return "validation failed"
	}
}
