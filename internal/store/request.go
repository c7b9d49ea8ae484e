package store

import (
	"context"

	"github.com/phrazzld/shareplate-api/internal/domain"
)

// RequestStore defines the interface for donation request persistence.
type RequestStore interface {
	// Create inserts the request and assigns req.ID.
	// Returns ErrDuplicateRequest if a request for the same
	// (food_id, user_email) pair already exists.
	Create(ctx context.Context, req *domain.DonationRequest) error

	// GetByID retrieves a request by ID.
	// Returns ErrInvalidID for malformed IDs and ErrRequestNotFound if absent.
	GetByID(ctx context.Context, id string) (*domain.DonationRequest, error)

	// FindByFoodAndRequester returns the request userEmail made for foodID.
	// Returns ErrRequestNotFound if there is none.
	FindByFoodAndRequester(ctx context.Context, foodID, userEmail string) (*domain.DonationRequest, error)

	// ListByRequester returns all requests made by userEmail in request order.
	ListByRequester(ctx context.Context, userEmail string) ([]*domain.DonationRequest, error)

	// DeleteOwned removes the request only if it belongs to userEmail.
	// Returns ErrRequestNotFound when no request matched both conditions.
	DeleteOwned(ctx context.Context, id, userEmail string) error

	// SetStatus moves the request from one status to another only if it is
	// currently in from. Returns ErrRequestNotPending (an ErrStaleState) when
	// the stored status differs and ErrRequestNotFound if absent.
	SetStatus(ctx context.Context, id string, from, to domain.RequestStatus) error
}

// Decider applies a donor's decision to a request and, on acceptance, marks
// the referenced food Donated. Implementations document their consistency
// level: a SQL transaction, or a saga with compensation.
type Decider interface {
	// ApplyDecision transitions the request Pending -> status. For
	// RequestStatusAccepted it also transitions the food Available -> Donated.
	// Returns ErrRequestNotPending or ErrFoodNotAvailable when a precondition
	// no longer holds; in that case neither document is left changed.
	ApplyDecision(ctx context.Context, requestID, foodID string, status domain.RequestStatus) error
}
