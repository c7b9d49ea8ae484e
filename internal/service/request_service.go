package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/phrazzld/shareplate-api/internal/authz"
	"github.com/phrazzld/shareplate-api/internal/domain"
	"github.com/phrazzld/shareplate-api/internal/platform/logger"
	"github.com/phrazzld/shareplate-api/internal/store"
)

// RequestService provides donation request operations
type RequestService interface {
	// Create files a Pending request by the principal for an Available listing.
	Create(ctx context.Context, principal domain.Principal, foodID, userName string) (*domain.DonationRequest, error)

	// ListByRequester returns the requests made by email, which must be the principal's own.
	ListByRequester(ctx context.Context, principal domain.Principal, email string) ([]*domain.DonationRequest, error)

	// Delete withdraws one of the principal's own requests. A request that
	// does not exist and one owned by someone else are indistinguishable.
	Delete(ctx context.Context, principal domain.Principal, id string) error

	// Decide accepts or rejects a Pending request against a listing the
	// principal donated. Accepting marks the listing Donated.
	Decide(ctx context.Context, principal domain.Principal, id string, status domain.RequestStatus) error
}

// requestServiceImpl implements the RequestService interface
type requestServiceImpl struct {
	requests store.RequestStore
	foods    store.FoodStore
	decider  store.Decider
	logger   *slog.Logger
}

// NewRequestService creates a new RequestService
// It returns an error if any of the required dependencies are nil.
func NewRequestService(
	requests store.RequestStore,
	foods store.FoodStore,
	decider store.Decider,
	logger *slog.Logger,
) (RequestService, error) {
	if requests == nil {
		return nil, domain.NewValidationError("requests", "cannot be nil", domain.ErrValidation)
	}
	if foods == nil {
		return nil, domain.NewValidationError("foods", "cannot be nil", domain.ErrValidation)
	}
	if decider == nil {
		return nil, domain.NewValidationError("decider", "cannot be nil", domain.ErrValidation)
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &requestServiceImpl{
		requests: requests,
		foods:    foods,
		decider:  decider,
		logger:   logger.With(slog.String("component", "request_service")),
	}, nil
}

// Create implements RequestService.Create
func (s *requestServiceImpl) Create(
	ctx context.Context,
	principal domain.Principal,
	foodID, userName string,
) (*domain.DonationRequest, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	food, err := s.foods.GetByID(ctx, foodID)
	switch {
	case errors.Is(err, store.ErrInvalidID):
		return nil, err
	case store.IsNotFoundError(err):
		log.Debug("request for missing food", slog.String("food_id", foodID))
		return nil, ErrFoodUnavailable
	case err != nil:
		log.Error("failed to load food for request",
			slog.String("food_id", foodID),
			slog.String("error", err.Error()))
		return nil, NewServiceError("request", "create", "failed to load food", err)
	}
	if !food.IsAvailable() {
		log.Debug("request for donated food", slog.String("food_id", foodID))
		return nil, ErrFoodUnavailable
	}
	// Key everything below on the stored id, not the caller's spelling of it.
	foodID = food.ID

	existing, err := s.requests.FindByFoodAndRequester(ctx, foodID, principal.Email)
	if err != nil && !store.IsNotFoundError(err) {
		log.Error("failed to check for existing request",
			slog.String("food_id", foodID),
			slog.String("error", err.Error()))
		return nil, NewServiceError("request", "create", "failed to check existing requests", err)
	}
	if existing != nil {
		return nil, ErrDuplicateRequest
	}

	req, err := domain.NewDonationRequest(foodID, userName, principal.Email)
	if err != nil {
		return nil, err
	}

	// The unique index catches a concurrent duplicate the check above missed.
	if err := s.requests.Create(ctx, req); err != nil {
		if store.IsDuplicateError(err) {
			return nil, ErrDuplicateRequest
		}
		log.Error("failed to create request",
			slog.String("food_id", foodID),
			slog.String("error", err.Error()))
		return nil, NewServiceError("request", "create", "failed to save request", err)
	}

	log.Info("donation request created",
		slog.String("request_id", req.ID),
		slog.String("food_id", foodID))
	return req, nil
}

// ListByRequester implements RequestService.ListByRequester
func (s *requestServiceImpl) ListByRequester(
	ctx context.Context,
	principal domain.Principal,
	email string,
) ([]*domain.DonationRequest, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := authz.SelfAccess(principal, email); err != nil {
		log.Debug("listing another user's requests denied")
		return nil, err
	}

	requests, err := s.requests.ListByRequester(ctx, email)
	if err != nil {
		log.Error("failed to list requests", slog.String("error", err.Error()))
		return nil, NewServiceError("request", "list", "failed to list requests", err)
	}
	return requests, nil
}

// Delete implements RequestService.Delete
func (s *requestServiceImpl) Delete(ctx context.Context, principal domain.Principal, id string) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := s.requests.DeleteOwned(ctx, id, principal.Email); err != nil {
		if store.IsNotFoundError(err) || errors.Is(err, store.ErrInvalidID) {
			return err
		}
		log.Error("failed to delete request",
			slog.String("request_id", id),
			slog.String("error", err.Error()))
		return NewServiceError("request", "delete", "failed to delete request", err)
	}

	log.Info("donation request deleted", slog.String("request_id", id))
	return nil
}

// Decide implements RequestService.Decide
// Checks run in order: decision value, request existence, food existence,
// ownership of the food, Pending source state.
func (s *requestServiceImpl) Decide(
	ctx context.Context,
	principal domain.Principal,
	id string,
	status domain.RequestStatus,
) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if !domain.IsDecision(status) {
		return ErrInvalidStatus
	}

	req, err := s.requests.GetByID(ctx, id)
	if err != nil {
		if store.IsNotFoundError(err) || errors.Is(err, store.ErrInvalidID) {
			return err
		}
		log.Error("failed to load request", slog.String("request_id", id), slog.String("error", err.Error()))
		return NewServiceError("request", "decide", "failed to load request", err)
	}

	food, err := s.foods.GetByID(ctx, req.FoodID)
	if err != nil {
		if store.IsNotFoundError(err) || errors.Is(err, store.ErrInvalidID) {
			return store.ErrFoodNotFound
		}
		log.Error("failed to load food", slog.String("food_id", req.FoodID), slog.String("error", err.Error()))
		return NewServiceError("request", "decide", "failed to load food", err)
	}

	if err := authz.Ownership(principal, food.DonatorEmail); err != nil {
		log.Debug("decision by non-owner denied",
			slog.String("request_id", id),
			slog.String("food_id", food.ID))
		return err
	}

	if !req.IsPending() {
		return ErrInvalidTransition
	}
	if status == domain.RequestStatusAccepted && !food.IsAvailable() {
		return ErrFoodAlreadyDonated
	}

	if err := s.decider.ApplyDecision(ctx, req.ID, food.ID, status); err != nil {
		switch {
		case errors.Is(err, store.ErrRequestNotPending):
			return ErrInvalidTransition
		case errors.Is(err, store.ErrFoodNotAvailable):
			return ErrFoodAlreadyDonated
		case store.IsNotFoundError(err):
			return err
		}
		log.Error("failed to apply decision",
			slog.String("request_id", id),
			slog.String("status", string(status)),
			slog.String("error", err.Error()))
		return NewServiceError("request", "decide", "failed to apply decision", err)
	}

	log.Info("donation request decided",
		slog.String("request_id", id),
		slog.String("food_id", food.ID),
		slog.String("status", string(status)))
	return nil
}
