package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/phrazzld/shareplate-api/internal/domain"
	"github.com/phrazzld/shareplate-api/internal/platform/logger"
	"github.com/phrazzld/shareplate-api/internal/store"
)

// SagaDecider applies decisions across the request and food stores without a
// shared transaction. The request moves first; if marking the food Donated
// then fails, the request is moved back to Pending. A failed compensation is
// logged at ERROR and leaves the request decided while the food is unchanged.
type SagaDecider struct {
	requests store.RequestStore
	foods    store.FoodStore
	logger   *slog.Logger
}

// Ensure SagaDecider implements store.Decider interface
var _ store.Decider = (*SagaDecider)(nil)

// NewSagaDecider creates a decider over independently committed stores.
func NewSagaDecider(requests store.RequestStore, foods store.FoodStore, logger *slog.Logger) (*SagaDecider, error) {
	if requests == nil {
		return nil, domain.NewValidationError("requests", "cannot be nil", domain.ErrValidation)
	}
	if foods == nil {
		return nil, domain.NewValidationError("foods", "cannot be nil", domain.ErrValidation)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &SagaDecider{
		requests: requests,
		foods:    foods,
		logger:   logger.With(slog.String("component", "saga_decider")),
	}, nil
}

// ApplyDecision implements store.Decider.
func (d *SagaDecider) ApplyDecision(
	ctx context.Context,
	requestID, foodID string,
	status domain.RequestStatus,
) error {
	log := logger.FromContextOrDefault(ctx, d.logger)

	if !domain.IsDecision(status) {
		return domain.NewValidationError("status", "must be Accepted or Rejected", domain.ErrInvalidRequestStatus)
	}

	// Step 1: claim the request.
	if err := d.requests.SetStatus(ctx, requestID, domain.RequestStatusPending, status); err != nil {
		return err
	}
	if status != domain.RequestStatusAccepted {
		return nil
	}

	// Step 2: claim the food.
	stepErr := d.foods.SetStatus(ctx, foodID, domain.FoodStatusAvailable, domain.FoodStatusDonated)
	if stepErr == nil {
		return nil
	}

	log.Warn("food status step failed, compensating request",
		slog.String("request_id", requestID),
		slog.String("food_id", foodID),
		slog.String("error", stepErr.Error()))

	// Compensation must run even when ctx was cancelled mid-saga.
	compCtx := context.WithoutCancel(ctx)
	if err := d.requests.SetStatus(compCtx, requestID, status, domain.RequestStatusPending); err != nil {
		log.Error("saga compensation failed, request left decided",
			slog.String("request_id", requestID),
			slog.String("food_id", foodID),
			slog.String("error", err.Error()))
		return errors.Join(stepErr, err)
	}

	return stepErr
}
