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

// FeaturedLimit caps the featured shelf.
const FeaturedLimit = 6

// FoodService provides food listing operations
type FoodService interface {
	// Create stores a new Available listing owned by the principal and returns it.
	Create(ctx context.Context, principal domain.Principal, attrs domain.Attributes) (*domain.Food, error)

	// Get retrieves a listing by ID.
	Get(ctx context.Context, id string) (*domain.Food, error)

	// ListAvailable returns every Available listing.
	ListAvailable(ctx context.Context) ([]*domain.Food, error)

	// ListFeatured returns at most FeaturedLimit Available listings flagged featured.
	ListFeatured(ctx context.Context) ([]*domain.Food, error)

	// ListByOwner returns the listings donated by email, which must be the principal's own.
	ListByOwner(ctx context.Context, principal domain.Principal, email string) ([]*domain.Food, error)

	// Update merges attrs into a listing the principal owns.
	Update(ctx context.Context, principal domain.Principal, id string, attrs domain.Attributes) error

	// Delete removes a listing the principal owns.
	Delete(ctx context.Context, principal domain.Principal, id string) error
}

// foodServiceImpl implements the FoodService interface
type foodServiceImpl struct {
	foods  store.FoodStore
	logger *slog.Logger
}

// NewFoodService creates a new FoodService
// It returns an error if the food store is nil.
func NewFoodService(foods store.FoodStore, logger *slog.Logger) (FoodService, error) {
	if foods == nil {
		return nil, domain.NewValidationError("foods", "cannot be nil", domain.ErrValidation)
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &foodServiceImpl{
		foods:  foods,
		logger: logger.With(slog.String("component", "food_service")),
	}, nil
}

// Create implements FoodService.Create
func (s *foodServiceImpl) Create(
	ctx context.Context,
	principal domain.Principal,
	attrs domain.Attributes,
) (*domain.Food, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	food, err := domain.NewFood(principal.Email, attrs)
	if err != nil {
		log.Debug("rejected food listing", slog.String("error", err.Error()))
		return nil, err
	}

	if err := s.foods.Create(ctx, food); err != nil {
		log.Error("failed to create food", slog.String("error", err.Error()))
		return nil, NewServiceError("food", "create", "failed to save food", err)
	}

	log.Info("food listing created", slog.String("food_id", food.ID))
	return food, nil
}

// Get implements FoodService.Get
func (s *foodServiceImpl) Get(ctx context.Context, id string) (*domain.Food, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	food, err := s.foods.GetByID(ctx, id)
	if err != nil {
		if store.IsNotFoundError(err) || errors.Is(err, store.ErrInvalidID) {
			log.Debug("food lookup failed", slog.String("food_id", id), slog.String("error", err.Error()))
			return nil, err
		}
		log.Error("failed to retrieve food", slog.String("food_id", id), slog.String("error", err.Error()))
		return nil, NewServiceError("food", "get", "failed to retrieve food", err)
	}
	return food, nil
}

// ListAvailable implements FoodService.ListAvailable
func (s *foodServiceImpl) ListAvailable(ctx context.Context) ([]*domain.Food, error) {
	return s.list(ctx, "list_available", store.FoodFilter{Status: domain.FoodStatusAvailable})
}

// ListFeatured implements FoodService.ListFeatured
func (s *foodServiceImpl) ListFeatured(ctx context.Context) ([]*domain.Food, error) {
	return s.list(ctx, "list_featured", store.FoodFilter{
		Status:       domain.FoodStatusAvailable,
		FeaturedOnly: true,
		Limit:        FeaturedLimit,
	})
}

// ListByOwner implements FoodService.ListByOwner
func (s *foodServiceImpl) ListByOwner(
	ctx context.Context,
	principal domain.Principal,
	email string,
) ([]*domain.Food, error) {
	if err := authz.SelfAccess(principal, email); err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Debug("listing another donor's foods denied")
		return nil, err
	}
	return s.list(ctx, "list_by_owner", store.FoodFilter{DonatorEmail: email})
}

func (s *foodServiceImpl) list(ctx context.Context, operation string, filter store.FoodFilter) ([]*domain.Food, error) {
	foods, err := s.foods.List(ctx, filter)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to list foods",
			slog.String("operation", operation),
			slog.String("error", err.Error()))
		return nil, NewServiceError("food", operation, "failed to list foods", err)
	}
	return foods, nil
}

// Update implements FoodService.Update
// The listing must exist and belong to the principal. Reserved keys in attrs
// are discarded; the remaining keys replace their stored values.
func (s *foodServiceImpl) Update(
	ctx context.Context,
	principal domain.Principal,
	id string,
	attrs domain.Attributes,
) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	food, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := authz.Ownership(principal, food.DonatorEmail); err != nil {
		log.Debug("food update denied", slog.String("food_id", id))
		return err
	}

	clean, err := domain.SanitizeAttributes(attrs)
	if err != nil {
		return err
	}

	if err := s.foods.UpdateAttributes(ctx, id, clean); err != nil {
		if store.IsNotFoundError(err) {
			return err
		}
		log.Error("failed to update food", slog.String("food_id", id), slog.String("error", err.Error()))
		return NewServiceError("food", "update", "failed to update food", err)
	}

	log.Info("food listing updated", slog.String("food_id", id), slog.Int("field_count", len(clean)))
	return nil
}

// Delete implements FoodService.Delete
// The listing must exist before the call; a concurrent delete that wins the
// race still counts as success.
func (s *foodServiceImpl) Delete(ctx context.Context, principal domain.Principal, id string) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	food, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := authz.Ownership(principal, food.DonatorEmail); err != nil {
		log.Debug("food delete denied", slog.String("food_id", id))
		return err
	}

	if err := s.foods.Delete(ctx, id); err != nil && !store.IsNotFoundError(err) {
		log.Error("failed to delete food", slog.String("food_id", id), slog.String("error", err.Error()))
		return NewServiceError("food", "delete", "failed to delete food", err)
	}

	log.Info("food listing deleted", slog.String("food_id", id))
	return nil
}
