package store

import (
	"context"

	"github.com/phrazzld/shareplate-api/internal/domain"
)

// FoodFilter narrows a food listing query. Zero values mean "no constraint".
type FoodFilter struct {
	Status       domain.FoodStatus
	DonatorEmail string
	FeaturedOnly bool
	Limit        int
}

// FoodStore defines the interface for food listing persistence.
type FoodStore interface {
	// Create inserts the listing and assigns food.ID.
	// Returns validation errors wrapped in ErrInvalidEntity if the food is invalid.
	Create(ctx context.Context, food *domain.Food) error

	// GetByID retrieves a listing by ID.
	// Returns ErrInvalidID for malformed IDs and ErrFoodNotFound if absent.
	GetByID(ctx context.Context, id string) (*domain.Food, error)

	// List returns listings matching filter in insertion order.
	List(ctx context.Context, filter FoodFilter) ([]*domain.Food, error)

	// UpdateAttributes merges attrs into the stored attributes; keys not named
	// in attrs are left unchanged. Returns ErrFoodNotFound if absent.
	UpdateAttributes(ctx context.Context, id string, attrs domain.Attributes) error

	// Delete removes a listing. Returns ErrFoodNotFound if absent.
	Delete(ctx context.Context, id string) error

	// SetStatus moves the listing from one status to another only if it is
	// currently in from. Returns ErrFoodNotAvailable (an ErrStaleState) when the
	// stored status differs and ErrFoodNotFound if the listing is absent.
	SetStatus(ctx context.Context, id string, from, to domain.FoodStatus) error
}
