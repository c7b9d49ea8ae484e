package mocks

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/shareplate-api/internal/domain"
	"github.com/phrazzld/shareplate-api/internal/store"
)

// FoodStore implements store.FoodStore in memory.
type FoodStore struct {
	// Function fields for customizable behavior
	CreateFn           func(ctx context.Context, food *domain.Food) error
	GetByIDFn          func(ctx context.Context, id string) (*domain.Food, error)
	ListFn             func(ctx context.Context, filter store.FoodFilter) ([]*domain.Food, error)
	UpdateAttributesFn func(ctx context.Context, id string, attrs domain.Attributes) error
	DeleteFn           func(ctx context.Context, id string) error
	SetStatusFn        func(ctx context.Context, id string, from, to domain.FoodStatus) error

	// Fixed errors for simple failure cases
	CreateError error
	GetError    error
	ListError   error

	mu    sync.Mutex
	foods map[string]*domain.Food
	order []string
}

var _ store.FoodStore = (*FoodStore)(nil)

// NewFoodStore creates an empty in-memory food store.
func NewFoodStore() *FoodStore {
	return &FoodStore{foods: make(map[string]*domain.Food)}
}

// Seed inserts food as-is, assigning an ID when it has none, and returns the ID.
func (m *FoodStore) Seed(food *domain.Food) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if food.ID == "" {
		food.ID = uuid.NewString()
	}
	m.put(food)
	return food.ID
}

// Snapshot returns a copy of the stored listing, or nil.
func (m *FoodStore) Snapshot(id string) *domain.Food {
	m.mu.Lock()
	defer m.mu.Unlock()
	if f, ok := m.foods[id]; ok {
		return copyFood(f)
	}
	return nil
}

// Create implements store.FoodStore.
func (m *FoodStore) Create(ctx context.Context, food *domain.Food) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, food)
	}
	if m.CreateError != nil {
		return m.CreateError
	}
	if err := food.Validate(); err != nil {
		return store.NewStoreError("food", "create", "validation failed", store.ErrInvalidEntity)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	food.ID = uuid.NewString()
	m.put(food)
	return nil
}

// GetByID implements store.FoodStore.
func (m *FoodStore) GetByID(ctx context.Context, id string) (*domain.Food, error) {
	if m.GetByIDFn != nil {
		return m.GetByIDFn(ctx, id)
	}
	if m.GetError != nil {
		return nil, m.GetError
	}
	if !validID(id) {
		return nil, store.ErrInvalidID
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	f, ok := m.foods[id]
	if !ok {
		return nil, store.ErrFoodNotFound
	}
	return copyFood(f), nil
}

// List implements store.FoodStore.
func (m *FoodStore) List(ctx context.Context, filter store.FoodFilter) ([]*domain.Food, error) {
	if m.ListFn != nil {
		return m.ListFn(ctx, filter)
	}
	if m.ListError != nil {
		return nil, m.ListError
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	result := make([]*domain.Food, 0, len(m.order))
	for _, id := range m.order {
		f, ok := m.foods[id]
		if !ok {
			continue
		}
		if filter.Status != "" && f.Status != filter.Status {
			continue
		}
		if filter.DonatorEmail != "" && f.DonatorEmail != filter.DonatorEmail {
			continue
		}
		if filter.FeaturedOnly && !f.IsFeatured() {
			continue
		}
		result = append(result, copyFood(f))
		if filter.Limit > 0 && len(result) == filter.Limit {
			break
		}
	}
	return result, nil
}

// UpdateAttributes implements store.FoodStore.
func (m *FoodStore) UpdateAttributes(ctx context.Context, id string, attrs domain.Attributes) error {
	if m.UpdateAttributesFn != nil {
		return m.UpdateAttributesFn(ctx, id, attrs)
	}
	if !validID(id) {
		return store.ErrInvalidID
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	f, ok := m.foods[id]
	if !ok {
		return store.ErrFoodNotFound
	}
	for key, value := range attrs {
		f.Attributes[key] = value
	}
	f.UpdatedAt = time.Now().UTC()
	return nil
}

// Delete implements store.FoodStore.
func (m *FoodStore) Delete(ctx context.Context, id string) error {
	if m.DeleteFn != nil {
		return m.DeleteFn(ctx, id)
	}
	if !validID(id) {
		return store.ErrInvalidID
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.foods[id]; !ok {
		return store.ErrFoodNotFound
	}
	delete(m.foods, id)
	return nil
}

// SetStatus implements store.FoodStore.
func (m *FoodStore) SetStatus(ctx context.Context, id string, from, to domain.FoodStatus) error {
	if m.SetStatusFn != nil {
		return m.SetStatusFn(ctx, id, from, to)
	}
	if !validID(id) {
		return store.ErrInvalidID
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	f, ok := m.foods[id]
	if !ok {
		return store.ErrFoodNotFound
	}
	if f.Status != from {
		return store.ErrFoodNotAvailable
	}
	f.Status = to
	f.UpdatedAt = time.Now().UTC()
	return nil
}

// put stores a copy of food. Callers hold m.mu.
func (m *FoodStore) put(food *domain.Food) {
	if _, exists := m.foods[food.ID]; !exists {
		m.order = append(m.order, food.ID)
	}
	m.foods[food.ID] = copyFood(food)
}

func copyFood(f *domain.Food) *domain.Food {
	c := *f
	c.Attributes = make(domain.Attributes, len(f.Attributes))
	for key, value := range f.Attributes {
		c.Attributes[key] = value
	}
	return &c
}

func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}
