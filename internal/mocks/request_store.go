package mocks

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/shareplate-api/internal/domain"
	"github.com/phrazzld/shareplate-api/internal/store"
)

// RequestStore implements store.RequestStore in memory.
type RequestStore struct {
	// Function fields for customizable behavior
	CreateFn                 func(ctx context.Context, req *domain.DonationRequest) error
	GetByIDFn                func(ctx context.Context, id string) (*domain.DonationRequest, error)
	FindByFoodAndRequesterFn func(ctx context.Context, foodID, userEmail string) (*domain.DonationRequest, error)
	ListByRequesterFn        func(ctx context.Context, userEmail string) ([]*domain.DonationRequest, error)
	DeleteOwnedFn            func(ctx context.Context, id, userEmail string) error
	SetStatusFn              func(ctx context.Context, id string, from, to domain.RequestStatus) error

	// Fixed errors for simple failure cases
	CreateError error
	ListError   error

	mu       sync.Mutex
	requests map[string]*domain.DonationRequest
	order    []string
}

var _ store.RequestStore = (*RequestStore)(nil)

// NewRequestStore creates an empty in-memory request store.
func NewRequestStore() *RequestStore {
	return &RequestStore{requests: make(map[string]*domain.DonationRequest)}
}

// Seed inserts req as-is, assigning an ID when it has none, and returns the ID.
// The uniqueness constraint is not checked.
func (m *RequestStore) Seed(req *domain.DonationRequest) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if req.ID == "" {
		req.ID = uuid.NewString()
	}
	m.put(req)
	return req.ID
}

// Snapshot returns a copy of the stored request, or nil.
func (m *RequestStore) Snapshot(id string) *domain.DonationRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	if r, ok := m.requests[id]; ok {
		c := *r
		return &c
	}
	return nil
}

// Count returns the number of stored requests.
func (m *RequestStore) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.requests)
}

// Create implements store.RequestStore.
func (m *RequestStore) Create(ctx context.Context, req *domain.DonationRequest) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, req)
	}
	if m.CreateError != nil {
		return m.CreateError
	}
	if err := req.Validate(); err != nil {
		return store.NewStoreError("request", "create", "validation failed", store.ErrInvalidEntity)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.requests {
		if existing.FoodID == req.FoodID && existing.UserEmail == req.UserEmail {
			return store.ErrDuplicateRequest
		}
	}
	req.ID = uuid.NewString()
	m.put(req)
	return nil
}

// GetByID implements store.RequestStore.
func (m *RequestStore) GetByID(ctx context.Context, id string) (*domain.DonationRequest, error) {
	if m.GetByIDFn != nil {
		return m.GetByIDFn(ctx, id)
	}
	if !validID(id) {
		return nil, store.ErrInvalidID
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.requests[id]
	if !ok {
		return nil, store.ErrRequestNotFound
	}
	c := *r
	return &c, nil
}

// FindByFoodAndRequester implements store.RequestStore.
func (m *RequestStore) FindByFoodAndRequester(
	ctx context.Context,
	foodID, userEmail string,
) (*domain.DonationRequest, error) {
	if m.FindByFoodAndRequesterFn != nil {
		return m.FindByFoodAndRequesterFn(ctx, foodID, userEmail)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	for _, id := range m.order {
		r, ok := m.requests[id]
		if ok && r.FoodID == foodID && r.UserEmail == userEmail {
			c := *r
			return &c, nil
		}
	}
	return nil, store.ErrRequestNotFound
}

// ListByRequester implements store.RequestStore.
func (m *RequestStore) ListByRequester(ctx context.Context, userEmail string) ([]*domain.DonationRequest, error) {
	if m.ListByRequesterFn != nil {
		return m.ListByRequesterFn(ctx, userEmail)
	}
	if m.ListError != nil {
		return nil, m.ListError
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	result := make([]*domain.DonationRequest, 0)
	for _, id := range m.order {
		r, ok := m.requests[id]
		if ok && r.UserEmail == userEmail {
			c := *r
			result = append(result, &c)
		}
	}
	return result, nil
}

// DeleteOwned implements store.RequestStore.
func (m *RequestStore) DeleteOwned(ctx context.Context, id, userEmail string) error {
	if m.DeleteOwnedFn != nil {
		return m.DeleteOwnedFn(ctx, id, userEmail)
	}
	if !validID(id) {
		return store.ErrInvalidID
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.requests[id]
	if !ok || r.UserEmail != userEmail {
		return store.ErrRequestNotFound
	}
	delete(m.requests, id)
	return nil
}

// SetStatus implements store.RequestStore.
func (m *RequestStore) SetStatus(ctx context.Context, id string, from, to domain.RequestStatus) error {
	if m.SetStatusFn != nil {
		return m.SetStatusFn(ctx, id, from, to)
	}
	if !validID(id) {
		return store.ErrInvalidID
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.requests[id]
	if !ok {
		return store.ErrRequestNotFound
	}
	if r.Status != from {
		return store.ErrRequestNotPending
	}
	r.Status = to
	r.UpdatedAt = time.Now().UTC()
	return nil
}

// put stores a copy of req. Callers hold m.mu.
func (m *RequestStore) put(req *domain.DonationRequest) {
	if _, exists := m.requests[req.ID]; !exists {
		m.order = append(m.order, req.ID)
	}
	c := *req
	m.requests[req.ID] = &c
}
