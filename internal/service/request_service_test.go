package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/google/uuid"
	"github.com/phrazzld/shareplate-api/internal/authz"
	"github.com/phrazzld/shareplate-api/internal/domain"
	"github.com/phrazzld/shareplate-api/internal/mocks"
	"github.com/phrazzld/shareplate-api/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type requestFixture struct {
	svc      RequestService
	foods    *mocks.FoodStore
	requests *mocks.RequestStore
}

func newRequestFixture(t *testing.T) *requestFixture {
	t.Helper()
	foods := mocks.NewFoodStore()
	requests := mocks.NewRequestStore()
	decider, err := NewSagaDecider(requests, foods, nil)
	require.NoError(t, err)
	svc, err := NewRequestService(requests, foods, decider, nil)
	require.NoError(t, err)
	return &requestFixture{svc: svc, foods: foods, requests: requests}
}

func (f *requestFixture) seedPending(t *testing.T, foodID string) string {
	t.Helper()
	req, err := domain.NewDonationRequest(foodID, "Riley", recipient.Email)
	require.NoError(t, err)
	return f.requests.Seed(req)
}

func TestNewRequestService(t *testing.T) {
	t.Parallel()

	foods := mocks.NewFoodStore()
	requests := mocks.NewRequestStore()
	decider := &MockDecider{}

	tests := []struct {
		name     string
		requests store.RequestStore
		foods    store.FoodStore
		decider  store.Decider
		errorMsg string
	}{
		{"nil requests", nil, foods, decider, "requests"},
		{"nil foods", requests, nil, decider, "foods"},
		{"nil decider", requests, foods, nil, "decider"},
		{"all dependencies provided", requests, foods, decider, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, err := NewRequestService(tt.requests, tt.foods, tt.decider, nil)
			if tt.errorMsg == "" {
				require.NoError(t, err)
				assert.NotNil(t, svc)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errorMsg)
		})
	}
}

func TestRequestService_Create(t *testing.T) {
	t.Parallel()

	t.Run("creates pending request for available food", func(t *testing.T) {
		t.Parallel()
		f := newRequestFixture(t)
		foodID := seedFood(f.foods, donor.Email, domain.FoodStatusAvailable, nil)

		req, err := f.svc.Create(context.Background(), recipient, foodID, "Riley")
		require.NoError(t, err)
		assert.NotEmpty(t, req.ID)
		assert.Equal(t, domain.RequestStatusPending, req.Status)
		assert.Equal(t, recipient.Email, req.UserEmail)
		assert.Equal(t, "Riley", req.UserName)
		assert.False(t, req.RequestedAt.IsZero())
	})

	t.Run("repeated request is a duplicate", func(t *testing.T) {
		t.Parallel()
		f := newRequestFixture(t)
		foodID := seedFood(f.foods, donor.Email, domain.FoodStatusAvailable, nil)

		_, err := f.svc.Create(context.Background(), recipient, foodID, "Riley")
		require.NoError(t, err)

		_, err = f.svc.Create(context.Background(), recipient, foodID, "Riley")
		assert.ErrorIs(t, err, ErrDuplicateRequest)
		assert.Equal(t, 1, f.requests.Count())
	})

	t.Run("differently cased food id is still a duplicate", func(t *testing.T) {
		t.Parallel()
		f := newRequestFixture(t)
		foodID := seedFood(f.foods, donor.Email, domain.FoodStatusAvailable, nil)

		// Hex ids resolve regardless of case, as object ids do.
		f.foods.GetByIDFn = func(_ context.Context, id string) (*domain.Food, error) {
			return f.foods.Snapshot(strings.ToLower(id)), nil
		}

		first, err := f.svc.Create(context.Background(), recipient, foodID, "Riley")
		require.NoError(t, err)
		assert.Equal(t, foodID, first.FoodID)

		_, err = f.svc.Create(context.Background(), recipient, strings.ToUpper(foodID), "Riley")
		assert.ErrorIs(t, err, ErrDuplicateRequest)
		assert.Equal(t, 1, f.requests.Count())
	})

	t.Run("donated food is unavailable", func(t *testing.T) {
		t.Parallel()
		f := newRequestFixture(t)
		foodID := seedFood(f.foods, donor.Email, domain.FoodStatusDonated, nil)

		_, err := f.svc.Create(context.Background(), recipient, foodID, "Riley")
		assert.ErrorIs(t, err, ErrFoodUnavailable)
	})

	t.Run("missing food is unavailable", func(t *testing.T) {
		t.Parallel()
		f := newRequestFixture(t)

		_, err := f.svc.Create(context.Background(), recipient, uuid.NewString(), "Riley")
		assert.ErrorIs(t, err, ErrFoodUnavailable)
	})

	t.Run("malformed food id", func(t *testing.T) {
		t.Parallel()
		f := newRequestFixture(t)

		_, err := f.svc.Create(context.Background(), recipient, "xyz", "Riley")
		assert.ErrorIs(t, err, store.ErrInvalidID)
	})

	t.Run("blank user name rejected", func(t *testing.T) {
		t.Parallel()
		f := newRequestFixture(t)
		foodID := seedFood(f.foods, donor.Email, domain.FoodStatusAvailable, nil)

		_, err := f.svc.Create(context.Background(), recipient, foodID, "  ")
		assert.ErrorIs(t, err, domain.ErrValidation)
	})

	t.Run("unique constraint closes the check-then-insert race", func(t *testing.T) {
		t.Parallel()
		f := newRequestFixture(t)
		foodID := seedFood(f.foods, donor.Email, domain.FoodStatusAvailable, nil)

		// Every caller passes the existence check, as in an unlucky interleaving.
		f.requests.FindByFoodAndRequesterFn = func(context.Context, string, string) (*domain.DonationRequest, error) {
			return nil, store.ErrRequestNotFound
		}

		var wg sync.WaitGroup
		var created, duplicates atomic.Int32
		for i := 0; i < 10; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := f.svc.Create(context.Background(), recipient, foodID, "Riley")
				switch {
				case err == nil:
					created.Add(1)
				case errors.Is(err, ErrDuplicateRequest):
					duplicates.Add(1)
				}
			}()
		}
		wg.Wait()

		assert.Equal(t, int32(1), created.Load())
		assert.Equal(t, int32(9), duplicates.Load())
		assert.Equal(t, 1, f.requests.Count())
	})
}

func TestRequestService_ListByRequester(t *testing.T) {
	t.Parallel()

	f := newRequestFixture(t)
	foodA := seedFood(f.foods, donor.Email, domain.FoodStatusAvailable, nil)
	foodB := seedFood(f.foods, donor.Email, domain.FoodStatusAvailable, nil)
	f.seedPending(t, foodA)
	f.seedPending(t, foodB)

	mine, err := f.svc.ListByRequester(context.Background(), recipient, recipient.Email)
	require.NoError(t, err)
	require.Len(t, mine, 2)
	assert.Equal(t, foodA, mine[0].FoodID)

	_, err = f.svc.ListByRequester(context.Background(), stranger, recipient.Email)
	assert.ErrorIs(t, err, authz.ErrNotSelf)
}

func TestRequestService_Delete(t *testing.T) {
	t.Parallel()

	f := newRequestFixture(t)
	foodID := seedFood(f.foods, donor.Email, domain.FoodStatusAvailable, nil)
	reqID := f.seedPending(t, foodID)

	err := f.svc.Delete(context.Background(), stranger, reqID)
	assert.ErrorIs(t, err, store.ErrRequestNotFound, "someone else's request looks absent")
	assert.NotNil(t, f.requests.Snapshot(reqID))

	require.NoError(t, f.svc.Delete(context.Background(), recipient, reqID))
	assert.Nil(t, f.requests.Snapshot(reqID))

	err = f.svc.Delete(context.Background(), recipient, reqID)
	assert.ErrorIs(t, err, store.ErrRequestNotFound)

	err = f.svc.Delete(context.Background(), recipient, "bad-id")
	assert.ErrorIs(t, err, store.ErrInvalidID)
}

func TestRequestService_Decide(t *testing.T) {
	t.Parallel()

	t.Run("owner accepts and food becomes donated", func(t *testing.T) {
		t.Parallel()
		f := newRequestFixture(t)
		foodID := seedFood(f.foods, donor.Email, domain.FoodStatusAvailable, nil)
		reqID := f.seedPending(t, foodID)

		require.NoError(t, f.svc.Decide(context.Background(), donor, reqID, domain.RequestStatusAccepted))
		assert.Equal(t, domain.RequestStatusAccepted, f.requests.Snapshot(reqID).Status)
		assert.Equal(t, domain.FoodStatusDonated, f.foods.Snapshot(foodID).Status)
	})

	t.Run("owner rejects and food stays available", func(t *testing.T) {
		t.Parallel()
		f := newRequestFixture(t)
		foodID := seedFood(f.foods, donor.Email, domain.FoodStatusAvailable, nil)
		reqID := f.seedPending(t, foodID)

		require.NoError(t, f.svc.Decide(context.Background(), donor, reqID, domain.RequestStatusRejected))
		assert.Equal(t, domain.RequestStatusRejected, f.requests.Snapshot(reqID).Status)
		assert.Equal(t, domain.FoodStatusAvailable, f.foods.Snapshot(foodID).Status)
	})

	t.Run("non owner forbidden and nothing changes", func(t *testing.T) {
		t.Parallel()
		f := newRequestFixture(t)
		foodID := seedFood(f.foods, donor.Email, domain.FoodStatusAvailable, nil)
		reqID := f.seedPending(t, foodID)

		err := f.svc.Decide(context.Background(), stranger, reqID, domain.RequestStatusAccepted)
		assert.ErrorIs(t, err, authz.ErrNotOwner)
		assert.Equal(t, domain.RequestStatusPending, f.requests.Snapshot(reqID).Status)
		assert.Equal(t, domain.FoodStatusAvailable, f.foods.Snapshot(foodID).Status)
	})

	t.Run("pending is not a decision", func(t *testing.T) {
		t.Parallel()
		f := newRequestFixture(t)

		err := f.svc.Decide(context.Background(), donor, uuid.NewString(), domain.RequestStatusPending)
		assert.ErrorIs(t, err, ErrInvalidStatus)
	})

	t.Run("missing request", func(t *testing.T) {
		t.Parallel()
		f := newRequestFixture(t)

		err := f.svc.Decide(context.Background(), donor, uuid.NewString(), domain.RequestStatusAccepted)
		assert.ErrorIs(t, err, store.ErrRequestNotFound)
	})

	t.Run("missing food", func(t *testing.T) {
		t.Parallel()
		f := newRequestFixture(t)
		reqID := f.seedPending(t, uuid.NewString())

		err := f.svc.Decide(context.Background(), donor, reqID, domain.RequestStatusAccepted)
		assert.ErrorIs(t, err, store.ErrFoodNotFound)
	})

	t.Run("decided request cannot be decided again", func(t *testing.T) {
		t.Parallel()
		f := newRequestFixture(t)
		foodID := seedFood(f.foods, donor.Email, domain.FoodStatusAvailable, nil)
		reqID := f.seedPending(t, foodID)

		require.NoError(t, f.svc.Decide(context.Background(), donor, reqID, domain.RequestStatusRejected))
		err := f.svc.Decide(context.Background(), donor, reqID, domain.RequestStatusAccepted)
		assert.ErrorIs(t, err, ErrInvalidTransition)
		assert.Equal(t, domain.RequestStatusRejected, f.requests.Snapshot(reqID).Status)
	})

	t.Run("second acceptance for a donated food conflicts", func(t *testing.T) {
		t.Parallel()
		f := newRequestFixture(t)
		foodID := seedFood(f.foods, donor.Email, domain.FoodStatusAvailable, nil)
		first := f.seedPending(t, foodID)
		second := f.requests.Seed(&domain.DonationRequest{
			FoodID:    foodID,
			UserName:  "Sam",
			UserEmail: "sam@example.com",
			Status:    domain.RequestStatusPending,
		})

		require.NoError(t, f.svc.Decide(context.Background(), donor, first, domain.RequestStatusAccepted))
		err := f.svc.Decide(context.Background(), donor, second, domain.RequestStatusAccepted)
		assert.ErrorIs(t, err, ErrFoodAlreadyDonated)
		assert.Equal(t, domain.RequestStatusPending, f.requests.Snapshot(second).Status)
	})

	t.Run("concurrent double accept donates once", func(t *testing.T) {
		t.Parallel()
		f := newRequestFixture(t)
		foodID := seedFood(f.foods, donor.Email, domain.FoodStatusAvailable, nil)
		ids := make([]string, 5)
		for i := range ids {
			ids[i] = f.requests.Seed(&domain.DonationRequest{
				FoodID:    foodID,
				UserName:  "requester",
				UserEmail: uuid.NewString() + "@example.com",
				Status:    domain.RequestStatusPending,
			})
		}

		var wg sync.WaitGroup
		var accepted atomic.Int32
		for _, id := range ids {
			wg.Add(1)
			go func(id string) {
				defer wg.Done()
				if err := f.svc.Decide(context.Background(), donor, id, domain.RequestStatusAccepted); err == nil {
					accepted.Add(1)
				}
			}(id)
		}
		wg.Wait()

		assert.Equal(t, int32(1), accepted.Load())
		acceptedRequests := 0
		for _, id := range ids {
			if f.requests.Snapshot(id).Status == domain.RequestStatusAccepted {
				acceptedRequests++
			}
		}
		assert.Equal(t, 1, acceptedRequests, "compensation must leave losers Pending")
		assert.Equal(t, domain.FoodStatusDonated, f.foods.Snapshot(foodID).Status)
	})

	t.Run("decider errors are mapped", func(t *testing.T) {
		t.Parallel()

		tests := []struct {
			deciderErr error
			want       error
		}{
			{store.ErrRequestNotPending, ErrInvalidTransition},
			{store.ErrFoodNotAvailable, ErrFoodAlreadyDonated},
		}

		for _, tt := range tests {
			foods := mocks.NewFoodStore()
			requests := mocks.NewRequestStore()
			decider := &MockDecider{}
			decider.On("ApplyDecision", mock.Anything, mock.Anything, mock.Anything, domain.RequestStatusAccepted).
				Return(tt.deciderErr)

			svc, err := NewRequestService(requests, foods, decider, nil)
			require.NoError(t, err)

			foodID := seedFood(foods, donor.Email, domain.FoodStatusAvailable, nil)
			req, err := domain.NewDonationRequest(foodID, "Riley", recipient.Email)
			require.NoError(t, err)
			reqID := requests.Seed(req)

			err = svc.Decide(context.Background(), donor, reqID, domain.RequestStatusAccepted)
			assert.ErrorIs(t, err, tt.want)
			decider.AssertExpectations(t)
		}
	})

	t.Run("unexpected decider error is wrapped", func(t *testing.T) {
		t.Parallel()
		foods := mocks.NewFoodStore()
		requests := mocks.NewRequestStore()
		decider := &MockDecider{}
		decider.On("ApplyDecision", mock.Anything, mock.Anything, mock.Anything, domain.RequestStatusRejected).
			Return(errors.New("connection reset"))

		svc, err := NewRequestService(requests, foods, decider, nil)
		require.NoError(t, err)
		foodID := seedFood(foods, donor.Email, domain.FoodStatusAvailable, nil)
		req, err := domain.NewDonationRequest(foodID, "Riley", recipient.Email)
		require.NoError(t, err)
		reqID := requests.Seed(req)

		err = svc.Decide(context.Background(), donor, reqID, domain.RequestStatusRejected)
		var serviceErr *ServiceError
		require.ErrorAs(t, err, &serviceErr)
		assert.Equal(t, "decide", serviceErr.Operation)
	})
}
