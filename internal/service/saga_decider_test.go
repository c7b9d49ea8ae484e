package service

import (
	"context"
	"errors"
	"testing"

	"github.com/phrazzld/shareplate-api/internal/domain"
	"github.com/phrazzld/shareplate-api/internal/mocks"
	"github.com/phrazzld/shareplate-api/internal/platform/logger"
	"github.com/phrazzld/shareplate-api/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSagaDecider(t *testing.T) {
	t.Parallel()

	_, err := NewSagaDecider(nil, mocks.NewFoodStore(), nil)
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = NewSagaDecider(mocks.NewRequestStore(), nil, nil)
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestSagaDecider_ApplyDecision(t *testing.T) {
	t.Parallel()

	setup := func(t *testing.T, foodStatus domain.FoodStatus) (*SagaDecider, *mocks.RequestStore, *mocks.FoodStore, string, string, *logger.TestLogBuffer) {
		t.Helper()
		foods := mocks.NewFoodStore()
		requests := mocks.NewRequestStore()
		buf, log := logger.NewTestLogger(t)
		d, err := NewSagaDecider(requests, foods, log)
		require.NoError(t, err)

		foodID := seedFood(foods, donor.Email, foodStatus, nil)
		req, err := domain.NewDonationRequest(foodID, "Riley", recipient.Email)
		require.NoError(t, err)
		return d, requests, foods, requests.Seed(req), foodID, buf
	}

	t.Run("accept moves both documents", func(t *testing.T) {
		t.Parallel()
		d, requests, foods, reqID, foodID, _ := setup(t, domain.FoodStatusAvailable)

		require.NoError(t, d.ApplyDecision(context.Background(), reqID, foodID, domain.RequestStatusAccepted))
		assert.Equal(t, domain.RequestStatusAccepted, requests.Snapshot(reqID).Status)
		assert.Equal(t, domain.FoodStatusDonated, foods.Snapshot(foodID).Status)
	})

	t.Run("reject never touches the food", func(t *testing.T) {
		t.Parallel()
		d, requests, foods, reqID, foodID, _ := setup(t, domain.FoodStatusAvailable)
		foods.SetStatusFn = func(context.Context, string, domain.FoodStatus, domain.FoodStatus) error {
			t.Fatal("food status must not change on reject")
			return nil
		}

		require.NoError(t, d.ApplyDecision(context.Background(), reqID, foodID, domain.RequestStatusRejected))
		assert.Equal(t, domain.RequestStatusRejected, requests.Snapshot(reqID).Status)
	})

	t.Run("stale request is reported", func(t *testing.T) {
		t.Parallel()
		d, requests, _, reqID, foodID, _ := setup(t, domain.FoodStatusAvailable)
		require.NoError(t, requests.SetStatus(context.Background(), reqID,
			domain.RequestStatusPending, domain.RequestStatusRejected))

		err := d.ApplyDecision(context.Background(), reqID, foodID, domain.RequestStatusAccepted)
		assert.ErrorIs(t, err, store.ErrRequestNotPending)
	})

	t.Run("food step failure compensates request", func(t *testing.T) {
		t.Parallel()
		d, requests, foods, reqID, foodID, buf := setup(t, domain.FoodStatusDonated)

		err := d.ApplyDecision(context.Background(), reqID, foodID, domain.RequestStatusAccepted)
		assert.ErrorIs(t, err, store.ErrFoodNotAvailable)
		assert.Equal(t, domain.RequestStatusPending, requests.Snapshot(reqID).Status)
		assert.Equal(t, domain.FoodStatusDonated, foods.Snapshot(foodID).Status)
		logger.AssertLogContains(t, buf, "compensating request")
	})

	t.Run("failed compensation is logged at error", func(t *testing.T) {
		t.Parallel()
		d, requests, foods, reqID, foodID, buf := setup(t, domain.FoodStatusAvailable)
		foods.SetStatusFn = func(context.Context, string, domain.FoodStatus, domain.FoodStatus) error {
			return errors.New("write conflict")
		}
		calls := 0
		requests.SetStatusFn = func(context.Context, string, domain.RequestStatus, domain.RequestStatus) error {
			calls++
			if calls > 1 {
				return errors.New("primary stepped down")
			}
			return nil
		}

		err := d.ApplyDecision(context.Background(), reqID, foodID, domain.RequestStatusAccepted)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "write conflict")
		assert.Contains(t, err.Error(), "primary stepped down")
		assert.Equal(t, 2, calls, "one claim and one compensation attempt")

		logger.AssertLogField(t, buf, "level", "ERROR")
		logger.AssertLogField(t, buf, "request_id", reqID)
		logger.AssertLogField(t, buf, "food_id", foodID)
	})

	t.Run("pending is not a decision", func(t *testing.T) {
		t.Parallel()
		d, _, _, reqID, foodID, _ := setup(t, domain.FoodStatusAvailable)

		err := d.ApplyDecision(context.Background(), reqID, foodID, domain.RequestStatusPending)
		assert.ErrorIs(t, err, domain.ErrInvalidRequestStatus)
	})
}
