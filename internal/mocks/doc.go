// Package mocks provides centralized mock implementations for testing.
//
// The stores here are in-memory but behave like the real backends: IDs must
// be well-formed UUIDs, status updates are compare-and-swap, and the
// (food_id, user_email) uniqueness constraint is enforced. Every method can be
// overridden through a function field, and fixed error fields cover the
// common failure cases.
//
// Usage:
//
//	foods := mocks.NewFoodStore()
//	foods.SetStatusFn = func(ctx context.Context, id string, from, to domain.FoodStatus) error {
//	    return store.ErrFoodNotAvailable
//	}
package mocks
