package service

import (
	"context"

	"github.com/phrazzld/shareplate-api/internal/domain"
	"github.com/stretchr/testify/mock"
)

// MockDecider mocks the store.Decider interface
type MockDecider struct {
	mock.Mock
}

func (m *MockDecider) ApplyDecision(
	ctx context.Context,
	requestID, foodID string,
	status domain.RequestStatus,
) error {
	args := m.Called(ctx, requestID, foodID, status)
	return args.Error(0)
}
