package client

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/AccelByte/extend-idle-progression/pkg/domain"
)

// MockUnlockPublisher is a mock implementation of UnlockPublisher for testing.
// It uses testify/mock to allow test assertions on method calls.
type MockUnlockPublisher struct {
	mock.Mock
}

// PublishUnlock mocks publishing an unlock.
func (m *MockUnlockPublisher) PublishUnlock(ctx context.Context, sessionID string, unlock domain.Unlock) error {
	args := m.Called(ctx, sessionID, unlock)
	return args.Error(0)
}

// NewMockUnlockPublisher creates a new mock publisher.
func NewMockUnlockPublisher() *MockUnlockPublisher {
	return &MockUnlockPublisher{}
}
