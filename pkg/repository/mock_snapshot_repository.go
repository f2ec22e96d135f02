package repository

import (
	"context"

	"github.com/AccelByte/extend-idle-progression/pkg/domain"

	"github.com/stretchr/testify/mock"
)

// MockSnapshotRepository is a testify mock of SnapshotRepository.
type MockSnapshotRepository struct {
	mock.Mock
}

func (m *MockSnapshotRepository) Load(ctx context.Context, slot string) (*domain.Snapshot, error) {
	args := m.Called(ctx, slot)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Snapshot), args.Error(1)
}

func (m *MockSnapshotRepository) Save(ctx context.Context, slot string, snapshot *domain.Snapshot) error {
	args := m.Called(ctx, slot, snapshot)
	return args.Error(0)
}

func (m *MockSnapshotRepository) Delete(ctx context.Context, slot string) error {
	args := m.Called(ctx, slot)
	return args.Error(0)
}

func (m *MockSnapshotRepository) ListSlots(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

var _ SnapshotRepository = (*MockSnapshotRepository)(nil)
