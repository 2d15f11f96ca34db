package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"apflow/internal/domain"
)

// MockStatsRepo is a mock implementation of port.StatsRepository.
type MockStatsRepo struct {
	mock.Mock
}

func (m *MockStatsRepo) WeeklyStats(ctx context.Context, weekStart time.Time) (*domain.WeeklyStats, error) {
	args := m.Called(ctx, weekStart)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.WeeklyStats), args.Error(1)
}

func (m *MockStatsRepo) TopFailingVendors(ctx context.Context, since time.Time, limit int) ([]domain.VendorFailureStat, error) {
	args := m.Called(ctx, since, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.VendorFailureStat), args.Error(1)
}
