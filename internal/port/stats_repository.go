package port

import (
	"context"
	"time"

	"apflow/internal/domain"
)

// StatsRepository aggregates validation outcomes for reporting.
type StatsRepository interface {
	WeeklyStats(ctx context.Context, weekStart time.Time) (*domain.WeeklyStats, error)
	TopFailingVendors(ctx context.Context, since time.Time, limit int) ([]domain.VendorFailureStat, error)
}
