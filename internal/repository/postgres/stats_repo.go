package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"apflow/internal/domain"
	"apflow/internal/port"
)

type statsRepo struct {
	db *sqlx.DB
}

// NewStatsRepo creates a new PostgreSQL-backed StatsRepository.
func NewStatsRepo(db *sqlx.DB) port.StatsRepository {
	return &statsRepo{db: db}
}

const weeklyStatsQuery = `SELECT
	COUNT(*) AS invoices_total,
	COUNT(CASE WHEN status = 'validated' OR status = 'approved' OR status = 'paid' THEN 1 END) AS validated,
	COUNT(CASE WHEN status = 'failed_validation' THEN 1 END) AS failed,
	COUNT(CASE WHEN status = 'pending_validation' THEN 1 END) AS pending,
	COALESCE(SUM(total_amount), 0) AS amount_total,
	COALESCE(AVG(confidence_score), 0) AS avg_confidence
FROM invoices
WHERE created_at >= $1 AND created_at < $2`

func (r *statsRepo) WeeklyStats(ctx context.Context, weekStart time.Time) (*domain.WeeklyStats, error) {
	weekEnd := weekStart.AddDate(0, 0, 7)

	var stats domain.WeeklyStats
	if err := r.db.GetContext(ctx, &stats, weeklyStatsQuery, weekStart, weekEnd); err != nil {
		return nil, fmt.Errorf("statsRepo.WeeklyStats invoices: %w", err)
	}
	stats.WeekStart = weekStart

	var openExceptions int
	if err := r.db.GetContext(ctx, &openExceptions,
		`SELECT COUNT(*) FROM validation_exceptions e
		 INNER JOIN invoices i ON i.id = e.invoice_id
		 WHERE e.status IN ('open', 'in_review')
		   AND i.created_at >= $1 AND i.created_at < $2`,
		weekStart, weekEnd); err != nil {
		return nil, fmt.Errorf("statsRepo.WeeklyStats exceptions: %w", err)
	}
	stats.OpenExceptions = openExceptions

	return &stats, nil
}

func (r *statsRepo) TopFailingVendors(ctx context.Context, since time.Time, limit int) ([]domain.VendorFailureStat, error) {
	var stats []domain.VendorFailureStat
	err := r.db.SelectContext(ctx, &stats,
		`SELECT vendor_name, COUNT(*) AS failures
		 FROM invoices
		 WHERE status = 'failed_validation' AND created_at >= $1 AND vendor_name != ''
		 GROUP BY vendor_name
		 ORDER BY failures DESC, vendor_name
		 LIMIT $2`, since, limit)
	if err != nil {
		return nil, fmt.Errorf("statsRepo.TopFailingVendors: %w", err)
	}
	return stats, nil
}
