package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"apflow/internal/domain"
	"apflow/internal/port"
)

type exceptionRepo struct {
	db *sqlx.DB
}

// NewExceptionRepo creates a new PostgreSQL-backed ExceptionRepository.
func NewExceptionRepo(db *sqlx.DB) port.ExceptionRepository {
	return &exceptionRepo{db: db}
}

func (r *exceptionRepo) CreateBatch(ctx context.Context, exceptions []domain.ValidationException) error {
	if len(exceptions) == 0 {
		return nil
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("exceptionRepo.CreateBatch begin: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().UTC()
	for i := range exceptions {
		exc := &exceptions[i]
		exc.CreatedAt = now
		exc.UpdatedAt = now
		_, err = tx.ExecContext(ctx, `INSERT INTO validation_exceptions (
			id, invoice_id, code, severity, status, message, details,
			resolved_by, resolved_at, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
			exc.ID, exc.InvoiceID, exc.Code, exc.Severity, exc.Status, exc.Message, exc.Details,
			exc.ResolvedBy, exc.ResolvedAt, exc.CreatedAt, exc.UpdatedAt)
		if err != nil {
			return fmt.Errorf("exceptionRepo.CreateBatch: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("exceptionRepo.CreateBatch commit: %w", err)
	}
	return nil
}

func (r *exceptionRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.ValidationException, error) {
	var exc domain.ValidationException
	err := r.db.GetContext(ctx, &exc, "SELECT * FROM validation_exceptions WHERE id = $1", id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("exceptionRepo.GetByID: %w", err)
	}
	return &exc, nil
}

func (r *exceptionRepo) ListByStatus(ctx context.Context, status domain.ExceptionStatus, offset, limit int) ([]domain.ValidationException, int, error) {
	var total int
	err := r.db.GetContext(ctx, &total,
		"SELECT COUNT(*) FROM validation_exceptions WHERE status = $1", status)
	if err != nil {
		return nil, 0, fmt.Errorf("exceptionRepo.ListByStatus count: %w", err)
	}

	var exceptions []domain.ValidationException
	err = r.db.SelectContext(ctx, &exceptions,
		`SELECT * FROM validation_exceptions WHERE status = $1
		 ORDER BY created_at DESC LIMIT $2 OFFSET $3`, status, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("exceptionRepo.ListByStatus: %w", err)
	}
	return exceptions, total, nil
}

func (r *exceptionRepo) ListByInvoice(ctx context.Context, invoiceID uuid.UUID) ([]domain.ValidationException, error) {
	var exceptions []domain.ValidationException
	err := r.db.SelectContext(ctx, &exceptions,
		"SELECT * FROM validation_exceptions WHERE invoice_id = $1 ORDER BY created_at", invoiceID)
	if err != nil {
		return nil, fmt.Errorf("exceptionRepo.ListByInvoice: %w", err)
	}
	return exceptions, nil
}

func (r *exceptionRepo) Update(ctx context.Context, exc *domain.ValidationException) error {
	exc.UpdatedAt = time.Now().UTC()

	res, err := r.db.ExecContext(ctx, `UPDATE validation_exceptions SET
		status = $2, resolved_by = $3, resolved_at = $4, updated_at = $5
	WHERE id = $1`,
		exc.ID, exc.Status, exc.ResolvedBy, exc.ResolvedAt, exc.UpdatedAt)
	if err != nil {
		return fmt.Errorf("exceptionRepo.Update: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrNotFound
	}
	return nil
}
