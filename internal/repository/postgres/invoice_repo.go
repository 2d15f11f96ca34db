package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"apflow/internal/domain"
	"apflow/internal/port"
)

type invoiceRepo struct {
	db *sqlx.DB
}

// NewInvoiceRepo creates a new PostgreSQL-backed InvoiceRepository.
func NewInvoiceRepo(db *sqlx.DB) port.InvoiceRepository {
	return &invoiceRepo{db: db}
}

func (r *invoiceRepo) Create(ctx context.Context, inv *domain.Invoice) error {
	now := time.Now().UTC()
	inv.CreatedAt = now
	inv.UpdatedAt = now

	query := `INSERT INTO invoices (
		id, vendor_id, vendor_name, invoice_number, po_number, currency,
		total_amount, invoice_date, due_date, status,
		extraction_data, validation_results, confidence_score, validated_at,
		created_at, updated_at
	) VALUES (
		$1, $2, $3, $4, $5, $6,
		$7, $8, $9, $10,
		$11, $12, $13, $14,
		$15, $16
	)`

	_, err := r.db.ExecContext(ctx, query,
		inv.ID, inv.VendorID, inv.VendorName, inv.InvoiceNumber, inv.PONumber, inv.Currency,
		inv.TotalAmount, inv.InvoiceDate, inv.DueDate, inv.Status,
		inv.ExtractionData, inv.ValidationResults, inv.ConfidenceScore, inv.ValidatedAt,
		inv.CreatedAt, inv.UpdatedAt)
	if err != nil {
		return fmt.Errorf("invoiceRepo.Create: %w", err)
	}
	return nil
}

func (r *invoiceRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Invoice, error) {
	var inv domain.Invoice
	err := r.db.GetContext(ctx, &inv, "SELECT * FROM invoices WHERE id = $1", id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("invoiceRepo.GetByID: %w", err)
	}
	return &inv, nil
}

func (r *invoiceRepo) List(ctx context.Context, offset, limit int) ([]domain.Invoice, int, error) {
	var total int
	err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM invoices")
	if err != nil {
		return nil, 0, fmt.Errorf("invoiceRepo.List count: %w", err)
	}

	var invoices []domain.Invoice
	err = r.db.SelectContext(ctx, &invoices,
		"SELECT * FROM invoices ORDER BY created_at DESC LIMIT $1 OFFSET $2", limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("invoiceRepo.List: %w", err)
	}
	return invoices, total, nil
}

func (r *invoiceRepo) FindByVendorAndNumber(ctx context.Context, vendorID uuid.UUID, invoiceNumber string, excludeID *uuid.UUID) ([]domain.Invoice, error) {
	query := `SELECT * FROM invoices
		WHERE vendor_id = $1 AND invoice_number = $2 AND status != 'cancelled'`
	args := []any{vendorID, invoiceNumber}
	if excludeID != nil {
		query += " AND id != $3"
		args = append(args, *excludeID)
	}
	query += " ORDER BY created_at DESC"

	var invoices []domain.Invoice
	err := r.db.SelectContext(ctx, &invoices, query, args...)
	if err != nil {
		return nil, fmt.Errorf("invoiceRepo.FindByVendorAndNumber: %w", err)
	}
	return invoices, nil
}

func (r *invoiceRepo) SumOutstandingByVendor(ctx context.Context, vendorID uuid.UUID) (decimal.Decimal, error) {
	query, args, err := sqlx.In(
		`SELECT COALESCE(SUM(total_amount), 0) FROM invoices
		 WHERE vendor_id = ? AND status IN (?)`,
		vendorID, domain.OutstandingInvoiceStatuses)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invoiceRepo.SumOutstandingByVendor: %w", err)
	}

	var sum decimal.Decimal
	err = r.db.GetContext(ctx, &sum, r.db.Rebind(query), args...)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invoiceRepo.SumOutstandingByVendor: %w", err)
	}
	return sum, nil
}

func (r *invoiceRepo) UpdateValidationOutcome(ctx context.Context, inv *domain.Invoice) error {
	inv.UpdatedAt = time.Now().UTC()

	res, err := r.db.ExecContext(ctx, `UPDATE invoices SET
		vendor_id = $2, status = $3, validation_results = $4,
		confidence_score = $5, validated_at = $6, updated_at = $7
	WHERE id = $1`,
		inv.ID, inv.VendorID, inv.Status, inv.ValidationResults,
		inv.ConfidenceScore, inv.ValidatedAt, inv.UpdatedAt)
	if err != nil {
		return fmt.Errorf("invoiceRepo.UpdateValidationOutcome: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrNotFound
	}
	return nil
}
