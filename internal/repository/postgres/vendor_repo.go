package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"apflow/internal/domain"
	"apflow/internal/port"
)

type vendorRepo struct {
	db *sqlx.DB
}

// NewVendorRepo creates a new PostgreSQL-backed VendorRepository.
func NewVendorRepo(db *sqlx.DB) port.VendorRepository {
	return &vendorRepo{db: db}
}

func (r *vendorRepo) Create(ctx context.Context, vendor *domain.Vendor) error {
	now := time.Now().UTC()
	vendor.CreatedAt = now
	vendor.UpdatedAt = now

	query := `INSERT INTO vendors (
		id, name, tax_id, currency, status, is_active,
		credit_limit, payment_terms_days, contact_email,
		created_at, updated_at
	) VALUES (
		$1, $2, $3, $4, $5, $6,
		$7, $8, $9,
		$10, $11
	)`

	_, err := r.db.ExecContext(ctx, query,
		vendor.ID, vendor.Name, vendor.TaxID, vendor.Currency, vendor.Status, vendor.IsActive,
		vendor.CreditLimit, vendor.PaymentTermsDays, vendor.ContactEmail,
		vendor.CreatedAt, vendor.UpdatedAt)
	if err != nil {
		if strings.Contains(err.Error(), "duplicate key") {
			return domain.ErrDuplicateVendorName
		}
		return fmt.Errorf("vendorRepo.Create: %w", err)
	}
	return nil
}

func (r *vendorRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Vendor, error) {
	var vendor domain.Vendor
	err := r.db.GetContext(ctx, &vendor, "SELECT * FROM vendors WHERE id = $1", id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("vendorRepo.GetByID: %w", err)
	}
	return &vendor, nil
}

func (r *vendorRepo) FindByName(ctx context.Context, name string) ([]domain.Vendor, error) {
	// Loose pre-filter: first word of the name, case-insensitive. Callers
	// apply stricter fuzzy ranking over the candidates.
	needle := strings.TrimSpace(name)
	if fields := strings.Fields(needle); len(fields) > 0 {
		needle = fields[0]
	}
	var vendors []domain.Vendor
	err := r.db.SelectContext(ctx, &vendors,
		"SELECT * FROM vendors WHERE name ILIKE '%' || $1 || '%' ORDER BY name LIMIT 50", needle)
	if err != nil {
		return nil, fmt.Errorf("vendorRepo.FindByName: %w", err)
	}
	return vendors, nil
}

func (r *vendorRepo) List(ctx context.Context, offset, limit int) ([]domain.Vendor, int, error) {
	var total int
	err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM vendors")
	if err != nil {
		return nil, 0, fmt.Errorf("vendorRepo.List count: %w", err)
	}

	var vendors []domain.Vendor
	err = r.db.SelectContext(ctx, &vendors,
		"SELECT * FROM vendors ORDER BY name LIMIT $1 OFFSET $2", limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("vendorRepo.List: %w", err)
	}
	return vendors, total, nil
}

func (r *vendorRepo) Update(ctx context.Context, vendor *domain.Vendor) error {
	vendor.UpdatedAt = time.Now().UTC()

	query := `UPDATE vendors SET
		name = $2, tax_id = $3, currency = $4, status = $5, is_active = $6,
		credit_limit = $7, payment_terms_days = $8, contact_email = $9,
		updated_at = $10
	WHERE id = $1`

	res, err := r.db.ExecContext(ctx, query,
		vendor.ID, vendor.Name, vendor.TaxID, vendor.Currency, vendor.Status, vendor.IsActive,
		vendor.CreditLimit, vendor.PaymentTermsDays, vendor.ContactEmail,
		vendor.UpdatedAt)
	if err != nil {
		if strings.Contains(err.Error(), "duplicate key") {
			return domain.ErrDuplicateVendorName
		}
		return fmt.Errorf("vendorRepo.Update: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrNotFound
	}
	return nil
}
