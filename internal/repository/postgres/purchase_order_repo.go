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

type purchaseOrderRepo struct {
	db *sqlx.DB
}

// NewPurchaseOrderRepo creates a new PostgreSQL-backed PurchaseOrderRepository.
func NewPurchaseOrderRepo(db *sqlx.DB) port.PurchaseOrderRepository {
	return &purchaseOrderRepo{db: db}
}

func (r *purchaseOrderRepo) Create(ctx context.Context, po *domain.PurchaseOrder) error {
	now := time.Now().UTC()
	po.CreatedAt = now
	po.UpdatedAt = now

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("purchaseOrderRepo.Create begin: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `INSERT INTO purchase_orders (
		id, po_number, vendor_id, vendor_name, status, currency,
		total_amount, order_date, created_at, updated_at
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		po.ID, po.Number, po.VendorID, po.VendorName, po.Status, po.Currency,
		po.TotalAmount, po.OrderDate, po.CreatedAt, po.UpdatedAt)
	if err != nil {
		if strings.Contains(err.Error(), "duplicate key") {
			return domain.ErrDuplicatePONumber
		}
		return fmt.Errorf("purchaseOrderRepo.Create: %w", err)
	}

	for i := range po.Lines {
		line := &po.Lines[i]
		if line.ID == uuid.Nil {
			line.ID = uuid.New()
		}
		line.POID = po.ID
		_, err = tx.ExecContext(ctx, `INSERT INTO purchase_order_lines (
			id, po_id, line_number, sku, description, quantity, unit_price, amount
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			line.ID, line.POID, line.LineNumber, line.SKU, line.Description,
			line.Quantity, line.UnitPrice, line.Amount)
		if err != nil {
			return fmt.Errorf("purchaseOrderRepo.Create line %d: %w", line.LineNumber, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("purchaseOrderRepo.Create commit: %w", err)
	}
	return nil
}

func (r *purchaseOrderRepo) GetByNumber(ctx context.Context, number string) (*domain.PurchaseOrder, error) {
	var po domain.PurchaseOrder
	err := r.db.GetContext(ctx, &po,
		"SELECT * FROM purchase_orders WHERE po_number = $1", number)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("purchaseOrderRepo.GetByNumber: %w", err)
	}

	err = r.db.SelectContext(ctx, &po.Lines,
		"SELECT * FROM purchase_order_lines WHERE po_id = $1 ORDER BY line_number", po.ID)
	if err != nil {
		return nil, fmt.Errorf("purchaseOrderRepo.GetByNumber lines: %w", err)
	}
	return &po, nil
}

func (r *purchaseOrderRepo) List(ctx context.Context, offset, limit int) ([]domain.PurchaseOrder, int, error) {
	var total int
	err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM purchase_orders")
	if err != nil {
		return nil, 0, fmt.Errorf("purchaseOrderRepo.List count: %w", err)
	}

	var pos []domain.PurchaseOrder
	err = r.db.SelectContext(ctx, &pos,
		"SELECT * FROM purchase_orders ORDER BY order_date DESC LIMIT $1 OFFSET $2", limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("purchaseOrderRepo.List: %w", err)
	}
	return pos, total, nil
}
