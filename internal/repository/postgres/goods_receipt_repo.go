package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"apflow/internal/domain"
	"apflow/internal/port"
)

type goodsReceiptRepo struct {
	db *sqlx.DB
}

// NewGoodsReceiptRepo creates a new PostgreSQL-backed GoodsReceiptRepository.
func NewGoodsReceiptRepo(db *sqlx.DB) port.GoodsReceiptRepository {
	return &goodsReceiptRepo{db: db}
}

func (r *goodsReceiptRepo) Create(ctx context.Context, grn *domain.GoodsReceiptNote) error {
	grn.CreatedAt = time.Now().UTC()

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("goodsReceiptRepo.Create begin: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `INSERT INTO goods_receipt_notes (
		id, grn_number, po_number, status, received_at, created_at
	) VALUES ($1, $2, $3, $4, $5, $6)`,
		grn.ID, grn.Number, grn.PONumber, grn.Status, grn.ReceivedAt, grn.CreatedAt)
	if err != nil {
		if strings.Contains(err.Error(), "duplicate key") {
			return domain.ErrDuplicateGRNNumber
		}
		return fmt.Errorf("goodsReceiptRepo.Create: %w", err)
	}

	for i := range grn.Lines {
		line := &grn.Lines[i]
		if line.ID == uuid.Nil {
			line.ID = uuid.New()
		}
		line.GRNID = grn.ID
		_, err = tx.ExecContext(ctx, `INSERT INTO goods_receipt_lines (
			id, grn_id, line_number, sku, description, quantity_received
		) VALUES ($1, $2, $3, $4, $5, $6)`,
			line.ID, line.GRNID, line.LineNumber, line.SKU, line.Description, line.QuantityReceived)
		if err != nil {
			return fmt.Errorf("goodsReceiptRepo.Create line %d: %w", line.LineNumber, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("goodsReceiptRepo.Create commit: %w", err)
	}
	return nil
}

func (r *goodsReceiptRepo) ListByPONumber(ctx context.Context, poNumber string) ([]domain.GoodsReceiptNote, error) {
	var grns []domain.GoodsReceiptNote
	err := r.db.SelectContext(ctx, &grns,
		`SELECT * FROM goods_receipt_notes
		 WHERE po_number = $1 AND status != 'cancelled' ORDER BY received_at`, poNumber)
	if err != nil {
		return nil, fmt.Errorf("goodsReceiptRepo.ListByPONumber: %w", err)
	}

	for i := range grns {
		err = r.db.SelectContext(ctx, &grns[i].Lines,
			"SELECT * FROM goods_receipt_lines WHERE grn_id = $1 ORDER BY line_number", grns[i].ID)
		if err != nil {
			return nil, fmt.Errorf("goodsReceiptRepo.ListByPONumber lines: %w", err)
		}
	}
	return grns, nil
}
