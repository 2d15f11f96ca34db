package port

import (
	"context"

	"apflow/internal/domain"
)

// GoodsReceiptRepository provides access to goods receipt notes.
// ListByPONumber loads each GRN together with its lines.
type GoodsReceiptRepository interface {
	Create(ctx context.Context, grn *domain.GoodsReceiptNote) error
	ListByPONumber(ctx context.Context, poNumber string) ([]domain.GoodsReceiptNote, error)
}
