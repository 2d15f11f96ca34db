package port

import (
	"context"

	"apflow/internal/domain"
)

// PurchaseOrderRepository provides read/write access to purchase orders.
// GetByNumber loads the PO together with its lines.
type PurchaseOrderRepository interface {
	Create(ctx context.Context, po *domain.PurchaseOrder) error
	GetByNumber(ctx context.Context, number string) (*domain.PurchaseOrder, error)
	List(ctx context.Context, offset, limit int) ([]domain.PurchaseOrder, int, error)
}
