package port

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"apflow/internal/domain"
)

// InvoiceRepository provides read/write access to ingested invoices.
type InvoiceRepository interface {
	Create(ctx context.Context, inv *domain.Invoice) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Invoice, error)
	List(ctx context.Context, offset, limit int) ([]domain.Invoice, int, error)
	// FindByVendorAndNumber returns invoices for the vendor with the given
	// invoice number, excluding excludeID when non-nil. Used for duplicate
	// detection.
	FindByVendorAndNumber(ctx context.Context, vendorID uuid.UUID, invoiceNumber string, excludeID *uuid.UUID) ([]domain.Invoice, error)
	// SumOutstandingByVendor sums the totals of all currently-outstanding
	// invoices for the vendor (pending, validated, approved).
	SumOutstandingByVendor(ctx context.Context, vendorID uuid.UUID) (decimal.Decimal, error)
	UpdateValidationOutcome(ctx context.Context, inv *domain.Invoice) error
}
