package port

import (
	"context"

	"github.com/google/uuid"

	"apflow/internal/domain"
)

// VendorRepository provides read/write access to vendor reference data.
type VendorRepository interface {
	Create(ctx context.Context, vendor *domain.Vendor) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Vendor, error)
	// FindByName returns vendors whose name loosely matches the given name
	// (case-insensitive substring). Callers apply stricter fuzzy ranking.
	FindByName(ctx context.Context, name string) ([]domain.Vendor, error)
	List(ctx context.Context, offset, limit int) ([]domain.Vendor, int, error)
	Update(ctx context.Context, vendor *domain.Vendor) error
}
