package port

import (
	"context"

	"github.com/google/uuid"

	"apflow/internal/domain"
)

// ExceptionRepository provides read/write access to validation exceptions.
type ExceptionRepository interface {
	CreateBatch(ctx context.Context, exceptions []domain.ValidationException) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.ValidationException, error)
	ListByStatus(ctx context.Context, status domain.ExceptionStatus, offset, limit int) ([]domain.ValidationException, int, error)
	ListByInvoice(ctx context.Context, invoiceID uuid.UUID) ([]domain.ValidationException, error)
	Update(ctx context.Context, exc *domain.ValidationException) error
}
