package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"apflow/internal/domain"
	"apflow/internal/port"
	"apflow/internal/validation"
)

// ExceptionService manages the validation exception workflow. It also
// serves as the validation engine's exception tracker.
type ExceptionService interface {
	CreateFromValidation(ctx context.Context, invoiceID uuid.UUID, issues []validation.Issue) error
	Get(ctx context.Context, id uuid.UUID) (*domain.ValidationException, error)
	ListByStatus(ctx context.Context, status domain.ExceptionStatus, offset, limit int) ([]domain.ValidationException, int, error)
	ListByInvoice(ctx context.Context, invoiceID uuid.UUID) ([]domain.ValidationException, error)
	Resolve(ctx context.Context, id uuid.UUID, status domain.ExceptionStatus, resolvedBy string) (*domain.ValidationException, error)
}

type exceptionService struct {
	exceptions port.ExceptionRepository
}

// NewExceptionService creates a new ExceptionService implementation.
func NewExceptionService(exceptions port.ExceptionRepository) ExceptionService {
	return &exceptionService{exceptions: exceptions}
}

// CreateFromValidation records one open exception per error-severity issue.
func (s *exceptionService) CreateFromValidation(ctx context.Context, invoiceID uuid.UUID, issues []validation.Issue) error {
	var batch []domain.ValidationException
	for _, issue := range issues {
		if issue.Severity != domain.SeverityError {
			continue
		}
		details, err := json.Marshal(issue)
		if err != nil {
			log.Printf("exceptionService.CreateFromValidation: marshal issue %s: %v", issue.Code, err)
			details = nil
		}
		batch = append(batch, domain.ValidationException{
			ID:        uuid.New(),
			InvoiceID: invoiceID,
			Code:      string(issue.Code),
			Severity:  issue.Severity,
			Status:    domain.ExceptionStatusOpen,
			Message:   issue.Message,
			Details:   details,
		})
	}
	if len(batch) == 0 {
		return nil
	}

	if err := s.exceptions.CreateBatch(ctx, batch); err != nil {
		return fmt.Errorf("exceptionService.CreateFromValidation: %w", err)
	}
	log.Printf("exceptionService.CreateFromValidation: %d exception(s) opened for invoice %s", len(batch), invoiceID)
	return nil
}

func (s *exceptionService) Get(ctx context.Context, id uuid.UUID) (*domain.ValidationException, error) {
	return s.exceptions.GetByID(ctx, id)
}

func (s *exceptionService) ListByStatus(ctx context.Context, status domain.ExceptionStatus, offset, limit int) ([]domain.ValidationException, int, error) {
	return s.exceptions.ListByStatus(ctx, status, offset, limit)
}

func (s *exceptionService) ListByInvoice(ctx context.Context, invoiceID uuid.UUID) ([]domain.ValidationException, error) {
	return s.exceptions.ListByInvoice(ctx, invoiceID)
}

// Resolve moves an exception into a terminal or review state. Resolved and
// dismissed exceptions cannot be reopened.
func (s *exceptionService) Resolve(ctx context.Context, id uuid.UUID, status domain.ExceptionStatus, resolvedBy string) (*domain.ValidationException, error) {
	exc, err := s.exceptions.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if exc.Status == domain.ExceptionStatusResolved || exc.Status == domain.ExceptionStatusDismissed {
		return nil, domain.ErrExceptionClosed
	}

	exc.Status = status
	if status == domain.ExceptionStatusResolved || status == domain.ExceptionStatusDismissed {
		now := time.Now().UTC()
		exc.ResolvedBy = resolvedBy
		exc.ResolvedAt = &now
	}

	if err := s.exceptions.Update(ctx, exc); err != nil {
		return nil, fmt.Errorf("exceptionService.Resolve: %w", err)
	}
	return exc, nil
}
