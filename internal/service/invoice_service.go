package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"apflow/internal/domain"
	"apflow/internal/metrics"
	"apflow/internal/port"
	"apflow/internal/validation"
)

// IngestInvoiceInput is the DTO for invoice intake.
type IngestInvoiceInput struct {
	Extraction validation.ExtractedInvoice `json:"extraction" binding:"required"`
	VendorID   *uuid.UUID                  `json:"vendor_id"`
	StrictMode bool                        `json:"strict_mode"`
}

// InvoiceService runs the invoice intake pipeline: persist, validate,
// record the outcome.
type InvoiceService interface {
	Ingest(ctx context.Context, input IngestInvoiceInput) (*domain.Invoice, *validation.Result, error)
	Get(ctx context.Context, id uuid.UUID) (*domain.Invoice, error)
	List(ctx context.Context, offset, limit int) ([]domain.Invoice, int, error)
	Revalidate(ctx context.Context, id uuid.UUID, strictMode bool) (*domain.Invoice, *validation.Result, error)
	// DryRun validates an extraction without persisting anything.
	DryRun(ctx context.Context, input IngestInvoiceInput) *validation.Result
}

type invoiceService struct {
	invoices  port.InvoiceRepository
	validator *validation.Service
	collector *metrics.Collector
}

// NewInvoiceService creates a new InvoiceService implementation.
// collector may be nil; validation outcomes are then not recorded.
func NewInvoiceService(invoices port.InvoiceRepository, validator *validation.Service, collector *metrics.Collector) InvoiceService {
	return &invoiceService{invoices: invoices, validator: validator, collector: collector}
}

// runValidation runs the validator and records the outcome metrics.
func (s *invoiceService) runValidation(ctx context.Context, extraction validation.ExtractedInvoice, opts validation.Options) *validation.Result {
	start := time.Now()
	res := s.validator.ValidateInvoice(ctx, extraction, opts)
	s.collector.RecordValidation(time.Since(start), res.ConfidenceScore, res.Passed)
	return res
}

func (s *invoiceService) Ingest(ctx context.Context, input IngestInvoiceInput) (*domain.Invoice, *validation.Result, error) {
	invoice, err := s.buildInvoice(input)
	if err != nil {
		return nil, nil, err
	}

	if err := s.invoices.Create(ctx, invoice); err != nil {
		return nil, nil, fmt.Errorf("invoiceService.Ingest: %w", err)
	}
	log.Printf("invoiceService.Ingest: invoice %s (%s from %q) received",
		invoice.ID, invoice.InvoiceNumber, invoice.VendorName)

	res := s.runValidation(ctx, input.Extraction, validation.Options{
		InvoiceID:  &invoice.ID,
		VendorID:   input.VendorID,
		StrictMode: input.StrictMode,
	})

	if err := s.recordOutcome(ctx, invoice, res); err != nil {
		return nil, nil, err
	}
	return invoice, res, nil
}

func (s *invoiceService) Get(ctx context.Context, id uuid.UUID) (*domain.Invoice, error) {
	return s.invoices.GetByID(ctx, id)
}

func (s *invoiceService) List(ctx context.Context, offset, limit int) ([]domain.Invoice, int, error) {
	return s.invoices.List(ctx, offset, limit)
}

func (s *invoiceService) Revalidate(ctx context.Context, id uuid.UUID, strictMode bool) (*domain.Invoice, *validation.Result, error) {
	invoice, err := s.invoices.GetByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	var extraction validation.ExtractedInvoice
	if err := json.Unmarshal(invoice.ExtractionData, &extraction); err != nil {
		return nil, nil, fmt.Errorf("invoiceService.Revalidate: %w: %v", domain.ErrInvalidExtraction, err)
	}

	res := s.runValidation(ctx, extraction, validation.Options{
		InvoiceID:  &invoice.ID,
		VendorID:   invoice.VendorID,
		StrictMode: strictMode,
	})

	if err := s.recordOutcome(ctx, invoice, res); err != nil {
		return nil, nil, err
	}
	return invoice, res, nil
}

func (s *invoiceService) DryRun(ctx context.Context, input IngestInvoiceInput) *validation.Result {
	return s.runValidation(ctx, input.Extraction, validation.Options{
		VendorID:   input.VendorID,
		StrictMode: input.StrictMode,
	})
}

func (s *invoiceService) buildInvoice(input IngestInvoiceInput) (*domain.Invoice, error) {
	header := input.Extraction.ParsedHeader()
	if header.VendorName == "" && header.InvoiceNumber == "" && len(input.Extraction.Lines) == 0 {
		return nil, domain.ErrInvalidExtraction
	}

	raw, err := json.Marshal(input.Extraction)
	if err != nil {
		return nil, fmt.Errorf("invoiceService.buildInvoice: %w", err)
	}

	invoice := &domain.Invoice{
		ID:             uuid.New(),
		VendorID:       input.VendorID,
		VendorName:     header.VendorName,
		InvoiceNumber:  header.InvoiceNumber,
		PONumber:       header.PONumber,
		Currency:       header.Currency,
		TotalAmount:    decimal.Zero,
		Status:         domain.InvoiceStatusPending,
		ExtractionData: raw,
	}
	if header.Total != nil {
		invoice.TotalAmount = *header.Total
	}
	if d, err := validation.ParseDate(header.InvoiceDate); err == nil {
		invoice.InvoiceDate = &d
	}
	if d, err := validation.ParseDate(header.DueDate); err == nil {
		invoice.DueDate = &d
	}
	return invoice, nil
}

func (s *invoiceService) recordOutcome(ctx context.Context, invoice *domain.Invoice, res *validation.Result) error {
	serialized, err := json.Marshal(res)
	if err != nil {
		return fmt.Errorf("invoiceService.recordOutcome: %w", err)
	}

	now := time.Now().UTC()
	invoice.Status = domain.InvoiceStatusFailed
	if res.Passed {
		invoice.Status = domain.InvoiceStatusValidated
	}
	invoice.ValidationResults = serialized
	invoice.ConfidenceScore = &res.ConfidenceScore
	invoice.ValidatedAt = &now
	if invoice.VendorID == nil && res.VendorPolicy != nil {
		invoice.VendorID = res.VendorPolicy.VendorID
	}

	if err := s.invoices.UpdateValidationOutcome(ctx, invoice); err != nil {
		return fmt.Errorf("invoiceService.recordOutcome: %w", err)
	}
	log.Printf("invoiceService.recordOutcome: invoice %s %s (confidence %.2f, %d issue(s))",
		invoice.ID, invoice.Status, res.ConfidenceScore, len(res.Issues))
	return nil
}
