package validation_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"apflow/internal/domain"
	"apflow/internal/validation"
	"apflow/mocks"
)

func setupDuplicates() (*mocks.MockVendorRepo, *mocks.MockInvoiceRepo, *validation.DuplicateDetector) {
	vendorRepo := new(mocks.MockVendorRepo)
	invoiceRepo := new(mocks.MockInvoiceRepo)
	return vendorRepo, invoiceRepo, validation.NewDuplicateDetector(validation.DefaultRules(), vendorRepo, invoiceRepo)
}

func priorInvoice(vendorID uuid.UUID, number, total, date string) domain.Invoice {
	d, _ := time.Parse("2006-01-02", date)
	return domain.Invoice{
		ID:            uuid.New(),
		VendorID:      &vendorID,
		VendorName:    "Acme Supplies",
		InvoiceNumber: number,
		TotalAmount:   *dec(total),
		InvoiceDate:   &d,
		Status:        domain.InvoiceStatusValidated,
	}
}

func TestDuplicate_SkippedWithoutKeyFields(t *testing.T) {
	vendorRepo, invoiceRepo, d := setupDuplicates()

	res, issues, err := d.Check(context.Background(), &validation.Header{
		VendorName: "Acme Supplies",
	}, nil)

	require.NoError(t, err)
	assert.Empty(t, issues)
	assert.False(t, res.IsDuplicate)
	assert.NotEmpty(t, res.Note)
	vendorRepo.AssertNotCalled(t, "FindByName")
	invoiceRepo.AssertNotCalled(t, "FindByVendorAndNumber")
}

func TestDuplicate_NoPriorInvoices(t *testing.T) {
	vendorRepo, invoiceRepo, d := setupDuplicates()
	vendor := activeVendor()
	vendorRepo.On("FindByName", mock.Anything, "Acme Supplies").Return([]domain.Vendor{*vendor}, nil)
	invoiceRepo.On("FindByVendorAndNumber", mock.Anything, vendor.ID, "INV-001", (*uuid.UUID)(nil)).
		Return([]domain.Invoice{}, nil)

	res, issues, err := d.Check(context.Background(), &validation.Header{
		VendorName:    "Acme Supplies",
		InvoiceNumber: "INV-001",
	}, nil)

	require.NoError(t, err)
	assert.Empty(t, issues)
	assert.False(t, res.IsDuplicate)
	assert.Zero(t, res.Confidence)
}

func TestDuplicate_ExactMatchFullConfidence(t *testing.T) {
	vendorRepo, invoiceRepo, d := setupDuplicates()
	vendor := activeVendor()
	vendorRepo.On("FindByName", mock.Anything, "Acme Supplies").Return([]domain.Vendor{*vendor}, nil)
	invoiceRepo.On("FindByVendorAndNumber", mock.Anything, vendor.ID, "INV-001", (*uuid.UUID)(nil)).
		Return([]domain.Invoice{priorInvoice(vendor.ID, "INV-001", "1180.00", "2026-03-15")}, nil)

	res, issues, err := d.Check(context.Background(), &validation.Header{
		VendorName:    "Acme Supplies",
		InvoiceNumber: "INV-001",
		InvoiceDate:   "2026-03-15",
		Total:         dec("1180.00"),
	}, nil)

	require.NoError(t, err)
	assert.True(t, res.IsDuplicate)
	assert.Equal(t, 1.0, res.Confidence)
	assert.Equal(t, []string{"vendor", "invoice_number", "total_amount", "invoice_date"}, res.MatchCriteria)

	require.Len(t, issues, 1)
	assert.Equal(t, validation.CodeDuplicateInvoice, issues[0].Code)
	assert.Equal(t, domain.SeverityError, issues[0].Severity)
	assert.Equal(t, 1.0, issues[0].Details["confidence"])
}

func TestDuplicate_NumberOnlyBelowThreshold(t *testing.T) {
	vendorRepo, invoiceRepo, d := setupDuplicates()
	vendor := activeVendor()
	vendorRepo.On("FindByName", mock.Anything, "Acme Supplies").Return([]domain.Vendor{*vendor}, nil)
	invoiceRepo.On("FindByVendorAndNumber", mock.Anything, vendor.ID, "INV-001", (*uuid.UUID)(nil)).
		Return([]domain.Invoice{priorInvoice(vendor.ID, "INV-001", "999.00", "2026-01-01")}, nil)

	res, issues, err := d.Check(context.Background(), &validation.Header{
		VendorName:    "Acme Supplies",
		InvoiceNumber: "INV-001",
		InvoiceDate:   "2026-03-15",
		Total:         dec("1180.00"),
	}, nil)

	require.NoError(t, err)
	assert.Empty(t, issues, "0.8 confidence sits below the 0.95 default threshold")
	assert.False(t, res.IsDuplicate)
	assert.Equal(t, 0.8, res.Confidence)
	assert.Len(t, res.Candidates, 1)
}

func TestDuplicate_CandidateListCapped(t *testing.T) {
	vendorRepo, invoiceRepo, d := setupDuplicates()
	vendor := activeVendor()
	prior := []domain.Invoice{
		priorInvoice(vendor.ID, "INV-001", "1180.00", "2026-03-15"),
		priorInvoice(vendor.ID, "INV-001", "1180.00", "2026-03-15"),
		priorInvoice(vendor.ID, "INV-001", "1180.00", "2026-03-15"),
		priorInvoice(vendor.ID, "INV-001", "1180.00", "2026-03-15"),
		priorInvoice(vendor.ID, "INV-001", "1180.00", "2026-03-15"),
	}
	vendorRepo.On("FindByName", mock.Anything, "Acme Supplies").Return([]domain.Vendor{*vendor}, nil)
	invoiceRepo.On("FindByVendorAndNumber", mock.Anything, vendor.ID, "INV-001", (*uuid.UUID)(nil)).
		Return(prior, nil)

	res, issues, err := d.Check(context.Background(), &validation.Header{
		VendorName:    "Acme Supplies",
		InvoiceNumber: "INV-001",
		InvoiceDate:   "2026-03-15",
		Total:         dec("1180.00"),
	}, nil)

	require.NoError(t, err)
	assert.Len(t, res.Candidates, 5, "result keeps all candidates")
	require.Len(t, issues, 1)
	reported := issues[0].Details["candidates"].([]validation.DuplicateCandidate)
	assert.Len(t, reported, 3, "issue payload is capped")
}

func TestDuplicate_ExcludesOwnID(t *testing.T) {
	vendorRepo, invoiceRepo, d := setupDuplicates()
	vendor := activeVendor()
	own := uuid.New()
	vendorRepo.On("FindByName", mock.Anything, "Acme Supplies").Return([]domain.Vendor{*vendor}, nil)
	invoiceRepo.On("FindByVendorAndNumber", mock.Anything, vendor.ID, "INV-001", &own).
		Return([]domain.Invoice{}, nil)

	res, _, err := d.Check(context.Background(), &validation.Header{
		VendorName:    "Acme Supplies",
		InvoiceNumber: "INV-001",
	}, &own)

	require.NoError(t, err)
	assert.False(t, res.IsDuplicate)
	invoiceRepo.AssertExpectations(t)
}
