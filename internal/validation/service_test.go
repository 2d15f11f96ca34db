package validation_test

import (
	"context"
	"errors"
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

type serviceMocks struct {
	vendors  *mocks.MockVendorRepo
	pos      *mocks.MockPurchaseOrderRepo
	grns     *mocks.MockGoodsReceiptRepo
	invoices *mocks.MockInvoiceRepo
	tracker  *mocks.MockExceptionTracker
}

func setupService() (*serviceMocks, *validation.Service) {
	m := &serviceMocks{
		vendors:  new(mocks.MockVendorRepo),
		pos:      new(mocks.MockPurchaseOrderRepo),
		grns:     new(mocks.MockGoodsReceiptRepo),
		invoices: new(mocks.MockInvoiceRepo),
		tracker:  new(mocks.MockExceptionTracker),
	}
	svc := validation.NewService(validation.DefaultRules(), m.vendors, m.pos, m.grns, m.invoices, m.tracker)
	return m, svc
}

func recentDate() string {
	return time.Now().UTC().AddDate(0, 0, -10).Format("2006-01-02")
}

func happyExtraction() validation.ExtractedInvoice {
	return validation.ExtractedInvoice{
		Header: map[string]any{
			"vendor_name":    "Acme Supplies",
			"invoice_number": "INV-001",
			"invoice_date":   recentDate(),
			"currency":       "USD",
			"subtotal":       "100.00",
			"tax_amount":     "18.00",
			"total_amount":   "118.00",
		},
		Lines: []map[string]any{
			{"description": "Widget", "sku": "WID-1", "quantity": 2.0, "unit_price": "25.00", "amount": "50.00"},
			{"description": "Gadget", "quantity": 5.0, "unit_price": "10.00", "amount": "50.00"},
		},
	}
}

// wireKnownVendor sets up vendor resolution and an empty duplicate history.
func (m *serviceMocks) wireKnownVendor(vendor *domain.Vendor) {
	m.vendors.On("FindByName", mock.Anything, "Acme Supplies").Return([]domain.Vendor{*vendor}, nil)
	m.invoices.On("FindByVendorAndNumber", mock.Anything, vendor.ID, "INV-001", (*uuid.UUID)(nil)).
		Return([]domain.Invoice{}, nil)
}

func TestValidateInvoice_HappyPathNoPO(t *testing.T) {
	m, svc := setupService()
	m.wireKnownVendor(activeVendor())

	res := svc.ValidateInvoice(context.Background(), happyExtraction(), validation.Options{})

	require.NotNil(t, res)
	assert.True(t, res.Passed)
	assert.Zero(t, res.ErrorCount)
	assert.Zero(t, res.WarningCount)
	assert.True(t, res.Checks.Structure)
	assert.True(t, res.Checks.HeaderFields)
	assert.True(t, res.Checks.LineFields)
	assert.True(t, res.Checks.Math)
	assert.True(t, res.Checks.Matching, "no PO is not a matching failure")
	assert.True(t, res.Checks.VendorPolicy)
	assert.True(t, res.Checks.Duplicate)
	require.NotNil(t, res.Matching)
	assert.Equal(t, domain.MatchingNone, res.Matching.MatchingType)

	// No PO forfeits the 20 matching points; everything else is earned.
	assert.Equal(t, 80.0, res.ConfidenceScore)
}

func TestValidateInvoice_FullThreeWayMatch(t *testing.T) {
	m, svc := setupService()
	m.wireKnownVendor(activeVendor())
	m.pos.On("GetByNumber", mock.Anything, "PO-001").Return(&domain.PurchaseOrder{
		Number:      "PO-001",
		VendorName:  "Acme Supplies",
		Status:      domain.POStatusPartiallyReceived,
		TotalAmount: *dec("118.00"),
	}, nil)
	m.grns.On("ListByPONumber", mock.Anything, "PO-001").Return([]domain.GoodsReceiptNote{
		{Number: "GRN-1", Lines: []domain.GoodsReceiptLine{
			{SKU: "WID-1", QuantityReceived: *dec("2")},
			{Description: "Gadget", QuantityReceived: *dec("5")},
		}},
	}, nil)

	extraction := happyExtraction()
	extraction.Header["po_number"] = "PO-001"

	res := svc.ValidateInvoice(context.Background(), extraction, validation.Options{})

	assert.True(t, res.Passed)
	assert.Empty(t, res.Issues)
	require.NotNil(t, res.Matching)
	assert.Equal(t, domain.MatchingThreeWay, res.Matching.MatchingType)
	assert.Equal(t, 100.0, res.ConfidenceScore)
}

func TestValidateInvoice_EmptyLines(t *testing.T) {
	m, svc := setupService()
	m.wireKnownVendor(activeVendor())

	extraction := happyExtraction()
	extraction.Lines = nil

	res := svc.ValidateInvoice(context.Background(), extraction, validation.Options{})

	assert.False(t, res.Passed)
	assert.False(t, res.Checks.Structure)
	assert.False(t, res.Checks.LineFields)
	codes := issueCodes(res)
	assert.Contains(t, codes, validation.CodeNoLineItems)
}

func TestValidateInvoice_MissingHeader(t *testing.T) {
	m, svc := setupService()
	m.vendors.On("FindByName", mock.Anything, mock.Anything).Return([]domain.Vendor{}, nil).Maybe()

	res := svc.ValidateInvoice(context.Background(), validation.ExtractedInvoice{
		Lines: happyExtraction().Lines,
	}, validation.Options{})

	assert.False(t, res.Passed)
	assert.False(t, res.Checks.Structure)
	assert.Contains(t, issueCodes(res), validation.CodeInvalidDataStructure)
	m.invoices.AssertNotCalled(t, "FindByVendorAndNumber")
}

func TestValidateInvoice_MissingRequiredHeaderFields(t *testing.T) {
	m, svc := setupService()
	m.vendors.On("FindByName", mock.Anything, mock.Anything).Return([]domain.Vendor{}, nil).Maybe()

	extraction := happyExtraction()
	delete(extraction.Header, "invoice_number")
	delete(extraction.Header, "total_amount")

	res := svc.ValidateInvoice(context.Background(), extraction, validation.Options{})

	assert.False(t, res.Passed)
	assert.False(t, res.Checks.HeaderFields)
	missing := 0
	for _, issue := range res.Issues {
		if issue.Code == validation.CodeMissingRequiredField {
			missing++
		}
	}
	assert.Equal(t, 2, missing, "one issue per missing required field")
}

func TestValidateInvoice_Idempotent(t *testing.T) {
	m, svc := setupService()
	m.wireKnownVendor(activeVendor())

	first := svc.ValidateInvoice(context.Background(), happyExtraction(), validation.Options{})
	second := svc.ValidateInvoice(context.Background(), happyExtraction(), validation.Options{})

	assert.Equal(t, first.Passed, second.Passed)
	assert.Equal(t, first.ConfidenceScore, second.ConfidenceScore)
	assert.Equal(t, issueCodes(first), issueCodes(second))
}

func TestValidateInvoice_PassFailInvariant(t *testing.T) {
	m, svc := setupService()
	m.wireKnownVendor(activeVendor())
	m.pos.On("GetByNumber", mock.Anything, "PO-404").Return(nil, domain.ErrNotFound)

	// PO not found is only a WARNING: passes normally, fails strict.
	extraction := happyExtraction()
	extraction.Header["po_number"] = "PO-404"

	res := svc.ValidateInvoice(context.Background(), extraction, validation.Options{})
	assert.True(t, res.Passed)
	assert.Zero(t, res.ErrorCount)
	assert.Equal(t, 1, res.WarningCount)

	strict := svc.ValidateInvoice(context.Background(), extraction, validation.Options{StrictMode: true})
	assert.False(t, strict.Passed)
	assert.True(t, strict.StrictMode)
}

func TestValidateInvoice_GracefulDegradationOnMatchingFailure(t *testing.T) {
	m, svc := setupService()
	m.wireKnownVendor(activeVendor())
	m.pos.On("GetByNumber", mock.Anything, "PO-001").Return(nil, errors.New("db connection lost"))

	extraction := happyExtraction()
	extraction.Header["po_number"] = "PO-001"

	res := svc.ValidateInvoice(context.Background(), extraction, validation.Options{})

	require.NotNil(t, res)
	assert.Contains(t, issueCodes(res), validation.CodeValidationError)
	assert.Nil(t, res.Matching, "failed sub-validator contributes no result")
	assert.False(t, res.Checks.Matching)
	// The other categories still ran.
	require.NotNil(t, res.Math)
	require.NotNil(t, res.VendorPolicy)
	require.NotNil(t, res.Duplicate)
	assert.GreaterOrEqual(t, res.ConfidenceScore, 0.0)
	assert.LessOrEqual(t, res.ConfidenceScore, 100.0)
}

func TestValidateInvoice_ConfidenceBounds(t *testing.T) {
	m, svc := setupService()
	m.vendors.On("FindByName", mock.Anything, mock.Anything).Return([]domain.Vendor{}, nil).Maybe()

	// Worst case: nothing usable at all.
	res := svc.ValidateInvoice(context.Background(), validation.ExtractedInvoice{}, validation.Options{})
	assert.GreaterOrEqual(t, res.ConfidenceScore, 0.0)
	assert.LessOrEqual(t, res.ConfidenceScore, 100.0)
	assert.False(t, res.Passed)
}

func TestValidateInvoice_NotifiesExceptionTracker(t *testing.T) {
	m, svc := setupService()
	m.wireKnownVendor(activeVendor())
	invoiceID := uuid.New()
	m.tracker.On("CreateFromValidation", mock.Anything, invoiceID, mock.Anything).Return(nil)
	m.invoices.On("FindByVendorAndNumber", mock.Anything, mock.Anything, "INV-001", &invoiceID).
		Return([]domain.Invoice{}, nil).Maybe()

	extraction := happyExtraction()
	delete(extraction.Header, "total_amount")

	res := svc.ValidateInvoice(context.Background(), extraction, validation.Options{InvoiceID: &invoiceID})

	assert.False(t, res.Passed)
	m.tracker.AssertExpectations(t)
}

func TestValidateInvoice_TrackerFailureDoesNotChangeVerdict(t *testing.T) {
	m, svc := setupService()
	m.wireKnownVendor(activeVendor())
	invoiceID := uuid.New()
	m.tracker.On("CreateFromValidation", mock.Anything, invoiceID, mock.Anything).
		Return(errors.New("exception store down"))
	m.invoices.On("FindByVendorAndNumber", mock.Anything, mock.Anything, "INV-001", &invoiceID).
		Return([]domain.Invoice{}, nil).Maybe()

	extraction := happyExtraction()
	delete(extraction.Header, "total_amount")

	res := svc.ValidateInvoice(context.Background(), extraction, validation.Options{InvoiceID: &invoiceID})

	assert.False(t, res.Passed)
	assert.Positive(t, res.ErrorCount)
}

func TestValidateInvoice_NoTrackerCallOnPass(t *testing.T) {
	m, svc := setupService()
	m.wireKnownVendor(activeVendor())

	res := svc.ValidateInvoice(context.Background(), happyExtraction(), validation.Options{})

	assert.True(t, res.Passed)
	m.tracker.AssertNotCalled(t, "CreateFromValidation")
}

func TestValidateInvoice_DateChecks(t *testing.T) {
	m, svc := setupService()
	m.wireKnownVendor(activeVendor())

	extraction := happyExtraction()
	extraction.Header["invoice_date"] = time.Now().UTC().AddDate(0, 0, 7).Format("2006-01-02")
	res := svc.ValidateInvoice(context.Background(), extraction, validation.Options{})
	assert.Contains(t, issueCodes(res), validation.CodeFutureInvoiceDate)

	extraction = happyExtraction()
	extraction.Header["invoice_date"] = time.Now().UTC().AddDate(-2, 0, 0).Format("2006-01-02")
	res = svc.ValidateInvoice(context.Background(), extraction, validation.Options{})
	assert.Contains(t, issueCodes(res), validation.CodeInvoiceTooOld)

	extraction = happyExtraction()
	extraction.Header["invoice_date"] = "31-31-2026"
	res = svc.ValidateInvoice(context.Background(), extraction, validation.Options{})
	assert.Contains(t, issueCodes(res), validation.CodeInvalidDateFormat)
	assert.False(t, res.Passed)
}

func TestValidateInvoice_LineAmountRange(t *testing.T) {
	m, svc := setupService()
	m.wireKnownVendor(activeVendor())

	extraction := happyExtraction()
	extraction.Lines = append(extraction.Lines,
		map[string]any{"description": "Freebie", "quantity": 1.0, "unit_price": "0.00", "amount": "0.00"},
		map[string]any{"description": "Yacht", "quantity": 1.0, "unit_price": "2000000.00", "amount": "2000000.00"},
	)

	res := svc.ValidateInvoice(context.Background(), extraction, validation.Options{})

	codes := issueCodes(res)
	assert.Contains(t, codes, validation.CodeLineAmountBelowMin)
	assert.Contains(t, codes, validation.CodeLineAmountAboveMax)
	assert.False(t, res.Passed, "below-minimum amount is an error")
}

func issueCodes(res *validation.Result) []validation.Code {
	codes := make([]validation.Code, 0, len(res.Issues))
	for _, issue := range res.Issues {
		codes = append(codes, issue.Code)
	}
	return codes
}
