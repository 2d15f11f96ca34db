package validation_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"apflow/internal/domain"
	"apflow/internal/validation"
	"apflow/mocks"
)

func setupVendorPolicy() (*mocks.MockVendorRepo, *mocks.MockInvoiceRepo, *validation.VendorPolicyValidator) {
	vendorRepo := new(mocks.MockVendorRepo)
	invoiceRepo := new(mocks.MockInvoiceRepo)
	return vendorRepo, invoiceRepo, validation.NewVendorPolicyValidator(validation.DefaultRules(), vendorRepo, invoiceRepo)
}

func activeVendor() *domain.Vendor {
	return &domain.Vendor{
		ID:               uuid.New(),
		Name:             "Acme Supplies",
		TaxID:            "27AAPFU0939F1ZV",
		Currency:         "USD",
		Status:           domain.VendorStatusActive,
		IsActive:         true,
		PaymentTermsDays: 30,
	}
}

func TestVendorPolicy_HappyPath(t *testing.T) {
	vendorRepo, invoiceRepo, v := setupVendorPolicy()
	vendor := activeVendor()
	vendorRepo.On("GetByID", mock.Anything, vendor.ID).Return(vendor, nil)

	res, issues, err := v.Validate(context.Background(), &validation.Header{
		VendorName: "Acme Supplies",
		Currency:   "USD",
		Total:      dec("500.00"),
	}, &vendor.ID)

	require.NoError(t, err)
	assert.Empty(t, issues)
	assert.True(t, res.VendorActive)
	assert.True(t, res.CurrencyValid)
	assert.Nil(t, res.TaxIDValid, "no tax ID on the invoice")
	assert.Nil(t, res.SpendLimitOK, "no credit limit configured")
	assert.Contains(t, res.PolicyNotes, "no credit limit configured; spend check skipped")
	invoiceRepo.AssertNotCalled(t, "SumOutstandingByVendor")
}

func TestVendorPolicy_UnresolvedVendor(t *testing.T) {
	vendorRepo, _, v := setupVendorPolicy()
	vendorRepo.On("FindByName", mock.Anything, "Ghost Corp").Return([]domain.Vendor{}, nil)

	res, issues, err := v.Validate(context.Background(), &validation.Header{
		VendorName: "Ghost Corp",
	}, nil)

	require.NoError(t, err)
	require.Len(t, issues, 1)
	assert.Equal(t, validation.CodeInactiveVendor, issues[0].Code)
	assert.Equal(t, domain.SeverityWarning, issues[0].Severity)
	assert.False(t, res.VendorActive)
	assert.NotEmpty(t, res.PolicyNotes)
}

func TestVendorPolicy_FuzzyNameResolution(t *testing.T) {
	vendorRepo, _, v := setupVendorPolicy()
	vendor := activeVendor()
	vendorRepo.On("FindByName", mock.Anything, "ACME SUPPLIES PVT LTD").
		Return([]domain.Vendor{*vendor}, nil)

	res, issues, err := v.Validate(context.Background(), &validation.Header{
		VendorName: "ACME SUPPLIES PVT LTD",
		Currency:   "USD",
	}, nil)

	require.NoError(t, err)
	assert.Empty(t, issues)
	require.NotNil(t, res.VendorID)
	assert.Equal(t, vendor.ID, *res.VendorID)
}

func TestVendorPolicy_InactiveVendor(t *testing.T) {
	vendorRepo, _, v := setupVendorPolicy()
	vendor := activeVendor()
	vendor.Status = domain.VendorStatusSuspended
	vendor.IsActive = false
	vendorRepo.On("GetByID", mock.Anything, vendor.ID).Return(vendor, nil)

	res, issues, err := v.Validate(context.Background(), &validation.Header{
		VendorName: "Acme Supplies",
		Currency:   "USD",
	}, &vendor.ID)

	require.NoError(t, err)
	require.Len(t, issues, 1)
	assert.Equal(t, validation.CodeInactiveVendor, issues[0].Code)
	assert.Equal(t, domain.SeverityError, issues[0].Severity)
	assert.False(t, res.VendorActive)
}

func TestVendorPolicy_CurrencyMismatch(t *testing.T) {
	vendorRepo, _, v := setupVendorPolicy()
	vendor := activeVendor()
	vendorRepo.On("GetByID", mock.Anything, vendor.ID).Return(vendor, nil)

	res, issues, err := v.Validate(context.Background(), &validation.Header{
		VendorName: "Acme Supplies",
		Currency:   "EUR",
	}, &vendor.ID)

	require.NoError(t, err)
	require.Len(t, issues, 1)
	assert.Equal(t, validation.CodeInvalidCurrency, issues[0].Code)
	assert.False(t, res.CurrencyValid)
}

func TestVendorPolicy_TaxIDNormalizedComparison(t *testing.T) {
	vendorRepo, _, v := setupVendorPolicy()
	vendor := activeVendor()
	vendorRepo.On("GetByID", mock.Anything, vendor.ID).Return(vendor, nil)

	res, issues, err := v.Validate(context.Background(), &validation.Header{
		VendorName: "Acme Supplies",
		Currency:   "USD",
		TaxID:      "27-aapfu 0939 f1zv",
	}, &vendor.ID)

	require.NoError(t, err)
	assert.Empty(t, issues)
	require.NotNil(t, res.TaxIDValid)
	assert.True(t, *res.TaxIDValid)
}

func TestVendorPolicy_SpendLimitExceeded(t *testing.T) {
	vendorRepo, invoiceRepo, v := setupVendorPolicy()
	vendor := activeVendor()
	vendor.CreditLimit = dec("1000.00")
	vendorRepo.On("GetByID", mock.Anything, vendor.ID).Return(vendor, nil)
	invoiceRepo.On("SumOutstandingByVendor", mock.Anything, vendor.ID).Return(*dec("800.00"), nil)

	res, issues, err := v.Validate(context.Background(), &validation.Header{
		VendorName: "Acme Supplies",
		Currency:   "USD",
		Total:      dec("300.00"),
	}, &vendor.ID)

	require.NoError(t, err)
	require.Len(t, issues, 1)
	assert.Equal(t, validation.CodeSpendLimitExceeded, issues[0].Code)
	assert.Equal(t, domain.SeverityError, issues[0].Severity)
	assert.Equal(t, "1000.00", issues[0].Details["credit_limit"])
	assert.Equal(t, "1100.00", issues[0].Details["projected_spend"])
	require.NotNil(t, res.SpendLimitOK)
	assert.False(t, *res.SpendLimitOK)
}

func TestVendorPolicy_SpendWithinLimit(t *testing.T) {
	vendorRepo, invoiceRepo, v := setupVendorPolicy()
	vendor := activeVendor()
	vendor.CreditLimit = dec("1000.00")
	vendorRepo.On("GetByID", mock.Anything, vendor.ID).Return(vendor, nil)
	invoiceRepo.On("SumOutstandingByVendor", mock.Anything, vendor.ID).Return(*dec("500.00"), nil)

	res, issues, err := v.Validate(context.Background(), &validation.Header{
		VendorName: "Acme Supplies",
		Currency:   "USD",
		Total:      dec("500.00"),
	}, &vendor.ID)

	require.NoError(t, err)
	assert.Empty(t, issues)
	require.NotNil(t, res.SpendLimitOK)
	assert.True(t, *res.SpendLimitOK, "projected spend equal to the limit is allowed")
}

func TestVendorPolicy_PaymentTermsInfo(t *testing.T) {
	vendorRepo, _, v := setupVendorPolicy()
	vendor := activeVendor()
	vendorRepo.On("GetByID", mock.Anything, vendor.ID).Return(vendor, nil)

	res, issues, err := v.Validate(context.Background(), &validation.Header{
		VendorName:  "Acme Supplies",
		Currency:    "USD",
		InvoiceDate: "2026-01-01",
		DueDate:     "2026-03-01",
	}, &vendor.ID)

	require.NoError(t, err)
	require.Len(t, issues, 1)
	assert.Equal(t, validation.CodePaymentTermsMismatch, issues[0].Code)
	assert.Equal(t, domain.SeverityInfo, issues[0].Severity)
	assert.False(t, res.PaymentTermsOK)
}
