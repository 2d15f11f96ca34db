package validation

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"apflow/internal/domain"
	"apflow/internal/port"
)

// VendorPolicyValidator checks vendor status, currency, tax ID, payment
// terms, and credit/spend limits.
type VendorPolicyValidator struct {
	rules    *RulesConfig
	vendors  port.VendorRepository
	invoices port.InvoiceRepository
}

// NewVendorPolicyValidator creates a VendorPolicyValidator.
func NewVendorPolicyValidator(rules *RulesConfig, vendors port.VendorRepository, invoices port.InvoiceRepository) *VendorPolicyValidator {
	return &VendorPolicyValidator{rules: rules, vendors: vendors, invoices: invoices}
}

// Validate resolves the vendor (by ID, falling back to fuzzy name match)
// and applies the policy checks. An unresolved vendor short-circuits: the
// result carries all-false/nil fields and a single warning.
func (v *VendorPolicyValidator) Validate(ctx context.Context, header *Header, vendorID *uuid.UUID) (*VendorPolicyResult, []Issue, error) {
	vendor, err := v.resolve(ctx, header, vendorID)
	if err != nil {
		return nil, nil, err
	}
	if vendor == nil {
		return &VendorPolicyResult{
				PolicyNotes: []string{"vendor could not be resolved; policy checks skipped"},
			}, []Issue{warningIssue(CodeInactiveVendor,
				"vendor %q not found in vendor master", header.VendorName).
				withField("vendor_name").
				withValues(header.VendorName, "registered active vendor")}, nil
	}

	res := &VendorPolicyResult{VendorID: &vendor.ID}
	var issues []Issue

	res.VendorActive = vendor.IsActive && vendor.Status == domain.VendorStatusActive
	if !res.VendorActive {
		issues = append(issues, errorIssue(CodeInactiveVendor,
			"vendor %q is not active (status %s)", vendor.Name, vendor.Status).
			withField("vendor_name").
			withValues(string(vendor.Status), string(domain.VendorStatusActive)))
	}

	res.CurrencyValid = header.Currency != "" && header.Currency == vendor.Currency
	if header.Currency != "" && header.Currency != vendor.Currency {
		issues = append(issues, errorIssue(CodeInvalidCurrency,
			"invoice currency %s does not match vendor currency %s", header.Currency, vendor.Currency).
			withField("currency").
			withValues(header.Currency, vendor.Currency))
	}

	// Tax ID is only compared when both sides carry one.
	if header.TaxID != "" && vendor.TaxID != "" {
		valid := normalizeTaxID(header.TaxID) == normalizeTaxID(vendor.TaxID)
		res.TaxIDValid = &valid
		if !valid {
			issues = append(issues, warningIssue(CodeInvalidTaxID,
				"invoice tax ID does not match the tax ID on file for %q", vendor.Name).
				withField("tax_id").
				withValues(header.TaxID, vendor.TaxID))
		}
	}

	spendIssues, err := v.checkSpendLimit(ctx, header, vendor, res)
	if err != nil {
		return nil, nil, err
	}
	issues = append(issues, spendIssues...)

	issues = append(issues, v.checkPaymentTerms(header, vendor, res)...)

	return res, issues, nil
}

// resolve finds the vendor by ID first, then by fuzzy name match. A nil
// vendor with nil error means not found.
func (v *VendorPolicyValidator) resolve(ctx context.Context, header *Header, vendorID *uuid.UUID) (*domain.Vendor, error) {
	if vendorID != nil {
		vendor, err := v.vendors.GetByID(ctx, *vendorID)
		if err == nil {
			return vendor, nil
		}
		if !errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("vendor policy: lookup by id: %w", err)
		}
	}
	if header.VendorName == "" {
		return nil, nil
	}
	candidates, err := v.vendors.FindByName(ctx, header.VendorName)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("vendor policy: lookup by name: %w", err)
	}
	for i := range candidates {
		if namesMatch(header.VendorName, candidates[i].Name, v.rules.Thresholds.VendorNameMaxDistance) {
			return &candidates[i], nil
		}
	}
	return nil, nil
}

// checkSpendLimit compares outstanding spend plus this invoice against the
// vendor's credit limit. Vendors without a configured limit skip the check.
func (v *VendorPolicyValidator) checkSpendLimit(ctx context.Context, header *Header, vendor *domain.Vendor, res *VendorPolicyResult) ([]Issue, error) {
	if vendor.CreditLimit == nil {
		res.PolicyNotes = append(res.PolicyNotes, "no credit limit configured; spend check skipped")
		return nil, nil
	}
	res.SpendLimit = vendor.CreditLimit

	current, err := v.invoices.SumOutstandingByVendor(ctx, vendor.ID)
	if err != nil {
		return nil, fmt.Errorf("vendor policy: outstanding spend: %w", err)
	}
	res.CurrentSpend = current

	invoiceTotal := decimal.Zero
	if header.Total != nil {
		invoiceTotal = *header.Total
	}
	projected := current.Add(invoiceTotal)

	ok := projected.LessThanOrEqual(*vendor.CreditLimit)
	res.SpendLimitOK = &ok
	if ok {
		return nil, nil
	}
	return []Issue{errorIssue(CodeSpendLimitExceeded,
		"projected spend %s for vendor %q exceeds credit limit %s",
		projected.StringFixed(2), vendor.Name, vendor.CreditLimit.StringFixed(2)).
		withField("total_amount").
		withValues(projected.StringFixed(2), vendor.CreditLimit.StringFixed(2)).
		withDetails(map[string]any{
			"current_spend":   current.StringFixed(2),
			"invoice_total":   invoiceTotal.StringFixed(2),
			"projected_spend": projected.StringFixed(2),
			"credit_limit":    vendor.CreditLimit.StringFixed(2),
		})}, nil
}

// checkPaymentTerms verifies the due date respects the vendor's agreed
// payment terms. Advisory only.
func (v *VendorPolicyValidator) checkPaymentTerms(header *Header, vendor *domain.Vendor, res *VendorPolicyResult) []Issue {
	res.PaymentTermsOK = true
	if vendor.PaymentTermsDays <= 0 || header.InvoiceDate == "" || header.DueDate == "" {
		return nil
	}
	invDate, err1 := ParseDate(header.InvoiceDate)
	dueDate, err2 := ParseDate(header.DueDate)
	if err1 != nil || err2 != nil {
		return nil
	}
	termDays := int(dueDate.Sub(invDate).Hours() / 24)
	if termDays <= vendor.PaymentTermsDays {
		return nil
	}
	res.PaymentTermsOK = false
	return []Issue{infoIssue(CodePaymentTermsMismatch,
		"due date implies %d day terms; vendor %q is on %d day terms",
		termDays, vendor.Name, vendor.PaymentTermsDays).
		withField("due_date").
		withValues(fmt.Sprintf("%d days", termDays), fmt.Sprintf("%d days", vendor.PaymentTermsDays))}
}
