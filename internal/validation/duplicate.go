package validation

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"apflow/internal/domain"
	"apflow/internal/port"
)

// maxReportedCandidates bounds how many duplicate candidates are attached
// to the DUPLICATE_INVOICE issue payload.
const maxReportedCandidates = 3

// DuplicateDetector finds likely-duplicate invoices by exact vendor plus
// invoice number match, scored on how closely totals and dates align.
type DuplicateDetector struct {
	rules    *RulesConfig
	vendors  port.VendorRepository
	invoices port.InvoiceRepository
}

// NewDuplicateDetector creates a DuplicateDetector.
func NewDuplicateDetector(rules *RulesConfig, vendors port.VendorRepository, invoices port.InvoiceRepository) *DuplicateDetector {
	return &DuplicateDetector{rules: rules, vendors: vendors, invoices: invoices}
}

// Check looks for prior invoices that duplicate the one under validation,
// excluding its own ID when supplied. Confidence is two-level today: 1.0
// when a candidate also matches on total and date, 0.8 otherwise.
func (d *DuplicateDetector) Check(ctx context.Context, header *Header, excludeID *uuid.UUID) (*DuplicateResult, []Issue, error) {
	if header.InvoiceNumber == "" || header.VendorName == "" {
		return &DuplicateResult{
			Note: "invoice number or vendor name missing; duplicate check skipped",
		}, nil, nil
	}

	vendor, err := d.resolveVendor(ctx, header.VendorName)
	if err != nil {
		return nil, nil, err
	}
	if vendor == nil {
		return &DuplicateResult{
			Note: "vendor not on file; no prior invoices to compare",
		}, nil, nil
	}

	prior, err := d.invoices.FindByVendorAndNumber(ctx, vendor.ID, header.InvoiceNumber, excludeID)
	if err != nil {
		return nil, nil, fmt.Errorf("duplicate check: prior invoice lookup: %w", err)
	}

	res := &DuplicateResult{}
	if len(prior) == 0 {
		return res, nil, nil
	}

	res.MatchCriteria = []string{"vendor", "invoice_number"}
	res.Confidence = 0.8
	exact := false
	for i := range prior {
		cand := DuplicateCandidate{
			ID:            prior[i].ID,
			InvoiceNumber: prior[i].InvoiceNumber,
			VendorName:    prior[i].VendorName,
			Total:         prior[i].TotalAmount,
			Status:        string(prior[i].Status),
		}
		if prior[i].InvoiceDate != nil {
			cand.InvoiceDate = prior[i].InvoiceDate.Format("2006-01-02")
		}
		res.Candidates = append(res.Candidates, cand)
		if d.exactMatch(header, &prior[i]) {
			exact = true
		}
	}
	if exact {
		res.Confidence = 1.0
		res.MatchCriteria = append(res.MatchCriteria, "total_amount", "invoice_date")
	}

	res.IsDuplicate = res.Confidence >= d.rules.Thresholds.DuplicateConfidenceThreshold
	if !res.IsDuplicate {
		return res, nil, nil
	}

	reported := res.Candidates
	if len(reported) > maxReportedCandidates {
		reported = reported[:maxReportedCandidates]
	}
	return res, []Issue{errorIssue(CodeDuplicateInvoice,
		"invoice %s from vendor %q duplicates %d existing invoice(s)",
		header.InvoiceNumber, header.VendorName, len(res.Candidates)).
		withField("invoice_number").
		withValues(header.InvoiceNumber, "unique invoice number per vendor").
		withDetails(map[string]any{
			"confidence":     res.Confidence,
			"match_criteria": res.MatchCriteria,
			"candidates":     reported,
		})}, nil
}

func (d *DuplicateDetector) resolveVendor(ctx context.Context, name string) (*domain.Vendor, error) {
	candidates, err := d.vendors.FindByName(ctx, name)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("duplicate check: vendor lookup: %w", err)
	}
	for i := range candidates {
		if namesMatch(name, candidates[i].Name, d.rules.Thresholds.VendorNameMaxDistance) {
			return &candidates[i], nil
		}
	}
	return nil, nil
}

// exactMatch reports whether the prior invoice also matches on total
// amount and invoice date.
func (d *DuplicateDetector) exactMatch(header *Header, prior *domain.Invoice) bool {
	if header.Total == nil || !header.Total.Equal(prior.TotalAmount) {
		return false
	}
	if header.InvoiceDate == "" || prior.InvoiceDate == nil {
		return false
	}
	parsed, err := ParseDate(header.InvoiceDate)
	if err != nil {
		return false
	}
	py, pm, pd := prior.InvoiceDate.Date()
	y, m, dd := parsed.Date()
	return y == py && m == pm && dd == pd
}
