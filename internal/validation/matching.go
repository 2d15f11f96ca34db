package validation

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"apflow/internal/domain"
	"apflow/internal/port"
)

// MatchingValidator cross-references an invoice against its purchase order
// (2-way) and any goods receipt notes posted for it (3-way).
type MatchingValidator struct {
	rules *RulesConfig
	pos   port.PurchaseOrderRepository
	grns  port.GoodsReceiptRepository
}

// NewMatchingValidator creates a MatchingValidator.
func NewMatchingValidator(rules *RulesConfig, pos port.PurchaseOrderRepository, grns port.GoodsReceiptRepository) *MatchingValidator {
	return &MatchingValidator{rules: rules, pos: pos, grns: grns}
}

// Validate performs PO/GRN matching. An invoice without a PO number is not
// an anomaly: the result reports matching_type "none" with no issues.
func (v *MatchingValidator) Validate(ctx context.Context, header *Header, lines []LineItem) (*MatchingResult, []Issue, error) {
	res := &MatchingResult{
		MatchingType:  domain.MatchingNone,
		POAmountMatch: false,
		QuantityMatch: true,
	}

	if header.PONumber == "" {
		return res, nil, nil
	}
	res.PONumber = header.PONumber

	po, err := v.pos.GetByNumber(ctx, header.PONumber)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			res.MatchingType = domain.MatchingTwoWay
			return res, []Issue{v.poNotFound(header, "no purchase order with this number")}, nil
		}
		return nil, nil, fmt.Errorf("matching: po lookup: %w", err)
	}

	// The lookup is by number plus fuzzy vendor name; a number hit under a
	// different vendor does not count as found.
	if header.VendorName != "" && !namesMatch(header.VendorName, po.VendorName, v.rules.Thresholds.VendorNameMaxDistance) {
		res.MatchingType = domain.MatchingTwoWay
		return res, []Issue{v.poNotFound(header,
			fmt.Sprintf("purchase order belongs to vendor %q", po.VendorName))}, nil
	}

	res.POFound = true
	res.POStatus = po.Status
	res.MatchingType = domain.MatchingTwoWay

	var issues []Issue
	if po.Status == domain.POStatusClosed || po.Status == domain.POStatusCancelled {
		issues = append(issues, warningIssue(CodePOClosed,
			"purchase order %s is %s", po.Number, po.Status).
			withField("po_number").
			withValues(string(po.Status), "open"))
	}

	issues = append(issues, v.checkAmount(header, po, res)...)

	grnIssues, err := v.checkReceipts(ctx, po, lines, res)
	if err != nil {
		return nil, nil, err
	}
	issues = append(issues, grnIssues...)

	return res, issues, nil
}

func (v *MatchingValidator) poNotFound(header *Header, reason string) Issue {
	return warningIssue(CodePONotFound,
		"purchase order %s not found for vendor %q: %s",
		header.PONumber, header.VendorName, reason).
		withField("po_number").
		withValues(header.PONumber, "existing purchase order")
}

// checkAmount compares the invoice total against the PO total within the
// configured percent tolerance of the PO amount.
func (v *MatchingValidator) checkAmount(header *Header, po *domain.PurchaseOrder, res *MatchingResult) []Issue {
	if header.Total == nil {
		// Missing total is already an ERROR from the math checks.
		return nil
	}
	diff := header.Total.Sub(po.TotalAmount).Abs()
	res.POAmountDifference = diff

	tolerancePct := decimal.NewFromFloat(v.rules.Thresholds.POAmountTolerancePercent)
	allowed := po.TotalAmount.Abs().Mul(tolerancePct).Div(decimal.NewFromInt(100))
	if diff.LessThanOrEqual(allowed) {
		res.POAmountMatch = true
		return nil
	}

	return []Issue{warningIssue(CodePOAmountMismatch,
		"invoice total %s deviates from PO %s total %s beyond %.1f%% tolerance",
		header.Total.StringFixed(2), po.Number, po.TotalAmount.StringFixed(2),
		v.rules.Thresholds.POAmountTolerancePercent).
		withField("total_amount").
		withValues(header.Total.StringFixed(2), po.TotalAmount.StringFixed(2)).
		withDetails(map[string]any{
			"po_number":         po.Number,
			"po_amount":         po.TotalAmount.StringFixed(2),
			"difference":        diff.StringFixed(2),
			"tolerance_percent": v.rules.Thresholds.POAmountTolerancePercent,
		})}
}

// checkReceipts applies 3-way matching when at least one GRN exists for the
// PO: received quantities are summed per item key across all GRNs and
// compared to the invoiced quantities. All out-of-tolerance lines are
// collected into a single issue.
func (v *MatchingValidator) checkReceipts(ctx context.Context, po *domain.PurchaseOrder, lines []LineItem, res *MatchingResult) ([]Issue, error) {
	grns, err := v.grns.ListByPONumber(ctx, po.Number)
	if err != nil {
		return nil, fmt.Errorf("matching: grn lookup: %w", err)
	}
	if len(grns) == 0 {
		return nil, nil
	}

	res.GRNFound = true
	res.MatchingType = domain.MatchingThreeWay
	received := make(map[string]decimal.Decimal)
	for i := range grns {
		res.GRNNumbers = append(res.GRNNumbers, grns[i].Number)
		for _, line := range grns[i].Lines {
			key := receiptKey(line.SKU, line.Description)
			received[key] = received[key].Add(line.QuantityReceived)
		}
	}

	tolerancePct := decimal.NewFromFloat(v.rules.Thresholds.GRNQuantityTolerancePercent)
	var discrepancies []map[string]any
	for i := range lines {
		item := &lines[i]
		if item.Quantity == nil {
			continue
		}
		key := receiptKey(item.SKU, item.Description)
		got, ok := received[key]
		if !ok {
			discrepancies = append(discrepancies, map[string]any{
				"line":     i + 1,
				"item":     key,
				"invoiced": item.Quantity.String(),
				"received": "0",
			})
			continue
		}
		allowed := got.Abs().Mul(tolerancePct).Div(decimal.NewFromInt(100))
		if item.Quantity.Sub(got).Abs().GreaterThan(allowed) {
			discrepancies = append(discrepancies, map[string]any{
				"line":     i + 1,
				"item":     key,
				"invoiced": item.Quantity.String(),
				"received": got.String(),
			})
		}
	}

	if len(discrepancies) == 0 {
		return nil, nil
	}
	res.QuantityMatch = false
	return []Issue{warningIssue(CodeGRNQuantityMismatch,
		"%d line(s) have invoiced quantities outside %.1f%% of received quantities",
		len(discrepancies), v.rules.Thresholds.GRNQuantityTolerancePercent).
		withField("line_items").
		withDetails(map[string]any{
			"discrepancies":     discrepancies,
			"tolerance_percent": v.rules.Thresholds.GRNQuantityTolerancePercent,
			"grn_numbers":       res.GRNNumbers,
		})}, nil
}

// receiptKey identifies a line item across invoice and GRN lines: SKU when
// present, otherwise the normalized description.
func receiptKey(sku, description string) string {
	if s := strings.TrimSpace(strings.ToUpper(sku)); s != "" {
		return s
	}
	return normalizeName(description)
}
