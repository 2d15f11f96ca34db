package validation

import (
	"github.com/shopspring/decimal"
)

// MathValidator verifies line-item and header arithmetic consistency.
// Header total checks are binding (ERROR); per-line math is advisory
// (WARNING).
type MathValidator struct {
	rules *RulesConfig
}

// NewMathValidator creates a MathValidator bound to a rule set.
func NewMathValidator(rules *RulesConfig) *MathValidator {
	return &MathValidator{rules: rules}
}

// Validate cross-checks line totals against the header. A nil result with a
// non-nil error signals an internal failure; the orchestrator converts that
// into a VALIDATION_ERROR issue rather than aborting the run.
func (v *MathValidator) Validate(header *Header, lines []LineItem) (*MathResult, []Issue, error) {
	tolerance := v.rules.MathTolerance()

	res := &MathResult{
		SubtotalMatch: true,
		TotalMatch:    true,
		LineMathValid: make([]bool, len(lines)),
	}
	var issues []Issue

	linesTotal := decimal.Zero
	for i := range lines {
		if lines[i].Amount != nil {
			linesTotal = linesTotal.Add(*lines[i].Amount)
		}
	}
	res.LinesTotal = linesTotal

	if header.TaxAmount != nil {
		res.TaxAmount = *header.TaxAmount
	}

	if header.Subtotal != nil {
		diff := header.Subtotal.Sub(linesTotal).Abs()
		res.SubtotalDifference = diff
		if diff.GreaterThan(tolerance) {
			res.SubtotalMatch = false
			issues = append(issues, errorIssue(CodeSubtotalMismatch,
				"stated subtotal %s does not match sum of line amounts %s",
				header.Subtotal.StringFixed(2), linesTotal.StringFixed(2)).
				withField("subtotal").
				withValues(header.Subtotal.StringFixed(2), linesTotal.StringFixed(2)).
				withDetails(map[string]any{
					"subtotal":    header.Subtotal.StringFixed(2),
					"lines_total": linesTotal.StringFixed(2),
					"difference":  diff.StringFixed(2),
				}))
		}
	}

	base := linesTotal
	if header.Subtotal != nil {
		base = *header.Subtotal
	}
	expectedTotal := base.Add(res.TaxAmount)

	switch {
	case header.Total == nil:
		res.TotalMatch = false
		issues = append(issues, errorIssue(CodeMissingTotal,
			"invoice total is missing").
			withField("total_amount").
			withValues("", expectedTotal.StringFixed(2)))
	default:
		diff := header.Total.Sub(expectedTotal).Abs()
		res.TotalDifference = diff
		if diff.GreaterThan(tolerance) {
			res.TotalMatch = false
			issues = append(issues, errorIssue(CodeTotalMismatch,
				"stated total %s does not match expected total %s",
				header.Total.StringFixed(2), expectedTotal.StringFixed(2)).
				withField("total_amount").
				withValues(header.Total.StringFixed(2), expectedTotal.StringFixed(2)).
				withDetails(map[string]any{
					"total":          header.Total.StringFixed(2),
					"expected_total": expectedTotal.StringFixed(2),
					"difference":     diff.StringFixed(2),
				}))
		}
	}

	for i := range lines {
		res.LineMathValid[i] = v.checkLine(&lines[i], i+1, tolerance, &issues)
	}

	return res, issues, nil
}

// checkLine re-validates quantity * unit_price against the line amount.
func (v *MathValidator) checkLine(item *LineItem, lineNo int, tolerance decimal.Decimal, issues *[]Issue) bool {
	if item.Quantity == nil || item.UnitPrice == nil || item.Amount == nil {
		// Missing operands are reported by the required-field checks.
		return true
	}
	expected := item.Quantity.Mul(*item.UnitPrice)
	diff := item.Amount.Sub(expected).Abs()
	if diff.LessThanOrEqual(tolerance) {
		return true
	}
	*issues = append(*issues, warningIssue(CodeLineMathMismatch,
		"line %d amount %s differs from quantity x unit price %s",
		lineNo, item.Amount.StringFixed(2), expected.StringFixed(2)).
		withField("amount").
		withLine(lineNo).
		withValues(item.Amount.StringFixed(2), expected.StringFixed(2)).
		withDetails(map[string]any{
			"quantity":   item.Quantity.String(),
			"unit_price": item.UnitPrice.String(),
			"difference": diff.StringFixed(2),
		}))
	return false
}
