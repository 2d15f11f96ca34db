package validation

import "github.com/shopspring/decimal"

// Thresholds holds the numeric limits consulted by the validators. All
// tolerance comparisons in the engine go through these values.
type Thresholds struct {
	// MathToleranceCents is the allowed absolute difference, in cents, when
	// comparing computed and stated monetary amounts.
	MathToleranceCents int64
	// POAmountTolerancePercent is the allowed deviation between invoice and
	// PO totals, as a percent of the PO amount.
	POAmountTolerancePercent float64
	// GRNQuantityTolerancePercent is the allowed deviation between invoiced
	// and received quantities, as a percent of received quantity.
	GRNQuantityTolerancePercent float64
	// DuplicateConfidenceThreshold is the minimum duplicate confidence that
	// flags an invoice as a duplicate.
	DuplicateConfidenceThreshold float64
	// MaxInvoiceAgeDays flags invoices dated further in the past than this.
	MaxInvoiceAgeDays int
	// MinLineAmount / MaxLineAmount bound acceptable line item amounts.
	MinLineAmount decimal.Decimal
	MaxLineAmount decimal.Decimal
	// VendorNameMaxDistance is the maximum Levenshtein distance between
	// normalized vendor names still considered a fuzzy match.
	VendorNameMaxDistance int
}

// RequiredFields lists the required field names per extraction section.
type RequiredFields struct {
	Header []string
	Lines  []string
}

// RulesConfig is the versioned validation rule set. It is constructed once
// at startup and passed read-only into the validators.
type RulesConfig struct {
	Version        string
	Thresholds     Thresholds
	RequiredFields RequiredFields
}

// DefaultRules returns the built-in rule set.
func DefaultRules() *RulesConfig {
	return &RulesConfig{
		Version: "v1",
		Thresholds: Thresholds{
			MathToleranceCents:           1,
			POAmountTolerancePercent:     5.0,
			GRNQuantityTolerancePercent:  2.0,
			DuplicateConfidenceThreshold: 0.95,
			MaxInvoiceAgeDays:            365,
			MinLineAmount:                decimal.NewFromFloat(0.01),
			MaxLineAmount:                decimal.NewFromInt(1_000_000),
			VendorNameMaxDistance:        3,
		},
		RequiredFields: RequiredFields{
			Header: []string{"vendor_name", "invoice_number", "invoice_date", "total_amount"},
			Lines:  []string{"description", "quantity", "unit_price", "amount"},
		},
	}
}

// MathTolerance returns the monetary tolerance as a decimal amount.
func (r *RulesConfig) MathTolerance() decimal.Decimal {
	return decimal.New(r.Thresholds.MathToleranceCents, -2)
}
