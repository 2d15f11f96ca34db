package validation

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"apflow/internal/domain"
)

// MathResult holds the arithmetic cross-check outcome.
type MathResult struct {
	LinesTotal         decimal.Decimal `json:"lines_total"`
	SubtotalMatch      bool            `json:"subtotal_match"`
	SubtotalDifference decimal.Decimal `json:"subtotal_difference"`
	TotalMatch         bool            `json:"total_match"`
	TotalDifference    decimal.Decimal `json:"total_difference"`
	TaxAmount          decimal.Decimal `json:"tax_amount"`
	LineMathValid      []bool          `json:"line_math_valid"`
}

// MatchingResult holds the PO/GRN matching outcome.
type MatchingResult struct {
	POFound            bool                `json:"po_found"`
	PONumber           string              `json:"po_number,omitempty"`
	POStatus           domain.POStatus     `json:"po_status,omitempty"`
	POAmountMatch      bool                `json:"po_amount_match"`
	POAmountDifference decimal.Decimal     `json:"po_amount_difference"`
	GRNFound           bool                `json:"grn_found"`
	GRNNumbers         []string            `json:"grn_numbers,omitempty"`
	QuantityMatch      bool                `json:"quantity_match"`
	MatchingType       domain.MatchingType `json:"matching_type"`
}

// VendorPolicyResult holds the vendor policy check outcome. TaxIDValid and
// SpendLimitOK are nil when the respective check could not be performed.
type VendorPolicyResult struct {
	VendorID       *uuid.UUID       `json:"vendor_id,omitempty"`
	VendorActive   bool             `json:"vendor_active"`
	CurrencyValid  bool             `json:"currency_valid"`
	TaxIDValid     *bool            `json:"tax_id_valid"`
	SpendLimitOK   *bool            `json:"spend_limit_ok"`
	CurrentSpend   decimal.Decimal  `json:"current_spend"`
	SpendLimit     *decimal.Decimal `json:"spend_limit,omitempty"`
	PaymentTermsOK bool             `json:"payment_terms_ok"`
	PolicyNotes    []string         `json:"policy_notes,omitempty"`
}

// DuplicateCandidate describes one prior invoice that may duplicate the
// invoice under validation.
type DuplicateCandidate struct {
	ID            uuid.UUID       `json:"id"`
	InvoiceNumber string          `json:"invoice_number"`
	VendorName    string          `json:"vendor_name"`
	Total         decimal.Decimal `json:"total"`
	InvoiceDate   string          `json:"invoice_date,omitempty"`
	Status        string          `json:"status"`
}

// DuplicateResult holds the duplicate detection outcome. Confidence is in
// [0,1]; two discrete levels are produced today (1.0 exact, 0.8 partial).
type DuplicateResult struct {
	IsDuplicate   bool                 `json:"is_duplicate"`
	Candidates    []DuplicateCandidate `json:"candidates,omitempty"`
	MatchCriteria []string             `json:"match_criteria,omitempty"`
	Confidence    float64              `json:"confidence"`
	Note          string               `json:"note,omitempty"`
}

// CheckSummary is the boolean pass/fail view per validation category.
type CheckSummary struct {
	Structure    bool `json:"structure"`
	HeaderFields bool `json:"header_fields"`
	LineFields   bool `json:"line_fields"`
	Math         bool `json:"math"`
	Matching     bool `json:"matching"`
	VendorPolicy bool `json:"vendor_policy"`
	Duplicate    bool `json:"duplicate"`
}

// Result is the terminal aggregate of one validation run. It is created
// once per call and serializable to JSON for transport.
type Result struct {
	Passed          bool    `json:"passed"`
	StrictMode      bool    `json:"strict_mode"`
	ConfidenceScore float64 `json:"confidence_score"`

	ErrorCount   int `json:"error_count"`
	WarningCount int `json:"warning_count"`
	InfoCount    int `json:"info_count"`

	Issues []Issue `json:"issues"`

	Math         *MathResult         `json:"math_result"`
	Matching     *MatchingResult     `json:"matching_result"`
	VendorPolicy *VendorPolicyResult `json:"vendor_policy_result"`
	Duplicate    *DuplicateResult    `json:"duplicate_result"`

	Checks CheckSummary `json:"checks"`

	HeaderSummary string `json:"header_summary,omitempty"`
	LineSummary   string `json:"line_summary,omitempty"`

	RulesVersion string    `json:"rules_version"`
	StartedAt    time.Time `json:"started_at"`
	CompletedAt  time.Time `json:"completed_at"`
	DurationMS   int64     `json:"duration_ms"`
}

// finalize fills severity counts, the pass verdict, and timing. The pass
// invariant: no errors, and in strict mode no warnings either.
func (r *Result) finalize(start time.Time) {
	r.ErrorCount, r.WarningCount, r.InfoCount = countBySeverity(r.Issues)
	r.Passed = r.ErrorCount == 0
	if r.StrictMode {
		r.Passed = r.Passed && r.WarningCount == 0
	}
	r.StartedAt = start
	r.CompletedAt = time.Now().UTC()
	r.DurationMS = r.CompletedAt.Sub(start).Milliseconds()
}
