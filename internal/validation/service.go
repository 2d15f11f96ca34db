package validation

import (
	"context"
	"fmt"
	"log"
	"math"
	"time"

	"github.com/google/uuid"

	"apflow/internal/domain"
	"apflow/internal/port"
)

// ExceptionTracker is the downstream collaborator notified when an invoice
// fails validation with error-severity issues. The call is fire-and-forget:
// failures are logged and never change the validation verdict.
type ExceptionTracker interface {
	CreateFromValidation(ctx context.Context, invoiceID uuid.UUID, issues []Issue) error
}

// Options carries the optional inputs of one validation run.
type Options struct {
	// InvoiceID identifies an already-persisted invoice; set, it enables
	// exception notification and excludes the invoice from duplicate checks.
	InvoiceID *uuid.UUID
	// VendorID, when known, resolves the vendor directly instead of by name.
	VendorID *uuid.UUID
	// StrictMode makes warnings block the pass verdict too.
	StrictMode bool
}

// Service orchestrates the multi-stage invoice validation pipeline:
// structural and field checks, then math, PO/GRN matching, vendor policy,
// and duplicate detection, folded into one weighted confidence score.
type Service struct {
	rules      *RulesConfig
	math       *MathValidator
	matching   *MatchingValidator
	vendor     *VendorPolicyValidator
	duplicates *DuplicateDetector
	exceptions ExceptionTracker
}

// NewService wires the orchestrator and its sub-validators. exceptions may
// be nil when no downstream tracking is wanted (e.g. dry runs).
func NewService(
	rules *RulesConfig,
	vendors port.VendorRepository,
	pos port.PurchaseOrderRepository,
	grns port.GoodsReceiptRepository,
	invoices port.InvoiceRepository,
	exceptions ExceptionTracker,
) *Service {
	if rules == nil {
		rules = DefaultRules()
	}
	return &Service{
		rules:      rules,
		math:       NewMathValidator(rules),
		matching:   NewMatchingValidator(rules, pos, grns),
		vendor:     NewVendorPolicyValidator(rules, vendors, invoices),
		duplicates: NewDuplicateDetector(rules, vendors, invoices),
		exceptions: exceptions,
	}
}

// Rules exposes the rule set the service was built with.
func (s *Service) Rules() *RulesConfig { return s.rules }

// ValidateInvoice runs the full pipeline. It never panics or errors past
// this boundary: any internal failure degrades into a failed Result with a
// single VALIDATION_ERROR issue.
func (s *Service) ValidateInvoice(ctx context.Context, extraction ExtractedInvoice, opts Options) (result *Result) {
	start := time.Now().UTC()

	defer func() {
		if r := recover(); r != nil {
			log.Printf("validation.Service: panic during validation: %v", r)
			result = s.degenerateResult(start, opts, fmt.Sprintf("internal failure: %v", r))
		}
	}()

	result = s.validate(ctx, extraction, opts, start)

	if !result.Passed && result.ErrorCount > 0 && opts.InvoiceID != nil && s.exceptions != nil {
		if err := s.exceptions.CreateFromValidation(ctx, *opts.InvoiceID, result.Issues); err != nil {
			log.Printf("validation.Service: exception notification failed for invoice %s: %v", *opts.InvoiceID, err)
		}
	}
	return result
}

func (s *Service) validate(ctx context.Context, extraction ExtractedInvoice, opts Options, start time.Time) *Result {
	res := &Result{
		StrictMode:   opts.StrictMode,
		RulesVersion: s.rules.Version,
		Checks: CheckSummary{
			Structure:    true,
			HeaderFields: true,
			LineFields:   true,
		},
	}

	headerOK := len(extraction.Header) > 0
	if !headerOK {
		res.Checks.Structure = false
		res.Checks.HeaderFields = false
		res.Issues = append(res.Issues, errorIssue(CodeInvalidDataStructure,
			"extraction header is missing or not a mapping").withField("header"))
	}
	linesOK := len(extraction.Lines) > 0
	if !linesOK {
		res.Checks.Structure = false
		res.Checks.LineFields = false
		res.Issues = append(res.Issues, errorIssue(CodeNoLineItems,
			"extraction contains no line items").withField("line_items"))
	}

	var header *Header
	var lines []LineItem

	if headerOK {
		header = s.validateHeader(extraction.Header, res)
	} else {
		header = &Header{}
	}
	if linesOK {
		lines = s.validateLines(extraction.Lines, res)
	}

	s.runMath(header, lines, res)
	s.runMatching(ctx, header, lines, res)
	s.runVendorPolicy(ctx, header, opts.VendorID, res)
	s.runDuplicateCheck(ctx, header, opts.InvoiceID, res)

	res.ConfidenceScore = s.scoreConfidence(res)
	res.HeaderSummary = summarizeHeader(header)
	res.LineSummary = summarizeLines(lines)
	res.finalize(start)
	return res
}

// validateHeader checks required header fields and formats, then coerces
// the raw mapping into a typed Header.
func (s *Service) validateHeader(raw map[string]any, res *Result) *Header {
	for _, field := range s.rules.RequiredFields.Header {
		if fieldPresent(raw, field) {
			continue
		}
		res.Checks.HeaderFields = false
		res.Issues = append(res.Issues, errorIssue(CodeMissingRequiredField,
			"required header field %s is missing or blank", field).
			withField(field).
			withValues("", "non-blank value"))
	}

	header, coerceIssues := coerceHeader(raw)
	res.Issues = append(res.Issues, coerceIssues...)

	if header.InvoiceDate != "" {
		if parsed, err := ParseDate(header.InvoiceDate); err != nil {
			res.Issues = append(res.Issues, errorIssue(CodeInvalidDateFormat,
				"invoice date %q is not in an accepted format", header.InvoiceDate).
				withField("invoice_date").
				withValues(header.InvoiceDate, "parseable date"))
		} else {
			s.checkInvoiceAge(parsed, res)
		}
	}

	if header.Currency != "" && !currencyValid(header.Currency) {
		res.Issues = append(res.Issues, warningIssue(CodeInvalidFieldFormat,
			"currency %q is not a 3-letter alphabetic code", header.Currency).
			withField("currency").
			withValues(header.Currency, "ISO 4217 code"))
	}

	return header
}

// checkInvoiceAge flags invoices dated in the future or beyond the
// configured maximum age.
func (s *Service) checkInvoiceAge(invoiceDate time.Time, res *Result) {
	today := time.Now().UTC().Truncate(24 * time.Hour)
	if invoiceDate.After(today) {
		res.Issues = append(res.Issues, warningIssue(CodeFutureInvoiceDate,
			"invoice is dated in the future (%s)", invoiceDate.Format("2006-01-02")).
			withField("invoice_date").
			withValues(invoiceDate.Format("2006-01-02"), "<= "+today.Format("2006-01-02")))
		return
	}
	maxAge := s.rules.Thresholds.MaxInvoiceAgeDays
	if maxAge > 0 && today.Sub(invoiceDate) > time.Duration(maxAge)*24*time.Hour {
		res.Issues = append(res.Issues, warningIssue(CodeInvoiceTooOld,
			"invoice is older than %d days", maxAge).
			withField("invoice_date").
			withValues(invoiceDate.Format("2006-01-02"), fmt.Sprintf("within %d days", maxAge)))
	}
}

// validateLines checks required line fields and amount ranges, coercing
// each raw line into a typed LineItem. Line numbers are 1-based.
func (s *Service) validateLines(raw []map[string]any, res *Result) []LineItem {
	lines := make([]LineItem, 0, len(raw))
	for i, rawLine := range raw {
		lineNo := i + 1
		for _, field := range s.rules.RequiredFields.Lines {
			if fieldPresent(rawLine, field) {
				continue
			}
			res.Checks.LineFields = false
			res.Issues = append(res.Issues, errorIssue(CodeMissingRequiredField,
				"line %d: required field %s is missing or blank", lineNo, field).
				withField(field).
				withLine(lineNo).
				withValues("", "non-blank value"))
		}

		item, coerceIssues := coerceLine(rawLine, lineNo)
		res.Issues = append(res.Issues, coerceIssues...)

		if item.Amount != nil {
			switch {
			case item.Amount.LessThan(s.rules.Thresholds.MinLineAmount):
				res.Issues = append(res.Issues, errorIssue(CodeLineAmountBelowMin,
					"line %d amount %s is below the minimum %s", lineNo,
					item.Amount.StringFixed(2), s.rules.Thresholds.MinLineAmount.StringFixed(2)).
					withField("amount").
					withLine(lineNo).
					withValues(item.Amount.StringFixed(2), ">= "+s.rules.Thresholds.MinLineAmount.StringFixed(2)))
			case item.Amount.GreaterThan(s.rules.Thresholds.MaxLineAmount):
				res.Issues = append(res.Issues, warningIssue(CodeLineAmountAboveMax,
					"line %d amount %s exceeds the maximum %s", lineNo,
					item.Amount.StringFixed(2), s.rules.Thresholds.MaxLineAmount.StringFixed(2)).
					withField("amount").
					withLine(lineNo).
					withValues(item.Amount.StringFixed(2), "<= "+s.rules.Thresholds.MaxLineAmount.StringFixed(2)))
			}
		}

		lines = append(lines, item)
	}
	return lines
}

func (s *Service) runMath(header *Header, lines []LineItem, res *Result) {
	mathRes, issues, err := s.math.Validate(header, lines)
	if err != nil {
		res.Checks.Math = false
		res.Issues = append(res.Issues, errorIssue(CodeValidationError,
			"math validation unavailable: %v", err))
		return
	}
	res.Math = mathRes
	res.Issues = append(res.Issues, issues...)
	res.Checks.Math = mathRes.SubtotalMatch && mathRes.TotalMatch
}

func (s *Service) runMatching(ctx context.Context, header *Header, lines []LineItem, res *Result) {
	matchRes, issues, err := s.matching.Validate(ctx, header, lines)
	if err != nil {
		res.Checks.Matching = false
		res.Issues = append(res.Issues, errorIssue(CodeValidationError,
			"po/grn matching unavailable: %v", err))
		return
	}
	res.Matching = matchRes
	res.Issues = append(res.Issues, issues...)
	res.Checks.Matching = matchRes.MatchingType == domain.MatchingNone ||
		(matchRes.POFound && matchRes.POAmountMatch && matchRes.QuantityMatch)
}

func (s *Service) runVendorPolicy(ctx context.Context, header *Header, vendorID *uuid.UUID, res *Result) {
	policyRes, issues, err := s.vendor.Validate(ctx, header, vendorID)
	if err != nil {
		res.Checks.VendorPolicy = false
		res.Issues = append(res.Issues, errorIssue(CodeValidationError,
			"vendor policy validation unavailable: %v", err))
		return
	}
	res.VendorPolicy = policyRes
	res.Issues = append(res.Issues, issues...)
	res.Checks.VendorPolicy = policyRes.VendorActive && policyRes.CurrencyValid &&
		(policyRes.SpendLimitOK == nil || *policyRes.SpendLimitOK)
}

func (s *Service) runDuplicateCheck(ctx context.Context, header *Header, invoiceID *uuid.UUID, res *Result) {
	dupRes, issues, err := s.duplicates.Check(ctx, header, invoiceID)
	if err != nil {
		res.Checks.Duplicate = false
		res.Issues = append(res.Issues, errorIssue(CodeValidationError,
			"duplicate detection unavailable: %v", err))
		return
	}
	res.Duplicate = dupRes
	res.Issues = append(res.Issues, issues...)
	res.Checks.Duplicate = !dupRes.IsDuplicate
}

// Confidence weights, out of 100. Basic correctness carries 40, math 25,
// matching 20, vendor policy 10, duplicate 5. A sub-result that is
// unavailable contributes 0 to its category.
const (
	weightStructure      = 15.0
	weightHeaderRequired = 15.0
	weightLineRequired   = 10.0
	weightSubtotalMatch  = 12.5
	weightTotalMatch     = 12.5
	weightPOFound        = 10.0
	weightPOAmount       = 5.0
	weightGRNQuantities  = 5.0
	weightVendorActive   = 5.0
	weightCurrency       = 2.5
	weightSpendLimit     = 2.5
	weightNotDuplicate   = 5.0
)

func (s *Service) scoreConfidence(res *Result) float64 {
	score := 0.0
	if res.Checks.Structure {
		score += weightStructure
	}
	if res.Checks.HeaderFields {
		score += weightHeaderRequired
	}
	if res.Checks.LineFields {
		score += weightLineRequired
	}
	if res.Math != nil {
		if res.Math.SubtotalMatch {
			score += weightSubtotalMatch
		}
		if res.Math.TotalMatch {
			score += weightTotalMatch
		}
	}
	if res.Matching != nil {
		if res.Matching.POFound {
			score += weightPOFound
			if res.Matching.POAmountMatch {
				score += weightPOAmount
			}
			if res.Matching.GRNFound && res.Matching.QuantityMatch {
				score += weightGRNQuantities
			}
		}
	}
	if res.VendorPolicy != nil {
		if res.VendorPolicy.VendorActive {
			score += weightVendorActive
		}
		if res.VendorPolicy.CurrencyValid {
			score += weightCurrency
		}
		// A skipped spend check (no limit configured) is not a failure.
		if res.VendorPolicy.SpendLimitOK == nil || *res.VendorPolicy.SpendLimitOK {
			score += weightSpendLimit
		}
	}
	if res.Duplicate != nil && !res.Duplicate.IsDuplicate {
		score += weightNotDuplicate
	}

	score = math.Round(score*100) / 100
	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}
	return score
}

// degenerateResult is the boundary fallback: failed, confidence zero, one
// issue describing the internal failure.
func (s *Service) degenerateResult(start time.Time, opts Options, message string) *Result {
	res := &Result{
		StrictMode:   opts.StrictMode,
		RulesVersion: s.rules.Version,
		Issues:       []Issue{errorIssue(CodeValidationError, "%s", message)},
	}
	res.finalize(start)
	res.ConfidenceScore = 0
	return res
}

func summarizeHeader(h *Header) string {
	if h == nil {
		return ""
	}
	total := "unknown total"
	if h.Total != nil {
		total = h.Total.StringFixed(2)
		if h.Currency != "" {
			total += " " + h.Currency
		}
	}
	return fmt.Sprintf("invoice %s from %q, %s", orUnknown(h.InvoiceNumber), h.VendorName, total)
}

func summarizeLines(lines []LineItem) string {
	if len(lines) == 0 {
		return "no line items"
	}
	withAmounts := 0
	for i := range lines {
		if lines[i].Amount != nil {
			withAmounts++
		}
	}
	return fmt.Sprintf("%d line item(s), %d with parseable amounts", len(lines), withAmounts)
}

func orUnknown(s string) string {
	if s == "" {
		return "<unknown>"
	}
	return s
}
