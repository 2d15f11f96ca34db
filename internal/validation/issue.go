package validation

import (
	"fmt"

	"apflow/internal/domain"
)

// Code identifies the kind of a validation finding.
type Code string

// Validation issue codes. The taxonomy is open; VALIDATION_ERROR is the
// catch-all for internal failures inside a sub-validator.
const (
	// Structural
	CodeInvalidDataStructure Code = "INVALID_DATA_STRUCTURE"
	CodeNoLineItems          Code = "NO_LINE_ITEMS"

	// Fields
	CodeMissingRequiredField Code = "MISSING_REQUIRED_FIELD"
	CodeInvalidFieldFormat   Code = "INVALID_FIELD_FORMAT"
	CodeInvalidDateFormat    Code = "INVALID_DATE_FORMAT"
	CodeInvoiceTooOld        Code = "INVOICE_TOO_OLD"
	CodeFutureInvoiceDate    Code = "FUTURE_INVOICE_DATE"

	// Arithmetic
	CodeInvalidAmount      Code = "INVALID_AMOUNT"
	CodeSubtotalMismatch   Code = "SUBTOTAL_MISMATCH"
	CodeTotalMismatch      Code = "TOTAL_MISMATCH"
	CodeMissingTotal       Code = "MISSING_TOTAL"
	CodeLineMathMismatch   Code = "LINE_MATH_MISMATCH"
	CodeLineAmountBelowMin Code = "LINE_AMOUNT_BELOW_MIN"
	CodeLineAmountAboveMax Code = "LINE_AMOUNT_ABOVE_MAX"

	// Matching
	CodePONotFound          Code = "PO_NOT_FOUND"
	CodePOAmountMismatch    Code = "PO_AMOUNT_MISMATCH"
	CodePOClosed            Code = "PO_CLOSED"
	CodeGRNQuantityMismatch Code = "GRN_QUANTITY_MISMATCH"

	// Vendor policy
	CodeInactiveVendor       Code = "INACTIVE_VENDOR"
	CodeInvalidCurrency      Code = "INVALID_CURRENCY"
	CodeInvalidTaxID         Code = "INVALID_TAX_ID"
	CodeSpendLimitExceeded   Code = "SPEND_LIMIT_EXCEEDED"
	CodePaymentTermsMismatch Code = "PAYMENT_TERMS_MISMATCH"

	// Duplicates
	CodeDuplicateInvoice Code = "DUPLICATE_INVOICE"

	// Catch-all
	CodeValidationError Code = "VALIDATION_ERROR"
)

// Issue is one validation finding. Issues are append-only during a run and
// never mutated afterward.
type Issue struct {
	Code          Code            `json:"code"`
	Message       string          `json:"message"`
	Severity      domain.Severity `json:"severity"`
	Field         string          `json:"field,omitempty"`
	LineNumber    int             `json:"line_number,omitempty"`
	ActualValue   string          `json:"actual_value,omitempty"`
	ExpectedValue string          `json:"expected_value,omitempty"`
	Details       map[string]any  `json:"details,omitempty"`
}

func errorIssue(code Code, format string, args ...any) Issue {
	return Issue{Code: code, Severity: domain.SeverityError, Message: fmt.Sprintf(format, args...)}
}

func warningIssue(code Code, format string, args ...any) Issue {
	return Issue{Code: code, Severity: domain.SeverityWarning, Message: fmt.Sprintf(format, args...)}
}

func infoIssue(code Code, format string, args ...any) Issue {
	return Issue{Code: code, Severity: domain.SeverityInfo, Message: fmt.Sprintf(format, args...)}
}

// withField returns a copy of the issue with the field name set.
func (i Issue) withField(field string) Issue {
	i.Field = field
	return i
}

// withLine returns a copy of the issue tagged with a 1-based line number.
func (i Issue) withLine(n int) Issue {
	i.LineNumber = n
	return i
}

// withValues returns a copy of the issue carrying actual/expected values.
func (i Issue) withValues(actual, expected string) Issue {
	i.ActualValue = actual
	i.ExpectedValue = expected
	return i
}

// withDetails returns a copy of the issue with the details map set.
func (i Issue) withDetails(details map[string]any) Issue {
	i.Details = details
	return i
}

func countBySeverity(issues []Issue) (errors, warnings, infos int) {
	for i := range issues {
		switch issues[i].Severity {
		case domain.SeverityError:
			errors++
		case domain.SeverityWarning:
			warnings++
		default:
			infos++
		}
	}
	return errors, warnings, infos
}
