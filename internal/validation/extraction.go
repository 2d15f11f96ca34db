package validation

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// ExtractedInvoice is the loosely-typed output of the upstream document
// extraction service: a header mapping plus an ordered list of line item
// mappings. The engine coerces it into typed records before validating.
type ExtractedInvoice struct {
	Header map[string]any   `json:"header"`
	Lines  []map[string]any `json:"line_items"`
}

// ParsedHeader coerces just the typed header, discarding coercion issues.
// Callers that need the issues go through the validation service instead.
func (e ExtractedInvoice) ParsedHeader() *Header {
	h, _ := coerceHeader(e.Header)
	return h
}

// Header is the typed invoice header produced by coercion. Monetary fields
// are nil when absent or unparseable in the extraction.
type Header struct {
	VendorName    string           `json:"vendor_name"`
	InvoiceNumber string           `json:"invoice_number"`
	InvoiceDate   string           `json:"invoice_date"`
	DueDate       string           `json:"due_date"`
	Currency      string           `json:"currency"`
	PONumber      string           `json:"po_number"`
	TaxID         string           `json:"tax_id"`
	Subtotal      *decimal.Decimal `json:"subtotal"`
	TaxAmount     *decimal.Decimal `json:"tax_amount"`
	Total         *decimal.Decimal `json:"total_amount"`
}

// LineItem is one typed invoice line produced by coercion.
type LineItem struct {
	Description string           `json:"description"`
	SKU         string           `json:"sku"`
	Quantity    *decimal.Decimal `json:"quantity"`
	UnitPrice   *decimal.Decimal `json:"unit_price"`
	Amount      *decimal.Decimal `json:"amount"`
}

// acceptedDateFormats are the date layouts the engine recognizes in
// extracted header fields.
var acceptedDateFormats = []string{
	"2006-01-02",
	"02-01-2006",
	"02/01/2006",
	"01/02/2006",
	"2006/01/02",
	"02 Jan 2006",
	"2 Jan 2006",
	"Jan 02, 2006",
	"January 2, 2006",
	"2006-01-02T15:04:05Z07:00",
}

// ParseDate tries the accepted date layouts in order.
func ParseDate(s string) (time.Time, error) {
	trimmed := strings.TrimSpace(s)
	for _, layout := range acceptedDateFormats {
		if t, err := time.Parse(layout, trimmed); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unparseable date: %q", s)
}

// parseAmount coerces an extraction value to a decimal amount. Strings may
// carry currency symbols, thousands separators, and surrounding whitespace.
func parseAmount(v any) (decimal.Decimal, error) {
	switch n := v.(type) {
	case nil:
		return decimal.Zero, fmt.Errorf("missing value")
	case float64:
		return decimal.NewFromFloat(n), nil
	case float32:
		return decimal.NewFromFloat32(n), nil
	case int:
		return decimal.NewFromInt(int64(n)), nil
	case int64:
		return decimal.NewFromInt(n), nil
	case json.Number:
		return decimal.NewFromString(n.String())
	case decimal.Decimal:
		return n, nil
	case string:
		cleaned := strings.TrimSpace(n)
		cleaned = strings.TrimLeft(cleaned, "$€£₹ ")
		cleaned = strings.ReplaceAll(cleaned, ",", "")
		if cleaned == "" {
			return decimal.Zero, fmt.Errorf("blank amount")
		}
		return decimal.NewFromString(cleaned)
	default:
		return decimal.Zero, fmt.Errorf("unsupported amount type %T", v)
	}
}

// stringField reads a header/line field as a trimmed string. Numbers are
// rendered with minimal formatting so extraction quirks don't lose data.
func stringField(m map[string]any, key string) string {
	v, ok := m[key]
	if !ok || v == nil {
		return ""
	}
	switch s := v.(type) {
	case string:
		return strings.TrimSpace(s)
	case json.Number:
		return s.String()
	case float64:
		return strings.TrimSuffix(strings.TrimRight(fmt.Sprintf("%.2f", s), "0"), ".")
	default:
		return strings.TrimSpace(fmt.Sprintf("%v", v))
	}
}

// fieldPresent reports whether the field exists and renders non-blank.
func fieldPresent(m map[string]any, key string) bool {
	v, ok := m[key]
	if !ok || v == nil {
		return false
	}
	return stringField(m, key) != ""
}

// coerceHeader converts a raw header mapping into a typed Header. Amount
// coercion failures become INVALID_AMOUNT issues instead of aborting.
func coerceHeader(raw map[string]any) (*Header, []Issue) {
	h := &Header{
		VendorName:    stringField(raw, "vendor_name"),
		InvoiceNumber: stringField(raw, "invoice_number"),
		InvoiceDate:   stringField(raw, "invoice_date"),
		DueDate:       stringField(raw, "due_date"),
		Currency:      stringField(raw, "currency"),
		PONumber:      stringField(raw, "po_number"),
		TaxID:         stringField(raw, "tax_id"),
	}

	var issues []Issue
	for _, f := range []struct {
		key  string
		dest **decimal.Decimal
	}{
		{"subtotal", &h.Subtotal},
		{"tax_amount", &h.TaxAmount},
		{"total_amount", &h.Total},
	} {
		v, ok := raw[f.key]
		if !ok || v == nil {
			continue
		}
		amount, err := parseAmount(v)
		if err != nil {
			issues = append(issues, errorIssue(CodeInvalidAmount,
				"header field %s is not a valid amount", f.key).
				withField(f.key).
				withValues(stringField(raw, f.key), "numeric amount"))
			continue
		}
		*f.dest = &amount
	}
	return h, issues
}

// coerceLine converts one raw line item mapping. lineNo is 1-based and tags
// every coercion failure.
func coerceLine(raw map[string]any, lineNo int) (LineItem, []Issue) {
	item := LineItem{
		Description: stringField(raw, "description"),
		SKU:         stringField(raw, "sku"),
	}

	var issues []Issue
	for _, f := range []struct {
		key  string
		dest **decimal.Decimal
	}{
		{"quantity", &item.Quantity},
		{"unit_price", &item.UnitPrice},
		{"amount", &item.Amount},
	} {
		v, ok := raw[f.key]
		if !ok || v == nil {
			continue
		}
		amount, err := parseAmount(v)
		if err != nil {
			issues = append(issues, errorIssue(CodeInvalidAmount,
				"line %d field %s is not a valid amount", lineNo, f.key).
				withField(f.key).
				withLine(lineNo).
				withValues(stringField(raw, f.key), "numeric amount"))
			continue
		}
		*f.dest = &amount
	}
	return item, issues
}

// currencyValid reports whether the value looks like a 3-letter alphabetic
// currency code.
func currencyValid(code string) bool {
	if len(code) != 3 {
		return false
	}
	for _, r := range code {
		if (r < 'A' || r > 'Z') && (r < 'a' || r > 'z') {
			return false
		}
	}
	return true
}
