package validation

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDate(t *testing.T) {
	cases := map[string]time.Time{
		"2026-03-15":     time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC),
		"15/03/2026":     time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC),
		"15 Mar 2026":    time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC),
		" 2026-03-15\t ": time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC),
	}
	for in, want := range cases {
		got, err := ParseDate(in)
		require.NoError(t, err, in)
		assert.True(t, want.Equal(got), in)
	}

	_, err := ParseDate("not a date")
	assert.Error(t, err)
	_, err = ParseDate("")
	assert.Error(t, err)
}

func TestParseAmount(t *testing.T) {
	for _, tc := range []struct {
		in   any
		want string
	}{
		{100.5, "100.5"},
		{int(42), "42"},
		{int64(42), "42"},
		{json.Number("99.99"), "99.99"},
		{"$1,234.56", "1234.56"},
		{"₹ 2,500", "2500"},
		{" 10.00 ", "10"},
		{decimal.RequireFromString("3.14"), "3.14"},
	} {
		got, err := parseAmount(tc.in)
		require.NoError(t, err, "%v", tc.in)
		assert.True(t, decimal.RequireFromString(tc.want).Equal(got), "%v", tc.in)
	}

	for _, bad := range []any{nil, "abc", "", []string{"1"}} {
		_, err := parseAmount(bad)
		assert.Error(t, err, "%v", bad)
	}
}

func TestFieldPresent(t *testing.T) {
	m := map[string]any{
		"vendor_name": "Acme",
		"blank":       "   ",
		"zero":        0.0,
		"nothing":     nil,
	}
	assert.True(t, fieldPresent(m, "vendor_name"))
	assert.True(t, fieldPresent(m, "zero"), "numeric zero renders non-blank")
	assert.False(t, fieldPresent(m, "blank"))
	assert.False(t, fieldPresent(m, "nothing"))
	assert.False(t, fieldPresent(m, "missing"))
}

func TestCoerceHeader(t *testing.T) {
	h, issues := coerceHeader(map[string]any{
		"vendor_name":    " Acme Supplies ",
		"invoice_number": "INV-001",
		"invoice_date":   "2026-03-15",
		"currency":       "USD",
		"subtotal":       "1,000.00",
		"tax_amount":     180.0,
		"total_amount":   "$1,180.00",
	})
	assert.Empty(t, issues)
	assert.Equal(t, "Acme Supplies", h.VendorName)
	assert.Equal(t, "INV-001", h.InvoiceNumber)
	require.NotNil(t, h.Subtotal)
	require.NotNil(t, h.TaxAmount)
	require.NotNil(t, h.Total)
	assert.True(t, h.Total.Equal(decimal.RequireFromString("1180")))
}

func TestCoerceHeader_BadAmount(t *testing.T) {
	h, issues := coerceHeader(map[string]any{
		"vendor_name":  "Acme",
		"total_amount": "twelve dollars",
	})
	require.Len(t, issues, 1)
	assert.Equal(t, CodeInvalidAmount, issues[0].Code)
	assert.Nil(t, h.Total)
}

func TestCoerceLine_BadAmount(t *testing.T) {
	item, issues := coerceLine(map[string]any{
		"description": "Widget",
		"quantity":    2.0,
		"unit_price":  "??",
		"amount":      "20.00",
	}, 3)
	require.Len(t, issues, 1)
	assert.Equal(t, CodeInvalidAmount, issues[0].Code)
	assert.Equal(t, 3, issues[0].LineNumber)
	assert.Nil(t, item.UnitPrice)
	require.NotNil(t, item.Amount)
}

func TestCurrencyValid(t *testing.T) {
	assert.True(t, currencyValid("USD"))
	assert.True(t, currencyValid("inr"))
	assert.False(t, currencyValid("US"))
	assert.False(t, currencyValid("US1"))
	assert.False(t, currencyValid(""))
}
