package validation_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"apflow/internal/validation"
)

func dec(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func line(qty, price, amount string) validation.LineItem {
	return validation.LineItem{
		Description: "item",
		Quantity:    dec(qty),
		UnitPrice:   dec(price),
		Amount:      dec(amount),
	}
}

func TestMathValidator_AllConsistent(t *testing.T) {
	v := validation.NewMathValidator(validation.DefaultRules())

	res, issues, err := v.Validate(&validation.Header{
		Subtotal:  dec("100.00"),
		TaxAmount: dec("18.00"),
		Total:     dec("118.00"),
	}, []validation.LineItem{
		line("2", "25.00", "50.00"),
		line("5", "10.00", "50.00"),
	})

	require.NoError(t, err)
	assert.Empty(t, issues)
	assert.True(t, res.SubtotalMatch)
	assert.True(t, res.TotalMatch)
	assert.Equal(t, []bool{true, true}, res.LineMathValid)
	assert.True(t, res.LinesTotal.Equal(decimal.RequireFromString("100")))
}

func TestMathValidator_ToleranceBoundary(t *testing.T) {
	v := validation.NewMathValidator(validation.DefaultRules())
	lines := []validation.LineItem{line("1", "100.00", "100.00")}

	// 1 cent off: within the default 1-cent tolerance.
	res, issues, err := v.Validate(&validation.Header{Total: dec("100.01")}, lines)
	require.NoError(t, err)
	assert.Empty(t, issues)
	assert.True(t, res.TotalMatch)

	// 2 cents off: outside the tolerance.
	res, issues, err = v.Validate(&validation.Header{Total: dec("100.02")}, lines)
	require.NoError(t, err)
	require.Len(t, issues, 1)
	assert.Equal(t, validation.CodeTotalMismatch, issues[0].Code)
	assert.False(t, res.TotalMatch)
}

func TestMathValidator_SubtotalMismatch(t *testing.T) {
	v := validation.NewMathValidator(validation.DefaultRules())

	res, issues, err := v.Validate(&validation.Header{
		Subtotal: dec("90.00"),
		Total:    dec("90.00"),
	}, []validation.LineItem{line("1", "100.00", "100.00")})

	require.NoError(t, err)
	require.Len(t, issues, 1)
	assert.Equal(t, validation.CodeSubtotalMismatch, issues[0].Code)
	assert.False(t, res.SubtotalMatch)
	// Total is checked against the stated subtotal, which it matches.
	assert.True(t, res.TotalMatch)
	assert.Equal(t, "10.00", issues[0].Details["difference"])
}

func TestMathValidator_MissingTotal(t *testing.T) {
	v := validation.NewMathValidator(validation.DefaultRules())

	res, issues, err := v.Validate(&validation.Header{}, []validation.LineItem{
		line("1", "50.00", "50.00"),
	})

	require.NoError(t, err)
	require.Len(t, issues, 1)
	assert.Equal(t, validation.CodeMissingTotal, issues[0].Code)
	assert.False(t, res.TotalMatch)
}

func TestMathValidator_LineMathMismatchIsWarning(t *testing.T) {
	v := validation.NewMathValidator(validation.DefaultRules())

	res, issues, err := v.Validate(&validation.Header{Total: dec("55.00")}, []validation.LineItem{
		{Description: "item", Quantity: dec("2"), UnitPrice: dec("25.00"), Amount: dec("55.00")},
	})

	require.NoError(t, err)
	require.Len(t, issues, 1)
	assert.Equal(t, validation.CodeLineMathMismatch, issues[0].Code)
	assert.Equal(t, 1, issues[0].LineNumber)
	assert.Equal(t, []bool{false}, res.LineMathValid)
}

func TestMathValidator_MissingLineOperandsSkipped(t *testing.T) {
	v := validation.NewMathValidator(validation.DefaultRules())

	res, issues, err := v.Validate(&validation.Header{Total: dec("50.00")}, []validation.LineItem{
		{Description: "item", Amount: dec("50.00")},
	})

	require.NoError(t, err)
	assert.Empty(t, issues, "missing operands are the required-field checks' concern")
	assert.Equal(t, []bool{true}, res.LineMathValid)
}
