// Package export renders validation reporting data into downloadable
// artifacts.
package export

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"

	"apflow/internal/domain"
)

const (
	summarySheet = "Summary"
	vendorsSheet = "Top Failing Vendors"
)

// WeeklyWorkbook renders the weekly validation stats into an XLSX workbook.
func WeeklyWorkbook(stats *domain.WeeklyStats, topVendors []domain.VendorFailureStat) (*bytes.Buffer, error) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	f.SetSheetName(f.GetSheetName(0), summarySheet)

	header, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, fmt.Errorf("export.WeeklyWorkbook style: %w", err)
	}

	summary := [][]any{
		{"Week starting", stats.WeekStart.Format("2006-01-02")},
		{"Invoices received", stats.InvoicesTotal},
		{"Validated", stats.Validated},
		{"Failed validation", stats.Failed},
		{"Pending", stats.Pending},
		{"Total amount", stats.AmountTotal.StringFixed(2)},
		{"Average confidence", fmt.Sprintf("%.2f", stats.AvgConfidence)},
		{"Open exceptions", stats.OpenExceptions},
	}
	for i, row := range summary {
		cell := fmt.Sprintf("A%d", i+1)
		if err := f.SetSheetRow(summarySheet, cell, &row); err != nil {
			return nil, fmt.Errorf("export.WeeklyWorkbook summary row %d: %w", i+1, err)
		}
	}
	if err := f.SetCellStyle(summarySheet, "A1", fmt.Sprintf("A%d", len(summary)), header); err != nil {
		return nil, fmt.Errorf("export.WeeklyWorkbook summary style: %w", err)
	}
	if err := f.SetColWidth(summarySheet, "A", "A", 24); err != nil {
		return nil, fmt.Errorf("export.WeeklyWorkbook summary width: %w", err)
	}

	if _, err := f.NewSheet(vendorsSheet); err != nil {
		return nil, fmt.Errorf("export.WeeklyWorkbook vendors sheet: %w", err)
	}
	titles := []any{"Vendor", "Failed validations"}
	if err := f.SetSheetRow(vendorsSheet, "A1", &titles); err != nil {
		return nil, fmt.Errorf("export.WeeklyWorkbook vendors header: %w", err)
	}
	if err := f.SetCellStyle(vendorsSheet, "A1", "B1", header); err != nil {
		return nil, fmt.Errorf("export.WeeklyWorkbook vendors style: %w", err)
	}
	for i, v := range topVendors {
		row := []any{v.VendorName, v.Failures}
		if err := f.SetSheetRow(vendorsSheet, fmt.Sprintf("A%d", i+2), &row); err != nil {
			return nil, fmt.Errorf("export.WeeklyWorkbook vendor row %d: %w", i+2, err)
		}
	}
	if err := f.SetColWidth(vendorsSheet, "A", "A", 36); err != nil {
		return nil, fmt.Errorf("export.WeeklyWorkbook vendors width: %w", err)
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("export.WeeklyWorkbook write: %w", err)
	}
	return &buf, nil
}
