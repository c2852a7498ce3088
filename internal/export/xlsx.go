// Package export renders a ledger as an XLSX workbook: the raw records
// on one sheet, per-category expenditure totals on a second.
package export

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"moneysaver/internal/core"
	"moneysaver/internal/format"
	"moneysaver/internal/stats"
)

const (
	recordsSheet    = "Records"
	categoriesSheet = "Categories"
)

// WriteLedger writes the workbook to path, overwriting any existing
// file. Records appear oldest first, matching the persisted document.
func WriteLedger(path string, led *core.Ledger) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", recordsSheet); err != nil {
		return fmt.Errorf("rename records sheet: %w", err)
	}
	if err := writeRecords(f, led); err != nil {
		return err
	}

	if _, err := f.NewSheet(categoriesSheet); err != nil {
		return fmt.Errorf("create categories sheet: %w", err)
	}
	if err := writeCategories(f, led.Records); err != nil {
		return err
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save workbook %s: %w", path, err)
	}
	return nil
}

func writeRecords(f *excelize.File, led *core.Ledger) error {
	headers := []string{"Index", "Date", "Category", "Amount", "Flag"}
	for i, header := range headers {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return fmt.Errorf("header cell: %w", err)
		}
		if err := f.SetCellValue(recordsSheet, cell, header); err != nil {
			return fmt.Errorf("write header: %w", err)
		}
	}

	// Working order is newest first; the workbook mirrors the file,
	// oldest first.
	for i := len(led.Records) - 1; i >= 0; i-- {
		rec := led.Records[i]
		row := len(led.Records) - i + 1
		cells := []any{rec.Index, rec.Date.String(), rec.Category, rec.Amount.String(), string(rec.Flag)}
		for col, v := range cells {
			cell, err := excelize.CoordinatesToCellName(col+1, row)
			if err != nil {
				return fmt.Errorf("record cell: %w", err)
			}
			if err := f.SetCellValue(recordsSheet, cell, v); err != nil {
				return fmt.Errorf("write record row %d: %w", row, err)
			}
		}
	}
	return nil
}

func writeCategories(f *excelize.File, records []core.Record) error {
	for i, header := range []string{"Category", "Total"} {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return fmt.Errorf("header cell: %w", err)
		}
		if err := f.SetCellValue(categoriesSheet, cell, header); err != nil {
			return fmt.Errorf("write header: %w", err)
		}
	}

	_, expenditures := stats.Partition(records)
	for i, p := range stats.CategoryTotals(expenditures) {
		row := i + 2
		if err := f.SetCellValue(categoriesSheet, fmt.Sprintf("A%d", row), p.Key); err != nil {
			return fmt.Errorf("write category: %w", err)
		}
		if err := f.SetCellValue(categoriesSheet, fmt.Sprintf("B%d", row), format.Currency(p.Value)); err != nil {
			return fmt.Errorf("write total: %w", err)
		}
	}
	return nil
}
