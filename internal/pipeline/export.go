package pipeline

import (
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"quotedesk/internal"
)

// ExportQuoteToXLSX writes a quote as a workbook: one row per line item plus
// a totals block. Pending quotes export with blank totals.
func ExportQuoteToXLSX(quote internal.Quote, outputPath string) error {
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)

	headers := []string{"product_name", "unit_price", "quantity", "discount_rate", "discount_amount", "subtotal"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}

	row := 1
	for _, line := range quote.LineItems {
		row++
		set := func(col int, value any) {
			cell, _ := excelize.CoordinatesToCellName(col, row)
			_ = f.SetCellValue(sheet, cell, value)
		}
		set(1, line.ProductName)
		set(2, derefFloat(line.UnitPrice))
		set(3, derefInt(line.Quantity))
		set(4, line.DiscountRate)
		set(5, derefFloat(line.DiscountAmount))
		set(6, derefFloat(line.Subtotal))
	}

	row += 2
	totals := []struct {
		label string
		value any
	}{
		{"status", string(quote.Status)},
		{"currency", quote.Currency},
		{"subtotal", derefFloat(quote.Subtotal)},
		{"tax", derefFloat(quote.Tax)},
		{"total", derefFloat(quote.Total)},
	}
	for _, t := range totals {
		labelCell, _ := excelize.CoordinatesToCellName(1, row)
		valueCell, _ := excelize.CoordinatesToCellName(2, row)
		_ = f.SetCellValue(sheet, labelCell, t.label)
		_ = f.SetCellValue(sheet, valueCell, t.value)
		row++
	}

	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return err
	}
	return f.SaveAs(outputPath)
}

func derefFloat(v *float64) any {
	if v == nil {
		return ""
	}
	return *v
}

func derefInt(v *int) any {
	if v == nil {
		return ""
	}
	return *v
}
