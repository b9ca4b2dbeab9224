package pipeline

import (
	"path/filepath"
	"testing"

	"github.com/xuri/excelize/v2"

	"quotedesk/internal"
	"quotedesk/internal/util"
)

func TestExportQuoteToXLSX(t *testing.T) {
	quote := internal.Quote{
		EmailID: "abc123",
		Status:  internal.QuoteComplete,
		LineItems: []internal.LineItem{
			{
				ProductName:    "Widget",
				UnitPrice:      util.FloatPtr(100),
				Quantity:       util.IntPtr(15),
				DiscountRate:   0.05,
				DiscountAmount: util.FloatPtr(75),
				Subtotal:       util.FloatPtr(1425),
			},
		},
		Currency: "USD",
		Subtotal: util.FloatPtr(1425),
		Tax:      util.FloatPtr(256.5),
		Total:    util.FloatPtr(1681.5),
	}

	path := filepath.Join(t.TempDir(), "abc123.xlsx")
	if err := ExportQuoteToXLSX(quote, path); err != nil {
		t.Fatalf("export: %v", err)
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer f.Close()
	sheet := f.GetSheetName(0)

	cell := func(ref string) string {
		t.Helper()
		value, err := f.GetCellValue(sheet, ref)
		if err != nil {
			t.Fatalf("cell %s: %v", ref, err)
		}
		return value
	}

	if got := cell("A1"); got != "product_name" {
		t.Fatalf("A1 = %q", got)
	}
	if got := cell("A2"); got != "Widget" {
		t.Fatalf("A2 = %q", got)
	}
	if got := cell("C2"); got != "15" {
		t.Fatalf("C2 = %q", got)
	}
	if got := cell("F2"); got != "1425" {
		t.Fatalf("F2 = %q", got)
	}
	if got := cell("A4"); got != "status" {
		t.Fatalf("A4 = %q", got)
	}
	if got := cell("B4"); got != "complete" {
		t.Fatalf("B4 = %q", got)
	}
	if got := cell("B8"); got != "1681.5" {
		t.Fatalf("B8 = %q", got)
	}
}

func TestExportPendingQuoteBlankTotals(t *testing.T) {
	quote := internal.Quote{
		EmailID:  "def456",
		Status:   internal.QuotePending,
		Currency: "USD",
		LineItems: []internal.LineItem{
			{ProductName: "Doohickey"},
		},
		MissingFields: []string{"price for Doohickey"},
	}

	path := filepath.Join(t.TempDir(), "def456.xlsx")
	if err := ExportQuoteToXLSX(quote, path); err != nil {
		t.Fatalf("export: %v", err)
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer f.Close()
	sheet := f.GetSheetName(0)

	status, _ := f.GetCellValue(sheet, "B4")
	if status != "pending" {
		t.Fatalf("B4 = %q", status)
	}
	total, _ := f.GetCellValue(sheet, "B8")
	if total != "" {
		t.Fatalf("expected blank total, got %q", total)
	}
}
