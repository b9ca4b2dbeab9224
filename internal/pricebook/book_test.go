package pricebook

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"quotedesk/internal"
)

func writeRules(t *testing.T, dir, priceList, discounts, settings string) {
	t.Helper()
	files := map[string]string{
		"price_list.json":     priceList,
		"discount_rules.json": discounts,
		"settings.json":       settings,
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	writeRules(t, dir,
		`{"Widget": {"unit_price": 100, "unit": "piece"}, "Gadget": {"unit_price": 250, "unit": "box"}}`,
		`[{"min_quantity": 10, "discount_rate": 0.05}]`,
		`{"tax_rate": 0.18, "default_currency": "USD", "default_unit": "piece", "sla_hours": 24}`,
	)

	book, err := Load(dir)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(book.Prices) != 2 {
		t.Fatalf("expected 2 price entries, got %+v", book.Prices)
	}
	// Entries are sorted by name so runs are reproducible.
	if book.Prices[0].ProductName != "Gadget" || book.Prices[1].ProductName != "Widget" {
		t.Fatalf("price entries not sorted: %+v", book.Prices)
	}
	if len(book.Tiers) != 1 || book.Tiers[0].MinQuantity != 10 {
		t.Fatalf("unexpected tiers: %+v", book.Tiers)
	}
	if book.Settings.TaxRate != 0.18 || book.Settings.SLAHours != 24 {
		t.Fatalf("unexpected settings: %+v", book.Settings)
	}
	if len(book.Settings.StopWords) == 0 {
		t.Fatalf("stop words default not applied")
	}
}

func TestLoadRejectsCorruptPriceList(t *testing.T) {
	dir := t.TempDir()
	writeRules(t, dir,
		`{"Widget": {"unit_price": -5, "unit": "piece"}}`,
		`[]`,
		`{"tax_rate": 0.18}`,
	)

	_, err := Load(dir)
	if !errors.Is(err, ErrInvalidPriceList) {
		t.Fatalf("expected ErrInvalidPriceList, got %v", err)
	}
}

func TestLoadRejectsCorruptDiscounts(t *testing.T) {
	dir := t.TempDir()
	writeRules(t, dir,
		`{"Widget": {"unit_price": 100, "unit": "piece"}}`,
		`[{"min_quantity": 10, "discount_rate": 1.5}]`,
		`{"tax_rate": 0.18}`,
	)

	_, err := Load(dir)
	if !errors.Is(err, ErrInvalidDiscounts) {
		t.Fatalf("expected ErrInvalidDiscounts, got %v", err)
	}
}

func TestIndexLookup(t *testing.T) {
	idx := BuildIndex([]internal.PriceEntry{{ProductName: "Widget", UnitPrice: 100, Unit: "piece"}})

	for _, form := range []string{"Widget", "widget", "WIDGETS", "widgets"} {
		entry, ok := idx.Lookup(form)
		if !ok || entry.ProductName != "Widget" {
			t.Fatalf("lookup %q failed: %+v ok=%v", form, entry, ok)
		}
	}
	if _, ok := idx.Lookup("Doohickeys"); ok {
		t.Fatalf("unexpected hit for unknown product")
	}
	if names := idx.Names(); len(names) != 1 || names[0] != "Widget" {
		t.Fatalf("unexpected names: %v", names)
	}
}
