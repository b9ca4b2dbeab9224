package extract

import (
	"reflect"
	"testing"

	"quotedesk/internal"
	"quotedesk/internal/pricebook"
)

func testIndex() *pricebook.Index {
	return pricebook.BuildIndex([]internal.PriceEntry{
		{ProductName: "Widget", UnitPrice: 100, Unit: "piece"},
		{ProductName: "Gadget", UnitPrice: 250, Unit: "box"},
	})
}

func testSettings() pricebook.Settings {
	return pricebook.Settings{
		TaxRate:         0.18,
		DefaultCurrency: "USD",
		DefaultUnit:     "piece",
		SLAHours:        24,
		StopWords:       pricebook.DefaultStopWords(),
	}
}

func TestExtractQuantityBeforeProduct(t *testing.T) {
	engine := NewEngine(testIndex(), testSettings())
	event := engine.Extract("From: alice@example.com\nSubject: Bulk order\n\nWe would like to order 15 Widgets for our plant.")

	if event.From.Value == nil || *event.From.Value != "alice@example.com" || event.From.Confidence != 0.95 {
		t.Fatalf("unexpected from: %+v", event.From)
	}
	if event.Subject.Value == nil || *event.Subject.Value != "Bulk order" {
		t.Fatalf("unexpected subject: %+v", event.Subject)
	}
	if len(event.Items) != 1 {
		t.Fatalf("expected 1 item, got %d: %+v", len(event.Items), event.Items)
	}

	item := event.Items[0]
	if item.ProductName.Value == nil || *item.ProductName.Value != "Widget" {
		t.Fatalf("unexpected product: %+v", item.ProductName)
	}
	if item.Quantity.Value == nil || *item.Quantity.Value != 15 || item.Quantity.Confidence < 0.9 {
		t.Fatalf("unexpected quantity: %+v", item.Quantity)
	}
	if item.Unit.Value == nil || *item.Unit.Value != "piece" || item.Unit.Confidence != 0.8 {
		t.Fatalf("unexpected unit: %+v", item.Unit)
	}
	if len(event.MissingFields) != 0 {
		t.Fatalf("unexpected missing fields: %v", event.MissingFields)
	}
}

func TestExtractQuantityWithAdjective(t *testing.T) {
	engine := NewEngine(testIndex(), testSettings())
	event := engine.Extract("From: a@b.com\nSubject: x\n\nPlease send 12 industrial Widgets.")

	if len(event.Items) != 1 || event.Items[0].Quantity.Value == nil || *event.Items[0].Quantity.Value != 12 {
		t.Fatalf("adjective between quantity and product not handled: %+v", event.Items)
	}
}

func TestExtractMissingQuantity(t *testing.T) {
	engine := NewEngine(testIndex(), testSettings())
	event := engine.Extract("From: a@b.com\nSubject: x\n\nDo you have Gadgets in stock?")

	if len(event.Items) != 1 {
		t.Fatalf("expected 1 item, got %+v", event.Items)
	}
	item := event.Items[0]
	if item.Quantity.Value != nil || item.Quantity.Confidence != 0 || item.Quantity.Notes != "quantity not specified" {
		t.Fatalf("unexpected quantity field: %+v", item.Quantity)
	}
	if !contains(event.MissingFields, "quantity for Gadget") {
		t.Fatalf("missing fields lack quantity entry: %v", event.MissingFields)
	}
}

func TestExtractUnknownProductAfterConjunction(t *testing.T) {
	engine := NewEngine(testIndex(), testSettings())
	event := engine.Extract("From: a@b.com\nSubject: x\n\nWe need 15 Widgets and Doohickeys for the new line.")

	if len(event.Items) != 2 {
		t.Fatalf("expected 2 items, got %+v", event.Items)
	}
	unknown := event.Items[1]
	if unknown.ProductName.Value == nil || *unknown.ProductName.Value != "Doohickeys" {
		t.Fatalf("unexpected unknown product: %+v", unknown.ProductName)
	}
	if unknown.ProductName.Confidence != 0.5 || unknown.ProductName.Notes != "unknown product" {
		t.Fatalf("unexpected unknown annotation: %+v", unknown.ProductName)
	}
	if !contains(event.MissingFields, "price for Doohickeys") {
		t.Fatalf("missing fields lack price entry: %v", event.MissingFields)
	}
}

func TestExtractUnknownProductAfterOrderingVerb(t *testing.T) {
	engine := NewEngine(testIndex(), testSettings())
	event := engine.Extract("From: a@b.com\nSubject: x\n\nWe want doohickeys delivered next week.")

	if len(event.Items) != 1 {
		t.Fatalf("expected 1 item, got %+v", event.Items)
	}
	if *event.Items[0].ProductName.Value != "Doohickeys" {
		t.Fatalf("unexpected product: %+v", event.Items[0].ProductName)
	}
}

func TestExtractStopWordsAndSingularsFiltered(t *testing.T) {
	engine := NewEngine(testIndex(), testSettings())
	event := engine.Extract("From: a@b.com\nSubject: x\n\nWe need some information about Charlie and pricing.")

	if len(event.Items) != 0 {
		t.Fatalf("stop words or singular names leaked through: %+v", event.Items)
	}
	if !contains(event.MissingFields, "items") {
		t.Fatalf("expected items in missing fields: %v", event.MissingFields)
	}
}

func TestExtractDuplicateMentionsMerged(t *testing.T) {
	engine := NewEngine(testIndex(), testSettings())
	event := engine.Extract("From: a@b.com\nSubject: x\n\nThe widget should be sturdy. We order 30 Widgets total.")

	if len(event.Items) != 1 {
		t.Fatalf("duplicates not merged: %+v", event.Items)
	}
	if event.Items[0].Quantity.Value == nil || *event.Items[0].Quantity.Value != 30 {
		t.Fatalf("highest-confidence quantity not kept: %+v", event.Items[0].Quantity)
	}
}

func TestExtractCurrency(t *testing.T) {
	engine := NewEngine(testIndex(), testSettings())

	event := engine.Extract("From: a@b.com\nSubject: x\n\nBudget is 2000 EUR for 10 Widgets.")
	if event.Currency.Value == nil || *event.Currency.Value != "EUR" || event.Currency.Confidence != 0.9 {
		t.Fatalf("explicit currency not detected: %+v", event.Currency)
	}

	event = engine.Extract("From: a@b.com\nSubject: x\n\nPlease quote 10 Widgets.")
	if event.Currency.Value == nil || *event.Currency.Value != "USD" || event.Currency.Confidence != 0.5 {
		t.Fatalf("default currency not assumed: %+v", event.Currency)
	}
	if event.Currency.Notes != "default currency assumed" {
		t.Fatalf("default currency note missing: %+v", event.Currency)
	}
}

func TestExtractMissingHeaders(t *testing.T) {
	engine := NewEngine(testIndex(), testSettings())
	event := engine.Extract("Hello,\n\nSend 5 Widgets please.")

	if event.From.Value != nil || event.From.Confidence != 0 || event.From.Notes != "from not found" {
		t.Fatalf("unexpected from field: %+v", event.From)
	}
	if !contains(event.MissingFields, "from") || !contains(event.MissingFields, "subject") {
		t.Fatalf("header names missing from missing fields: %v", event.MissingFields)
	}
}

func TestExtractEmptyBody(t *testing.T) {
	engine := NewEngine(testIndex(), testSettings())
	event := engine.Extract("From: a@b.com\nSubject: hi")

	if len(event.Items) != 0 {
		t.Fatalf("expected no items: %+v", event.Items)
	}
	if !contains(event.MissingFields, "items") {
		t.Fatalf("expected items marker: %v", event.MissingFields)
	}
}

func TestExtractDeterministic(t *testing.T) {
	engine := NewEngine(testIndex(), testSettings())
	text := "From: a@b.com\nSubject: order\n\nWe need 15 Widgets and Doohickeys, plus 2 Gadgets, budget in EUR."

	first := engine.Extract(text)
	second := engine.Extract(text)
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("extraction is not deterministic:\n%+v\n%+v", first, second)
	}
}

func TestExtractItemsPreserveTextOrder(t *testing.T) {
	engine := NewEngine(testIndex(), testSettings())
	event := engine.Extract("From: a@b.com\nSubject: x\n\nFirst 2 Gadgets, then 3 Widgets.")

	if len(event.Items) != 2 {
		t.Fatalf("expected 2 items: %+v", event.Items)
	}
	if *event.Items[0].ProductName.Value != "Gadget" || *event.Items[1].ProductName.Value != "Widget" {
		t.Fatalf("items out of text order: %+v", event.Items)
	}
}

func contains(values []string, want string) bool {
	for _, v := range values {
		if v == want {
			return true
		}
	}
	return false
}
