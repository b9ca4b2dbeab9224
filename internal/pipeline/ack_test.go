package pipeline

import (
	"strings"
	"testing"

	"quotedesk/internal"
	"quotedesk/internal/pricebook"
)

func TestDraftAcknowledgment(t *testing.T) {
	event := internal.ParsedEvent{
		EmailID: "abc123",
		From:    internal.Field("alice@example.com", 0.95),
		Subject: internal.Field("Bulk order", 0.95),
		Items: []internal.Item{
			{
				ProductName: internal.Field("Widget", 0.95),
				Quantity:    internal.Field(15, 0.9),
				Unit:        internal.Field("piece", 0.8),
			},
			{
				ProductName: internal.Field("Doohickeys", 0.5),
				Quantity:    internal.MissingField[int]("quantity not specified"),
				Unit:        internal.Field("piece", 0.5),
			},
		},
		Currency:      internal.Field("USD", 0.9),
		MissingFields: []string{"quantity for Doohickeys", "price for Doohickeys", "subject"},
	}
	settings := pricebook.Settings{SLAHours: 24}

	ack := DraftAcknowledgment(event, settings)

	if ack.To != "alice@example.com" {
		t.Fatalf("unexpected recipient: %s", ack.To)
	}
	if ack.Subject != "Re: Bulk order" {
		t.Fatalf("unexpected subject: %s", ack.Subject)
	}
	if !strings.HasPrefix(ack.Body, "Hello Alice,") {
		t.Fatalf("unexpected greeting: %q", ack.Body)
	}
	if !strings.Contains(ack.Body, "15 Widget(s)") || !strings.Contains(ack.Body, "Doohickeys") {
		t.Fatalf("item summary missing: %q", ack.Body)
	}
	if len(ack.Questions) != 2 {
		t.Fatalf("expected at most two questions, got %v", ack.Questions)
	}
	if !strings.Contains(ack.Questions[0], "quantity required for Doohickeys") {
		t.Fatalf("unexpected first question: %q", ack.Questions[0])
	}
	if !strings.Contains(ack.Body, "within 24 hours") {
		t.Fatalf("SLA line missing: %q", ack.Body)
	}
}

func TestDraftAcknowledgmentNoItems(t *testing.T) {
	event := internal.ParsedEvent{
		EmailID:       "abc123",
		From:          internal.MissingField[string]("from not found"),
		Subject:       internal.MissingField[string]("subject not found"),
		Currency:      internal.Field("USD", 0.5),
		MissingFields: []string{"from", "subject", "items"},
	}

	ack := DraftAcknowledgment(event, pricebook.Settings{SLAHours: 48})

	if ack.To != "customer" {
		t.Fatalf("unexpected fallback recipient: %s", ack.To)
	}
	if ack.Subject != "Re: your inquiry" {
		t.Fatalf("unexpected fallback subject: %s", ack.Subject)
	}
	if !strings.Contains(ack.Body, "Thank you for your inquiry.") {
		t.Fatalf("generic thanks missing: %q", ack.Body)
	}
	if len(ack.Questions) != 2 {
		t.Fatalf("expected two questions, got %v", ack.Questions)
	}
}
