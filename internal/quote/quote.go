// Package quote deterministically prices a parsed inquiry event against the
// price book. All monetary arithmetic runs on decimal values and is rounded to
// two places, half away from zero, exactly once per aggregation boundary:
// the discount amount is rounded first and the rounded value is subtracted
// from the gross line value.
package quote

import (
	"sort"

	"github.com/shopspring/decimal"

	"quotedesk/internal"
	"quotedesk/internal/pricebook"
	"quotedesk/internal/util"
)

func Compute(event internal.ParsedEvent, prices *pricebook.Index, tiers []internal.DiscountTier, taxRate float64) internal.Quote {
	q := internal.Quote{
		EmailID:       event.EmailID,
		Status:        internal.QuoteComplete,
		LineItems:     []internal.LineItem{},
		MissingFields: []string{},
	}
	if event.Currency.Value != nil {
		q.Currency = *event.Currency.Value
	}

	subtotal := decimal.Zero
	pending := false
	for _, item := range event.Items {
		line, lineTotal, ok := computeLine(item, prices, tiers, &q.MissingFields)
		q.LineItems = append(q.LineItems, line)
		if !ok {
			pending = true
			continue
		}
		subtotal = subtotal.Add(lineTotal)
	}

	// All-or-nothing: one incomplete line withholds every aggregate.
	if pending {
		q.Status = internal.QuotePending
		q.MissingFields = dedupeStrings(q.MissingFields)
		return q
	}

	subtotal = subtotal.Round(2)
	tax := subtotal.Mul(decimal.NewFromFloat(taxRate)).Round(2)
	total := subtotal.Add(tax).Round(2)

	q.Subtotal = util.FloatPtr(subtotal.InexactFloat64())
	q.Tax = util.FloatPtr(tax.InexactFloat64())
	q.Total = util.FloatPtr(total.InexactFloat64())
	q.MissingFields = dedupeStrings(q.MissingFields)
	return q
}

func computeLine(item internal.Item, prices *pricebook.Index, tiers []internal.DiscountTier, missing *[]string) (internal.LineItem, decimal.Decimal, bool) {
	name := ""
	if item.ProductName.Value != nil {
		name = *item.ProductName.Value
	}
	line := internal.LineItem{ProductName: name, DiscountRate: 0}

	entry, priced := prices.Lookup(name)
	if name == "" || !priced {
		label := name
		if label == "" {
			label = "unnamed item"
		}
		*missing = append(*missing, "price for "+label)
		return line, decimal.Zero, false
	}
	line.UnitPrice = util.FloatPtr(entry.UnitPrice)

	if item.Quantity.Value == nil {
		*missing = append(*missing, "quantity for "+name)
		return line, decimal.Zero, false
	}
	qty := *item.Quantity.Value
	line.Quantity = util.IntPtr(qty)

	rate := SelectDiscountRate(tiers, qty)
	line.DiscountRate = rate

	price := decimal.NewFromFloat(entry.UnitPrice)
	gross := price.Mul(decimal.NewFromInt(int64(qty)))
	discount := gross.Mul(decimal.NewFromFloat(rate)).Round(2)
	lineTotal := gross.Sub(discount).Round(2)

	line.DiscountAmount = util.FloatPtr(discount.InexactFloat64())
	line.Subtotal = util.FloatPtr(lineTotal.InexactFloat64())
	return line, lineTotal, true
}

// SelectDiscountRate picks the single largest applicable tier: descending by
// min_quantity, first tier whose minimum the quantity meets. Tiers never stack.
func SelectDiscountRate(tiers []internal.DiscountTier, quantity int) float64 {
	sorted := make([]internal.DiscountTier, len(tiers))
	copy(sorted, tiers)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].MinQuantity > sorted[j].MinQuantity })

	for _, tier := range sorted {
		if quantity >= tier.MinQuantity {
			return tier.DiscountRate
		}
	}
	return 0
}

func dedupeStrings(values []string) []string {
	seen := map[string]struct{}{}
	out := make([]string, 0, len(values))
	for _, v := range values {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
