package pricebook

import (
	"quotedesk/internal"
	"quotedesk/internal/util"
)

// Index maps lower-cased singular and plural surface forms to their price
// list entry. Canonical names keep the casing of the price list.
type Index struct {
	byForm map[string]internal.PriceEntry
	names  []string
}

func BuildIndex(entries []internal.PriceEntry) *Index {
	idx := &Index{byForm: map[string]internal.PriceEntry{}, names: make([]string, 0, len(entries))}
	for _, entry := range entries {
		form := util.NormalizeName(entry.ProductName)
		if form == "" {
			continue
		}
		if _, exists := idx.byForm[form]; exists {
			continue
		}
		idx.byForm[form] = entry
		idx.names = append(idx.names, entry.ProductName)

		plural := util.Pluralize(form)
		if _, exists := idx.byForm[plural]; !exists {
			idx.byForm[plural] = entry
		}
	}
	return idx
}

// Lookup resolves a surface form (any casing, singular or plural) to its
// price list entry.
func (x *Index) Lookup(name string) (internal.PriceEntry, bool) {
	entry, ok := x.byForm[util.NormalizeName(name)]
	return entry, ok
}

func (x *Index) Known(name string) bool {
	_, ok := x.Lookup(name)
	return ok
}

// Names returns the canonical product names in price list order.
func (x *Index) Names() []string {
	return x.names
}
