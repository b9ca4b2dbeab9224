package pricebook

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"quotedesk/internal"
)

// Corrupt rule files are the one hard-failure mode of the core path; everything
// downstream degrades to low-confidence fields instead of erroring.
var (
	ErrInvalidPriceList = errors.New("invalid price list")
	ErrInvalidDiscounts = errors.New("invalid discount rules")
	ErrInvalidSettings  = errors.New("invalid settings")
)

type Settings struct {
	TaxRate         float64  `json:"tax_rate"`
	DefaultCurrency string   `json:"default_currency"`
	DefaultUnit     string   `json:"default_unit"`
	SLAHours        int      `json:"sla_hours"`
	StopWords       []string `json:"stop_words"`
}

// Book bundles the externally-owned rule artifacts: price list, discount
// tiers and processing settings, loaded once per run.
type Book struct {
	Prices   []internal.PriceEntry
	Tiers    []internal.DiscountTier
	Settings Settings
}

func Load(rulesDir string) (Book, error) {
	prices, err := LoadPriceList(filepath.Join(rulesDir, "price_list.json"))
	if err != nil {
		return Book{}, err
	}
	tiers, err := LoadDiscountTiers(filepath.Join(rulesDir, "discount_rules.json"))
	if err != nil {
		return Book{}, err
	}
	settings, err := LoadSettings(filepath.Join(rulesDir, "settings.json"))
	if err != nil {
		return Book{}, err
	}
	return Book{Prices: prices, Tiers: tiers, Settings: settings}, nil
}

func LoadPriceList(path string) ([]internal.PriceEntry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	raw := map[string]struct {
		UnitPrice float64 `json:"unit_price"`
		Unit      string  `json:"unit"`
	}{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidPriceList, path, err)
	}

	out := make([]internal.PriceEntry, 0, len(raw))
	for name, entry := range raw {
		if strings.TrimSpace(name) == "" {
			return nil, fmt.Errorf("%w: empty product name", ErrInvalidPriceList)
		}
		if entry.UnitPrice < 0 || math.IsNaN(entry.UnitPrice) || math.IsInf(entry.UnitPrice, 0) {
			return nil, fmt.Errorf("%w: product %q has unit price %v", ErrInvalidPriceList, name, entry.UnitPrice)
		}
		out = append(out, internal.PriceEntry{ProductName: name, UnitPrice: entry.UnitPrice, Unit: entry.Unit})
	}

	// JSON objects carry no order; sort so every run sees the same vocabulary.
	sort.Slice(out, func(i, j int) bool { return out[i].ProductName < out[j].ProductName })
	return out, nil
}

func LoadDiscountTiers(path string) ([]internal.DiscountTier, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var tiers []internal.DiscountTier
	if err := json.Unmarshal(data, &tiers); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidDiscounts, path, err)
	}
	for _, tier := range tiers {
		if tier.MinQuantity < 0 {
			return nil, fmt.Errorf("%w: min_quantity %d", ErrInvalidDiscounts, tier.MinQuantity)
		}
		if tier.DiscountRate < 0 || tier.DiscountRate > 1 {
			return nil, fmt.Errorf("%w: discount_rate %v", ErrInvalidDiscounts, tier.DiscountRate)
		}
	}
	return tiers, nil
}

func LoadSettings(path string) (Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Settings{}, err
	}

	var settings Settings
	if err := json.Unmarshal(data, &settings); err != nil {
		return Settings{}, fmt.Errorf("%w: %s: %v", ErrInvalidSettings, path, err)
	}
	if settings.TaxRate < 0 || settings.TaxRate > 1 {
		return Settings{}, fmt.Errorf("%w: tax_rate %v", ErrInvalidSettings, settings.TaxRate)
	}
	if settings.DefaultCurrency == "" {
		settings.DefaultCurrency = "USD"
	}
	if settings.DefaultUnit == "" {
		settings.DefaultUnit = "piece"
	}
	if settings.SLAHours <= 0 {
		settings.SLAHours = 24
	}
	if len(settings.StopWords) == 0 {
		settings.StopWords = DefaultStopWords()
	}
	return settings, nil
}

// DefaultStopWords filters greeting, filler and request words out of the
// unknown-product candidates.
func DefaultStopWords() []string {
	return []string{
		"some", "any", "more", "few", "asap", "pricing", "price", "cost", "time",
		"info", "information", "availability", "please", "could", "looking", "items", "item",
		"product", "products", "it", "them", "they", "your", "our", "quote", "yet", "us", "about",
		"to", "and", "thanks", "thank", "get", "me", "how", "many", "if", "there", "let", "know",
		"hello", "hi", "we", "i", "my", "you", "also", "regards", "cheers", "kind", "best", "team",
	}
}
