package extract

import (
	"regexp"
	"sort"
	"strconv"
	"strings"

	"quotedesk/internal"
	"quotedesk/internal/pricebook"
	"quotedesk/internal/util"
)

var (
	currencyTokenPattern = regexp.MustCompile(`(?i)\b(usd|eur|gbp|inr|jpy|aud|cad|chf|cny|sgd|aed)\b`)

	currencySymbols = []struct {
		Symbol string
		Code   string
	}{
		{"$", "USD"},
		{"€", "EUR"},
		{"£", "GBP"},
		{"₹", "INR"},
	}
)

// Verbs that introduce a requested product ("we need 5 widgets").
var orderingVerbs = map[string]struct{}{
	"order":    {},
	"buy":      {},
	"purchase": {},
	"need":     {},
	"require":  {},
	"want":     {},
	"looking":  {},
}

// Engine turns raw inquiry text into a confidence-annotated event. It holds
// only static rule data and is safe for concurrent use.
type Engine struct {
	vocab           *pricebook.Index
	stopWords       map[string]struct{}
	defaultUnit     string
	defaultCurrency string
}

func NewEngine(vocab *pricebook.Index, settings pricebook.Settings) *Engine {
	stop := make(map[string]struct{}, len(settings.StopWords))
	for _, w := range settings.StopWords {
		stop[strings.ToLower(w)] = struct{}{}
	}
	return &Engine{
		vocab:           vocab,
		stopWords:       stop,
		defaultUnit:     settings.DefaultUnit,
		defaultCurrency: settings.DefaultCurrency,
	}
}

// mention is one occurrence of a product phrase, kept with its byte offset so
// merged items preserve first-occurrence order.
type mention struct {
	pos  int
	key  string
	item internal.Item
}

// Extract never fails: every field it cannot resolve becomes a zero-confidence
// value with a note instead of an error. EmailID is left for the caller.
func (e *Engine) Extract(rawText string) internal.ParsedEvent {
	text := strings.ReplaceAll(rawText, "\r\n", "\n")
	header, body := splitHeaderBody(text)

	event := internal.ParsedEvent{
		From:          internal.MissingField[string]("from not found"),
		Subject:       internal.MissingField[string]("subject not found"),
		Items:         []internal.Item{},
		MissingFields: []string{},
	}

	for _, line := range strings.Split(header, "\n") {
		lower := strings.ToLower(line)
		switch {
		case strings.HasPrefix(lower, "from:"):
			if value := strings.TrimSpace(line[len("from:"):]); value != "" {
				event.From = internal.Field(value, 0.95)
			}
		case strings.HasPrefix(lower, "subject:"):
			if value := strings.TrimSpace(line[len("subject:"):]); value != "" {
				event.Subject = internal.Field(value, 0.95)
			}
		}
	}

	event.Currency = e.detectCurrency(body)

	mentions := e.knownProductMentions(body)
	mentions = append(mentions, e.unknownProductMentions(body)...)
	event.Items = mergeMentions(mentions)

	event.MissingFields = e.collectMissingFields(event)
	return event
}

func splitHeaderBody(text string) (string, string) {
	parts := strings.SplitN(text, "\n\n", 2)
	if len(parts) < 2 {
		return parts[0], ""
	}
	return parts[0], parts[1]
}

func (e *Engine) detectCurrency(body string) internal.FieldValue[string] {
	if m := currencyTokenPattern.FindString(body); m != "" {
		return internal.Field(strings.ToUpper(m), 0.9)
	}
	for _, symbol := range currencySymbols {
		if strings.Contains(body, symbol.Symbol) {
			return internal.Field(symbol.Code, 0.9)
		}
	}
	fallback := internal.Field(e.defaultCurrency, 0.5)
	fallback.Notes = "default currency assumed"
	return fallback
}

// knownProductMentions scans for every vocabulary name (singular and plural)
// and looks backward from each hit for an integer quantity, allowing a single
// descriptive token between the number and the name.
func (e *Engine) knownProductMentions(body string) []mention {
	out := []mention{}
	for _, name := range e.vocab.Names() {
		entry, _ := e.vocab.Lookup(name)
		singular := util.NormalizeName(name)
		forms := []string{singular}
		if plural := util.Pluralize(singular); plural != singular {
			forms = append(forms, plural)
		}

		for _, form := range forms {
			qtyPattern := regexp.MustCompile(`(?i)\b(\d+)\s+(?:[a-z][\w\-]*\s+)?` + regexp.QuoteMeta(form) + `\b`)
			plainPattern := regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(form) + `\b`)

			qtySpans := qtyPattern.FindAllStringSubmatchIndex(body, -1)
			for _, span := range qtySpans {
				qty, err := strconv.Atoi(body[span[2]:span[3]])
				if err != nil {
					continue
				}
				out = append(out, mention{
					pos: span[0],
					key: singular,
					item: internal.Item{
						ProductName: internal.Field(entry.ProductName, 0.95),
						Quantity:    internal.Field(qty, 0.9),
						Unit:        internal.Field(entry.Unit, 0.8),
					},
				})
			}

			for _, span := range plainPattern.FindAllStringIndex(body, -1) {
				if coveredByQuantityMatch(span, qtySpans) {
					continue
				}
				out = append(out, mention{
					pos: span[0],
					key: singular,
					item: internal.Item{
						ProductName: internal.Field(entry.ProductName, 0.95),
						Quantity:    internal.MissingField[int]("quantity not specified"),
						Unit:        internal.Field(entry.Unit, 0.8),
					},
				})
			}
		}
	}
	return out
}

func coveredByQuantityMatch(span []int, qtySpans [][]int) bool {
	for _, q := range qtySpans {
		if q[0] <= span[0] && span[1] <= q[1] {
			return true
		}
	}
	return false
}

// unknownProductMentions finds plural tokens that look like requested products
// the price list does not know: either coordinated with a known product
// ("widgets and doohickeys") or trailing an ordering verb.
func (e *Engine) unknownProductMentions(body string) []mention {
	out := []mention{}

	conjPattern := regexp.MustCompile(`(?i)\b([A-Za-z][\w\-]*)\s+and\s+([A-Za-z][\w\-]*)\b`)
	for _, m := range conjPattern.FindAllStringSubmatchIndex(body, -1) {
		first := body[m[2]:m[3]]
		second := body[m[4]:m[5]]
		firstKnown := e.vocab.Known(first)
		secondKnown := e.vocab.Known(second)
		if firstKnown == secondKnown {
			continue
		}
		candidate, pos := second, m[4]
		if secondKnown {
			candidate, pos = first, m[2]
		}
		if e.isUnknownProductCandidate(candidate) {
			out = append(out, e.unknownMention(candidate, pos))
		}
	}

	tokens := util.Tokenize(body)
	for i, token := range tokens {
		if _, ok := orderingVerbs[strings.ToLower(token.Text)]; !ok {
			continue
		}
		for offset := 1; offset <= 4 && i+offset < len(tokens); offset++ {
			candidate := tokens[i+offset]
			if !e.isUnknownProductCandidate(candidate.Text) {
				continue
			}
			out = append(out, e.unknownMention(candidate.Text, candidate.Start))
			break
		}
	}

	return out
}

// Plural-only on purpose: singular unknown tokens are usually personal names
// or filler, not products.
func (e *Engine) isUnknownProductCandidate(token string) bool {
	lc := strings.ToLower(strings.Trim(token, `.,;:'"!?`))
	if lc == "" || e.vocab.Known(lc) {
		return false
	}
	if _, stop := e.stopWords[lc]; stop {
		return false
	}
	return strings.HasSuffix(lc, "s")
}

func (e *Engine) unknownMention(token string, pos int) mention {
	name := util.TitleCase(strings.Trim(token, `.,;:'"!?`))
	item := internal.Item{
		ProductName: internal.Field(name, 0.5),
		Quantity:    internal.MissingField[int]("quantity not specified"),
		Unit:        internal.Field(e.defaultUnit, 0.5),
	}
	item.ProductName.Notes = "unknown product"
	item.Unit.Notes = "default unit assumed"
	return mention{pos: pos, key: util.NormalizeName(name), item: item}
}

// mergeMentions folds duplicate mentions of one product into a single item,
// keeping the mention with the highest stated-quantity confidence. Ties keep
// the first occurrence.
func mergeMentions(mentions []mention) []internal.Item {
	sort.SliceStable(mentions, func(i, j int) bool { return mentions[i].pos < mentions[j].pos })

	items := []internal.Item{}
	indexByKey := map[string]int{}
	for _, m := range mentions {
		if i, ok := indexByKey[m.key]; ok {
			if m.item.Quantity.Confidence > items[i].Quantity.Confidence {
				items[i].Quantity = m.item.Quantity
			}
			if m.item.ProductName.Confidence > items[i].ProductName.Confidence {
				items[i].ProductName = m.item.ProductName
			}
			continue
		}
		indexByKey[m.key] = len(items)
		items = append(items, m.item)
	}
	return items
}

func (e *Engine) collectMissingFields(event internal.ParsedEvent) []string {
	missing := []string{}
	if event.From.Value == nil {
		missing = append(missing, "from")
	}
	if event.Subject.Value == nil {
		missing = append(missing, "subject")
	}

	if len(event.Items) == 0 {
		missing = append(missing, "items")
	} else {
		for _, item := range event.Items {
			if item.ProductName.Value == nil {
				continue
			}
			name := *item.ProductName.Value
			if item.Quantity.Value == nil {
				missing = append(missing, "quantity for "+name)
			}
			if !e.vocab.Known(name) {
				missing = append(missing, "price for "+name)
			}
		}
	}

	return dedupeStrings(missing)
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
