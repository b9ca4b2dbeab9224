package internal

// FieldValue wraps every extracted scalar with the confidence the heuristics
// assigned to it. A nil Value always carries confidence 0 and a note saying why.
type FieldValue[T any] struct {
	Value      *T      `json:"value"`
	Confidence float64 `json:"confidence"`
	Notes      string  `json:"notes"`
}

func Field[T any](value T, confidence float64) FieldValue[T] {
	return FieldValue[T]{Value: &value, Confidence: confidence}
}

func MissingField[T any](notes string) FieldValue[T] {
	return FieldValue[T]{Confidence: 0, Notes: notes}
}

type Item struct {
	ProductName FieldValue[string] `json:"product_name"`
	Quantity    FieldValue[int]    `json:"quantity"`
	Unit        FieldValue[string] `json:"unit"`
}

type ParsedEvent struct {
	EmailID       string             `json:"email_id"`
	From          FieldValue[string] `json:"from"`
	Subject       FieldValue[string] `json:"subject"`
	Items         []Item             `json:"items"`
	Currency      FieldValue[string] `json:"currency"`
	MissingFields []string           `json:"missing_fields"`
}

type PriceEntry struct {
	ProductName string  `json:"product_name"`
	UnitPrice   float64 `json:"unit_price"`
	Unit        string  `json:"unit"`
}

type DiscountTier struct {
	MinQuantity  int     `json:"min_quantity"`
	DiscountRate float64 `json:"discount_rate"`
}

type QuoteStatus string

const (
	QuoteComplete QuoteStatus = "complete"
	QuotePending  QuoteStatus = "pending"
)

type LineItem struct {
	ProductName    string   `json:"product_name"`
	UnitPrice      *float64 `json:"unit_price"`
	Quantity       *int     `json:"quantity"`
	DiscountRate   float64  `json:"discount_rate"`
	DiscountAmount *float64 `json:"discount_amount"`
	Subtotal       *float64 `json:"subtotal"`
}

type Quote struct {
	EmailID       string      `json:"email_id"`
	Status        QuoteStatus `json:"status"`
	LineItems     []LineItem  `json:"line_items"`
	Subtotal      *float64    `json:"subtotal"`
	Tax           *float64    `json:"tax"`
	Total         *float64    `json:"total"`
	Currency      string      `json:"currency"`
	MissingFields []string    `json:"missing_fields"`
}

type AckDraft struct {
	EmailID       string   `json:"email_id"`
	To            string   `json:"to"`
	Subject       string   `json:"subject"`
	Body          string   `json:"body"`
	MissingFields []string `json:"missing_fields"`
	Questions     []string `json:"questions"`
}

type StepStatus string

const (
	StepSuccess StepStatus = "success"
	StepPending StepStatus = "pending"
	StepError   StepStatus = "error"
	StepSkipped StepStatus = "skipped"
)

type TimelineEntry struct {
	Timestamp string     `json:"timestamp"`
	EmailID   string     `json:"email_id"`
	Step      string     `json:"step"`
	Status    StepStatus `json:"status"`
	Message   string     `json:"message"`
}

// RawInquiry is the canonical text an inbox source is reduced to before
// extraction: optional From/Subject header block, blank line, body.
type RawInquiry struct {
	EmailID    string
	Text       string
	SourcePath string
}

type InquiryRow struct {
	ID         int
	Provider   string
	MessageID  string
	Subject    string
	Sender     string
	ReceivedAt string
	EmailID    string
	Status     string
	RawRef     string
}

type FetchedMailMessage struct {
	Provider   string
	MessageID  string
	Subject    string
	From       string
	ReceivedAt string
	Raw        []byte
}
