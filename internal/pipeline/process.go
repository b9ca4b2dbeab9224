package pipeline

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"go.uber.org/zap"

	"quotedesk/internal"
	"quotedesk/internal/extract"
	"quotedesk/internal/ingest"
	"quotedesk/internal/logging"
	"quotedesk/internal/pricebook"
	"quotedesk/internal/quote"
	"quotedesk/internal/storage"
)

// ProcessingService drives one email through the whole flow: ingest,
// idempotency check, extract, acknowledge, quote, persist. Extraction and
// quoting themselves are pure; every side effect lives here.
type ProcessingService struct {
	db        *storage.DB
	artifacts *storage.ArtifactStore
	timeline  *storage.Timeline
	book      pricebook.Book
	prices    *pricebook.Index
	engine    *extract.Engine
	log       *zap.Logger
}

func NewProcessingService(db *storage.DB, dataDir string, book pricebook.Book) *ProcessingService {
	prices := pricebook.BuildIndex(book.Prices)
	return &ProcessingService{
		db:        db,
		artifacts: storage.NewArtifactStore(dataDir),
		timeline:  storage.NewTimeline(dataDir),
		book:      book,
		prices:    prices,
		engine:    extract.NewEngine(prices, book.Settings),
		log:       logging.L(),
	}
}

type Result struct {
	EmailID string
	Status  internal.StepStatus
}

type Summary struct {
	Processed int
	Pending   int
	Skipped   int
	Errors    int
}

// ProcessInbox walks the inbox in name order. A failing email is logged as an
// error step and does not stop the rest of the batch.
func (s *ProcessingService) ProcessInbox(inboxDir string) (Summary, error) {
	entries, err := os.ReadDir(inboxDir)
	if err != nil {
		return Summary{}, err
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if !entry.IsDir() && ingest.IsInquiryFile(entry.Name()) {
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)

	summary := Summary{}
	for _, name := range names {
		result, err := s.ProcessFile(filepath.Join(inboxDir, name))
		if err != nil {
			summary.Errors++
			s.log.Error("processing failed", zap.String("file", name), zap.Error(err))
			continue
		}
		switch result.Status {
		case internal.StepSkipped:
			summary.Skipped++
		case internal.StepPending:
			summary.Pending++
		default:
			summary.Processed++
		}
	}
	return summary, nil
}

func (s *ProcessingService) ProcessFile(path string) (Result, error) {
	inquiry, err := ingest.Load(path)
	if err != nil {
		_ = s.timeline.Append("", "read_email", internal.StepError, fmt.Sprintf("failed to read %s: %v", filepath.Base(path), err))
		return Result{}, err
	}
	return s.Process(inquiry)
}

func (s *ProcessingService) Process(inquiry internal.RawInquiry) (Result, error) {
	emailID := inquiry.EmailID
	source := filepath.Base(inquiry.SourcePath)

	if s.artifacts.EventExists(emailID) {
		_ = s.timeline.Append(emailID, "skip_email", internal.StepSkipped, fmt.Sprintf("event for %s already processed", source))
		_ = s.db.UpdateInquiryStatus(emailID, "skipped")
		s.log.Info("inquiry already processed", zap.String("emailId", emailID), zap.String("source", source))
		return Result{EmailID: emailID, Status: internal.StepSkipped}, nil
	}

	event := s.engine.Extract(inquiry.Text)
	event.EmailID = emailID
	if err := s.artifacts.SaveEvent(event); err != nil {
		_ = s.timeline.Append(emailID, "parse_email", internal.StepError, err.Error())
		return Result{}, err
	}
	_ = s.timeline.Append(emailID, "parse_email", internal.StepSuccess, fmt.Sprintf("parsed %s", source))

	ack := DraftAcknowledgment(event, s.book.Settings)
	if err := s.artifacts.SaveAck(ack); err != nil {
		_ = s.timeline.Append(emailID, "generate_ack", internal.StepError, err.Error())
		return Result{}, err
	}
	_ = s.timeline.Append(emailID, "generate_ack", internal.StepSuccess, fmt.Sprintf("drafted acknowledgment for %s", source))

	q := quote.Compute(event, s.prices, s.book.Tiers, s.book.Settings.TaxRate)
	if err := s.artifacts.SaveQuote(q); err != nil {
		_ = s.timeline.Append(emailID, "generate_quote", internal.StepError, err.Error())
		return Result{}, err
	}

	quoteStatus := internal.StepSuccess
	if q.Status == internal.QuotePending {
		quoteStatus = internal.StepPending
	}
	_ = s.timeline.Append(emailID, "generate_quote", quoteStatus, fmt.Sprintf("generated %s quote for %s", q.Status, source))

	sender, subject := "", ""
	if event.From.Value != nil {
		sender = *event.From.Value
	}
	if event.Subject.Value != nil {
		subject = *event.Subject.Value
	}
	if _, err := s.db.UpsertInquiry("inbox", source, subject, sender, "", emailID, inquiry.SourcePath, "processed"); err != nil {
		return Result{}, err
	}
	_ = s.db.InsertRun(traceID(), emailID, map[string]int{
		"items":         len(event.Items),
		"missingFields": len(event.MissingFields),
		"lineItems":     len(q.LineItems),
	})

	s.log.Info("inquiry processed",
		zap.String("emailId", emailID),
		zap.String("source", source),
		zap.Int("items", len(event.Items)),
		zap.String("quoteStatus", string(q.Status)))

	return Result{EmailID: emailID, Status: quoteStatus}, nil
}

func (s *ProcessingService) Artifacts() *storage.ArtifactStore {
	return s.artifacts
}

func traceID() string {
	var b [8]byte
	if _, err := rand.Read(b[:]); err != nil {
		return fmt.Sprintf("run-%d", time.Now().UnixNano())
	}
	return hex.EncodeToString(b[:])
}
