package listener

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"quotedesk/internal/config"
	"quotedesk/internal/connectors"
	gmailconnector "quotedesk/internal/connectors/gmail"
	imapconnector "quotedesk/internal/connectors/imap"
	"quotedesk/internal/logging"
	"quotedesk/internal/pipeline"
	"quotedesk/internal/storage"
)

// Service polls a mailbox: fetch new messages into the inbox, process them,
// and optionally export completed quotes as workbooks.
type Service struct {
	db        *storage.DB
	cfg       config.Config
	processor *pipeline.ProcessingService
	log       *zap.Logger
}

func NewService(db *storage.DB, cfg config.Config, processor *pipeline.ProcessingService) *Service {
	return &Service{db: db, cfg: cfg, processor: processor, log: logging.L()}
}

func (s *Service) Run(ctx context.Context) error {
	for {
		if err := s.runCycle(); err != nil {
			s.log.Error("listener cycle failed", zap.Error(err))
		}

		select {
		case <-ctx.Done():
			return nil
		case <-time.After(time.Duration(s.cfg.ListenerIntervalSec) * time.Second):
		}
	}
}

func (s *Service) runCycle() error {
	provider := strings.ToLower(strings.TrimSpace(s.cfg.ListenerProvider))
	mailConnector, err := s.makeConnector(provider)
	if err != nil {
		return err
	}

	fetchService := connectors.NewFetchService(s.db, s.cfg.InboxDir, mailConnector)
	fetchResult, err := fetchService.FetchAndStore(s.cfg.ListenerLabel, s.cfg.ListenerFetchMax)
	if err != nil {
		return err
	}

	summary, err := s.processor.ProcessInbox(s.cfg.InboxDir)
	if err != nil {
		return err
	}

	if s.cfg.ListenerAutoExport {
		if err := s.exportProcessed(); err != nil {
			return err
		}
	}

	s.log.Info("listener cycle done",
		zap.String("provider", provider),
		zap.Int("fetched", fetchResult.Fetched),
		zap.Int("stored", fetchResult.Stored),
		zap.Int("processed", summary.Processed),
		zap.Int("pending", summary.Pending),
		zap.Int("skipped", summary.Skipped),
		zap.Int("errors", summary.Errors))
	return nil
}

func (s *Service) exportProcessed() error {
	inquiries, err := s.db.ListInquiriesByStatus("processed", 200)
	if err != nil {
		return err
	}

	for _, inquiry := range inquiries {
		quote, err := s.processor.Artifacts().LoadQuote(inquiry.EmailID)
		if err != nil {
			continue
		}
		outputPath := filepath.Join(s.cfg.DataDir, "exports", inquiry.EmailID+".xlsx")
		if err := pipeline.ExportQuoteToXLSX(quote, outputPath); err != nil {
			return err
		}
		_ = s.db.UpdateInquiryStatus(inquiry.EmailID, "exported")
	}
	return nil
}

func (s *Service) makeConnector(provider string) (connectors.MailConnector, error) {
	switch provider {
	case "gmail":
		return gmailconnector.NewConnector(s.cfg)
	case "imap":
		return imapconnector.NewConnector(s.cfg)
	default:
		return nil, fmt.Errorf("unsupported listener provider: %s", provider)
	}
}
