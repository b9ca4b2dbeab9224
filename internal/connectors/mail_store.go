package connectors

import (
	"os"
	"path/filepath"

	"quotedesk/internal"
	"quotedesk/internal/ingest"
	"quotedesk/internal/storage"
)

// MailStoreService lands fetched messages in the inbox directory as
// content-hash-named .eml files and records them in the ledger. Re-fetching
// the same message is a no-op on disk.
type MailStoreService struct {
	db       *storage.DB
	inboxDir string
}

func NewMailStoreService(db *storage.DB, inboxDir string) *MailStoreService {
	return &MailStoreService{db: db, inboxDir: inboxDir}
}

func (s *MailStoreService) Store(msg internal.FetchedMailMessage) (internal.InquiryRow, error) {
	emailID := ingest.EmailID(msg.Raw)

	if err := os.MkdirAll(s.inboxDir, 0o755); err != nil {
		return internal.InquiryRow{}, err
	}

	rawPath := filepath.Join(s.inboxDir, emailID+".eml")
	if _, err := os.Stat(rawPath); os.IsNotExist(err) {
		if err := os.WriteFile(rawPath, msg.Raw, 0o644); err != nil {
			return internal.InquiryRow{}, err
		}
	}

	return s.db.UpsertInquiry(msg.Provider, msg.MessageID, msg.Subject, msg.From, msg.ReceivedAt, emailID, rawPath, "fetched")
}
