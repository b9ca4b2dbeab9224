package connectors

import (
	"go.uber.org/zap"

	"quotedesk/internal/logging"
	"quotedesk/internal/storage"
)

type FetchService struct {
	connector MailConnector
	store     *MailStoreService
}

type FetchResult struct {
	Fetched int
	Stored  int
}

func NewFetchService(db *storage.DB, inboxDir string, connector MailConnector) *FetchService {
	return &FetchService{
		connector: connector,
		store:     NewMailStoreService(db, inboxDir),
	}
}

func (s *FetchService) FetchAndStore(label string, max int) (FetchResult, error) {
	messages, err := s.connector.FetchInbox(label, max)
	if err != nil {
		return FetchResult{}, err
	}

	stored := 0
	for _, msg := range messages {
		row, err := s.store.Store(msg)
		if err != nil {
			return FetchResult{Fetched: len(messages), Stored: stored}, err
		}
		stored++
		logging.L().Debug("stored inquiry mail",
			zap.String("provider", msg.Provider),
			zap.String("emailId", row.EmailID))
	}

	return FetchResult{Fetched: len(messages), Stored: stored}, nil
}
