package storage

import (
	"encoding/json"
	"os"
	"path/filepath"

	"quotedesk/internal"
)

// ArtifactStore persists the JSON artifacts the orchestrator owns: one event,
// one quote and one acknowledgment draft per email, keyed by email ID.
type ArtifactStore struct {
	dataDir string
}

func NewArtifactStore(dataDir string) *ArtifactStore {
	return &ArtifactStore{dataDir: dataDir}
}

func (s *ArtifactStore) EventPath(emailID string) string {
	return filepath.Join(s.dataDir, "events", emailID+".json")
}

func (s *ArtifactStore) QuotePath(emailID string) string {
	return filepath.Join(s.dataDir, "quotes", emailID+".json")
}

func (s *ArtifactStore) AckPath(emailID string) string {
	return filepath.Join(s.dataDir, "outbox", emailID+"_ack.json")
}

// EventExists is the idempotency check: an existing event artifact means the
// email was already processed and is skipped.
func (s *ArtifactStore) EventExists(emailID string) bool {
	_, err := os.Stat(s.EventPath(emailID))
	return err == nil
}

func (s *ArtifactStore) SaveEvent(event internal.ParsedEvent) error {
	return writeJSON(s.EventPath(event.EmailID), event)
}

func (s *ArtifactStore) SaveQuote(quote internal.Quote) error {
	return writeJSON(s.QuotePath(quote.EmailID), quote)
}

func (s *ArtifactStore) SaveAck(ack internal.AckDraft) error {
	return writeJSON(s.AckPath(ack.EmailID), ack)
}

func (s *ArtifactStore) LoadQuote(emailID string) (internal.Quote, error) {
	data, err := os.ReadFile(s.QuotePath(emailID))
	if err != nil {
		return internal.Quote{}, err
	}
	var quote internal.Quote
	if err := json.Unmarshal(data, &quote); err != nil {
		return internal.Quote{}, err
	}
	return quote, nil
}

// writeJSON writes atomically: tmp file in the target directory, then rename.
func writeJSON(path string, value any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, append(data, '\n'), 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}
