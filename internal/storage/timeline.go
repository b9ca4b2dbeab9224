package storage

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"quotedesk/internal"
)

// Timeline appends one activity-log line per processing step to a JSONL file.
type Timeline struct {
	path string
}

func NewTimeline(dataDir string) *Timeline {
	return &Timeline{path: filepath.Join(dataDir, "timeline", "activity.jsonl")}
}

func (t *Timeline) Append(emailID, step string, status internal.StepStatus, message string) error {
	entry := internal.TimelineEntry{
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		EmailID:   emailID,
		Step:      step,
		Status:    status,
		Message:   message,
	}

	if err := os.MkdirAll(filepath.Dir(t.path), 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(t.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()

	line, err := json.Marshal(entry)
	if err != nil {
		return err
	}
	_, err = f.Write(append(line, '\n'))
	return err
}
