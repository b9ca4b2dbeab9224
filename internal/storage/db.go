package storage

import (
	"database/sql"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"quotedesk/internal"
)

// DB is the processing ledger: which inquiries were seen, where their raw
// bytes live and how far each one got. Artifacts themselves are JSON files.
type DB struct {
	conn *sql.DB
}

func Open(path string) (*DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	if _, err := conn.Exec(`PRAGMA journal_mode = WAL;`); err != nil {
		_ = conn.Close()
		return nil, err
	}

	db := &DB{conn: conn}
	if err := db.init(); err != nil {
		_ = conn.Close()
		return nil, err
	}

	return db, nil
}

func (d *DB) Close() error {
	return d.conn.Close()
}

func (d *DB) init() error {
	schema := `
CREATE TABLE IF NOT EXISTS inquiries (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  provider TEXT NOT NULL,
  messageId TEXT NOT NULL,
  subject TEXT,
  sender TEXT,
  receivedAt TEXT,
  emailId TEXT NOT NULL UNIQUE,
  status TEXT NOT NULL DEFAULT 'fetched',
  rawRef TEXT NOT NULL,
  createdAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP,
  updatedAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_inquiries_status ON inquiries(status);

CREATE TABLE IF NOT EXISTS runs (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  traceId TEXT NOT NULL,
  emailId TEXT,
  countsJson TEXT NOT NULL,
  createdAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
);
`
	_, err := d.conn.Exec(schema)
	return err
}

func (d *DB) UpsertInquiry(provider, messageID, subject, sender, receivedAt, emailID, rawRef, status string) (internal.InquiryRow, error) {
	_, err := d.conn.Exec(`
INSERT INTO inquiries (provider, messageId, subject, sender, receivedAt, emailId, status, rawRef)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(emailId) DO UPDATE SET
  subject = excluded.subject,
  sender = excluded.sender,
  updatedAt = CURRENT_TIMESTAMP`,
		provider, messageID, subject, sender, receivedAt, emailID, status, rawRef)
	if err != nil {
		return internal.InquiryRow{}, err
	}

	row, err := d.GetInquiryByEmailID(emailID)
	if err != nil {
		return internal.InquiryRow{}, err
	}
	if row == nil {
		return internal.InquiryRow{}, errors.New("inquiry not found after upsert")
	}
	return *row, nil
}

func (d *DB) GetInquiryByEmailID(emailID string) (*internal.InquiryRow, error) {
	row := d.conn.QueryRow(`
SELECT id, provider, messageId, COALESCE(subject, ''), COALESCE(sender, ''), COALESCE(receivedAt, ''), emailId, status, rawRef
FROM inquiries WHERE emailId = ?`, emailID)

	var out internal.InquiryRow
	err := row.Scan(&out.ID, &out.Provider, &out.MessageID, &out.Subject, &out.Sender, &out.ReceivedAt, &out.EmailID, &out.Status, &out.RawRef)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (d *DB) ListInquiriesByStatus(status string, limit int) ([]internal.InquiryRow, error) {
	rows, err := d.conn.Query(`
SELECT id, provider, messageId, COALESCE(subject, ''), COALESCE(sender, ''), COALESCE(receivedAt, ''), emailId, status, rawRef
FROM inquiries WHERE status = ? ORDER BY id ASC LIMIT ?`, status, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []internal.InquiryRow{}
	for rows.Next() {
		var row internal.InquiryRow
		if err := rows.Scan(&row.ID, &row.Provider, &row.MessageID, &row.Subject, &row.Sender, &row.ReceivedAt, &row.EmailID, &row.Status, &row.RawRef); err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

func (d *DB) UpdateInquiryStatus(emailID, status string) error {
	_, err := d.conn.Exec(`UPDATE inquiries SET status = ?, updatedAt = CURRENT_TIMESTAMP WHERE emailId = ?`, status, emailID)
	return err
}

func (d *DB) InsertRun(traceID, emailID string, counts map[string]int) error {
	countsJSON, err := json.Marshal(counts)
	if err != nil {
		return err
	}
	_, err = d.conn.Exec(`INSERT INTO runs (traceId, emailId, countsJson) VALUES (?, ?, ?)`, traceID, emailID, string(countsJSON))
	return err
}
