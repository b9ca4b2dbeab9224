// Package ingest reduces on-disk inquiry sources to the canonical raw text
// the extraction engine consumes: a From/Subject header block, a blank line,
// then the body. Plain .txt files already have that shape; .eml files are
// unpacked from MIME.
package ingest

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"quotedesk/internal"
)

// EmailID derives the stable identifier for a raw inquiry: the first 16 hex
// characters of the sha256 of its bytes. Identical input always maps to the
// same ID, which is what idempotency skipping keys on.
func EmailID(raw []byte) string {
	sum := sha256.Sum256(raw)
	return hex.EncodeToString(sum[:])[:16]
}

func Load(path string) (internal.RawInquiry, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return internal.RawInquiry{}, err
	}

	inquiry := internal.RawInquiry{
		EmailID:    EmailID(raw),
		SourcePath: path,
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".eml":
		text, err := CanonicalTextFromMIME(raw)
		if err != nil {
			return internal.RawInquiry{}, fmt.Errorf("parse %s: %w", path, err)
		}
		inquiry.Text = text
	default:
		inquiry.Text = string(raw)
	}

	return inquiry, nil
}

// IsInquiryFile reports whether an inbox directory entry should be processed.
func IsInquiryFile(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	return ext == ".txt" || ext == ".eml"
}
