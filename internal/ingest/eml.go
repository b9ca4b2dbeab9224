package ingest

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/jhillyerd/enmime"
	pdf "github.com/ledongthuc/pdf"
	"github.com/xuri/excelize/v2"

	"quotedesk/internal/util"
)

// CanonicalTextFromMIME unpacks a raw MIME message into the canonical header
// block + body form. Attachment content that can carry order lines (PDF text,
// XLSX rows) is appended to the body so the extractor sees it as plain text.
func CanonicalTextFromMIME(raw []byte) (string, error) {
	env, err := enmime.ReadEnvelope(bytes.NewReader(raw))
	if err != nil {
		return "", err
	}

	body := strings.TrimSpace(env.Text)
	if body == "" && env.HTML != "" {
		body = htmlToText(env.HTML)
	}

	extra := []string{}
	for _, att := range env.Attachments {
		lower := strings.ToLower(att.FileName)
		switch {
		case strings.HasSuffix(lower, ".pdf"):
			if text := pdfToText(att.Content); text != "" {
				extra = append(extra, text)
			}
		case strings.HasSuffix(lower, ".xlsx"), strings.HasSuffix(lower, ".xls"):
			extra = append(extra, xlsxToOrderLines(att.Content)...)
		}
	}
	if len(extra) > 0 {
		body = strings.TrimSpace(body + "\n" + strings.Join(extra, "\n"))
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "From: %s\n", env.GetHeader("From"))
	fmt.Fprintf(&sb, "Subject: %s\n", env.GetHeader("Subject"))
	sb.WriteString("\n")
	sb.WriteString(body)
	return sb.String(), nil
}

func htmlToText(html string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return ""
	}
	lines := []string{}
	doc.Find("p,li,td,th,div,br").Each(func(_ int, sel *goquery.Selection) {
		if text := util.NormalizeSpaces(sel.Text()); text != "" {
			lines = append(lines, text)
		}
	})
	if len(lines) == 0 {
		return util.NormalizeSpaces(doc.Text())
	}
	return strings.Join(lines, "\n")
}

func pdfToText(content []byte) string {
	r, err := pdf.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return ""
	}
	lines := []string{}
	for i := 1; i <= r.NumPage(); i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		for _, line := range util.SplitLines(text) {
			if line = strings.TrimSpace(line); line != "" {
				lines = append(lines, line)
			}
		}
	}
	return strings.Join(lines, "\n")
}

// xlsxToOrderLines renders spreadsheet rows as "<qty> <name>" text lines,
// the shape the quantity-before-product rule recognizes. Rows without a
// numeric cell pass through as the name alone.
func xlsxToOrderLines(content []byte) []string {
	f, err := excelize.OpenReader(bytes.NewReader(content))
	if err != nil {
		return nil
	}
	defer f.Close()

	out := []string{}
	for _, sheet := range f.GetSheetList() {
		rows, err := f.GetRows(sheet)
		if err != nil {
			continue
		}
		for _, row := range rows {
			name, qty := "", ""
			for _, cell := range row {
				cell = util.NormalizeSpaces(cell)
				if cell == "" {
					continue
				}
				if isDigits(cell) {
					if qty == "" {
						qty = cell
					}
					continue
				}
				if name == "" {
					name = cell
				}
			}
			if name == "" {
				continue
			}
			if qty != "" {
				out = append(out, qty+" "+name)
			} else {
				out = append(out, name)
			}
		}
	}
	return out
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
