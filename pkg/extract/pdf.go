package extract

import (
	"bytes"
	"fmt"
	"strings"

	"arcana-be/internal/apperr"

	"github.com/ledongthuc/pdf"
)

// PageText is the extracted text of one PDF page.
type PageText struct {
	PageNo int
	Text   string
}

// PDFPages extracts per-page plain text so ingestion can mark page
// boundaries. Pages that fail to decode are skipped rather than
// aborting the document.
func PDFPages(path string) ([]PageText, error) {
	f, reader, err := pdf.Open(path)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindParsingFailed, fmt.Sprintf("open pdf %s", path), err)
	}
	defer f.Close()

	var pages []PageText
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		text = strings.TrimSpace(text)
		if text == "" {
			continue
		}
		pages = append(pages, PageText{PageNo: i, Text: text})
	}

	if len(pages) == 0 {
		return nil, apperr.New(apperr.KindParsingFailed, fmt.Sprintf("pdf %s has no extractable text", path))
	}
	return pages, nil
}

// PDFPlainText flattens the whole document into one string, used by
// the diagnostic CLIs.
func PDFPlainText(path string) (string, error) {
	f, reader, err := pdf.Open(path)
	if err != nil {
		return "", apperr.Wrap(apperr.KindParsingFailed, fmt.Sprintf("open pdf %s", path), err)
	}
	defer f.Close()

	r, err := reader.GetPlainText()
	if err != nil {
		return "", apperr.Wrap(apperr.KindParsingFailed, "pdf text extraction", err)
	}
	var buf bytes.Buffer
	if _, err := buf.ReadFrom(r); err != nil {
		return "", apperr.Wrap(apperr.KindParsingFailed, "pdf text read", err)
	}
	return buf.String(), nil
}
