package extract

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"io"
	"strings"

	"arcana-be/internal/apperr"
)

// OpenXMLDoc holds a parsed .docx body: plain paragraphs for chunking
// plus the raw document XML kept for structure-preserving export.
type OpenXMLDoc struct {
	Paragraphs []string
	RawXML     string
}

// DocxFile reads word/document.xml from a .docx archive on disk.
func DocxFile(path string) (*OpenXMLDoc, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindParsingFailed, "open docx archive", err)
	}
	defer zr.Close()
	return docxFromZip(&zr.Reader)
}

// DocxBytes parses an in-memory .docx payload, used right after a
// Drive download before anything touches disk.
func DocxBytes(data []byte) (*OpenXMLDoc, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, apperr.Wrap(apperr.KindParsingFailed, "open docx archive", err)
	}
	return docxFromZip(zr)
}

func docxFromZip(zr *zip.Reader) (*OpenXMLDoc, error) {
	var docEntry *zip.File
	for _, f := range zr.File {
		if f.Name == "word/document.xml" {
			docEntry = f
			break
		}
	}
	if docEntry == nil {
		return nil, apperr.New(apperr.KindParsingFailed, "docx archive has no word/document.xml")
	}

	rc, err := docEntry.Open()
	if err != nil {
		return nil, apperr.Wrap(apperr.KindParsingFailed, "read word/document.xml", err)
	}
	defer rc.Close()

	raw, err := io.ReadAll(rc)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindParsingFailed, "read word/document.xml", err)
	}

	paragraphs, err := wordParagraphs(raw)
	if err != nil {
		return nil, err
	}
	return &OpenXMLDoc{Paragraphs: paragraphs, RawXML: string(raw)}, nil
}

// wordParagraphs walks the WordprocessingML token stream: text runs
// (w:t) accumulate into the current paragraph, closed by w:p; tab and
// break elements become whitespace.
func wordParagraphs(raw []byte) ([]string, error) {
	decoder := xml.NewDecoder(strings.NewReader(string(raw)))

	var paragraphs []string
	var current strings.Builder
	inText := false

	for {
		tok, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, apperr.Wrap(apperr.KindParsingFailed, "malformed document.xml", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "t":
				inText = true
			case "tab":
				current.WriteString("\t")
			case "br", "cr":
				current.WriteString("\n")
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inText = false
			case "p":
				para := strings.TrimSpace(current.String())
				if para != "" {
					paragraphs = append(paragraphs, para)
				}
				current.Reset()
			}
		case xml.CharData:
			if inText {
				current.Write(t)
			}
		}
	}

	if para := strings.TrimSpace(current.String()); para != "" {
		paragraphs = append(paragraphs, para)
	}
	return paragraphs, nil
}
