package extract

import (
	"archive/zip"
	"bytes"
	"path/filepath"
	"testing"

	"arcana-be/internal/apperr"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleDocumentXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
  <w:body>
    <w:p><w:r><w:t>Quarterly Review</w:t></w:r></w:p>
    <w:p>
      <w:r><w:t>Revenue grew</w:t></w:r>
      <w:r><w:t xml:space="preserve"> by 18 percent.</w:t></w:r>
    </w:p>
    <w:p><w:r><w:t>Col A</w:t><w:tab/><w:t>Col B</w:t></w:r></w:p>
    <w:p></w:p>
  </w:body>
</w:document>`

func buildDocx(t *testing.T, documentXML string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create("word/document.xml")
	require.NoError(t, err)
	_, err = w.Write([]byte(documentXML))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func TestDocxBytesExtractsParagraphs(t *testing.T) {
	doc, err := DocxBytes(buildDocx(t, sampleDocumentXML))
	require.NoError(t, err)

	assert.Equal(t, []string{
		"Quarterly Review",
		"Revenue grew by 18 percent.",
		"Col A\tCol B",
	}, doc.Paragraphs)
	assert.Contains(t, doc.RawXML, "<w:body>")
}

func TestDocxBytesRejectsNonArchive(t *testing.T) {
	_, err := DocxBytes([]byte("plain text, not a zip"))
	require.Error(t, err)
	assert.Equal(t, apperr.KindParsingFailed, apperr.KindOf(err))
}

func TestDocxBytesRejectsArchiveWithoutDocument(t *testing.T) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create("word/styles.xml")
	require.NoError(t, err)
	_, err = w.Write([]byte("<styles/>"))
	require.NoError(t, err)
	require.NoError(t, zw.Close())

	_, err = DocxBytes(buf.Bytes())
	require.Error(t, err)
	assert.Equal(t, apperr.KindParsingFailed, apperr.KindOf(err))
}

func TestPDFPagesMissingFile(t *testing.T) {
	_, err := PDFPages(filepath.Join(t.TempDir(), "absent.pdf"))
	require.Error(t, err)
	assert.Equal(t, apperr.KindParsingFailed, apperr.KindOf(err))
}
