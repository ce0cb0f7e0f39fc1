package services

import (
	"archive/zip"
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileTypeAndAllowList(t *testing.T) {
	assert.Equal(t, ".pdf", FileType("Report.PDF"))
	assert.Equal(t, ".txt", FileType("/tmp/notes.txt"))
	assert.Equal(t, "", FileType("README"))

	assert.True(t, IsSupportedFile("policy.pdf"))
	assert.True(t, IsSupportedFile("policy.docx"))
	assert.True(t, IsSupportedFile("policy.txt"))
	assert.False(t, IsSupportedFile("policy.png"))
	assert.False(t, IsSupportedFile("policy"))
}

func TestHashContent(t *testing.T) {
	h1 := HashContent([]byte("same bytes"))
	h2 := HashContent([]byte("same bytes"))
	h3 := HashContent([]byte("other bytes"))

	assert.Equal(t, h1, h2)
	assert.NotEqual(t, h1, h3)
	assert.Len(t, h1, 64, "hex sha-256")
}

func TestExtractTextRejectsUnknownExtension(t *testing.T) {
	_, err := ExtractText([]byte("data"), "file.xlsx")
	assert.ErrorIs(t, err, ErrUnsupportedType)
}

func TestExtractTextUTF8Passthrough(t *testing.T) {
	text, err := ExtractText([]byte("plain UTF-8 with açúcar"), "note.txt")
	require.NoError(t, err)
	assert.Equal(t, "plain UTF-8 with açúcar", text)
}

func TestExtractTextLatin1Fallback(t *testing.T) {
	// "café" in Latin-1: é is the single byte 0xE9, invalid as UTF-8.
	content := []byte{'c', 'a', 'f', 0xE9}
	require.False(t, bytes.Equal(content, []byte("café")))

	text, err := ExtractText(content, "note.txt")
	require.NoError(t, err)
	assert.Equal(t, "café", text)
}

func TestExtractTextFallbackOrderPrefersLatin1(t *testing.T) {
	// 0x93 is a left smart quote in windows-1252 but the control character
	// U+0093 in latin-1, which comes first in the fallback chain.
	text, err := ExtractText([]byte{'a', 0x93, 'b'}, "note.txt")
	require.NoError(t, err)
	assert.Equal(t, "a\u0093b", text)
}

func docxArchive(t *testing.T, documentXML string) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	f, err := w.Create("word/document.xml")
	require.NoError(t, err)
	_, err = f.Write([]byte(documentXML))
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return buf.Bytes()
}

func TestExtractTextDocxParagraphs(t *testing.T) {
	archive := docxArchive(t, `<?xml version="1.0"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
  <w:body>
    <w:p><w:r><w:t>First paragraph</w:t></w:r></w:p>
    <w:p><w:r><w:t>Second </w:t></w:r><w:r><w:t>paragraph</w:t></w:r></w:p>
    <w:p><w:r><w:t>   </w:t></w:r></w:p>
  </w:body>
</w:document>`)

	text, err := ExtractText(archive, "doc.docx")
	require.NoError(t, err)
	assert.Equal(t, "First paragraph\n\nSecond paragraph", text)
}

func TestExtractTextDocxInvalidArchive(t *testing.T) {
	_, err := ExtractText([]byte("definitely not a zip"), "doc.docx")
	assert.ErrorIs(t, err, ErrExtractionFailure)
}

func TestExtractTextDocxMissingDocumentXML(t *testing.T) {
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	f, err := w.Create("word/other.xml")
	require.NoError(t, err)
	_, err = f.Write([]byte("<x/>"))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	_, err = ExtractText(buf.Bytes(), "doc.docx")
	assert.ErrorIs(t, err, ErrExtractionFailure)
}

func TestExtractTextPDFGarbageFails(t *testing.T) {
	_, err := ExtractText([]byte("not a pdf at all"), "doc.pdf")
	assert.ErrorIs(t, err, ErrExtractionFailure)
}
