package services

import (
	"archive/zip"
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/xml"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/unidoc/unipdf/v3/common/license"
	"github.com/unidoc/unipdf/v3/extractor"
	"github.com/unidoc/unipdf/v3/model"
	"golang.org/x/text/encoding/charmap"
)

var supportedExtensions = map[string]bool{
	".pdf":  true,
	".docx": true,
	".txt":  true,
}

// FileType returns the lower-cased extension of name, including the dot.
func FileType(name string) string {
	return strings.ToLower(filepath.Ext(name))
}

// IsSupportedFile reports whether name carries an allow-listed extension.
func IsSupportedFile(name string) bool {
	return supportedExtensions[FileType(name)]
}

// InitPDFLicense registers the UniPDF metered license key. Without it, PDF
// extraction fails at runtime.
func InitPDFLicense(key string) error {
	return license.SetMeteredKey(key)
}

// HashContent returns the hex SHA-256 digest of the raw file bytes, used as
// the deduplication key before any parsing happens.
func HashContent(content []byte) string {
	sum := sha256.Sum256(content)
	return hex.EncodeToString(sum[:])
}

// ExtractText converts uploaded bytes into UTF-8 plain text, best effort,
// dispatching on the declared filename's extension.
func ExtractText(content []byte, filename string) (string, error) {
	switch FileType(filename) {
	case ".txt":
		return decodeText(content)
	case ".pdf":
		return extractPDF(content)
	case ".docx":
		return extractDOCX(content)
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedType, FileType(filename))
	}
}

// decodeText tries UTF-8 first, then latin-1, then windows-1252. Latin-1 and
// ISO-8859-1 name the same charmap, so the documented four-encoding chain
// collapses to three, and since latin-1 accepts every byte sequence the
// windows-1252 entry never fires in practice; the order is still part of the
// contract.
func decodeText(content []byte) (string, error) {
	if utf8.Valid(content) {
		return string(content), nil
	}
	for _, cm := range []*charmap.Charmap{charmap.ISO8859_1, charmap.Windows1252} {
		decoded, err := cm.NewDecoder().Bytes(content)
		if err == nil {
			return string(decoded), nil
		}
	}
	return "", fmt.Errorf("%w: could not decode text file", ErrExtractionFailure)
}

// extractPDF pulls the text of every page, prefixed with its page number so
// retrieval results can cite a location.
func extractPDF(content []byte) (string, error) {
	pdfReader, err := model.NewPdfReader(bytes.NewReader(content))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrExtractionFailure, err)
	}

	numPages, err := pdfReader.GetNumPages()
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrExtractionFailure, err)
	}

	var pages []string
	for i := 1; i <= numPages; i++ {
		page, err := pdfReader.GetPage(i)
		if err != nil {
			return "", fmt.Errorf("%w: page %d: %v", ErrExtractionFailure, i, err)
		}
		ex, err := extractor.New(page)
		if err != nil {
			return "", fmt.Errorf("%w: page %d: %v", ErrExtractionFailure, i, err)
		}
		text, err := ex.ExtractText()
		if err != nil {
			return "", fmt.Errorf("%w: page %d: %v", ErrExtractionFailure, i, err)
		}
		if strings.TrimSpace(text) != "" {
			pages = append(pages, fmt.Sprintf("[Page %d]\n%s", i, text))
		}
	}
	return strings.Join(pages, "\n\n"), nil
}

// extractDOCX reads word/document.xml out of the OOXML archive and joins the
// non-empty paragraph texts with blank lines.
func extractDOCX(content []byte) (string, error) {
	reader, err := zip.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return "", fmt.Errorf("%w: not a valid docx archive: %v", ErrExtractionFailure, err)
	}
	for _, file := range reader.File {
		if file.Name != "word/document.xml" {
			continue
		}
		rc, err := file.Open()
		if err != nil {
			return "", fmt.Errorf("%w: %v", ErrExtractionFailure, err)
		}
		defer rc.Close()
		return parseDocumentXML(rc)
	}
	return "", fmt.Errorf("%w: word/document.xml missing", ErrExtractionFailure)
}

func parseDocumentXML(r io.Reader) (string, error) {
	decoder := xml.NewDecoder(r)
	var paragraphs []string
	var current strings.Builder
	inText := false
	for {
		token, err := decoder.Token()
		if err != nil {
			break
		}
		switch t := token.(type) {
		case xml.StartElement:
			if t.Name.Local == "t" {
				inText = true
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inText = false
			case "p":
				if text := strings.TrimSpace(current.String()); text != "" {
					paragraphs = append(paragraphs, text)
				}
				current.Reset()
			}
		case xml.CharData:
			if inText {
				current.Write(t)
			}
		}
	}
	return strings.Join(paragraphs, "\n\n"), nil
}
