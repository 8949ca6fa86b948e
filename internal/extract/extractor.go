package extract

import (
	"bytes"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/RobelK1738/Buddys-Brain/internal/domain"
	"github.com/fumiama/go-docx"
	"github.com/ledongthuc/pdf"
)

// Extractor converts raw document files into plain text by declared extension.
// Supported extensions: pdf, doc, docx, txt.
type Extractor struct{}

// New creates a new Extractor.
func New() *Extractor {
	return &Extractor{}
}

// Extract returns the plain text of the file. The extension is matched
// case-insensitively and may carry a leading dot.
func (e *Extractor) Extract(data []byte, ext string) (string, error) {
	switch strings.ToLower(strings.TrimPrefix(ext, ".")) {
	case "pdf":
		return extractPDF(data)
	case "doc", "docx":
		return extractDocx(data)
	case "txt":
		return extractTxt(data)
	default:
		return "", fmt.Errorf("%w: %q", domain.ErrUnsupportedFormat, ext)
	}
}

// extractPDF concatenates per-page text. A page that cannot be extracted
// contributes nothing; only a container that cannot be opened is an error.
func extractPDF(data []byte) (string, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrCorruptFile, err)
	}

	var sb strings.Builder
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		sb.WriteString(text)
	}
	return sb.String(), nil
}

// extractDocx concatenates paragraph text in document order, one per line.
func extractDocx(data []byte) (string, error) {
	doc, err := docx.Parse(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrCorruptFile, err)
	}

	var paragraphs []string
	for _, item := range doc.Document.Body.Items {
		if para, ok := item.(*docx.Paragraph); ok {
			paragraphs = append(paragraphs, para.String())
		}
	}
	return strings.Join(paragraphs, "\n"), nil
}

func extractTxt(data []byte) (string, error) {
	if !utf8.Valid(data) {
		return "", domain.ErrInvalidEncoding
	}
	return string(data), nil
}
