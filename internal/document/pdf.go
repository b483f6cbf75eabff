package document

import (
	"bytes"
	"fmt"
	"log/slog"
	"strings"

	"github.com/ledongthuc/pdf"
)

// PDFExtractor extracts plain text from PDF bytes.
type PDFExtractor struct{}

// Extract walks every page and concatenates its plain text. Pages that fail
// to decode are skipped rather than failing the whole document; scanned or
// image-only pages simply contribute nothing.
func (PDFExtractor) Extract(data []byte) (string, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("parsing pdf: %w", err)
	}

	var sb strings.Builder
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			slog.Debug("skipping unreadable pdf page", "page", i, "error", err)
			continue
		}
		sb.WriteString(text)
	}
	return sb.String(), nil
}
