package extractor

import (
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
)

// extractPDF reads text from every page and joins pages with newlines.
// Pages that fail text extraction are skipped rather than failing the
// whole document.
func extractPDF(path string) (string, error) {
	f, reader, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("extract %s: %w", path, err)
	}
	defer f.Close()

	var pages []string
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		if strings.TrimSpace(text) != "" {
			pages = append(pages, text)
		}
	}
	return strings.Join(pages, "\n"), nil
}
