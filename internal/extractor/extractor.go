// Package extractor pulls plain text out of PDF and DOCX documents.
package extractor

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ErrUnsupportedFormat reports a file extension outside the supported set.
var ErrUnsupportedFormat = errors.New("unsupported document format")

// Extractor reads document files and returns their text content. PDF pages
// are joined with single newlines; DOCX paragraphs with blank lines, so
// paragraph chunking keeps working downstream.
type Extractor struct{}

func New() *Extractor {
	return &Extractor{}
}

// SupportedExtensions lists the handled file extensions.
func (e *Extractor) SupportedExtensions() []string {
	return []string{".pdf", ".docx"}
}

// Extract detects the format from the file extension and returns the
// document's text.
func (e *Extractor) Extract(path string) (string, error) {
	if _, err := os.Stat(path); err != nil {
		return "", fmt.Errorf("extract %s: %w", path, err)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".pdf":
		return extractPDF(path)
	case ".docx":
		return extractDOCX(path)
	default:
		return "", fmt.Errorf("extract %s: %w (supported: .pdf, .docx)", path, ErrUnsupportedFormat)
	}
}
