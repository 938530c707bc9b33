package extractor

import (
	"archive/zip"
	"encoding/xml"
	"fmt"
	"io"
	"strings"
)

// extractDOCX reads word/document.xml out of the DOCX zip archive and
// collects the text runs of each paragraph. Paragraphs are joined with
// blank lines to preserve boundaries for paragraph chunking.
func extractDOCX(path string) (string, error) {
	archive, err := zip.OpenReader(path)
	if err != nil {
		return "", fmt.Errorf("extract %s: %w", path, err)
	}
	defer archive.Close()

	var doc *zip.File
	for _, f := range archive.File {
		if f.Name == "word/document.xml" {
			doc = f
			break
		}
	}
	if doc == nil {
		return "", fmt.Errorf("extract %s: no word/document.xml in archive", path)
	}

	rc, err := doc.Open()
	if err != nil {
		return "", fmt.Errorf("extract %s: %w", path, err)
	}
	defer rc.Close()

	text, err := documentText(rc)
	if err != nil {
		return "", fmt.Errorf("extract %s: %w", path, err)
	}
	return text, nil
}

// documentText walks the WordprocessingML token stream. Text lives in w:t
// elements; w:p elements delimit paragraphs; w:tab and w:br map to their
// plain-text equivalents.
func documentText(r io.Reader) (string, error) {
	decoder := xml.NewDecoder(r)

	var paragraphs []string
	var current strings.Builder
	inText := false

	for {
		token, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", err
		}
		switch tok := token.(type) {
		case xml.StartElement:
			switch tok.Name.Local {
			case "t":
				inText = true
			case "tab":
				current.WriteByte('\t')
			case "br":
				current.WriteByte('\n')
			}
		case xml.EndElement:
			switch tok.Name.Local {
			case "t":
				inText = false
			case "p":
				if para := strings.TrimSpace(current.String()); para != "" {
					paragraphs = append(paragraphs, para)
				}
				current.Reset()
			}
		case xml.CharData:
			if inText {
				current.Write(tok)
			}
		}
	}
	return strings.Join(paragraphs, "\n\n"), nil
}
