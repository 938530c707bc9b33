package chunker

import (
	"regexp"
	"strings"
)

// Paragraph boundaries are one or more blank lines (lines holding only
// whitespace count as blank).
var paragraphBoundary = regexp.MustCompile(`\r?\n[ \t]*(\r?\n[ \t]*)+`)

// splitParagraphs emits one chunk per non-empty paragraph. Whitespace
// inside a paragraph is collapsed to single spaces; empty paragraphs are
// dropped.
func splitParagraphs(text string) []string {
	var chunks []string
	for _, para := range paragraphBoundary.Split(text, -1) {
		if cleaned := strings.Join(strings.Fields(para), " "); cleaned != "" {
			chunks = append(chunks, cleaned)
		}
	}
	return chunks
}
