package chunker

import (
	"regexp"
	"strings"
)

// RegexSplitter is a sentence-boundary tokenizer based on terminal
// punctuation. Text after the last terminator (or text with no terminator
// at all) is returned as a trailing sentence so no input is lost.
type RegexSplitter struct {
	re *regexp.Regexp
}

func NewRegexSplitter() *RegexSplitter {
	return &RegexSplitter{re: regexp.MustCompile(`(?m)(?U)([^.!?]+[.!?]+)`)}
}

// Sentences splits text into an ordered list of trimmed sentences.
func (s *RegexSplitter) Sentences(text string) []string {
	matches := s.re.FindAllStringIndex(text, -1)
	var sentences []string
	last := 0
	for _, m := range matches {
		if sent := strings.TrimSpace(text[m[0]:m[1]]); sent != "" {
			sentences = append(sentences, sent)
		}
		last = m[1]
	}
	if rest := strings.TrimSpace(text[last:]); rest != "" {
		sentences = append(sentences, rest)
	}
	return sentences
}

// splitSentences greedily accumulates consecutive sentences into a chunk
// until adding the next one would exceed maxSize, counting a single joining
// space per boundary. A lone sentence longer than maxSize becomes its own
// oversized chunk, never truncated or dropped.
func splitSentences(sentences []string, maxSize int) []string {
	var chunks []string
	var current []string
	size := 0

	flush := func() {
		if len(current) > 0 {
			chunks = append(chunks, strings.Join(current, " "))
			current = nil
			size = 0
		}
	}

	for _, sentence := range sentences {
		sentence = strings.TrimSpace(sentence)
		if sentence == "" {
			continue
		}
		n := len([]rune(sentence))
		if n > maxSize {
			flush()
			chunks = append(chunks, sentence)
			continue
		}
		if size+n+1 > maxSize {
			flush()
		}
		current = append(current, sentence)
		size += n + 1
	}
	flush()
	return chunks
}
