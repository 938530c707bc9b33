// Package chunker splits extracted document text into bounded chunks under
// one of three segmentation strategies: fixed-size windows with overlap,
// sentence grouping, or paragraph boundaries.
package chunker

import (
	"errors"
	"fmt"
	"strings"

	"docindex/internal/domain"
)

// Strategy selects the segmentation policy.
type Strategy string

const (
	StrategyFixed     Strategy = "fixed"
	StrategySentence  Strategy = "sentence"
	StrategyParagraph Strategy = "paragraph"
)

// Strategies lists the valid strategy names.
var Strategies = []Strategy{StrategyFixed, StrategySentence, StrategyParagraph}

var (
	// ErrUnknownStrategy reports a strategy name outside Strategies.
	ErrUnknownStrategy = errors.New("unknown chunking strategy")
	// ErrInvalidParams reports chunking parameters that cannot produce
	// forward progress.
	ErrInvalidParams = errors.New("invalid chunking parameters")
)

// ParseStrategy validates a strategy name.
func ParseStrategy(name string) (Strategy, error) {
	s := Strategy(strings.ToLower(strings.TrimSpace(name)))
	for _, known := range Strategies {
		if s == known {
			return s, nil
		}
	}
	return "", fmt.Errorf("%w: %q (choose from fixed, sentence, paragraph)", ErrUnknownStrategy, name)
}

// Params configures the fixed and sentence strategies. Sizes are in
// characters (runes). Zero values take the defaults.
type Params struct {
	ChunkSize    int // fixed: window size
	Overlap      int // fixed: characters shared between consecutive windows
	MaxChunkSize int // sentence: accumulation threshold
}

const (
	defaultChunkSize    = 500
	defaultOverlap      = 50
	defaultMaxChunkSize = 500
)

func (p Params) withDefaults() Params {
	if p.ChunkSize == 0 {
		p.ChunkSize = defaultChunkSize
		if p.Overlap == 0 {
			p.Overlap = defaultOverlap
		}
	}
	if p.MaxChunkSize == 0 {
		p.MaxChunkSize = defaultMaxChunkSize
	}
	return p
}

// Chunker splits text into ordered, non-empty chunks. It is pure and
// deterministic: the same input always yields the same sequence.
type Chunker struct {
	splitter domain.SentenceSplitter
}

// New creates a Chunker with the built-in regex sentence splitter.
func New() *Chunker {
	return NewWithSplitter(NewRegexSplitter())
}

// NewWithSplitter creates a Chunker using a custom sentence tokenizer.
func NewWithSplitter(s domain.SentenceSplitter) *Chunker {
	return &Chunker{splitter: s}
}

// Split segments text under the given strategy. Empty (or whitespace-only)
// text yields an empty sequence, not an error. Invalid parameters and
// unknown strategies fail before any chunk is produced.
func (c *Chunker) Split(text string, strategy Strategy, params Params) ([]domain.Chunk, error) {
	params = params.withDefaults()
	if err := validate(strategy, params); err != nil {
		return nil, err
	}
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}

	var pieces []string
	switch strategy {
	case StrategyFixed:
		pieces = splitFixed(text, params.ChunkSize, params.Overlap)
	case StrategySentence:
		pieces = splitSentences(c.splitter.Sentences(text), params.MaxChunkSize)
	case StrategyParagraph:
		pieces = splitParagraphs(text)
	}

	chunks := make([]domain.Chunk, 0, len(pieces))
	for i, piece := range pieces {
		chunks = append(chunks, domain.Chunk{Text: piece, Index: i, Strategy: string(strategy)})
	}
	return chunks, nil
}

func validate(strategy Strategy, p Params) error {
	switch strategy {
	case StrategyFixed:
		if p.ChunkSize <= 0 {
			return fmt.Errorf("%w: chunk size %d must be positive", ErrInvalidParams, p.ChunkSize)
		}
		if p.Overlap < 0 {
			return fmt.Errorf("%w: overlap %d must not be negative", ErrInvalidParams, p.Overlap)
		}
		if p.Overlap >= p.ChunkSize {
			return fmt.Errorf("%w: overlap %d must be smaller than chunk size %d", ErrInvalidParams, p.Overlap, p.ChunkSize)
		}
	case StrategySentence:
		if p.MaxChunkSize <= 0 {
			return fmt.Errorf("%w: max chunk size %d must be positive", ErrInvalidParams, p.MaxChunkSize)
		}
	case StrategyParagraph:
	default:
		return fmt.Errorf("%w: %q", ErrUnknownStrategy, strategy)
	}
	return nil
}

// Stats summarizes the size distribution of a chunk list.
func Stats(chunks []domain.Chunk) domain.ChunkStats {
	if len(chunks) == 0 {
		return domain.ChunkStats{}
	}
	stats := domain.ChunkStats{Count: len(chunks), MinChars: len([]rune(chunks[0].Text))}
	for _, ch := range chunks {
		n := len([]rune(ch.Text))
		stats.TotalChars += n
		if n < stats.MinChars {
			stats.MinChars = n
		}
		if n > stats.MaxChars {
			stats.MaxChars = n
		}
	}
	stats.AvgChars = stats.TotalChars / stats.Count
	return stats
}
