package domain

import "context"

// Extractor pulls plain text out of a document file. The pipeline treats
// the returned string as opaque.
type Extractor interface {
	Extract(path string) (string, error)
}

// Embedder converts chunk text into fixed-dimensional vectors via a remote
// service. EmbedAll returns exactly one result per input chunk, in input
// order; per-chunk failures are reported in the result, not as an error.
type Embedder interface {
	EmbedAll(ctx context.Context, chunks []Chunk) []EmbeddingResult
	EmbedOne(ctx context.Context, text string) ([]float64, error)
	Dimension() int
}

// ChunkStore persists chunk text and embeddings in a relational store.
type ChunkStore interface {
	SaveBatch(ctx context.Context, filename, strategy string, records []Record) (int, error)
	CountByFile(ctx context.Context, filename string) (int, error)
	DeleteByFile(ctx context.Context, filename string) (int, error)
	Filenames(ctx context.Context) ([]string, error)
	Ping(ctx context.Context) error
	Close() error
}

// SentenceSplitter breaks text into an ordered list of sentences.
type SentenceSplitter interface {
	Sentences(text string) []string
}
