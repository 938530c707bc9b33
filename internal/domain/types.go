package domain

// Chunk is a bounded unit of source text produced by the chunker.
// Index is the chunk's 0-based position in the ordered output; Strategy
// names the segmentation policy that produced it.
type Chunk struct {
	Text     string
	Index    int
	Strategy string
}

// EmbeddingStatus marks whether a chunk's embedding was obtained.
type EmbeddingStatus string

const (
	EmbedOK     EmbeddingStatus = "ok"
	EmbedFailed EmbeddingStatus = "failed"
)

// EmbeddingResult pairs a chunk's index with its vector. Every chunk fed to
// the embedder yields exactly one result; a failed chunk carries the last
// error instead of a vector.
type EmbeddingResult struct {
	Index  int
	Vector []float64
	Status EmbeddingStatus
	Err    error
}

// Record is the persisted shape handed to the store: chunk text plus its
// embedding vector.
type Record struct {
	Text   string
	Vector []float64
}

// RunStatus is the overall outcome of an indexing run.
type RunStatus string

const (
	RunSuccess RunStatus = "SUCCESS"
	RunPartial RunStatus = "PARTIAL"
	RunFailure RunStatus = "FAILURE"
)

// Report summarizes an indexing run for the caller.
type Report struct {
	Filename       string
	Strategy       string
	TextLength     int
	ChunksCreated  int
	EmbeddedOK     int
	EmbeddedFailed int
	ChunksSaved    int
	Status         RunStatus
}

// ChunkStats describes the size distribution of a chunk list.
type ChunkStats struct {
	Count      int
	TotalChars int
	AvgChars   int
	MinChars   int
	MaxChars   int
}
