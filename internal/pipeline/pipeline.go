// Package pipeline drives a document through extraction, chunking,
// embedding and persistence, producing a per-stage count report.
package pipeline

import (
	"context"
	"fmt"
	"path/filepath"

	"docindex/internal/chunker"
	"docindex/internal/domain"
)

// Stage names the pipeline's ordered stages.
type Stage string

const (
	StageExtract Stage = "extract"
	StageChunk   Stage = "chunk"
	StageEmbed   Stage = "embed"
	StagePersist Stage = "persist"
)

// Options configures a single indexing run.
type Options struct {
	Strategy chunker.Strategy
	Params   chunker.Params
	// Reindex deletes previously stored chunks for the file before
	// persisting the new batch.
	Reindex bool
	// OnStage, when set, is notified as each stage begins.
	OnStage func(Stage)
}

// Indexer orchestrates one document through the four stages. Embedding
// failures are tolerated per chunk; extraction, configuration and storage
// failures abort the run.
type Indexer struct {
	extractor domain.Extractor
	chunker   *chunker.Chunker
	embedder  domain.Embedder
	store     domain.ChunkStore
}

func NewIndexer(extractor domain.Extractor, ch *chunker.Chunker, embedder domain.Embedder, store domain.ChunkStore) *Indexer {
	return &Indexer{extractor: extractor, chunker: ch, embedder: embedder, store: store}
}

// Index runs the pipeline for one file. The returned report is valid even
// when err is non-nil: counts reflect the stages that completed and Status
// is FAILURE.
func (ix *Indexer) Index(ctx context.Context, filePath string, opts Options) (domain.Report, error) {
	report := domain.Report{
		Filename: filepath.Base(filePath),
		Strategy: string(opts.Strategy),
		Status:   domain.RunFailure,
	}
	stage := func(s Stage) {
		if opts.OnStage != nil {
			opts.OnStage(s)
		}
	}

	stage(StageExtract)
	text, err := ix.extractor.Extract(filePath)
	if err != nil {
		return report, fmt.Errorf("extract stage: %w", err)
	}
	report.TextLength = len([]rune(text))

	stage(StageChunk)
	chunks, err := ix.chunker.Split(text, opts.Strategy, opts.Params)
	if err != nil {
		return report, fmt.Errorf("chunk stage: %w", err)
	}
	report.ChunksCreated = len(chunks)

	stage(StageEmbed)
	results := ix.embedder.EmbedAll(ctx, chunks)
	records := make([]domain.Record, 0, len(results))
	var lastErr error
	for _, res := range results {
		if res.Status != domain.EmbedOK {
			report.EmbeddedFailed++
			lastErr = res.Err
			continue
		}
		report.EmbeddedOK++
		records = append(records, domain.Record{Text: chunks[res.Index].Text, Vector: res.Vector})
	}
	if len(chunks) > 0 && report.EmbeddedOK == 0 {
		return report, fmt.Errorf("embed stage: all %d chunks failed, last error: %w", len(chunks), lastErr)
	}

	stage(StagePersist)
	if opts.Reindex {
		if _, err := ix.store.DeleteByFile(ctx, report.Filename); err != nil {
			return report, fmt.Errorf("persist stage: %w", err)
		}
	}
	saved, err := ix.store.SaveBatch(ctx, report.Filename, report.Strategy, records)
	if err != nil {
		return report, fmt.Errorf("persist stage: %w", err)
	}
	report.ChunksSaved = saved

	if report.EmbeddedFailed > 0 {
		report.Status = domain.RunPartial
	} else {
		report.Status = domain.RunSuccess
	}
	return report, nil
}
