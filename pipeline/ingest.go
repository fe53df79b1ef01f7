// Package pipeline orchestrates the retrieval-augmented chat flow: article
// ingestion into the vector index, similarity retrieval, and grounded answer
// composition.
package pipeline

import (
	"context"
	"slices"

	"go.uber.org/zap"

	"github.com/corvid-labs/corvid/chunk"
	"github.com/corvid-labs/corvid/core"
	"github.com/corvid-labs/corvid/llm"
	"github.com/corvid-labs/corvid/normalize"
	"github.com/corvid-labs/corvid/vector"
)

// Document is the unit of ingestion: a published article.
type Document struct {
	ID      string
	Title   string
	Content string // raw markup
	Source  string // slug or other stable reference
}

// IngestStatus reports the overall outcome of an ingestion run.
type IngestStatus string

const (
	IngestSuccess IngestStatus = "success"
	IngestError   IngestStatus = "error"
)

// IngestResult describes what an ingestion run did. DroppedChunks lists the
// chunk indexes whose embedding failed; the run still succeeds when at least
// one chunk made it into the index.
type IngestResult struct {
	Status          IngestStatus
	ChunksProcessed int
	DroppedChunks   []int
}

// Ingestor turns a document into embedded chunks in the vector store,
// replacing any vectors from a previous version of the same document.
type Ingestor struct {
	splitter *chunk.Splitter
	embedder llm.Embedder
	store    vector.Store
	logger   *zap.Logger
}

// NewIngestor creates an ingestion pipeline.
func NewIngestor(splitter *chunk.Splitter, embedder llm.Embedder, store vector.Store, logger *zap.Logger) *Ingestor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Ingestor{splitter: splitter, embedder: embedder, store: store, logger: logger}
}

// Ingest normalizes, chunks and embeds a document, then replaces the
// document's records in the store.
//
// A chunk whose embedding fails is skipped and recorded in DroppedChunks;
// the rest continue. If no chunk embeds at all the store is left untouched,
// including the delete: stale-but-present context beats an empty index when
// a re-ingest goes wrong.
func (p *Ingestor) Ingest(ctx context.Context, doc Document) (IngestResult, error) {
	result := IngestResult{Status: IngestError}

	text := normalize.Text(doc.Content)
	chunks := slices.Collect(p.splitter.Split(text))
	if len(chunks) == 0 {
		p.logger.Warn("no chunks produced", zap.String("document_id", doc.ID))
		return result, core.NewPipelineError("ingest", doc.ID, core.ErrEmptyResult)
	}

	p.logger.Info("ingesting document",
		zap.String("document_id", doc.ID),
		zap.String("title", doc.Title),
		zap.Int("chunks", len(chunks)))

	records := make([]vector.Record, 0, len(chunks))
	for i, segment := range chunks {
		values, err := p.embedder.Embed(ctx, segment, llm.TaskDocument)
		if err != nil {
			p.logger.Warn("chunk embedding failed, skipping",
				zap.String("document_id", doc.ID),
				zap.Int("chunk_index", i),
				zap.Error(err))
			result.DroppedChunks = append(result.DroppedChunks, i)
			continue
		}

		record := vector.Record{
			ID:     vector.RecordID(doc.ID, i),
			Values: values,
			Metadata: vector.Metadata{
				DocumentID:  doc.ID,
				Title:       doc.Title,
				Source:      doc.Source,
				Text:        segment,
				ChunkIndex:  i,
				TotalChunks: len(chunks),
			},
		}
		if err := record.Metadata.Validate(); err != nil {
			return result, core.NewPipelineError("ingest", doc.ID, err)
		}
		records = append(records, record)
	}

	if len(records) == 0 {
		return result, core.NewPipelineError("ingest", doc.ID, core.ErrEmptyResult)
	}

	// Best-effort delete of the previous version; re-ingestion must fully
	// supersede prior chunks. A failure here means possible leftovers, not
	// an aborted run.
	if err := p.store.DeleteByFilter(ctx, vector.Filter{"document_id": doc.ID}); err != nil {
		p.logger.Warn("clearing old vectors failed",
			zap.String("document_id", doc.ID),
			zap.Error(err))
	}

	if err := p.store.Upsert(ctx, records); err != nil {
		return result, core.NewPipelineError("ingest", doc.ID, err)
	}

	result.Status = IngestSuccess
	result.ChunksProcessed = len(records)
	p.logger.Info("document ingested",
		zap.String("document_id", doc.ID),
		zap.Int("chunks_processed", result.ChunksProcessed),
		zap.Int("chunks_dropped", len(result.DroppedChunks)))
	return result, nil
}

// Remove deletes all vectors for a document, used when an article is
// unpublished or deleted.
func (p *Ingestor) Remove(ctx context.Context, documentID string) error {
	if err := p.store.DeleteByFilter(ctx, vector.Filter{"document_id": documentID}); err != nil {
		return core.NewPipelineError("remove", documentID, err)
	}
	return nil
}
