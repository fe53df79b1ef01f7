// Package vector abstracts the external similarity index: upsert,
// delete-by-filter and nearest-neighbour query over embedding records.
package vector

import (
	"context"
	"fmt"

	"github.com/corvid-labs/corvid/core"
)

// UpsertBatchSize is the maximum number of records sent to the index in a
// single upsert call. Larger batches are split; partial failure does not
// roll back batches already written.
const UpsertBatchSize = 100

// Metadata is the fixed attribute schema stored with every record.
type Metadata struct {
	DocumentID  string `json:"document_id"`
	Title       string `json:"title"`
	Source      string `json:"source"`
	Text        string `json:"text"`
	ChunkIndex  int    `json:"chunk_index"`
	TotalChunks int    `json:"total_chunks"`
}

// Validate checks the invariants every stored record must satisfy.
func (m Metadata) Validate() error {
	if m.DocumentID == "" {
		return fmt.Errorf("vector: metadata requires a document_id")
	}
	if m.Text == "" {
		return fmt.Errorf("vector: metadata requires chunk text")
	}
	if m.ChunkIndex < 0 || m.TotalChunks <= 0 || m.ChunkIndex >= m.TotalChunks {
		return fmt.Errorf("vector: chunk index %d out of range for %d chunks", m.ChunkIndex, m.TotalChunks)
	}
	return nil
}

// Field returns the metadata value for a filterable field name.
func (m Metadata) Field(name string) (string, bool) {
	switch name {
	case "document_id":
		return m.DocumentID, true
	case "title":
		return m.Title, true
	case "source":
		return m.Source, true
	default:
		return "", false
	}
}

// Record is one embedded chunk persisted in the index. The ID is
// deterministic ({document_id}_{chunk_index}) so re-ingestion overwrites
// rather than accumulates.
type Record struct {
	ID       string
	Values   []float64
	Metadata Metadata
}

// RecordID builds the deterministic identity for a document chunk.
func RecordID(documentID string, chunkIndex int) string {
	return fmt.Sprintf("%s_%d", documentID, chunkIndex)
}

// Filter restricts operations to records whose metadata matches every
// listed field exactly.
type Filter map[string]string

// Matches reports whether metadata satisfies all filter criteria. Unknown
// field names never match.
func (f Filter) Matches(m Metadata) bool {
	for name, want := range f {
		got, ok := m.Field(name)
		if !ok || got != want {
			return false
		}
	}
	return true
}

// Match is a query result ranked by similarity.
type Match struct {
	ID       string
	Score    float64
	Metadata Metadata
}

// Store is the similarity index abstraction.
type Store interface {
	// Upsert writes records, replacing any with the same ID.
	Upsert(ctx context.Context, records []Record) error

	// DeleteByFilter removes every record matching the filter. A store
	// reporting "not found" is treated as success.
	DeleteByFilter(ctx context.Context, filter Filter) error

	// Query returns at most topK records nearest to the vector, most
	// similar first. A non-nil filter scopes the search.
	Query(ctx context.Context, vec []float64, topK int, filter Filter) ([]Match, error)

	// Close releases resources.
	Close() error
}

// Unavailable returns a Store whose every operation fails fast with
// core.ErrStoreUnavailable. Used when the index was never configured so the
// rest of the system degrades instead of crashing.
func Unavailable() Store {
	return unavailableStore{}
}

type unavailableStore struct{}

func (unavailableStore) Upsert(context.Context, []Record) error { return core.ErrStoreUnavailable }
func (unavailableStore) DeleteByFilter(context.Context, Filter) error {
	return core.ErrStoreUnavailable
}
func (unavailableStore) Query(context.Context, []float64, int, Filter) ([]Match, error) {
	return nil, core.ErrStoreUnavailable
}
func (unavailableStore) Close() error { return nil }
