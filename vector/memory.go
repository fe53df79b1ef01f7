package vector

import (
	"context"
	"sort"
	"sync"
)

// MemoryStore is an in-process Store for development and tests, using
// brute-force cosine similarity.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]Record
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[string]Record)}
}

// Upsert writes records, replacing any with the same ID.
func (s *MemoryStore) Upsert(ctx context.Context, records []Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, r := range records {
		s.records[r.ID] = r
	}
	return nil
}

// DeleteByFilter removes every record matching the filter. Deleting with no
// matches is a no-op success.
func (s *MemoryStore) DeleteByFilter(ctx context.Context, filter Filter) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, r := range s.records {
		if filter.Matches(r.Metadata) {
			delete(s.records, id)
		}
	}
	return nil
}

// Query returns the topK records nearest to vec, most similar first.
func (s *MemoryStore) Query(ctx context.Context, vec []float64, topK int, filter Filter) ([]Match, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	matches := make([]Match, 0, len(s.records))
	for _, r := range s.records {
		if filter != nil && !filter.Matches(r.Metadata) {
			continue
		}
		matches = append(matches, Match{
			ID:       r.ID,
			Score:    CosineSimilarity(vec, r.Values),
			Metadata: r.Metadata,
		})
	}

	sort.Slice(matches, func(i, j int) bool { return matches[i].Score > matches[j].Score })

	if topK > 0 && len(matches) > topK {
		matches = matches[:topK]
	}
	return matches, nil
}

// Close is a no-op for the in-memory store.
func (s *MemoryStore) Close() error {
	return nil
}

// Count returns the number of stored records.
func (s *MemoryStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}
