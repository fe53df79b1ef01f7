package vector

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/corvid-labs/corvid/core"
)

// PineconeStore is a minimal REST client to a Pinecone index data plane.
type PineconeStore struct {
	host   string
	apiKey string
	batch  int
	client *http.Client
}

// PineconeConfig configures a PineconeStore.
type PineconeConfig struct {
	// Host is the index endpoint, e.g. https://my-index-abc123.svc.pinecone.io.
	Host      string
	APIKey    string
	BatchSize int           // default: UpsertBatchSize
	Timeout   time.Duration // default: 30s
}

// NewPineconeStore creates a Pinecone-backed store.
func NewPineconeStore(cfg PineconeConfig) (*PineconeStore, error) {
	if cfg.Host == "" || cfg.APIKey == "" {
		return nil, fmt.Errorf("pinecone: host and API key are required: %w", core.ErrStoreUnavailable)
	}
	batch := cfg.BatchSize
	if batch <= 0 {
		batch = UpsertBatchSize
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	return &PineconeStore{
		host:   cfg.Host,
		apiKey: cfg.APIKey,
		batch:  batch,
		client: &http.Client{Timeout: timeout},
	}, nil
}

// Wire types. Pinecone returns metadata numbers as floats, so the counters
// are decoded as float64 and converted.
type pineconeMetadata struct {
	DocumentID  string  `json:"document_id"`
	Title       string  `json:"title"`
	Source      string  `json:"source"`
	Text        string  `json:"text"`
	ChunkIndex  float64 `json:"chunk_index"`
	TotalChunks float64 `json:"total_chunks"`
}

func toWireMetadata(m Metadata) pineconeMetadata {
	return pineconeMetadata{
		DocumentID:  m.DocumentID,
		Title:       m.Title,
		Source:      m.Source,
		Text:        m.Text,
		ChunkIndex:  float64(m.ChunkIndex),
		TotalChunks: float64(m.TotalChunks),
	}
}

func fromWireMetadata(m pineconeMetadata) Metadata {
	return Metadata{
		DocumentID:  m.DocumentID,
		Title:       m.Title,
		Source:      m.Source,
		Text:        m.Text,
		ChunkIndex:  int(m.ChunkIndex),
		TotalChunks: int(m.TotalChunks),
	}
}

type pineconeVector struct {
	ID       string           `json:"id"`
	Values   []float64        `json:"values"`
	Metadata pineconeMetadata `json:"metadata"`
}

// Upsert writes records in batches. Batches already written are not rolled
// back when a later batch fails.
func (s *PineconeStore) Upsert(ctx context.Context, records []Record) error {
	for start := 0; start < len(records); start += s.batch {
		end := min(start+s.batch, len(records))

		vectors := make([]pineconeVector, 0, end-start)
		for _, r := range records[start:end] {
			vectors = append(vectors, pineconeVector{
				ID:       r.ID,
				Values:   r.Values,
				Metadata: toWireMetadata(r.Metadata),
			})
		}

		body := map[string]any{"vectors": vectors}
		if err := s.post(ctx, "/vectors/upsert", body, nil); err != nil {
			return fmt.Errorf("upsert batch at %d: %w", start, err)
		}
	}
	return nil
}

// DeleteByFilter removes all records whose metadata matches the filter.
// An index reporting not-found is a no-op success.
func (s *PineconeStore) DeleteByFilter(ctx context.Context, filter Filter) error {
	criteria := make(map[string]any, len(filter))
	for field, value := range filter {
		criteria[field] = map[string]string{"$eq": value}
	}

	err := s.post(ctx, "/vectors/delete", map[string]any{"filter": criteria}, nil)
	if err != nil && isNotFound(err) {
		return nil
	}
	return err
}

// Query returns the topK nearest records, most similar first.
func (s *PineconeStore) Query(ctx context.Context, vec []float64, topK int, filter Filter) ([]Match, error) {
	body := map[string]any{
		"vector":          vec,
		"topK":            topK,
		"includeMetadata": true,
	}
	if len(filter) > 0 {
		criteria := make(map[string]any, len(filter))
		for field, value := range filter {
			criteria[field] = map[string]string{"$eq": value}
		}
		body["filter"] = criteria
	}

	var resp struct {
		Matches []struct {
			ID       string           `json:"id"`
			Score    float64          `json:"score"`
			Metadata pineconeMetadata `json:"metadata"`
		} `json:"matches"`
	}
	if err := s.post(ctx, "/query", body, &resp); err != nil {
		return nil, err
	}

	matches := make([]Match, 0, len(resp.Matches))
	for _, m := range resp.Matches {
		matches = append(matches, Match{
			ID:       m.ID,
			Score:    m.Score,
			Metadata: fromWireMetadata(m.Metadata),
		})
	}
	return matches, nil
}

// Close is a no-op; the HTTP client holds no resources.
func (s *PineconeStore) Close() error {
	return nil
}

type statusError struct {
	code int
	path string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("pinecone %s returned status %d", e.path, e.code)
}

func isNotFound(err error) bool {
	se, ok := err.(*statusError)
	return ok && se.code == http.StatusNotFound
}

func (s *PineconeStore) post(ctx context.Context, path string, body, out any) error {
	data, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.host+path, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Api-Key", s.apiKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("pinecone %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return &statusError{code: resp.StatusCode, path: path}
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode %s response: %w", path, err)
		}
	}
	return nil
}
