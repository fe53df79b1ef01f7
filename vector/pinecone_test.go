package vector

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPineconeTestStore(t *testing.T, handler http.HandlerFunc) *PineconeStore {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	store, err := NewPineconeStore(PineconeConfig{Host: srv.URL, APIKey: "pc-key"})
	require.NoError(t, err)
	return store
}

func TestNewPineconeStore_RequiresConfig(t *testing.T) {
	_, err := NewPineconeStore(PineconeConfig{})
	assert.Error(t, err)
}

func TestPineconeStore_UpsertSplitsBatches(t *testing.T) {
	var batchSizes []int
	store := newPineconeTestStore(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/vectors/upsert", r.URL.Path)
		assert.Equal(t, "pc-key", r.Header.Get("Api-Key"))

		var req struct {
			Vectors []pineconeVector `json:"vectors"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		batchSizes = append(batchSizes, len(req.Vectors))
		w.WriteHeader(http.StatusOK)
	})

	records := make([]Record, 250)
	for i := range records {
		records[i] = record("9", i, 250, "chunk", 0.5)
	}

	require.NoError(t, store.Upsert(context.Background(), records))
	assert.Equal(t, []int{100, 100, 50}, batchSizes)
}

func TestPineconeStore_DeleteByFilter(t *testing.T) {
	var gotFilter map[string]any
	store := newPineconeTestStore(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/vectors/delete", r.URL.Path)
		var req struct {
			Filter map[string]any `json:"filter"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		gotFilter = req.Filter
		w.WriteHeader(http.StatusOK)
	})

	require.NoError(t, store.DeleteByFilter(context.Background(), Filter{"document_id": "42"}))
	assert.Equal(t, map[string]any{"document_id": map[string]any{"$eq": "42"}}, gotFilter)
}

func TestPineconeStore_DeleteNotFoundIsNoOp(t *testing.T) {
	store := newPineconeTestStore(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "namespace not found", http.StatusNotFound)
	})

	assert.NoError(t, store.DeleteByFilter(context.Background(), Filter{"document_id": "42"}))
}

func TestPineconeStore_Query(t *testing.T) {
	store := newPineconeTestStore(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/query", r.URL.Path)

		var req map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, float64(5), req["topK"])
		assert.Equal(t, true, req["includeMetadata"])

		json.NewEncoder(w).Encode(map[string]any{
			"matches": []map[string]any{
				{
					"id":    "42_0",
					"score": 0.92,
					"metadata": map[string]any{
						"document_id": "42", "title": "Widgets 101", "source": "widgets-101",
						"text": "Widgets cost $5.", "chunk_index": 0.0, "total_chunks": 1.0,
					},
				},
			},
		})
	})

	matches, err := store.Query(context.Background(), []float64{0.1}, 5, nil)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "42_0", matches[0].ID)
	assert.Equal(t, "Widgets cost $5.", matches[0].Metadata.Text)
	assert.Equal(t, 0, matches[0].Metadata.ChunkIndex)
	assert.Equal(t, 1, matches[0].Metadata.TotalChunks)
}

func TestPineconeStore_UpsertFailurePropagates(t *testing.T) {
	store := newPineconeTestStore(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad request", http.StatusBadRequest)
	})

	err := store.Upsert(context.Background(), []Record{record("1", 0, 1, "x", 0.1)})
	assert.Error(t, err)
}

func TestUnavailableStore(t *testing.T) {
	store := Unavailable()
	ctx := context.Background()

	assert.Error(t, store.Upsert(ctx, nil))
	assert.Error(t, store.DeleteByFilter(ctx, nil))
	_, err := store.Query(ctx, nil, 5, nil)
	assert.Error(t, err)
	assert.NoError(t, store.Close())
}
