package pipeline

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/corvid-labs/corvid/llm"
	"github.com/corvid-labs/corvid/vector"
)

// contextSeparator divides chunks inside the assembled context so the model
// sees where one excerpt ends and the next begins.
const contextSeparator = "\n\n---\n\n"

// Retrieval is the assembled grounding material for one query. An empty
// Context is a valid state, not an error; the composer decides the fallback.
type Retrieval struct {
	Context string
	Matches []vector.Match
}

// Retriever embeds a query and assembles context from the nearest stored
// chunks.
type Retriever struct {
	embedder llm.Embedder
	store    vector.Store
	topK     int
	logger   *zap.Logger
}

// NewRetriever creates a retrieval engine. topK defaults to 5 when zero.
func NewRetriever(embedder llm.Embedder, store vector.Store, topK int, logger *zap.Logger) *Retriever {
	if topK <= 0 {
		topK = 5
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Retriever{embedder: embedder, store: store, topK: topK, logger: logger}
}

// Retrieve embeds the query (as a query, not a document) and returns context
// assembled from the most similar chunks, optionally scoped to a single
// document.
func (r *Retriever) Retrieve(ctx context.Context, query, scopeDocumentID string) (Retrieval, error) {
	values, err := r.embedder.Embed(ctx, query, llm.TaskQuery)
	if err != nil {
		return Retrieval{}, fmt.Errorf("embed query: %w", err)
	}

	var filter vector.Filter
	if scopeDocumentID != "" {
		filter = vector.Filter{"document_id": scopeDocumentID}
	}

	matches, err := r.store.Query(ctx, values, r.topK, filter)
	if err != nil {
		return Retrieval{}, fmt.Errorf("query store: %w", err)
	}

	r.logger.Debug("retrieval complete",
		zap.Int("matches", len(matches)),
		zap.String("scope", scopeDocumentID))

	return Retrieval{Context: buildContext(matches), Matches: matches}, nil
}

// buildContext concatenates match text most-similar first, prefixing each
// excerpt with its article title when one is stored. Matches without text
// are skipped; no matches yields an empty string.
func buildContext(matches []vector.Match) string {
	parts := make([]string, 0, len(matches))
	for _, m := range matches {
		if m.Metadata.Text == "" {
			continue
		}
		if m.Metadata.Title != "" {
			parts = append(parts, fmt.Sprintf("From '%s':\n%s", m.Metadata.Title, m.Metadata.Text))
		} else {
			parts = append(parts, m.Metadata.Text)
		}
	}
	return strings.Join(parts, contextSeparator)
}
