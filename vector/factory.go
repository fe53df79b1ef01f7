package vector

import (
	"fmt"

	"github.com/corvid-labs/corvid/config"
)

// NewStore selects a vector store adapter from configuration:
//   - "pinecone": the configured Pinecone index
//   - "pgvector": pgvector in the blog database (DATABASE_DSN must be postgres)
//   - "memory":   in-process store, development only
//
// An unconfigured pinecone backend degrades to the Unavailable store rather
// than failing startup; AI features report themselves disabled instead.
func NewStore(cfg *config.Config, dimension int) (Store, error) {
	switch cfg.VectorBackend {
	case "pinecone":
		store, err := NewPineconeStore(PineconeConfig{
			Host:      cfg.PineconeIndexURL,
			APIKey:    cfg.PineconeAPIKey,
			BatchSize: cfg.BatchSize,
		})
		if err != nil {
			return Unavailable(), nil
		}
		return store, nil
	case "pgvector":
		return NewPgVectorStore(cfg.DatabaseDSN, dimension)
	case "memory":
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("vector: unknown backend %q", cfg.VectorBackend)
	}
}
