// Package config loads environment-sourced configuration for the Corvid
// backend. A .env file is honoured when present; real environment variables
// take precedence.
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Defaults applied when the corresponding variable is unset.
const (
	DefaultEmbeddingModel = "gemini-embedding-001"
	DefaultChatModel      = "gemini-2.0-flash"
	DefaultEmbeddingDim   = 3072
	DefaultChunkSize      = 1500
	DefaultChunkOverlap   = 200
	DefaultBatchSize      = 100
	DefaultTopK           = 5
	DefaultAddr           = ":8000"
	DefaultDatabaseDSN    = "data/corvid.db"
)

// Config holds every setting the backend reads from the environment.
type Config struct {
	// GeminiKeys is the credential pool, from GEMINI_API_KEY_1..4 or the
	// single GEMINI_API_KEY fallback. May be empty; the assistant then runs
	// in a degraded "unavailable" state.
	GeminiKeys []string

	PineconeAPIKey   string
	PineconeIndexURL string

	EmbeddingModel string
	ChatModel      string

	// EmbeddingDim is the embedding vector size; must match the model. Only
	// the pgvector backend needs it ahead of time.
	EmbeddingDim int

	ChunkSize    int
	ChunkOverlap int
	BatchSize    int
	TopK         int

	// VectorBackend selects the vector store adapter: "pinecone" (default
	// when Pinecone is configured), "pgvector" or "memory".
	VectorBackend string

	// DatabaseDSN selects the blog store: postgres:// DSNs use Postgres,
	// anything else is a SQLite path.
	DatabaseDSN string

	Addr string
}

// Load reads configuration from the environment, after loading .env if one
// exists in the working directory.
func Load() (*Config, error) {
	// Missing .env is the normal case in production.
	_ = godotenv.Load()

	cfg := &Config{
		GeminiKeys:       loadKeyPool("GEMINI_API_KEY"),
		PineconeAPIKey:   os.Getenv("PINECONE_API_KEY"),
		PineconeIndexURL: os.Getenv("PINECONE_INDEX_HOST"),
		EmbeddingModel:   getEnvOr("EMBEDDING_MODEL", DefaultEmbeddingModel),
		ChatModel:        getEnvOr("CHAT_MODEL", DefaultChatModel),
		VectorBackend:    os.Getenv("VECTOR_BACKEND"),
		DatabaseDSN:      getEnvOr("DATABASE_DSN", DefaultDatabaseDSN),
		Addr:             getEnvOr("ADDR", DefaultAddr),
	}

	var err error
	if cfg.ChunkSize, err = getEnvInt("CHUNK_SIZE", DefaultChunkSize); err != nil {
		return nil, err
	}
	if cfg.ChunkOverlap, err = getEnvInt("CHUNK_OVERLAP", DefaultChunkOverlap); err != nil {
		return nil, err
	}
	if cfg.BatchSize, err = getEnvInt("BATCH_SIZE", DefaultBatchSize); err != nil {
		return nil, err
	}
	if cfg.TopK, err = getEnvInt("TOP_K", DefaultTopK); err != nil {
		return nil, err
	}
	if cfg.EmbeddingDim, err = getEnvInt("EMBEDDING_DIM", DefaultEmbeddingDim); err != nil {
		return nil, err
	}

	if cfg.ChunkOverlap >= cfg.ChunkSize {
		return nil, fmt.Errorf("config: CHUNK_OVERLAP (%d) must be smaller than CHUNK_SIZE (%d)", cfg.ChunkOverlap, cfg.ChunkSize)
	}

	if cfg.VectorBackend == "" {
		if cfg.PineconeAPIKey != "" && cfg.PineconeIndexURL != "" {
			cfg.VectorBackend = "pinecone"
		} else {
			cfg.VectorBackend = "memory"
		}
	}

	return cfg, nil
}

// AssistantAvailable reports whether the AI features can run at all. When
// false the chat surface serves a static unavailable message instead of
// erroring.
func (c *Config) AssistantAvailable() bool {
	if len(c.GeminiKeys) == 0 {
		return false
	}
	if c.VectorBackend == "pinecone" && (c.PineconeAPIKey == "" || c.PineconeIndexURL == "") {
		return false
	}
	return true
}

// loadKeyPool collects numbered keys PREFIX_1..PREFIX_4, falling back to the
// single unnumbered variable. Placeholder values from .env templates are
// ignored.
func loadKeyPool(prefix string) []string {
	var keys []string
	for i := 1; i <= 4; i++ {
		if key := os.Getenv(fmt.Sprintf("%s_%d", prefix, i)); validKey(key) {
			keys = append(keys, key)
		}
	}
	if len(keys) == 0 {
		if key := os.Getenv(prefix); validKey(key) {
			keys = append(keys, key)
		}
	}
	return keys
}

func validKey(key string) bool {
	return key != "" && key != "your_gemini_api_key_here"
}

func getEnvOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("config: %s must be an integer, got %q", key, v)
	}
	return n, nil
}
