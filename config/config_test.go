package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"GEMINI_API_KEY", "GEMINI_API_KEY_1", "GEMINI_API_KEY_2", "GEMINI_API_KEY_3", "GEMINI_API_KEY_4",
		"PINECONE_API_KEY", "PINECONE_INDEX_HOST",
		"EMBEDDING_MODEL", "CHAT_MODEL", "EMBEDDING_DIM",
		"CHUNK_SIZE", "CHUNK_OVERLAP", "BATCH_SIZE", "TOP_K",
		"VECTOR_BACKEND", "DATABASE_DSN", "ADDR",
	} {
		t.Setenv(key, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, DefaultEmbeddingModel, cfg.EmbeddingModel)
	assert.Equal(t, DefaultChatModel, cfg.ChatModel)
	assert.Equal(t, DefaultEmbeddingDim, cfg.EmbeddingDim)
	assert.Equal(t, DefaultChunkSize, cfg.ChunkSize)
	assert.Equal(t, DefaultChunkOverlap, cfg.ChunkOverlap)
	assert.Equal(t, DefaultBatchSize, cfg.BatchSize)
	assert.Equal(t, DefaultTopK, cfg.TopK)
	assert.Equal(t, DefaultAddr, cfg.Addr)
	assert.Equal(t, DefaultDatabaseDSN, cfg.DatabaseDSN)
	assert.Equal(t, "memory", cfg.VectorBackend)
	assert.Empty(t, cfg.GeminiKeys)
	assert.False(t, cfg.AssistantAvailable())
}

func TestLoad_NumberedKeyPool(t *testing.T) {
	clearEnv(t)
	t.Setenv("GEMINI_API_KEY_1", "key-one")
	t.Setenv("GEMINI_API_KEY_3", "key-three")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, []string{"key-one", "key-three"}, cfg.GeminiKeys)
	assert.True(t, cfg.AssistantAvailable())
}

func TestLoad_SingleKeyFallback(t *testing.T) {
	clearEnv(t)
	t.Setenv("GEMINI_API_KEY", "solo-key")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, []string{"solo-key"}, cfg.GeminiKeys)
}

func TestLoad_NumberedKeysWinOverFallback(t *testing.T) {
	clearEnv(t)
	t.Setenv("GEMINI_API_KEY", "solo-key")
	t.Setenv("GEMINI_API_KEY_2", "key-two")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, []string{"key-two"}, cfg.GeminiKeys)
}

func TestLoad_PlaceholderKeyIgnored(t *testing.T) {
	clearEnv(t)
	t.Setenv("GEMINI_API_KEY", "your_gemini_api_key_here")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Empty(t, cfg.GeminiKeys)
	assert.False(t, cfg.AssistantAvailable())
}

func TestLoad_PineconeSelectsBackend(t *testing.T) {
	clearEnv(t)
	t.Setenv("PINECONE_API_KEY", "pc-key")
	t.Setenv("PINECONE_INDEX_HOST", "https://idx.example.io")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "pinecone", cfg.VectorBackend)
}

func TestLoad_ExplicitBackendWins(t *testing.T) {
	clearEnv(t)
	t.Setenv("PINECONE_API_KEY", "pc-key")
	t.Setenv("PINECONE_INDEX_HOST", "https://idx.example.io")
	t.Setenv("VECTOR_BACKEND", "pgvector")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "pgvector", cfg.VectorBackend)
}

func TestLoad_OverlapMustBeSmallerThanSize(t *testing.T) {
	clearEnv(t)
	t.Setenv("CHUNK_SIZE", "100")
	t.Setenv("CHUNK_OVERLAP", "100")

	_, err := Load()
	require.Error(t, err)
}

func TestLoad_RejectsNonIntegers(t *testing.T) {
	clearEnv(t)
	t.Setenv("TOP_K", "five")

	_, err := Load()
	require.Error(t, err)
}

func TestAssistantAvailable_PineconeUnconfigured(t *testing.T) {
	cfg := &Config{
		GeminiKeys:    []string{"k"},
		VectorBackend: "pinecone",
	}
	assert.False(t, cfg.AssistantAvailable())

	cfg.PineconeAPIKey = "pc"
	cfg.PineconeIndexURL = "https://idx.example.io"
	assert.True(t, cfg.AssistantAvailable())
}
