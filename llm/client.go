// Package llm provides clients for the generative-language provider:
// embedding and text generation over REST, with a rotating credential pool
// that survives per-key rate limits.
package llm

import (
	"context"

	"github.com/corvid-labs/corvid/core"
)

// TaskType tells the provider how an embedding will be used. Providers
// optimize query and document embeddings differently.
type TaskType string

const (
	TaskDocument TaskType = "RETRIEVAL_DOCUMENT"
	TaskQuery    TaskType = "RETRIEVAL_QUERY"
)

// Embedder turns text into a fixed-length vector.
type Embedder interface {
	Embed(ctx context.Context, text string, task TaskType) ([]float64, error)
}

// Generator produces a completion for a prompt.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// DisabledClient satisfies Embedder and Generator when no credentials are
// configured; every call fails with core.ErrNotConfigured so callers degrade
// instead of dereferencing nil.
type DisabledClient struct{}

func (DisabledClient) Embed(context.Context, string, TaskType) ([]float64, error) {
	return nil, core.ErrNotConfigured
}

func (DisabledClient) Generate(context.Context, string) (string, error) {
	return "", core.ErrNotConfigured
}
