package llm

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/corvid-labs/corvid/core"
)

// keyedProvider is a provider whose calls take an explicit API key, so a
// pool can swap credentials between attempts.
type keyedProvider interface {
	EmbedContent(ctx context.Context, apiKey, text string, task TaskType) ([]float64, error)
	GenerateContent(ctx context.Context, apiKey, prompt string) (string, error)
}

// RotatingClient fronts a keyed provider with the credential pool and a
// global token bucket. Every call waits for the limiter first, keeping total
// provider throughput bounded regardless of which key is active.
//
// On a rate-limit signal the pool cursor advances and the call retries, up
// to one attempt per key; after the pool is exhausted the call fails with
// core.ErrRateLimited. Other provider errors are not retried.
type RotatingClient struct {
	provider keyedProvider
	pool     *KeyPool
	limiter  *rate.Limiter
	logger   *zap.Logger
}

// NewRotatingClient creates a RotatingClient. A nil limiter defaults to one
// request per second, matching the provider's free-tier throughput.
func NewRotatingClient(provider keyedProvider, pool *KeyPool, limiter *rate.Limiter, logger *zap.Logger) *RotatingClient {
	if limiter == nil {
		limiter = rate.NewLimiter(rate.Limit(1), 1)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RotatingClient{provider: provider, pool: pool, limiter: limiter, logger: logger}
}

// Embed implements Embedder with credential rotation.
func (c *RotatingClient) Embed(ctx context.Context, text string, task TaskType) ([]float64, error) {
	var vec []float64
	err := c.withRotation(ctx, "embed", func(key string) error {
		var embedErr error
		vec, embedErr = c.provider.EmbedContent(ctx, key, text, task)
		return embedErr
	})
	if err != nil {
		return nil, err
	}
	return vec, nil
}

// Generate implements Generator with credential rotation.
func (c *RotatingClient) Generate(ctx context.Context, prompt string) (string, error) {
	var text string
	err := c.withRotation(ctx, "generate", func(key string) error {
		var genErr error
		text, genErr = c.provider.GenerateContent(ctx, key, prompt)
		return genErr
	})
	if err != nil {
		return "", err
	}
	return text, nil
}

func (c *RotatingClient) withRotation(ctx context.Context, op string, call func(key string) error) error {
	for attempt := 0; attempt < c.pool.Size(); attempt++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}

		err := call(c.pool.Current())
		if err == nil {
			return nil
		}
		if !errors.Is(err, core.ErrRateLimited) {
			return fmt.Errorf("%s: %w", op, err)
		}

		c.pool.Rotate()
		c.logger.Warn("rate limit hit, rotating credential",
			zap.String("op", op),
			zap.Int("cursor", c.pool.Cursor()),
			zap.Int("pool_size", c.pool.Size()))
	}
	return fmt.Errorf("%s: all %d credentials exhausted: %w", op, c.pool.Size(), core.ErrRateLimited)
}
