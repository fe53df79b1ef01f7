package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/corvid-labs/corvid/blog"
	"github.com/corvid-labs/corvid/chunk"
	"github.com/corvid-labs/corvid/config"
	"github.com/corvid-labs/corvid/llm"
	"github.com/corvid-labs/corvid/pipeline"
	"github.com/corvid-labs/corvid/server"
	"github.com/corvid-labs/corvid/vector"
)

func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	if err := run(logger); err != nil {
		logger.Fatal("server exited", zap.Error(err))
	}
}

func run(logger *zap.Logger) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	var (
		embedder  llm.Embedder  = llm.DisabledClient{}
		generator llm.Generator = llm.DisabledClient{}
	)
	if len(cfg.GeminiKeys) > 0 {
		pool, err := llm.NewKeyPool(cfg.GeminiKeys)
		if err != nil {
			return err
		}
		gemini := llm.NewGeminiClient(llm.GeminiConfig{
			EmbeddingModel: cfg.EmbeddingModel,
			ChatModel:      cfg.ChatModel,
		})
		client := llm.NewRotatingClient(gemini, pool, nil, logger)
		embedder, generator = client, client
		logger.Info("gemini client ready",
			zap.Int("keys", pool.Size()),
			zap.String("embedding_model", cfg.EmbeddingModel),
			zap.String("chat_model", cfg.ChatModel))
	} else {
		logger.Warn("no gemini credentials, assistant disabled")
	}

	vectors, err := vector.NewStore(cfg, cfg.EmbeddingDim)
	if err != nil {
		return err
	}
	defer vectors.Close()
	logger.Info("vector store ready", zap.String("backend", cfg.VectorBackend))

	splitter, err := chunk.New(cfg.ChunkSize, cfg.ChunkOverlap)
	if err != nil {
		return err
	}

	ingestor := pipeline.NewIngestor(splitter, embedder, vectors, logger)
	retriever := pipeline.NewRetriever(embedder, vectors, cfg.TopK, logger)
	composer := pipeline.NewComposer(retriever, generator, cfg.AssistantAvailable(), logger)

	store, err := blog.NewStore(cfg.DatabaseDSN)
	if err != nil {
		return err
	}
	defer store.Close()

	blogs := blog.NewService(store, ingestor, logger)
	srv := server.New(blogs, composer, cfg, logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start() }()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Stop(shutdownCtx)
	}
}
