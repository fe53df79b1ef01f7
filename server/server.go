// Package server provides the HTTP API: the chat surface, article CRUD for
// the admin UI, contact submissions and service status.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/corvid-labs/corvid/blog"
	"github.com/corvid-labs/corvid/config"
	"github.com/corvid-labs/corvid/monitor"
	"github.com/corvid-labs/corvid/pipeline"
)

// Server is the HTTP server for the Corvid backend.
type Server struct {
	blogs    *blog.Service
	composer *pipeline.Composer
	cfg      *config.Config
	metrics  *monitor.Collector
	logger   *zap.Logger
	server   *http.Server
}

// New creates a server with the given dependencies.
func New(blogs *blog.Service, composer *pipeline.Composer, cfg *config.Config, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{
		blogs:    blogs,
		composer: composer,
		cfg:      cfg,
		metrics:  monitor.NewCollector(),
		logger:   logger,
	}
}

// Handler returns the API routes.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(corsMiddleware)

	r.Get("/health", s.handleHealth)
	r.Get("/api/status", s.handleStatus)
	r.Get("/api/metrics", s.handleMetrics)

	r.Post("/api/chat", s.handleChat)
	r.Post("/api/contact", s.handleContact)

	r.Route("/api/blogs", func(r chi.Router) {
		r.Get("/", s.handleBlogList)
		r.Get("/admin/all", s.handleBlogListAll)
		r.Post("/", s.handleBlogCreate)
		r.Get("/{idOrSlug}", s.handleBlogGet)
		r.Put("/{id}", s.handleBlogUpdate)
		r.Delete("/{id}", s.handleBlogDelete)
		r.Post("/{id}/reindex", s.handleBlogReindex)
	})

	return r
}

// Start starts the HTTP server and blocks until it stops.
func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:    s.cfg.Addr,
		Handler: s.Handler(),
	}
	s.logger.Info("starting server", zap.String("addr", s.cfg.Addr))
	return s.server.ListenAndServe()
}

// Stop gracefully shuts down the server.
func (s *Server) Stop(ctx context.Context) error {
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}

// The admin UI and the public site are static pages served elsewhere.
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
