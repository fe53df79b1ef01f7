package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/corvid-labs/corvid/blog"
	"github.com/corvid-labs/corvid/pipeline"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	services := map[string]string{
		"gemini":   configuredLabel(len(s.cfg.GeminiKeys) > 0),
		"pinecone": configuredLabel(s.cfg.PineconeAPIKey != "" && s.cfg.PineconeIndexURL != ""),
		"database": "configured",
	}

	status := "ok"
	if !s.cfg.AssistantAvailable() {
		status = "degraded"
	}

	s.respondJSON(w, http.StatusOK, StatusResponse{
		Status:    status,
		Assistant: s.cfg.AssistantAvailable(),
		Services:  services,
	})
}

func configuredLabel(ok bool) string {
	if ok {
		return "configured"
	}
	return "not configured"
}

func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, s.metrics.Snapshot())
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		s.respondError(w, http.StatusBadRequest, "message is required")
		return
	}

	defer s.metrics.Observe("chat", time.Now(), nil)
	answer := s.composer.Answer(r.Context(), pipeline.AskRequest{
		Query:       req.Message,
		Scope:       req.BlogID,
		PageURL:     req.PageURL,
		PageContent: req.PageContent,
	})
	s.respondJSON(w, http.StatusOK, ChatResponse{Response: answer})
}

func (s *Server) handleBlogList(w http.ResponseWriter, r *http.Request) {
	blogs, err := s.blogs.ListPublished(r.Context(), r.URL.Query().Get("category"))
	if err != nil {
		s.logger.Error("list blogs failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, emptyIfNil(blogs))
}

func (s *Server) handleBlogListAll(w http.ResponseWriter, r *http.Request) {
	blogs, err := s.blogs.ListAll(r.Context())
	if err != nil {
		s.logger.Error("list all blogs failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, emptyIfNil(blogs))
}

func (s *Server) handleBlogGet(w http.ResponseWriter, r *http.Request) {
	b, err := s.blogs.Get(r.Context(), chi.URLParam(r, "idOrSlug"))
	if err != nil {
		if errors.Is(err, blog.ErrNotFound) {
			s.respondError(w, http.StatusNotFound, "blog not found")
			return
		}
		s.logger.Error("get blog failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, b)
}

func (s *Server) handleBlogCreate(w http.ResponseWriter, r *http.Request) {
	var req BlogRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	b, err := s.blogs.Create(r.Context(), req.toBlog())
	if err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.respondJSON(w, http.StatusCreated, b)
}

func (s *Server) handleBlogUpdate(w http.ResponseWriter, r *http.Request) {
	var req BlogRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	b := req.toBlog()
	b.ID = chi.URLParam(r, "id")

	updated, err := s.blogs.Update(r.Context(), b)
	if err != nil {
		if errors.Is(err, blog.ErrNotFound) {
			s.respondError(w, http.StatusNotFound, "blog not found")
			return
		}
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, updated)
}

func (s *Server) handleBlogDelete(w http.ResponseWriter, r *http.Request) {
	err := s.blogs.Delete(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, blog.ErrNotFound) {
			s.respondError(w, http.StatusNotFound, "blog not found")
			return
		}
		s.logger.Error("delete blog failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (s *Server) handleBlogReindex(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	res, err := s.blogs.Reindex(r.Context(), chi.URLParam(r, "id"))
	s.metrics.Observe("reindex", start, err)
	if err != nil {
		if errors.Is(err, blog.ErrNotFound) {
			s.respondError(w, http.StatusNotFound, "blog not found")
			return
		}
		s.logger.Error("reindex failed", zap.Error(err))
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, ReindexResponse{
		Status:          string(res.Status),
		ChunksProcessed: res.ChunksProcessed,
		DroppedChunks:   res.DroppedChunks,
	})
}

func (s *Server) handleContact(w http.ResponseWriter, r *http.Request) {
	var req ContactRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	c, err := s.blogs.SubmitContact(r.Context(), blog.Contact{
		Name:    req.Name,
		Email:   req.Email,
		Subject: req.Subject,
		Message: req.Message,
	})
	if err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.respondJSON(w, http.StatusCreated, c)
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, map[string]string{"error": message})
}

func emptyIfNil(blogs []blog.Blog) []blog.Blog {
	if blogs == nil {
		return []blog.Blog{}
	}
	return blogs
}
