package blog

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/corvid-labs/corvid/pipeline"
)

// Indexer is the ingestion surface the publication flow drives. It is
// satisfied by pipeline.Ingestor.
type Indexer interface {
	Ingest(ctx context.Context, doc pipeline.Document) (pipeline.IngestResult, error)
	Remove(ctx context.Context, documentID string) error
}

// Service coordinates article persistence with the vector index: publishing
// indexes, unpublishing and deleting remove, edits to published content
// re-index. Index failures are logged, never surfaced to the author; the
// article save is the source of truth and the index catches up on the next
// edit or an explicit reindex.
type Service struct {
	store   Store
	indexer Indexer
	logger  *zap.Logger
	now     func() time.Time
}

// NewService creates the publication service.
func NewService(store Store, indexer Indexer, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{store: store, indexer: indexer, logger: logger, now: time.Now}
}

// Create validates and saves a new article, deriving ID, slug, read time and
// timestamps. A published article is indexed immediately.
func (s *Service) Create(ctx context.Context, b Blog) (Blog, error) {
	if strings.TrimSpace(b.Title) == "" {
		return Blog{}, fmt.Errorf("blog: title is required")
	}
	if b.Status == "" {
		b.Status = StatusDraft
	}
	if !b.Status.Valid() {
		return Blog{}, fmt.Errorf("blog: invalid status %q", b.Status)
	}

	slug, err := UniqueSlug(ctx, s.store, b.Title)
	if err != nil {
		return Blog{}, err
	}

	now := s.now().UTC()
	b.ID = uuid.NewString()
	b.Slug = slug
	b.CreatedAt = now
	b.UpdatedAt = now
	if b.ReadTime == "" {
		b.ReadTime = estimateReadTime(b.Content)
	}
	if b.Published() {
		b.PublishedAt = &now
	}

	if err := s.store.CreateBlog(ctx, b); err != nil {
		return Blog{}, fmt.Errorf("create blog: %w", err)
	}

	if b.Published() {
		s.index(ctx, b)
	}
	return b, nil
}

// Update saves changes to an existing article and keeps the index in step:
// newly published or edited-while-published articles are re-indexed,
// unpublished ones are removed.
func (s *Service) Update(ctx context.Context, b Blog) (Blog, error) {
	prev, err := s.store.GetBlog(ctx, b.ID)
	if err != nil {
		return Blog{}, err
	}

	if strings.TrimSpace(b.Title) == "" {
		return Blog{}, fmt.Errorf("blog: title is required")
	}
	if b.Status == "" {
		b.Status = prev.Status
	}
	if !b.Status.Valid() {
		return Blog{}, fmt.Errorf("blog: invalid status %q", b.Status)
	}

	b.Slug = prev.Slug
	if b.Title != prev.Title {
		slug, err := UniqueSlug(ctx, s.store, b.Title)
		if err != nil {
			return Blog{}, err
		}
		b.Slug = slug
	}

	now := s.now().UTC()
	b.CreatedAt = prev.CreatedAt
	b.UpdatedAt = now
	b.PublishedAt = prev.PublishedAt
	if b.Published() && prev.PublishedAt == nil {
		b.PublishedAt = &now
	}
	if b.ReadTime == "" {
		b.ReadTime = estimateReadTime(b.Content)
	}

	if err := s.store.UpdateBlog(ctx, b); err != nil {
		return Blog{}, fmt.Errorf("update blog: %w", err)
	}

	switch {
	case b.Published() && (!prev.Published() || contentChanged(prev, b)):
		s.index(ctx, b)
	case !b.Published() && prev.Published():
		s.deindex(ctx, b.ID)
	}
	return b, nil
}

// Delete removes an article and its vectors.
func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.store.DeleteBlog(ctx, id); err != nil {
		return err
	}
	s.deindex(ctx, id)
	return nil
}

// Reindex rebuilds the vectors for one published article.
func (s *Service) Reindex(ctx context.Context, id string) (pipeline.IngestResult, error) {
	b, err := s.store.GetBlog(ctx, id)
	if err != nil {
		return pipeline.IngestResult{}, err
	}
	if !b.Published() {
		return pipeline.IngestResult{}, fmt.Errorf("blog: %q is not published", id)
	}
	return s.indexer.Ingest(ctx, document(b))
}

// Get returns an article by ID, falling back to slug lookup. Published
// pages link articles by slug while the admin UI uses IDs.
func (s *Service) Get(ctx context.Context, idOrSlug string) (Blog, error) {
	b, err := s.store.GetBlog(ctx, idOrSlug)
	if err == nil {
		return b, nil
	}
	return s.store.GetBlogBySlug(ctx, idOrSlug)
}

// ListPublished returns reader-visible articles, optionally by category.
func (s *Service) ListPublished(ctx context.Context, category string) ([]Blog, error) {
	return s.store.ListPublished(ctx, category)
}

// ListAll returns every article for the admin surface.
func (s *Service) ListAll(ctx context.Context) ([]Blog, error) {
	return s.store.ListAll(ctx)
}

// SubmitContact validates and stores a contact form submission.
func (s *Service) SubmitContact(ctx context.Context, c Contact) (Contact, error) {
	if strings.TrimSpace(c.Name) == "" || strings.TrimSpace(c.Email) == "" || strings.TrimSpace(c.Message) == "" {
		return Contact{}, fmt.Errorf("blog: contact requires name, email and message")
	}
	c.ID = uuid.NewString()
	c.CreatedAt = s.now().UTC()
	if err := s.store.CreateContact(ctx, c); err != nil {
		return Contact{}, fmt.Errorf("create contact: %w", err)
	}
	return c, nil
}

func (s *Service) index(ctx context.Context, b Blog) {
	if _, err := s.indexer.Ingest(ctx, document(b)); err != nil {
		s.logger.Error("indexing article failed",
			zap.String("blog_id", b.ID),
			zap.Error(err))
	}
}

func (s *Service) deindex(ctx context.Context, id string) {
	if err := s.indexer.Remove(ctx, id); err != nil {
		s.logger.Error("removing article vectors failed",
			zap.String("blog_id", id),
			zap.Error(err))
	}
}

func document(b Blog) pipeline.Document {
	return pipeline.Document{
		ID:      b.ID,
		Title:   b.Title,
		Content: b.Content,
		Source:  b.Slug,
	}
}

func contentChanged(prev, next Blog) bool {
	return prev.Content != next.Content || prev.Title != next.Title || prev.Slug != next.Slug
}

// estimateReadTime assumes roughly 200 words per minute.
func estimateReadTime(content string) string {
	words := len(strings.Fields(content))
	minutes := (words + 199) / 200
	if minutes < 1 {
		minutes = 1
	}
	return fmt.Sprintf("%d min read", minutes)
}
