// Package blog persists articles and contact submissions and drives the
// publication flow that keeps the vector index in sync with published
// content.
package blog

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when an entity does not exist.
var ErrNotFound = errors.New("not found")

// Status is an article's publication state.
type Status string

const (
	StatusDraft     Status = "draft"
	StatusPublished Status = "published"
	StatusArchived  Status = "archived"
)

// Valid reports whether s is a known publication state.
func (s Status) Valid() bool {
	switch s {
	case StatusDraft, StatusPublished, StatusArchived:
		return true
	}
	return false
}

// Blog is one article.
type Blog struct {
	ID            string     `json:"id"`
	Title         string     `json:"title"`
	Slug          string     `json:"slug"`
	Content       string     `json:"content"`
	Excerpt       string     `json:"excerpt"`
	Author        string     `json:"author"`
	Category      string     `json:"category"`
	Tags          []string   `json:"tags"`
	FeaturedImage string     `json:"featured_image"`
	ReadTime      string     `json:"read_time"`
	Status        Status     `json:"status"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
	PublishedAt   *time.Time `json:"published_at,omitempty"`
}

// Published reports whether the article is visible to readers.
func (b Blog) Published() bool {
	return b.Status == StatusPublished
}

// Contact is a message submitted through the contact form.
type Contact struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Subject   string    `json:"subject"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}

// Store defines article and contact persistence.
type Store interface {
	CreateBlog(ctx context.Context, b Blog) error
	UpdateBlog(ctx context.Context, b Blog) error
	DeleteBlog(ctx context.Context, id string) error
	GetBlog(ctx context.Context, id string) (Blog, error)
	GetBlogBySlug(ctx context.Context, slug string) (Blog, error)

	// ListPublished returns published articles, newest first, optionally
	// filtered by category.
	ListPublished(ctx context.Context, category string) ([]Blog, error)

	// ListAll returns every article regardless of status, newest first.
	ListAll(ctx context.Context) ([]Blog, error)

	SlugExists(ctx context.Context, slug string) (bool, error)

	CreateContact(ctx context.Context, c Contact) error
	ListContacts(ctx context.Context) ([]Contact, error)

	Close() error
}
