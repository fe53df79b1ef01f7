package blog

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/corvid-labs/corvid/blog/migrations"
	_ "modernc.org/sqlite"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (or creates) a SQLite database at dsn and applies
// migrations.
func NewSQLiteStore(dsn string) (*SQLiteStore, error) {
	if dsn == "" {
		dsn = "data/corvid.db"
	}

	dir := filepath.Dir(dsn)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create data directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if err := runSQLiteMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

func runSQLiteMigrations(db *sql.DB) error {
	data, err := migrations.SQLite.ReadFile("sqlite/001_init.sql")
	if err != nil {
		return fmt.Errorf("read migration: %w", err)
	}
	_, err = db.Exec(string(data))
	if err != nil {
		return fmt.Errorf("exec migration: %w", err)
	}
	return nil
}

const blogColumns = `id, title, slug, content, excerpt, author, category, tags,
	featured_image, read_time, status, created_at, updated_at, published_at`

func (s *SQLiteStore) CreateBlog(ctx context.Context, b Blog) error {
	tags, err := marshalTags(b.Tags)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO blogs (`+blogColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		b.ID, b.Title, b.Slug, b.Content, b.Excerpt, b.Author, b.Category, tags,
		b.FeaturedImage, b.ReadTime, string(b.Status),
		b.CreatedAt.Unix(), b.UpdatedAt.Unix(), unixOrNil(b.PublishedAt),
	)
	if err != nil {
		return fmt.Errorf("insert blog: %w", err)
	}
	return nil
}

func (s *SQLiteStore) UpdateBlog(ctx context.Context, b Blog) error {
	tags, err := marshalTags(b.Tags)
	if err != nil {
		return err
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE blogs SET
			title = ?, slug = ?, content = ?, excerpt = ?, author = ?,
			category = ?, tags = ?, featured_image = ?, read_time = ?,
			status = ?, updated_at = ?, published_at = ?
		WHERE id = ?`,
		b.Title, b.Slug, b.Content, b.Excerpt, b.Author,
		b.Category, tags, b.FeaturedImage, b.ReadTime,
		string(b.Status), b.UpdatedAt.Unix(), unixOrNil(b.PublishedAt),
		b.ID,
	)
	if err != nil {
		return fmt.Errorf("update blog: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update blog: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SQLiteStore) DeleteBlog(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM blogs WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete blog: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete blog: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SQLiteStore) GetBlog(ctx context.Context, id string) (Blog, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+blogColumns+` FROM blogs WHERE id = ?`, id)
	return scanBlog(row)
}

func (s *SQLiteStore) GetBlogBySlug(ctx context.Context, slug string) (Blog, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+blogColumns+` FROM blogs WHERE slug = ?`, slug)
	return scanBlog(row)
}

func (s *SQLiteStore) ListPublished(ctx context.Context, category string) ([]Blog, error) {
	query := `SELECT ` + blogColumns + ` FROM blogs WHERE status = ?`
	args := []any{string(StatusPublished)}
	if category != "" {
		query += ` AND category = ?`
		args = append(args, category)
	}
	query += ` ORDER BY created_at DESC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query blogs: %w", err)
	}
	defer rows.Close()
	return scanBlogs(rows)
}

func (s *SQLiteStore) ListAll(ctx context.Context) ([]Blog, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+blogColumns+` FROM blogs ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("query blogs: %w", err)
	}
	defer rows.Close()
	return scanBlogs(rows)
}

func (s *SQLiteStore) SlugExists(ctx context.Context, slug string) (bool, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM blogs WHERE slug = ?`, slug).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("count slug: %w", err)
	}
	return n > 0, nil
}

func (s *SQLiteStore) CreateContact(ctx context.Context, c Contact) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO contacts (id, name, email, subject, message, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		c.ID, c.Name, c.Email, c.Subject, c.Message, c.CreatedAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("insert contact: %w", err)
	}
	return nil
}

func (s *SQLiteStore) ListContacts(ctx context.Context) ([]Contact, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, email, subject, message, created_at
		FROM contacts ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("query contacts: %w", err)
	}
	defer rows.Close()

	var contacts []Contact
	for rows.Next() {
		var c Contact
		var created int64
		if err := rows.Scan(&c.ID, &c.Name, &c.Email, &c.Subject, &c.Message, &created); err != nil {
			return nil, fmt.Errorf("scan contact: %w", err)
		}
		c.CreatedAt = time.Unix(created, 0).UTC()
		contacts = append(contacts, c)
	}
	return contacts, rows.Err()
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// rowScanner covers both sql.Row and sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanBlog(row rowScanner) (Blog, error) {
	var b Blog
	var tagsJSON, status string
	var created, updated int64
	var published sql.NullInt64

	err := row.Scan(
		&b.ID, &b.Title, &b.Slug, &b.Content, &b.Excerpt, &b.Author, &b.Category, &tagsJSON,
		&b.FeaturedImage, &b.ReadTime, &status, &created, &updated, &published,
	)
	if err == sql.ErrNoRows {
		return b, ErrNotFound
	}
	if err != nil {
		return b, fmt.Errorf("scan blog: %w", err)
	}

	if err := json.Unmarshal([]byte(tagsJSON), &b.Tags); err != nil {
		return b, fmt.Errorf("unmarshal tags: %w", err)
	}
	b.Status = Status(status)
	b.CreatedAt = time.Unix(created, 0).UTC()
	b.UpdatedAt = time.Unix(updated, 0).UTC()
	if published.Valid {
		t := time.Unix(published.Int64, 0).UTC()
		b.PublishedAt = &t
	}
	return b, nil
}

func scanBlogs(rows *sql.Rows) ([]Blog, error) {
	var blogs []Blog
	for rows.Next() {
		b, err := scanBlog(rows)
		if err != nil {
			return nil, err
		}
		blogs = append(blogs, b)
	}
	return blogs, rows.Err()
}

func marshalTags(tags []string) (string, error) {
	if tags == nil {
		tags = []string{}
	}
	data, err := json.Marshal(tags)
	if err != nil {
		return "", fmt.Errorf("marshal tags: %w", err)
	}
	return string(data), nil
}

func unixOrNil(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.Unix()
}
