package blog

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/corvid-labs/corvid/blog/migrations"
	_ "github.com/jackc/pgx/v5/stdlib"
)

// PostgresStore implements Store using PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore connects to PostgreSQL and applies migrations.
func NewPostgresStore(dsn string) (*PostgresStore, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	if err := runPostgresMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &PostgresStore{db: db}, nil
}

func runPostgresMigrations(db *sql.DB) error {
	data, err := migrations.Postgres.ReadFile("postgres/001_init.sql")
	if err != nil {
		return fmt.Errorf("read migration: %w", err)
	}
	_, err = db.Exec(string(data))
	if err != nil {
		return fmt.Errorf("exec migration: %w", err)
	}
	return nil
}

func (s *PostgresStore) CreateBlog(ctx context.Context, b Blog) error {
	tags, err := marshalTags(b.Tags)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO blogs (`+blogColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`,
		b.ID, b.Title, b.Slug, b.Content, b.Excerpt, b.Author, b.Category, tags,
		b.FeaturedImage, b.ReadTime, string(b.Status),
		b.CreatedAt.Unix(), b.UpdatedAt.Unix(), unixOrNil(b.PublishedAt),
	)
	if err != nil {
		return fmt.Errorf("insert blog: %w", err)
	}
	return nil
}

func (s *PostgresStore) UpdateBlog(ctx context.Context, b Blog) error {
	tags, err := marshalTags(b.Tags)
	if err != nil {
		return err
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE blogs SET
			title = $1, slug = $2, content = $3, excerpt = $4, author = $5,
			category = $6, tags = $7, featured_image = $8, read_time = $9,
			status = $10, updated_at = $11, published_at = $12
		WHERE id = $13`,
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

func (s *PostgresStore) DeleteBlog(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM blogs WHERE id = $1`, id)
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

func (s *PostgresStore) GetBlog(ctx context.Context, id string) (Blog, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+blogColumns+` FROM blogs WHERE id = $1`, id)
	return scanBlog(row)
}

func (s *PostgresStore) GetBlogBySlug(ctx context.Context, slug string) (Blog, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+blogColumns+` FROM blogs WHERE slug = $1`, slug)
	return scanBlog(row)
}

func (s *PostgresStore) ListPublished(ctx context.Context, category string) ([]Blog, error) {
	query := `SELECT ` + blogColumns + ` FROM blogs WHERE status = $1`
	args := []any{string(StatusPublished)}
	if category != "" {
		query += ` AND category = $2`
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

func (s *PostgresStore) ListAll(ctx context.Context) ([]Blog, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+blogColumns+` FROM blogs ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("query blogs: %w", err)
	}
	defer rows.Close()
	return scanBlogs(rows)
}

func (s *PostgresStore) SlugExists(ctx context.Context, slug string) (bool, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM blogs WHERE slug = $1`, slug).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("count slug: %w", err)
	}
	return n > 0, nil
}

func (s *PostgresStore) CreateContact(ctx context.Context, c Contact) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO contacts (id, name, email, subject, message, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		c.ID, c.Name, c.Email, c.Subject, c.Message, c.CreatedAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("insert contact: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListContacts(ctx context.Context) ([]Contact, error) {
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

func (s *PostgresStore) Close() error {
	return s.db.Close()
}
