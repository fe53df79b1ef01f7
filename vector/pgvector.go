package vector

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib"
)

// PgVectorStore stores embeddings in PostgreSQL with the pgvector extension,
// for deployments that keep everything in one database.
type PgVectorStore struct {
	db        *sql.DB
	dimension int
}

// Filterable metadata fields map to JSONB keys; anything else is rejected to
// keep the generated SQL bounded.
var pgFilterFields = map[string]bool{
	"document_id": true,
	"title":       true,
	"source":      true,
}

// NewPgVectorStore creates a pgvector-backed store. dimension must match the
// embedding model's output size.
func NewPgVectorStore(dsn string, dimension int) (*PgVectorStore, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	store := &PgVectorStore{db: db, dimension: dimension}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return store, nil
}

func (s *PgVectorStore) migrate() error {
	migrations := []string{
		`CREATE EXTENSION IF NOT EXISTS vector`,
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS chunks (
			id TEXT PRIMARY KEY,
			embedding vector(%d),
			metadata JSONB NOT NULL DEFAULT '{}',
			created_at TIMESTAMPTZ DEFAULT NOW()
		)`, s.dimension),
		`CREATE INDEX IF NOT EXISTS idx_chunks_embedding ON chunks USING hnsw (embedding vector_cosine_ops)`,
		`CREATE INDEX IF NOT EXISTS idx_chunks_document_id ON chunks ((metadata->>'document_id'))`,
	}

	for _, m := range migrations {
		if _, err := s.db.Exec(m); err != nil {
			return fmt.Errorf("execute migration: %w", err)
		}
	}
	return nil
}

// Upsert writes records, replacing any with the same ID.
func (s *PgVectorStore) Upsert(ctx context.Context, records []Record) error {
	for _, r := range records {
		metadata, err := json.Marshal(r.Metadata)
		if err != nil {
			return fmt.Errorf("marshal metadata: %w", err)
		}

		_, err = s.db.ExecContext(ctx, `
			INSERT INTO chunks (id, embedding, metadata)
			VALUES ($1, $2, $3)
			ON CONFLICT (id) DO UPDATE SET
				embedding = EXCLUDED.embedding,
				metadata = EXCLUDED.metadata
		`, r.ID, formatEmbedding(r.Values), metadata)
		if err != nil {
			return fmt.Errorf("upsert record %s: %w", r.ID, err)
		}
	}
	return nil
}

// DeleteByFilter removes all records whose metadata matches the filter.
func (s *PgVectorStore) DeleteByFilter(ctx context.Context, filter Filter) error {
	where, args, err := filterClauses(filter, 1)
	if err != nil {
		return err
	}
	if len(where) == 0 {
		return fmt.Errorf("pgvector: refusing to delete without filter criteria")
	}

	query := "DELETE FROM chunks WHERE " + strings.Join(where, " AND ")
	_, err = s.db.ExecContext(ctx, query, args...)
	return err
}

// Query returns the topK nearest records by cosine distance.
func (s *PgVectorStore) Query(ctx context.Context, vec []float64, topK int, filter Filter) ([]Match, error) {
	args := []any{formatEmbedding(vec)}
	query := `SELECT id, metadata, 1 - (embedding <=> $1) AS score FROM chunks`

	where, filterArgs, err := filterClauses(filter, 2)
	if err != nil {
		return nil, err
	}
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
		args = append(args, filterArgs...)
	}

	query += fmt.Sprintf(" ORDER BY embedding <=> $1 LIMIT %d", topK)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	defer rows.Close()

	var matches []Match
	for rows.Next() {
		var m Match
		var metadataBytes []byte
		if err := rows.Scan(&m.ID, &metadataBytes, &m.Score); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		if err := json.Unmarshal(metadataBytes, &m.Metadata); err != nil {
			return nil, fmt.Errorf("unmarshal metadata: %w", err)
		}
		matches = append(matches, m)
	}
	return matches, rows.Err()
}

// Close closes the database connection.
func (s *PgVectorStore) Close() error {
	return s.db.Close()
}

func filterClauses(filter Filter, firstArg int) ([]string, []any, error) {
	var where []string
	var args []any
	n := firstArg
	for field, value := range filter {
		if !pgFilterFields[field] {
			return nil, nil, fmt.Errorf("pgvector: unsupported filter field %q", field)
		}
		where = append(where, fmt.Sprintf("metadata->>'%s' = $%d", field, n))
		args = append(args, value)
		n++
	}
	return where, args, nil
}

// formatEmbedding converts a float slice to pgvector text format: "[0.1,0.2]".
func formatEmbedding(embedding []float64) string {
	parts := make([]string, len(embedding))
	for i, v := range embedding {
		parts[i] = fmt.Sprintf("%g", v)
	}
	return "[" + strings.Join(parts, ",") + "]"
}
