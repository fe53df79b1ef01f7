package blog

import (
	"fmt"
	"strings"
)

// NewStore creates a blog store based on the DSN.
// - Empty DSN: SQLite at data/corvid.db
// - postgres:// or postgresql://: PostgreSQL
// - Anything else: SQLite at the specified path
func NewStore(dsn string) (Store, error) {
	if dsn == "" {
		return NewSQLiteStore("data/corvid.db")
	}

	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
		s, err := NewPostgresStore(dsn)
		if err != nil {
			return nil, fmt.Errorf("postgres: %w", err)
		}
		return s, nil
	}

	return NewSQLiteStore(dsn)
}
