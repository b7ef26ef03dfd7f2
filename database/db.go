package database

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib"
)

type PostgresStore struct {
	DB        *sql.DB
	dimension int
}

func NewPostgresStore(connStr string, embeddingDimension int) (*PostgresStore, error) {
	db, err := sql.Open("pgx", connStr)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		return nil, err
	}
	if embeddingDimension <= 0 {
		embeddingDimension = 1024
	}
	return &PostgresStore{DB: db, dimension: embeddingDimension}, nil
}

// EnsureSchema creates the required extensions, tables, and indexes if they
// do not already exist. The corpus itself is loaded offline; this service
// only reads it.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	stmts := []string{
		`CREATE EXTENSION IF NOT EXISTS vector`,
		`CREATE EXTENSION IF NOT EXISTS pg_trgm`,
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS movies (
            id TEXT PRIMARY KEY,
            title TEXT NOT NULL,
            overview TEXT NOT NULL DEFAULT '',
            genres TEXT[] NOT NULL DEFAULT '{}'::TEXT[],
            embedding vector(%d),
            search_tsv tsvector GENERATED ALWAYS AS (
                setweight(to_tsvector('english', coalesce(title, '')), 'A') ||
                setweight(to_tsvector('english', coalesce(overview, '')), 'B')
            ) STORED
        )`, s.dimension),
		`CREATE INDEX IF NOT EXISTS idx_movies_search_tsv ON movies USING GIN (search_tsv)`,
		`CREATE INDEX IF NOT EXISTS idx_movies_title_trgm ON movies USING GIN (lower(title) gin_trgm_ops)`,
		`CREATE INDEX IF NOT EXISTS idx_movies_genres ON movies USING GIN (genres)`,
		`CREATE INDEX IF NOT EXISTS idx_movies_embedding ON movies
            USING ivfflat (embedding vector_cosine_ops) WITH (lists = 100)`,
	}

	for _, stmt := range stmts {
		if _, err := s.DB.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to ensure schema: %w", err)
		}
	}
	return nil
}

// Ping verifies database connectivity for health checks.
func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.DB.PingContext(ctx)
}

func (s *PostgresStore) Close() error {
	return s.DB.Close()
}
