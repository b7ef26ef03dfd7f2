package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/lib/pq"
	"github.com/pgvector/pgvector-go"
)

// MovieHit is a corpus row surfaced by one of the retrieval queries, together
// with that backend's raw score. Vector and BM25 scores live on different
// scales and are never compared directly.
type MovieHit struct {
	ID       string
	Title    string
	Genres   []string
	Overview string
	Score    float64
}

// QueryVector returns the topK nearest neighbors of the query embedding by
// cosine similarity, optionally restricted to rows sharing at least one of
// the given genres. Scores are similarities (higher is closer).
func (s *PostgresStore) QueryVector(ctx context.Context, embedding []float32, topK int, genres []string) ([]MovieHit, error) {
	if topK <= 0 {
		return nil, nil
	}

	var builder strings.Builder
	builder.WriteString(`SELECT id, title, genres, overview, 1 - (embedding <=> $1) AS score
        FROM movies
        WHERE embedding IS NOT NULL`)
	args := []any{pgvector.NewVector(embedding)}

	if len(genres) > 0 {
		args = append(args, pq.Array(genres))
		builder.WriteString(fmt.Sprintf(" AND genres && $%d", len(args)))
	}

	args = append(args, topK)
	builder.WriteString(fmt.Sprintf(" ORDER BY embedding <=> $1 LIMIT $%d", len(args)))

	rows, err := s.DB.QueryContext(ctx, builder.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("vector query: %w", err)
	}
	defer rows.Close()

	return scanMovieHits(rows)
}

// SearchBM25 runs a weighted full-text query over title and overview (title
// counts roughly double via its 'A' weight) and returns up to k hits with
// ts_rank_cd relevance scores. An optional genre filter is applied as an
// exact overlap condition.
func (s *PostgresStore) SearchBM25(ctx context.Context, query string, genres []string, k int) ([]MovieHit, error) {
	if k <= 0 || strings.TrimSpace(query) == "" {
		return nil, nil
	}

	var builder strings.Builder
	builder.WriteString(`SELECT id, title, genres, overview,
            ts_rank_cd('{0.1, 0.2, 0.4, 1.0}', search_tsv, q) AS score
        FROM movies, websearch_to_tsquery('english', $1) q
        WHERE search_tsv @@ q`)
	args := []any{query}

	if len(genres) > 0 {
		args = append(args, pq.Array(genres))
		builder.WriteString(fmt.Sprintf(" AND genres && $%d", len(args)))
	}

	args = append(args, k)
	builder.WriteString(fmt.Sprintf(" ORDER BY score DESC, title ASC LIMIT $%d", len(args)))

	rows, err := s.DB.QueryContext(ctx, builder.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("bm25 query: %w", err)
	}
	defer rows.Close()

	return scanMovieHits(rows)
}

// FindBestTitle resolves a noisy title phrase to the single best-matching
// corpus row. Three strategies are OR'd with a fixed boost order: exact
// (case-insensitive) title equality wins outright, then a phrase match over
// the title field, then trigram similarity for fuzzy hits. Returns nil when
// nothing matches.
func (s *PostgresStore) FindBestTitle(ctx context.Context, phrase string) (*MovieHit, error) {
	phrase = strings.TrimSpace(phrase)
	if phrase == "" {
		return nil, nil
	}

	const query = `SELECT id, title, genres, overview,
            (CASE WHEN lower(title) = lower($1) THEN 10.0 ELSE 0.0 END)
            + (CASE WHEN to_tsvector('english', title) @@ phraseto_tsquery('english', $1)
                THEN 3.0 * ts_rank(to_tsvector('english', title), phraseto_tsquery('english', $1))
                ELSE 0.0 END)
            + similarity(lower(title), lower($1)) AS score
        FROM movies
        WHERE lower(title) = lower($1)
           OR to_tsvector('english', title) @@ phraseto_tsquery('english', $1)
           OR similarity(lower(title), lower($1)) > 0.3
        ORDER BY score DESC, title ASC
        LIMIT 1`

	var hit MovieHit
	var genres pq.StringArray
	row := s.DB.QueryRowContext(ctx, query, phrase)
	if err := row.Scan(&hit.ID, &hit.Title, &genres, &hit.Overview, &hit.Score); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("title lookup: %w", err)
	}
	hit.Genres = []string(genres)
	return &hit, nil
}

// UpsertMovie stores or replaces a corpus row. Retrieval is read-only; this
// exists for seeding fixtures and operational backfills.
func (s *PostgresStore) UpsertMovie(ctx context.Context, id, title, overview string, genres []string, embedding []float32) error {
	const query = `
        INSERT INTO movies (id, title, overview, genres, embedding)
        VALUES ($1, $2, $3, $4, $5)
        ON CONFLICT (id)
        DO UPDATE SET title = EXCLUDED.title, overview = EXCLUDED.overview,
            genres = EXCLUDED.genres, embedding = EXCLUDED.embedding
    `
	var vec any
	if len(embedding) > 0 {
		vec = pgvector.NewVector(embedding)
	}
	if _, err := s.DB.ExecContext(ctx, query, id, title, overview, pq.Array(genres), vec); err != nil {
		return fmt.Errorf("failed to upsert movie: %w", err)
	}
	return nil
}

func scanMovieHits(rows *sql.Rows) ([]MovieHit, error) {
	var hits []MovieHit
	for rows.Next() {
		var hit MovieHit
		var genres pq.StringArray
		if err := rows.Scan(&hit.ID, &hit.Title, &genres, &hit.Overview, &hit.Score); err != nil {
			return nil, fmt.Errorf("scan movie row: %w", err)
		}
		hit.Genres = []string(genres)
		hits = append(hits, hit)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate movie rows: %w", err)
	}
	return hits, nil
}
