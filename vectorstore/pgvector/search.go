package pgvector

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
	pgv "github.com/pgvector/pgvector-go"

	"github.com/medkb/bookvec/vectorstore"
)

// SearchFullText ranks rows against a websearch-style query string using the
// generated tsvector column.
func (s *Store) SearchFullText(ctx context.Context, query string, topK int) ([]vectorstore.Match, error) {
	sql := fmt.Sprintf(`
SELECT id, ts_rank(content_tsv, q)::float4 AS score, metadata
FROM %s, websearch_to_tsquery('english', $1) q
WHERE content_tsv @@ q
ORDER BY score DESC
LIMIT $2`, s.table)

	rows, err := s.pool.Query(ctx, sql, query, topK)
	if err != nil {
		return nil, fmt.Errorf("pgvector: full-text search: %w", err)
	}
	defer rows.Close()

	return scanMatches(rows)
}

// SearchTrigram ranks rows by trigram similarity to query. Useful for
// misspelled drug and condition names that defeat full-text stemming.
func (s *Store) SearchTrigram(ctx context.Context, query string, topK int) ([]vectorstore.Match, error) {
	sql := fmt.Sprintf(`
SELECT id, similarity(content, $1)::float4 AS score, metadata
FROM %s
WHERE content %% $1
ORDER BY score DESC
LIMIT $2`, s.table)

	rows, err := s.pool.Query(ctx, sql, query, topK)
	if err != nil {
		return nil, fmt.Errorf("pgvector: trigram search: %w", err)
	}
	defer rows.Close()

	return scanMatches(rows)
}

// SearchHybrid prefilters candidates by full-text match, then reranks the
// survivors by vector distance. The candidate pool is topK*10 so a row that
// ranks poorly on keywords but well semantically still surfaces.
func (s *Store) SearchHybrid(ctx context.Context, query string, vector []float32, topK int) ([]vectorstore.Match, error) {
	sql := fmt.Sprintf(`
WITH candidates AS (
	SELECT id, content, metadata, embedding
	FROM %s, websearch_to_tsquery('english', $1) q
	WHERE content_tsv @@ q AND embedding IS NOT NULL
	ORDER BY ts_rank(content_tsv, q) DESC
	LIMIT $3 * 10
)
SELECT id, (1 - (embedding <=> $2))::float4 AS score, metadata
FROM candidates
ORDER BY embedding <=> $2
LIMIT $3`, s.table)

	rows, err := s.pool.Query(ctx, sql, query, pgv.NewVector(vector), topK)
	if err != nil {
		return nil, fmt.Errorf("pgvector: hybrid search: %w", err)
	}
	defer rows.Close()

	return scanMatches(rows)
}

// FilterByMetadata returns rows whose metadata contains the given
// key/values, jsonb containment semantics.
func (s *Store) FilterByMetadata(ctx context.Context, filter map[string]any, limit int) ([]vectorstore.Match, error) {
	encoded, err := json.Marshal(filter)
	if err != nil {
		return nil, fmt.Errorf("pgvector: encode filter: %w", err)
	}

	sql := fmt.Sprintf(`
SELECT id, 1.0::float4 AS score, metadata
FROM %s
WHERE metadata @> $1
ORDER BY chapter_number, section_number, chunk_number
LIMIT $2`, s.table)

	rows, err := s.pool.Query(ctx, sql, encoded, limit)
	if err != nil {
		return nil, fmt.Errorf("pgvector: metadata filter: %w", err)
	}
	defer rows.Close()

	return scanMatches(rows)
}

// PendingRow is a stored chunk awaiting an embedding.
type PendingRow struct {
	ID      string
	Content string
}

// MissingEmbeddings returns up to limit rows whose embedding column is NULL,
// in insertion-stable id order so interrupted backfills resume predictably.
func (s *Store) MissingEmbeddings(ctx context.Context, limit int) ([]PendingRow, error) {
	sql := fmt.Sprintf(`
SELECT id, content
FROM %s
WHERE embedding IS NULL
ORDER BY id
LIMIT $1`, s.table)

	rows, err := s.pool.Query(ctx, sql, limit)
	if err != nil {
		return nil, fmt.Errorf("pgvector: select missing embeddings: %w", err)
	}
	defer rows.Close()

	var pending []PendingRow
	for rows.Next() {
		var row PendingRow
		if err := rows.Scan(&row.ID, &row.Content); err != nil {
			return nil, fmt.Errorf("pgvector: scan pending row: %w", err)
		}
		pending = append(pending, row)
	}
	return pending, rows.Err()
}

// CountMissingEmbeddings reports how many rows still need a backfill.
func (s *Store) CountMissingEmbeddings(ctx context.Context) (uint64, error) {
	var count uint64
	sql := fmt.Sprintf("SELECT count(*) FROM %s WHERE embedding IS NULL", s.table)
	if err := s.pool.QueryRow(ctx, sql).Scan(&count); err != nil {
		return 0, fmt.Errorf("pgvector: count missing embeddings: %w", err)
	}
	return count, nil
}

// UpdateEmbeddings writes backfilled vectors by id in one batched round
// trip. ids and vectors correspond by index.
func (s *Store) UpdateEmbeddings(ctx context.Context, ids []string, vectors [][]float32) error {
	if len(ids) != len(vectors) {
		return fmt.Errorf("pgvector: %d ids but %d vectors", len(ids), len(vectors))
	}
	if len(ids) == 0 {
		return nil
	}

	sql := fmt.Sprintf("UPDATE %s SET embedding = $2 WHERE id = $1", s.table)

	batch := &pgx.Batch{}
	for i, id := range ids {
		batch.Queue(sql, id, pgv.NewVector(vectors[i]))
	}

	results := s.pool.SendBatch(ctx, batch)
	defer results.Close()

	for _, id := range ids {
		if _, err := results.Exec(); err != nil {
			return fmt.Errorf("pgvector: update embedding for %s: %w", id, err)
		}
	}

	s.logger.Debug("backfilled embeddings", "count", len(ids))
	return nil
}
