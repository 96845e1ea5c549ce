package pgvector

import (
	"context"
	"fmt"
)

// DefaultTable is the chunk table name.
const DefaultTable = "nelson_book_contents"

// schemaTemplate creates the chunk table. Hierarchy fields are real columns
// so they can be filtered without unpacking jsonb; the full metadata map is
// kept alongside for containment queries. content_tsv is generated from
// content, so full-text search needs no trigger maintenance.
const schemaTemplate = `
CREATE EXTENSION IF NOT EXISTS vector;
CREATE EXTENSION IF NOT EXISTS pg_trgm;

CREATE TABLE IF NOT EXISTS %[1]s (
	id                text PRIMARY KEY,
	book_title        text NOT NULL DEFAULT '',
	book_edition      text NOT NULL DEFAULT '',
	chapter_number    text NOT NULL DEFAULT '',
	chapter_title     text NOT NULL DEFAULT '',
	section_number    text NOT NULL DEFAULT '',
	section_title     text NOT NULL DEFAULT '',
	subsection_number text NOT NULL DEFAULT '',
	subsection_title  text NOT NULL DEFAULT '',
	chunk_number      integer NOT NULL DEFAULT 0,
	content           text NOT NULL,
	summary           text NOT NULL DEFAULT '',
	metadata          jsonb NOT NULL DEFAULT '{}',
	embedding         vector(%[2]d),
	content_tsv       tsvector GENERATED ALWAYS AS (to_tsvector('english', coalesce(content, ''))) STORED,
	created_at        timestamptz NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS %[1]s_tsv_idx ON %[1]s USING gin (content_tsv);
CREATE INDEX IF NOT EXISTS %[1]s_trgm_idx ON %[1]s USING gin (content gin_trgm_ops);
CREATE INDEX IF NOT EXISTS %[1]s_meta_idx ON %[1]s USING gin (metadata jsonb_path_ops);
CREATE INDEX IF NOT EXISTS %[1]s_chapter_idx ON %[1]s (chapter_number, section_number, chunk_number);
`

// ivfflat needs data to pick centroids from; it is created separately so a
// fresh empty table does not fail.
const embeddingIndexTemplate = `
CREATE INDEX IF NOT EXISTS %[1]s_embedding_idx ON %[1]s
	USING ivfflat (embedding vector_cosine_ops) WITH (lists = 100);
`

// EnsureSchema creates the extensions, table, and lookup indexes.
func (s *Store) EnsureSchema(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, fmt.Sprintf(schemaTemplate, s.table, s.dimension)); err != nil {
		return fmt.Errorf("pgvector: ensure schema for %s: %w", s.table, err)
	}
	return nil
}

// EnsureEmbeddingIndex creates the ivfflat index. Call it after the first
// sizable upload; ivfflat built on an empty table chooses poor centroids.
func (s *Store) EnsureEmbeddingIndex(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, fmt.Sprintf(embeddingIndexTemplate, s.table)); err != nil {
		return fmt.Errorf("pgvector: ensure embedding index for %s: %w", s.table, err)
	}
	return nil
}

// MigrateDimension replaces the embedding column with one of a different
// dimension. Existing embeddings are dropped and must be backfilled; there
// is no cast between vector sizes.
func (s *Store) MigrateDimension(ctx context.Context, dimension int) error {
	if dimension < 1 {
		return fmt.Errorf("pgvector: dimension must be positive, got %d", dimension)
	}

	ddl := fmt.Sprintf(`
ALTER TABLE %[1]s DROP COLUMN IF EXISTS embedding;
ALTER TABLE %[1]s ADD COLUMN embedding vector(%[2]d);
`, s.table, dimension)

	if _, err := s.pool.Exec(ctx, ddl); err != nil {
		return fmt.Errorf("pgvector: migrate %s to dimension %d: %w", s.table, dimension, err)
	}

	s.dimension = dimension
	s.logger.Warn("embedding column recreated, all embeddings need backfill",
		"table", s.table,
		"dimension", dimension)
	return nil
}
