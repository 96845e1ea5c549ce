package pgvector

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	pgv "github.com/pgvector/pgvector-go"
	pgxvec "github.com/pgvector/pgvector-go/pgx"

	"github.com/medkb/bookvec/vectorstore"
)

// Config holds Postgres connection settings.
type Config struct {
	// DatabaseURL is a pgx connection string or URL.
	DatabaseURL string

	// Table name; DefaultTable when empty.
	Table string

	// Dimension of the embedding column, used by EnsureSchema.
	Dimension int
}

// Store implements vectorstore.Store on Postgres/pgvector.
type Store struct {
	pool      *pgxpool.Pool
	table     string
	dimension int
	logger    *slog.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger. Defaults to slog.Default.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		s.logger = logger
	}
}

// New connects to Postgres and ensures the chunk table exists. The pgvector
// type codecs are registered on every pooled connection.
func New(ctx context.Context, cfg Config, opts ...Option) (*Store, error) {
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("pgvector: database url is required")
	}
	if cfg.Dimension <= 0 {
		return nil, fmt.Errorf("pgvector: dimension is required")
	}

	poolCfg, err := pgxpool.ParseConfig(cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("pgvector: parse database url: %w", err)
	}
	poolCfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		return pgxvec.RegisterTypes(ctx, conn)
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("pgvector: connect: %w", err)
	}

	store := &Store{
		pool:      pool,
		table:     cfg.Table,
		dimension: cfg.Dimension,
	}
	for _, opt := range opts {
		opt(store)
	}
	if store.table == "" {
		store.table = DefaultTable
	}
	if store.logger == nil {
		store.logger = slog.Default()
	}
	store.logger = store.logger.With("component", "pgvector-store")

	if err := store.EnsureSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	store.logger.Info("connected", "table", store.table, "dimension", store.dimension)
	return store, nil
}

// Upsert writes items in a single batched round trip. Conflicting ids are
// fully replaced, embedding included.
func (s *Store) Upsert(ctx context.Context, items []vectorstore.Item) error {
	if len(items) == 0 {
		return nil
	}

	sql := fmt.Sprintf(`
INSERT INTO %s (
	id, book_title, book_edition,
	chapter_number, chapter_title, section_number, section_title,
	subsection_number, subsection_title, chunk_number,
	content, summary, metadata, embedding
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
ON CONFLICT (id) DO UPDATE SET
	book_title = EXCLUDED.book_title,
	book_edition = EXCLUDED.book_edition,
	chapter_number = EXCLUDED.chapter_number,
	chapter_title = EXCLUDED.chapter_title,
	section_number = EXCLUDED.section_number,
	section_title = EXCLUDED.section_title,
	subsection_number = EXCLUDED.subsection_number,
	subsection_title = EXCLUDED.subsection_title,
	chunk_number = EXCLUDED.chunk_number,
	content = EXCLUDED.content,
	summary = EXCLUDED.summary,
	metadata = EXCLUDED.metadata,
	embedding = EXCLUDED.embedding`, s.table)

	batch := &pgx.Batch{}
	for _, item := range items {
		if item.ID == "" {
			return vectorstore.ErrMissingID
		}
		if len(item.Vector) == 0 {
			return vectorstore.ErrEmptyVector
		}
		if len(item.Vector) != s.dimension {
			return fmt.Errorf("%w: %s has %d values, column is vector(%d)",
				vectorstore.ErrDimensionMismatch, item.ID, len(item.Vector), s.dimension)
		}

		metadata, err := json.Marshal(item.Metadata)
		if err != nil {
			return fmt.Errorf("pgvector: encode metadata for %s: %w", item.ID, err)
		}

		batch.Queue(sql,
			item.ID,
			metaString(item.Metadata, "book_title"),
			metaString(item.Metadata, "book_edition"),
			metaString(item.Metadata, "chapter_number"),
			metaString(item.Metadata, "chapter_title"),
			metaString(item.Metadata, "section_number"),
			metaString(item.Metadata, "section_title"),
			metaString(item.Metadata, "subsection_number"),
			metaString(item.Metadata, "subsection_title"),
			metaInt(item.Metadata, "chunk_number"),
			item.Content,
			metaString(item.Metadata, "summary"),
			metadata,
			pgv.NewVector(item.Vector),
		)
	}

	results := s.pool.SendBatch(ctx, batch)
	defer results.Close()

	for i := range items {
		if _, err := results.Exec(); err != nil {
			return fmt.Errorf("pgvector: upsert %s: %w", items[i].ID, err)
		}
	}

	s.logger.Debug("upserted rows", "count", len(items))
	return nil
}

// Stats reports row count; Dimension is the configured column width.
func (s *Store) Stats(ctx context.Context) (*vectorstore.Stats, error) {
	var count uint64
	sql := fmt.Sprintf("SELECT count(*) FROM %s", s.table)
	if err := s.pool.QueryRow(ctx, sql).Scan(&count); err != nil {
		return nil, fmt.Errorf("pgvector: count rows: %w", err)
	}
	return &vectorstore.Stats{VectorCount: count, Dimension: s.dimension}, nil
}

// Query returns the topK rows nearest to vector by cosine distance. Rows
// without an embedding are excluded.
func (s *Store) Query(ctx context.Context, vector []float32, topK int) ([]vectorstore.Match, error) {
	sql := fmt.Sprintf(`
SELECT id, (1 - (embedding <=> $1))::float4 AS score, metadata
FROM %s
WHERE embedding IS NOT NULL
ORDER BY embedding <=> $1
LIMIT $2`, s.table)

	rows, err := s.pool.Query(ctx, sql, pgv.NewVector(vector), topK)
	if err != nil {
		return nil, fmt.Errorf("pgvector: query: %w", err)
	}
	defer rows.Close()

	return scanMatches(rows)
}

// Close releases the connection pool.
func (s *Store) Close() error {
	s.pool.Close()
	return nil
}

func scanMatches(rows pgx.Rows) ([]vectorstore.Match, error) {
	var matches []vectorstore.Match
	for rows.Next() {
		var (
			match vectorstore.Match
			raw   []byte
		)
		if err := rows.Scan(&match.ID, &match.Score, &raw); err != nil {
			return nil, fmt.Errorf("pgvector: scan match: %w", err)
		}
		if len(raw) > 0 {
			if err := json.Unmarshal(raw, &match.Metadata); err != nil {
				return nil, fmt.Errorf("pgvector: decode metadata for %s: %w", match.ID, err)
			}
		}
		matches = append(matches, match)
	}
	return matches, rows.Err()
}

func metaString(m map[string]any, key string) string {
	if v, ok := m[key].(string); ok {
		return v
	}
	return ""
}

func metaInt(m map[string]any, key string) int {
	switch v := m[key].(type) {
	case int:
		return v
	case float64: // json round trips numbers as float64
		return int(v)
	}
	return 0
}
