package pinecone

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/pinecone-io/go-pinecone/pinecone"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/medkb/bookvec/vectorstore"
)

// Config holds Pinecone connection settings.
type Config struct {
	APIKey    string
	IndexName string
	Namespace string

	// Dimension and Region are used only when the index has to be created.
	Dimension int
	Region    string
}

// Store implements vectorstore.Store against a Pinecone serverless index.
type Store struct {
	client    *pinecone.Client
	conn      *pinecone.IndexConnection
	dimension int32
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

// New connects to the configured index, creating a serverless index on AWS
// when none exists yet.
func New(ctx context.Context, cfg Config, opts ...Option) (*Store, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("pinecone: api key is required")
	}
	if cfg.IndexName == "" {
		return nil, fmt.Errorf("pinecone: index name is required")
	}

	client, err := pinecone.NewClient(pinecone.NewClientParams{ApiKey: cfg.APIKey})
	if err != nil {
		return nil, fmt.Errorf("pinecone: create client: %w", err)
	}

	store := &Store{client: client}
	for _, opt := range opts {
		opt(store)
	}
	if store.logger == nil {
		store.logger = slog.Default()
	}
	store.logger = store.logger.With("component", "pinecone-store")

	// List rather than describe-and-guess: a describe failure can be an
	// auth or network problem, and those must not trigger index creation.
	indexes, err := client.ListIndexes(ctx)
	if err != nil {
		return nil, fmt.Errorf("pinecone: list indexes: %w", err)
	}
	idx := indexByName(indexes, cfg.IndexName)
	if idx == nil {
		idx, err = store.createIndex(ctx, cfg)
		if err != nil {
			return nil, err
		}
	}

	conn, err := client.Index(pinecone.NewIndexConnParams{
		Host:      idx.Host,
		Namespace: cfg.Namespace,
	})
	if err != nil {
		return nil, fmt.Errorf("pinecone: connect to index %s: %w", cfg.IndexName, err)
	}
	store.conn = conn
	store.dimension = idx.Dimension

	store.logger.Info("connected to index",
		"index", cfg.IndexName,
		"namespace", cfg.Namespace,
		"dimension", idx.Dimension)
	return store, nil
}

func indexByName(indexes []*pinecone.Index, name string) *pinecone.Index {
	for _, idx := range indexes {
		if idx != nil && idx.Name == name {
			return idx
		}
	}
	return nil
}

func (s *Store) createIndex(ctx context.Context, cfg Config) (*pinecone.Index, error) {
	if cfg.Dimension <= 0 {
		return nil, fmt.Errorf("pinecone: index %s does not exist and no dimension was given to create it", cfg.IndexName)
	}

	region := cfg.Region
	if region == "" {
		region = "us-east-1"
	}

	s.logger.Info("creating serverless index",
		"index", cfg.IndexName,
		"dimension", cfg.Dimension,
		"region", region)

	idx, err := s.client.CreateServerlessIndex(ctx, &pinecone.CreateServerlessIndexRequest{
		Name:      cfg.IndexName,
		Dimension: int32(cfg.Dimension),
		Metric:    pinecone.Cosine,
		Cloud:     pinecone.Aws,
		Region:    region,
	})
	if err != nil {
		return nil, fmt.Errorf("pinecone: create index %s: %w", cfg.IndexName, err)
	}
	return idx, nil
}

// Upsert writes items into the index. Pinecone replaces vectors that share
// an id, so re-uploading is idempotent.
func (s *Store) Upsert(ctx context.Context, items []vectorstore.Item) error {
	if len(items) == 0 {
		return nil
	}

	vectors := make([]*pinecone.Vector, 0, len(items))
	for _, item := range items {
		if item.ID == "" {
			return vectorstore.ErrMissingID
		}
		if len(item.Vector) == 0 {
			return vectorstore.ErrEmptyVector
		}
		if int32(len(item.Vector)) != s.dimension {
			return fmt.Errorf("%w: %s has %d values, index dimension is %d",
				vectorstore.ErrDimensionMismatch, item.ID, len(item.Vector), s.dimension)
		}

		metadata, err := structpb.NewStruct(item.Metadata)
		if err != nil {
			return fmt.Errorf("pinecone: encode metadata for %s: %w", item.ID, err)
		}
		vectors = append(vectors, &pinecone.Vector{
			Id:       item.ID,
			Values:   item.Vector,
			Metadata: metadata,
		})
	}

	count, err := s.conn.UpsertVectors(ctx, vectors)
	if err != nil {
		return fmt.Errorf("pinecone: upsert %d vectors: %w", len(vectors), err)
	}

	s.logger.Debug("upserted vectors", "count", count)
	return nil
}

// Stats reports the index vector count.
func (s *Store) Stats(ctx context.Context) (*vectorstore.Stats, error) {
	res, err := s.conn.DescribeIndexStats(ctx)
	if err != nil {
		return nil, fmt.Errorf("pinecone: describe index stats: %w", err)
	}
	return &vectorstore.Stats{
		VectorCount: uint64(res.TotalVectorCount),
		Dimension:   int(res.Dimension),
	}, nil
}

// Query returns the topK nearest vectors with their metadata.
func (s *Store) Query(ctx context.Context, vector []float32, topK int) ([]vectorstore.Match, error) {
	res, err := s.conn.QueryByVectorValues(ctx, &pinecone.QueryByVectorValuesRequest{
		Vector:          vector,
		TopK:            uint32(topK),
		IncludeMetadata: true,
	})
	if err != nil {
		return nil, fmt.Errorf("pinecone: query: %w", err)
	}

	matches := make([]vectorstore.Match, 0, len(res.Matches))
	for _, m := range res.Matches {
		match := vectorstore.Match{
			ID:    m.Vector.Id,
			Score: m.Score,
		}
		if m.Vector.Metadata != nil {
			match.Metadata = m.Vector.Metadata.AsMap()
		}
		matches = append(matches, match)
	}
	return matches, nil
}

// Close is a no-op; the underlying client holds no long-lived resources
// beyond its HTTP connections.
func (s *Store) Close() error {
	return nil
}
