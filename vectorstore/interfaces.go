package vectorstore

import "context"

// Item is one embedded chunk ready for storage. Metadata carries the
// hierarchy fields and a bounded content preview; pgvector additionally
// stores the full Content in its own column for full-text search.
type Item struct {
	ID       string
	Content  string
	Vector   []float32
	Metadata map[string]any
}

// Stats summarizes a store for upload verification.
type Stats struct {
	VectorCount uint64
	Dimension   int
}

// Match is one similarity-search result.
type Match struct {
	ID       string
	Score    float32
	Metadata map[string]any
}

// Store is a destination for embedded chunks.
// Implementations must be safe for concurrent use.
type Store interface {
	// Upsert writes items, replacing any that share an id with a stored
	// item.
	Upsert(ctx context.Context, items []Item) error

	// Stats reports the stored vector count and dimension.
	Stats(ctx context.Context) (*Stats, error)

	// Query returns the topK nearest stored items to vector, best first.
	Query(ctx context.Context, vector []float32, topK int) ([]Match, error)

	// Close releases the underlying connection.
	Close() error
}
