package vectorstore

import (
	"context"
	"math"
	"sort"
	"sync"
)

// Memory is an in-process Store used by tests and dry runs. Query scores by
// cosine similarity, matching the metric both production backends are
// configured with.
type Memory struct {
	mu     sync.RWMutex
	items  map[string]Item
	closed bool
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{items: make(map[string]Item)}
}

// Upsert stores items, replacing any previously stored under the same id.
func (m *Memory) Upsert(ctx context.Context, items []Item) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrStoreClosed
	}

	for _, item := range items {
		if item.ID == "" {
			return ErrMissingID
		}
		if len(item.Vector) == 0 {
			return ErrEmptyVector
		}
		m.items[item.ID] = item
	}
	return nil
}

// Stats reports the stored count and the dimension of the first vector seen.
func (m *Memory) Stats(ctx context.Context) (*Stats, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return nil, ErrStoreClosed
	}

	stats := &Stats{VectorCount: uint64(len(m.items))}
	for _, item := range m.items {
		stats.Dimension = len(item.Vector)
		break
	}
	return stats, nil
}

// Query returns the topK items nearest to vector by cosine similarity.
func (m *Memory) Query(ctx context.Context, vector []float32, topK int) ([]Match, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return nil, ErrStoreClosed
	}

	matches := make([]Match, 0, len(m.items))
	for _, item := range m.items {
		matches = append(matches, Match{
			ID:       item.ID,
			Score:    cosineSimilarity(vector, item.Vector),
			Metadata: item.Metadata,
		})
	}

	sort.Slice(matches, func(i, j int) bool {
		if matches[i].Score != matches[j].Score {
			return matches[i].Score > matches[j].Score
		}
		return matches[i].ID < matches[j].ID // stable order for equal scores
	})

	if topK > 0 && len(matches) > topK {
		matches = matches[:topK]
	}
	return matches, nil
}

// Get returns a stored item by id. Test helper; the Store interface has no
// point lookup.
func (m *Memory) Get(id string) (Item, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	item, ok := m.items[id]
	return item, ok
}

// Close marks the store closed. Further operations fail with ErrStoreClosed.
func (m *Memory) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

func cosineSimilarity(a, b []float32) float32 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return float32(dot / (math.Sqrt(normA) * math.Sqrt(normB)))
}
