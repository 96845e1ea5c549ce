package upload

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medkb/bookvec/ai/mock"
	"github.com/medkb/bookvec/vectorstore"
)

func TestBatchProcessor_Process(t *testing.T) {
	ctx := context.Background()
	embedder := mock.NewMockEmbedder()
	store := vectorstore.NewMemory()

	records := testRecords(3)
	bp := NewBatchProcessor(embedder, store, false, 3, time.Millisecond)

	require.NoError(t, bp.Process(ctx, records, []int{0, 1, 2}))

	stats, err := store.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(3), stats.VectorCount)

	item, ok := store.Get("chunk_1")
	require.True(t, ok)
	assert.Equal(t, records[1].Content, item.Content)
	assert.Equal(t, "1", item.Metadata["chapter_number"])
	assert.Equal(t, 2, item.Metadata["chunk_number"])
	assert.Equal(t, records[1].Content, item.Metadata["content_preview"],
		"short content previews as itself")
}

func TestBatchProcessor_NonContiguousOrdinals(t *testing.T) {
	ctx := context.Background()
	embedder := mock.NewMockEmbedder()
	store := vectorstore.NewMemory()

	records := testRecords(2)
	bp := NewBatchProcessor(embedder, store, false, 3, time.Millisecond)

	require.NoError(t, bp.Process(ctx, records, []int{4, 9}))

	_, ok := store.Get("chunk_4")
	assert.True(t, ok)
	_, ok = store.Get("chunk_9")
	assert.True(t, ok)
}

func TestBatchProcessor_Normalize(t *testing.T) {
	ctx := context.Background()
	embedder := mock.NewMockEmbedder()
	embedder.EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
		return [][]float32{{3, 4}}, nil
	}
	store := vectorstore.NewMemory()

	bp := NewBatchProcessor(embedder, store, true, 3, time.Millisecond)
	require.NoError(t, bp.Process(ctx, testRecords(1), []int{0}))

	item, ok := store.Get("chunk_0")
	require.True(t, ok)
	assert.InDelta(t, 0.6, item.Vector[0], 1e-6)
	assert.InDelta(t, 0.8, item.Vector[1], 1e-6)
}

func TestBatchProcessor_RetriesEmbedding(t *testing.T) {
	ctx := context.Background()
	embedder := mock.NewMockEmbedder()

	calls := 0
	embedder.EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
		calls++
		if calls < 3 {
			return nil, errors.New("model warming up")
		}
		return [][]float32{{1, 0}}, nil
	}
	store := vectorstore.NewMemory()

	bp := NewBatchProcessor(embedder, store, false, 5, time.Millisecond)
	require.NoError(t, bp.Process(ctx, testRecords(1), []int{0}))
	assert.Equal(t, 3, calls)
}

func TestBatchProcessor_ExhaustedRetries(t *testing.T) {
	ctx := context.Background()
	embedder := mock.NewMockEmbedder()
	embedder.EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
		return nil, errors.New("endpoint down")
	}
	store := vectorstore.NewMemory()

	bp := NewBatchProcessor(embedder, store, false, 2, time.Millisecond)
	err := bp.Process(ctx, testRecords(1), []int{0})
	require.Error(t, err)

	stats, statsErr := store.Stats(ctx)
	require.NoError(t, statsErr)
	assert.Zero(t, stats.VectorCount, "nothing is upserted when embedding fails")
}

func TestBatchProcessor_CountMismatch(t *testing.T) {
	ctx := context.Background()
	embedder := mock.NewMockEmbedder()
	embedder.EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
		return [][]float32{{1}}, nil // one vector for two texts
	}

	bp := NewBatchProcessor(embedder, vectorstore.NewMemory(), false, 1, time.Millisecond)
	err := bp.Process(ctx, testRecords(2), []int{0, 1})
	assert.ErrorIs(t, err, ErrEmbeddingCountMismatch)
}

func TestBatchProcessor_EmptyBatch(t *testing.T) {
	bp := NewBatchProcessor(mock.NewMockEmbedder(), vectorstore.NewMemory(), false, 3, time.Millisecond)
	require.NoError(t, bp.Process(context.Background(), nil, nil))
}
