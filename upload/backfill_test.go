package upload

import (
	"bytes"
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medkb/bookvec/ai/mock"
	"github.com/medkb/bookvec/vectorstore/pgvector"
)

// fakeSource simulates a table with rows missing embeddings.
type fakeSource struct {
	pending []pgvector.PendingRow
	updated map[string][]float32
}

func newFakeSource(n int) *fakeSource {
	s := &fakeSource{updated: make(map[string][]float32)}
	for i := 0; i < n; i++ {
		s.pending = append(s.pending, pgvector.PendingRow{
			ID:      fmt.Sprintf("chunk_%d", i),
			Content: fmt.Sprintf("Row %d awaiting an embedding.", i),
		})
	}
	return s
}

func (s *fakeSource) MissingEmbeddings(ctx context.Context, limit int) ([]pgvector.PendingRow, error) {
	if limit > len(s.pending) {
		limit = len(s.pending)
	}
	return s.pending[:limit], nil
}

func (s *fakeSource) CountMissingEmbeddings(ctx context.Context) (uint64, error) {
	return uint64(len(s.pending)), nil
}

func (s *fakeSource) UpdateEmbeddings(ctx context.Context, ids []string, vectors [][]float32) error {
	for i, id := range ids {
		s.updated[id] = vectors[i]
	}
	// Updated rows no longer match the NULL-embedding filter.
	s.pending = s.pending[len(ids):]
	return nil
}

func TestBackfiller_Run(t *testing.T) {
	source := newFakeSource(25)
	var out bytes.Buffer

	b := NewBackfiller(source, mock.NewMockEmbedder(), testUploadConfig(), &out)
	result, err := b.Run(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 25, result.Uploaded)
	assert.Len(t, source.updated, 25)
	assert.Empty(t, source.pending)
}

func TestBackfiller_NothingToDo(t *testing.T) {
	source := newFakeSource(0)
	var out bytes.Buffer

	b := NewBackfiller(source, mock.NewMockEmbedder(), testUploadConfig(), &out)
	result, err := b.Run(context.Background())

	require.NoError(t, err)
	assert.Zero(t, result.Uploaded)
	assert.Contains(t, out.String(), "No rows need backfilling")
}

func TestBackfiller_DryRun(t *testing.T) {
	source := newFakeSource(25)
	embedder := mock.NewMockEmbedder()
	var out bytes.Buffer

	b := NewBackfiller(source, embedder, testUploadConfig(), &out)
	b.DryRun = true

	result, err := b.Run(context.Background())
	require.NoError(t, err)

	assert.Zero(t, result.Uploaded)
	assert.Empty(t, source.updated, "dry run must not write")
	assert.Len(t, source.pending, 25)
	assert.Equal(t, 1, embedder.CallCount(), "dry run embeds exactly one batch")
}

func TestBackfiller_Normalizes(t *testing.T) {
	source := newFakeSource(1)
	embedder := mock.NewMockEmbedder()
	embedder.EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
		return [][]float32{{3, 4}}, nil
	}

	cfg := testUploadConfig()
	cfg.Normalize = true
	cfg.RetryDelay = time.Millisecond

	var out bytes.Buffer
	b := NewBackfiller(source, embedder, cfg, &out)

	_, err := b.Run(context.Background())
	require.NoError(t, err)

	vector := source.updated["chunk_0"]
	require.Len(t, vector, 2)
	assert.InDelta(t, 0.6, vector[0], 1e-6)
	assert.InDelta(t, 0.8, vector[1], 1e-6)
}
