package upload

import (
	"context"
	"fmt"
	"time"

	"github.com/medkb/bookvec/ai"
	"github.com/medkb/bookvec/core"
	"github.com/medkb/bookvec/vectorstore"
)

// previewLimit bounds the content excerpt carried in item metadata. Pinecone
// caps metadata size per vector; the full text lives in the dataset (and, for
// pgvector, in the content column).
const previewLimit = 500

// BatchProcessor embeds a batch of chunk records and upserts the result.
type BatchProcessor struct {
	embedder   ai.Embedder
	store      vectorstore.Store
	normalize  bool
	maxRetries int
	retryDelay time.Duration
}

// NewBatchProcessor creates a new batch processor.
// normalize: normalize embeddings to unit length before upserting
// maxRetries: maximum number of attempts for embedding and upsert calls
// retryDelay: fixed pause between attempts
func NewBatchProcessor(embedder ai.Embedder, store vectorstore.Store, normalize bool, maxRetries int, retryDelay time.Duration) *BatchProcessor {
	return &BatchProcessor{
		embedder:   embedder,
		store:      store,
		normalize:  normalize,
		maxRetries: maxRetries,
		retryDelay: retryDelay,
	}
}

// Process embeds records and upserts them under ids derived from their file
// ordinals. ordinals corresponds to records by index; the two may be a
// non-contiguous subset of the dataset when the checkpoint ledger filtered
// already-uploaded chunks out. Both the embedding call and the upsert are
// retried.
func (bp *BatchProcessor) Process(ctx context.Context, records []*core.ChunkRecord, ordinals []int) error {
	if len(records) == 0 {
		return nil
	}
	if len(ordinals) != len(records) {
		return fmt.Errorf("%d records but %d ordinals", len(records), len(ordinals))
	}

	texts := make([]string, len(records))
	for i, record := range records {
		texts[i] = record.Content
	}

	var embeddings [][]float32
	err := Retry(ctx, func() error {
		var err error
		embeddings, err = bp.embedder.EmbedTexts(ctx, texts)
		return err
	}, bp.maxRetries, bp.retryDelay)
	if err != nil {
		return fmt.Errorf("failed to generate embeddings after %d attempts: %w", bp.maxRetries, err)
	}

	if len(embeddings) != len(records) {
		return fmt.Errorf("%w: expected %d, got %d", ErrEmbeddingCountMismatch, len(records), len(embeddings))
	}

	items := make([]vectorstore.Item, len(records))
	for i, record := range records {
		vector := embeddings[i]
		if bp.normalize {
			vector = NormalizeVector(vector)
		}
		items[i] = buildItem(record, ordinals[i], vector)
	}

	err = Retry(ctx, func() error {
		return bp.store.Upsert(ctx, items)
	}, bp.maxRetries, bp.retryDelay)
	if err != nil {
		return fmt.Errorf("failed to upsert %d items after %d attempts: %w", len(items), bp.maxRetries, err)
	}

	return nil
}

// buildItem turns a chunk record into a store item. Metadata mirrors the
// dataset columns, with content replaced by a bounded preview.
func buildItem(record *core.ChunkRecord, ordinal int, vector []float32) vectorstore.Item {
	return vectorstore.Item{
		ID:      core.VectorID(ordinal),
		Content: record.Content,
		Vector:  vector,
		Metadata: map[string]any{
			"book_title":        record.BookTitle,
			"book_edition":      record.BookEdition,
			"chapter_number":    record.ChapterNumber,
			"chapter_title":     record.ChapterTitle,
			"section_number":    record.SectionNumber,
			"section_title":     record.SectionTitle,
			"subsection_number": record.SubsectionNumber,
			"subsection_title":  record.SubsectionTitle,
			"chunk_number":      record.ChunkNumber,
			"summary":           record.Summary,
			"content_preview":   core.ContentPreview(record.Content, previewLimit),
			"content_length":    record.ContentLength,
		},
	}
}
