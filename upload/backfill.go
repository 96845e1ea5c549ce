package upload

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/medkb/bookvec/ai"
	"github.com/medkb/bookvec/vectorstore/pgvector"
)

// BackfillSource yields stored chunks that still need an embedding.
// *pgvector.Store implements it.
type BackfillSource interface {
	MissingEmbeddings(ctx context.Context, limit int) ([]pgvector.PendingRow, error)
	CountMissingEmbeddings(ctx context.Context) (uint64, error)
	UpdateEmbeddings(ctx context.Context, ids []string, vectors [][]float32) error
}

// Backfiller embeds rows that were inserted without an embedding, for
// example after a dimension migration dropped the column.
type Backfiller struct {
	source   BackfillSource
	embedder ai.Embedder
	config   *Config
	progress io.Writer

	// DryRun processes a single batch without writing, to validate the
	// embedding endpoint against production data.
	DryRun bool
}

// NewBackfiller creates a backfiller.
func NewBackfiller(source BackfillSource, embedder ai.Embedder, config *Config, progress io.Writer) *Backfiller {
	if config == nil {
		config = DefaultConfig()
	}

	return &Backfiller{
		source:   source,
		embedder: embedder,
		config:   config,
		progress: progress,
	}
}

// Run embeds and writes back all rows missing an embedding. Batches repeat
// until the source reports none left.
func (b *Backfiller) Run(ctx context.Context) (*Result, error) {
	remaining, err := b.source.CountMissingEmbeddings(ctx)
	if err != nil {
		return nil, fmt.Errorf("count rows to backfill: %w", err)
	}

	if remaining == 0 {
		fmt.Fprintf(b.progress, "No rows need backfilling\n")
		return &Result{}, nil
	}

	fmt.Fprintf(b.progress, "Backfilling %d rows (batch size: %d)\n", remaining, b.config.BatchSize)

	tracker := NewProgressTracker(b.progress, int(remaining), b.config.ReportInterval)
	tracker.Start()

	result := &Result{}
	for {
		select {
		case <-ctx.Done():
			return result, ctx.Err()
		default:
		}

		rows, err := b.source.MissingEmbeddings(ctx, b.config.BatchSize)
		if err != nil {
			return result, fmt.Errorf("select rows to backfill: %w", err)
		}
		if len(rows) == 0 {
			break
		}

		if err := b.processRows(ctx, rows); err != nil {
			return result, err
		}

		if b.DryRun {
			fmt.Fprintf(b.progress, "Dry run: embedded %d rows, nothing written\n", len(rows))
			return result, nil
		}

		result.Uploaded += len(rows)
		tracker.Increment(len(rows))

		if b.config.SleepBetween > 0 {
			timer := time.NewTimer(b.config.SleepBetween)
			select {
			case <-ctx.Done():
				timer.Stop()
				return result, ctx.Err()
			case <-timer.C:
			}
		}
	}

	tracker.Finish()
	fmt.Fprintf(b.progress, "Backfill complete. %d rows embedded in %v\n",
		result.Uploaded, tracker.Elapsed().Round(time.Second))
	return result, nil
}

func (b *Backfiller) processRows(ctx context.Context, rows []pgvector.PendingRow) error {
	texts := make([]string, len(rows))
	ids := make([]string, len(rows))
	for i, row := range rows {
		texts[i] = row.Content
		ids[i] = row.ID
	}

	var embeddings [][]float32
	err := Retry(ctx, func() error {
		var err error
		embeddings, err = b.embedder.EmbedTexts(ctx, texts)
		return err
	}, b.config.MaxRetries, b.config.RetryDelay)
	if err != nil {
		return fmt.Errorf("failed to generate embeddings after %d attempts: %w", b.config.MaxRetries, err)
	}

	if len(embeddings) != len(rows) {
		return fmt.Errorf("%w: expected %d, got %d", ErrEmbeddingCountMismatch, len(rows), len(embeddings))
	}

	if b.config.Normalize {
		for i := range embeddings {
			embeddings[i] = NormalizeVector(embeddings[i])
		}
	}

	if b.DryRun {
		return nil
	}

	err = Retry(ctx, func() error {
		return b.source.UpdateEmbeddings(ctx, ids, embeddings)
	}, b.config.MaxRetries, b.config.RetryDelay)
	if err != nil {
		return fmt.Errorf("failed to write %d embeddings after %d attempts: %w", len(ids), b.config.MaxRetries, err)
	}
	return nil
}
