// Copyright 2025 The bookvec Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package upload

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"

	"github.com/medkb/bookvec/ai"
	"github.com/medkb/bookvec/checkpoint"
	"github.com/medkb/bookvec/core"
	"github.com/medkb/bookvec/vectorstore"
)

// Config holds configuration for an upload run.
type Config struct {
	// BatchSize is the number of chunks to embed and upsert per batch
	BatchSize int

	// ReportInterval is how often to report progress (number of chunks)
	ReportInterval int

	// MaxRetries is the maximum number of attempts for failed operations
	MaxRetries int

	// RetryDelay is the fixed pause between attempts
	RetryDelay time.Duration

	// SleepBetween is an optional pause between batches, for rate-limited
	// embedding endpoints
	SleepBetween time.Duration

	// Normalize normalizes embeddings to unit length before upserting
	Normalize bool
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		BatchSize:      100,
		ReportInterval: 100,
		MaxRetries:     3,
		RetryDelay:     5 * time.Second,
	}
}

// Result summarizes a finished run.
type Result struct {
	// Uploaded chunks written to the store this run.
	Uploaded int

	// Resumed chunks skipped because the ledger already had them with an
	// unchanged checksum.
	Resumed int

	// Failed chunks dropped after their batch exhausted its retries.
	Failed int
}

// Uploader orchestrates the upload of a chunk dataset into a vector store.
type Uploader struct {
	embedder ai.Embedder
	store    vectorstore.Store
	ledger   *checkpoint.Ledger
	target   string
	config   *Config
	progress io.Writer

	processor *BatchProcessor
}

// NewUploader creates an uploader.
// ledger may be nil, in which case every chunk uploads unconditionally.
// target names the destination in ledger keys ("pinecone", "pgvector").
// progress: where to write progress output (typically os.Stderr)
func NewUploader(embedder ai.Embedder, store vectorstore.Store, ledger *checkpoint.Ledger, target string, config *Config, progress io.Writer) *Uploader {
	if config == nil {
		config = DefaultConfig()
	}

	return &Uploader{
		embedder:  embedder,
		store:     store,
		ledger:    ledger,
		target:    target,
		config:    config,
		progress:  progress,
		processor: NewBatchProcessor(embedder, store, config.Normalize, config.MaxRetries, config.RetryDelay),
	}
}

// Run uploads records. A batch whose embedding or upsert retries are
// exhausted is logged and dropped; the run continues with the next batch and
// the drop is counted in the result. The store is asked for its stats at the
// end as a cheap verification that the writes landed.
func (u *Uploader) Run(ctx context.Context, records []*core.ChunkRecord) (*Result, error) {
	runID := uuid.NewString()
	total := len(records)

	if total == 0 {
		fmt.Fprintf(u.progress, "No chunks to upload (0 records)\n")
		return &Result{}, nil
	}

	fmt.Fprintf(u.progress, "Starting upload run %s: %d chunks to %s (batch size: %d)\n",
		runID, total, u.target, u.config.BatchSize)

	tracker := NewProgressTracker(u.progress, total, u.config.ReportInterval)
	tracker.Start()

	result := &Result{}
	iterator := NewRecordIterator(records, u.config.BatchSize)

	err := iterator.ForEach(ctx, func(batch []*core.ChunkRecord, startOrdinal int) error {
		pending, ordinals, err := u.filterUploaded(batch, startOrdinal)
		if err != nil {
			return err
		}

		resumed := len(batch) - len(pending)
		result.Resumed += resumed
		tracker.Increment(resumed)

		if len(pending) == 0 {
			return nil
		}

		if err := u.processor.Process(ctx, pending, ordinals); err != nil {
			if ctx.Err() != nil {
				return err
			}
			// Retries exhausted: drop the batch, keep the run alive.
			fmt.Fprintf(u.progress, "\nbatch at ordinal %d failed, skipping %d chunks: %v\n",
				startOrdinal, len(pending), err)
			result.Failed += len(pending)
			tracker.AddSkipped(len(pending))
			return nil
		}

		if err := u.markUploaded(pending, ordinals); err != nil {
			return err
		}

		result.Uploaded += len(pending)
		tracker.Update(result.Uploaded + result.Resumed + result.Failed)

		if u.config.SleepBetween > 0 {
			timer := time.NewTimer(u.config.SleepBetween)
			select {
			case <-ctx.Done():
				timer.Stop()
				return ctx.Err()
			case <-timer.C:
			}
		}
		return nil
	})
	if err != nil {
		return result, err
	}

	tracker.Finish()

	elapsed := tracker.Elapsed()
	fmt.Fprintf(u.progress, "Upload run %s complete. %d uploaded, %d resumed, %d failed in %v\n",
		runID, result.Uploaded, result.Resumed, result.Failed, elapsed.Round(time.Second))

	if stats, err := u.store.Stats(ctx); err == nil {
		fmt.Fprintf(u.progress, "Store now holds %d vectors\n", stats.VectorCount)
	}

	return result, nil
}

// filterUploaded drops records the ledger already has with an unchanged
// checksum, returning the survivors with their file ordinals.
func (u *Uploader) filterUploaded(batch []*core.ChunkRecord, startOrdinal int) ([]*core.ChunkRecord, []int, error) {
	if u.ledger == nil {
		ordinals := make([]int, len(batch))
		for i := range batch {
			ordinals[i] = startOrdinal + i
		}
		return batch, ordinals, nil
	}

	var (
		pending  []*core.ChunkRecord
		ordinals []int
	)
	for i, record := range batch {
		ordinal := startOrdinal + i
		uploaded, err := u.ledger.IsUploaded(u.target, core.VectorID(ordinal), core.ContentChecksum(record.Content))
		if err != nil {
			return nil, nil, fmt.Errorf("check ledger for ordinal %d: %w", ordinal, err)
		}
		if uploaded {
			continue
		}
		pending = append(pending, record)
		ordinals = append(ordinals, ordinal)
	}
	return pending, ordinals, nil
}

func (u *Uploader) markUploaded(records []*core.ChunkRecord, ordinals []int) error {
	if u.ledger == nil {
		return nil
	}

	checksums := make(map[string]uint64, len(records))
	for i, record := range records {
		checksums[core.VectorID(ordinals[i])] = core.ContentChecksum(record.Content)
	}
	return u.ledger.MarkBatch(u.target, checksums)
}
