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

	"github.com/medkb/bookvec/core"
)

const (
	// DefaultBatchSize is the default number of chunks per embedding batch
	DefaultBatchSize = 100
)

// RecordIterator walks a chunk dataset in batches, tracking the file
// ordinal each batch starts at. Ordinals are what vector ids derive from,
// so batches must be visited strictly in file order.
type RecordIterator struct {
	records   []*core.ChunkRecord
	batchSize int
}

// NewRecordIterator creates an iterator over records.
// batchSize: number of records per batch (must be > 0)
func NewRecordIterator(records []*core.ChunkRecord, batchSize int) *RecordIterator {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}

	return &RecordIterator{
		records:   records,
		batchSize: batchSize,
	}
}

// Total returns the number of records the iterator covers.
func (it *RecordIterator) Total() int {
	return len(it.records)
}

// ForEach calls fn for each batch with the ordinal of the batch's first
// record. Iteration stops on the first error from fn. Context cancellation
// is checked between batches.
func (it *RecordIterator) ForEach(ctx context.Context, fn func(records []*core.ChunkRecord, startOrdinal int) error) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	for i := 0; i < len(it.records); i += it.batchSize {
		end := i + it.batchSize
		if end > len(it.records) {
			end = len(it.records)
		}

		if err := fn(it.records[i:end], i); err != nil {
			return err
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
	}

	return nil
}
