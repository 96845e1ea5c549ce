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


package core

import (
	"fmt"
	"unicode/utf8"
)

// ValidateChunkRecord validates a ChunkRecord according to domain rules.
//
// Validation rules:
//   - Content must not be empty
//   - ChunkNumber must be 1 or greater
//   - ContentLength must equal the rune count of Content
//
// NOT validated:
//   - Hierarchy fields (a record legitimately carries whatever the last
//     matched heading was, including empty fields before the first header)
//   - Summary (best-effort, may be empty)
func ValidateChunkRecord(record *ChunkRecord) error {
	if record == nil {
		return fmt.Errorf("%w: record is nil", ErrInvalidChunkRecord)
	}

	if record.Content == "" {
		return fmt.Errorf("%w: %w", ErrInvalidChunkRecord, ErrEmptyContent)
	}

	if record.ChunkNumber < 1 {
		return fmt.Errorf("%w: %w", ErrInvalidChunkRecord, ErrInvalidChunkNumber)
	}

	if record.ContentLength != utf8.RuneCountInString(record.Content) {
		return fmt.Errorf("%w: %w", ErrInvalidChunkRecord, ErrContentLengthMismatch)
	}

	return nil
}
