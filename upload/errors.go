package upload

import "errors"

var (
	// ErrInvalidMaxAttempts is returned when maxAttempts is <= 0
	ErrInvalidMaxAttempts = errors.New("maxAttempts must be greater than 0")

	// ErrEmbeddingCountMismatch is returned when the embedder responds with
	// a different number of vectors than texts sent.
	ErrEmbeddingCountMismatch = errors.New("embedding count does not match input count")
)
