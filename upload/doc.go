// Package upload moves a chunk dataset into a vector store: it embeds chunk
// content in batches, optionally normalizes the vectors, and upserts the
// results under deterministic ids.
//
// The package supports bounded retry with a fixed delay, skip-and-continue
// on batches that exhaust their retries, progress tracking, a checkpoint
// ledger so interrupted runs resume, and backfilling embeddings for rows
// stored without one.
package upload
