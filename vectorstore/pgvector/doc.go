// Package pgvector implements the vector store on Postgres with the
// pgvector extension. Beyond plain vector similarity it exposes the richer
// search surface a relational backend affords: full-text search over chunk
// content, trigram fuzzy matching, metadata containment filters, and a
// hybrid mode that prefilters by full-text rank before vector reranking.
// It also supports backfilling embeddings for rows inserted without one.
package pgvector
