// Package pinecone implements the vector store on a Pinecone serverless
// index. Chunk text travels as a bounded metadata preview; the full content
// stays in the dataset CSV.
package pinecone
