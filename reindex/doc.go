// Package reindex rebuilds the stored chunk embeddings with a new or
// updated embedding model.
//
// This package supports batch processing of documents, progress tracking,
// retry logic with exponential backoff, and vector normalization to ensure
// compatibility with cosine similarity search.
package reindex
