package ai

import "context"

// Oracle is a stateless text-in/text-out reasoning service.
// Implementations must be thread-safe for concurrent use.
type Oracle interface {
	// Generate sends a prompt to the reasoning service and returns its raw
	// text response. Returns an error on transport failure, a non-success
	// response, or missing credentials. The response text is never inspected
	// here; callers own any parsing of the returned content.
	Generate(ctx context.Context, prompt string) (string, error)
}

// Embedder generates vector embeddings from text for semantic similarity search.
// Implementations must be thread-safe for concurrent use.
type Embedder interface {
	// EmbedText generates a vector embedding for a single text string.
	// The returned vector represents the semantic meaning of the text.
	// Returns an error if the embedding generation fails.
	EmbedText(ctx context.Context, text string) ([]float32, error)

	// EmbedTexts generates vector embeddings for multiple text strings in a batch.
	// Batch processing is more efficient than calling EmbedText multiple times.
	// The returned slice contains embeddings in the same order as the input texts.
	// Returns an error if any embedding generation fails.
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}

// Provider aggregates AI services for convenient initialization and lifecycle
// management. A provider creates and manages Oracle and Embedder instances,
// ensuring they share configuration and resources appropriately.
type Provider interface {
	// Oracle returns the reasoning service.
	// The returned Oracle is safe for concurrent use.
	Oracle() Oracle

	// Embedder returns the text embedding service.
	// The returned Embedder is safe for concurrent use.
	Embedder() Embedder

	// Close releases resources held by the provider and its services.
	// After Close is called, the provider and its services should not be used.
	Close() error
}
