package reindex

import (
	"context"
	"fmt"
	"time"

	"github.com/poiesic/chronicle/ai"
	"github.com/poiesic/chronicle/core"
	"github.com/poiesic/chronicle/storage"
)

// BatchProcessor regenerates chunk embeddings for batches of documents.
// Chunk text is left untouched; only the vectors are rebuilt.
type BatchProcessor struct {
	chunkRepo      storage.ChunkRepository
	embedder       ai.Embedder
	maxRetries     int
	retryBaseDelay time.Duration
}

// NewBatchProcessor creates a new batch processor.
// maxRetries: maximum number of retry attempts for embedding API calls
// retryBaseDelay: base delay for exponential backoff
func NewBatchProcessor(chunkRepo storage.ChunkRepository, embedder ai.Embedder, maxRetries int, retryBaseDelay time.Duration) *BatchProcessor {
	return &BatchProcessor{
		chunkRepo:      chunkRepo,
		embedder:       embedder,
		maxRetries:     maxRetries,
		retryBaseDelay: retryBaseDelay,
	}
}

// Process regenerates the embeddings of every chunk belonging to the given
// documents. Vectors are normalized after embedding to ensure compatibility
// with cosine similarity. Documents without chunks are skipped.
func (bp *BatchProcessor) Process(ctx context.Context, docs []*core.Document) error {
	for _, doc := range docs {
		chunks, err := bp.chunkRepo.GetChunksByDocument(ctx, doc.Id)
		if err != nil {
			return fmt.Errorf("failed to load chunks for document %d: %w", doc.Id, err)
		}
		if len(chunks) == 0 {
			continue
		}

		// Extract text content
		texts := make([]string, len(chunks))
		for i, chunk := range chunks {
			texts[i] = chunk.Contents
		}

		// Generate embeddings with retry
		var embeddings [][]float32
		err = RetryWithBackoff(ctx, func() error {
			var err error
			embeddings, err = bp.embedder.EmbedTexts(ctx, texts)
			return err
		}, bp.maxRetries, bp.retryBaseDelay)

		if err != nil {
			return fmt.Errorf("failed to generate embeddings after %d attempts: %w", bp.maxRetries, err)
		}

		if len(embeddings) != len(chunks) {
			return fmt.Errorf("embedding count mismatch: expected %d, got %d", len(chunks), len(embeddings))
		}

		// Normalize vectors and assign to chunks
		for i := range chunks {
			chunks[i].Vector = NormalizeVector(embeddings[i])
		}

		// Chunks keep their IDs, so re-adding overwrites in place.
		if _, err := bp.chunkRepo.AddChunks(ctx, chunks...); err != nil {
			return fmt.Errorf("failed to update chunks: %w", err)
		}
	}

	return nil
}
