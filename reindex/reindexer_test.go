package reindex

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/poiesic/chronicle/ai/mock"
	"github.com/poiesic/chronicle/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReindexer_Run(t *testing.T) {
	docRepo, chunkRepo := setupTestStore(t)
	ctx := context.Background()

	docs := addTestDocuments(t, docRepo, 3)
	for _, doc := range docs {
		_, err := chunkRepo.AddChunks(ctx,
			&core.Chunk{DocumentId: doc.Id, Seq: 0, Contents: "chunk of " + doc.Title, Vector: []float32{9, 9, 9}},
			&core.Chunk{DocumentId: doc.Id, Seq: 1, Contents: "more of " + doc.Title, Vector: []float32{9, 9, 9}},
		)
		require.NoError(t, err)
	}

	embedder := mock.NewMockEmbedder()
	embedder.EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
		vectors := make([][]float32, len(texts))
		for i := range texts {
			vectors[i] = []float32{3, 4, 0}
		}
		return vectors, nil
	}

	var progress bytes.Buffer
	reindexer := NewReindexer(docRepo, chunkRepo, embedder, &Config{
		BatchSize:      2,
		ReportInterval: 1,
		MaxRetries:     2,
		RetryDelay:     10 * time.Millisecond,
	}, &progress)

	err := reindexer.Run(ctx)
	require.NoError(t, err)

	// All chunks carry the new, normalized vector.
	for _, doc := range docs {
		chunks, err := chunkRepo.GetChunksByDocument(ctx, doc.Id)
		require.NoError(t, err)
		require.Len(t, chunks, 2)
		for _, chunk := range chunks {
			require.Len(t, chunk.Vector, 3)
			assert.InDelta(t, 0.6, chunk.Vector[0], 1e-6)
			assert.InDelta(t, 0.8, chunk.Vector[1], 1e-6)
			assert.InDelta(t, 0.0, chunk.Vector[2], 1e-6)
		}
	}

	assert.Contains(t, progress.String(), "Reindexing complete")
}

func TestReindexer_Run_EmptyStore(t *testing.T) {
	docRepo, chunkRepo := setupTestStore(t)

	var progress bytes.Buffer
	reindexer := NewReindexer(docRepo, chunkRepo, mock.NewMockEmbedder(), nil, &progress)

	err := reindexer.Run(context.Background())
	require.NoError(t, err)
	assert.Contains(t, progress.String(), "No documents found")
}

func TestReindexer_Run_RetriesThenSucceeds(t *testing.T) {
	docRepo, chunkRepo := setupTestStore(t)
	ctx := context.Background()

	docs := addTestDocuments(t, docRepo, 1)
	_, err := chunkRepo.AddChunks(ctx, &core.Chunk{
		DocumentId: docs[0].Id, Contents: "flaky chunk", Vector: []float32{1, 0, 0},
	})
	require.NoError(t, err)

	calls := 0
	embedder := mock.NewMockEmbedder()
	embedder.EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
		calls++
		if calls == 1 {
			return nil, errors.New("transient failure")
		}
		return [][]float32{{0, 1, 0}}, nil
	}

	var progress bytes.Buffer
	reindexer := NewReindexer(docRepo, chunkRepo, embedder, &Config{
		BatchSize:      10,
		ReportInterval: 10,
		MaxRetries:     3,
		RetryDelay:     5 * time.Millisecond,
	}, &progress)

	err = reindexer.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, calls, "first call fails, retry succeeds")
}

func TestReindexer_Run_PersistentFailure(t *testing.T) {
	docRepo, chunkRepo := setupTestStore(t)
	ctx := context.Background()

	docs := addTestDocuments(t, docRepo, 1)
	_, err := chunkRepo.AddChunks(ctx, &core.Chunk{
		DocumentId: docs[0].Id, Contents: "doomed chunk", Vector: []float32{1, 0, 0},
	})
	require.NoError(t, err)

	embedder := mock.NewMockEmbedder()
	embedder.EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
		return nil, errors.New("embedding service down")
	}

	var progress bytes.Buffer
	reindexer := NewReindexer(docRepo, chunkRepo, embedder, &Config{
		BatchSize:      10,
		ReportInterval: 10,
		MaxRetries:     2,
		RetryDelay:     5 * time.Millisecond,
	}, &progress)

	err = reindexer.Run(ctx)
	assert.Error(t, err)
}

func TestReindexer_Run_SkipsChunklessDocuments(t *testing.T) {
	docRepo, chunkRepo := setupTestStore(t)
	ctx := context.Background()

	addTestDocuments(t, docRepo, 2)

	embedder := mock.NewMockEmbedder()
	embedCalls := 0
	embedder.EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
		embedCalls++
		return nil, errors.New("should not be called")
	}

	var progress bytes.Buffer
	reindexer := NewReindexer(docRepo, chunkRepo, embedder, nil, &progress)

	err := reindexer.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, embedCalls)
}
