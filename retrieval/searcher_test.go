package retrieval

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/poiesic/chronicle/ai/mock"
	"github.com/poiesic/chronicle/core"
	"github.com/poiesic/chronicle/storage/badger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSearcher(t *testing.T) {
	docRepo, chunkRepo, backend, err := badger.NewMemoryRepositories()
	require.NoError(t, err)
	defer func() {
		chunkRepo.Close()
		docRepo.Close()
		backend.Close()
	}()

	embedder := mock.NewMockEmbedder()

	t.Run("valid configuration", func(t *testing.T) {
		searcher, err := NewSearcher(docRepo, chunkRepo, embedder)
		require.NoError(t, err)
		assert.NotNil(t, searcher)
	})

	t.Run("with custom logger", func(t *testing.T) {
		searcher, err := NewSearcher(docRepo, chunkRepo, embedder, WithLogger(slog.Default()))
		require.NoError(t, err)
		assert.NotNil(t, searcher)
	})

	t.Run("with nil logger falls back to default", func(t *testing.T) {
		searcher, err := NewSearcher(docRepo, chunkRepo, embedder, WithLogger(nil))
		require.NoError(t, err)
		assert.NotNil(t, searcher)
	})

	t.Run("nil document repository", func(t *testing.T) {
		_, err := NewSearcher(nil, chunkRepo, embedder)
		assert.Equal(t, ErrDocumentRepositoryRequired, err)
	})

	t.Run("nil chunk repository", func(t *testing.T) {
		_, err := NewSearcher(docRepo, nil, embedder)
		assert.Equal(t, ErrChunkRepositoryRequired, err)
	})

	t.Run("nil embedder", func(t *testing.T) {
		_, err := NewSearcher(docRepo, chunkRepo, nil)
		assert.Equal(t, ErrEmbedderRequired, err)
	})
}

func TestFindCandidates_EmptyDatabase(t *testing.T) {
	docRepo, chunkRepo, backend, err := badger.NewMemoryRepositories()
	require.NoError(t, err)
	defer func() {
		chunkRepo.Close()
		docRepo.Close()
		backend.Close()
	}()

	searcher, err := NewSearcher(docRepo, chunkRepo, mock.NewMockEmbedder())
	require.NoError(t, err)

	ctx := context.Background()
	candidates, err := searcher.FindCandidates(ctx, "test query", 10)
	require.NoError(t, err)
	assert.Empty(t, candidates)
}

func TestFindCandidates_EmptyQuery(t *testing.T) {
	docRepo, chunkRepo, backend, err := badger.NewMemoryRepositories()
	require.NoError(t, err)
	defer func() {
		chunkRepo.Close()
		docRepo.Close()
		backend.Close()
	}()

	searcher, err := NewSearcher(docRepo, chunkRepo, mock.NewMockEmbedder())
	require.NoError(t, err)

	_, err = searcher.FindCandidates(context.Background(), "   ", 10)
	assert.ErrorIs(t, err, ErrEmptyQuery)
}

func TestFindCandidates_DedupesToDocuments(t *testing.T) {
	docRepo, chunkRepo, backend, err := badger.NewMemoryRepositories()
	require.NoError(t, err)
	defer func() {
		chunkRepo.Close()
		docRepo.Close()
		backend.Close()
	}()

	ctx := context.Background()
	date := time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC)

	docs := []*core.Document{
		{Title: "Flood warnings along the river", Date: date, FullContent: "flood article"},
		{Title: "Council approves new stadium", Date: date, FullContent: "stadium article"},
	}
	added, err := docRepo.AddDocuments(ctx, docs...)
	require.NoError(t, err)
	require.Len(t, added, 2)

	// Two chunks of the flood article both match the query; they must
	// collapse to one candidate that keeps its best chunk's rank.
	chunks := []*core.Chunk{
		{DocumentId: added[0].Id, Seq: 0, Contents: "river levels rising", Vector: []float32{0.95, 0.05, 0.0}},
		{DocumentId: added[0].Id, Seq: 1, Contents: "evacuation routes", Vector: []float32{0.85, 0.15, 0.0}},
		{DocumentId: added[1].Id, Seq: 0, Contents: "stadium funding vote", Vector: []float32{0.70, 0.30, 0.0}},
	}
	_, err = chunkRepo.AddChunks(ctx, chunks...)
	require.NoError(t, err)

	embedder := mock.NewMockEmbedder()
	embedder.EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
		return []float32{1.0, 0.0, 0.0}, nil
	}

	searcher, err := NewSearcher(docRepo, chunkRepo, embedder)
	require.NoError(t, err)

	candidates, err := searcher.FindCandidates(ctx, "river flooding", 10)
	require.NoError(t, err)

	require.Len(t, candidates, 2)
	assert.Equal(t, added[0].Id, candidates[0].Id)
	assert.Equal(t, added[1].Id, candidates[1].Id)
}

func TestFindCandidates_RespectsMaxDocs(t *testing.T) {
	docRepo, chunkRepo, backend, err := badger.NewMemoryRepositories()
	require.NoError(t, err)
	defer func() {
		chunkRepo.Close()
		docRepo.Close()
		backend.Close()
	}()

	ctx := context.Background()
	date := time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC)

	for i, title := range []string{"first", "second", "third"} {
		added, err := docRepo.AddDocuments(ctx, &core.Document{
			Title: title, Date: date, FullContent: title + " content",
		})
		require.NoError(t, err)

		similarity := 0.95 - float32(i)*0.05
		_, err = chunkRepo.AddChunks(ctx, &core.Chunk{
			DocumentId: added[0].Id,
			Contents:   title + " chunk",
			Vector:     []float32{similarity, 0, 0},
		})
		require.NoError(t, err)
	}

	embedder := mock.NewMockEmbedder()
	embedder.EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
		return []float32{1.0, 0.0, 0.0}, nil
	}

	searcher, err := NewSearcher(docRepo, chunkRepo, embedder)
	require.NoError(t, err)

	candidates, err := searcher.FindCandidates(ctx, "anything", 2)
	require.NoError(t, err)
	assert.Len(t, candidates, 2)
	assert.Equal(t, "first", candidates[0].Title)
	assert.Equal(t, "second", candidates[1].Title)
}

func TestFindCandidates_SimilarityCutoff(t *testing.T) {
	docRepo, chunkRepo, backend, err := badger.NewMemoryRepositories()
	require.NoError(t, err)
	defer func() {
		chunkRepo.Close()
		docRepo.Close()
		backend.Close()
	}()

	ctx := context.Background()
	date := time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC)

	added, err := docRepo.AddDocuments(ctx, &core.Document{
		Title: "Unrelated gossip", Date: date, FullContent: "gossip",
	})
	require.NoError(t, err)

	_, err = chunkRepo.AddChunks(ctx, &core.Chunk{
		DocumentId: added[0].Id,
		Contents:   "celebrity sighting",
		Vector:     []float32{0.2, 0.2, 0.9},
	})
	require.NoError(t, err)

	embedder := mock.NewMockEmbedder()
	embedder.EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
		return []float32{1.0, 0.0, 0.0}, nil
	}

	searcher, err := NewSearcher(docRepo, chunkRepo, embedder)
	require.NoError(t, err)

	// Similarity 0.2 is below the 0.60 cutoff.
	candidates, err := searcher.FindCandidates(ctx, "economic policy", 10)
	require.NoError(t, err)
	assert.Empty(t, candidates)

	// A lowered cutoff admits it.
	permissive, err := NewSearcher(docRepo, chunkRepo, embedder, WithMinSimilarity(0.1))
	require.NoError(t, err)

	candidates, err = permissive.FindCandidates(ctx, "economic policy", 10)
	require.NoError(t, err)
	assert.Len(t, candidates, 1)
}

func TestFindCandidates_MonitorCallbacks(t *testing.T) {
	docRepo, chunkRepo, backend, err := badger.NewMemoryRepositories()
	require.NoError(t, err)
	defer func() {
		chunkRepo.Close()
		docRepo.Close()
		backend.Close()
	}()

	ctx := context.Background()
	date := time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC)

	added, err := docRepo.AddDocuments(ctx, &core.Document{
		Title: "Storm aftermath", Date: date, FullContent: "storm",
	})
	require.NoError(t, err)

	_, err = chunkRepo.AddChunks(ctx, &core.Chunk{
		DocumentId: added[0].Id,
		Contents:   "power outages",
		Vector:     []float32{0.9, 0.1, 0.0},
	})
	require.NoError(t, err)

	embedder := mock.NewMockEmbedder()
	embedder.EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
		return []float32{1.0, 0.0, 0.0}, nil
	}

	searcher, err := NewSearcher(docRepo, chunkRepo, embedder)
	require.NoError(t, err)

	monitor := &recordingMonitor{}
	candidates, err := searcher.FindCandidatesWithMonitor(ctx, "storm damage", 5, monitor)
	require.NoError(t, err)
	require.Len(t, candidates, 1)

	assert.Equal(t, "storm damage", monitor.startedWith)
	assert.Len(t, monitor.chunkMatches, 1)
	assert.Equal(t, []core.ID{added[0].Id}, monitor.dedupedIDs)
	assert.Len(t, monitor.finished, 1)
}

type recordingMonitor struct {
	startedWith  string
	chunkMatches []*core.ChunkMatch
	dedupedIDs   []core.ID
	finished     []*core.Document
}

func (r *recordingMonitor) Start(query string)                    { r.startedWith = query }
func (r *recordingMonitor) AfterChunkSearch(m []*core.ChunkMatch) { r.chunkMatches = m }
func (r *recordingMonitor) AfterDocumentDedupe(ids []core.ID)     { r.dedupedIDs = ids }
func (r *recordingMonitor) Finish(candidates []*core.Document)    { r.finished = candidates }
