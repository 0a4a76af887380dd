// Copyright 2025 Poiesic Systems
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


package retrieval

import (
	"context"
	"log/slog"
	"strings"

	"github.com/poiesic/chronicle/ai"
	"github.com/poiesic/chronicle/core"
	"github.com/poiesic/chronicle/storage"
)

// defaultMinSimilarity keeps only chunk hits with a meaningful cosine
// similarity to the query. Candidates are still re-judged by the scoring
// stage, so this cutoff only has to be good enough to bound the set.
const defaultMinSimilarity = 0.60

// chunkOverfetch is how many chunk hits are requested per wanted document.
// Several chunks of the same document can all match, so the chunk limit has
// to exceed the document limit for dedupe to fill it.
const chunkOverfetch = 4

// Searcher retrieves candidate documents for a query via chunk-level
// vector search.
type Searcher struct {
	documentRepository storage.DocumentRepository
	chunkRepository    storage.ChunkRepository
	embedder           ai.Embedder
	minSimilarity      float32
	logger             *slog.Logger
}

// Option configures a Searcher.
type Option func(*Searcher) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Searcher) error {
		if logger == nil {
			logger = slog.Default()
		}
		s.logger = logger
		return nil
	}
}

// WithMinSimilarity overrides the chunk similarity cutoff.
func WithMinSimilarity(min float32) Option {
	return func(s *Searcher) error {
		s.minSimilarity = min
		return nil
	}
}

// NewSearcher creates a new candidate searcher.
func NewSearcher(
	documentRepository storage.DocumentRepository,
	chunkRepository storage.ChunkRepository,
	embedder ai.Embedder,
	opts ...Option,
) (*Searcher, error) {
	if documentRepository == nil {
		return nil, ErrDocumentRepositoryRequired
	}
	if chunkRepository == nil {
		return nil, ErrChunkRepositoryRequired
	}
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}

	s := &Searcher{
		documentRepository: documentRepository,
		chunkRepository:    chunkRepository,
		embedder:           embedder,
		minSimilarity:      defaultMinSimilarity,
		logger:             slog.Default().With("component", "searcher"),
	}

	// Apply options
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}

	return s, nil
}

// FindCandidates retrieves up to maxDocs documents relevant to the query,
// ordered by their best chunk similarity.
func (s *Searcher) FindCandidates(ctx context.Context, query string, maxDocs int) ([]*core.Document, error) {
	return s.FindCandidatesWithMonitor(ctx, query, maxDocs, nil)
}

// FindCandidatesWithMonitor retrieves candidates with monitoring callbacks
// at each stage.
func (s *Searcher) FindCandidatesWithMonitor(ctx context.Context, query string, maxDocs int, monitor Monitor) ([]*core.Document, error) {
	if monitor == nil {
		monitor = &noopMonitor{}
	}
	if strings.TrimSpace(query) == "" {
		return nil, ErrEmptyQuery
	}
	if maxDocs < 1 {
		maxDocs = 1
	}

	monitor.Start(query)

	embedding, err := s.embedder.EmbedText(ctx, query)
	if err != nil {
		s.logger.Error("error generating embedding for query", "query", query, "err", err)
		return nil, err
	}

	matches, err := s.chunkRepository.FindSimilar(ctx, embedding, s.minSimilarity, maxDocs*chunkOverfetch)
	if err != nil {
		s.logger.Error("error querying for similar chunks", "err", err)
		return nil, err
	}
	monitor.AfterChunkSearch(matches)

	// Dedupe chunk hits to documents. Matches arrive best-first, so the
	// first hit per document is its best chunk and insertion order is the
	// document ranking.
	seen := make(map[core.ID]bool, len(matches))
	ids := make([]core.ID, 0, maxDocs)
	for _, match := range matches {
		docID := match.Chunk.DocumentId
		if seen[docID] {
			continue
		}
		seen[docID] = true
		ids = append(ids, docID)
		if len(ids) == maxDocs {
			break
		}
	}
	monitor.AfterDocumentDedupe(ids)

	if len(ids) == 0 {
		monitor.Finish(nil)
		return []*core.Document{}, nil
	}

	docs, err := s.documentRepository.GetDocuments(ctx, ids...)
	if err != nil {
		s.logger.Error("error retrieving documents", "documentCount", len(ids), "err", err)
		return nil, err
	}

	// GetDocuments drops missing IDs but keeps order; restore the chunk
	// ranking by index.
	byID := make(map[core.ID]*core.Document, len(docs))
	for _, doc := range docs {
		byID[doc.Id] = doc
	}
	ordered := make([]*core.Document, 0, len(docs))
	for _, id := range ids {
		if doc, ok := byID[id]; ok {
			ordered = append(ordered, doc)
		}
	}

	s.logger.Debug("candidates retrieved",
		"query", query, "chunkHits", len(matches), "documents", len(ordered))
	monitor.Finish(ordered)
	return ordered, nil
}
