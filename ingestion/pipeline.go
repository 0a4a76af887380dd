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


package ingestion

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"sync"
	"unicode/utf8"

	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/chronicle/ai"
	"github.com/poiesic/chronicle/core"
	"github.com/poiesic/chronicle/storage"
)

// Pipeline stores documents and builds their embedded chunks.
// Chunking and embedding run concurrently across documents.
type Pipeline struct {
	documentRepository storage.DocumentRepository
	chunkRepository    storage.ChunkRepository
	embedder           ai.Embedder
	pool               *ants.Pool
	chunkSize          int
	chunkOverlap       int
	logger             *slog.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline) error

// WithPoolSize sets the worker pool size for concurrent embedding.
// Default is runtime.NumCPU() / 2, with a minimum of 1.
func WithPoolSize(size int) Option {
	return func(p *Pipeline) error {
		if size < 1 {
			size = 1
		}

		if p.pool != nil {
			p.pool.Release()
		}

		pool, err := ants.NewPool(size)
		if err != nil {
			return err
		}

		p.pool = pool
		return nil
	}
}

// WithChunking overrides the fragment size and overlap, both in runes.
func WithChunking(size, overlap int) Option {
	return func(p *Pipeline) error {
		if size < 1 || overlap < 0 || overlap >= size {
			return fmt.Errorf("invalid chunking: size %d, overlap %d", size, overlap)
		}
		p.chunkSize = size
		p.chunkOverlap = overlap
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) error {
		if logger == nil {
			logger = slog.Default()
		}
		p.logger = logger
		return nil
	}
}

// NewPipeline creates a new ingestion pipeline.
func NewPipeline(
	documentRepository storage.DocumentRepository,
	chunkRepository storage.ChunkRepository,
	embedder ai.Embedder,
	opts ...Option,
) (*Pipeline, error) {
	if documentRepository == nil {
		return nil, ErrDocumentRepositoryRequired
	}
	if chunkRepository == nil {
		return nil, ErrChunkRepositoryRequired
	}
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}

	poolSize := runtime.NumCPU() / 2
	if poolSize < 1 {
		poolSize = 1
	}

	pool, err := ants.NewPool(poolSize)
	if err != nil {
		return nil, err
	}

	p := &Pipeline{
		documentRepository: documentRepository,
		chunkRepository:    chunkRepository,
		embedder:           embedder,
		pool:               pool,
		chunkSize:          defaultChunkSize,
		chunkOverlap:       defaultChunkOverlap,
		logger:             slog.Default().With("component", "ingestion"),
	}

	// Apply options
	for _, opt := range opts {
		if optErr := opt(p); optErr != nil {
			p.Release()
			return nil, optErr
		}
	}

	return p, nil
}

// Ingest stores the documents and builds embedded chunks for each one.
// Documents whose content is too short to chunk are stored without chunks.
// A failed embedding leaves its document stored but chunkless and is
// logged; it does not fail the batch. Returns the stored documents with
// IDs populated.
func (p *Pipeline) Ingest(ctx context.Context, docs ...*core.Document) ([]*core.Document, error) {
	added, err := p.documentRepository.AddDocuments(ctx, docs...)
	if err != nil {
		return nil, err
	}

	var wg sync.WaitGroup
	for _, doc := range added {
		if utf8.RuneCountInString(doc.FullContent) <= minDocumentLength {
			p.logger.Debug("document too short to chunk", "document", doc.Title)
			continue
		}

		wg.Add(1)
		submitErr := p.pool.Submit(func() {
			defer wg.Done()
			if err := p.buildChunks(ctx, doc); err != nil {
				p.logger.Error("error building chunks", "document", doc.Title, "err", err)
			}
		})
		if submitErr != nil {
			wg.Done()
			p.logger.Error("error submitting document for chunking",
				"document", doc.Title, "err", submitErr)
		}
	}
	wg.Wait()

	return added, nil
}

// buildChunks replaces the document's chunks with freshly split and
// embedded ones.
func (p *Pipeline) buildChunks(ctx context.Context, doc *core.Document) error {
	fragments := splitContent(doc.FullContent, p.chunkSize, p.chunkOverlap)
	if len(fragments) == 0 {
		return nil
	}

	embeddings, err := p.embedder.EmbedTexts(ctx, fragments)
	if err != nil {
		return err
	}
	if len(embeddings) != len(fragments) {
		return fmt.Errorf("embedding result mismatch. expected %d, received %d",
			len(fragments), len(embeddings))
	}

	// Re-ingestion replaces, never duplicates.
	if err := p.chunkRepository.DeleteChunksByDocument(ctx, doc.Id); err != nil {
		return err
	}

	chunks := make([]*core.Chunk, len(fragments))
	for i, fragment := range fragments {
		chunks[i] = &core.Chunk{
			DocumentId: doc.Id,
			Seq:        i,
			Contents:   fragment,
			Vector:     embeddings[i],
		}
	}

	_, err = p.chunkRepository.AddChunks(ctx, chunks...)
	if err != nil {
		return err
	}

	p.logger.Debug("document chunked", "document", doc.Title, "chunks", len(chunks))
	return nil
}

// Release releases the worker pool.
// The pipeline should not be used after calling Release.
func (p *Pipeline) Release() {
	if p.pool != nil {
		p.pool.Release()
	}
}
