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


package chronicle

import (
	"log/slog"

	"github.com/poiesic/chronicle/ai"
	"github.com/poiesic/chronicle/ai/openai"
	"github.com/poiesic/chronicle/compose"
	"github.com/poiesic/chronicle/ingestion"
	"github.com/poiesic/chronicle/pipeline"
	"github.com/poiesic/chronicle/retrieval"
	"github.com/poiesic/chronicle/scoring"
	"github.com/poiesic/chronicle/storage"
	"github.com/poiesic/chronicle/storage/badger"
	"github.com/poiesic/chronicle/summarize"
)

// Engine bundles the storage backend, repositories, and AI provider behind
// one handle and builds the working parts on top of them.
type Engine struct {
	backend   *badger.Backend
	docRepo   storage.DocumentRepository
	chunkRepo storage.ChunkRepository
	provider  ai.Provider
	logger    *slog.Logger
}

// EngineOption configures an Engine.
type EngineOption func(*engineOptions)

type engineOptions struct {
	aiConfig *ai.Config
}

// WithAIConfig overrides the AI provider configuration.
func WithAIConfig(config *ai.Config) EngineOption {
	return func(o *engineOptions) {
		if config != nil {
			o.aiConfig = config
		}
	}
}

// Open creates an engine over the store at filePath.
func Open(filePath string, opts ...EngineOption) (*Engine, error) {
	// Apply options
	options := &engineOptions{
		aiConfig: ai.DefaultConfig(), // Default if not provided
	}
	for _, opt := range opts {
		opt(options)
	}

	// Open backend
	backend, err := badger.OpenBackend(filePath, false)
	if err != nil {
		return nil, err
	}

	// Create document repository
	docRepo, err := badger.NewDocumentRepository(backend)
	if err != nil {
		backend.Close()
		return nil, err
	}

	// Create chunk repository
	chunkRepo, err := badger.NewChunkRepository(backend)
	if err != nil {
		docRepo.Close()
		backend.Close()
		return nil, err
	}

	// Create AI provider with configured settings
	provider, err := openai.NewProvider(options.aiConfig)
	if err != nil {
		chunkRepo.Close()
		docRepo.Close()
		backend.Close()
		return nil, err
	}

	return &Engine{
		backend:   backend,
		docRepo:   docRepo,
		chunkRepo: chunkRepo,
		provider:  provider,
		logger:    slog.Default(),
	}, nil
}

func (e *Engine) Close() error {
	// Close AI provider first
	if err := e.provider.Close(); err != nil {
		e.logger.Error("error closing AI provider", "err", err)
	}

	// Close repositories
	if err := e.chunkRepo.Close(); err != nil {
		e.logger.Error("error closing chunk repository", "err", err)
		return err
	}
	if err := e.docRepo.Close(); err != nil {
		e.logger.Error("error closing document repository", "err", err)
		return err
	}

	// Close backend
	if err := e.backend.Close(); err != nil {
		e.logger.Error("error closing backend storage", "err", err)
		return err
	}
	return nil
}

func (e *Engine) DocumentRepository() storage.DocumentRepository {
	return e.docRepo
}

func (e *Engine) ChunkRepository() storage.ChunkRepository {
	return e.chunkRepo
}

func (e *Engine) NewIngestionPipeline(opts ...ingestion.Option) (*ingestion.Pipeline, error) {
	return ingestion.NewPipeline(e.docRepo, e.chunkRepo, e.provider.Embedder(), opts...)
}

func (e *Engine) NewSearcher(opts ...retrieval.Option) (*retrieval.Searcher, error) {
	return retrieval.NewSearcher(e.docRepo, e.chunkRepo, e.provider.Embedder(), opts...)
}

// NewPipeline assembles the full query pipeline: retrieval, scoring with
// tiered summaries, and narrative composition. Pass nil to use the default
// scoring configuration.
func (e *Engine) NewPipeline(config *scoring.Config) (*pipeline.Pipeline, error) {
	searcher, err := e.NewSearcher()
	if err != nil {
		return nil, err
	}

	synthesizer, err := summarize.NewSynthesizer(e.provider.Oracle())
	if err != nil {
		return nil, err
	}

	scorer, err := scoring.NewScorer(e.provider.Oracle(), synthesizer, config)
	if err != nil {
		return nil, err
	}

	composer, err := compose.NewComposer(e.provider.Oracle())
	if err != nil {
		return nil, err
	}

	return pipeline.New(scorer, composer, pipeline.WithRetriever(searcher))
}
