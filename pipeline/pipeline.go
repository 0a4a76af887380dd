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


package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/poiesic/chronicle/core"
)

// Retriever finds candidate documents for a query.
type Retriever interface {
	FindCandidates(ctx context.Context, query string, maxDocs int) ([]*core.Document, error)
}

// Scorer judges candidates and returns the survivors, summarized and
// sorted best-first.
type Scorer interface {
	Score(ctx context.Context, docs []*core.Document, query string) ([]core.ScoredDocument, error)
}

// Composer writes the cited narrative from the surviving references.
type Composer interface {
	Compose(ctx context.Context, query string, refs []core.ScoredDocument) (string, error)
}

// Status classifies how a run concluded. It is carried alongside the
// report so callers can tell an empty result from a healthy one without
// inspecting the report's fields.
type Status string

const (
	// StatusOK means the report carries a narrative with references.
	StatusOK Status = "ok"

	// StatusNoEvidence means no candidate cleared the threshold. The
	// report is still well-formed, with empty narrative and references.
	StatusNoEvidence Status = "no_evidence"
)

// Pipeline sequences retrieval, scoring, and composition into one run.
type Pipeline struct {
	retriever Retriever
	scorer    Scorer
	composer  Composer
	logger    *slog.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline) error

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

// WithRetriever attaches a candidate retriever, enabling Answer.
// Run works without one since it takes its candidates directly.
func WithRetriever(retriever Retriever) Option {
	return func(p *Pipeline) error {
		p.retriever = retriever
		return nil
	}
}

// New creates a pipeline from its two mandatory stages.
func New(scorer Scorer, composer Composer, opts ...Option) (*Pipeline, error) {
	if scorer == nil {
		return nil, ErrScorerRequired
	}
	if composer == nil {
		return nil, ErrComposerRequired
	}

	p := &Pipeline{
		scorer:   scorer,
		composer: composer,
		logger:   slog.Default().With("component", "pipeline"),
	}

	// Apply options
	for _, opt := range opts {
		if err := opt(p); err != nil {
			return nil, err
		}
	}

	return p, nil
}

// Run scores the given candidates against the query and composes the cited
// report from the survivors. When nothing clears the threshold it returns a
// well-formed empty report with StatusNoEvidence rather than an error; an
// empty evidence base is a valid answer, a failed oracle is not.
//
// On failure the error wraps ErrRunFailed and no partial report is returned.
func (p *Pipeline) Run(ctx context.Context, query string, docs []*core.Document) (*core.Report, Status, error) {
	refs, err := p.scorer.Score(ctx, docs, query)
	if err != nil {
		return nil, "", fmt.Errorf("%w: scoring: %w", ErrRunFailed, err)
	}

	if len(refs) == 0 {
		p.logger.Info("no documents cleared the threshold",
			"query", query, "candidates", len(docs))
		return &core.Report{
			Query:      query,
			References: []core.ScoredDocument{},
		}, StatusNoEvidence, nil
	}

	narrative, err := p.composer.Compose(ctx, query, refs)
	if err != nil {
		return nil, "", fmt.Errorf("%w: composing: %w", ErrRunFailed, err)
	}

	p.logger.Info("report generated",
		"query", query, "candidates", len(docs), "references", len(refs))

	return &core.Report{
		Query:      query,
		Narrative:  narrative,
		References: refs,
	}, StatusOK, nil
}

// Answer retrieves up to topK candidates for the query and runs the
// pipeline over them. Requires a retriever.
func (p *Pipeline) Answer(ctx context.Context, query string, topK int) (*core.Report, Status, error) {
	if p.retriever == nil {
		return nil, "", ErrRetrieverRequired
	}

	docs, err := p.retriever.FindCandidates(ctx, query, topK)
	if err != nil {
		return nil, "", fmt.Errorf("%w: retrieving: %w", ErrRunFailed, err)
	}

	return p.Run(ctx, query, docs)
}
