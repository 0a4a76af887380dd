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


package summarize

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/poiesic/chronicle/ai"
	"github.com/poiesic/chronicle/core"
)

const summaryPromptTemplate = `You are a professional news editor. Summarize the following article in %d to %d characters.

Title: %s
Date: %s
Article:
%s

Requirements:
- Preserve the key facts, figures, direct quotes, named people and organizations, and the time and place of events.
- Keep a neutral tone. Do not add opinions or information that is not in the article.
- When the article presents multiple viewpoints, reflect them in proportion.
- Output only the summary text, with no preamble.`

// Synthesizer generates per-document summaries whose length scales with the
// document's relevance score. It satisfies the scoring package's Summarizer
// dependency.
type Synthesizer struct {
	oracle ai.Oracle
	logger *slog.Logger
}

// Option configures a Synthesizer.
type Option func(*Synthesizer) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Synthesizer) error {
		if logger == nil {
			logger = slog.Default()
		}
		s.logger = logger
		return nil
	}
}

// NewSynthesizer creates a tiered summarizer backed by the given oracle.
func NewSynthesizer(oracle ai.Oracle, opts ...Option) (*Synthesizer, error) {
	if oracle == nil {
		return nil, ErrOracleRequired
	}

	s := &Synthesizer{
		oracle: oracle,
		logger: slog.Default().With("component", "synthesizer"),
	}

	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}

	return s, nil
}

// Summarize produces a summary of the document sized by its average score's
// tier. The oracle's reply is trimmed but otherwise passed through.
func (s *Synthesizer) Summarize(ctx context.Context, doc *core.Document, averageScore float64) (string, error) {
	if doc == nil {
		return "", core.ErrInvalidDocument
	}

	tier := TierFor(averageScore)
	prompt := summaryPrompt(doc, tier)

	response, err := s.oracle.Generate(ctx, prompt)
	if err != nil {
		return "", fmt.Errorf("summarizing %q: %w", doc.Title, err)
	}

	summary := strings.TrimSpace(response)
	if summary == "" {
		return "", fmt.Errorf("summarizing %q: %w", doc.Title, ai.ErrEmptyResponse)
	}

	s.logger.Debug("document summarized",
		"document", doc.Title, "averageScore", averageScore,
		"minChars", tier.MinChars, "maxChars", tier.MaxChars)

	return summary, nil
}

// summaryPrompt builds the tiered summary request for one document.
func summaryPrompt(doc *core.Document, tier Tier) string {
	return fmt.Sprintf(summaryPromptTemplate,
		tier.MinChars,
		tier.MaxChars,
		doc.Title,
		doc.Date.Format(time.DateOnly),
		doc.FullContent,
	)
}
