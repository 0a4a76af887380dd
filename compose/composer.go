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


package compose

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/poiesic/chronicle/ai"
	"github.com/poiesic/chronicle/core"
)

const narrativePromptTemplate = `You are a professional news writer. Using only the numbered reference material below, write a coherent news article that answers the query.

Query: %s

Reference material:
%s

Requirements:
- Use only facts found in the reference material. Do not invent anything.
- Cite every claim inline in the form: Reference <number> (Source: <title>).
- Weave the references into one flowing narrative rather than summarizing them one by one.
- Keep a neutral, journalistic tone.
- Output only the article text.`

// Composer turns the surviving scored documents into a single cited
// narrative answering the query.
type Composer struct {
	oracle ai.Oracle
	logger *slog.Logger
}

// Option configures a Composer.
type Option func(*Composer) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(c *Composer) error {
		if logger == nil {
			logger = slog.Default()
		}
		c.logger = logger
		return nil
	}
}

// NewComposer creates a narrative composer backed by the given oracle.
func NewComposer(oracle ai.Oracle, opts ...Option) (*Composer, error) {
	if oracle == nil {
		return nil, ErrOracleRequired
	}

	c := &Composer{
		oracle: oracle,
		logger: slog.Default().With("component", "composer"),
	}

	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}

	return c, nil
}

// Compose generates the narrative for a query from its scored references.
// References are numbered 1-based in the order given, which is the order the
// narrative's citations use. The oracle's reply is returned as-is apart from
// whitespace trimming; citation markers are not post-processed.
func (c *Composer) Compose(ctx context.Context, query string, refs []core.ScoredDocument) (string, error) {
	if len(refs) == 0 {
		return "", ErrNoReferences
	}

	response, err := c.oracle.Generate(ctx, narrativePrompt(query, refs))
	if err != nil {
		return "", fmt.Errorf("composing narrative for %q: %w", query, err)
	}

	narrative := strings.TrimSpace(response)
	if narrative == "" {
		return "", fmt.Errorf("composing narrative for %q: %w", query, ai.ErrEmptyResponse)
	}

	c.logger.Debug("narrative composed", "query", query, "references", len(refs))
	return narrative, nil
}

// narrativePrompt renders the numbered reference blocks and the final
// instruction. Numbering starts at 1 so citations read naturally.
func narrativePrompt(query string, refs []core.ScoredDocument) string {
	var b strings.Builder
	for i, ref := range refs {
		fmt.Fprintf(&b, "%d. (Title: %s, Date: %s) Content: %s\n",
			i+1, ref.Title, ref.Date.Format(time.DateOnly), ref.GeneratedSummary)
	}
	return fmt.Sprintf(narrativePromptTemplate, query, strings.TrimRight(b.String(), "\n"))
}
