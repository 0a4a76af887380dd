package scoring

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"slices"
	"sync"

	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/chronicle/ai"
	"github.com/poiesic/chronicle/core"
)

// Summarizer produces the tier-appropriate summary for a document that
// survived scoring. Implementations must be thread-safe for concurrent use.
type Summarizer interface {
	// Summarize generates a summary of the document whose detail level is
	// selected from the document's average relevance score.
	Summarize(ctx context.Context, doc *core.Document, averageScore float64) (string, error)
}

// Scorer judges each candidate document's relevance to a query with repeated
// independent oracle samples, keeps the documents whose averaged score clears
// the threshold, and attaches a tiered summary to each survivor.
type Scorer struct {
	oracle     ai.Oracle
	summarizer Summarizer
	config     *Config
	logger     *slog.Logger
}

// Option configures a Scorer.
type Option func(*Scorer) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Scorer) error {
		if logger == nil {
			logger = slog.Default()
		}
		s.logger = logger
		return nil
	}
}

// NewScorer creates a new relevance scorer.
func NewScorer(oracle ai.Oracle, summarizer Summarizer, config *Config, opts ...Option) (*Scorer, error) {
	if oracle == nil {
		return nil, ErrOracleRequired
	}
	if summarizer == nil {
		return nil, ErrSummarizerRequired
	}
	if config == nil {
		config = DefaultConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}

	s := &Scorer{
		oracle:     oracle,
		summarizer: summarizer,
		config:     config,
		logger:     slog.Default().With("component", "scorer"),
	}

	// Apply options
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}

	return s, nil
}

// outcome is the tagged result of scoring one document. Exactly one of
// scored and err is set; both nil means the document fell below the
// threshold and was dropped, which is not an error.
type outcome struct {
	index  int // position in the input slice, for deterministic error selection
	scored *core.ScoredDocument
	err    error
}

// Score judges every document and returns the survivors sorted by average
// score descending. Ties order by document ID ascending so the result is
// deterministic for identical inputs regardless of completion order.
//
// In ModeSequential documents are scored one at a time in slice order. In
// ModeParallel one task per document runs on a pool capped at
// MaxConcurrency; within a task the judgment calls stay sequential.
//
// A document whose oracle calls fail is dropped from the result set and
// logged, unless FailFast is set, in which case the first failure (by input
// position) aborts the run and no partial result is returned.
func (s *Scorer) Score(ctx context.Context, docs []*core.Document, query string) ([]core.ScoredDocument, error) {
	if len(docs) == 0 {
		return []core.ScoredDocument{}, nil
	}

	var outcomes []outcome
	switch s.config.Mode {
	case ModeSequential:
		outcomes = s.scoreSequential(ctx, docs, query)
	case ModeParallel:
		var err error
		outcomes, err = s.scoreParallel(ctx, docs, query)
		if err != nil {
			return nil, err
		}
	default:
		return nil, ErrInvalidMode
	}

	// Pick the first failure by input position, not completion order
	slices.SortFunc(outcomes, func(a, b outcome) int {
		return a.index - b.index
	})

	results := make([]core.ScoredDocument, 0, len(outcomes))
	for _, o := range outcomes {
		if o.err != nil {
			if s.config.FailFast {
				return nil, o.err
			}
			s.logger.Warn("dropping document after oracle failure",
				"document", docs[o.index].Title, "err", o.err)
			continue
		}
		if o.scored != nil {
			results = append(results, *o.scored)
		}
	}

	// Sort by average score descending; break ties by ID ascending
	slices.SortFunc(results, func(a, b core.ScoredDocument) int {
		if a.AverageScore > b.AverageScore {
			return -1
		}
		if a.AverageScore < b.AverageScore {
			return 1
		}
		if a.Id < b.Id {
			return -1
		}
		if a.Id > b.Id {
			return 1
		}
		return 0
	})

	return results, nil
}

// scoreSequential iterates documents in slice order, one at a time.
func (s *Scorer) scoreSequential(ctx context.Context, docs []*core.Document, query string) []outcome {
	outcomes := make([]outcome, 0, len(docs))
	for i, doc := range docs {
		scored, err := s.scoreOne(ctx, doc, query)
		outcomes = append(outcomes, outcome{index: i, scored: scored, err: err})
		if err != nil && s.config.FailFast {
			break
		}
	}
	return outcomes
}

// scoreParallel dispatches one task per document onto a bounded pool.
// The shared outcome slice is guarded by a mutex; tasks never touch each
// other's documents.
func (s *Scorer) scoreParallel(ctx context.Context, docs []*core.Document, query string) ([]outcome, error) {
	pool, err := ants.NewPool(s.config.MaxConcurrency)
	if err != nil {
		return nil, err
	}
	defer pool.Release()

	var (
		mu       sync.Mutex
		outcomes []outcome
		wg       sync.WaitGroup
	)

	for i, doc := range docs {
		wg.Add(1)
		submitErr := pool.Submit(func() {
			defer wg.Done()
			scored, err := s.scoreOne(ctx, doc, query)
			mu.Lock()
			outcomes = append(outcomes, outcome{index: i, scored: scored, err: err})
			mu.Unlock()
		})
		if submitErr != nil {
			wg.Done()
			mu.Lock()
			outcomes = append(outcomes, outcome{index: i, err: submitErr})
			mu.Unlock()
		}
	}

	wg.Wait()
	return outcomes, nil
}

// scoreOne runs the n judgment calls for a single document, sequentially.
// Returns (nil, nil) when the document fell below the threshold.
func (s *Scorer) scoreOne(ctx context.Context, doc *core.Document, query string) (*core.ScoredDocument, error) {
	prompt := judgmentPrompt(query, doc)

	sum := 0
	for i := 0; i < s.config.Samples; i++ {
		response, err := s.callOracle(ctx, prompt)
		if err != nil {
			return nil, fmt.Errorf("judging %q (sample %d/%d): %w", doc.Title, i+1, s.config.Samples, err)
		}

		score, ok := ExtractScore(response)
		if !ok {
			// No number in the response counts as a zero sample. Logged
			// because it silently drags the average down.
			s.logger.Warn("no score found in oracle response",
				"document", doc.Title, "sample", i+1, "response", response)
		}
		sum += score
	}

	avg := float64(sum) / float64(s.config.Samples)
	if s.config.IntegerScores {
		avg = math.RoundToEven(avg)
	}

	s.logger.Debug("document scored",
		"document", doc.Title, "averageScore", avg, "samples", s.config.Samples)

	if avg < s.config.Threshold {
		return nil, nil
	}

	summary, err := s.summarizer.Summarize(ctx, doc, avg)
	if err != nil {
		return nil, fmt.Errorf("summarizing %q: %w", doc.Title, err)
	}

	return &core.ScoredDocument{
		Id:               doc.Id,
		Title:            doc.Title,
		Date:             doc.Date,
		AverageScore:     avg,
		GeneratedSummary: summary,
		FullContent:      doc.FullContent,
	}, nil
}

// callOracle issues one judgment call, bounded by the per-call timeout.
func (s *Scorer) callOracle(ctx context.Context, prompt string) (string, error) {
	if s.config.OracleTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.config.OracleTimeout)
		defer cancel()
	}
	return s.oracle.Generate(ctx, prompt)
}
