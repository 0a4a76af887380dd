package scoring

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/poiesic/chronicle/ai/mock"
	"github.com/poiesic/chronicle/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubSummarizer is a local test double for the Summarizer dependency.
type stubSummarizer struct {
	mu        sync.Mutex
	calls     []float64
	summarize func(ctx context.Context, doc *core.Document, averageScore float64) (string, error)
}

func (s *stubSummarizer) Summarize(ctx context.Context, doc *core.Document, averageScore float64) (string, error) {
	s.mu.Lock()
	s.calls = append(s.calls, averageScore)
	s.mu.Unlock()
	if s.summarize != nil {
		return s.summarize(ctx, doc, averageScore)
	}
	return "summary of " + doc.Title, nil
}

func (s *stubSummarizer) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.calls)
}

func testDoc(id core.ID, title string) *core.Document {
	return &core.Document{
		Id:           id,
		Title:        title,
		Date:         time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC),
		ShortSummary: "summary for " + title,
		FullContent:  "full content for " + title,
	}
}

// scoreByTitle returns a GenerateFunc that answers with a fixed score per
// document title, independent of call order. Prompts embed the title, so this
// keeps parallel tests deterministic.
func scoreByTitle(scores map[string]string) func(ctx context.Context, prompt string) (string, error) {
	return func(ctx context.Context, prompt string) (string, error) {
		for title, score := range scores {
			if strings.Contains(prompt, "Title: "+title) {
				return score, nil
			}
		}
		return "", fmt.Errorf("no scripted score for prompt: %s", prompt)
	}
}

func TestNewScorer(t *testing.T) {
	oracle := mock.NewMockOracle()
	summarizer := &stubSummarizer{}

	t.Run("valid dependencies", func(t *testing.T) {
		scorer, err := NewScorer(oracle, summarizer, nil)
		require.NoError(t, err)
		assert.NotNil(t, scorer)
	})

	t.Run("nil oracle", func(t *testing.T) {
		_, err := NewScorer(nil, summarizer, nil)
		assert.ErrorIs(t, err, ErrOracleRequired)
	})

	t.Run("nil summarizer", func(t *testing.T) {
		_, err := NewScorer(oracle, nil, nil)
		assert.ErrorIs(t, err, ErrSummarizerRequired)
	})

	t.Run("invalid config", func(t *testing.T) {
		_, err := NewScorer(oracle, summarizer, NewConfig(WithSamples(0)))
		assert.ErrorIs(t, err, ErrInvalidSamples)
	})
}

func TestScoreThresholdFilter(t *testing.T) {
	// One judgment per document: the relevant document scores 85 and
	// survives, the irrelevant one scores 10 and is filtered out.
	oracle := mock.NewMockOracle()
	oracle.GenerateFunc = scoreByTitle(map[string]string{
		"quake coverage": "85",
		"recipe column":  "10",
	})
	summarizer := &stubSummarizer{}

	scorer, err := NewScorer(oracle, summarizer, NewConfig(
		WithSamples(1),
		WithMode(ModeSequential),
	))
	require.NoError(t, err)

	docs := []*core.Document{
		testDoc(1, "quake coverage"),
		testDoc(2, "recipe column"),
	}

	results, err := scorer.Score(context.Background(), docs, "earthquake in the capital")
	require.NoError(t, err)

	require.Len(t, results, 1)
	assert.Equal(t, core.ID(1), results[0].Id)
	assert.Equal(t, "quake coverage", results[0].Title)
	assert.Equal(t, 85.0, results[0].AverageScore)
	assert.Equal(t, "summary of quake coverage", results[0].GeneratedSummary)

	// The filtered document never reaches the summarizer.
	assert.Equal(t, 1, summarizer.callCount())
	assert.Equal(t, 2, oracle.CallCount())
}

func TestScoreUnparseableResponse(t *testing.T) {
	// A response with no extractable number counts as a zero sample, so a
	// single-sample document lands at 0 and is dropped by the threshold.
	oracle := mock.ScriptedOracle("無法評估")
	summarizer := &stubSummarizer{}

	scorer, err := NewScorer(oracle, summarizer, NewConfig(
		WithSamples(1),
		WithMode(ModeSequential),
	))
	require.NoError(t, err)

	results, err := scorer.Score(context.Background(), []*core.Document{testDoc(1, "opaque")}, "anything")
	require.NoError(t, err)

	assert.Empty(t, results)
	assert.Equal(t, 0, summarizer.callCount())
}

func TestScoreAveraging(t *testing.T) {
	docs := []*core.Document{testDoc(1, "split verdict")}

	t.Run("exact mean", func(t *testing.T) {
		oracle := mock.ScriptedOracle("60", "61")
		summarizer := &stubSummarizer{}
		scorer, err := NewScorer(oracle, summarizer, NewConfig(
			WithSamples(2),
			WithMode(ModeSequential),
		))
		require.NoError(t, err)

		results, err := scorer.Score(context.Background(), docs, "query")
		require.NoError(t, err)
		require.Len(t, results, 1)
		assert.Equal(t, 60.5, results[0].AverageScore)
	})

	t.Run("rounded half to even", func(t *testing.T) {
		oracle := mock.ScriptedOracle("60", "61")
		summarizer := &stubSummarizer{}
		scorer, err := NewScorer(oracle, summarizer, NewConfig(
			WithSamples(2),
			WithMode(ModeSequential),
			WithIntegerScores(true),
		))
		require.NoError(t, err)

		results, err := scorer.Score(context.Background(), docs, "query")
		require.NoError(t, err)
		require.Len(t, results, 1)
		assert.Equal(t, 60.0, results[0].AverageScore)
	})

	t.Run("rounding applies before threshold", func(t *testing.T) {
		// Mean 19.5 rounds to 20 and survives a threshold of 20.
		oracle := mock.ScriptedOracle("19", "20")
		summarizer := &stubSummarizer{}
		scorer, err := NewScorer(oracle, summarizer, NewConfig(
			WithSamples(2),
			WithMode(ModeSequential),
			WithIntegerScores(true),
		))
		require.NoError(t, err)

		results, err := scorer.Score(context.Background(), docs, "query")
		require.NoError(t, err)
		require.Len(t, results, 1)
		assert.Equal(t, 20.0, results[0].AverageScore)
	})
}

func TestScoreSorting(t *testing.T) {
	oracle := mock.NewMockOracle()
	oracle.GenerateFunc = scoreByTitle(map[string]string{
		"low":       "40",
		"high":      "90",
		"mid":       "70",
		"tie-late":  "70",
		"tie-early": "70",
	})
	summarizer := &stubSummarizer{}

	scorer, err := NewScorer(oracle, summarizer, NewConfig(
		WithSamples(1),
		WithMode(ModeParallel),
		WithMaxConcurrency(3),
	))
	require.NoError(t, err)

	docs := []*core.Document{
		testDoc(9, "tie-late"),
		testDoc(4, "low"),
		testDoc(2, "high"),
		testDoc(7, "mid"),
		testDoc(3, "tie-early"),
	}

	results, err := scorer.Score(context.Background(), docs, "query")
	require.NoError(t, err)
	require.Len(t, results, 5)

	// Score descending, ties broken by ID ascending.
	assert.Equal(t, core.ID(2), results[0].Id)
	assert.Equal(t, core.ID(3), results[1].Id)
	assert.Equal(t, core.ID(7), results[2].Id)
	assert.Equal(t, core.ID(9), results[3].Id)
	assert.Equal(t, core.ID(4), results[4].Id)
}

func TestScoreEmptyInput(t *testing.T) {
	scorer, err := NewScorer(mock.NewMockOracle(), &stubSummarizer{}, nil)
	require.NoError(t, err)

	results, err := scorer.Score(context.Background(), nil, "query")
	require.NoError(t, err)
	assert.NotNil(t, results)
	assert.Empty(t, results)
}

func TestScoreOracleFailure(t *testing.T) {
	boom := errors.New("oracle unavailable")
	failingOracle := func() *mock.MockOracle {
		oracle := mock.NewMockOracle()
		oracle.GenerateFunc = func(ctx context.Context, prompt string) (string, error) {
			if strings.Contains(prompt, "Title: broken") {
				return "", boom
			}
			return "80", nil
		}
		return oracle
	}

	docs := []*core.Document{
		testDoc(1, "healthy"),
		testDoc(2, "broken"),
		testDoc(3, "also healthy"),
	}

	t.Run("failed document is dropped", func(t *testing.T) {
		summarizer := &stubSummarizer{}
		scorer, err := NewScorer(failingOracle(), summarizer, NewConfig(
			WithSamples(1),
			WithMode(ModeParallel),
			WithMaxConcurrency(2),
		))
		require.NoError(t, err)

		results, err := scorer.Score(context.Background(), docs, "query")
		require.NoError(t, err)

		require.Len(t, results, 2)
		for _, r := range results {
			assert.NotEqual(t, core.ID(2), r.Id)
		}
	})

	t.Run("fail fast aborts the run", func(t *testing.T) {
		summarizer := &stubSummarizer{}
		scorer, err := NewScorer(failingOracle(), summarizer, NewConfig(
			WithSamples(1),
			WithMode(ModeParallel),
			WithMaxConcurrency(2),
			WithFailFast(true),
		))
		require.NoError(t, err)

		results, err := scorer.Score(context.Background(), docs, "query")
		assert.ErrorIs(t, err, boom)
		assert.Nil(t, results)
	})

	t.Run("summarizer failure surfaces per document", func(t *testing.T) {
		summarizer := &stubSummarizer{
			summarize: func(ctx context.Context, doc *core.Document, avg float64) (string, error) {
				if doc.Title == "healthy" {
					return "", errors.New("summary failed")
				}
				return "ok", nil
			},
		}
		scorer, err := NewScorer(failingOracle(), summarizer, NewConfig(
			WithSamples(1),
			WithMode(ModeSequential),
		))
		require.NoError(t, err)

		results, err := scorer.Score(context.Background(), docs, "query")
		require.NoError(t, err)
		require.Len(t, results, 1)
		assert.Equal(t, core.ID(3), results[0].Id)
	})
}

func TestScoreOracleTimeout(t *testing.T) {
	oracle := mock.NewMockOracle()
	oracle.Latency = 200 * time.Millisecond
	summarizer := &stubSummarizer{}

	scorer, err := NewScorer(oracle, summarizer, NewConfig(
		WithSamples(1),
		WithMode(ModeSequential),
		WithOracleTimeout(20*time.Millisecond),
		WithFailFast(true),
	))
	require.NoError(t, err)

	_, err = scorer.Score(context.Background(), []*core.Document{testDoc(1, "slow")}, "query")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestScoreBoundedParallelism(t *testing.T) {
	// Five candidates with one 50ms judgment each on a pool of two workers
	// need at least three waves, so roughly 150ms, while unbounded
	// execution would finish in one. The upper bound rules out a fully
	// sequential run (250ms).
	const perCall = 50 * time.Millisecond

	oracle := mock.NewMockOracle()
	oracle.Latency = perCall
	oracle.GenerateFunc = scoreByTitle(map[string]string{
		"doc-a": "90",
		"doc-b": "80",
		"doc-c": "70",
		"doc-d": "60",
		"doc-e": "50",
	})
	summarizer := &stubSummarizer{}

	scorer, err := NewScorer(oracle, summarizer, NewConfig(
		WithSamples(1),
		WithMode(ModeParallel),
		WithMaxConcurrency(2),
	))
	require.NoError(t, err)

	docs := []*core.Document{
		testDoc(5, "doc-e"),
		testDoc(3, "doc-c"),
		testDoc(1, "doc-a"),
		testDoc(4, "doc-d"),
		testDoc(2, "doc-b"),
	}

	start := time.Now()
	results, err := scorer.Score(context.Background(), docs, "query")
	elapsed := time.Since(start)

	require.NoError(t, err)
	require.Len(t, results, 5)

	assert.GreaterOrEqual(t, elapsed, 3*perCall-10*time.Millisecond,
		"two workers need three waves for five tasks")
	assert.Less(t, elapsed, 5*perCall,
		"the pool should run documents concurrently")

	// Output order is by score, not completion order.
	for i := range 5 {
		assert.Equal(t, core.ID(i+1), results[i].Id)
	}
	assert.Equal(t, 5, oracle.CallCount())
}

func TestJudgmentsWithinDocumentAreSequential(t *testing.T) {
	// Track concurrent in-flight oracle calls for a single document; with
	// one document and three samples there must never be overlap.
	var mu sync.Mutex
	inFlight, maxInFlight := 0, 0

	oracle := mock.NewMockOracle()
	oracle.GenerateFunc = func(ctx context.Context, prompt string) (string, error) {
		mu.Lock()
		inFlight++
		if inFlight > maxInFlight {
			maxInFlight = inFlight
		}
		mu.Unlock()

		time.Sleep(10 * time.Millisecond)

		mu.Lock()
		inFlight--
		mu.Unlock()
		return "75", nil
	}

	scorer, err := NewScorer(oracle, &stubSummarizer{}, NewConfig(
		WithSamples(3),
		WithMode(ModeParallel),
		WithMaxConcurrency(5),
	))
	require.NoError(t, err)

	results, err := scorer.Score(context.Background(), []*core.Document{testDoc(1, "solo")}, "query")
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, 75.0, results[0].AverageScore)
	assert.Equal(t, 3, oracle.CallCount())
	assert.Equal(t, 1, maxInFlight)
}
