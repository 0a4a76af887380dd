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


package scoring

import (
	"strings"
	"time"
)

// Mode selects how documents are dispatched during scoring.
type Mode string

const (
	// ModeSequential scores documents one at a time in enumeration order.
	ModeSequential Mode = "sequential"

	// ModeParallel dispatches one task per document onto a worker pool
	// bounded by MaxConcurrency. The n judgments for a single document
	// are never parallelized against each other, only across documents.
	ModeParallel Mode = "parallel"
)

// ParseMode maps external mode names onto a Mode. It accepts the legacy
// "sync"/"thread" spellings alongside the canonical names. Unknown or empty
// input returns the fallback.
func ParseMode(s string, fallback Mode) Mode {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "sequential", "sync":
		return ModeSequential
	case "parallel", "thread":
		return ModeParallel
	default:
		return fallback
	}
}

// Config holds the scoring parameters for one pipeline deployment.
// It is immutable once handed to a Scorer.
type Config struct {
	// Samples is the number of independent relevance judgments per document.
	// The document's average score is the arithmetic mean of these samples.
	// Default: 3
	Samples int

	// Threshold is the minimum average score a document needs to survive.
	// Documents below it are dropped silently. Default: 20
	Threshold float64

	// MaxConcurrency caps the worker pool in ModeParallel. Default: 5
	MaxConcurrency int

	// Mode selects sequential or bounded-parallel dispatch. Default: ModeParallel
	Mode Mode

	// IntegerScores rounds each average to the nearest integer using
	// round-half-to-even before thresholding. The legacy parallel path
	// rounded while the sequential path kept the exact mean; here the
	// representation is an explicit flag rather than a mode side-effect.
	// Default: false (exact mean)
	IntegerScores bool

	// FailFast aborts the whole scoring run on the first oracle failure,
	// discarding results from sibling tasks. When false, a failed document
	// is dropped from the result set and logged, and scoring continues.
	// Default: false
	FailFast bool

	// OracleTimeout bounds each individual oracle call. Expiry is treated
	// as an oracle failure for that call. Zero disables the limit.
	// Default: 90s
	OracleTimeout time.Duration
}

// ConfigOption is a functional option for configuring a Config.
type ConfigOption func(*Config)

// WithSamples sets the number of judgments per document.
func WithSamples(n int) ConfigOption {
	return func(c *Config) {
		c.Samples = n
	}
}

// WithThreshold sets the minimum surviving average score.
func WithThreshold(threshold float64) ConfigOption {
	return func(c *Config) {
		c.Threshold = threshold
	}
}

// WithMaxConcurrency caps the scoring worker pool.
func WithMaxConcurrency(n int) ConfigOption {
	return func(c *Config) {
		c.MaxConcurrency = n
	}
}

// WithMode selects the dispatch mode.
func WithMode(mode Mode) ConfigOption {
	return func(c *Config) {
		c.Mode = mode
	}
}

// WithIntegerScores enables round-half-to-even average scores.
func WithIntegerScores(enabled bool) ConfigOption {
	return func(c *Config) {
		c.IntegerScores = enabled
	}
}

// WithFailFast makes any oracle failure abort the whole scoring run.
func WithFailFast(enabled bool) ConfigOption {
	return func(c *Config) {
		c.FailFast = enabled
	}
}

// WithOracleTimeout bounds each individual oracle call.
func WithOracleTimeout(d time.Duration) ConfigOption {
	return func(c *Config) {
		c.OracleTimeout = d
	}
}

// DefaultConfig returns a Config with the deployment defaults.
func DefaultConfig() *Config {
	return &Config{
		Samples:        3,
		Threshold:      20,
		MaxConcurrency: 5,
		Mode:           ModeParallel,
		IntegerScores:  false,
		FailFast:       false,
		OracleTimeout:  90 * time.Second,
	}
}

// NewConfig creates a Config with the default values and applies the
// provided options.
func NewConfig(opts ...ConfigOption) *Config {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// Validate checks that the configuration is valid and complete.
func (c *Config) Validate() error {
	if c.Samples < 1 {
		return ErrInvalidSamples
	}
	if c.Threshold < 0 || c.Threshold > 100 {
		return ErrInvalidThreshold
	}
	if c.MaxConcurrency < 1 {
		return ErrInvalidConcurrency
	}
	if c.Mode != ModeSequential && c.Mode != ModeParallel {
		return ErrInvalidMode
	}
	if c.OracleTimeout < 0 {
		return ErrInvalidTimeout
	}
	return nil
}
