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

import "errors"

var (
	// ErrOracleRequired is returned when an oracle is not provided.
	ErrOracleRequired = errors.New("oracle required")

	// ErrSummarizerRequired is returned when a summarizer is not provided.
	ErrSummarizerRequired = errors.New("summarizer required")

	// ErrInvalidSamples is returned when Samples is below 1.
	ErrInvalidSamples = errors.New("scoring config: Samples must be at least 1")

	// ErrInvalidThreshold is returned when Threshold is outside [0,100].
	ErrInvalidThreshold = errors.New("scoring config: Threshold must be within [0,100]")

	// ErrInvalidConcurrency is returned when MaxConcurrency is below 1.
	ErrInvalidConcurrency = errors.New("scoring config: MaxConcurrency must be at least 1")

	// ErrInvalidMode is returned for an unrecognized dispatch mode.
	ErrInvalidMode = errors.New("scoring config: unknown mode")

	// ErrInvalidTimeout is returned for a negative oracle timeout.
	ErrInvalidTimeout = errors.New("scoring config: OracleTimeout cannot be negative")
)
