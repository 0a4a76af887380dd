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


package ai

import "errors"

// Configuration errors. These are fatal: a provider refuses to issue any
// call with an invalid configuration.
var (
	// ErrOracleHostRequired is returned when no reasoning service host is set.
	ErrOracleHostRequired = errors.New("ai config: OracleHost is required")

	// ErrEmbeddingHostRequired is returned when no embedding service host is set.
	ErrEmbeddingHostRequired = errors.New("ai config: EmbeddingHost is required")

	// ErrOracleModelRequired is returned when no reasoning model is set.
	ErrOracleModelRequired = errors.New("ai config: OracleModel is required")

	// ErrEmbeddingModelRequired is returned when no embedding model is set.
	ErrEmbeddingModelRequired = errors.New("ai config: EmbeddingModel is required")

	// ErrMissingCredentials is returned when no API token is configured.
	ErrMissingCredentials = errors.New("ai config: API token is not set")

	// ErrInvalidTemperature is returned when the temperature is outside [0,2].
	ErrInvalidTemperature = errors.New("ai config: Temperature must be between 0 and 2")
)

// ErrEmptyResponse is returned when the oracle produced no choices at all.
// Distinct from a response that merely lacks parseable content, which is
// the caller's concern.
var ErrEmptyResponse = errors.New("oracle returned no response choices")
