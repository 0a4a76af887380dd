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

import "strings"

// Config holds configuration for AI service providers.
type Config struct {
	// OracleHost is the base URL for the reasoning service API.
	// Example: "http://localhost:11434/v1" for a local OpenAI-compatible server
	OracleHost string

	// EmbeddingHost is the base URL for the embedding service API.
	// Example: "http://localhost:11434/v1" for a local OpenAI-compatible server
	EmbeddingHost string

	// OracleModel is the model identifier to use for relevance judgments,
	// summaries, and report generation.
	// Example: "qwen2.5:3b", "gpt-4o-mini", "llama-3.3-70b-versatile"
	OracleModel string

	// EmbeddingModel is the model identifier to use for text embeddings.
	// Example: "embeddinggemma", "text-embedding-3-small"
	EmbeddingModel string

	// Token is the API credential sent to both services.
	// Use "none" for local OpenAI-compatible services that don't require
	// authentication. An empty token fails validation before any call is made.
	Token string

	// Temperature controls sampling randomness for oracle calls.
	// Judgment prompts ask for a bare number, so low values keep the
	// repeated samples comparable. Default: 0.7
	Temperature float64
}

// ConfigOption is a functional option for configuring a Config.
type ConfigOption func(*Config)

// WithOracleHost sets the reasoning service host URL.
func WithOracleHost(host string) ConfigOption {
	return func(c *Config) {
		c.OracleHost = host
	}
}

// WithEmbeddingHost sets the embedding service host URL.
func WithEmbeddingHost(host string) ConfigOption {
	return func(c *Config) {
		c.EmbeddingHost = host
	}
}

// WithHost sets both oracle and embedding hosts to the same URL.
func WithHost(host string) ConfigOption {
	return func(c *Config) {
		c.OracleHost = host
		c.EmbeddingHost = host
	}
}

// WithOracleModel sets the reasoning model identifier.
func WithOracleModel(model string) ConfigOption {
	return func(c *Config) {
		c.OracleModel = model
	}
}

// WithEmbeddingModel sets the embedding model identifier.
func WithEmbeddingModel(model string) ConfigOption {
	return func(c *Config) {
		c.EmbeddingModel = model
	}
}

// WithToken sets the API credential.
func WithToken(token string) ConfigOption {
	return func(c *Config) {
		c.Token = token
	}
}

// WithTemperature sets the sampling temperature for oracle calls.
func WithTemperature(temperature float64) ConfigOption {
	return func(c *Config) {
		c.Temperature = temperature
	}
}

// DefaultConfig returns a Config with sensible defaults for local
// OpenAI-compatible services. By default, oracle and embedding use the same host.
func DefaultConfig() *Config {
	defaultHost := "http://localhost:11434/v1"
	return &Config{
		OracleHost:     defaultHost,
		EmbeddingHost:  defaultHost,
		OracleModel:    "qwen2.5:3b",
		EmbeddingModel: "embeddinggemma",
		Token:          "none",
		Temperature:    0.7,
	}
}

// NewConfig creates a Config with the default values and applies the provided
// options. This is the recommended way to create a Config with custom settings.
//
// Example:
//
//	cfg := ai.NewConfig(
//	    ai.WithHost("http://localhost:11434/v1"),
//	    ai.WithOracleModel("llama-3.3-70b-versatile"),
//	)
func NewConfig(opts ...ConfigOption) *Config {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// Normalize ensures the configuration is in a canonical form.
// It automatically adds the /v1 suffix to hosts if missing, which is required
// by most OpenAI-compatible APIs (Ollama, LocalAI, vLLM, etc).
func (c *Config) Normalize() {
	if c.OracleHost != "" && !strings.HasSuffix(c.OracleHost, "/v1") {
		c.OracleHost = strings.TrimSuffix(c.OracleHost, "/")
		c.OracleHost = c.OracleHost + "/v1"
	}
	if c.EmbeddingHost != "" && !strings.HasSuffix(c.EmbeddingHost, "/v1") {
		c.EmbeddingHost = strings.TrimSuffix(c.EmbeddingHost, "/")
		c.EmbeddingHost = c.EmbeddingHost + "/v1"
	}
}

// Validate checks that the configuration is valid and complete.
// It automatically normalizes the configuration before validation.
// A missing token is rejected here so that credential problems surface
// before any oracle call is issued.
func (c *Config) Validate() error {
	c.Normalize()

	if c.OracleHost == "" {
		return ErrOracleHostRequired
	}
	if c.EmbeddingHost == "" {
		return ErrEmbeddingHostRequired
	}
	if c.OracleModel == "" {
		return ErrOracleModelRequired
	}
	if c.EmbeddingModel == "" {
		return ErrEmbeddingModelRequired
	}
	if c.Token == "" {
		return ErrMissingCredentials
	}
	if c.Temperature < 0 || c.Temperature > 2 {
		return ErrInvalidTemperature
	}
	return nil
}
