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


package openai

import (
	"context"
	"log/slog"
	"strings"

	"github.com/poiesic/chronicle/ai"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

// Oracle implements ai.Oracle using OpenAI-compatible chat APIs.
type Oracle struct {
	client      llms.Model
	temperature float64
	logger      *slog.Logger
}

// newOracle is an internal constructor that returns the concrete type.
// Used by Provider to manage the instance.
func newOracle(config *ai.Config) (*Oracle, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	client, err := openai.New(
		openai.WithBaseURL(config.OracleHost),
		openai.WithToken(config.Token),
		openai.WithModel(config.OracleModel),
	)
	if err != nil {
		return nil, err
	}

	return &Oracle{
		client:      client,
		temperature: config.Temperature,
		logger:      slog.Default().With("component", "openai-oracle"),
	}, nil
}

// NewOracle creates a new reasoning oracle using the provided configuration.
//
// Returns ai.Oracle interface to enforce abstraction.
func NewOracle(config *ai.Config) (ai.Oracle, error) {
	return newOracle(config)
}

// Generate sends a single-turn prompt to the chat model and returns its raw
// text response. No parsing or post-processing happens here.
func (o *Oracle) Generate(ctx context.Context, prompt string) (string, error) {
	content := []llms.MessageContent{
		{
			Role: llms.ChatMessageTypeHuman,
			Parts: []llms.ContentPart{
				llms.TextPart(prompt),
			},
		},
	}

	response, err := o.client.GenerateContent(ctx, content, llms.WithTemperature(o.temperature))
	if err != nil {
		o.logger.Error("failed to generate content", "err", err)
		return "", err
	}

	if len(response.Choices) < 1 {
		o.logger.Warn("no choices returned from model")
		return "", ai.ErrEmptyResponse
	}

	return strings.TrimSpace(response.Choices[0].Content), nil
}
