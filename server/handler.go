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


package server

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/poiesic/chronicle/core"
	"github.com/poiesic/chronicle/pipeline"
	"github.com/poiesic/chronicle/scoring"
)

// defaultTopK bounds candidate retrieval when the request omits top_k.
const defaultTopK = 5

// degradedReport is the fixed narrative returned when a run fails. Clients
// key off this sentinel text, so it never varies with the failure cause.
const degradedReport = "generation failed"

// Runner executes one query end to end.
type Runner interface {
	Answer(ctx context.Context, query string, topK int) (*core.Report, pipeline.Status, error)
}

// QueryRequest is the POST /query payload.
type QueryRequest struct {
	Query string `json:"query"`
	TopK  int    `json:"top_k"`
}

// Reference is one cited document in a query response.
type Reference struct {
	Id               uint64  `json:"id"`
	Title            string  `json:"title"`
	Date             string  `json:"date"`
	Score            float64 `json:"score"`
	GeneratedSummary string  `json:"generated_summary"`
}

// QueryResponse is the POST /query reply. Its shape is identical for
// full, empty, and degraded results.
type QueryResponse struct {
	Query           string      `json:"query"`
	GeneratedReport string      `json:"generated_report"`
	References      []Reference `json:"references"`
}

// Handler serves the query endpoint. It holds one runner per dispatch mode
// so the mode query parameter can switch between them per request.
type Handler struct {
	runners     map[scoring.Mode]Runner
	defaultMode scoring.Mode
	logger      *slog.Logger
}

// Option configures a Handler.
type Option func(*Handler) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(h *Handler) error {
		if logger == nil {
			logger = slog.Default()
		}
		h.logger = logger
		return nil
	}
}

// WithDefaultMode sets the dispatch mode used when the request names none.
// Default is scoring.ModeParallel.
func WithDefaultMode(mode scoring.Mode) Option {
	return func(h *Handler) error {
		if _, ok := h.runners[mode]; !ok {
			return ErrUnknownMode
		}
		h.defaultMode = mode
		return nil
	}
}

// NewHandler creates a query handler over one runner per dispatch mode.
func NewHandler(sequential, parallel Runner, opts ...Option) (*Handler, error) {
	if sequential == nil || parallel == nil {
		return nil, ErrRunnerRequired
	}

	h := &Handler{
		runners: map[scoring.Mode]Runner{
			scoring.ModeSequential: sequential,
			scoring.ModeParallel:   parallel,
		},
		defaultMode: scoring.ModeParallel,
		logger:      slog.Default().With("component", "server"),
	}

	for _, opt := range opts {
		if err := opt(h); err != nil {
			return nil, err
		}
	}

	return h, nil
}

// Register mounts the handler's routes on the echo instance.
func (h *Handler) Register(e *echo.Echo) {
	e.POST("/query", h.HandleQuery)
}

// HandleQuery answers a query. Malformed requests get a 400; any pipeline
// failure degrades to the fixed fallback payload with a 200, keeping the
// response shape stable for clients.
func (h *Handler) HandleQuery(c echo.Context) error {
	var req QueryRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request"})
	}
	if strings.TrimSpace(req.Query) == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "query is required"})
	}

	topK := req.TopK
	if topK < 1 {
		topK = defaultTopK
	}

	mode := scoring.ParseMode(c.QueryParam("mode"), h.defaultMode)
	runner := h.runners[mode]

	ctx := c.Request().Context()
	report, status, err := runner.Answer(ctx, req.Query, topK)
	if err != nil {
		h.logger.Error("query failed", "query", req.Query, "mode", mode, "err", err)
		return c.JSON(http.StatusOK, QueryResponse{
			Query:           req.Query,
			GeneratedReport: degradedReport,
			References:      []Reference{},
		})
	}

	if status == pipeline.StatusNoEvidence {
		h.logger.Info("query matched no evidence", "query", req.Query)
	}

	refs := make([]Reference, 0, len(report.References))
	for _, ref := range report.References {
		refs = append(refs, Reference{
			Id:               uint64(ref.Id),
			Title:            ref.Title,
			Date:             ref.Date.Format(time.DateOnly),
			Score:            ref.AverageScore,
			GeneratedSummary: ref.GeneratedSummary,
		})
	}

	return c.JSON(http.StatusOK, QueryResponse{
		Query:           report.Query,
		GeneratedReport: report.Narrative,
		References:      refs,
	})
}
