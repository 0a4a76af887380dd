package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/poiesic/chronicle/core"
	"github.com/poiesic/chronicle/pipeline"
	"github.com/poiesic/chronicle/scoring"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubRunner struct {
	report *core.Report
	status pipeline.Status
	err    error

	gotQuery string
	gotTopK  int
	calls    int
}

func (s *stubRunner) Answer(ctx context.Context, query string, topK int) (*core.Report, pipeline.Status, error) {
	s.calls++
	s.gotQuery = query
	s.gotTopK = topK
	return s.report, s.status, s.err
}

func okReport() *core.Report {
	return &core.Report{
		Query:     "refinery fire",
		Narrative: "The fire burned for two days. Reference 1 (Source: Refinery blaze contained).",
		References: []core.ScoredDocument{
			{
				Id:               11,
				Title:            "Refinery blaze contained",
				Date:             time.Date(2025, 2, 3, 0, 0, 0, 0, time.UTC),
				AverageScore:     87.5,
				GeneratedSummary: "Crews contained the refinery fire after 48 hours.",
			},
		},
	}
}

func doQuery(t *testing.T, h *Handler, body, queryString string) (*httptest.ResponseRecorder, QueryResponse) {
	t.Helper()
	e := echo.New()
	target := "/query"
	if queryString != "" {
		target += "?" + queryString
	}
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	require.NoError(t, h.HandleQuery(c))

	var resp QueryResponse
	if rec.Code == http.StatusOK {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	}
	return rec, resp
}

func TestNewHandler(t *testing.T) {
	t.Run("valid runners", func(t *testing.T) {
		h, err := NewHandler(&stubRunner{}, &stubRunner{})
		require.NoError(t, err)
		assert.NotNil(t, h)
	})

	t.Run("nil runner", func(t *testing.T) {
		_, err := NewHandler(nil, &stubRunner{})
		assert.ErrorIs(t, err, ErrRunnerRequired)
	})

	t.Run("default mode must name a runner", func(t *testing.T) {
		_, err := NewHandler(&stubRunner{}, &stubRunner{}, WithDefaultMode(scoring.Mode("batch")))
		assert.ErrorIs(t, err, ErrUnknownMode)
	})
}

func TestHandleQuery(t *testing.T) {
	t.Run("successful query", func(t *testing.T) {
		parallel := &stubRunner{report: okReport(), status: pipeline.StatusOK}
		h, err := NewHandler(&stubRunner{}, parallel)
		require.NoError(t, err)

		rec, resp := doQuery(t, h, `{"query": "refinery fire", "top_k": 3}`, "")

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "refinery fire", resp.Query)
		assert.Contains(t, resp.GeneratedReport, "Reference 1")
		require.Len(t, resp.References, 1)
		assert.Equal(t, uint64(11), resp.References[0].Id)
		assert.Equal(t, "2025-02-03", resp.References[0].Date)
		assert.Equal(t, 87.5, resp.References[0].Score)

		assert.Equal(t, "refinery fire", parallel.gotQuery)
		assert.Equal(t, 3, parallel.gotTopK)
	})

	t.Run("parallel is the default mode", func(t *testing.T) {
		sequential := &stubRunner{report: okReport(), status: pipeline.StatusOK}
		parallel := &stubRunner{report: okReport(), status: pipeline.StatusOK}
		h, err := NewHandler(sequential, parallel)
		require.NoError(t, err)

		doQuery(t, h, `{"query": "refinery fire"}`, "")
		assert.Equal(t, 1, parallel.calls)
		assert.Equal(t, 0, sequential.calls)
	})

	t.Run("mode parameter selects the runner", func(t *testing.T) {
		sequential := &stubRunner{report: okReport(), status: pipeline.StatusOK}
		parallel := &stubRunner{report: okReport(), status: pipeline.StatusOK}
		h, err := NewHandler(sequential, parallel)
		require.NoError(t, err)

		doQuery(t, h, `{"query": "refinery fire"}`, "mode=sync")
		assert.Equal(t, 1, sequential.calls)
		assert.Equal(t, 0, parallel.calls)

		doQuery(t, h, `{"query": "refinery fire"}`, "mode=thread")
		assert.Equal(t, 1, parallel.calls)
	})

	t.Run("missing top_k falls back to default", func(t *testing.T) {
		parallel := &stubRunner{report: okReport(), status: pipeline.StatusOK}
		h, err := NewHandler(&stubRunner{}, parallel)
		require.NoError(t, err)

		doQuery(t, h, `{"query": "refinery fire"}`, "")
		assert.Equal(t, defaultTopK, parallel.gotTopK)
	})

	t.Run("blank query is rejected", func(t *testing.T) {
		h, err := NewHandler(&stubRunner{}, &stubRunner{})
		require.NoError(t, err)

		rec, _ := doQuery(t, h, `{"query": "   "}`, "")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("malformed body is rejected", func(t *testing.T) {
		h, err := NewHandler(&stubRunner{}, &stubRunner{})
		require.NoError(t, err)

		rec, _ := doQuery(t, h, `{"query": `, "")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("pipeline failure degrades to fallback payload", func(t *testing.T) {
		parallel := &stubRunner{err: errors.New("oracle down")}
		h, err := NewHandler(&stubRunner{}, parallel)
		require.NoError(t, err)

		rec, resp := doQuery(t, h, `{"query": "refinery fire"}`, "")

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "refinery fire", resp.Query)
		assert.Equal(t, degradedReport, resp.GeneratedReport)
		assert.NotNil(t, resp.References)
		assert.Empty(t, resp.References)
	})

	t.Run("no evidence keeps the success shape", func(t *testing.T) {
		parallel := &stubRunner{
			report: &core.Report{Query: "obscure", References: []core.ScoredDocument{}},
			status: pipeline.StatusNoEvidence,
		}
		h, err := NewHandler(&stubRunner{}, parallel)
		require.NoError(t, err)

		rec, resp := doQuery(t, h, `{"query": "obscure"}`, "")

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "obscure", resp.Query)
		assert.Empty(t, resp.GeneratedReport)
		assert.Empty(t, resp.References)
	})
}
