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


package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/poiesic/chronicle"
	"github.com/poiesic/chronicle/ai"
	"github.com/poiesic/chronicle/ai/openai"
	"github.com/poiesic/chronicle/core"
	"github.com/poiesic/chronicle/reindex"
	"github.com/poiesic/chronicle/scoring"
	"github.com/poiesic/chronicle/server"
	"github.com/poiesic/chronicle/storage/badger"
	"github.com/urfave/cli/v2"
)

func main() {
	app := &cli.App{
		Name:  "chronicle",
		Usage: "Evidence-scored news synthesis",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Serve the query pipeline over HTTP",
				Action: serveCommand,
				Flags: combineFlags(storeFlags(), aiFlags(), scoringFlags(),
					[]cli.Flag{
						&cli.StringFlag{
							Name:  "listen",
							Usage: "Address to listen on",
							Value: ":8080",
						},
					}),
			},
			{
				Name:      "query",
				Usage:     "Run one query and print the report",
				ArgsUsage: "<query text>",
				Action:    queryCommand,
				Flags: combineFlags(storeFlags(), aiFlags(), scoringFlags(),
					[]cli.Flag{
						&cli.IntFlag{
							Name:  "top-k",
							Usage: "Maximum candidate documents to retrieve",
							Value: 5,
						},
					}),
			},
			{
				Name:      "seed",
				Usage:     "Ingest documents from a JSON file",
				ArgsUsage: "<documents.json>",
				Action:    seedCommand,
				Flags:     combineFlags(storeFlags(), aiFlags()),
			},
			{
				Name:   "reindex",
				Usage:  "Re-embed all stored chunks with a new embedding model",
				Action: reindexCommand,
				Flags: combineFlags(storeFlags(),
					[]cli.Flag{
						&cli.StringFlag{
							Name:  "embedding-host",
							Usage: "Embedding service host URL",
							Value: "http://localhost:11434/v1",
						},
						&cli.StringFlag{
							Name:     "embedding-model",
							Usage:    "Embedding model name",
							Required: true,
						},
						&cli.IntFlag{
							Name:  "batch-size",
							Usage: "Number of documents to process in each batch",
							Value: 100,
						},
						&cli.IntFlag{
							Name:  "report-interval",
							Usage: "Report progress every N documents",
							Value: 100,
						},
						&cli.IntFlag{
							Name:  "max-retries",
							Usage: "Maximum retry attempts for failed embedding calls",
							Value: 3,
						},
						&cli.DurationFlag{
							Name:  "retry-delay",
							Usage: "Base delay for exponential backoff",
							Value: 1 * time.Second,
						},
					}),
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func combineFlags(groups ...[]cli.Flag) []cli.Flag {
	var flags []cli.Flag
	for _, group := range groups {
		flags = append(flags, group...)
	}
	return flags
}

func storeFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:     "db",
			Aliases:  []string{"d"},
			Usage:    "Path to the store directory",
			Required: true,
		},
	}
}

func aiFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:  "ai-host",
			Usage: "OpenAI-compatible service host URL for oracle and embeddings",
			Value: "http://localhost:11434/v1",
		},
	}
}

func scoringFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:  "mode",
			Usage: "Scoring dispatch mode (sequential, parallel)",
			Value: string(scoring.ModeParallel),
		},
	}
}

func openEngine(c *cli.Context) (*chronicle.Engine, error) {
	aiConfig := ai.NewConfig(ai.WithHost(c.String("ai-host")))
	if err := aiConfig.Validate(); err != nil {
		return nil, fmt.Errorf("invalid AI configuration: %w", err)
	}

	engine, err := chronicle.Open(c.String("db"), chronicle.WithAIConfig(aiConfig))
	if err != nil {
		return nil, fmt.Errorf("failed to open store: %w", err)
	}
	return engine, nil
}

func serveCommand(c *cli.Context) error {
	engine, err := openEngine(c)
	if err != nil {
		return err
	}
	defer engine.Close()

	sequential, err := engine.NewPipeline(scoring.NewConfig(scoring.WithMode(scoring.ModeSequential)))
	if err != nil {
		return err
	}
	parallel, err := engine.NewPipeline(scoring.NewConfig(scoring.WithMode(scoring.ModeParallel)))
	if err != nil {
		return err
	}

	defaultMode := scoring.ParseMode(c.String("mode"), scoring.ModeParallel)
	handler, err := server.NewHandler(sequential, parallel, server.WithDefaultMode(defaultMode))
	if err != nil {
		return err
	}

	e := server.New(handler)

	errCh := make(chan error, 1)
	go func() {
		errCh <- e.Start(c.String("listen"))
	}()
	slog.Info("listening", "addr", c.String("listen"))

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
	case <-quit:
		slog.Info("shutting down")
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := e.Shutdown(ctx); err != nil {
			return err
		}
	}
	return nil
}

func queryCommand(c *cli.Context) error {
	query := strings.TrimSpace(strings.Join(c.Args().Slice(), " "))
	if query == "" {
		return fmt.Errorf("query text is required")
	}

	engine, err := openEngine(c)
	if err != nil {
		return err
	}
	defer engine.Close()

	mode := scoring.ParseMode(c.String("mode"), scoring.ModeParallel)
	p, err := engine.NewPipeline(scoring.NewConfig(scoring.WithMode(mode)))
	if err != nil {
		return err
	}

	report, status, err := p.Answer(context.Background(), query, c.Int("top-k"))
	if err != nil {
		return err
	}

	if len(report.References) == 0 {
		fmt.Printf("No relevant documents found for %q (status: %s)\n", query, status)
		return nil
	}

	fmt.Println(report.Narrative)
	fmt.Println()
	fmt.Println("References:")
	for i, ref := range report.References {
		fmt.Printf("%d. %s (%s) [%.1f]\n",
			i+1, ref.Title, ref.Date.Format(time.DateOnly), ref.AverageScore)
	}
	return nil
}

// seedDocument is the JSON shape accepted by the seed command.
type seedDocument struct {
	Title        string `json:"title"`
	Date         string `json:"date"`
	ShortSummary string `json:"short_summary"`
	Content      string `json:"content"`
}

func seedCommand(c *cli.Context) error {
	if c.NArg() != 1 {
		return fmt.Errorf("exactly one documents file is required")
	}

	data, err := os.ReadFile(c.Args().First())
	if err != nil {
		return fmt.Errorf("failed to read documents file: %w", err)
	}

	var seeds []seedDocument
	if err := json.Unmarshal(data, &seeds); err != nil {
		return fmt.Errorf("failed to parse documents file: %w", err)
	}

	docs := make([]*core.Document, 0, len(seeds))
	for i, seed := range seeds {
		date, err := time.Parse(time.DateOnly, seed.Date)
		if err != nil {
			return fmt.Errorf("document %d: invalid date %q: %w", i, seed.Date, err)
		}
		docs = append(docs, &core.Document{
			Title:        seed.Title,
			Date:         date,
			ShortSummary: seed.ShortSummary,
			FullContent:  seed.Content,
		})
	}

	engine, err := openEngine(c)
	if err != nil {
		return err
	}
	defer engine.Close()

	ingester, err := engine.NewIngestionPipeline()
	if err != nil {
		return err
	}
	defer ingester.Release()

	added, err := ingester.Ingest(context.Background(), docs...)
	if err != nil {
		return fmt.Errorf("ingestion failed: %w", err)
	}

	fmt.Printf("Ingested %d documents\n", len(added))
	return nil
}

func reindexCommand(c *cli.Context) error {
	ctx := context.Background()

	backend, err := badger.OpenBackend(c.String("db"), false)
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}
	defer backend.Close()

	docRepo, err := badger.NewDocumentRepository(backend)
	if err != nil {
		return fmt.Errorf("failed to create document repository: %w", err)
	}
	defer docRepo.Close()

	chunkRepo, err := badger.NewChunkRepository(backend)
	if err != nil {
		return fmt.Errorf("failed to create chunk repository: %w", err)
	}
	defer chunkRepo.Close()

	aiConfig := ai.NewConfig(
		ai.WithEmbeddingHost(c.String("embedding-host")),
		ai.WithEmbeddingModel(c.String("embedding-model")),
	)
	if err := aiConfig.Validate(); err != nil {
		return fmt.Errorf("invalid AI configuration: %w", err)
	}

	embedder, err := openai.NewEmbedder(aiConfig)
	if err != nil {
		return fmt.Errorf("failed to create embedder: %w", err)
	}

	config := &reindex.Config{
		BatchSize:      c.Int("batch-size"),
		ReportInterval: c.Int("report-interval"),
		MaxRetries:     c.Int("max-retries"),
		RetryDelay:     c.Duration("retry-delay"),
	}
	if config.BatchSize <= 0 {
		return fmt.Errorf("batch-size must be greater than 0")
	}
	if config.ReportInterval <= 0 {
		return fmt.Errorf("report-interval must be greater than 0")
	}
	if config.MaxRetries <= 0 {
		return fmt.Errorf("max-retries must be greater than 0")
	}

	reindexer := reindex.NewReindexer(docRepo, chunkRepo, embedder, config, os.Stderr)

	fmt.Fprintf(os.Stderr, "Store: %s\n", c.String("db"))
	fmt.Fprintf(os.Stderr, "Embedding host: %s\n", c.String("embedding-host"))
	fmt.Fprintf(os.Stderr, "Embedding model: %s\n", c.String("embedding-model"))
	fmt.Fprintln(os.Stderr)

	if err := reindexer.Run(ctx); err != nil {
		return fmt.Errorf("reindexing failed: %w", err)
	}

	return nil
}

func setupLogger(c *cli.Context) error {
	// Get log level from flag and normalize to lowercase
	levelStr := strings.ToLower(c.String("log-level"))

	// Map string to slog.Level
	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", levelStr)
	}

	// Configure slog with the specified level
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)
	return nil
}
