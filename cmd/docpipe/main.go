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
	"fmt"
	"log"
	"log/slog"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"

	"github.com/poiesic/docpipe"
	"github.com/poiesic/docpipe/core"
	"github.com/poiesic/docpipe/pipeline"
	"github.com/poiesic/docpipe/providers"
	"github.com/poiesic/docpipe/providers/mock"
	"github.com/poiesic/docpipe/reembed"
)

func main() {
	// .env is optional; flags and real environment variables win. Loaded
	// before Run so EnvVars-backed flags can see it.
	_ = godotenv.Load()

	if err := newApp().Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "docpipe",
		Usage: "Document ingestion pipeline for semantic search",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
		},
		Before: setup,
		Commands: []*cli.Command{
			{
				Name:      "process",
				Usage:     "Ingest a document and run it through the pipeline",
				ArgsUsage: "FILE",
				Action:    processCommand,
				Flags: append(systemFlags(),
					&cli.DurationFlag{
						Name:  "wait",
						Usage: "Maximum time to wait for processing to finish",
						Value: 10 * time.Minute,
					},
				),
			},
			{
				Name:      "status",
				Usage:     "Show processing progress for a document, or list all documents",
				ArgsUsage: "[DOCUMENT_ID]",
				Action:    statusCommand,
				Flags:     systemFlags(),
			},
			{
				Name:      "retry",
				Usage:     "Re-dispatch a failed document from a stage",
				ArgsUsage: "DOCUMENT_ID STAGE",
				Action:    retryCommand,
				Flags: append(systemFlags(),
					&cli.DurationFlag{
						Name:  "wait",
						Usage: "Maximum time to wait for processing to finish",
						Value: 10 * time.Minute,
					},
				),
			},
			{
				Name:      "search",
				Usage:     "Semantic search over processed documents",
				ArgsUsage: "QUERY...",
				Action:    searchCommand,
				Flags: append(systemFlags(),
					&cli.IntFlag{
						Name:  "max-hits",
						Usage: "Maximum number of results",
						Value: 5,
					},
				),
			},
			{
				Name:   "reembed",
				Usage:  "Reembed all chunks with new embeddings",
				Action: reembedCommand,
				Flags: append(systemFlags(),
					&cli.IntFlag{
						Name:  "batch-size",
						Usage: "Number of chunks to process in each batch",
						Value: 100,
					},
					&cli.IntFlag{
						Name:  "report-interval",
						Usage: "Report progress every N chunks",
						Value: 100,
					},
					&cli.IntFlag{
						Name:  "max-retries",
						Usage: "Maximum retry attempts for failed operations",
						Value: 3,
					},
					&cli.DurationFlag{
						Name:  "retry-delay",
						Usage: "Base delay for exponential backoff",
						Value: 1 * time.Second,
					},
				),
			},
		},
	}
}

// systemFlags are shared by every command that opens a System.
func systemFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:     "db",
			Aliases:  []string{"d"},
			Usage:    "Path to BadgerDB database directory",
			Required: true,
		},
		&cli.StringFlag{
			Name:    "embedding-host",
			Usage:   "Embedding service host URL",
			Value:   "http://localhost:11434/v1",
			EnvVars: []string{"DOCPIPE_EMBEDDING_HOST"},
		},
		&cli.StringFlag{
			Name:    "embedding-model",
			Usage:   "Embedding model name",
			EnvVars: []string{"DOCPIPE_EMBEDDING_MODEL"},
		},
		&cli.StringFlag{
			Name:    "ade-host",
			Usage:   "Document element extraction service host URL (defaults to embedding-host)",
			EnvVars: []string{"DOCPIPE_ADE_HOST"},
		},
		&cli.StringFlag{
			Name:    "ade-model",
			Usage:   "Document element extraction model name",
			EnvVars: []string{"DOCPIPE_ADE_MODEL"},
		},
		&cli.StringFlag{
			Name:    "user",
			Aliases: []string{"u"},
			Usage:   "User the documents belong to",
			Value:   "default",
		},
		&cli.StringFlag{
			Name:  "policies",
			Usage: "Path to a YAML file with per-stage delivery policies",
		},
		&cli.BoolFlag{
			Name:  "mock",
			Usage: "Use synthetic providers instead of external services",
		},
	}
}

// openSystem builds a System from command flags.
func openSystem(c *cli.Context) (*docpipe.System, error) {
	var provider providers.Provider
	if c.Bool("mock") {
		provider = mock.NewMockProvider()
	} else {
		if c.String("embedding-model") == "" {
			return nil, fmt.Errorf("embedding-model is required (or pass --mock)")
		}
		if c.String("ade-model") == "" {
			return nil, fmt.Errorf("ade-model is required (or pass --mock)")
		}
		adeHost := c.String("ade-host")
		if adeHost == "" {
			adeHost = c.String("embedding-host")
		}
		var err error
		provider, err = docpipe.NewPDFProvider(providers.NewConfig(
			providers.WithEmbeddingHost(c.String("embedding-host")),
			providers.WithEmbeddingModel(c.String("embedding-model")),
			providers.WithADEHost(adeHost),
			providers.WithADEModel(c.String("ade-model")),
		))
		if err != nil {
			return nil, fmt.Errorf("failed to create provider: %w", err)
		}
	}

	opts := []docpipe.SystemOption{docpipe.WithProvider(provider)}
	if path := c.String("policies"); path != "" {
		policies, err := pipeline.LoadConfig(path)
		if err != nil {
			return nil, fmt.Errorf("failed to load policies: %w", err)
		}
		opts = append(opts, docpipe.WithPolicies(policies))
	}

	return docpipe.Open(c.String("db"), opts...)
}

func processCommand(c *cli.Context) error {
	if c.NArg() != 1 {
		return fmt.Errorf("expected exactly one file argument")
	}

	system, err := openSystem(c)
	if err != nil {
		return err
	}
	defer system.Close()

	ctx := context.Background()
	doc, err := system.Ingest(ctx, c.Args().First(), c.String("user"))
	if err != nil {
		return fmt.Errorf("failed to ingest %s: %w", c.Args().First(), err)
	}
	fmt.Fprintf(os.Stderr, "Document %s queued\n", doc.Id)

	drainCtx, cancel := context.WithTimeout(ctx, c.Duration("wait"))
	defer cancel()
	if err := system.Drain(drainCtx); err != nil {
		return fmt.Errorf("processing did not finish: %w", err)
	}

	final, err := system.Document(ctx, doc.Id)
	if err != nil {
		return err
	}
	fmt.Printf("%s: %s\n", final.Id, final.Status)
	return nil
}

func statusCommand(c *cli.Context) error {
	system, err := openSystem(c)
	if err != nil {
		return err
	}
	defer system.Close()

	ctx := context.Background()
	if c.NArg() == 0 {
		docs, err := system.Documents(ctx, c.String("user"))
		if err != nil {
			return err
		}
		for _, doc := range docs {
			fmt.Printf("%s  %-24s %s\n", doc.Id, doc.Status, doc.FilePath)
		}
		return nil
	}

	docID := c.Args().First()
	doc, err := system.Document(ctx, docID)
	if err != nil {
		return err
	}
	summary, err := system.Progress(ctx, docID)
	if err != nil {
		return err
	}

	fmt.Printf("Document: %s (%s)\n", doc.Id, doc.FilePath)
	fmt.Printf("Status:   %s\n", doc.Status)
	fmt.Printf("Progress: %d%%\n", summary.OverallProgress)
	if summary.CurrentStage != "" {
		fmt.Printf("Running:  %s\n", summary.CurrentStage)
	}
	if summary.EstimatedTimeRemaining != nil {
		fmt.Printf("ETA:      %s\n", summary.EstimatedTimeRemaining.Round(time.Second))
	}

	stages := make([]core.StageName, 0, len(summary.StageDurations))
	for stage := range summary.StageDurations {
		stages = append(stages, stage)
	}
	sort.Slice(stages, func(i, j int) bool { return stages[i] < stages[j] })
	for _, stage := range stages {
		fmt.Printf("  %-20s %s\n", stage, summary.StageDurations[stage].Round(time.Millisecond))
	}
	return nil
}

func retryCommand(c *cli.Context) error {
	if c.NArg() != 2 {
		return fmt.Errorf("expected DOCUMENT_ID and STAGE arguments")
	}
	stage := core.StageName(c.Args().Get(1))
	if err := core.ValidateStageName(stage); err != nil {
		return err
	}

	system, err := openSystem(c)
	if err != nil {
		return err
	}
	defer system.Close()

	ctx := context.Background()
	if err := system.Retry(ctx, c.Args().First(), stage); err != nil {
		return fmt.Errorf("retry failed: %w", err)
	}

	drainCtx, cancel := context.WithTimeout(ctx, c.Duration("wait"))
	defer cancel()
	if err := system.Drain(drainCtx); err != nil {
		return fmt.Errorf("processing did not finish: %w", err)
	}

	doc, err := system.Document(ctx, c.Args().First())
	if err != nil {
		return err
	}
	fmt.Printf("%s: %s\n", doc.Id, doc.Status)
	return nil
}

func searchCommand(c *cli.Context) error {
	if c.NArg() == 0 {
		return fmt.Errorf("expected a query")
	}

	system, err := openSystem(c)
	if err != nil {
		return err
	}
	defer system.Close()

	searcher, err := system.NewSearcher()
	if err != nil {
		return err
	}

	query := strings.Join(c.Args().Slice(), " ")
	results, err := searcher.FindSimilar(context.Background(), query, c.Int("max-hits"))
	if err != nil {
		return err
	}

	fmt.Printf("Found %d hits\n", len(results))
	for i, hit := range results {
		fmt.Printf("%d: %s#%d [%0.3f]\n   %s\n",
			i, hit.Document.FilePath, hit.Chunk.Seq, hit.Score, hit.Chunk.Text)
	}
	return nil
}

func reembedCommand(c *cli.Context) error {
	config := &reembed.Config{
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

	system, err := openSystem(c)
	if err != nil {
		return err
	}
	defer system.Close()

	fmt.Fprintf(os.Stderr, "Database: %s\n", c.String("db"))
	fmt.Fprintf(os.Stderr, "Embedding host: %s\n", c.String("embedding-host"))
	fmt.Fprintf(os.Stderr, "Embedding model: %s\n", c.String("embedding-model"))
	fmt.Fprintln(os.Stderr)

	reembedder := system.NewReembedder(config, os.Stderr)
	if err := reembedder.Run(context.Background(), c.String("user")); err != nil {
		return fmt.Errorf("reembedding failed: %w", err)
	}
	return nil
}

func setup(c *cli.Context) error {
	levelStr := strings.ToLower(c.String("log-level"))

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

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}
