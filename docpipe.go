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


package docpipe

import (
	"context"
	"io"
	"log/slog"

	"github.com/poiesic/docpipe/core"
	"github.com/poiesic/docpipe/event"
	"github.com/poiesic/docpipe/ingest"
	"github.com/poiesic/docpipe/pipeline"
	"github.com/poiesic/docpipe/providers"
	"github.com/poiesic/docpipe/providers/openai"
	"github.com/poiesic/docpipe/providers/pdf"
	"github.com/poiesic/docpipe/reembed"
	"github.com/poiesic/docpipe/search"
	"github.com/poiesic/docpipe/stages"
	"github.com/poiesic/docpipe/status"
	badgerstore "github.com/poiesic/docpipe/storage/badger"
	"github.com/poiesic/docpipe/substrate/memory"
)

// System is the assembled document pipeline: storage, providers, the
// event substrate, the stage coordinator, and the ingestion entry
// point, wired together and sharing one lifecycle.
type System struct {
	backend     *badgerstore.Backend
	repos       *badgerstore.Repositories
	provider    providers.Provider
	registry    *event.Registry
	substrate   *memory.Substrate
	coordinator *pipeline.Coordinator
	ingestor    *ingest.Ingestor
	logger      *slog.Logger
}

// SystemOption configures a System.
type SystemOption func(*systemOptions)

type systemOptions struct {
	provider providers.Provider
	policies *pipeline.Config
	logger   *slog.Logger
}

// WithProvider sets the external service provider.
// Required: Open fails without one.
func WithProvider(p providers.Provider) SystemOption {
	return func(o *systemOptions) {
		o.provider = p
	}
}

// WithPolicies sets the per-stage delivery policy configuration.
// Default is the built-in stage defaults.
func WithPolicies(cfg *pipeline.Config) SystemOption {
	return func(o *systemOptions) {
		o.policies = cfg
	}
}

// WithSystemLogger sets a custom logger.
// Default is slog.Default().
func WithSystemLogger(logger *slog.Logger) SystemOption {
	return func(o *systemOptions) {
		o.logger = logger
	}
}

// NewPDFProvider builds the production provider set: PDF text
// extraction and page rendering locally, element extraction and
// embeddings via the configured OpenAI-compatible endpoints.
func NewPDFProvider(config *providers.Config) (providers.Provider, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	embedder, err := openai.NewEmbedder(config)
	if err != nil {
		return nil, err
	}
	elements, err := openai.NewElementExtractor(config)
	if err != nil {
		return nil, err
	}
	chunker, err := providers.NewTextChunker(config)
	if err != nil {
		return nil, err
	}

	return providers.NewProvider(
		pdf.NewExtractor(),
		pdf.NewImager(),
		elements,
		embedder,
		chunker,
	), nil
}

// Open assembles a pipeline system over a BadgerDB directory. Pass an
// empty filePath for a transient in-memory system.
func Open(filePath string, opts ...SystemOption) (*System, error) {
	options := &systemOptions{
		policies: &pipeline.Config{},
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(options)
	}
	if options.provider == nil {
		return nil, providers.ErrProviderRequired
	}

	backend, err := badgerstore.OpenBackend(filePath, filePath == "")
	if err != nil {
		return nil, err
	}
	repos := badgerstore.NewRepositories(backend)
	registry := event.NewRegistry()

	sub, err := memory.New(memory.WithLogger(options.logger))
	if err != nil {
		backend.Close()
		return nil, err
	}

	executor, err := pipeline.NewExecutor(
		repos.Documents, repos.States, repos.Artifacts, repos.Checkpoints,
		registry,
		pipeline.WithLogger(options.logger))
	if err != nil {
		sub.Close()
		backend.Close()
		return nil, err
	}

	bindings, err := stages.Bindings(options.provider, repos, options.policies, options.logger)
	if err != nil {
		sub.Close()
		backend.Close()
		return nil, err
	}

	coordinator, err := pipeline.NewCoordinator(sub, executor,
		repos.Documents, repos.States, registry, bindings,
		pipeline.WithCoordinatorLogger(options.logger))
	if err != nil {
		sub.Close()
		backend.Close()
		return nil, err
	}

	ingestor, err := ingest.NewIngestor(repos.Documents, registry, coordinator,
		ingest.WithLogger(options.logger))
	if err != nil {
		sub.Close()
		backend.Close()
		return nil, err
	}

	return &System{
		backend:     backend,
		repos:       repos,
		provider:    options.provider,
		registry:    registry,
		substrate:   sub,
		coordinator: coordinator,
		ingestor:    ingestor,
		logger:      options.logger,
	}, nil
}

// Ingest registers a file as a document and starts its processing.
func (s *System) Ingest(ctx context.Context, filePath, userID string) (*core.Document, error) {
	return s.ingestor.IngestFile(ctx, filePath, userID)
}

// Retry reruns a failed stage for a document.
func (s *System) Retry(ctx context.Context, documentID string, stage core.StageName) error {
	return s.coordinator.RetryDocument(ctx, documentID, stage)
}

// Progress returns the processing summary for a document.
func (s *System) Progress(ctx context.Context, documentID string) (status.Summary, error) {
	return s.coordinator.Progress(ctx, documentID)
}

// Document returns a stored document by ID.
func (s *System) Document(ctx context.Context, documentID string) (*core.Document, error) {
	return s.repos.Documents.GetDocument(ctx, documentID)
}

// Documents lists a user's documents.
func (s *System) Documents(ctx context.Context, userID string) ([]*core.Document, error) {
	return s.repos.Documents.ListDocumentsByUser(ctx, userID)
}

// NewSearcher creates a searcher over the system's chunks.
func (s *System) NewSearcher(opts ...search.Option) (*search.Searcher, error) {
	return search.NewSearcher(s.repos.Chunks, s.repos.Documents, s.provider.Embedder(), opts...)
}

// NewReembedder creates a reembedder writing progress to w.
func (s *System) NewReembedder(config *reembed.Config, w io.Writer) *reembed.Reembedder {
	return reembed.NewReembedder(s.repos.Documents, s.repos.Chunks,
		s.provider.Embedder(), config, w)
}

// Drain blocks until all in-flight processing finishes or ctx expires.
func (s *System) Drain(ctx context.Context) error {
	return s.substrate.Drain(ctx)
}

// Close shuts down the substrate, the provider, and storage.
func (s *System) Close() error {
	if err := s.substrate.Close(); err != nil {
		s.logger.Error("error closing substrate", "err", err)
	}
	if err := s.provider.Close(); err != nil {
		s.logger.Error("error closing provider", "err", err)
	}
	if err := s.backend.Close(); err != nil {
		s.logger.Error("error closing backend storage", "err", err)
		return err
	}
	return nil
}
