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


package search

import (
	"context"
	"log/slog"
	"sort"
	"strings"

	"github.com/poiesic/docpipe/core"
	"github.com/poiesic/docpipe/providers"
	"github.com/poiesic/docpipe/storage"
)

// similarityThreshold is the minimum cosine similarity for a vector
// match to count.
const similarityThreshold = 0.60

// Result is one search hit: a chunk, the document it belongs to, and a
// relevance score.
type Result struct {
	Chunk    *core.Chunk
	Document *core.Document
	Score    float32
}

// Searcher provides semantic search over processed document chunks.
type Searcher struct {
	chunks   storage.ChunkRepository
	docs     storage.DocumentRepository
	embedder providers.Embedder
	logger   *slog.Logger
}

// Option configures a Searcher.
type Option func(*Searcher) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Searcher) error {
		if logger == nil {
			logger = slog.Default()
		}
		s.logger = logger
		return nil
	}
}

// NewSearcher creates a new searcher.
func NewSearcher(
	chunks storage.ChunkRepository,
	docs storage.DocumentRepository,
	embedder providers.Embedder,
	opts ...Option,
) (*Searcher, error) {
	if chunks == nil {
		return nil, ErrChunkRepositoryRequired
	}
	if docs == nil {
		return nil, ErrDocumentRepositoryRequired
	}
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}

	s := &Searcher{
		chunks:   chunks,
		docs:     docs,
		embedder: embedder,
		logger:   slog.Default(),
	}

	// Apply options
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}

	return s, nil
}

// FindSimilar searches for chunks similar to the query.
// Returns up to maxHits results, ranked by relevance score.
func (s *Searcher) FindSimilar(ctx context.Context, query string, maxHits int) ([]*Result, error) {
	return s.FindSimilarWithMonitor(ctx, query, maxHits, nil)
}

// FindSimilarWithMonitor searches for chunks similar to the query with
// monitoring. The monitor receives callbacks at each stage of the
// search process. Returns up to maxHits results, ranked by relevance
// score.
func (s *Searcher) FindSimilarWithMonitor(ctx context.Context, query string, maxHits int, monitor SearchMonitor) ([]*Result, error) {
	if strings.TrimSpace(query) == "" {
		return nil, ErrEmptyQuery
	}
	if monitor == nil {
		monitor = &noopMonitor{}
	}

	monitor.Start(query)

	embedding, err := s.embedder.EmbedText(ctx, query)
	if err != nil {
		s.logger.Error("error generating embedding for query", "query", query, "err", err)
		return nil, err
	}
	monitor.AfterQueryEmbedding(len(embedding))

	// Fetch extra hits so the verbatim boost can reorder before the cut.
	matches, err := s.chunks.FindSimilar(ctx, embedding, similarityThreshold, maxHits*2)
	if err != nil {
		s.logger.Error("error querying for similar chunks", "err", err)
		return nil, err
	}

	matchIds := make([]string, 0, len(matches))
	for _, match := range matches {
		matchIds = append(matchIds, match.Chunk.Id)
	}
	monitor.AfterVectorSearch(matchIds)

	// Documents are shared across a document's chunks; fetch each once.
	docCache := make(map[string]*core.Document)
	results := make([]*Result, 0, len(matches))

	for _, match := range matches {
		doc, ok := docCache[match.Chunk.DocumentId]
		if !ok {
			doc, err = s.docs.GetDocument(ctx, match.Chunk.DocumentId)
			if err != nil {
				s.logger.Warn("error loading document for chunk",
					"chunk", match.Chunk.Id,
					"document", match.Chunk.DocumentId,
					"err", err)
				continue
			}
			docCache[match.Chunk.DocumentId] = doc
		}

		score := match.Score
		if containsAllQueryWords(match.Chunk.Text, query) {
			score += 0.3
			monitor.VerbatimHit(match.Chunk.Id)
		}

		results = append(results, &Result{
			Chunk:    match.Chunk,
			Document: doc,
			Score:    score,
		})
	}

	// Sort by score descending
	sort.Slice(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	if len(results) > maxHits {
		results = results[:maxHits]
	}
	monitor.Finish(results)

	return results, nil
}
