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


package stages

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/poiesic/docpipe/core"
	"github.com/poiesic/docpipe/event"
	"github.com/poiesic/docpipe/pipeline"
	"github.com/poiesic/docpipe/providers"
	"github.com/poiesic/docpipe/storage"
)

// skippedElementTypes are page furniture excluded from chunk text.
var skippedElementTypes = map[string]bool{
	"page_header": true,
	"page_footer": true,
}

// Chunking turns the document's extracted elements into searchable
// chunks and stores them, without vectors, for the embedding stage.
type Chunking struct {
	chunker   providers.Chunker
	artifacts storage.ArtifactRepository
	chunks    storage.ChunkRepository
	logger    *slog.Logger
}

// NewChunking creates the chunking stage.
func NewChunking(chunker providers.Chunker, artifacts storage.ArtifactRepository, chunks storage.ChunkRepository, logger *slog.Logger) *Chunking {
	if logger == nil {
		logger = slog.Default()
	}
	return &Chunking{
		chunker:   chunker,
		artifacts: artifacts,
		chunks:    chunks,
		logger:    logger.With("stage", core.StageChunking),
	}
}

func (s *Chunking) Name() core.StageName     { return core.StageChunking }
func (s *Chunking) Trigger() event.Name      { return event.DocumentADEProcessed }
func (s *Chunking) SuccessEvent() event.Name { return event.DocumentChunked }
func (s *Chunking) FailureEvent() event.Name { return event.DocumentChunkingFailed }

func (s *Chunking) Prepare(ctx context.Context, in pipeline.StageInput) (pipeline.Execution, error) {
	var elements ElementArtifact
	if err := loadArtifact(ctx, s.artifacts, in.InputRef, &elements); err != nil {
		return nil, err
	}

	text := joinElements(elements.Elements)
	if strings.TrimSpace(text) == "" {
		return nil, pipeline.NewValidationError(providers.ErrEmptyText)
	}

	pieces, err := s.chunker.Split(text)
	if err != nil {
		return nil, classify(err)
	}

	items := make([]string, len(pieces))
	for i := range pieces {
		items[i] = fmt.Sprintf("chunk-%d", i)
	}

	return &chunkingRun{
		repo:       s.chunks,
		documentID: in.Document.Id,
		pieces:     pieces,
		items:      items,
	}, nil
}

type chunkingRun struct {
	repo       storage.ChunkRepository
	documentID string
	pieces     []string
	items      []string
	chunks     []*core.Chunk
}

func (r *chunkingRun) Items() []string { return r.items }

func (r *chunkingRun) ProcessItem(_ context.Context, index int) error {
	text := strings.TrimSpace(r.pieces[index])
	if text == "" {
		return providers.ErrEmptyText
	}
	r.chunks = append(r.chunks, &core.Chunk{
		DocumentId: r.documentID,
		Seq:        index,
		Text:       text,
	})
	return nil
}

// Output replaces the document's chunk rows wholesale, so a replayed
// run never leaves duplicates behind.
func (r *chunkingRun) Output(ctx context.Context) ([]byte, error) {
	if _, err := r.repo.DeleteChunksByDocument(ctx, r.documentID); err != nil {
		return nil, err
	}
	stored, err := r.repo.AddChunks(ctx, r.chunks...)
	if err != nil {
		return nil, err
	}

	ids := make([]string, len(stored))
	for i, chunk := range stored {
		ids[i] = chunk.Id
	}
	return json.Marshal(ChunkArtifact{
		DocumentID: r.documentID,
		ChunkIDs:   ids,
	})
}

// joinElements flattens extracted elements into one text stream in page
// order, dropping page furniture.
func joinElements(elements []providers.Element) string {
	var b strings.Builder
	for _, el := range elements {
		if skippedElementTypes[el.Type] {
			continue
		}
		text := strings.TrimSpace(el.Text)
		if text == "" {
			continue
		}
		if b.Len() > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(text)
	}
	return b.String()
}
