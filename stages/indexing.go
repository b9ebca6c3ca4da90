package stages

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/poiesic/docpipe/core"
	"github.com/poiesic/docpipe/event"
	"github.com/poiesic/docpipe/pipeline"
	"github.com/poiesic/docpipe/storage"
)

// Indexing is the final stage: it verifies every chunk carries a vector
// and seals the document as processed. Its success event is the
// pipeline's terminal milestone.
type Indexing struct {
	chunks storage.ChunkRepository
	logger *slog.Logger
}

// NewIndexing creates the indexing stage.
func NewIndexing(chunks storage.ChunkRepository, logger *slog.Logger) *Indexing {
	if logger == nil {
		logger = slog.Default()
	}
	return &Indexing{
		chunks: chunks,
		logger: logger.With("stage", core.StageIndexing),
	}
}

func (s *Indexing) Name() core.StageName     { return core.StageIndexing }
func (s *Indexing) Trigger() event.Name      { return event.DocumentEmbedded }
func (s *Indexing) SuccessEvent() event.Name { return event.DocumentProcessed }
func (s *Indexing) FailureEvent() event.Name { return event.DocumentIndexingFailed }

func (s *Indexing) Prepare(ctx context.Context, in pipeline.StageInput) (pipeline.Execution, error) {
	chunks, err := s.chunks.GetChunksByDocument(ctx, in.Document.Id)
	if err != nil {
		return nil, err
	}
	if len(chunks) == 0 {
		return nil, pipeline.NewValidationError(errors.New("no chunks to index"))
	}

	items := make([]string, len(chunks))
	for i, chunk := range chunks {
		items[i] = fmt.Sprintf("chunk-%d", chunk.Seq)
	}

	return &indexingRun{
		documentID: in.Document.Id,
		chunks:     chunks,
		items:      items,
	}, nil
}

type indexingRun struct {
	documentID string
	chunks     []*core.Chunk
	items      []string
	indexed    int
}

func (r *indexingRun) Items() []string { return r.items }

func (r *indexingRun) ProcessItem(_ context.Context, index int) error {
	if len(r.chunks[index].Vector) == 0 {
		return errors.New("chunk has no embedding vector")
	}
	r.indexed++
	return nil
}

func (r *indexingRun) Output(context.Context) ([]byte, error) {
	return json.Marshal(IndexArtifact{
		DocumentID:    r.documentID,
		IndexedChunks: r.indexed,
	})
}
