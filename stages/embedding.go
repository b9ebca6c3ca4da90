package stages

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/poiesic/docpipe/core"
	"github.com/poiesic/docpipe/event"
	"github.com/poiesic/docpipe/pipeline"
	"github.com/poiesic/docpipe/providers"
	"github.com/poiesic/docpipe/storage"
)

// Embedding attaches a vector to every chunk the chunking stage stored.
type Embedding struct {
	embedder providers.Embedder
	chunks   storage.ChunkRepository
	logger   *slog.Logger
}

// NewEmbedding creates the embedding stage.
func NewEmbedding(embedder providers.Embedder, chunks storage.ChunkRepository, logger *slog.Logger) *Embedding {
	if logger == nil {
		logger = slog.Default()
	}
	return &Embedding{
		embedder: embedder,
		chunks:   chunks,
		logger:   logger.With("stage", core.StageEmbedding),
	}
}

func (s *Embedding) Name() core.StageName     { return core.StageEmbedding }
func (s *Embedding) Trigger() event.Name      { return event.DocumentChunked }
func (s *Embedding) SuccessEvent() event.Name { return event.DocumentEmbedded }
func (s *Embedding) FailureEvent() event.Name { return event.DocumentEmbeddingFailed }

func (s *Embedding) Prepare(ctx context.Context, in pipeline.StageInput) (pipeline.Execution, error) {
	chunks, err := s.chunks.GetChunksByDocument(ctx, in.Document.Id)
	if err != nil {
		return nil, err
	}

	items := make([]string, len(chunks))
	for i, chunk := range chunks {
		items[i] = fmt.Sprintf("chunk-%d", chunk.Seq)
	}

	return &embeddingRun{
		embedder:   s.embedder,
		repo:       s.chunks,
		documentID: in.Document.Id,
		chunks:     chunks,
		items:      items,
	}, nil
}

type embeddingRun struct {
	embedder   providers.Embedder
	repo       storage.ChunkRepository
	documentID string
	chunks     []*core.Chunk
	items      []string
	embedded   []*core.Chunk
	dimensions int
}

func (r *embeddingRun) Items() []string { return r.items }

func (r *embeddingRun) ProcessItem(ctx context.Context, index int) error {
	chunk := r.chunks[index]
	if len(chunk.Vector) > 0 {
		// Already embedded by an earlier attempt.
		r.embedded = append(r.embedded, chunk)
		r.dimensions = len(chunk.Vector)
		return nil
	}

	vector, err := r.embedder.EmbedText(ctx, chunk.Text)
	if err != nil {
		return classify(err)
	}
	chunk.Vector = vector
	r.embedded = append(r.embedded, chunk)
	r.dimensions = len(vector)
	return nil
}

type embeddingState struct {
	Embedded   []*core.Chunk `json:"embedded"`
	Dimensions int           `json:"dimensions"`
}

func (r *embeddingRun) MarshalState() ([]byte, error) {
	return json.Marshal(embeddingState{Embedded: r.embedded, Dimensions: r.dimensions})
}

func (r *embeddingRun) RestoreState(data []byte) error {
	var state embeddingState
	if err := json.Unmarshal(data, &state); err != nil {
		return err
	}
	r.embedded = state.Embedded
	r.dimensions = state.Dimensions
	return nil
}

func (r *embeddingRun) Output(ctx context.Context) ([]byte, error) {
	if _, err := r.repo.UpdateChunks(ctx, r.embedded...); err != nil {
		return nil, err
	}
	return json.Marshal(EmbedArtifact{
		DocumentID: r.documentID,
		Embedded:   len(r.embedded),
		Dimensions: r.dimensions,
	})
}
