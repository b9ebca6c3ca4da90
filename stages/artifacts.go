package stages

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/poiesic/docpipe/core"
	"github.com/poiesic/docpipe/pipeline"
	"github.com/poiesic/docpipe/providers"
	"github.com/poiesic/docpipe/storage"
)

// TextArtifact is the output of the text extraction stage: the plain
// text of every readable page.
type TextArtifact struct {
	PageCount int              `json:"pageCount"`
	Pages     []providers.Page `json:"pages"`
}

// imageRecord is one rendered page inside an ImageArtifact. Data is
// base64 on the wire.
type imageRecord struct {
	Page   int    `json:"page"`
	Format string `json:"format"`
	Data   []byte `json:"data"`
}

// ImageArtifact is the output of the image extraction stage.
type ImageArtifact struct {
	Images []imageRecord `json:"images"`
}

// ElementArtifact is the output of the ADE stage: every structural
// element found across the document's pages, in page order.
type ElementArtifact struct {
	Elements []providers.Element `json:"elements"`
}

// ChunkArtifact is the output of the chunking stage. Chunk rows live in
// the chunk repository; the artifact carries their identifiers.
type ChunkArtifact struct {
	DocumentID string   `json:"documentId"`
	ChunkIDs   []string `json:"chunkIds"`
}

// EmbedArtifact is the output of the embedding stage.
type EmbedArtifact struct {
	DocumentID string `json:"documentId"`
	Embedded   int    `json:"embedded"`
	Dimensions int    `json:"dimensions"`
}

// IndexArtifact is the output of the indexing stage and the pipeline's
// final record for a document.
type IndexArtifact struct {
	DocumentID    string `json:"documentId"`
	IndexedChunks int    `json:"indexedChunks"`
}

// loadArtifact fetches and decodes an upstream stage's output. A
// missing or malformed artifact is a validation failure: replaying the
// event cannot repair it.
func loadArtifact(ctx context.Context, repo storage.ArtifactRepository, ref core.ArtifactRef, out any) error {
	if ref == "" {
		return pipeline.NewValidationError(errors.New("trigger event carries no artifact reference"))
	}
	data, err := repo.GetArtifact(ctx, ref)
	if errors.Is(err, storage.ErrNotFound) {
		return pipeline.NewValidationError(fmt.Errorf("artifact %s not found", ref))
	}
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, out); err != nil {
		return pipeline.NewValidationError(fmt.Errorf("decoding artifact %s: %w", ref, err))
	}
	return nil
}

// classify maps provider call errors onto the pipeline's retry
// taxonomy: cancellations and deadline hits are worth redelivering,
// anything else fails only the item it occurred on.
func classify(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return pipeline.NewTransientError(err)
	}
	return err
}
