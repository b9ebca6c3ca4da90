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

// ADE runs advanced document extraction: each rendered page goes
// through the element extractor, which identifies titles, paragraphs,
// tables and other structure on it.
type ADE struct {
	elements  providers.ElementExtractor
	artifacts storage.ArtifactRepository
	logger    *slog.Logger
}

// NewADE creates the ADE processing stage.
func NewADE(elements providers.ElementExtractor, artifacts storage.ArtifactRepository, logger *slog.Logger) *ADE {
	if logger == nil {
		logger = slog.Default()
	}
	return &ADE{
		elements:  elements,
		artifacts: artifacts,
		logger:    logger.With("stage", core.StageADEProcessing),
	}
}

func (s *ADE) Name() core.StageName     { return core.StageADEProcessing }
func (s *ADE) Trigger() event.Name      { return event.DocumentImagesExtracted }
func (s *ADE) SuccessEvent() event.Name { return event.DocumentADEProcessed }
func (s *ADE) FailureEvent() event.Name { return event.DocumentADEProcessingFailed }

func (s *ADE) Prepare(ctx context.Context, in pipeline.StageInput) (pipeline.Execution, error) {
	var images ImageArtifact
	if err := loadArtifact(ctx, s.artifacts, in.InputRef, &images); err != nil {
		return nil, err
	}

	items := make([]string, len(images.Images))
	for i, img := range images.Images {
		items[i] = fmt.Sprintf("page-%d", img.Page)
	}

	return &adeRun{
		extractor: s.elements,
		images:    images.Images,
		items:     items,
	}, nil
}

type adeRun struct {
	extractor providers.ElementExtractor
	images    []imageRecord
	items     []string
	elements  []providers.Element
}

func (r *adeRun) Items() []string { return r.items }

func (r *adeRun) ProcessItem(ctx context.Context, index int) error {
	img := r.images[index]
	found, err := r.extractor.ExtractElements(ctx, providers.PageImage{
		Page:   img.Page,
		Format: img.Format,
		Data:   img.Data,
	})
	if err != nil {
		return classify(err)
	}
	r.elements = append(r.elements, found...)
	return nil
}

func (r *adeRun) MarshalState() ([]byte, error) {
	return json.Marshal(r.elements)
}

func (r *adeRun) RestoreState(data []byte) error {
	return json.Unmarshal(data, &r.elements)
}

func (r *adeRun) Output(context.Context) ([]byte, error) {
	return json.Marshal(ElementArtifact{Elements: r.elements})
}
