package stages

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/poiesic/docpipe/core"
	"github.com/poiesic/docpipe/event"
	"github.com/poiesic/docpipe/pipeline"
	"github.com/poiesic/docpipe/providers"
	"github.com/poiesic/docpipe/storage"
)

// Imaging renders every document page to an image for the ADE stage.
type Imaging struct {
	imager    providers.Imager
	artifacts storage.ArtifactRepository
	logger    *slog.Logger
}

// NewImaging creates the image extraction stage.
func NewImaging(imager providers.Imager, artifacts storage.ArtifactRepository, logger *slog.Logger) *Imaging {
	if logger == nil {
		logger = slog.Default()
	}
	return &Imaging{
		imager:    imager,
		artifacts: artifacts,
		logger:    logger.With("stage", core.StageImageExtraction),
	}
}

func (s *Imaging) Name() core.StageName     { return core.StageImageExtraction }
func (s *Imaging) Trigger() event.Name      { return event.DocumentTextExtracted }
func (s *Imaging) SuccessEvent() event.Name { return event.DocumentImagesExtracted }
func (s *Imaging) FailureEvent() event.Name { return event.DocumentImageExtractionFailed }

func (s *Imaging) Prepare(ctx context.Context, in pipeline.StageInput) (pipeline.Execution, error) {
	var text TextArtifact
	if err := loadArtifact(ctx, s.artifacts, in.InputRef, &text); err != nil {
		return nil, err
	}

	return &imagingRun{
		imager:   s.imager,
		filePath: in.Document.FilePath,
		items:    pageItems(text.PageCount),
		images:   make([]imageRecord, 0, text.PageCount),
	}, nil
}

type imagingRun struct {
	imager   providers.Imager
	filePath string
	items    []string
	images   []imageRecord
}

func (r *imagingRun) Items() []string { return r.items }

func (r *imagingRun) ProcessItem(ctx context.Context, index int) error {
	img, err := r.imager.RenderPage(ctx, r.filePath, index+1)
	if err != nil {
		return classify(err)
	}
	r.images = append(r.images, imageRecord{
		Page:   img.Page,
		Format: img.Format,
		Data:   img.Data,
	})
	return nil
}

func (r *imagingRun) MarshalState() ([]byte, error) {
	return json.Marshal(r.images)
}

func (r *imagingRun) RestoreState(data []byte) error {
	return json.Unmarshal(data, &r.images)
}

func (r *imagingRun) Output(context.Context) ([]byte, error) {
	return json.Marshal(ImageArtifact{Images: r.images})
}
