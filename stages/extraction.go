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

	"github.com/poiesic/docpipe/core"
	"github.com/poiesic/docpipe/event"
	"github.com/poiesic/docpipe/pipeline"
	"github.com/poiesic/docpipe/providers"
)

// Extraction is the first pipeline stage: it pulls the plain text out
// of an uploaded document page by page.
type Extraction struct {
	extractor providers.Extractor
	logger    *slog.Logger
}

// NewExtraction creates the text extraction stage.
func NewExtraction(extractor providers.Extractor, logger *slog.Logger) *Extraction {
	if logger == nil {
		logger = slog.Default()
	}
	return &Extraction{
		extractor: extractor,
		logger:    logger.With("stage", core.StageTextExtraction),
	}
}

func (s *Extraction) Name() core.StageName     { return core.StageTextExtraction }
func (s *Extraction) Trigger() event.Name      { return event.DocumentUploaded }
func (s *Extraction) SuccessEvent() event.Name { return event.DocumentTextExtracted }
func (s *Extraction) FailureEvent() event.Name { return event.DocumentExtractionFailed }

// supportedMimeTypes lists the formats the extraction stage accepts.
// Anything else is rejected terminally before any provider call.
var supportedMimeTypes = map[string]bool{
	"application/pdf": true,
}

func (s *Extraction) Prepare(ctx context.Context, in pipeline.StageInput) (pipeline.Execution, error) {
	if !supportedMimeTypes[in.Document.MimeType] {
		return nil, pipeline.NewValidationError(
			fmt.Errorf("%w: %s", providers.ErrUnsupportedFormat, in.Document.MimeType))
	}

	count, err := s.extractor.PageCount(ctx, in.Document.FilePath)
	if err != nil {
		if classified := classify(err); pipeline.IsRetryable(classified) {
			return nil, classified
		}
		// An unreadable file will stay unreadable on redelivery.
		return nil, pipeline.NewValidationError(
			fmt.Errorf("opening %s: %w", in.Document.FilePath, err))
	}

	return &extractionRun{
		extractor: s.extractor,
		filePath:  in.Document.FilePath,
		items:     pageItems(count),
		pages:     make([]providers.Page, 0, count),
		pageCount: count,
	}, nil
}

type extractionRun struct {
	extractor providers.Extractor
	filePath  string
	items     []string
	pages     []providers.Page
	pageCount int
}

func (r *extractionRun) Items() []string { return r.items }

func (r *extractionRun) ProcessItem(ctx context.Context, index int) error {
	page, err := r.extractor.ExtractPage(ctx, r.filePath, index+1)
	if err != nil {
		return classify(err)
	}
	r.pages = append(r.pages, page)
	return nil
}

func (r *extractionRun) MarshalState() ([]byte, error) {
	return json.Marshal(r.pages)
}

func (r *extractionRun) RestoreState(data []byte) error {
	return json.Unmarshal(data, &r.pages)
}

func (r *extractionRun) Output(context.Context) ([]byte, error) {
	return json.Marshal(TextArtifact{
		PageCount: r.pageCount,
		Pages:     r.pages,
	})
}

// pageItems labels a document's pages for progress reporting.
func pageItems(count int) []string {
	items := make([]string, count)
	for i := range items {
		items[i] = fmt.Sprintf("page-%d", i+1)
	}
	return items
}
