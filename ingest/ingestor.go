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


package ingest

import (
	"context"
	"log/slog"
	"mime"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/poiesic/docpipe/core"
	"github.com/poiesic/docpipe/event"
	"github.com/poiesic/docpipe/storage"
)

// Publisher emits events onto the processing substrate.
type Publisher interface {
	Publish(ctx context.Context, evt *event.Event) error
}

// Ingestor is the pipeline's entry point: it registers an uploaded file
// as a document and announces it, which starts the stage chain.
type Ingestor struct {
	docs     storage.DocumentRepository
	registry *event.Registry
	pub      Publisher
	logger   *slog.Logger
}

// Option configures an Ingestor.
type Option func(*Ingestor) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(i *Ingestor) error {
		if logger == nil {
			logger = slog.Default()
		}
		i.logger = logger.With("component", "ingestor")
		return nil
	}
}

// NewIngestor creates a new ingestor.
func NewIngestor(
	docs storage.DocumentRepository,
	registry *event.Registry,
	pub Publisher,
	opts ...Option,
) (*Ingestor, error) {
	if docs == nil {
		return nil, ErrDocumentRepositoryRequired
	}
	if registry == nil {
		return nil, ErrRegistryRequired
	}
	if pub == nil {
		return nil, ErrPublisherRequired
	}

	i := &Ingestor{
		docs:     docs,
		registry: registry,
		pub:      pub,
		logger:   slog.Default().With("component", "ingestor"),
	}

	for _, opt := range opts {
		if err := opt(i); err != nil {
			return nil, err
		}
	}

	return i, nil
}

// IngestFile registers a file on disk as a new document owned by userID
// and publishes the upload event. The document starts in the uploaded
// state; processing happens asynchronously from here.
func (i *Ingestor) IngestFile(ctx context.Context, filePath, userID string) (*core.Document, error) {
	info, err := os.Stat(filePath)
	if os.IsNotExist(err) {
		return nil, ErrFileNotFound
	}
	if err != nil {
		return nil, err
	}
	if info.IsDir() {
		return nil, ErrNotAFile
	}

	absPath, err := filepath.Abs(filePath)
	if err != nil {
		return nil, err
	}

	doc := &core.Document{
		Id:       uuid.NewString(),
		Status:   core.StatusUploaded,
		FilePath: absPath,
		MimeType: detectMimeType(absPath),
		FileSize: info.Size(),
		UserId:   userID,
	}
	if err := core.ValidateDocument(doc); err != nil {
		return nil, err
	}

	doc, err = i.docs.AddDocument(ctx, doc)
	if err != nil {
		return nil, err
	}

	evt, err := i.registry.NewEvent(&event.UploadedPayload{
		DocumentID: doc.Id,
		UserID:     doc.UserId,
		FilePath:   doc.FilePath,
		MimeType:   doc.MimeType,
		FileSize:   doc.FileSize,
	})
	if err != nil {
		return nil, err
	}

	if err := i.pub.Publish(ctx, evt); err != nil {
		return nil, err
	}

	i.logger.Info("document ingested",
		"document", doc.Id,
		"user", doc.UserId,
		"file", doc.FilePath,
		"size", doc.FileSize,
		"mimeType", doc.MimeType)

	return doc, nil
}

// detectMimeType maps a file's extension to a MIME type, falling back
// to a generic binary type for unknown extensions.
func detectMimeType(path string) string {
	if t := mime.TypeByExtension(filepath.Ext(path)); t != "" {
		return t
	}
	return "application/octet-stream"
}
