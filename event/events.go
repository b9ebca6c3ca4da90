package event

import (
	"encoding/json"
	"time"
)

// Name is a dot-qualified event name from the closed pipeline set.
type Name string

const (
	DocumentUploaded              Name = "document.uploaded"
	DocumentTextExtracted         Name = "document.text-extracted"
	DocumentExtractionFailed      Name = "document.extraction-failed"
	DocumentImagesExtracted       Name = "document.images-extracted"
	DocumentImageExtractionFailed Name = "document.image-extraction-failed"
	DocumentADEProcessed          Name = "document.ade-processed"
	DocumentADEProcessingFailed   Name = "document.ade-processing-failed"
	DocumentChunked               Name = "document.chunked"
	DocumentChunkingFailed        Name = "document.chunking-failed"
	DocumentEmbedded              Name = "document.embedded"
	DocumentEmbeddingFailed       Name = "document.embedding-failed"
	DocumentProcessed             Name = "document.processed"
	DocumentIndexingFailed        Name = "document.indexing-failed"
)

// Event is the wire shape of one pipeline event. The payload shape is
// exhaustively determined by Name; the registry rejects anything else.
type Event struct {
	Name      Name            `json:"name"`
	Data      json.RawMessage `json:"data"`
	ID        string          `json:"id"`
	Timestamp int64           `json:"timestamp"`
	Actor     string          `json:"actor,omitempty"`
}

// Payload is implemented by every event payload variant.
type Payload interface {
	// EventName returns the single event name this payload belongs to.
	EventName() Name
	// Validate checks payload-level invariants beyond shape.
	Validate() error
}

// UploadedPayload announces a newly uploaded document entering the
// pipeline.
type UploadedPayload struct {
	DocumentID string `json:"documentId"`
	UserID     string `json:"userId"`
	FilePath   string `json:"filePath"`
	MimeType   string `json:"mimeType"`
	FileSize   int64  `json:"fileSize"`
}

// SuccessPayload is the shape shared by every stage success event. It
// carries the sub-item counts of the stage run and a content-addressed
// reference to the persisted output.
type SuccessPayload struct {
	DocumentID     string `json:"documentId"`
	UserID         string `json:"userId"`
	SucceededCount int    `json:"succeededCount"`
	FailedCount    int    `json:"failedCount"`
	ArtifactRef    string `json:"artifactRef"`

	name Name
}

// FailurePayload is the shape shared by every stage failure event.
type FailurePayload struct {
	DocumentID   string `json:"documentId"`
	UserID       string `json:"userId"`
	Error        string `json:"error"`
	FailedAt     int64  `json:"failedAt"`
	AttemptCount int    `json:"attemptCount,omitempty"`
	Retryable    bool   `json:"retryable"`

	name Name
}

func (p *UploadedPayload) EventName() Name { return DocumentUploaded }

func (p *UploadedPayload) Validate() error {
	if p.DocumentID == "" {
		return ErrMissingDocumentID
	}
	if p.FilePath == "" || p.MimeType == "" {
		return ErrIncompletePayload
	}
	return nil
}

// NewSuccessPayload builds a success payload bound to an event name.
func NewSuccessPayload(name Name, documentID, userID string, succeeded, failed int, ref string) *SuccessPayload {
	return &SuccessPayload{
		DocumentID:     documentID,
		UserID:         userID,
		SucceededCount: succeeded,
		FailedCount:    failed,
		ArtifactRef:    ref,
		name:           name,
	}
}

func (p *SuccessPayload) EventName() Name { return p.name }

func (p *SuccessPayload) Validate() error {
	if p.DocumentID == "" {
		return ErrMissingDocumentID
	}
	if p.SucceededCount < 0 || p.FailedCount < 0 {
		return ErrIncompletePayload
	}
	return nil
}

// NewFailurePayload builds a failure payload bound to an event name.
func NewFailurePayload(name Name, documentID, userID, errMsg string, failedAt time.Time, attempts int, retryable bool) *FailurePayload {
	return &FailurePayload{
		DocumentID:   documentID,
		UserID:       userID,
		Error:        errMsg,
		FailedAt:     failedAt.UnixMilli(),
		AttemptCount: attempts,
		Retryable:    retryable,
		name:         name,
	}
}

func (p *FailurePayload) EventName() Name { return p.name }

func (p *FailurePayload) Validate() error {
	if p.DocumentID == "" {
		return ErrMissingDocumentID
	}
	if p.Error == "" {
		return ErrIncompletePayload
	}
	return nil
}
