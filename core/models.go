package core

import (
	"encoding/hex"
	"time"

	"github.com/go-crypt/x/blake2b"
)

// DocumentStatus is the document-level pipeline status.
// It is a closed set: the happy path advances one milestone per stage,
// with parallel error variants tied to the stage that failed.
type DocumentStatus string

const (
	StatusUploaded        DocumentStatus = "uploaded"
	StatusProcessing      DocumentStatus = "processing"
	StatusTextExtracted   DocumentStatus = "text_extracted"
	StatusImagesExtracted DocumentStatus = "images_extracted"
	StatusADEProcessing   DocumentStatus = "ade_processing"
	StatusADEProcessed    DocumentStatus = "ade_processed"
	StatusChunked         DocumentStatus = "chunked"
	StatusEmbedded        DocumentStatus = "embedded"
	StatusProcessed       DocumentStatus = "processed"
	StatusRetrying        DocumentStatus = "retrying"
	StatusError           DocumentStatus = "error"

	StatusErrorTextExtraction  DocumentStatus = "error_text_extraction"
	StatusErrorImageExtraction DocumentStatus = "error_image_extraction"
	StatusErrorADEProcessing   DocumentStatus = "error_ade_processing"
	StatusErrorChunking        DocumentStatus = "error_chunking"
	StatusErrorEmbedding       DocumentStatus = "error_embedding"
	StatusErrorIndexing        DocumentStatus = "error_indexing"
)

// StageName identifies one unit of pipeline work.
type StageName string

const (
	StageTextExtraction  StageName = "text_extraction"
	StageImageExtraction StageName = "image_extraction"
	StageADEProcessing   StageName = "ade_processing"
	StageChunking        StageName = "chunking"
	StageEmbedding       StageName = "embedding"
	StageIndexing        StageName = "indexing"

	// StageQualityAssessment is a recognized stage name that is not part
	// of the default order. It exists so configured orders can include it
	// without the status machinery rejecting the name.
	StageQualityAssessment StageName = "quality_assessment"
)

// DefaultStageOrder returns the stage sequence documents move through.
// The order is data, not a hard-coded rule: status derivation and retry
// resets operate on whatever order a Manager was built with.
func DefaultStageOrder() []StageName {
	return []StageName{
		StageTextExtraction,
		StageImageExtraction,
		StageADEProcessing,
		StageChunking,
		StageEmbedding,
		StageIndexing,
	}
}

// MilestoneStatus returns the document status reached when the stage
// completes.
func (s StageName) MilestoneStatus() DocumentStatus {
	switch s {
	case StageTextExtraction:
		return StatusTextExtracted
	case StageImageExtraction:
		return StatusImagesExtracted
	case StageADEProcessing:
		return StatusADEProcessed
	case StageChunking:
		return StatusChunked
	case StageEmbedding:
		return StatusEmbedded
	case StageIndexing:
		return StatusProcessed
	default:
		return StatusProcessing
	}
}

// ErrorStatus returns the stage-specific document error variant.
func (s StageName) ErrorStatus() DocumentStatus {
	switch s {
	case StageTextExtraction:
		return StatusErrorTextExtraction
	case StageImageExtraction:
		return StatusErrorImageExtraction
	case StageADEProcessing:
		return StatusErrorADEProcessing
	case StageChunking:
		return StatusErrorChunking
	case StageEmbedding:
		return StatusErrorEmbedding
	case StageIndexing:
		return StatusErrorIndexing
	default:
		return StatusError
	}
}

// ActiveStatus returns the document status surfaced while the stage is
// running. Most stages surface the generic "processing"; ADE has its own
// in-flight status.
func (s StageName) ActiveStatus() DocumentStatus {
	if s == StageADEProcessing {
		return StatusADEProcessing
	}
	return StatusProcessing
}

// StepStatus is the lifecycle status of a single processing step.
type StepStatus string

const (
	StepPending   StepStatus = "pending"
	StepRunning   StepStatus = "running"
	StepCompleted StepStatus = "completed"
	StepFailed    StepStatus = "failed"
)

// Document is the persisted record the pipeline operates on. The
// pipeline mutates only Status and UpdatedAt; everything else is set at
// upload time.
type Document struct {
	Id        string
	Status    DocumentStatus
	FilePath  string
	MimeType  string
	FileSize  int64
	UserId    string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ProcessingStep tracks one stage's progress for one document.
//
// Invariants:
//   - Progress is always in [0,100]
//   - EndTime is set only when Status leaves running
//   - A step enters running only from pending (or a retry reset)
type ProcessingStep struct {
	Status    StepStatus
	Progress  int
	StartTime *time.Time
	EndTime   *time.Time
	Error     string
	Metadata  map[string]string
}

// ItemFailure records one failed sub-item within a stage batch.
type ItemFailure struct {
	Item   string
	Reason string
}

// StageOutcome is the return contract of a stage execution.
// SucceededCount+FailedCount equals the number of sub-items processed.
// A non-zero FailedCount alongside a non-zero SucceededCount is a
// partial failure and does not, by itself, fail the stage.
type StageOutcome struct {
	SucceededCount int
	FailedCount    int
	Failures       []ItemFailure
	NextEvent      string
}

// Partial reports whether the outcome is a partial failure.
func (o *StageOutcome) Partial() bool {
	return o.SucceededCount > 0 && o.FailedCount > 0
}

// ArtifactRef is a content-addressed reference to a stage's persisted
// output.
type ArtifactRef string

// RefFromContent derives a deterministic artifact reference from output
// bytes using BLAKE2b. Identical content yields identical references.
func RefFromContent(data []byte) ArtifactRef {
	h, _ := blake2b.New(16, nil)
	h.Write(data)
	return ArtifactRef(hex.EncodeToString(h.Sum(nil)))
}

// Chunk is one searchable unit produced by the chunking stage and
// enriched with an embedding vector before indexing.
type Chunk struct {
	Id         string
	DocumentId string
	Seq        int
	Text       string
	Vector     []float32
	InsertedAt time.Time
	UpdatedAt  time.Time
}

// Checkpoint records how far a stage got inside one execution, so a
// resumed attempt does not redo already-completed work. State carries
// the intermediate results collected up to Position; a position without
// its results would let a resumed attempt skip items it never kept.
type Checkpoint struct {
	DocumentId string
	Stage      StageName
	Position   int
	UpdatedAt  time.Time
	State      []byte
}
