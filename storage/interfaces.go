package storage

import (
	"context"

	"github.com/poiesic/docpipe/core"
	"github.com/poiesic/docpipe/status"
)

// Repository provides common storage operations shared across all repositories.
// Implementations must be thread-safe and support concurrent access.
type Repository interface {
	// WithTransaction executes a function within a transaction.
	// If fn returns an error, the transaction is rolled back.
	// If fn returns nil, the transaction is committed.
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error

	// Close closes the storage backend and releases resources.
	Close() error
}

// DocumentRepository provides operations for managing document records.
type DocumentRepository interface {
	Repository

	// AddDocument stores a new document record.
	// Sets CreatedAt and UpdatedAt timestamps.
	// Returns ErrDuplicateKey if a document with the same ID exists.
	AddDocument(ctx context.Context, doc *core.Document) (*core.Document, error)

	// GetDocument retrieves a document by ID.
	// Returns ErrNotFound if the document doesn't exist.
	GetDocument(ctx context.Context, id string) (*core.Document, error)

	// UpdateDocumentStatus sets the document's status and bumps UpdatedAt.
	// Returns ErrNotFound if the document doesn't exist.
	UpdateDocumentStatus(ctx context.Context, id string, docStatus core.DocumentStatus) error

	// ListDocumentsByUser retrieves all documents owned by a user,
	// ordered by creation time ascending.
	ListDocumentsByUser(ctx context.Context, userID string) ([]*core.Document, error)
}

// StateRepository persists per-document pipeline state snapshots.
type StateRepository interface {
	Repository

	// SaveState persists the pipeline state snapshot for a document,
	// replacing any previous snapshot.
	SaveState(ctx context.Context, snap *status.Snapshot) error

	// LoadState retrieves the pipeline state snapshot for a document.
	// Returns nil, nil if no snapshot exists.
	LoadState(ctx context.Context, documentID string) (*status.Snapshot, error)

	// DeleteState removes the pipeline state snapshot for a document.
	// Deleting a missing snapshot is not an error.
	DeleteState(ctx context.Context, documentID string) error
}

// ArtifactRepository stores stage output payloads by content-addressed
// reference.
type ArtifactRepository interface {
	Repository

	// PutArtifact stores a payload and returns its content-addressed
	// reference. Storing identical content twice is idempotent.
	PutArtifact(ctx context.Context, data []byte) (core.ArtifactRef, error)

	// GetArtifact retrieves a payload by reference.
	// Returns ErrNotFound if no artifact with the reference exists.
	GetArtifact(ctx context.Context, ref core.ArtifactRef) ([]byte, error)
}

// ChunkRepository provides operations for managing searchable chunks.
type ChunkRepository interface {
	Repository

	// AddChunks adds one or more chunks to storage.
	// Sets InsertedAt and UpdatedAt timestamps.
	// Returns the chunks with timestamps populated.
	AddChunks(ctx context.Context, chunks ...*core.Chunk) ([]*core.Chunk, error)

	// UpdateChunks updates existing chunks.
	// Updates the UpdatedAt timestamp automatically.
	// Returns ErrNotFound if any chunk doesn't exist.
	UpdateChunks(ctx context.Context, chunks ...*core.Chunk) ([]*core.Chunk, error)

	// GetChunksByDocument retrieves all chunks of a document, ordered by
	// sequence number ascending.
	GetChunksByDocument(ctx context.Context, documentID string) ([]*core.Chunk, error)

	// DeleteChunksByDocument removes all chunks of a document.
	// Returns the number of chunks removed.
	DeleteChunksByDocument(ctx context.Context, documentID string) (int, error)

	// FindSimilar finds chunks similar to the given vector.
	// Returns chunks with similarity >= minSimilarity, up to limit results.
	// Results are ordered by similarity score (highest first).
	FindSimilar(ctx context.Context, vector []float32, minSimilarity float32, limit int) ([]*SearchResult, error)
}

// CheckpointRepository persists intra-stage resume positions.
type CheckpointRepository interface {
	Repository

	// SaveCheckpoint persists a checkpoint for a document and stage.
	SaveCheckpoint(ctx context.Context, checkpoint *core.Checkpoint) error

	// LoadCheckpoint retrieves the checkpoint for a document and stage.
	// Returns nil, nil if no checkpoint exists.
	LoadCheckpoint(ctx context.Context, documentID string, stage core.StageName) (*core.Checkpoint, error)

	// DeleteCheckpoint removes the checkpoint for a document and stage.
	// Deleting a missing checkpoint is not an error.
	DeleteCheckpoint(ctx context.Context, documentID string, stage core.StageName) error
}

// SearchResult pairs a chunk with its similarity score.
type SearchResult struct {
	Chunk *core.Chunk
	Score float32
}
