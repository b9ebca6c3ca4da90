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


package reembed

import (
	"context"

	"github.com/poiesic/docpipe/core"
	"github.com/poiesic/docpipe/storage"
)

const (
	// DefaultBatchSize is the default number of chunks to process in each batch
	DefaultBatchSize = 100
)

// ChunkIterator iterates over all chunks of a user's documents in
// batches.
type ChunkIterator struct {
	docs      storage.DocumentRepository
	chunks    storage.ChunkRepository
	batchSize int
}

// NewChunkIterator creates a new chunk iterator.
// batchSize: number of chunks to process in each batch (must be > 0)
func NewChunkIterator(docs storage.DocumentRepository, chunks storage.ChunkRepository, batchSize int) *ChunkIterator {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}

	return &ChunkIterator{
		docs:      docs,
		chunks:    chunks,
		batchSize: batchSize,
	}
}

// Count returns the total number of chunks across the user's documents.
func (it *ChunkIterator) Count(ctx context.Context, userID string) (int, error) {
	docs, err := it.docs.ListDocumentsByUser(ctx, userID)
	if err != nil {
		return 0, err
	}

	total := 0
	for _, doc := range docs {
		chunks, err := it.chunks.GetChunksByDocument(ctx, doc.Id)
		if err != nil {
			return 0, err
		}
		total += len(chunks)
	}
	return total, nil
}

// ForEach iterates over all chunks of the user's documents, calling fn
// for each batch. Batches never span documents. Iteration stops on the
// first error from fn; context cancellation is checked between batches.
func (it *ChunkIterator) ForEach(ctx context.Context, userID string, fn func([]*core.Chunk) error) error {
	docs, err := it.docs.ListDocumentsByUser(ctx, userID)
	if err != nil {
		return err
	}

	for _, doc := range docs {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		chunks, err := it.chunks.GetChunksByDocument(ctx, doc.Id)
		if err != nil {
			return err
		}

		for i := 0; i < len(chunks); i += it.batchSize {
			end := i + it.batchSize
			if end > len(chunks) {
				end = len(chunks)
			}

			if err := fn(chunks[i:end]); err != nil {
				return err
			}

			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}
		}
	}

	return nil
}
