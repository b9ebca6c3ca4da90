package reembed

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/docpipe/core"
	"github.com/poiesic/docpipe/providers/mock"
	badgerstore "github.com/poiesic/docpipe/storage/badger"
)

func seedChunks(t *testing.T, repos *badgerstore.Repositories, userID, docID string, count int) {
	t.Helper()
	ctx := context.Background()

	_, err := repos.Documents.AddDocument(ctx, &core.Document{
		Id:       docID,
		Status:   core.StatusProcessed,
		FilePath: "/tmp/" + docID + ".pdf",
		MimeType: "application/pdf",
		UserId:   userID,
	})
	require.NoError(t, err)

	for i := 0; i < count; i++ {
		_, err := repos.Chunks.AddChunks(ctx, &core.Chunk{
			DocumentId: docID,
			Seq:        i,
			Text:       "chunk text",
			Vector:     []float32{0.5, 0.5}, // stale model's vector
		})
		require.NoError(t, err)
	}
}

func TestReembedderRegeneratesVectors(t *testing.T) {
	repos, backend, err := badgerstore.NewMemoryRepositories()
	require.NoError(t, err)
	t.Cleanup(func() { _ = backend.Close() })

	seedChunks(t, repos, "user-1", "doc-1", 3)
	seedChunks(t, repos, "user-1", "doc-2", 2)

	var out bytes.Buffer
	r := NewReembedder(repos.Documents, repos.Chunks, mock.NewMockEmbedder(), nil, &out)
	require.NoError(t, r.Run(context.Background(), "user-1"))

	for _, docID := range []string{"doc-1", "doc-2"} {
		chunks, err := repos.Chunks.GetChunksByDocument(context.Background(), docID)
		require.NoError(t, err)
		for _, chunk := range chunks {
			assert.Len(t, chunk.Vector, 384, "vector should come from the new model")
		}
	}
	assert.Contains(t, out.String(), "Reembedding complete")
}

func TestReembedderNoChunks(t *testing.T) {
	repos, backend, err := badgerstore.NewMemoryRepositories()
	require.NoError(t, err)
	t.Cleanup(func() { _ = backend.Close() })

	var out bytes.Buffer
	r := NewReembedder(repos.Documents, repos.Chunks, mock.NewMockEmbedder(), nil, &out)
	require.NoError(t, r.Run(context.Background(), "user-1"))
	assert.Contains(t, out.String(), "No chunks found")
}

func TestReembedderRequiresUser(t *testing.T) {
	repos, backend, err := badgerstore.NewMemoryRepositories()
	require.NoError(t, err)
	t.Cleanup(func() { _ = backend.Close() })

	r := NewReembedder(repos.Documents, repos.Chunks, mock.NewMockEmbedder(), nil, &bytes.Buffer{})
	assert.ErrorIs(t, r.Run(context.Background(), ""), ErrEmptyUserID)
}

func TestReembedderRetriesEmbeddingFailures(t *testing.T) {
	repos, backend, err := badgerstore.NewMemoryRepositories()
	require.NoError(t, err)
	t.Cleanup(func() { _ = backend.Close() })

	seedChunks(t, repos, "user-1", "doc-1", 2)

	embedder := mock.NewMockEmbedder()
	calls := 0
	embedder.EmbedTextsFunc = func(_ context.Context, texts []string) ([][]float32, error) {
		calls++
		if calls == 1 {
			return nil, errors.New("rate limited")
		}
		vectors := make([][]float32, len(texts))
		for i := range vectors {
			vectors[i] = []float32{1, 0}
		}
		return vectors, nil
	}

	cfg := &Config{BatchSize: 10, ReportInterval: 10, MaxRetries: 3, RetryDelay: time.Millisecond}
	r := NewReembedder(repos.Documents, repos.Chunks, embedder, cfg, &bytes.Buffer{})
	require.NoError(t, r.Run(context.Background(), "user-1"))
	assert.Equal(t, 2, calls)
}
