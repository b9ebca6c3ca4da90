package search

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/docpipe/core"
	"github.com/poiesic/docpipe/providers/mock"
	badgerstore "github.com/poiesic/docpipe/storage/badger"
)

type searchFixture struct {
	searcher *Searcher
	repos    *badgerstore.Repositories
	embedder *mock.MockEmbedder
}

func newSearchFixture(t *testing.T) *searchFixture {
	t.Helper()

	repos, backend, err := badgerstore.NewMemoryRepositories()
	require.NoError(t, err)
	t.Cleanup(func() { _ = backend.Close() })

	embedder := mock.NewMockEmbedder()
	searcher, err := NewSearcher(repos.Chunks, repos.Documents, embedder)
	require.NoError(t, err)

	return &searchFixture{
		searcher: searcher,
		repos:    repos,
		embedder: embedder,
	}
}

// seedChunk stores a chunk embedded with the fixture's mock embedder,
// so querying with the same text yields a perfect similarity match.
func (f *searchFixture) seedChunk(t *testing.T, docID string, seq int, text string) *core.Chunk {
	t.Helper()
	ctx := context.Background()

	if _, err := f.repos.Documents.GetDocument(ctx, docID); err != nil {
		_, err = f.repos.Documents.AddDocument(ctx, &core.Document{
			Id:       docID,
			Status:   core.StatusProcessed,
			FilePath: "/tmp/" + docID + ".pdf",
			MimeType: "application/pdf",
			UserId:   "user-1",
		})
		require.NoError(t, err)
	}

	vector, err := f.embedder.EmbedText(ctx, text)
	require.NoError(t, err)

	stored, err := f.repos.Chunks.AddChunks(ctx, &core.Chunk{
		DocumentId: docID,
		Seq:        seq,
		Text:       text,
		Vector:     vector,
	})
	require.NoError(t, err)
	return stored[0]
}

func TestFindSimilarReturnsMatchingChunks(t *testing.T) {
	f := newSearchFixture(t)
	seeded := f.seedChunk(t, "doc-1", 0, "quarterly revenue grew twelve percent")
	f.seedChunk(t, "doc-2", 0, "unrelated maintenance schedule for the plant")

	results, err := f.searcher.FindSimilar(context.Background(),
		"quarterly revenue grew twelve percent", 5)
	require.NoError(t, err)
	require.NotEmpty(t, results)

	assert.Equal(t, seeded.Id, results[0].Chunk.Id)
	require.NotNil(t, results[0].Document)
	assert.Equal(t, "doc-1", results[0].Document.Id)
	// Identical text earns both the similarity and the verbatim boost.
	assert.Greater(t, results[0].Score, float32(1.0))
}

func TestFindSimilarRejectsEmptyQuery(t *testing.T) {
	f := newSearchFixture(t)

	_, err := f.searcher.FindSimilar(context.Background(), "   ", 5)
	assert.ErrorIs(t, err, ErrEmptyQuery)
}

func TestFindSimilarHonorsMaxHits(t *testing.T) {
	f := newSearchFixture(t)
	text := "identical content in every chunk"
	for i := 0; i < 5; i++ {
		f.seedChunk(t, "doc-1", i, text)
	}

	results, err := f.searcher.FindSimilar(context.Background(), text, 2)
	require.NoError(t, err)
	assert.Len(t, results, 2)
}

func TestFindSimilarPropagatesEmbedderError(t *testing.T) {
	f := newSearchFixture(t)
	f.embedder.EmbedTextFunc = func(context.Context, string) ([]float32, error) {
		return nil, errors.New("embedding service down")
	}

	_, err := f.searcher.FindSimilar(context.Background(), "anything", 5)
	assert.Error(t, err)
}

type recordingMonitor struct {
	started      bool
	dimensions   int
	vectorHits   []string
	verbatimHits []string
	finished     int
}

func (m *recordingMonitor) Start(string)                  { m.started = true }
func (m *recordingMonitor) AfterQueryEmbedding(d int)     { m.dimensions = d }
func (m *recordingMonitor) AfterVectorSearch(ids []string) { m.vectorHits = ids }
func (m *recordingMonitor) VerbatimHit(id string)         { m.verbatimHits = append(m.verbatimHits, id) }
func (m *recordingMonitor) Finish(results []*Result)      { m.finished = len(results) }

func TestFindSimilarWithMonitor(t *testing.T) {
	f := newSearchFixture(t)
	f.seedChunk(t, "doc-1", 0, "observability matters in production systems")

	monitor := &recordingMonitor{}
	results, err := f.searcher.FindSimilarWithMonitor(context.Background(),
		"observability matters in production systems", 5, monitor)
	require.NoError(t, err)

	assert.True(t, monitor.started)
	assert.NotZero(t, monitor.dimensions)
	assert.NotEmpty(t, monitor.vectorHits)
	assert.NotEmpty(t, monitor.verbatimHits)
	assert.Equal(t, len(results), monitor.finished)
}

func TestNewSearcherRequiresDependencies(t *testing.T) {
	repos, backend, err := badgerstore.NewMemoryRepositories()
	require.NoError(t, err)
	t.Cleanup(func() { _ = backend.Close() })

	_, err = NewSearcher(nil, repos.Documents, mock.NewMockEmbedder())
	assert.ErrorIs(t, err, ErrChunkRepositoryRequired)

	_, err = NewSearcher(repos.Chunks, nil, mock.NewMockEmbedder())
	assert.ErrorIs(t, err, ErrDocumentRepositoryRequired)

	_, err = NewSearcher(repos.Chunks, repos.Documents, nil)
	assert.ErrorIs(t, err, ErrEmbedderRequired)
}
