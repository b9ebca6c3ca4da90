package stages

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/docpipe/core"
	"github.com/poiesic/docpipe/pipeline"
	"github.com/poiesic/docpipe/providers"
	"github.com/poiesic/docpipe/providers/mock"
	badgerstore "github.com/poiesic/docpipe/storage/badger"
)

type stageFixture struct {
	provider *mock.MockProvider
	repos    *badgerstore.Repositories
	doc      *core.Document
}

func newStageFixture(t *testing.T) *stageFixture {
	t.Helper()

	repos, backend, err := badgerstore.NewMemoryRepositories()
	require.NoError(t, err)
	t.Cleanup(func() { _ = backend.Close() })

	doc, err := repos.Documents.AddDocument(context.Background(), &core.Document{
		Id:       "doc-1",
		Status:   core.StatusUploaded,
		FilePath: "/tmp/report.pdf",
		MimeType: "application/pdf",
		FileSize: 4096,
		UserId:   "user-1",
	})
	require.NoError(t, err)

	return &stageFixture{
		provider: mock.NewMockProvider().(*mock.MockProvider),
		repos:    repos,
		doc:      doc,
	}
}

func (f *stageFixture) input(ref core.ArtifactRef) pipeline.StageInput {
	return pipeline.StageInput{
		Document: f.doc,
		UserID:   f.doc.UserId,
		InputRef: ref,
	}
}

func (f *stageFixture) putArtifact(t *testing.T, v any) core.ArtifactRef {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	ref, err := f.repos.Artifacts.PutArtifact(context.Background(), data)
	require.NoError(t, err)
	return ref
}

// runAll drives every item of an execution and returns the decoded
// output.
func runAll(t *testing.T, exec pipeline.Execution, out any) {
	t.Helper()
	ctx := context.Background()
	for i := range exec.Items() {
		require.NoError(t, exec.ProcessItem(ctx, i))
	}
	data, err := exec.Output(ctx)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, out))
}

func TestExtractionProducesPageText(t *testing.T) {
	f := newStageFixture(t)

	stage := NewExtraction(f.provider.Extractor(), nil)
	exec, err := stage.Prepare(context.Background(), f.input(""))
	require.NoError(t, err)

	require.Equal(t, []string{"page-1", "page-2", "page-3"}, exec.Items())

	var artifact TextArtifact
	runAll(t, exec, &artifact)
	assert.Equal(t, 3, artifact.PageCount)
	require.Len(t, artifact.Pages, 3)
	assert.Equal(t, 1, artifact.Pages[0].Number)
	assert.NotEmpty(t, artifact.Pages[0].Text)
}

func TestExtractionRejectsUnsupportedMimeType(t *testing.T) {
	f := newStageFixture(t)
	f.doc.MimeType = "image/png"

	stage := NewExtraction(f.provider.Extractor(), nil)
	_, err := stage.Prepare(context.Background(), f.input(""))
	require.True(t, pipeline.IsValidation(err))
	assert.ErrorIs(t, err, providers.ErrUnsupportedFormat)
	assert.Zero(t, f.provider.GetMockExtractor().CallCount())
}

func TestExtractionUnreadableFileFailsValidation(t *testing.T) {
	f := newStageFixture(t)
	f.provider.GetMockExtractor().PageCountFunc = func(context.Context, string) (int, error) {
		return 0, errors.New("not a pdf")
	}

	stage := NewExtraction(f.provider.Extractor(), nil)
	_, err := stage.Prepare(context.Background(), f.input(""))
	assert.True(t, pipeline.IsValidation(err))
}

func TestExtractionContextDeadlineIsTransient(t *testing.T) {
	f := newStageFixture(t)
	f.provider.GetMockExtractor().PageCountFunc = func(context.Context, string) (int, error) {
		return 0, context.DeadlineExceeded
	}

	stage := NewExtraction(f.provider.Extractor(), nil)
	_, err := stage.Prepare(context.Background(), f.input(""))
	assert.True(t, pipeline.IsRetryable(err))
}

func TestImagingRendersUpstreamPages(t *testing.T) {
	f := newStageFixture(t)
	ref := f.putArtifact(t, TextArtifact{
		PageCount: 2,
		Pages: []providers.Page{
			{Number: 1, Text: "one"},
			{Number: 2, Text: "two"},
		},
	})

	stage := NewImaging(f.provider.Imager(), f.repos.Artifacts, nil)
	exec, err := stage.Prepare(context.Background(), f.input(ref))
	require.NoError(t, err)

	var artifact ImageArtifact
	runAll(t, exec, &artifact)
	require.Len(t, artifact.Images, 2)
	assert.Equal(t, 1, artifact.Images[0].Page)
	assert.Equal(t, "png", artifact.Images[0].Format)
	assert.NotEmpty(t, artifact.Images[0].Data)
}

func TestImagingMissingArtifactFailsValidation(t *testing.T) {
	f := newStageFixture(t)

	stage := NewImaging(f.provider.Imager(), f.repos.Artifacts, nil)

	_, err := stage.Prepare(context.Background(), f.input(""))
	assert.True(t, pipeline.IsValidation(err))

	_, err = stage.Prepare(context.Background(), f.input("deadbeef"))
	assert.True(t, pipeline.IsValidation(err))
}

func TestADECollectsElements(t *testing.T) {
	f := newStageFixture(t)
	ref := f.putArtifact(t, ImageArtifact{
		Images: []imageRecord{
			{Page: 1, Format: "png", Data: []byte("img-1")},
			{Page: 2, Format: "png", Data: []byte("img-2")},
		},
	})

	stage := NewADE(f.provider.ElementExtractor(), f.repos.Artifacts, nil)
	exec, err := stage.Prepare(context.Background(), f.input(ref))
	require.NoError(t, err)

	var artifact ElementArtifact
	runAll(t, exec, &artifact)
	require.Len(t, artifact.Elements, 2)
	assert.Equal(t, 1, artifact.Elements[0].Page)
	assert.Equal(t, 2, artifact.Elements[1].Page)
}

func TestChunkingStoresChunkRows(t *testing.T) {
	f := newStageFixture(t)
	ctx := context.Background()
	ref := f.putArtifact(t, ElementArtifact{
		Elements: []providers.Element{
			{Type: "page_header", Page: 1, Text: "Quarterly Report", Confidence: 0.9},
			{Type: "title", Page: 1, Text: "Results", Confidence: 0.9},
			{Type: "paragraph", Page: 1, Text: "Revenue grew this quarter.", Confidence: 0.9},
		},
	})

	stage := NewChunking(f.provider.Chunker(), f.repos.Artifacts, f.repos.Chunks, nil)
	exec, err := stage.Prepare(ctx, f.input(ref))
	require.NoError(t, err)

	var artifact ChunkArtifact
	runAll(t, exec, &artifact)
	assert.Equal(t, f.doc.Id, artifact.DocumentID)
	assert.Len(t, artifact.ChunkIDs, 2)

	stored, err := f.repos.Chunks.GetChunksByDocument(ctx, f.doc.Id)
	require.NoError(t, err)
	require.Len(t, stored, 2)
	// Page furniture is dropped; vectors come later.
	assert.Equal(t, "Results", stored[0].Text)
	assert.Empty(t, stored[0].Vector)

	// A replayed run replaces rows instead of duplicating them.
	exec, err = stage.Prepare(ctx, f.input(ref))
	require.NoError(t, err)
	runAll(t, exec, &artifact)

	stored, err = f.repos.Chunks.GetChunksByDocument(ctx, f.doc.Id)
	require.NoError(t, err)
	assert.Len(t, stored, 2)
}

func TestChunkingEmptyDocumentFailsValidation(t *testing.T) {
	f := newStageFixture(t)
	ref := f.putArtifact(t, ElementArtifact{
		Elements: []providers.Element{
			{Type: "page_footer", Page: 1, Text: "3 of 12", Confidence: 0.9},
		},
	})

	stage := NewChunking(f.provider.Chunker(), f.repos.Artifacts, f.repos.Chunks, nil)
	_, err := stage.Prepare(context.Background(), f.input(ref))
	assert.True(t, pipeline.IsValidation(err))
}

func TestEmbeddingVectorizesStoredChunks(t *testing.T) {
	f := newStageFixture(t)
	ctx := context.Background()

	_, err := f.repos.Chunks.AddChunks(ctx,
		&core.Chunk{DocumentId: f.doc.Id, Seq: 0, Text: "first chunk"},
		&core.Chunk{DocumentId: f.doc.Id, Seq: 1, Text: "second chunk"},
	)
	require.NoError(t, err)

	stage := NewEmbedding(f.provider.Embedder(), f.repos.Chunks, nil)
	exec, err := stage.Prepare(ctx, f.input("unused"))
	require.NoError(t, err)

	var artifact EmbedArtifact
	runAll(t, exec, &artifact)
	assert.Equal(t, 2, artifact.Embedded)
	assert.NotZero(t, artifact.Dimensions)

	stored, err := f.repos.Chunks.GetChunksByDocument(ctx, f.doc.Id)
	require.NoError(t, err)
	for _, chunk := range stored {
		assert.Len(t, chunk.Vector, artifact.Dimensions)
	}
}

func TestEmbeddingSkipsAlreadyEmbeddedChunks(t *testing.T) {
	f := newStageFixture(t)
	ctx := context.Background()

	_, err := f.repos.Chunks.AddChunks(ctx,
		&core.Chunk{DocumentId: f.doc.Id, Seq: 0, Text: "done", Vector: []float32{1, 0, 0}},
		&core.Chunk{DocumentId: f.doc.Id, Seq: 1, Text: "pending"},
	)
	require.NoError(t, err)

	embedder := f.provider.GetMockEmbedder()
	stage := NewEmbedding(f.provider.Embedder(), f.repos.Chunks, nil)
	exec, err := stage.Prepare(ctx, f.input("unused"))
	require.NoError(t, err)

	var artifact EmbedArtifact
	runAll(t, exec, &artifact)
	assert.Equal(t, 2, artifact.Embedded)
	assert.Equal(t, 1, embedder.CallCount())
}

func TestIndexingVerifiesVectors(t *testing.T) {
	f := newStageFixture(t)
	ctx := context.Background()

	_, err := f.repos.Chunks.AddChunks(ctx,
		&core.Chunk{DocumentId: f.doc.Id, Seq: 0, Text: "ok", Vector: []float32{1, 0}},
		&core.Chunk{DocumentId: f.doc.Id, Seq: 1, Text: "missing vector"},
	)
	require.NoError(t, err)

	stage := NewIndexing(f.repos.Chunks, nil)
	exec, err := stage.Prepare(ctx, f.input("unused"))
	require.NoError(t, err)

	require.NoError(t, exec.ProcessItem(ctx, 0))
	assert.Error(t, exec.ProcessItem(ctx, 1))

	data, err := exec.Output(ctx)
	require.NoError(t, err)
	var artifact IndexArtifact
	require.NoError(t, json.Unmarshal(data, &artifact))
	assert.Equal(t, 1, artifact.IndexedChunks)
}

func TestIndexingWithoutChunksFailsValidation(t *testing.T) {
	f := newStageFixture(t)

	stage := NewIndexing(f.repos.Chunks, nil)
	_, err := stage.Prepare(context.Background(), f.input("unused"))
	assert.True(t, pipeline.IsValidation(err))
}
