package ingest

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/docpipe/core"
	"github.com/poiesic/docpipe/event"
	badgerstore "github.com/poiesic/docpipe/storage/badger"
)

type capturePublisher struct {
	mu     sync.Mutex
	events []*event.Event
}

func (p *capturePublisher) Publish(_ context.Context, evt *event.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, evt)
	return nil
}

func newIngestor(t *testing.T) (*Ingestor, *badgerstore.Repositories, *capturePublisher) {
	t.Helper()

	repos, backend, err := badgerstore.NewMemoryRepositories()
	require.NoError(t, err)
	t.Cleanup(func() { _ = backend.Close() })

	pub := &capturePublisher{}
	ingestor, err := NewIngestor(repos.Documents, event.NewRegistry(), pub)
	require.NoError(t, err)

	return ingestor, repos, pub
}

func writeTempPDF(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "report.pdf")
	require.NoError(t, os.WriteFile(path, []byte("%PDF-1.4 fake"), 0o600))
	return path
}

func TestIngestFileStoresDocumentAndPublishes(t *testing.T) {
	ingestor, repos, pub := newIngestor(t)
	path := writeTempPDF(t)

	doc, err := ingestor.IngestFile(context.Background(), path, "user-1")
	require.NoError(t, err)

	assert.NotEmpty(t, doc.Id)
	assert.Equal(t, core.StatusUploaded, doc.Status)
	assert.Equal(t, "application/pdf", doc.MimeType)
	assert.Equal(t, "user-1", doc.UserId)
	assert.NotZero(t, doc.FileSize)

	stored, err := repos.Documents.GetDocument(context.Background(), doc.Id)
	require.NoError(t, err)
	assert.Equal(t, doc.Id, stored.Id)

	require.Len(t, pub.events, 1)
	assert.Equal(t, event.DocumentUploaded, pub.events[0].Name)

	payload, err := event.NewRegistry().Decode(pub.events[0].Name, pub.events[0].Data)
	require.NoError(t, err)
	uploaded := payload.(*event.UploadedPayload)
	assert.Equal(t, doc.Id, uploaded.DocumentID)
	assert.Equal(t, doc.FilePath, uploaded.FilePath)
}

func TestIngestFileMissingFile(t *testing.T) {
	ingestor, _, pub := newIngestor(t)

	_, err := ingestor.IngestFile(context.Background(), "/nonexistent/file.pdf", "user-1")
	assert.ErrorIs(t, err, ErrFileNotFound)
	assert.Empty(t, pub.events)
}

func TestIngestFileRejectsDirectory(t *testing.T) {
	ingestor, _, _ := newIngestor(t)

	_, err := ingestor.IngestFile(context.Background(), t.TempDir(), "user-1")
	assert.ErrorIs(t, err, ErrNotAFile)
}

func TestIngestFileUnknownExtensionFallsBack(t *testing.T) {
	ingestor, _, _ := newIngestor(t)
	path := filepath.Join(t.TempDir(), "blob.weird-ext")
	require.NoError(t, os.WriteFile(path, []byte("data"), 0o600))

	doc, err := ingestor.IngestFile(context.Background(), path, "user-1")
	require.NoError(t, err)
	assert.Equal(t, "application/octet-stream", doc.MimeType)
}

func TestNewIngestorRequiresDependencies(t *testing.T) {
	repos, backend, err := badgerstore.NewMemoryRepositories()
	require.NoError(t, err)
	t.Cleanup(func() { _ = backend.Close() })

	_, err = NewIngestor(nil, event.NewRegistry(), &capturePublisher{})
	assert.ErrorIs(t, err, ErrDocumentRepositoryRequired)

	_, err = NewIngestor(repos.Documents, nil, &capturePublisher{})
	assert.ErrorIs(t, err, ErrRegistryRequired)

	_, err = NewIngestor(repos.Documents, event.NewRegistry(), nil)
	assert.ErrorIs(t, err, ErrPublisherRequired)
}
