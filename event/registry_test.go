package event

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry_KnownNames(t *testing.T) {
	r := NewRegistry()

	assert.True(t, r.Known(DocumentUploaded))
	assert.True(t, r.Known(DocumentTextExtracted))
	assert.True(t, r.Known(DocumentEmbeddingFailed))
	assert.False(t, r.Known("document.renamed"))
	assert.Len(t, r.Names(), 13)
}

func TestRegistry_DecodeUploaded(t *testing.T) {
	r := NewRegistry()

	raw := []byte(`{"documentId":"doc-1","userId":"user-1","filePath":"/tmp/a.pdf","mimeType":"application/pdf","fileSize":42}`)
	payload, err := r.Decode(DocumentUploaded, raw)
	require.NoError(t, err)

	uploaded, ok := payload.(*UploadedPayload)
	require.True(t, ok)
	assert.Equal(t, "doc-1", uploaded.DocumentID)
	assert.Equal(t, "application/pdf", uploaded.MimeType)
}

func TestRegistry_DecodeRejectsUnknownFields(t *testing.T) {
	r := NewRegistry()

	raw := []byte(`{"documentId":"doc-1","userId":"u","filePath":"/a","mimeType":"application/pdf","fileSize":1,"extra":"nope"}`)
	_, err := r.Decode(DocumentUploaded, raw)
	assert.ErrorIs(t, err, ErrInvalidPayload)
}

func TestRegistry_DecodeUnknownEvent(t *testing.T) {
	r := NewRegistry()

	_, err := r.Decode("document.shredded", []byte(`{}`))
	assert.ErrorIs(t, err, ErrUnknownEvent)
}

func TestRegistry_DecodeValidatesPayload(t *testing.T) {
	r := NewRegistry()

	// Missing documentId
	raw := []byte(`{"userId":"u","filePath":"/a","mimeType":"application/pdf","fileSize":1}`)
	_, err := r.Decode(DocumentUploaded, raw)
	assert.ErrorIs(t, err, ErrMissingDocumentID)
}

func TestRegistry_IsValid(t *testing.T) {
	r := NewRegistry()

	good := []byte(`{"documentId":"doc-1","userId":"u","succeededCount":3,"failedCount":0,"artifactRef":"abc"}`)
	assert.True(t, r.IsValid(DocumentTextExtracted, good))
	assert.False(t, r.IsValid(DocumentTextExtracted, []byte(`{"bogus":true}`)))
}

func TestRegistry_NewEvent(t *testing.T) {
	r := NewRegistry()

	payload := NewFailurePayload(DocumentEmbeddingFailed, "doc-1", "u", "provider down", time.Now(), 3, false)
	evt, err := r.NewEvent(payload)
	require.NoError(t, err)

	assert.Equal(t, DocumentEmbeddingFailed, evt.Name)
	assert.NotZero(t, evt.Timestamp)
	assert.True(t, strings.HasPrefix(evt.ID, string(DocumentEmbeddingFailed)+"-"))

	// Round-trip through the registry's own decoder.
	decoded, err := r.Decode(evt.Name, evt.Data)
	require.NoError(t, err)
	failure := decoded.(*FailurePayload)
	assert.Equal(t, 3, failure.AttemptCount)
	assert.False(t, failure.Retryable)
}

func TestRegistry_EventIDsAreUnique(t *testing.T) {
	r := NewRegistry()

	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		payload := NewSuccessPayload(DocumentChunked, "doc-1", "u", 1, 0, "ref")
		evt, err := r.NewEvent(payload)
		require.NoError(t, err)
		assert.False(t, seen[evt.ID], "duplicate event id %s", evt.ID)
		seen[evt.ID] = true
	}
}
