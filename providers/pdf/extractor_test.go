package pdf

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractorOpenMissingFile(t *testing.T) {
	extractor := NewExtractor()

	_, err := extractor.PageCount(context.Background(), "/nonexistent/file.pdf")
	assert.Error(t, err)

	_, err = extractor.ExtractPage(context.Background(), "/nonexistent/file.pdf", 1)
	assert.Error(t, err)
}

func TestExtractorRejectsNonPDF(t *testing.T) {
	path := filepath.Join(t.TempDir(), "not-a-pdf.pdf")
	require.NoError(t, os.WriteFile(path, []byte("plain text, not a pdf"), 0o644))

	extractor := NewExtractor()
	_, err := extractor.PageCount(context.Background(), path)
	assert.Error(t, err)
}

func TestExtractorCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	extractor := NewExtractor()
	_, err := extractor.ExtractPage(ctx, "/nonexistent/file.pdf", 1)
	assert.Error(t, err)
}

func TestImagerRejectsPageZero(t *testing.T) {
	imager := NewImager()

	_, err := imager.RenderPage(context.Background(), "/nonexistent/file.pdf", 0)
	assert.Error(t, err)
}
