package providers

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTextChunkerSplitsLongText(t *testing.T) {
	chunker, err := NewTextChunker(NewConfig(WithChunking(100, 20)))
	require.NoError(t, err)

	var b strings.Builder
	for i := 0; i < 40; i++ {
		b.WriteString("The quick brown fox jumps over the lazy dog. ")
	}

	chunks, err := chunker.Split(b.String())
	require.NoError(t, err)
	assert.Greater(t, len(chunks), 1)
	for _, chunk := range chunks {
		assert.NotEmpty(t, strings.TrimSpace(chunk))
	}
}

func TestTextChunkerShortTextSingleChunk(t *testing.T) {
	chunker, err := NewTextChunker(DefaultConfig())
	require.NoError(t, err)

	chunks, err := chunker.Split("short text")
	require.NoError(t, err)
	require.Len(t, chunks, 1)
	assert.Equal(t, "short text", chunks[0])
}

func TestTextChunkerEmptyText(t *testing.T) {
	chunker, err := NewTextChunker(DefaultConfig())
	require.NoError(t, err)

	_, err = chunker.Split("   \n\t  ")
	assert.ErrorIs(t, err, ErrEmptyText)
}
