package mock

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func vectorMagnitude(v []float32) float64 {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	return math.Sqrt(sum)
}

func TestEmbedTextProducesUnitVectors(t *testing.T) {
	embedder := NewMockEmbedder()

	vector, err := embedder.EmbedText(context.Background(), "some document text")
	require.NoError(t, err)
	require.Len(t, vector, 384)

	// Unit magnitude keeps cosine scores meaningful: identical text must
	// score 1.0 against itself, well above any search threshold.
	assert.InDelta(t, 1.0, vectorMagnitude(vector), 1e-4)
}

func TestEmbedTextIsDeterministic(t *testing.T) {
	embedder := NewMockEmbedder()
	ctx := context.Background()

	a, err := embedder.EmbedText(ctx, "same input")
	require.NoError(t, err)
	b, err := embedder.EmbedText(ctx, "same input")
	require.NoError(t, err)
	assert.Equal(t, a, b)

	other, err := embedder.EmbedText(ctx, "different input")
	require.NoError(t, err)
	assert.NotEqual(t, a, other)
}

func TestEmbedTextsMatchesSingleEmbedding(t *testing.T) {
	embedder := NewMockEmbedder()
	ctx := context.Background()

	single, err := embedder.EmbedText(ctx, "chunk one")
	require.NoError(t, err)

	batch, err := embedder.EmbedTexts(ctx, []string{"chunk one", "chunk two"})
	require.NoError(t, err)
	require.Len(t, batch, 2)
	assert.Equal(t, single, batch[0])
	assert.InDelta(t, 1.0, vectorMagnitude(batch[1]), 1e-4)
}
