package llm

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dot(a, b []float32) float64 {
	var s float64
	for i := range a {
		s += float64(a[i]) * float64(b[i])
	}
	return s
}

func TestHashEmbedder(t *testing.T) {
	h := NewHashEmbedder(0)
	assert.Equal(t, DefaultHashDim, h.Dim())

	vecs, err := h.EmbedTexts(context.Background(), []string{
		"Drought reduces maize yields",
		"drought, reduces MAIZE yields!",
		"Central banks raised interest rates",
		"",
	})
	require.NoError(t, err)
	require.Len(t, vecs, 4)

	for _, v := range vecs {
		require.Len(t, v, DefaultHashDim)
		assert.InDelta(t, 1.0, math.Sqrt(dot(v, v)), 1e-5)
	}

	assert.InDelta(t, 1.0, dot(vecs[0], vecs[1]), 1e-5, "case and punctuation are ignored")
	assert.Less(t, dot(vecs[0], vecs[2]), 0.9)
}

func TestHashEmbedder_Deterministic(t *testing.T) {
	a, err := NewHashEmbedder(64).EmbedTexts(context.Background(), []string{"soil carbon"})
	require.NoError(t, err)
	b, err := NewHashEmbedder(64).EmbedTexts(context.Background(), []string{"soil carbon"})
	require.NoError(t, err)
	assert.Equal(t, a, b)
}
