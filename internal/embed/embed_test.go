package embed

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHash_Deterministic(t *testing.T) {
	h, err := NewHash(16)
	require.NoError(t, err)

	a, err := h.EmbedText(context.Background(), "docs")
	require.NoError(t, err)
	b, err := h.EmbedText(context.Background(), "docs")
	require.NoError(t, err)
	c, err := h.EmbedText(context.Background(), "wiki")
	require.NoError(t, err)

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.Len(t, a, 16)
}

func TestHash_UnitLength(t *testing.T) {
	h, _ := NewHash(32)
	v, err := h.EmbedText(context.Background(), "anything")
	require.NoError(t, err)

	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	assert.InDelta(t, 1.0, math.Sqrt(sum), 1e-5)
}

func TestHash_InvalidDimensions(t *testing.T) {
	_, err := NewHash(0)
	assert.Error(t, err)
}

func TestHash_CancelledContext(t *testing.T) {
	h, _ := NewHash(4)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := h.EmbedText(ctx, "x")
	assert.ErrorIs(t, err, context.Canceled)
}
