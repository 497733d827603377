package embed

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingEmbedder struct {
	inner *StaticEmbedder
	calls int
}

func (c *countingEmbedder) Dimensions() int   { return c.inner.Dimensions() }
func (c *countingEmbedder) ModelName() string { return c.inner.ModelName() }
func (c *countingEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	c.calls++
	return c.inner.Embed(ctx, text)
}

func TestCachedEmbedder_CachesRepeatedQueries(t *testing.T) {
	inner := &countingEmbedder{inner: NewStaticEmbedder(32)}
	cached := NewCachedEmbedder(inner, 10)

	a, err := cached.Embed(context.Background(), "repeat me")
	require.NoError(t, err)
	b, err := cached.Embed(context.Background(), "repeat me")
	require.NoError(t, err)

	assert.Equal(t, a, b)
	assert.Equal(t, 1, inner.calls)
}

func TestCachedEmbedder_DistinctTextsMiss(t *testing.T) {
	inner := &countingEmbedder{inner: NewStaticEmbedder(32)}
	cached := NewCachedEmbedder(inner, 10)

	_, err := cached.Embed(context.Background(), "one")
	require.NoError(t, err)
	_, err = cached.Embed(context.Background(), "two")
	require.NoError(t, err)

	assert.Equal(t, 2, inner.calls)
}
