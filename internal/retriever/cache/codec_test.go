package cache

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFloat32RoundTrip(t *testing.T) {
	vec := []float32{0.1, -0.25, 3.5, 0}
	got := decodeFloat32s(encodeFloat32s(vec))
	require.Equal(t, vec, got)
}

func TestNilCacheDegradesToMiss(t *testing.T) {
	var c *Cache
	_, ok := c.GetEmbedding(nil, "model", "text") //nolint:staticcheck
	require.False(t, ok)
	_, ok = c.GetGateDecision(nil, "ctx", "q") //nolint:staticcheck
	require.False(t, ok)
	c.SetEmbedding(nil, "model", "text", []float32{1}) //nolint:staticcheck
	c.SetGateDecision(nil, "ctx", "q", true)            //nolint:staticcheck
	require.NoError(t, c.Close())
}

func TestEmbeddingKeyIsStablePerModelAndText(t *testing.T) {
	require.Equal(t, embeddingKey("m", "t"), embeddingKey("m", "t"))
	require.NotEqual(t, embeddingKey("m", "t"), embeddingKey("m2", "t"))
}
