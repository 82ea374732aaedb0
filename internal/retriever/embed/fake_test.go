package embed

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDeterministicIsStable(t *testing.T) {
	e := NewDeterministic(64)
	ctx := context.Background()
	a, err := e.Embed(ctx, "json export slack to teams")
	require.NoError(t, err)
	b, err := e.Embed(ctx, "json export slack to teams")
	require.NoError(t, err)
	require.Equal(t, a, b)
	require.Len(t, a, 64)
}

func TestDeterministicDiffersOnDifferentText(t *testing.T) {
	e := NewDeterministic(64)
	ctx := context.Background()
	a, _ := e.Embed(ctx, "json export")
	b, _ := e.Embed(ctx, "capital of france")
	require.NotEqual(t, a, b)
}

func TestDeterministicBatch(t *testing.T) {
	e := NewDeterministic(32)
	out, err := e.EmbedBatch(context.Background(), []string{"a", "bb", "ccc"})
	require.NoError(t, err)
	require.Len(t, out, 3)
}
