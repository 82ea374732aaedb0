package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	require.Equal(t, 40, cfg.Retrieval.DenseK)
	require.Equal(t, 50, cfg.Retrieval.FuseK)
	require.Equal(t, 8, cfg.Retrieval.FinalK)
	require.True(t, cfg.Retrieval.RerankEnabled)
	require.Equal(t, 0.7, cfg.Retrieval.AlphaDense)
	require.Equal(t, 0.3, cfg.Retrieval.BetaSparse)
}

func TestEnvOverride(t *testing.T) {
	t.Setenv("DENSE_K", "99")
	t.Setenv("RERANK_ENABLED", "false")
	cfg, err := Load("")
	require.NoError(t, err)
	require.Equal(t, 99, cfg.Retrieval.DenseK)
	require.False(t, cfg.Retrieval.RerankEnabled)
}

func TestValidateRejectsUndersizedPrefilterPool(t *testing.T) {
	t.Setenv("FUSE_K", "10")
	t.Setenv("FINAL_K", "8")
	t.Setenv("RERANK_ENABLED", "true")
	_, err := Load("")
	require.Error(t, err)
}

func TestLoadMissingFileIsNotAnError(t *testing.T) {
	_, err := os.Stat("./does-not-exist.yaml")
	require.Error(t, err)
	_, err = Load("./does-not-exist.yaml")
	require.NoError(t, err)
}
