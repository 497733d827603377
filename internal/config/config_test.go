package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault_HasExpectedValues(t *testing.T) {
	cfg := Default()
	assert.Equal(t, 500, cfg.FragmentLength)
	assert.Equal(t, 50, cfg.FragmentOverlap)
	assert.Equal(t, 384, cfg.EmbeddingDims)
	assert.Equal(t, 10, cfg.ResultLimit)
	assert.Equal(t, 60, cfg.RRFConstant)
}

func TestLoadFile_MissingFileIsNotAnError(t *testing.T) {
	cfg := Default()
	err := cfg.loadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
}

func TestLoadFile_OverridesOnlySetFields(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("fragment_length: 800\nresult_limit: 25\n"), 0o644))

	cfg := Default()
	require.NoError(t, cfg.loadFile(path))

	assert.Equal(t, 800, cfg.FragmentLength)
	assert.Equal(t, 25, cfg.ResultLimit)
	assert.Equal(t, 50, cfg.FragmentOverlap)
}

func TestApplyEnv_OverridesDefaults(t *testing.T) {
	t.Setenv("CTXCACHE_RESULT_LIMIT", "42")
	t.Setenv("CTXCACHE_EMBEDDING_MODEL", "custom-model")

	cfg := Default()
	cfg.applyEnv()

	assert.Equal(t, 42, cfg.ResultLimit)
	assert.Equal(t, "custom-model", cfg.EmbeddingModel)
}

func TestPath_RespectsCTXCACHE_CONFIGOverride(t *testing.T) {
	t.Setenv("CTXCACHE_CONFIG", "/tmp/custom-config.yaml")
	assert.Equal(t, "/tmp/custom-config.yaml", Path())
}

func TestPath_RespectsXDGConfigHome(t *testing.T) {
	t.Setenv("CTXCACHE_CONFIG", "")
	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg")
	assert.Equal(t, filepath.Join("/tmp/xdg", "ctxcache", "config.yaml"), Path())
}

func TestLoad_PrecedenceDefaultsThenFileThenEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("result_limit: 25\n"), 0o644))

	t.Setenv("CTXCACHE_CONFIG", path)
	t.Setenv("CTXCACHE_RESULT_LIMIT", "")
	t.Setenv("CTXCACHE_FRAGMENT_LENGTH", "900")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 25, cfg.ResultLimit)
	assert.Equal(t, 900, cfg.FragmentLength)
}
