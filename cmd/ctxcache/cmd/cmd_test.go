package cmd

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestEnv(t *testing.T) {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("CTXCACHE_CONFIG", filepath.Join(dir, "missing-config.yaml"))
	t.Setenv("CTXCACHE_STORE_PATH", ":memory:")
	t.Setenv("CTXCACHE_NOTES_ROOT", dir)
}

func TestRootCmd_HasAllSubcommands(t *testing.T) {
	root := NewRootCmd()
	names := make(map[string]bool)
	for _, c := range root.Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{"index", "search", "stats", "reset", "show", "serve"} {
		assert.True(t, names[want], "expected subcommand %q to be registered", want)
	}
}

func TestStatsCmd_ReportsZeroCountsOnEmptyStore(t *testing.T) {
	setupTestEnv(t)

	root := NewRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"stats"})

	require.NoError(t, root.Execute())
	assert.Contains(t, out.String(), "Files:")
	assert.Contains(t, out.String(), "0")
}

func TestResetCmd_RefusesWithoutConfirmation(t *testing.T) {
	setupTestEnv(t)

	root := NewRootCmd()
	root.SetArgs([]string{"reset"})
	err := root.Execute()
	require.Error(t, err)
}

func TestResetCmd_SucceedsWithConfirmation(t *testing.T) {
	setupTestEnv(t)

	root := NewRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"reset", "--yes"})

	require.NoError(t, root.Execute())
	assert.Contains(t, out.String(), "store reset")
}

func TestShowCmd_RendersMissingArchiveAsOneLineError(t *testing.T) {
	root := NewRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"show", "/does/not/exist.jsonl"})

	require.NoError(t, root.Execute())
	assert.Contains(t, out.String(), "error:")
}
