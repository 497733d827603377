package noteindex

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/timbuchinger/context-cache/internal/fragment"
	"github.com/timbuchinger/context-cache/internal/store"
)

func writeNote(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func TestReconcile_AddsNewFiles(t *testing.T) {
	dir := t.TempDir()
	writeNote(t, dir, "a.md", "hello world")

	s, err := store.Open(":memory:")
	require.NoError(t, err)
	defer s.Close()

	idx := New(s, nil, fragment.DefaultOptions())
	sum, err := idx.Reconcile(context.Background(), dir)
	require.NoError(t, err)
	assert.Equal(t, 1, sum.Added)
	assert.Equal(t, 1, sum.Processed)
	assert.Empty(t, sum.Errors)

	files, err := s.ListFiles()
	require.NoError(t, err)
	assert.Len(t, files, 1)
}

func TestReconcile_SkipsUnchangedFiles(t *testing.T) {
	dir := t.TempDir()
	writeNote(t, dir, "a.md", "hello world")

	s, err := store.Open(":memory:")
	require.NoError(t, err)
	defer s.Close()

	idx := New(s, nil, fragment.DefaultOptions())
	_, err = idx.Reconcile(context.Background(), dir)
	require.NoError(t, err)

	sum, err := idx.Reconcile(context.Background(), dir)
	require.NoError(t, err)
	assert.Equal(t, 1, sum.Skipped)
	assert.Zero(t, sum.Added)
}

func TestReconcile_UpdatesChangedFiles(t *testing.T) {
	dir := t.TempDir()
	writeNote(t, dir, "a.md", "hello world")

	s, err := store.Open(":memory:")
	require.NoError(t, err)
	defer s.Close()

	idx := New(s, nil, fragment.DefaultOptions())
	_, err = idx.Reconcile(context.Background(), dir)
	require.NoError(t, err)

	writeNote(t, dir, "a.md", "goodbye moon, this text changed entirely")
	sum, err := idx.Reconcile(context.Background(), dir)
	require.NoError(t, err)
	assert.Equal(t, 1, sum.Updated)
}

func TestReconcile_DeletesMissingFiles(t *testing.T) {
	dir := t.TempDir()
	writeNote(t, dir, "a.md", "hello world")

	s, err := store.Open(":memory:")
	require.NoError(t, err)
	defer s.Close()

	idx := New(s, nil, fragment.DefaultOptions())
	_, err = idx.Reconcile(context.Background(), dir)
	require.NoError(t, err)

	require.NoError(t, os.Remove(filepath.Join(dir, "a.md")))

	sum, err := idx.Reconcile(context.Background(), dir)
	require.NoError(t, err)
	assert.Equal(t, 1, sum.Deleted)

	files, err := s.ListFiles()
	require.NoError(t, err)
	assert.Empty(t, files)
}
