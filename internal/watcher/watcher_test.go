package watcher

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestWatcher_DebouncesBurstIntoSingleReconcile(t *testing.T) {
	dir := t.TempDir()

	var calls atomic.Int32
	w, err := New(Options{DebounceWindow: 50 * time.Millisecond}, func(ctx context.Context) error {
		calls.Add(1)
		return nil
	})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- w.Start(ctx, dir) }()
	time.Sleep(20 * time.Millisecond)

	for i := 0; i < 5; i++ {
		path := filepath.Join(dir, "note.md")
		require.NoError(t, os.WriteFile(path, []byte("content"), 0o644))
		time.Sleep(5 * time.Millisecond)
	}

	time.Sleep(150 * time.Millisecond)
	require.NoError(t, w.Stop())
	<-done

	if got := calls.Load(); got != 1 {
		t.Errorf("expected exactly one debounced reconcile call, got %d", got)
	}
}

func TestWatcher_IgnoresNonMarkdownFiles(t *testing.T) {
	dir := t.TempDir()

	var calls atomic.Int32
	w, err := New(Options{DebounceWindow: 30 * time.Millisecond}, func(ctx context.Context) error {
		calls.Add(1)
		return nil
	})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- w.Start(ctx, dir) }()
	time.Sleep(20 * time.Millisecond)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "note.txt"), []byte("content"), 0o644))
	time.Sleep(100 * time.Millisecond)

	require.NoError(t, w.Stop())
	<-done

	if got := calls.Load(); got != 0 {
		t.Errorf("expected no reconcile calls for non-markdown files, got %d", got)
	}
}
