// Package watcher watches the notes root for filesystem changes and
// triggers index reconciliation after a debounce window, so a burst of
// saves (an editor writing several files during a commit, a git checkout)
// reconciles once instead of once per file.
package watcher

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Options configures watcher behavior.
type Options struct {
	// DebounceWindow is how long to wait after the last event before
	// triggering reconciliation. Default: 500ms.
	DebounceWindow time.Duration
}

// DefaultOptions returns the default watcher options.
func DefaultOptions() Options {
	return Options{DebounceWindow: 500 * time.Millisecond}
}

func (o Options) withDefaults() Options {
	if o.DebounceWindow == 0 {
		o.DebounceWindow = DefaultOptions().DebounceWindow
	}
	return o
}

// ReconcileFunc is called once per debounced batch of filesystem changes.
type ReconcileFunc func(ctx context.Context) error

// Watcher watches a directory tree and debounces fsnotify events into
// calls to a ReconcileFunc.
type Watcher struct {
	fsw       *fsnotify.Watcher
	opts      Options
	reconcile ReconcileFunc

	mu      sync.Mutex
	timer   *time.Timer
	stopCh  chan struct{}
	stopped bool
}

// New creates a Watcher that calls reconcile after each debounced batch
// of changes under root.
func New(opts Options, reconcile ReconcileFunc) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create fsnotify watcher: %w", err)
	}
	return &Watcher{
		fsw:       fsw,
		opts:      opts.withDefaults(),
		reconcile: reconcile,
		stopCh:    make(chan struct{}),
	}, nil
}

// Start begins watching root recursively and blocks until ctx is
// cancelled or Stop is called.
func (w *Watcher) Start(ctx context.Context, root string) error {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return fmt.Errorf("resolve absolute path: %w", err)
	}
	if err := w.addRecursive(absRoot); err != nil {
		return fmt.Errorf("add directories to watcher: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			_ = w.Stop()
			return ctx.Err()
		case <-w.stopCh:
			return nil
		case event, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			w.handleEvent(ctx, event)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			slog.Warn("watcher error", slog.Any("err", err))
		}
	}
}

// Stop releases the underlying fsnotify watcher. Safe to call multiple
// times.
func (w *Watcher) Stop() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.stopped {
		return nil
	}
	w.stopped = true
	if w.timer != nil {
		w.timer.Stop()
	}
	close(w.stopCh)
	return w.fsw.Close()
}

func (w *Watcher) addRecursive(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if d.Name() != "." && len(d.Name()) > 0 && d.Name()[0] == '.' && path != root {
				return filepath.SkipDir
			}
			return w.fsw.Add(path)
		}
		return nil
	})
}

func (w *Watcher) handleEvent(ctx context.Context, event fsnotify.Event) {
	if filepath.Ext(event.Name) != ".md" {
		if event.Op&fsnotify.Create != 0 {
			if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
				_ = w.fsw.Add(event.Name)
			}
		}
		return
	}
	w.scheduleReconcile(ctx)
}

func (w *Watcher) scheduleReconcile(ctx context.Context) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.stopped {
		return
	}
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.opts.DebounceWindow, func() {
		if err := w.reconcile(ctx); err != nil {
			slog.Error("reconcile after filesystem change failed", slog.Any("err", err))
		}
	})
}
