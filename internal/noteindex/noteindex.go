// Package noteindex reconciles the Store with an on-disk Markdown tree:
// inserting new files, updating changed ones, and deleting ones that have
// disappeared from disk.
package noteindex

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/timbuchinger/context-cache/internal/embed"
	"github.com/timbuchinger/context-cache/internal/fragment"
	"github.com/timbuchinger/context-cache/internal/hashutil"
	"github.com/timbuchinger/context-cache/internal/store"
)

// MarkdownSuffix is the file-name suffix the walk collects.
const MarkdownSuffix = ".md"

// Summary reports the outcome of a reconciliation run.
type Summary struct {
	Processed    int
	Added        int
	Updated      int
	Skipped      int
	Deleted      int
	NewFragments int
	Errors       []string
}

// Indexer reconciles a Store against a root directory of Markdown files.
type Indexer struct {
	st       *store.Store
	embedder embed.Embedder
	opts     fragment.Options
}

// New returns an Indexer writing to st, embedding fragments with embedder
// (nil disables embedding: fragments remain lexically searchable only) and
// fragmenting with opts.
func New(st *store.Store, embedder embed.Embedder, opts fragment.Options) *Indexer {
	return &Indexer{st: st, embedder: embedder, opts: opts}
}

// Reconcile walks root, collecting every regular file ending in
// MarkdownSuffix, and brings the Store in line with what it finds: files
// gone from disk are deleted, changed files are re-fragmented and
// re-embedded, unchanged files are skipped, and new files are inserted.
func (idx *Indexer) Reconcile(ctx context.Context, root string) (*Summary, error) {
	sum := &Summary{}

	onDisk, err := walkMarkdown(root)
	if err != nil {
		return nil, err
	}

	currentPaths := make(map[string]bool, len(onDisk))
	for _, rel := range onDisk {
		currentPaths[rel] = true
	}

	existing, err := idx.st.ListFiles()
	if err != nil {
		return nil, err
	}
	for _, f := range existing {
		if currentPaths[f.Path] {
			continue
		}
		if err := idx.st.DeleteFile(f.ID); err != nil {
			sum.Errors = append(sum.Errors, fmt.Sprintf("%s: %v", f.Path, err))
			continue
		}
		sum.Deleted++
	}

	for _, rel := range onDisk {
		select {
		case <-ctx.Done():
			return sum, ctx.Err()
		default:
		}

		sum.Processed++
		if err := idx.processFile(ctx, root, rel, sum); err != nil {
			sum.Errors = append(sum.Errors, fmt.Sprintf("%s: %v", rel, err))
		}
	}

	return sum, nil
}

func (idx *Indexer) processFile(ctx context.Context, root, rel string, sum *Summary) error {
	absPath := filepath.Join(root, rel)

	fingerprint, err := hashutil.HashFile(absPath)
	if err != nil {
		return err
	}

	existing, err := idx.st.GetFileByPath(rel)
	if err != nil {
		return err
	}
	if existing != nil && existing.Fingerprint == fingerprint {
		sum.Skipped++
		return nil
	}

	data, err := os.ReadFile(absPath)
	if err != nil {
		return err
	}
	chunks := fragment.Split(string(data), idx.opts)

	var fileID int64
	err = idx.st.WithTx(func(tx *store.Tx) error {
		fileID, err = tx.UpsertFile(rel, fingerprint)
		if err != nil {
			return err
		}
		if existing != nil {
			if err := tx.DeleteFragmentsByFile(fileID); err != nil {
				return err
			}
		}
		for pos, chunk := range chunks {
			var embedding []byte
			if idx.embedder != nil {
				vec, err := idx.embedder.Embed(ctx, chunk)
				if err != nil {
					return err
				}
				embedding = store.EncodeEmbedding(vec)
			}
			if _, err := tx.InsertFragment(fileID, pos, chunk, chunk, embedding); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	sum.NewFragments += len(chunks)
	if existing == nil {
		sum.Added++
	} else {
		sum.Updated++
	}
	return nil
}

func walkMarkdown(root string) ([]string, error) {
	var out []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(d.Name(), MarkdownSuffix) {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		out = append(out, rel)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
