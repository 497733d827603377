package cmd

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/timbuchinger/context-cache/internal/config"
	"github.com/timbuchinger/context-cache/internal/embed"
	"github.com/timbuchinger/context-cache/internal/fragment"
	"github.com/timbuchinger/context-cache/internal/noteindex"
	"github.com/timbuchinger/context-cache/internal/store"
	"github.com/timbuchinger/context-cache/internal/watcher"
)

var debugMode bool

func openStore(cfg *config.Config) (*store.Store, error) {
	st, err := store.Open(cfg.StorePath)
	if err != nil {
		return nil, fmt.Errorf("open store at %s: %w", cfg.StorePath, err)
	}
	return st, nil
}

func buildEmbedder(cfg *config.Config) embed.Embedder {
	base, err := embed.NewFastEmbedder(cfg.EmbeddingModel, "")
	if err != nil {
		slog.Warn("fastembed unavailable, falling back to static embeddings", slog.Any("err", err))
		return embed.NewCachedEmbedder(embed.NewStaticEmbedder(cfg.EmbeddingDims), embed.DefaultCacheSize)
	}
	return embed.NewCachedEmbedder(base, embed.DefaultCacheSize)
}

func newNoteReconciler(st *store.Store, embedder embed.Embedder, cfg *config.Config) watcher.ReconcileFunc {
	idx := noteindex.New(st, embedder, fragment.Options{Length: cfg.FragmentLength, Overlap: cfg.FragmentOverlap})
	return func(ctx context.Context) error {
		sum, err := idx.Reconcile(ctx, cfg.NotesRoot)
		if err != nil {
			return err
		}
		slog.Info("reconciled after filesystem change",
			slog.Int("added", sum.Added), slog.Int("updated", sum.Updated),
			slog.Int("deleted", sum.Deleted), slog.Int("skipped", sum.Skipped))
		return nil
	}
}
