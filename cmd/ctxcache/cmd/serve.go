package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/timbuchinger/context-cache/internal/config"
	"github.com/timbuchinger/context-cache/internal/mcpserver"
	"github.com/timbuchinger/context-cache/internal/search"
	"github.com/timbuchinger/context-cache/internal/watcher"
)

func newServeCmd() *cobra.Command {
	var watch bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the MCP server over stdio",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, watch)
		},
	}

	cmd.Flags().BoolVar(&watch, "watch", false, "watch the notes root and reconcile automatically on change")
	return cmd
}

func runServe(cmd *cobra.Command, watch bool) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	st, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = st.Close() }()

	embedder := buildEmbedder(cfg)
	hybrid := search.NewHybridSearcher(st, cfg.RRFConstant)

	ctx := cmd.Context()

	if watch {
		idx := newNoteReconciler(st, embedder, cfg)
		w, err := watcher.New(watcher.DefaultOptions(), idx)
		if err != nil {
			return fmt.Errorf("start watcher: %w", err)
		}
		go func() {
			_ = w.Start(ctx, cfg.NotesRoot)
		}()
		defer func() { _ = w.Stop() }()
	}

	return mcpserver.New(st, embedder, hybrid, cfg.ResultLimit).Serve(ctx)
}
