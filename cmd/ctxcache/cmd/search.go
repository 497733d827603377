package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/timbuchinger/context-cache/internal/config"
	"github.com/timbuchinger/context-cache/internal/search"
)

func newSearchCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Run a hybrid keyword+semantic search over indexed notes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSearch(cmd, args[0], limit)
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 0, "maximum number of results (defaults to config)")
	return cmd
}

func runSearch(cmd *cobra.Command, query string, limit int) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if limit <= 0 {
		limit = cfg.ResultLimit
	}

	st, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = st.Close() }()

	embedder := buildEmbedder(cfg)
	queryVector, err := embedder.Embed(cmd.Context(), query)
	if err != nil {
		queryVector = nil
	}

	hits, err := search.NewHybridSearcher(st, cfg.RRFConstant).Search(query, queryVector, limit)
	if err != nil {
		return fmt.Errorf("search: %w", err)
	}

	w := cmd.OutOrStdout()
	if len(hits) == 0 {
		fmt.Fprintf(w, "no results for %q\n", query)
		return nil
	}
	for i, h := range hits {
		fmt.Fprintf(w, "%d. %s (score %.3f)\n", i+1, h.FilePath, h.Score)
		fmt.Fprintf(w, "   %s\n\n", h.Text)
	}
	return nil
}
