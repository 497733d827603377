package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/timbuchinger/context-cache/internal/config"
)

func newStatsCmd() *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show store-wide counts for files, fragments, conversations, and exchanges",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStats(cmd, jsonOutput)
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "output as JSON")
	return cmd
}

func runStats(cmd *cobra.Command, jsonOutput bool) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	st, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = st.Close() }()

	stats, err := st.Stats()
	if err != nil {
		return fmt.Errorf("load stats: %w", err)
	}

	if jsonOutput {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(stats)
	}

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "Files:                %d\n", stats.FileCount)
	fmt.Fprintf(w, "Fragments:            %d\n", stats.FragmentCount)
	fmt.Fprintf(w, "Embedded fragments:   %d\n", stats.EmbeddedFragments)
	fmt.Fprintf(w, "Conversations:        %d\n", stats.ConversationCount)
	fmt.Fprintf(w, "Exchanges:            %d\n", stats.ExchangeCount)
	fmt.Fprintf(w, "Embedded exchanges:   %d\n", stats.EmbeddedExchanges)
	return nil
}
