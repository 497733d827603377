package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/timbuchinger/context-cache/internal/config"
)

func newResetCmd() *cobra.Command {
	var confirm bool

	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Delete all indexed files, fragments, conversations, and exchanges",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !confirm {
				return fmt.Errorf("refusing to reset without --yes")
			}
			return runReset(cmd)
		},
	}

	cmd.Flags().BoolVar(&confirm, "yes", false, "confirm the destructive reset")
	return cmd
}

func runReset(cmd *cobra.Command) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	st, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = st.Close() }()

	if err := st.Reset(); err != nil {
		return fmt.Errorf("reset store: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), "store reset")
	return nil
}
