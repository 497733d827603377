package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/timbuchinger/context-cache/internal/display"
)

func newShowCmd() *cobra.Command {
	var start, end int

	cmd := &cobra.Command{
		Use:   "show <archive-path>",
		Short: "Render a conversation archive as readable text",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprint(cmd.OutOrStdout(), display.Render(args[0], display.Range{Start: start, End: end}))
			return nil
		},
	}

	cmd.Flags().IntVar(&start, "start", 0, "1-indexed first exchange to include")
	cmd.Flags().IntVar(&end, "end", 0, "1-indexed last exchange to include")
	return cmd
}
