// Package cmd provides the CLI commands for ctxcache.
package cmd

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/timbuchinger/context-cache/internal/logging"
)

var loggingCleanup func()

// NewRootCmd creates the root command for the ctxcache CLI.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "ctxcache",
		Short: "Hybrid keyword+semantic memory engine for AI coding agents",
		Long: `ctxcache indexes markdown notes and archived agent conversations,
then serves hybrid (BM25 + semantic) search and conversation recall over
them to an external agent via the Model Context Protocol.`,
		PersistentPreRunE:  startLogging,
		PersistentPostRunE: stopLogging,
	}

	root.PersistentFlags().BoolVar(&debugMode, "debug", false, "enable debug logging")

	root.AddCommand(newIndexCmd())
	root.AddCommand(newSearchCmd())
	root.AddCommand(newStatsCmd())
	root.AddCommand(newResetCmd())
	root.AddCommand(newShowCmd())
	root.AddCommand(newServeCmd())

	return root
}

// Execute runs the root command.
func Execute() error {
	return NewRootCmd().Execute()
}

func startLogging(_ *cobra.Command, _ []string) error {
	if !debugMode {
		return nil
	}
	cfg := logging.DefaultConfig()
	cfg.Level = "debug"
	logger, cleanup, err := logging.Setup(cfg)
	if err != nil {
		return err
	}
	slog.SetDefault(logger)
	loggingCleanup = cleanup
	return nil
}

func stopLogging(_ *cobra.Command, _ []string) error {
	if loggingCleanup != nil {
		loggingCleanup()
		loggingCleanup = nil
	}
	return nil
}
