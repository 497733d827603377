package cmd

import (
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/timbuchinger/context-cache/internal/config"
	"github.com/timbuchinger/context-cache/internal/convindex"
	"github.com/timbuchinger/context-cache/internal/fragment"
	"github.com/timbuchinger/context-cache/internal/noteindex"
)

func newIndexCmd() *cobra.Command {
	var notesRoot string
	var convArchiveDir string
	var convSourceTag string
	var convForeignDB string

	cmd := &cobra.Command{
		Use:   "index",
		Short: "Reconcile the store against notes and conversation archives on disk",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runIndex(cmd, notesRoot, convArchiveDir, convSourceTag, convForeignDB)
		},
	}

	cmd.Flags().StringVar(&notesRoot, "notes-root", "", "root directory of markdown notes (defaults to config)")
	cmd.Flags().StringVar(&convArchiveDir, "conversations-dir", "", "directory of line-delimited conversation archives")
	cmd.Flags().StringVar(&convSourceTag, "conversations-source", "claude-code", "source tag recorded on ingested conversations")
	cmd.Flags().StringVar(&convForeignDB, "conversations-db", "", "path to a foreign session/message/part SQLite database")

	return cmd
}

func runIndex(cmd *cobra.Command, notesRoot, convArchiveDir, convSourceTag, convForeignDB string) error {
	runID := uuid.NewString()
	logger := slog.With(slog.String("run_id", runID), slog.String("command", "index"))

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if notesRoot == "" {
		notesRoot = cfg.NotesRoot
	}

	st, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = st.Close() }()

	embedder := buildEmbedder(cfg)

	noteSum, err := noteindex.New(st, embedder, fragment.Options{Length: cfg.FragmentLength, Overlap: cfg.FragmentOverlap}).Reconcile(cmd.Context(), notesRoot)
	if err != nil {
		return fmt.Errorf("reconcile notes: %w", err)
	}
	logger.Info("notes reconciled",
		slog.Int("processed", noteSum.Processed), slog.Int("added", noteSum.Added),
		slog.Int("updated", noteSum.Updated), slog.Int("skipped", noteSum.Skipped),
		slog.Int("deleted", noteSum.Deleted))
	fmt.Fprintf(cmd.OutOrStdout(), "notes: %d processed, %d added, %d updated, %d skipped, %d deleted\n",
		noteSum.Processed, noteSum.Added, noteSum.Updated, noteSum.Skipped, noteSum.Deleted)
	for _, e := range noteSum.Errors {
		fmt.Fprintf(cmd.ErrOrStderr(), "note error: %s\n", e)
	}

	convIdx := convindex.New(st, embedder)

	if convArchiveDir != "" {
		src := convindex.NewArchiveSource(convSourceTag, convArchiveDir)
		sum, err := convIdx.Reconcile(cmd.Context(), src)
		if err != nil {
			return fmt.Errorf("reconcile conversation archive: %w", err)
		}
		logger.Info("conversation archive reconciled",
			slog.Int("processed", sum.Processed), slog.Int("added", sum.Added),
			slog.Int("updated", sum.Updated), slog.Int("skipped", sum.Skipped),
			slog.Int("deleted", sum.Deleted))
		fmt.Fprintf(cmd.OutOrStdout(), "conversations (%s): %d processed, %d added, %d updated, %d skipped, %d deleted\n",
			convSourceTag, sum.Processed, sum.Added, sum.Updated, sum.Skipped, sum.Deleted)
		for _, e := range sum.Errors {
			fmt.Fprintf(cmd.ErrOrStderr(), "conversation error: %s\n", e)
		}
	}

	if convForeignDB != "" {
		src, err := convindex.NewForeignDBSource(convSourceTag, convForeignDB)
		if err != nil {
			return fmt.Errorf("open foreign conversation database: %w", err)
		}
		defer func() { _ = src.Close() }()

		sum, err := convIdx.Reconcile(cmd.Context(), src)
		if err != nil {
			return fmt.Errorf("reconcile foreign conversation database: %w", err)
		}
		logger.Info("foreign conversation database reconciled",
			slog.Int("processed", sum.Processed), slog.Int("added", sum.Added),
			slog.Int("updated", sum.Updated), slog.Int("skipped", sum.Skipped),
			slog.Int("deleted", sum.Deleted))
		fmt.Fprintf(cmd.OutOrStdout(), "conversations (%s): %d processed, %d added, %d updated, %d skipped, %d deleted\n",
			convSourceTag, sum.Processed, sum.Added, sum.Updated, sum.Skipped, sum.Deleted)
		for _, e := range sum.Errors {
			fmt.Fprintf(cmd.ErrOrStderr(), "conversation error: %s\n", e)
		}
	}

	return nil
}
