package main

import (
	"log/slog"

	"inkpad/internal/config"

	"github.com/spf13/cobra"
)

func newRootCmd(cfg config.Config, log *slog.Logger) *cobra.Command {
	root := &cobra.Command{
		Use:           "inkpad",
		Short:         "Personal blog with extractive summaries",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(
		newServeCmd(cfg, log),
		newSummarizeCmd(cfg, log),
		newUserCmd(cfg, log),
		newImportCmd(cfg, log),
		newImportFeedCmd(cfg, log),
		newPublishDueCmd(cfg, log),
	)

	return root
}
