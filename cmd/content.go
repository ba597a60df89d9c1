package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"unicode/utf8"

	"inkpad/internal/config"
	"inkpad/internal/importer"
	"inkpad/internal/summarizer"

	"github.com/spf13/cobra"
)

func newSummarizeCmd(cfg config.Config, log *slog.Logger) *cobra.Command {
	var maxLength int

	cmd := &cobra.Command{
		Use:   "summarize [file]",
		Short: "Print the summary of a Markdown file, or of stdin",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				data []byte
				err  error
			)
			if len(args) == 1 {
				data, err = os.ReadFile(args[0])
			} else {
				data, err = io.ReadAll(cmd.InOrStdin())
			}
			if err != nil {
				return fmt.Errorf("read input: %w", err)
			}

			content, encoding := importer.Decode(data)
			log.DebugContext(cmd.Context(), "Input is decoded",
				"encoding", encoding)

			out, err := newSummarizer(cmd.Context(), cfg, log).Summarize(cmd.Context(), summarizer.Input{
				Text:      content,
				MaxLength: maxLength,
			})
			if err != nil {
				return fmt.Errorf("summarize: %w", err)
			}
			switch {
			case out == "":
				out = summarizer.Fallback(content, maxLength)
			case utf8.RuneCountInString(out) > maxLength:
				out = summarizer.Fallback(out, maxLength)
			}

			_, err = fmt.Fprintln(cmd.OutOrStdout(), out)

			return err
		},
	}

	cmd.Flags().IntVar(&maxLength, "max-length", cfg.SummaryMaxLength, "maximum summary length in characters")

	return cmd
}

func newImportCmd(cfg config.Config, log *slog.Logger) *cobra.Command {
	var username string

	cmd := &cobra.Command{
		Use:   "import <files...>",
		Short: "Import Markdown files as drafts",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			files := make([]importer.File, 0, len(args))
			for _, path := range args {
				data, err := os.ReadFile(path)
				if err != nil {
					return fmt.Errorf("read %s: %w", path, err)
				}
				files = append(files, importer.File{Name: filepath.Base(path), Data: data})
			}

			a, err := openApp(ctx, cfg, log)
			if err != nil {
				return err
			}
			defer a.Close(ctx)

			user, err := a.db.GetUserByUsername(ctx, username)
			if err != nil {
				return fmt.Errorf("get user %q: %w", username, err)
			}

			result, err := importer.New(a.svc, log).ImportMarkdownBatch(ctx, user.ID, files)
			if err != nil {
				return err
			}

			return printResult(cmd.OutOrStdout(), result)
		},
	}

	cmd.Flags().StringVar(&username, "user", "", "author username")
	_ = cmd.MarkFlagRequired("user")

	return cmd
}

func newImportFeedCmd(cfg config.Config, log *slog.Logger) *cobra.Command {
	var (
		username string
		limit    int
	)

	cmd := &cobra.Command{
		Use:   "import-feed <url>",
		Short: "Import the latest items of an RSS or Atom feed as drafts",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			a, err := openApp(ctx, cfg, log)
			if err != nil {
				return err
			}
			defer a.Close(ctx)

			user, err := a.db.GetUserByUsername(ctx, username)
			if err != nil {
				return fmt.Errorf("get user %q: %w", username, err)
			}

			result, err := importer.New(a.svc, log).ImportFeed(ctx, user.ID, args[0], limit)
			if err != nil {
				return err
			}

			return printResult(cmd.OutOrStdout(), result)
		},
	}

	cmd.Flags().StringVar(&username, "user", "", "author username")
	cmd.Flags().IntVar(&limit, "limit", importer.DefaultFeedItemLimit, "maximum number of items to import")
	_ = cmd.MarkFlagRequired("user")

	return cmd
}

func newPublishDueCmd(cfg config.Config, log *slog.Logger) *cobra.Command {
	return &cobra.Command{
		Use:   "publish-due",
		Short: "Publish scheduled posts whose time has come",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			a, err := openApp(ctx, cfg, log)
			if err != nil {
				return err
			}
			defer a.Close(ctx)

			ids, err := a.svc.PublishDue(ctx)
			if err != nil {
				return err
			}

			_, err = fmt.Fprintf(cmd.OutOrStdout(), "published %d post(s)\n", len(ids))

			return err
		},
	}
}

func printResult(w io.Writer, result importer.Result) error {
	for _, imported := range result.Imported {
		if _, err := fmt.Fprintf(w, "imported %s -> post %d %q\n", imported.Source, imported.PostID, imported.Title); err != nil {
			return err
		}
	}

	for _, failed := range result.Failed {
		if _, err := fmt.Fprintf(w, "failed   %s: %s\n", failed.Source, failed.Reason); err != nil {
			return err
		}
	}

	if len(result.Failed) > 0 {
		return fmt.Errorf("%d of %d imports failed", len(result.Failed), len(result.Imported)+len(result.Failed))
	}

	return nil
}
