package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"inkpad/internal/config"

	"github.com/spf13/cobra"
)

func newUserCmd(cfg config.Config, log *slog.Logger) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage accounts",
	}

	cmd.AddCommand(newUserCreateCmd(cfg, log), newUserPasswdCmd(cfg, log))

	return cmd
}

func newUserCreateCmd(cfg config.Config, log *slog.Logger) *cobra.Command {
	var password string

	cmd := &cobra.Command{
		Use:   "create <username> <email>",
		Short: "Create an account",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			pw, err := passwordOrStdin(password, cmd.InOrStdin())
			if err != nil {
				return err
			}

			a, err := openApp(ctx, cfg, log)
			if err != nil {
				return err
			}
			defer a.Close(ctx)

			user, err := a.svc.Register(ctx, args[0], args[1], pw)
			if err != nil {
				return err
			}

			_, err = fmt.Fprintf(cmd.OutOrStdout(), "created user %s (id %d)\n", user.Username, user.ID)

			return err
		},
	}

	cmd.Flags().StringVar(&password, "password", "", "password; read from stdin when empty")

	return cmd
}

func newUserPasswdCmd(cfg config.Config, log *slog.Logger) *cobra.Command {
	var password string

	cmd := &cobra.Command{
		Use:   "passwd <username>",
		Short: "Reset the password of an account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			pw, err := passwordOrStdin(password, cmd.InOrStdin())
			if err != nil {
				return err
			}

			a, err := openApp(ctx, cfg, log)
			if err != nil {
				return err
			}
			defer a.Close(ctx)

			if err = a.svc.SetPassword(ctx, args[0], pw); err != nil {
				return err
			}

			_, err = fmt.Fprintf(cmd.OutOrStdout(), "password updated for %s\n", args[0])

			return err
		},
	}

	cmd.Flags().StringVar(&password, "password", "", "password; read from stdin when empty")

	return cmd
}

func passwordOrStdin(password string, stdin io.Reader) (string, error) {
	if password != "" {
		return password, nil
	}

	line, err := bufio.NewReader(stdin).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("read password: %w", err)
	}

	if line = strings.TrimRight(line, "\r\n"); line == "" {
		return "", errors.New("password is empty")
	}

	return line, nil
}
