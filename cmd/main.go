package main

import (
	"context"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"inkpad/internal/config"

	"gopkg.in/natefinch/lumberjack.v2"
)

const (
	logFileMaxSizeMB  = 15
	logFileMaxBackups = 3
	logFileMaxAgeDays = 28
)

func main() {
	os.Exit(run())
}

func run() int {
	cfg, cfgErr := config.Load()

	log, closeLog := newLogger(cfg)
	defer closeLog()
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfgErr != nil {
		log.ErrorContext(ctx, "Failed to load config",
			"error", cfgErr)

		return 1
	}

	if err := newRootCmd(cfg, log).ExecuteContext(ctx); err != nil {
		log.ErrorContext(ctx, "Command failed",
			"error", err)

		return 1
	}

	return 0
}

// newLogger writes JSON logs to stdout and, when LOG_FILE is set, to a
// size-rotated file as well.
func newLogger(cfg config.Config) (*slog.Logger, func()) {
	var (
		w        io.Writer = os.Stdout
		closeLog           = func() {}
	)

	if cfg.LogFile != "" {
		file := &lumberjack.Logger{
			Filename:   cfg.LogFile,
			MaxSize:    logFileMaxSizeMB,
			MaxBackups: logFileMaxBackups,
			MaxAge:     logFileMaxAgeDays,
			Compress:   true,
		}
		w = io.MultiWriter(os.Stdout, file)
		closeLog = func() { _ = file.Close() }
	}

	log := slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: cfg.LogLevel}))

	return log, closeLog
}
