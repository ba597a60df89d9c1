package main

import (
	"context"
	"fmt"
	"log/slog"

	"inkpad/internal/announce"
	"inkpad/internal/blog"
	"inkpad/internal/config"
	"inkpad/internal/database"
	"inkpad/internal/ratelimiter"
	"inkpad/internal/summarizer"
)

// app holds the long-lived dependencies shared by the subcommands.
type app struct {
	cfg       config.Config
	db        *database.Database
	limiter   *ratelimiter.LoginLimiter
	announcer *announce.Announcer
	svc       *blog.Service
	log       *slog.Logger
}

func openApp(ctx context.Context, cfg config.Config, log *slog.Logger) (*app, error) {
	db, err := database.New(ctx, cfg.DBPath, log)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	log.InfoContext(ctx, "DB is initialized",
		"dbPath", cfg.DBPath)

	a := &app{
		cfg: cfg,
		db:  db,
		limiter: ratelimiter.New(ratelimiter.Config{
			MaxAttempts:   cfg.LoginMaxAttempts,
			BlockDuration: cfg.LoginBlockDuration,
		}, log),
		log: log,
	}

	var announcer blog.Announcer
	if cfg.AnnouncementsEnabled() {
		a.announcer, err = announce.NewTelegram(cfg.TelegramToken, cfg.TelegramChatID, cfg.SiteURL, log)
		if err != nil {
			a.Close(ctx)

			return nil, fmt.Errorf("init telegram announcer: %w", err)
		}
		announcer = a.announcer

		log.InfoContext(ctx, "Telegram announcer is initialized",
			"chatID", cfg.TelegramChatID)
	}

	a.svc = blog.New(db, newSummarizer(ctx, cfg, log), a.limiter, announcer, blog.Options{
		SummaryMaxLength: cfg.SummaryMaxLength,
		PageSize:         cfg.PageSize,
		SessionTTL:       cfg.SessionTTL,
	}, log)

	return a, nil
}

func (a *app) Close(ctx context.Context) {
	if a.announcer != nil {
		a.announcer.Stop()
	}

	a.limiter.Stop()

	if err := a.db.Close(); err != nil {
		a.log.ErrorContext(ctx, "Failed to close db",
			"error", err,
			"dbPath", a.cfg.DBPath)
	}
}

// newSummarizer puts a cached OpenAI summarizer in front of the extractive
// one when an API key is configured.
func newSummarizer(ctx context.Context, cfg config.Config, log *slog.Logger) summarizer.Summarizer {
	extractive := summarizer.NewExtractive()

	if cfg.OpenAIAPIKey == "" {
		log.InfoContext(ctx, "OPENAI_API_KEY is missing so extractive summaries will be used",
			"envVar", "OPENAI_API_KEY")

		return extractive
	}

	openAI, err := summarizer.NewOpenAISummarizer(cfg.OpenAIAPIKey, cfg.OpenAIModel)
	if err != nil {
		log.ErrorContext(ctx, "Failed to create OpenAI summarizer so extractive summaries will be used",
			"error", err,
			"envVar", "OPENAI_API_KEY")

		return extractive
	}

	log.InfoContext(ctx, "OpenAI summarizer is initialized",
		"provider", "openai")

	cached := summarizer.NewCached(openAI, summarizer.DefaultCacheMaxEntries, summarizer.DefaultCacheTTL)

	return summarizer.NewChain(log, cached, extractive)
}
