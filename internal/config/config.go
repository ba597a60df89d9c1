package config

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	DBPath   string     `env:"DB_PATH"   envDefault:"db.sqlite"`
	HTTPAddr string     `env:"HTTP_ADDR" envDefault:":8080"`
	SiteURL  string     `env:"SITE_URL"  envDefault:"http://localhost:8080"`
	GinMode  string     `env:"GIN_MODE"  envDefault:"release"`
	LogLevel slog.Level `env:"LOG_LEVEL" envDefault:"INFO"`
	LogFile  string     `env:"LOG_FILE"`

	SummaryMaxLength int `env:"SUMMARY_MAX_LENGTH" envDefault:"300"`
	PageSize         int `env:"PAGE_SIZE"          envDefault:"10"`

	SessionTTL         time.Duration `env:"SESSION_TTL"          envDefault:"720h"`
	LoginMaxAttempts   int           `env:"LOGIN_MAX_ATTEMPTS"   envDefault:"5"`
	LoginBlockDuration time.Duration `env:"LOGIN_BLOCK_DURATION" envDefault:"30m"`

	PublishSchedule string `env:"PUBLISH_SCHEDULE" envDefault:"* * * * *"`

	OpenAIAPIKey string `env:"OPENAI_API_KEY"`
	OpenAIModel  string `env:"OPENAI_MODEL"`

	TelegramToken  string `env:"TELEGRAM_TOKEN"`
	TelegramChatID int64  `env:"TELEGRAM_CHAT_ID"`
}

func Load() (Config, error) {
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}

	if err = cfg.validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func (c Config) validate() error {
	switch {
	case c.SummaryMaxLength <= 0:
		return fmt.Errorf("SUMMARY_MAX_LENGTH must be positive, got %d", c.SummaryMaxLength)
	case c.PageSize <= 0:
		return fmt.Errorf("PAGE_SIZE must be positive, got %d", c.PageSize)
	case c.LoginMaxAttempts <= 0:
		return fmt.Errorf("LOGIN_MAX_ATTEMPTS must be positive, got %d", c.LoginMaxAttempts)
	case c.SessionTTL <= 0:
		return fmt.Errorf("SESSION_TTL must be positive, got %s", c.SessionTTL)
	case c.TelegramToken != "" && c.TelegramChatID == 0:
		return errors.New("TELEGRAM_CHAT_ID is required when TELEGRAM_TOKEN is set")
	}

	return nil
}

// AnnouncementsEnabled reports whether new posts are announced to Telegram.
func (c Config) AnnouncementsEnabled() bool {
	return c.TelegramToken != ""
}
