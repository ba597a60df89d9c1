// Package blog holds the authoring and reading workflows on top of the
// database: posts with derived summaries, taxonomy, bookmarks, sessions and
// scheduled publishing.
package blog

import (
	"context"
	"log/slog"
	"time"

	"inkpad/internal/database"
	"inkpad/internal/domain"
	"inkpad/internal/ratelimiter"
	"inkpad/internal/summarizer"
	"inkpad/internal/summary"
)

const (
	DefaultSessionTTL = 30 * 24 * time.Hour

	hotPostsLimit      = 5
	publishingSoonSpan = 24 * time.Hour
)

// Announcer is notified once for every post that becomes public.
type Announcer interface {
	Announce(ctx context.Context, post domain.Post) error
}

type Options struct {
	SummaryMaxLength int
	PageSize         int
	SessionTTL       time.Duration
}

type Service struct {
	db         *database.Database
	summarizer summarizer.Summarizer
	limiter    *ratelimiter.LoginLimiter
	announcer  Announcer
	opts       Options
	now        func() time.Time
	log        *slog.Logger
}

// New wires a Service. A nil summarizer selects the extractive one and a nil
// announcer disables announcements.
func New(
	db *database.Database,
	s summarizer.Summarizer,
	limiter *ratelimiter.LoginLimiter,
	announcer Announcer,
	opts Options,
	log *slog.Logger,
) *Service {
	if s == nil {
		s = summarizer.NewExtractive()
	}
	if opts.SummaryMaxLength <= 0 {
		opts.SummaryMaxLength = summary.DefaultMaxLength
	}
	if opts.PageSize <= 0 {
		opts.PageSize = database.DefaultPageSize
	}
	if opts.SessionTTL <= 0 {
		opts.SessionTTL = DefaultSessionTTL
	}

	return &Service{
		db:         db,
		summarizer: s,
		limiter:    limiter,
		announcer:  announcer,
		opts:       opts,
		now:        time.Now,
		log:        log,
	}
}

func (s *Service) announce(ctx context.Context, post *domain.Post) {
	if s.announcer == nil || post == nil || !post.Published {
		return
	}

	if err := s.announcer.Announce(ctx, *post); err != nil {
		s.log.ErrorContext(ctx, "Failed to announce post",
			"error", err,
			"postID", post.ID)
	}
}

func (s *Service) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}
