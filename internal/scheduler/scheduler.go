package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"inkpad/internal/domain"

	"github.com/robfig/cron/v3"
)

const (
	DefaultPublishSpec    = "* * * * *"
	ScheduledStatsSpec    = "0 * * * *"
	SessionPurgeSpec      = "30 3 * * *"
	Timezone              = "UTC"
	TimezoneOffsetSeconds = 0

	publishDueTimeout     = 2 * time.Minute
	scheduledStatsTimeout = 30 * time.Second
	purgeSessionsTimeout  = time.Minute
)

// Jobs is the work the scheduler triggers.
type Jobs interface {
	PublishDue(ctx context.Context) ([]int64, error)
	ScheduledStats(ctx context.Context) (domain.ScheduledStats, error)
	PurgeSessions(ctx context.Context) (int64, error)
}

type Scheduler struct {
	ctx         context.Context
	cron        *cron.Cron
	jobs        Jobs
	publishSpec string
	log         *slog.Logger
}

func New(ctx context.Context, jobs Jobs, publishSpec string, log *slog.Logger) *Scheduler {
	c := cron.New(cron.WithLocation(time.FixedZone(Timezone, TimezoneOffsetSeconds)))

	if publishSpec == "" {
		publishSpec = DefaultPublishSpec
	}

	return &Scheduler{
		ctx:         ctx,
		cron:        c,
		jobs:        jobs,
		publishSpec: publishSpec,
		log:         log,
	}
}

func (s *Scheduler) Start() error {
	entries := []struct {
		spec string
		job  func()
	}{
		{s.publishSpec, s.publishDue},
		{ScheduledStatsSpec, s.logScheduledStats},
		{SessionPurgeSpec, s.purgeSessions},
	}

	for _, e := range entries {
		if _, err := s.cron.AddFunc(e.spec, e.job); err != nil {
			return fmt.Errorf("add cron job (spec = %s): %w", e.spec, err)
		}
	}

	s.cron.Start()

	return nil
}

// Stop halts the cron and waits for running jobs to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}

func (s *Scheduler) publishDue() {
	ctx, cancel := context.WithTimeout(s.ctx, publishDueTimeout)
	defer cancel()

	if s.done(ctx) {
		return
	}

	ids, err := s.jobs.PublishDue(ctx)
	if err != nil {
		s.log.ErrorContext(ctx, "Failed to publish due posts",
			"error", err)

		return
	}

	if len(ids) > 0 {
		s.log.InfoContext(ctx, "Scheduled posts are published",
			"count", len(ids))
	}
}

func (s *Scheduler) logScheduledStats() {
	ctx, cancel := context.WithTimeout(s.ctx, scheduledStatsTimeout)
	defer cancel()

	if s.done(ctx) {
		return
	}

	stats, err := s.jobs.ScheduledStats(ctx)
	if err != nil {
		s.log.ErrorContext(ctx, "Failed to get scheduled stats",
			"error", err)

		return
	}

	s.log.InfoContext(ctx, "Scheduled posts",
		"total", stats.Total,
		"publishingSoon", stats.PublishingSoon)
}

func (s *Scheduler) purgeSessions() {
	ctx, cancel := context.WithTimeout(s.ctx, purgeSessionsTimeout)
	defer cancel()

	if s.done(ctx) {
		return
	}

	purged, err := s.jobs.PurgeSessions(ctx)
	if err != nil {
		s.log.ErrorContext(ctx, "Failed to purge sessions",
			"error", err)

		return
	}

	s.log.InfoContext(ctx, "Expired sessions are purged",
		"purged", purged)
}

func (s *Scheduler) done(ctx context.Context) bool {
	select {
	case <-ctx.Done():
		s.log.InfoContext(ctx, "Scheduler context is done",
			"error", ctx.Err())

		return true
	default:
		return false
	}
}
