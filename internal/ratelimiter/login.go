// Package ratelimiter throttles repeated failed logins per client address.
package ratelimiter

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

const (
	DefaultMaxAttempts   = 5
	DefaultBlockDuration = 30 * time.Minute

	minPurgeInterval = time.Minute
)

type Config struct {
	MaxAttempts   int
	BlockDuration time.Duration
	// PurgeInterval defaults to BlockDuration, at least one minute.
	PurgeInterval time.Duration
	// Now defaults to time.Now.
	Now func() time.Time
}

// Status is the outcome of a login check for one client.
type Status struct {
	Allowed    bool
	Remaining  int
	RetryAfter time.Duration
}

type client struct {
	failures     int
	lastFailure  time.Time
	blockedUntil time.Time
}

// LoginLimiter blocks a client for BlockDuration once it reaches
// MaxAttempts consecutive failures. A successful login clears the record.
type LoginLimiter struct {
	maxAttempts int
	block       time.Duration
	now         func() time.Time

	mu      sync.Mutex
	clients map[string]*client

	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}
	log    *slog.Logger
}

func New(cfg Config, log *slog.Logger) *LoginLimiter {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = DefaultMaxAttempts
	}
	if cfg.BlockDuration <= 0 {
		cfg.BlockDuration = DefaultBlockDuration
	}
	if cfg.PurgeInterval <= 0 {
		cfg.PurgeInterval = max(cfg.BlockDuration, minPurgeInterval)
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	ctx, cancel := context.WithCancel(context.Background())

	l := &LoginLimiter{
		maxAttempts: cfg.MaxAttempts,
		block:       cfg.BlockDuration,
		now:         cfg.Now,
		clients:     make(map[string]*client),
		ctx:         ctx,
		cancel:      cancel,
		done:        make(chan struct{}),
		log:         log,
	}

	go l.purgeLoop(cfg.PurgeInterval)

	return l
}

// Check reports whether ip may attempt a login now.
func (l *LoginLimiter) Check(ip string) Status {
	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()

	c, ok := l.clients[ip]
	if !ok {
		return Status{Allowed: true, Remaining: l.maxAttempts}
	}

	if !c.blockedUntil.IsZero() {
		if now.Before(c.blockedUntil) {
			return Status{RetryAfter: c.blockedUntil.Sub(now)}
		}

		delete(l.clients, ip)

		return Status{Allowed: true, Remaining: l.maxAttempts}
	}

	return Status{Allowed: true, Remaining: l.maxAttempts - c.failures}
}

// Fail records a failed login and returns the resulting status.
func (l *LoginLimiter) Fail(ip string) Status {
	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()

	c, ok := l.clients[ip]
	if !ok {
		c = &client{}
		l.clients[ip] = c
	}

	if !c.blockedUntil.IsZero() && now.Before(c.blockedUntil) {
		return Status{RetryAfter: c.blockedUntil.Sub(now)}
	}

	c.failures++
	c.lastFailure = now

	if c.failures >= l.maxAttempts {
		c.blockedUntil = now.Add(l.block)

		l.log.WarnContext(l.ctx, "Blocking client after failed logins",
			"ip", ip,
			"failures", c.failures,
			"blockedUntil", c.blockedUntil)

		return Status{RetryAfter: l.block}
	}

	return Status{Allowed: true, Remaining: l.maxAttempts - c.failures}
}

// Succeed clears the failure record of ip.
func (l *LoginLimiter) Succeed(ip string) {
	l.mu.Lock()
	delete(l.clients, ip)
	l.mu.Unlock()
}

// Purge drops records whose block has expired or whose last failure is
// older than the block duration. It returns the number of dropped records.
func (l *LoginLimiter) Purge() int {
	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()

	purged := 0
	for ip, c := range l.clients {
		expired := now.Sub(c.lastFailure) >= l.block
		if !c.blockedUntil.IsZero() {
			expired = !now.Before(c.blockedUntil)
		}

		if expired {
			delete(l.clients, ip)
			purged++
		}
	}

	return purged
}

// Stop ends the purge goroutine and waits for it to exit.
func (l *LoginLimiter) Stop() {
	l.cancel()
	<-l.done
}

func (l *LoginLimiter) purgeLoop(interval time.Duration) {
	defer close(l.done)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if purged := l.Purge(); purged > 0 {
				l.log.DebugContext(l.ctx, "Purged login records",
					"purged", purged)
			}
		case <-l.ctx.Done():
			return
		}
	}
}

func (l *LoginLimiter) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	return len(l.clients)
}
