package ratelimiter

import (
	"io"
	"log/slog"
	"testing"
	"time"
)

type testClock struct {
	now time.Time
}

func (c *testClock) Now() time.Time { return c.now }

func newTestLimiter(t *testing.T, clock *testClock) *LoginLimiter {
	t.Helper()

	l := New(Config{
		MaxAttempts:   3,
		BlockDuration: 10 * time.Minute,
		PurgeInterval: time.Hour,
		Now:           clock.Now,
	}, slog.New(slog.NewTextHandler(io.Discard, nil)))
	t.Cleanup(l.Stop)

	return l
}

func TestLoginLimiterBlocksAfterMaxAttempts(t *testing.T) {
	clock := &testClock{now: time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)}
	l := newTestLimiter(t, clock)

	if st := l.Check("1.2.3.4"); !st.Allowed || st.Remaining != 3 {
		t.Fatalf("unexpected initial status: %+v", st)
	}

	if st := l.Fail("1.2.3.4"); !st.Allowed || st.Remaining != 2 {
		t.Fatalf("unexpected status after first failure: %+v", st)
	}
	l.Fail("1.2.3.4")

	st := l.Fail("1.2.3.4")
	if st.Allowed || st.RetryAfter != 10*time.Minute {
		t.Fatalf("expected block after third failure, got %+v", st)
	}

	clock.now = clock.now.Add(4 * time.Minute)
	if st = l.Check("1.2.3.4"); st.Allowed || st.RetryAfter != 6*time.Minute {
		t.Fatalf("expected block to hold, got %+v", st)
	}

	if st = l.Fail("1.2.3.4"); st.Allowed {
		t.Fatalf("expected failures while blocked to stay blocked, got %+v", st)
	}

	if st = l.Check("5.6.7.8"); !st.Allowed {
		t.Fatalf("expected other clients to be unaffected")
	}

	clock.now = clock.now.Add(6 * time.Minute)
	if st = l.Check("1.2.3.4"); !st.Allowed || st.Remaining != 3 {
		t.Fatalf("expected block to expire with a clean record, got %+v", st)
	}
}

func TestLoginLimiterSucceedResets(t *testing.T) {
	clock := &testClock{now: time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)}
	l := newTestLimiter(t, clock)

	l.Fail("ip")
	l.Fail("ip")
	l.Succeed("ip")

	if st := l.Fail("ip"); !st.Allowed || st.Remaining != 2 {
		t.Fatalf("expected failure count to restart after success, got %+v", st)
	}
}

func TestLoginLimiterPurge(t *testing.T) {
	clock := &testClock{now: time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)}
	l := newTestLimiter(t, clock)

	l.Fail("stale")
	for range 3 {
		l.Fail("blocked")
	}

	clock.now = clock.now.Add(5 * time.Minute)
	l.Fail("recent")

	if purged := l.Purge(); purged != 0 {
		t.Fatalf("expected nothing to purge yet, got %d", purged)
	}

	clock.now = clock.now.Add(5 * time.Minute)
	if purged := l.Purge(); purged != 2 {
		t.Fatalf("expected stale and blocked records to be purged, got %d", purged)
	}

	if l.size() != 1 {
		t.Fatalf("expected only the recent record to remain, got %d", l.size())
	}
}

func TestLoginLimiterStop(t *testing.T) {
	l := New(Config{PurgeInterval: time.Millisecond}, slog.New(slog.NewTextHandler(io.Discard, nil)))

	done := make(chan struct{})
	go func() {
		l.Stop()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatalf("Stop did not return")
	}
}
