package ratelimit

import (
	"context"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/caldera-labs/reviewpulse/internal/logger"
)

const (
	// window is the rolling budget window.
	window = time.Minute

	// safetyMargin is added to every computed wait so a re-check after
	// sleeping finds the oldest entry actually expired.
	safetyMargin = 100 * time.Millisecond
)

// Usage is a snapshot of the current window.
type Usage struct {
	RequestsUsed      int
	RequestsRemaining int
	TokensUsed        int
	TokensRemaining   int
}

// tokenEntry records the tokens consumed by one completed request.
type tokenEntry struct {
	at     time.Time
	tokens int
}

// Limiter is a thread-safe sliding-window rate limiter with dual
// budgets: requests per minute and tokens per minute.
//
// Token accounting is post-hoc: tokens are recorded after a call
// completes, so a single call can transiently push token usage over
// budget by at most one call's worth. That looseness is accepted;
// callers must not pre-charge estimates.
type Limiter struct {
	mu          sync.Mutex
	maxRequests int
	maxTokens   int
	clock       clockwork.Clock

	requests []time.Time
	tokens   []tokenEntry
}

// New creates a limiter with the given per-minute budgets.
// A non-positive budget disables that check.
func New(maxRequestsPerMinute, maxTokensPerMinute int) *Limiter {
	return NewWithClock(maxRequestsPerMinute, maxTokensPerMinute, clockwork.NewRealClock())
}

// NewWithClock creates a limiter with an injected clock. Used by tests.
func NewWithClock(maxRequestsPerMinute, maxTokensPerMinute int, clock clockwork.Clock) *Limiter {
	return &Limiter{
		maxRequests: maxRequestsPerMinute,
		maxTokens:   maxTokensPerMinute,
		clock:       clock,
	}
}

// Wait blocks until both budgets have room for one more request, or ctx
// is cancelled. The wait is bounded: every window entry ages out within
// 60 seconds, so each sleep is at most the window plus the safety
// margin. The internal mutex is not held while sleeping, so concurrent
// Usage readers stay live.
func (l *Limiter) Wait(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		l.mu.Lock()
		now := l.clock.Now()
		l.pruneLocked(now)

		var wait time.Duration
		switch {
		case l.maxRequests > 0 && len(l.requests) >= l.maxRequests:
			wait = l.requests[0].Add(window).Sub(now)
		case l.maxTokens > 0 && len(l.tokens) > 0 && l.tokensUsedLocked() >= l.maxTokens:
			wait = l.tokens[0].at.Add(window).Sub(now)
		default:
			l.mu.Unlock()
			return nil
		}
		l.mu.Unlock()

		if wait < 0 {
			// The oldest entry already expired; re-check prunes it.
			continue
		}

		wait += safetyMargin
		logger.Debug("Rate limit reached, waiting %.1fs", wait.Seconds())

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-l.clock.After(wait):
		}
	}
}

// Record registers a completed request. Tokens are recorded only when
// tokensUsed is positive, matching services that omit usage on failure.
func (l *Limiter) Record(tokensUsed int) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.clock.Now()
	l.pruneLocked(now)

	l.requests = append(l.requests, now)
	if tokensUsed > 0 {
		l.tokens = append(l.tokens, tokenEntry{at: now, tokens: tokensUsed})
	}
}

// Usage returns a pruned snapshot of the current window.
// Remaining counts are clamped at zero.
func (l *Limiter) Usage() Usage {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.pruneLocked(l.clock.Now())

	u := Usage{
		RequestsUsed: len(l.requests),
		TokensUsed:   l.tokensUsedLocked(),
	}
	u.RequestsRemaining = max(0, l.maxRequests-u.RequestsUsed)
	u.TokensRemaining = max(0, l.maxTokens-u.TokensUsed)
	return u
}

// pruneLocked drops entries older than the window. Callers hold l.mu.
func (l *Limiter) pruneLocked(now time.Time) {
	cutoff := now.Add(-window)

	for len(l.requests) > 0 && l.requests[0].Before(cutoff) {
		l.requests = l.requests[1:]
	}
	for len(l.tokens) > 0 && l.tokens[0].at.Before(cutoff) {
		l.tokens = l.tokens[1:]
	}
}

// tokensUsedLocked sums the token entries in the window. Callers hold l.mu.
func (l *Limiter) tokensUsedLocked() int {
	total := 0
	for _, e := range l.tokens {
		total += e.tokens
	}
	return total
}
