package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWaitUnderBudgetReturnsImmediately(t *testing.T) {
	clock := clockwork.NewFakeClock()
	l := NewWithClock(5, 1000, clock)

	done := make(chan error, 1)
	go func() { done <- l.Wait(context.Background()) }()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("Wait blocked with budget available")
	}
}

func TestWaitBlocksAtMaxRequests(t *testing.T) {
	clock := clockwork.NewFakeClock()
	l := NewWithClock(2, 0, clock)

	l.Record(0)
	l.Record(0)

	done := make(chan error, 1)
	go func() { done <- l.Wait(context.Background()) }()

	// The waiter must be parked on the clock, not returned.
	clock.BlockUntil(1)
	select {
	case <-done:
		t.Fatal("Wait returned while the window was full")
	default:
	}

	// Window never holds more than maxRequests unexpired entries.
	assert.LessOrEqual(t, l.Usage().RequestsUsed, 2)

	// Once the oldest request is >= 60s old the waiter is released.
	clock.Advance(window + safetyMargin)
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("Wait did not return after the window expired")
	}

	assert.Equal(t, 0, l.Usage().RequestsUsed)
}

func TestWaitLoopsUntilUnderBudget(t *testing.T) {
	clock := clockwork.NewFakeClock()
	l := NewWithClock(1, 0, clock)

	// Two requests 30s apart with a budget of one: a single wait only
	// ages out the first entry, so Wait has to loop.
	l.Record(0)
	clock.Advance(30 * time.Second)
	l.Record(0)

	done := make(chan error, 1)
	go func() { done <- l.Wait(context.Background()) }()

	clock.BlockUntil(1)
	clock.Advance(30*time.Second + safetyMargin)

	// First entry expired, second is still inside the window.
	clock.BlockUntil(1)
	select {
	case <-done:
		t.Fatal("Wait returned while a request was still in the window")
	default:
	}

	clock.Advance(30*time.Second + safetyMargin)
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("Wait did not return after both entries expired")
	}
}

func TestWaitGatesOnTokenBudget(t *testing.T) {
	clock := clockwork.NewFakeClock()
	l := NewWithClock(100, 500, clock)

	l.Record(600) // post-hoc overshoot, accepted

	done := make(chan error, 1)
	go func() { done <- l.Wait(context.Background()) }()

	clock.BlockUntil(1)
	select {
	case <-done:
		t.Fatal("Wait returned with the token budget exhausted")
	default:
	}

	clock.Advance(window + safetyMargin)
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("Wait did not return after the token entry expired")
	}
}

func TestWaitCancellable(t *testing.T) {
	clock := clockwork.NewFakeClock()
	l := NewWithClock(1, 0, clock)
	l.Record(0)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- l.Wait(ctx) }()

	clock.BlockUntil(1)
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("Wait did not observe cancellation")
	}
}

func TestUsageReadableWhileWaiting(t *testing.T) {
	clock := clockwork.NewFakeClock()
	l := NewWithClock(1, 0, clock)
	l.Record(0)

	go func() { _ = l.Wait(context.Background()) }()
	clock.BlockUntil(1)

	// A monitoring reader must not block behind the sleeping waiter.
	u := l.Usage()
	assert.Equal(t, 1, u.RequestsUsed)
	assert.Equal(t, 0, u.RequestsRemaining)

	clock.Advance(window + safetyMargin)
}

func TestRecordSkipsZeroTokenEntries(t *testing.T) {
	clock := clockwork.NewFakeClock()
	l := NewWithClock(10, 100, clock)

	l.Record(0)
	l.Record(40)

	u := l.Usage()
	assert.Equal(t, 2, u.RequestsUsed)
	assert.Equal(t, 8, u.RequestsRemaining)
	assert.Equal(t, 40, u.TokensUsed)
	assert.Equal(t, 60, u.TokensRemaining)
}

func TestUsagePrunesExpiredEntries(t *testing.T) {
	clock := clockwork.NewFakeClock()
	l := NewWithClock(10, 100, clock)

	l.Record(50)
	clock.Advance(window + time.Second)
	l.Record(20)

	u := l.Usage()
	assert.Equal(t, 1, u.RequestsUsed)
	assert.Equal(t, 20, u.TokensUsed)
}

func TestUsageRemainingClampedAtZero(t *testing.T) {
	clock := clockwork.NewFakeClock()
	l := NewWithClock(10, 100, clock)

	l.Record(250)

	u := l.Usage()
	assert.Equal(t, 250, u.TokensUsed)
	assert.Equal(t, 0, u.TokensRemaining)
}
