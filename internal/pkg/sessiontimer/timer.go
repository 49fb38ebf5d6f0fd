// Package sessiontimer tracks one absolute deadline and fires a callback
// exactly once when it passes, unless cancelled first.
package sessiontimer

import (
	"sync"
	"time"

	"github.com/shandysiswandi/chequeflow/internal/pkg/clock"
	"go.uber.org/atomic"
)

// Timer is a one-shot session deadline.
type Timer struct {
	clock     clock.Clocker
	expiresAt time.Time

	mu      sync.Mutex
	pending clock.Timer

	fired     atomic.Bool
	cancelled atomic.Bool
}

// Start fixes the deadline at clk.Now()+d and schedules onExpire for it.
// onExpire runs on the clock's goroutine and at most once.
func Start(clk clock.Clocker, d time.Duration, onExpire func()) *Timer {
	t := &Timer{clock: clk, expiresAt: clk.Now().Add(d)}

	t.mu.Lock()
	defer t.mu.Unlock()

	t.pending = clk.AfterFunc(d, func() {
		if t.cancelled.Load() {
			return
		}
		if !t.fired.CompareAndSwap(false, true) {
			return
		}
		if onExpire != nil {
			onExpire()
		}
	})

	return t
}

// ExpiresAt is fixed at Start and never moves.
func (t *Timer) ExpiresAt() time.Time {
	return t.expiresAt
}

// IsExpired reports now >= ExpiresAt.
func (t *Timer) IsExpired(now time.Time) bool {
	return !now.Before(t.expiresAt)
}

// Remaining truncates to whole seconds and never goes below zero.
func (t *Timer) Remaining(now time.Time) time.Duration {
	left := t.expiresAt.Sub(now)
	if left <= 0 {
		return 0
	}
	return left.Truncate(time.Second)
}

// Cancel suppresses the pending callback. Calling it more than once, or after
// the callback fired, is a no-op. It reports whether this call cancelled it.
func (t *Timer) Cancel() bool {
	if t.fired.Load() || !t.cancelled.CompareAndSwap(false, true) {
		return false
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if t.pending != nil {
		t.pending.Stop()
	}
	return true
}

// Fired reports whether the expiry callback has run.
func (t *Timer) Fired() bool {
	return t.fired.Load()
}
