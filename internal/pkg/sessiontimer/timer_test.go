package sessiontimer

import (
	"sync"
	"testing"
	"time"

	"github.com/shandysiswandi/chequeflow/internal/pkg/clock"
	"github.com/stretchr/testify/assert"
)

var t0 = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

func TestTimer_FiresOnceAtDeadline(t *testing.T) {
	fc := clock.NewFake(t0)
	calls := 0

	tm := Start(fc, 30*time.Minute, func() { calls++ })
	assert.Equal(t, t0.Add(30*time.Minute), tm.ExpiresAt())

	fc.Advance(30*time.Minute - time.Second)
	assert.Zero(t, calls)
	assert.False(t, tm.IsExpired(fc.Now()))
	assert.Equal(t, time.Second, tm.Remaining(fc.Now()))

	fc.Advance(time.Second)
	assert.Equal(t, 1, calls)
	assert.True(t, tm.Fired())
	assert.True(t, tm.IsExpired(fc.Now()))
	assert.Zero(t, tm.Remaining(fc.Now()))

	fc.Advance(time.Hour)
	assert.Equal(t, 1, calls)
	assert.False(t, tm.Cancel(), "cancel after firing is a no-op")
}

func TestTimer_CancelSuppressesCallback(t *testing.T) {
	fc := clock.NewFake(t0)
	calls := 0

	tm := Start(fc, time.Minute, func() { calls++ })

	assert.True(t, tm.Cancel())
	assert.False(t, tm.Cancel())
	assert.Zero(t, fc.Pending())

	fc.Advance(2 * time.Minute)
	assert.Zero(t, calls)
	assert.False(t, tm.Fired())
	assert.True(t, tm.IsExpired(fc.Now()), "the deadline itself still applies")
}

func TestTimer_IsExpiredBoundary(t *testing.T) {
	tm := Start(clock.NewFake(t0), time.Minute, nil)

	tests := []struct {
		name string
		now  time.Time
		want bool
	}{
		{name: "before", now: t0.Add(59 * time.Second), want: false},
		{name: "equal", now: t0.Add(time.Minute), want: true},
		{name: "after", now: t0.Add(61 * time.Second), want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tm.IsExpired(tt.now))
		})
	}
}

func TestTimer_RealClock(t *testing.T) {
	var wg sync.WaitGroup
	wg.Add(1)

	tm := Start(clock.New(), 10*time.Millisecond, wg.Done)

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		assert.True(t, tm.Fired())
	case <-time.After(2 * time.Second):
		t.Fatal("timer did not fire")
	}
}
