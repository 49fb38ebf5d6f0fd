package clock

import (
	"sort"
	"sync"
	"time"
)

// Fake is a manually driven Clocker for tests.
type Fake struct {
	mu      sync.Mutex
	now     time.Time
	seq     int
	pending []*fakeTimer
}

type fakeTimer struct {
	clock *Fake
	id    int
	at    time.Time
	fn    func()
	done  bool
}

// NewFake returns a Fake frozen at start.
func NewFake(start time.Time) *Fake {
	return &Fake{now: start}
}

// Now returns the fake current time.
func (f *Fake) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.now
}

// AfterFunc registers fn to run when the fake time reaches now+d.
// A non-positive d fires on the next Advance or Set call.
func (f *Fake) AfterFunc(d time.Duration, fn func()) Timer {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.seq++
	t := &fakeTimer{clock: f, id: f.seq, at: f.now.Add(d), fn: fn}
	f.pending = append(f.pending, t)

	return t
}

// Advance moves the clock forward by d and fires every due callback in
// deadline order.
func (f *Fake) Advance(d time.Duration) {
	f.mu.Lock()
	target := f.now.Add(d)
	f.mu.Unlock()

	f.Set(target)
}

// Set moves the clock to t. Callbacks scheduled at or before t fire in
// deadline order, each one observing Now() equal to its own deadline.
func (f *Fake) Set(t time.Time) {
	for {
		f.mu.Lock()
		next := f.nextDueLocked(t)
		if next == nil {
			f.now = t
			f.mu.Unlock()
			return
		}
		next.done = true
		if next.at.After(f.now) {
			f.now = next.at
		}
		f.mu.Unlock()

		next.fn()
	}
}

// Pending reports how many callbacks are still scheduled.
func (f *Fake) Pending() int {
	f.mu.Lock()
	defer f.mu.Unlock()

	n := 0
	for _, t := range f.pending {
		if !t.done {
			n++
		}
	}
	return n
}

func (f *Fake) nextDueLocked(limit time.Time) *fakeTimer {
	live := f.pending[:0]
	for _, t := range f.pending {
		if !t.done {
			live = append(live, t)
		}
	}
	f.pending = live

	sort.SliceStable(f.pending, func(i, j int) bool {
		if f.pending[i].at.Equal(f.pending[j].at) {
			return f.pending[i].id < f.pending[j].id
		}
		return f.pending[i].at.Before(f.pending[j].at)
	})

	if len(f.pending) == 0 || f.pending[0].at.After(limit) {
		return nil
	}
	return f.pending[0]
}

func (t *fakeTimer) Stop() bool {
	t.clock.mu.Lock()
	defer t.clock.mu.Unlock()

	if t.done {
		return false
	}
	t.done = true
	return true
}
