// Package goroutine runs fire-and-forget background work with a concurrency cap
// and panic recovery, and lets shutdown wait for it to drain.
package goroutine

import (
	"context"
	"errors"
	"log/slog"
	"runtime"
	"runtime/debug"
	"sync"

	"github.com/shandysiswandi/chequeflow/internal/pkg/stacktrace"
)

// DefaultMaxGoroutine is used when NewManager receives a non-positive limit.
const DefaultMaxGoroutine int = 100

// ErrPanic is reported by Wait for every task that panicked.
var ErrPanic = errors.New("goroutine: task panicked")

// Manager runs functions in goroutines with a configurable concurrency limit.
//
// Task errors are logged as they happen; Wait reports how many failed.
type Manager struct {
	wg   sync.WaitGroup
	sema chan struct{}

	mu     sync.Mutex
	errs   []error
	failed int

	stateMu sync.RWMutex
	closed  bool
}

// NewManager creates a new Manager with the provided maximum concurrency.
func NewManager(maxGoroutine int) *Manager {
	if maxGoroutine < 1 {
		maxGoroutine = runtime.NumCPU() * DefaultMaxGoroutine
	}

	return &Manager{
		sema: make(chan struct{}, maxGoroutine),
	}
}

// maxKeptErrors bounds the errors Wait joins together.
const maxKeptErrors = 16

// Go schedules f under name and reports whether it was started. It is not
// started when the manager is closed or at its limit.
func (g *Manager) Go(ctx context.Context, name string, f func(ctx context.Context) error) bool {
	if g == nil {
		return false
	}

	g.stateMu.RLock()
	defer g.stateMu.RUnlock()

	if g.closed {
		slog.WarnContext(ctx, "goroutine manager is closed, skipping task", "task", name)
		return false
	}

	select {
	case g.sema <- struct{}{}:
	default:
		slog.WarnContext(ctx, "maximum goroutine limit reached, skipping task", "task", name)
		return false
	}

	g.wg.Go(func() {
		defer func() { <-g.sema }()
		defer func() {
			if rvr := recover(); rvr != nil {
				slog.ErrorContext(ctx, "panic occurred in goroutine", "task", name, "because", rvr, stacktrace.Attr(debug.Stack()))
				g.record(ErrPanic)
			}
		}()

		if err := ctx.Err(); err != nil {
			slog.WarnContext(ctx, "goroutine canceled", "task", name, "because", err)
			return
		}

		if err := f(ctx); err != nil {
			slog.ErrorContext(ctx, "goroutine task failed", "task", name, "error", err)
			g.record(err)
		}
	})
	return true
}

func (g *Manager) record(err error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.failed++
	if len(g.errs) < maxKeptErrors {
		g.errs = append(g.errs, err)
	}
}

// Wait closes the manager, blocks until all scheduled goroutines finish and
// returns the collected errors.
func (g *Manager) Wait() error {
	if g == nil {
		return nil
	}

	g.stateMu.Lock()
	g.closed = true
	g.stateMu.Unlock()

	g.wg.Wait()

	g.mu.Lock()
	defer g.mu.Unlock()
	return errors.Join(g.errs...)
}

// Failed returns how many tasks returned an error or panicked so far.
func (g *Manager) Failed() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.failed
}
