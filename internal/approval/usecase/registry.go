package usecase

import (
	"sync"
	"time"

	"github.com/samber/lo"
	"github.com/shandysiswandi/chequeflow/internal/approval/entity"
	"github.com/shandysiswandi/chequeflow/internal/pkg/clock"
	"github.com/shandysiswandi/chequeflow/internal/pkg/otp"
	"github.com/shandysiswandi/chequeflow/internal/pkg/sessiontimer"
)

// workflow is one approval link. Every field below mu is guarded by it, and
// the session timer callback takes the same lock as user operations.
type workflow struct {
	id        string
	chequeRef string
	cheque    entity.Cheque
	createdAt time.Time

	mu        sync.Mutex
	state     entity.State
	decision  entity.Decision
	decidedAt time.Time
	timer     *sessiontimer.Timer
	challenge *otp.Challenge
	retention clock.Timer
}

func (w *workflow) expiresAt() time.Time {
	return w.timer.ExpiresAt()
}

// registry indexes workflows by id and keeps at most one live workflow per
// cheque reference. Its lock may be taken under a workflow lock, never the
// other way round.
type registry struct {
	mu        sync.RWMutex
	items     map[string]*workflow
	liveByRef map[string]string
}

func newRegistry() *registry {
	return &registry{
		items:     map[string]*workflow{},
		liveByRef: map[string]string{},
	}
}

func (r *registry) get(id string) (*workflow, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	w, ok := r.items[id]
	return w, ok
}

// add fails with entity.ErrDuplicateWorkflow when ref already has a live workflow.
func (r *registry) add(w *workflow) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.liveByRef[w.chequeRef]; ok {
		return entity.ErrDuplicateWorkflow
	}
	r.items[w.id] = w
	r.liveByRef[w.chequeRef] = w.id
	return nil
}

// release frees ref for a new workflow once w is terminal.
func (r *registry) release(w *workflow) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.liveByRef[w.chequeRef] == w.id {
		delete(r.liveByRef, w.chequeRef)
	}
}

func (r *registry) remove(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	w, ok := r.items[id]
	if !ok {
		return
	}
	delete(r.items, id)
	if r.liveByRef[w.chequeRef] == id {
		delete(r.liveByRef, w.chequeRef)
	}
}

func (r *registry) all() []*workflow {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return lo.Values(r.items)
}

func (r *registry) len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.items)
}
