package usecase

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/sethvargo/go-retry"
	"github.com/shandysiswandi/chequeflow/internal/approval/entity"
	"github.com/shandysiswandi/chequeflow/internal/pkg/instrument"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// withWorkflow loads id, locks it and reads now once. fn runs under the lock
// only when the workflow is still actionable. A live workflow whose deadline
// has passed is expired here and the call fails with SessionExpired.
func (s *Usecase) withWorkflow(ctx context.Context, id string, fn func(w *workflow, now time.Time) error) error {
	w, ok := s.reg.get(id)
	if !ok {
		return errWorkflowNotFound()
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	now := s.clock.Now()

	if w.state.IsTerminal() {
		if w.state == entity.StateExpired {
			return errSessionExpired()
		}
		return errAlreadyFinalized(w.state)
	}

	if w.timer.IsExpired(now) {
		if err := s.finalizeLocked(ctx, w, entity.StateExpired, now); err != nil {
			slog.ErrorContext(ctx, "failed to record expired decision", "workflow_id", w.id, "error", err)
		}
		return errSessionExpired()
	}

	return fn(w, now)
}

// onSessionTimeout is the session timer callback.
func (s *Usecase) onSessionTimeout(w *workflow) {
	ctx, span := s.startSpan(context.Background(), "SessionTimeout")
	defer span.End()

	w.mu.Lock()
	defer w.mu.Unlock()

	if w.state.IsTerminal() {
		return
	}

	slog.InfoContext(ctx, "approval session timed out", "workflow_id", w.id, "state", w.state.String())

	if err := s.finalizeLocked(ctx, w, entity.StateExpired, s.clock.Now()); err != nil {
		slog.ErrorContext(ctx, "failed to record expired decision", "workflow_id", w.id, "error", err)
	}
}

// finalizeLocked moves w into a terminal state. It must hold w.mu. The state
// change stands even when recording the decision fails; that error is
// returned for the caller to surface.
func (s *Usecase) finalizeLocked(ctx context.Context, w *workflow, to entity.State, now time.Time) error {
	w.state = to
	w.decision = entity.DecisionFor(to)
	w.decidedAt = now
	w.challenge = nil
	w.timer.Cancel()

	s.reg.release(w)

	id := w.id
	w.retention = s.clock.AfterFunc(s.retention(), func() { s.reg.remove(id) })

	if s.decisionTotal != nil {
		s.decisionTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("decision", w.decision.String())))
	}

	rec := entity.DecisionRecord{
		WorkflowID: w.id,
		ChequeRef:  w.chequeRef,
		Decision:   w.decision,
		DecidedAt:  now,
	}
	// the decision must be written even when the caller has gone away
	rctx, cancel := context.WithTimeout(instrument.DetachedContext(ctx), recordTimeout)
	defer cancel()

	err := s.recordFinal(rctx, rec)
	if err != nil {
		slog.ErrorContext(ctx, "failed to record final decision", "workflow_id", w.id, "decision", rec.Decision.String(), "error", err)
	}

	s.dispatchDecided(ctx, rec, w.cheque)

	return err
}

func (s *Usecase) recordFinal(ctx context.Context, rec entity.DecisionRecord) error {
	backoff := retry.WithMaxRetries(recordMaxRetries, retry.NewExponential(s.recordBackoff))

	return retry.Do(ctx, backoff, func(ctx context.Context) error {
		err := s.decisionStore.RecordFinal(ctx, rec)
		if err == nil || errors.Is(err, entity.ErrDecisionAlreadyRecorded) {
			return nil
		}
		slog.WarnContext(ctx, "failed to record final decision, retrying", "workflow_id", rec.WorkflowID, "error", err)
		return retry.RetryableError(err)
	})
}

// dispatchDecided publishes the decision event and, for payer decisions, the
// confirmation SMS. Both run in the background and only log failures.
func (s *Usecase) dispatchDecided(ctx context.Context, rec entity.DecisionRecord, cheque entity.Cheque) {
	bg := instrument.DetachedContext(ctx)

	s.goroutine.Go(bg, "approval.publish_cheque_decided", func(ctx context.Context) error {
		return s.repoMessaging.PublishChequeDecided(ctx, ChequeDecidedEvent{
			EventID:    s.uid.Generate(),
			WorkflowID: rec.WorkflowID,
			ChequeRef:  rec.ChequeRef,
			Decision:   rec.Decision,
			DecidedAt:  rec.DecidedAt,
		})
	})

	if rec.Decision == entity.DecisionExpired || cheque.Mobile == "" {
		return
	}

	s.goroutine.Go(bg, "approval.send_decision_confirmation", func(ctx context.Context) error {
		return s.notifier.SendDecisionConfirmation(ctx, cheque.Mobile, cheque.Number, rec.Decision)
	})
}
