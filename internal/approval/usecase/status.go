package usecase

import (
	"context"
	"log/slog"
	"time"

	"github.com/shandysiswandi/chequeflow/internal/approval/entity"
)

type OTPStatus struct {
	MaskedDestination string
	CodeExpiresAt     time.Time
	ResendAvailableAt time.Time
	AttemptsRemaining int
	Exhausted         bool
}

type StatusOutput struct {
	ID               string
	ChequeRef        string
	State            entity.State
	Decision         entity.Decision
	CreatedAt        time.Time
	ExpiresAt        time.Time
	DecidedAt        *time.Time
	RemainingSeconds int64
	Urgency          entity.Urgency
	OTP              *OTPStatus
}

// GetStatus never fails on a finalized workflow. A live workflow past its
// deadline is expired first and reported as such.
func (s *Usecase) GetStatus(ctx context.Context, id string) (*StatusOutput, error) {
	ctx, span := s.startSpan(ctx, "GetStatus")
	defer span.End()

	w, ok := s.reg.get(id)
	if !ok {
		return nil, errWorkflowNotFound()
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	now := s.clock.Now()

	if !w.state.IsTerminal() && w.timer.IsExpired(now) {
		if err := s.finalizeLocked(ctx, w, entity.StateExpired, now); err != nil {
			slog.ErrorContext(ctx, "failed to record expired decision", "workflow_id", w.id, "error", err)
		}
	}

	out := &StatusOutput{
		ID:        w.id,
		ChequeRef: w.chequeRef,
		State:     w.state,
		Decision:  w.decision,
		CreatedAt: w.createdAt,
		ExpiresAt: w.expiresAt(),
		Urgency:   entity.UrgencyEnded,
	}

	if w.state.IsTerminal() {
		decidedAt := w.decidedAt
		out.DecidedAt = &decidedAt
		return out, nil
	}

	remaining := w.timer.Remaining(now)
	out.RemainingSeconds = int64(remaining / time.Second)
	out.Urgency = s.urgency(remaining)

	if w.challenge != nil {
		out.OTP = &OTPStatus{
			MaskedDestination: entity.MaskMobile(w.cheque.Mobile),
			CodeExpiresAt:     w.challenge.ExpiresAt(),
			ResendAvailableAt: w.challenge.ResendAvailableAt(),
			AttemptsRemaining: w.challenge.AttemptsRemaining(),
			Exhausted:         w.challenge.Exhausted(),
		}
	}

	return out, nil
}

func (s *Usecase) urgency(remaining time.Duration) entity.Urgency {
	warning, critical := s.urgencyWindows()
	switch {
	case remaining <= 0:
		return entity.UrgencyEnded
	case remaining <= critical:
		return entity.UrgencyCritical
	case remaining <= warning:
		return entity.UrgencyWarning
	default:
		return entity.UrgencyNormal
	}
}
