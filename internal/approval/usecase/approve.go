package usecase

import (
	"context"
	"log/slog"
	"time"

	"github.com/shandysiswandi/chequeflow/internal/approval/entity"
	"github.com/shandysiswandi/chequeflow/internal/pkg/goerror"
)

type ApproveOutput struct {
	State             entity.State
	MaskedDestination string
	CodeExpiresAt     time.Time
	ResendAvailableAt time.Time
}

// Approve starts the otp challenge. Calling it again while a challenge is
// live returns that challenge without issuing a new code.
//
// A delivery failure is returned together with a non-nil output: the code
// was issued and stays valid.
func (s *Usecase) Approve(ctx context.Context, id string) (*ApproveOutput, error) {
	ctx, span := s.startSpan(ctx, "Approve")
	defer span.End()

	var (
		out         *ApproveOutput
		code        string
		destination string
	)

	err := s.withWorkflow(ctx, id, func(w *workflow, now time.Time) error {
		if w.state == entity.StateAwaitingOTP {
			out = approveOutput(w)
			return nil
		}

		challenge, c, err := s.otp.Issue(now, w.expiresAt())
		if err != nil {
			slog.ErrorContext(ctx, "failed to issue otp", "workflow_id", w.id, "error", err)
			return goerror.NewServer(err)
		}

		w.challenge = challenge
		w.state = entity.StateAwaitingOTP

		out = approveOutput(w)
		code = c
		destination = w.cheque.Mobile
		return nil
	})
	if err != nil {
		return nil, err
	}

	if code == "" {
		return out, nil
	}

	if err := s.notifier.SendOTP(ctx, destination, code); err != nil {
		slog.ErrorContext(ctx, "failed to deliver otp", "workflow_id", id, "destination", destination, "error", err)
		return out, errDeliveryFailed(err)
	}

	return out, nil
}

func approveOutput(w *workflow) *ApproveOutput {
	return &ApproveOutput{
		State:             w.state,
		MaskedDestination: entity.MaskMobile(w.cheque.Mobile),
		CodeExpiresAt:     w.challenge.ExpiresAt(),
		ResendAvailableAt: w.challenge.ResendAvailableAt(),
	}
}
