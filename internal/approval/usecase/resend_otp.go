package usecase

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/shandysiswandi/chequeflow/internal/approval/entity"
	"github.com/shandysiswandi/chequeflow/internal/pkg/goerror"
	"github.com/shandysiswandi/chequeflow/internal/pkg/otp"
)

type ResendOTPOutput struct {
	State             entity.State
	MaskedDestination string
	CodeExpiresAt     time.Time
	ResendAvailableAt time.Time
	AttemptsRemaining int
}

// ResendOTP replaces the live code once the cooldown has passed. The old code
// stops matching and the attempt budget starts over.
func (s *Usecase) ResendOTP(ctx context.Context, id string) (*ResendOTPOutput, error) {
	ctx, span := s.startSpan(ctx, "ResendOTP")
	defer span.End()

	var (
		out         *ResendOTPOutput
		code        string
		destination string
	)

	err := s.withWorkflow(ctx, id, func(w *workflow, now time.Time) error {
		if w.state != entity.StateAwaitingOTP || w.challenge == nil {
			return errOTPNotRequested()
		}

		c, err := w.challenge.Resend(now)
		var cooldown *otp.CooldownError
		if errors.As(err, &cooldown) {
			return errResendTooSoon(cooldown.RetryAfter)
		}
		if err != nil {
			slog.ErrorContext(ctx, "failed to resend otp", "workflow_id", w.id, "error", err)
			return goerror.NewServer(err)
		}

		out = &ResendOTPOutput{
			State:             w.state,
			MaskedDestination: entity.MaskMobile(w.cheque.Mobile),
			CodeExpiresAt:     w.challenge.ExpiresAt(),
			ResendAvailableAt: w.challenge.ResendAvailableAt(),
			AttemptsRemaining: w.challenge.AttemptsRemaining(),
		}
		code = c
		destination = w.cheque.Mobile
		return nil
	})
	if err != nil {
		return nil, err
	}

	if err := s.notifier.SendOTP(ctx, destination, code); err != nil {
		slog.ErrorContext(ctx, "failed to deliver resent otp", "workflow_id", id, "destination", destination, "error", err)
		return out, errDeliveryFailed(err)
	}

	return out, nil
}
