package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/shandysiswandi/chequeflow/internal/approval/entity"
	"github.com/shandysiswandi/chequeflow/internal/pkg/goerror"
	"github.com/shandysiswandi/chequeflow/internal/pkg/idempotency"
	"github.com/shandysiswandi/chequeflow/internal/pkg/otp"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

type SubmitOTPInput struct {
	ID   string `validate:"required"`
	Code string `validate:"required,otpcode"`
	// IdempotencyKey makes a retried submission run at most once when set.
	IdempotencyKey string `validate:"omitempty,max=128"`
}

type SubmitOTPOutput struct {
	State             entity.State
	Decision          entity.Decision
	AttemptsRemaining int
}

func (s *Usecase) SubmitOTP(ctx context.Context, in SubmitOTPInput) (*SubmitOTPOutput, error) {
	ctx, span := s.startSpan(ctx, "SubmitOTP")
	defer span.End()

	in.Code = strings.TrimSpace(in.Code)
	in.IdempotencyKey = strings.TrimSpace(in.IdempotencyKey)

	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	if in.IdempotencyKey == "" || s.idemp == nil {
		return s.submitOTP(ctx, in)
	}

	var (
		out    *SubmitOTPOutput
		runErr error
		ran    bool
	)

	key := "approval:" + in.ID + ":" + in.IdempotencyKey
	err := s.idemp.Exec(ctx, key, func(ctx context.Context) error {
		ran = true
		out, runErr = s.submitOTP(ctx, in)
		return runErr
	}, idempotency.WithFailOn(isBusinessError))

	if ran {
		if runErr == nil && err != nil {
			slog.WarnContext(ctx, "failed to mark otp submission completed", "workflow_id", in.ID, "error", err)
		}
		return out, runErr
	}

	switch {
	case errors.Is(err, idempotency.ErrAlreadyInProgress),
		errors.Is(err, idempotency.ErrAlreadyCompleted),
		errors.Is(err, idempotency.ErrAlreadyFailed):
		slog.WarnContext(ctx, "duplicate otp submission", "workflow_id", in.ID, "reason", err)
		return nil, goerror.NewBusinessWrap(err, "This request was already processed", goerror.CodeConflict)
	default:
		slog.ErrorContext(ctx, "failed to acquire idempotency key", "workflow_id", in.ID, "error", err)
		return nil, goerror.NewServer(err)
	}
}

func (s *Usecase) submitOTP(ctx context.Context, in SubmitOTPInput) (*SubmitOTPOutput, error) {
	var out *SubmitOTPOutput

	err := s.withWorkflow(ctx, in.ID, func(w *workflow, now time.Time) error {
		if w.state != entity.StateAwaitingOTP || w.challenge == nil {
			return errOTPNotRequested()
		}

		res, err := w.challenge.Verify(in.Code, now)
		switch {
		case errors.Is(err, otp.ErrChallengeExpired):
			s.countVerify(ctx, "expired")
			return errChallengeExpired()
		case errors.Is(err, otp.ErrAttemptsExhausted):
			s.countVerify(ctx, "exhausted")
			return errAttemptsExhausted()
		case err != nil:
			return goerror.NewServer(err)
		}

		s.countVerify(ctx, res.String())

		if res == otp.NoMatch {
			remaining := w.challenge.AttemptsRemaining()
			slog.WarnContext(ctx, "otp does not match", "workflow_id", w.id, "attempts_remaining", remaining)
			return errNoMatch(remaining)
		}

		remaining := w.challenge.AttemptsRemaining()
		if err := s.finalizeLocked(ctx, w, entity.StateApproved, now); err != nil {
			return goerror.NewServer(err)
		}

		out = &SubmitOTPOutput{
			State:             w.state,
			Decision:          w.decision,
			AttemptsRemaining: remaining,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return out, nil
}

func (s *Usecase) countVerify(ctx context.Context, result string) {
	if s.verifyTotal == nil {
		return
	}
	s.verifyTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("result", result)))
}

// isBusinessError reports whether err is an outcome worth remembering for an
// idempotency key. Server errors release the key so the client can retry.
func isBusinessError(err error) bool {
	var gerr *goerror.Error
	return errors.As(err, &gerr) && gerr.Type() != goerror.TypeServer
}
