package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/shandysiswandi/chequeflow/internal/approval/entity"
	"github.com/shandysiswandi/chequeflow/internal/pkg/goerror"
	"github.com/shandysiswandi/chequeflow/internal/pkg/sessiontimer"
)

type CreateInput struct {
	ChequeRef string `validate:"required,chequeref"`
	// SessionMinutes overrides the configured session length when positive.
	SessionMinutes int `validate:"gte=0,lte=1440"`
}

type CreateOutput struct {
	ID        string
	ChequeRef string
	State     entity.State
	CreatedAt time.Time
	ExpiresAt time.Time
}

func (s *Usecase) Create(ctx context.Context, in CreateInput) (*CreateOutput, error) {
	ctx, span := s.startSpan(ctx, "Create")
	defer span.End()

	in.ChequeRef = strings.TrimSpace(in.ChequeRef)

	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	cheque, err := s.repoDB.GetCheque(ctx, in.ChequeRef)
	if errors.Is(err, goerror.ErrNotFound) {
		slog.WarnContext(ctx, "cheque not found for approval", "cheque_ref", in.ChequeRef)
		return nil, errChequeNotFound()
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo get cheque", "cheque_ref", in.ChequeRef, "error", err)
		return nil, goerror.NewServer(err)
	}

	d := s.sessionDuration()
	if in.SessionMinutes > 0 {
		d = time.Duration(in.SessionMinutes) * time.Minute
	}

	w := &workflow{
		id:        s.uuid.Generate(),
		chequeRef: in.ChequeRef,
		cheque:    *cheque,
		state:     entity.StateInitial,
	}

	// hold w.mu so neither a caller nor the timer sees w half-built
	w.mu.Lock()
	defer w.mu.Unlock()

	if err := s.reg.add(w); err != nil {
		slog.WarnContext(ctx, "cheque already has a live approval", "cheque_ref", in.ChequeRef)
		return nil, errDuplicateWorkflow()
	}

	w.timer = sessiontimer.Start(s.clock, d, func() { s.onSessionTimeout(w) })
	w.createdAt = w.timer.ExpiresAt().Add(-d)

	slog.InfoContext(ctx, "approval workflow created", "workflow_id", w.id, "cheque_ref", w.chequeRef,
		"expires_at", w.expiresAt())

	return &CreateOutput{
		ID:        w.id,
		ChequeRef: w.chequeRef,
		State:     w.state,
		CreatedAt: w.createdAt,
		ExpiresAt: w.expiresAt(),
	}, nil
}
