package usecase

import (
	"context"
	"time"

	"github.com/shandysiswandi/chequeflow/internal/approval/entity"
	"github.com/shandysiswandi/chequeflow/internal/pkg/goerror"
)

type RejectOutput struct {
	State    entity.State
	Decision entity.Decision
}

// Reject ends the workflow from Initial or AwaitingOtp. It does not require
// an otp.
func (s *Usecase) Reject(ctx context.Context, id string) (*RejectOutput, error) {
	ctx, span := s.startSpan(ctx, "Reject")
	defer span.End()

	var out *RejectOutput
	err := s.withWorkflow(ctx, id, func(w *workflow, now time.Time) error {
		if err := s.finalizeLocked(ctx, w, entity.StateRejected, now); err != nil {
			return goerror.NewServer(err)
		}

		out = &RejectOutput{State: w.state, Decision: w.decision}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return out, nil
}
