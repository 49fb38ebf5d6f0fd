package usecase

import (
	"context"
	"log/slog"
	"time"

	"github.com/shandysiswandi/chequeflow/internal/approval/entity"
	"github.com/shandysiswandi/chequeflow/internal/pkg/goerror"
)

type ChequeOutput struct {
	Ref           string
	Number        string
	HolderName    string
	PayeeName     string
	MaskedMobile  string
	AmountMinor   int64
	Currency      string
	IssueDate     time.Time
	FrontImageURL string
	BackImageURL  string
	URLExpiresAt  time.Time
}

// GetCheque returns the cheque facts with short-lived image links. It stays
// available after the workflow is finalized, until the workflow is evicted.
func (s *Usecase) GetCheque(ctx context.Context, id string) (*ChequeOutput, error) {
	ctx, span := s.startSpan(ctx, "GetCheque")
	defer span.End()

	w, ok := s.reg.get(id)
	if !ok {
		return nil, errWorkflowNotFound()
	}

	// cheque is immutable after Create
	c := w.cheque
	ttl := s.imageURLTTL()

	out := &ChequeOutput{
		Ref:          c.Ref,
		Number:       c.Number,
		HolderName:   c.HolderName,
		PayeeName:    c.PayeeName,
		MaskedMobile: entity.MaskMobile(c.Mobile),
		AmountMinor:  c.AmountMinor,
		Currency:     c.Currency,
		IssueDate:    c.IssueDate,
		URLExpiresAt: s.clock.Now().Add(ttl),
	}

	var err error
	if c.FrontImageKey != "" {
		out.FrontImageURL, err = s.storage.PresignGet(ctx, c.ImageBucket, c.FrontImageKey, ttl)
		if err != nil {
			slog.ErrorContext(ctx, "failed to presign cheque front image", "workflow_id", id, "key", c.FrontImageKey, "error", err)
			return nil, goerror.NewServer(err)
		}
	}
	if c.BackImageKey != "" {
		out.BackImageURL, err = s.storage.PresignGet(ctx, c.ImageBucket, c.BackImageKey, ttl)
		if err != nil {
			slog.ErrorContext(ctx, "failed to presign cheque back image", "workflow_id", id, "key", c.BackImageKey, "error", err)
			return nil, goerror.NewServer(err)
		}
	}

	return out, nil
}
