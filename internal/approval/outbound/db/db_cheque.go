package db

import (
	"context"

	"github.com/shandysiswandi/chequeflow/internal/approval/entity"
)

const queryGetCheque = `
SELECT ref, number, holder_name, payee_name, mobile, amount_minor, currency, issue_date,
       image_bucket, COALESCE(front_image_key, ''), COALESCE(back_image_key, '')
FROM cheques
WHERE ref = $1`

func (s *DB) GetCheque(ctx context.Context, ref string) (_ *entity.Cheque, err error) {
	ctx, span := s.startSpan(ctx, "GetCheque")
	defer func() { s.endSpan(span, err) }()

	var c entity.Cheque
	err = s.conn.QueryRow(ctx, queryGetCheque, ref).Scan(
		&c.Ref,
		&c.Number,
		&c.HolderName,
		&c.PayeeName,
		&c.Mobile,
		&c.AmountMinor,
		&c.Currency,
		&c.IssueDate,
		&c.ImageBucket,
		&c.FrontImageKey,
		&c.BackImageKey,
	)
	if err != nil {
		return nil, s.mapError(err)
	}

	return &c, nil
}
