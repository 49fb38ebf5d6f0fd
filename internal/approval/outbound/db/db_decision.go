package db

import (
	"context"

	"github.com/shandysiswandi/chequeflow/internal/approval/entity"
)

const queryInsertDecision = `
INSERT INTO approval_decisions (workflow_id, cheque_ref, decision, decided_at)
VALUES ($1, $2, $3, $4)
ON CONFLICT (workflow_id) DO NOTHING`

// RecordFinal stores the terminal decision of a workflow. A second write for
// the same workflow fails with entity.ErrDecisionAlreadyRecorded.
func (s *DB) RecordFinal(ctx context.Context, rec entity.DecisionRecord) (err error) {
	ctx, span := s.startSpan(ctx, "RecordFinal")
	defer func() { s.endSpan(span, err) }()

	tag, err := s.conn.Exec(ctx, queryInsertDecision,
		rec.WorkflowID,
		rec.ChequeRef,
		rec.Decision.String(),
		rec.DecidedAt,
	)
	if err != nil {
		return s.mapError(err)
	}
	if tag.RowsAffected() == 0 {
		return entity.ErrDecisionAlreadyRecorded
	}

	return nil
}

const queryGetDecision = `
SELECT workflow_id, cheque_ref, decision, decided_at
FROM approval_decisions
WHERE workflow_id = $1`

func (s *DB) GetDecision(ctx context.Context, workflowID string) (_ *entity.DecisionRecord, err error) {
	ctx, span := s.startSpan(ctx, "GetDecision")
	defer func() { s.endSpan(span, err) }()

	var (
		rec      entity.DecisionRecord
		decision string
	)
	err = s.conn.QueryRow(ctx, queryGetDecision, workflowID).Scan(
		&rec.WorkflowID,
		&rec.ChequeRef,
		&decision,
		&rec.DecidedAt,
	)
	if err != nil {
		return nil, s.mapError(err)
	}
	rec.Decision = entity.ParseDecision(decision)

	return &rec, nil
}
