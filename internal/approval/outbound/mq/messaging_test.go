package mq

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/shandysiswandi/chequeflow/internal/approval/entity"
	"github.com/shandysiswandi/chequeflow/internal/approval/usecase"
	"github.com/shandysiswandi/chequeflow/internal/pkg/instrument"
	"github.com/shandysiswandi/chequeflow/internal/pkg/messaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingPublisher struct {
	dest string
	msg  messaging.OutgoingMessage
	err  error
}

func (p *recordingPublisher) Publish(_ context.Context, destination string, msg messaging.OutgoingMessage) (messaging.PublishResult, error) {
	p.dest = destination
	p.msg = msg
	return messaging.PublishResult{Topic: destination}, p.err
}

func TestMessaging_PublishChequeDecided(t *testing.T) {
	pub := &recordingPublisher{}
	m := NewMessaging(pub, instrument.NewNoop(), "")

	ctx := instrument.SetCorrelationID(context.Background(), "cid-1")
	err := m.PublishChequeDecided(ctx, usecase.ChequeDecidedEvent{
		EventID:    42,
		WorkflowID: "wf-1",
		ChequeRef:  "CHQ-0001",
		Decision:   entity.DecisionApproved,
		DecidedAt:  time.Date(2026, 3, 1, 10, 4, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	assert.Equal(t, "cheque.decided", pub.dest)
	assert.Equal(t, []byte("CHQ-0001"), pub.msg.Key)
	assert.Equal(t, "CHQ-0001", pub.msg.OrderingKey)
	assert.Equal(t, []messaging.Header{
		{Key: "cID", Value: []byte("cid-1")},
		{Key: "eventID", Value: []byte("42")},
	}, pub.msg.Headers)

	var body map[string]any
	require.NoError(t, json.Unmarshal(pub.msg.Body, &body))
	assert.Equal(t, map[string]any{
		"event_id":    float64(42),
		"workflow_id": "wf-1",
		"cheque_ref":  "CHQ-0001",
		"decision":    "approved",
		"decided_at":  "2026-03-01T10:04:00Z",
	}, body)
}

func TestMessaging_PublishChequeDecided_Error(t *testing.T) {
	pub := &recordingPublisher{err: errors.New("broker down")}
	m := NewMessaging(pub, instrument.NewNoop(), "approvals.decided")

	err := m.PublishChequeDecided(context.Background(), usecase.ChequeDecidedEvent{ChequeRef: "CHQ-0001"})
	assert.EqualError(t, err, "broker down")
	assert.Equal(t, "approvals.decided", pub.dest)
}
