package mq

import (
	"cmp"
	"context"
	"encoding/json"
	"strconv"

	"github.com/shandysiswandi/chequeflow/internal/approval/usecase"
	"github.com/shandysiswandi/chequeflow/internal/pkg/instrument"
	"github.com/shandysiswandi/chequeflow/internal/pkg/messaging"
	"github.com/shandysiswandi/chequeflow/internal/shared/event"
	"go.opentelemetry.io/otel/codes"
)

const (
	keyOfCorrelationID string = "cID"
	keyOfEventID       string = "eventID"
)

type Messaging struct {
	client messaging.Publisher
	ins    instrument.Instrumentation
	topic  string
}

// NewMessaging publishes to topic, or to event.ChequeDecidedDestination when
// topic is empty.
func NewMessaging(client messaging.Publisher, ins instrument.Instrumentation, topic string) *Messaging {
	return &Messaging{client: client, ins: ins, topic: cmp.Or(topic, event.ChequeDecidedDestination)}
}

func (m *Messaging) PublishChequeDecided(ctx context.Context, msg usecase.ChequeDecidedEvent) error {
	ctx, span := m.ins.Tracer("approval.outbound.mq").Start(ctx, "PublishChequeDecided")
	defer span.End()

	body, err := json.Marshal(event.ChequeDecidedMessage{
		EventID:    msg.EventID,
		WorkflowID: msg.WorkflowID,
		ChequeRef:  msg.ChequeRef,
		Decision:   msg.Decision.String(),
		DecidedAt:  msg.DecidedAt.UTC(),
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	cID := instrument.GetCorrelationID(ctx)
	if _, err := m.client.Publish(ctx, m.topic, messaging.OutgoingMessage{
		Body: body,
		// one partition / ordering key per cheque
		Key:         []byte(msg.ChequeRef),
		OrderingKey: msg.ChequeRef,
		Headers: []messaging.Header{
			{Key: keyOfCorrelationID, Value: []byte(cID)},
			{Key: keyOfEventID, Value: []byte(strconv.FormatInt(msg.EventID, 10))},
		},
	}); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	return nil
}
