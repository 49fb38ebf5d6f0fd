package dynamo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/shandysiswandi/chequeflow/internal/approval/entity"
	"github.com/shandysiswandi/chequeflow/internal/pkg/goerror"
	"github.com/shandysiswandi/chequeflow/internal/pkg/instrument"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// API is the part of *dynamodb.Client the decision store uses.
type API interface {
	PutItem(ctx context.Context, in *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	GetItem(ctx context.Context, in *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
}

type decisionItem struct {
	WorkflowID string    `dynamodbav:"workflow_id"`
	ChequeRef  string    `dynamodbav:"cheque_ref"`
	Decision   string    `dynamodbav:"decision"`
	DecidedAt  time.Time `dynamodbav:"decided_at"`
}

// DecisionStore keeps terminal decisions in a DynamoDB table keyed by
// workflow_id.
type DecisionStore struct {
	client    API
	tableName string
	ins       instrument.Instrumentation
}

func NewDecisionStore(client API, tableName string, ins instrument.Instrumentation) *DecisionStore {
	return &DecisionStore{client: client, tableName: tableName, ins: ins}
}

func (s *DecisionStore) RecordFinal(ctx context.Context, rec entity.DecisionRecord) (err error) {
	ctx, span := s.startSpan(ctx, "RecordFinal")
	defer func() { s.endSpan(span, err) }()

	item, err := attributevalue.MarshalMap(decisionItem{
		WorkflowID: rec.WorkflowID,
		ChequeRef:  rec.ChequeRef,
		Decision:   rec.Decision.String(),
		DecidedAt:  rec.DecidedAt.UTC(),
	})
	if err != nil {
		return fmt.Errorf("marshal decision: %w", err)
	}

	_, err = s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(s.tableName),
		Item:                item,
		ConditionExpression: aws.String("attribute_not_exists(workflow_id)"),
	})

	var ccf *types.ConditionalCheckFailedException
	if errors.As(err, &ccf) {
		return entity.ErrDecisionAlreadyRecorded
	}
	return err
}

func (s *DecisionStore) GetDecision(ctx context.Context, workflowID string) (_ *entity.DecisionRecord, err error) {
	ctx, span := s.startSpan(ctx, "GetDecision")
	defer func() { s.endSpan(span, err) }()

	out, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(s.tableName),
		Key: map[string]types.AttributeValue{
			"workflow_id": &types.AttributeValueMemberS{Value: workflowID},
		},
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return nil, err
	}
	if out.Item == nil {
		return nil, goerror.ErrNotFound
	}

	var item decisionItem
	if err := attributevalue.UnmarshalMap(out.Item, &item); err != nil {
		return nil, fmt.Errorf("unmarshal decision: %w", err)
	}

	return &entity.DecisionRecord{
		WorkflowID: item.WorkflowID,
		ChequeRef:  item.ChequeRef,
		Decision:   entity.ParseDecision(item.Decision),
		DecidedAt:  item.DecidedAt,
	}, nil
}

func (s *DecisionStore) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return s.ins.Tracer("approval.outbound.dynamo").Start(ctx, name)
}

func (s *DecisionStore) endSpan(span trace.Span, err error) {
	if err != nil && !errors.Is(err, goerror.ErrNotFound) && !errors.Is(err, entity.ErrDecisionAlreadyRecorded) {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
