package dynamo

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/shandysiswandi/chequeflow/internal/approval/entity"
	"github.com/shandysiswandi/chequeflow/internal/pkg/goerror"
	"github.com/shandysiswandi/chequeflow/internal/pkg/instrument"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memTable honours attribute_not_exists on the workflow_id key.
type memTable struct {
	mu    sync.Mutex
	items map[string]map[string]types.AttributeValue
	err   error
}

func (m *memTable) PutItem(_ context.Context, in *dynamodb.PutItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.err != nil {
		return nil, m.err
	}

	key := in.Item["workflow_id"].(*types.AttributeValueMemberS).Value
	if _, ok := m.items[key]; ok && in.ConditionExpression != nil {
		return nil, &types.ConditionalCheckFailedException{Message: new(string)}
	}
	m.items[key] = in.Item
	return &dynamodb.PutItemOutput{}, nil
}

func (m *memTable) GetItem(_ context.Context, in *dynamodb.GetItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := in.Key["workflow_id"].(*types.AttributeValueMemberS).Value
	return &dynamodb.GetItemOutput{Item: m.items[key]}, nil
}

func TestDecisionStore_RecordFinal(t *testing.T) {
	table := &memTable{items: map[string]map[string]types.AttributeValue{}}
	s := NewDecisionStore(table, "approval_decisions", instrument.NewNoop())
	ctx := context.Background()

	rec := entity.DecisionRecord{
		WorkflowID: "wf-1",
		ChequeRef:  "CHQ-0001",
		Decision:   entity.DecisionRejected,
		DecidedAt:  time.Date(2026, 3, 1, 10, 4, 0, 0, time.UTC),
	}
	require.NoError(t, s.RecordFinal(ctx, rec))
	assert.ErrorIs(t, s.RecordFinal(ctx, rec), entity.ErrDecisionAlreadyRecorded)

	got, err := s.GetDecision(ctx, "wf-1")
	require.NoError(t, err)
	assert.Equal(t, rec, *got)

	_, err = s.GetDecision(ctx, "wf-404")
	assert.ErrorIs(t, err, goerror.ErrNotFound)
}

func TestDecisionStore_RecordFinal_Error(t *testing.T) {
	table := &memTable{items: map[string]map[string]types.AttributeValue{}, err: errors.New("throttled")}
	s := NewDecisionStore(table, "approval_decisions", instrument.NewNoop())

	err := s.RecordFinal(context.Background(), entity.DecisionRecord{WorkflowID: "wf-1"})
	assert.EqualError(t, err, "throttled")
}
