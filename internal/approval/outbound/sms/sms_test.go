package sms

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/shandysiswandi/chequeflow/internal/approval/entity"
	"github.com/shandysiswandi/chequeflow/internal/pkg/instrument"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockSNS struct{ mock.Mock }

func (m *mockSNS) Publish(ctx context.Context, in *sns.PublishInput, _ ...func(*sns.Options)) (*sns.PublishOutput, error) {
	args := m.Called(ctx, in)
	out, _ := args.Get(0).(*sns.PublishOutput)
	return out, args.Error(1)
}

func TestSNS_SendOTP(t *testing.T) {
	m := new(mockSNS)
	m.On("Publish", mock.Anything, mock.MatchedBy(func(in *sns.PublishInput) bool {
		return aws.ToString(in.PhoneNumber) == "+919876547890" &&
			aws.ToString(in.Message) == "482913 is your code to approve the cheque. It is valid for 5 minutes. Do not share it with anyone." &&
			aws.ToString(in.MessageAttributes["AWS.SNS.SMS.SMSType"].StringValue) == "Transactional" &&
			aws.ToString(in.MessageAttributes["AWS.SNS.SMS.SenderID"].StringValue) == "CHQFLOW"
	})).Return(&sns.PublishOutput{MessageId: aws.String("m-1")}, nil).Once()

	s := NewSNS(m, Options{SenderID: "CHQFLOW", Transactional: true, CodeValidity: 5 * time.Minute}, instrument.NewNoop())

	require.NoError(t, s.SendOTP(context.Background(), "+919876547890", "482913"))
	m.AssertExpectations(t)
}

func TestSNS_SendDecisionConfirmation(t *testing.T) {
	m := new(mockSNS)
	m.On("Publish", mock.Anything, mock.MatchedBy(func(in *sns.PublishInput) bool {
		return aws.ToString(in.Message) == "Cheque 000123 has been approved." && in.MessageAttributes == nil
	})).Return(&sns.PublishOutput{}, nil).Once()

	s := NewSNS(m, Options{}, instrument.NewNoop())

	require.NoError(t, s.SendDecisionConfirmation(context.Background(), "+919876547890", "000123", entity.DecisionApproved))
	m.AssertExpectations(t)
}

func TestSNS_PublishError(t *testing.T) {
	m := new(mockSNS)
	m.On("Publish", mock.Anything, mock.Anything).Return(nil, errors.New("opted out")).Once()

	s := NewSNS(m, Options{}, instrument.NewNoop())

	assert.EqualError(t, s.SendOTP(context.Background(), "+919876547890", "482913"), "opted out")
}

func TestLog(t *testing.T) {
	l := NewLog()
	assert.NoError(t, l.SendOTP(context.Background(), "+919876547890", "482913"))
	assert.NoError(t, l.SendDecisionConfirmation(context.Background(), "+919876547890", "000123", entity.DecisionRejected))
}

func TestOTPMessage(t *testing.T) {
	assert.Equal(t, "123456 is your code to approve the cheque. Do not share it with anyone.", otpMessage("123456", 0))
}
