package sms

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/aws/aws-sdk-go-v2/service/sns/types"
	"github.com/shandysiswandi/chequeflow/internal/approval/entity"
	"github.com/shandysiswandi/chequeflow/internal/pkg/instrument"
	"go.opentelemetry.io/otel/codes"
)

// API is the part of *sns.Client the notifier uses.
type API interface {
	Publish(ctx context.Context, in *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

type Options struct {
	// SenderID is shown as the sender where the carrier supports it.
	SenderID string
	// Transactional marks messages as time critical so SNS does not
	// deprioritise them.
	Transactional bool
	// CodeValidity is quoted in the otp message when set.
	CodeValidity time.Duration
}

// SNS delivers otp and decision messages as SMS through Amazon SNS.
type SNS struct {
	client API
	opts   Options
	ins    instrument.Instrumentation
}

func NewSNS(client API, opts Options, ins instrument.Instrumentation) *SNS {
	return &SNS{client: client, opts: opts, ins: ins}
}

func (s *SNS) SendOTP(ctx context.Context, destination, code string) error {
	return s.send(ctx, "SendOTP", destination, otpMessage(code, s.opts.CodeValidity))
}

func (s *SNS) SendDecisionConfirmation(ctx context.Context, destination, chequeNumber string, decision entity.Decision) error {
	return s.send(ctx, "SendDecisionConfirmation", destination, decisionMessage(chequeNumber, decision))
}

func (s *SNS) send(ctx context.Context, op, to, message string) error {
	ctx, span := s.ins.Tracer("approval.outbound.sms").Start(ctx, op)
	defer span.End()

	in := &sns.PublishInput{
		PhoneNumber:       aws.String(to),
		Message:           aws.String(message),
		MessageAttributes: s.attributes(),
	}

	out, err := s.client.Publish(ctx, in)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	slog.DebugContext(ctx, "sms published", "op", op, "message_id", aws.ToString(out.MessageId))
	return nil
}

func (s *SNS) attributes() map[string]types.MessageAttributeValue {
	attrs := map[string]types.MessageAttributeValue{}
	if s.opts.SenderID != "" {
		attrs["AWS.SNS.SMS.SenderID"] = types.MessageAttributeValue{
			DataType:    aws.String("String"),
			StringValue: aws.String(s.opts.SenderID),
		}
	}
	if s.opts.Transactional {
		attrs["AWS.SNS.SMS.SMSType"] = types.MessageAttributeValue{
			DataType:    aws.String("String"),
			StringValue: aws.String("Transactional"),
		}
	}
	if len(attrs) == 0 {
		return nil
	}
	return attrs
}

// Log writes messages to the structured log instead of sending them. The
// code itself is masked by the log handler.
type Log struct{}

func NewLog() *Log { return &Log{} }

func (*Log) SendOTP(ctx context.Context, destination, code string) error {
	slog.InfoContext(ctx, "otp sms", "destination", destination, "code", code)
	return nil
}

func (*Log) SendDecisionConfirmation(ctx context.Context, destination, chequeNumber string, decision entity.Decision) error {
	slog.InfoContext(ctx, "decision sms", "destination", destination, "message", decisionMessage(chequeNumber, decision))
	return nil
}

func otpMessage(code string, validity time.Duration) string {
	msg := code + " is your code to approve the cheque."
	if m := int(validity / time.Minute); m > 0 {
		msg += fmt.Sprintf(" It is valid for %d minutes.", m)
	}
	return msg + " Do not share it with anyone."
}

func decisionMessage(chequeNumber string, decision entity.Decision) string {
	return fmt.Sprintf("Cheque %s has been %s.", chequeNumber, decision.String())
}
