package approval

import (
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shandysiswandi/chequeflow/internal/approval/entity"
	"github.com/shandysiswandi/chequeflow/internal/approval/inbound"
	"github.com/shandysiswandi/chequeflow/internal/approval/outbound/db"
	"github.com/shandysiswandi/chequeflow/internal/approval/outbound/dynamo"
	"github.com/shandysiswandi/chequeflow/internal/approval/outbound/mq"
	"github.com/shandysiswandi/chequeflow/internal/approval/outbound/sms"
	"github.com/shandysiswandi/chequeflow/internal/approval/usecase"
	"github.com/shandysiswandi/chequeflow/internal/pkg/clock"
	"github.com/shandysiswandi/chequeflow/internal/pkg/config"
	"github.com/shandysiswandi/chequeflow/internal/pkg/goroutine"
	"github.com/shandysiswandi/chequeflow/internal/pkg/hash"
	"github.com/shandysiswandi/chequeflow/internal/pkg/idempotency"
	"github.com/shandysiswandi/chequeflow/internal/pkg/instrument"
	"github.com/shandysiswandi/chequeflow/internal/pkg/messaging"
	"github.com/shandysiswandi/chequeflow/internal/pkg/otp"
	"github.com/shandysiswandi/chequeflow/internal/pkg/router"
	"github.com/shandysiswandi/chequeflow/internal/pkg/storage"
	"github.com/shandysiswandi/chequeflow/internal/pkg/uid"
	"github.com/shandysiswandi/chequeflow/internal/pkg/validator"
)

const (
	DecisionStorePostgres = "postgres"
	DecisionStoreDynamoDB = "dynamodb"

	NotifierSNS = "sns"
	NotifierLog = "log"
)

type Dependency struct {
	DBConn      *pgxpool.Pool              `validate:"required"`
	Goroutine   *goroutine.Manager         `validate:"required"`
	Router      *router.Router             `validate:"required"`
	Idempotency idempotency.Idempotency    `validate:"required"`
	Messaging   messaging.Messaging        `validate:"required"`
	Storage     storage.Storage            `validate:"required"`
	Config      config.Config              `validate:"required"`
	Instrument  instrument.Instrumentation `validate:"required"`
	UID         uid.NumberID               `validate:"required"`
	UUID        uid.StringID               `validate:"required"`
	HMAC        hash.Hash                  `validate:"required"`
	Clock       clock.Clocker              `validate:"required"`
	Validator   validator.Validator        `validate:"required"`

	// DynamoDB is required when the decision store driver is dynamodb.
	DynamoDB *dynamodb.Client
	// SNS is required when the notifier driver is sns.
	SNS *sns.Client
}

type decisionStore interface {
	RecordFinal(ctx context.Context, rec entity.DecisionRecord) error
}

type notifier interface {
	SendOTP(ctx context.Context, destination, code string) error
	SendDecisionConfirmation(ctx context.Context, destination, chequeNumber string, decision entity.Decision) error
}

// Module is the running approval module. Close stops its session timers.
type Module struct {
	uc *usecase.Usecase
}

func (m *Module) Close() {
	m.uc.Close()
}

func New(dep Dependency) (*Module, error) {
	if err := dep.Validator.Validate(dep); err != nil {
		return nil, err
	}

	cfg := dep.Config

	digits := cfg.GetInt("modules.approval.otp.digits")
	gen, err := otp.NewGenerator(cfg.GetString("modules.approval.otp.generator"), digits)
	if err != nil {
		return nil, fmt.Errorf("approval: otp generator: %w", err)
	}
	engine := otp.NewEngine(otp.Config{
		Digits:         digits,
		TTL:            cfg.GetSecond("modules.approval.otp.ttl_seconds"),
		MaxAttempts:    cfg.GetInt("modules.approval.otp.max_attempts"),
		ResendCooldown: cfg.GetSecond("modules.approval.otp.resend_cooldown_seconds"),
	}, gen, dep.HMAC)

	repoDB := db.NewDB(dep.DBConn, dep.Instrument)

	var store decisionStore
	switch driver := strings.ToLower(cfg.GetString("modules.approval.decision_store.driver")); driver {
	case "", DecisionStorePostgres:
		store = repoDB
	case DecisionStoreDynamoDB:
		if dep.DynamoDB == nil {
			return nil, fmt.Errorf("approval: decision store %q needs a dynamodb client", driver)
		}
		store = dynamo.NewDecisionStore(dep.DynamoDB, cfg.GetString("modules.approval.decision_store.dynamodb.table"), dep.Instrument)
	default:
		return nil, fmt.Errorf("approval: unknown decision store driver %q", driver)
	}

	var sender notifier
	switch driver := strings.ToLower(cfg.GetString("modules.approval.notifier.driver")); driver {
	case "", NotifierLog:
		sender = sms.NewLog()
	case NotifierSNS:
		if dep.SNS == nil {
			return nil, fmt.Errorf("approval: notifier %q needs an sns client", driver)
		}
		sender = sms.NewSNS(dep.SNS, sms.Options{
			SenderID:      cfg.GetString("modules.approval.notifier.sns.sender_id"),
			Transactional: cfg.GetBool("modules.approval.notifier.sns.transactional"),
			CodeValidity:  engine.Config().TTL,
		}, dep.Instrument)
	default:
		return nil, fmt.Errorf("approval: unknown notifier driver %q", driver)
	}

	uc := usecase.New(usecase.Dependency{
		RepoDB:        repoDB,
		DecisionStore: store,
		Notifier:      sender,
		RepoMessaging: mq.NewMessaging(dep.Messaging, dep.Instrument, cfg.GetString("modules.approval.topic_cheque_decided")),
		Idempotency:   dep.Idempotency,
		Validator:     dep.Validator,
		Config:        cfg,
		Storage:       dep.Storage,
		UUID:          dep.UUID,
		UID:           dep.UID,
		OTP:           engine,
		Clock:         dep.Clock,
		Instrument:    dep.Instrument,
		Goroutine:     dep.Goroutine,
	})

	inbound.RegisterHTTPEndpoint(dep.Router, uc, cfg.GetArray("modules.approval.api_keys"))

	return &Module{uc: uc}, nil
}
