package usecase

import (
	"cmp"
	"context"
	"log/slog"
	"time"

	"github.com/shandysiswandi/chequeflow/internal/approval/entity"
	"github.com/shandysiswandi/chequeflow/internal/pkg/clock"
	"github.com/shandysiswandi/chequeflow/internal/pkg/config"
	"github.com/shandysiswandi/chequeflow/internal/pkg/goroutine"
	"github.com/shandysiswandi/chequeflow/internal/pkg/idempotency"
	"github.com/shandysiswandi/chequeflow/internal/pkg/instrument"
	"github.com/shandysiswandi/chequeflow/internal/pkg/otp"
	"github.com/shandysiswandi/chequeflow/internal/pkg/storage"
	"github.com/shandysiswandi/chequeflow/internal/pkg/uid"
	"github.com/shandysiswandi/chequeflow/internal/pkg/validator"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

type ChequeDecidedEvent struct {
	EventID    int64
	WorkflowID string
	ChequeRef  string
	Decision   entity.Decision
	DecidedAt  time.Time
}

type repoDB interface {
	GetCheque(ctx context.Context, ref string) (*entity.Cheque, error)
}

type decisionStore interface {
	RecordFinal(ctx context.Context, rec entity.DecisionRecord) error
}

type notifier interface {
	SendOTP(ctx context.Context, destination, code string) error
	SendDecisionConfirmation(ctx context.Context, destination, chequeNumber string, decision entity.Decision) error
}

type repoMessaging interface {
	PublishChequeDecided(ctx context.Context, msg ChequeDecidedEvent) error
}

const (
	defaultSessionDuration = 30 * time.Minute
	defaultWarningWindow   = 5 * time.Minute
	defaultCriticalWindow  = time.Minute
	defaultRetention       = time.Hour
	defaultImageURLTTL     = 5 * time.Minute
	defaultRecordBackoff   = 50 * time.Millisecond
	recordMaxRetries       = 2
	recordTimeout          = 10 * time.Second
)

type Usecase struct {
	repoDB        repoDB
	decisionStore decisionStore
	notifier      notifier
	repoMessaging repoMessaging
	idemp         idempotency.Idempotency
	validator     validator.Validator
	cfg           config.Config
	storage       storage.Storage
	uuid          uid.StringID
	uid           uid.NumberID
	otp           *otp.Engine
	clock         clock.Clocker
	ins           instrument.Instrumentation
	goroutine     *goroutine.Manager

	reg           *registry
	recordBackoff time.Duration

	decisionTotal metric.Int64Counter
	verifyTotal   metric.Int64Counter
}

type Dependency struct {
	RepoDB        repoDB
	DecisionStore decisionStore
	Notifier      notifier
	RepoMessaging repoMessaging
	Idempotency   idempotency.Idempotency
	Validator     validator.Validator
	Config        config.Config
	Storage       storage.Storage
	UUID          uid.StringID
	UID           uid.NumberID
	OTP           *otp.Engine
	Clock         clock.Clocker
	Instrument    instrument.Instrumentation
	Goroutine     *goroutine.Manager
}

func New(dep Dependency) *Usecase {
	s := &Usecase{
		repoDB:        dep.RepoDB,
		decisionStore: dep.DecisionStore,
		notifier:      dep.Notifier,
		repoMessaging: dep.RepoMessaging,
		idemp:         dep.Idempotency,
		validator:     dep.Validator,
		cfg:           dep.Config,
		storage:       dep.Storage,
		uuid:          dep.UUID,
		uid:           dep.UID,
		otp:           dep.OTP,
		clock:         dep.Clock,
		ins:           dep.Instrument,
		goroutine:     dep.Goroutine,
		reg:           newRegistry(),
		recordBackoff: defaultRecordBackoff,
	}

	meter := s.ins.Meter("approval.usecase")

	var err error
	s.decisionTotal, err = meter.Int64Counter("approval.decision.total",
		metric.WithDescription("Workflows that reached a terminal state, by decision"))
	if err != nil {
		slog.Warn("failed to create approval decision counter", "error", err)
	}
	s.verifyTotal, err = meter.Int64Counter("approval.otp.verify.total",
		metric.WithDescription("Counted otp verification attempts, by result"))
	if err != nil {
		slog.Warn("failed to create approval otp verify counter", "error", err)
	}

	return s
}

func (s *Usecase) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return s.ins.Tracer("approval.usecase").Start(ctx, name)
}

func (s *Usecase) sessionDuration() time.Duration {
	return cmp.Or(s.cfg.GetMinute("modules.approval.session_minutes"), defaultSessionDuration)
}

func (s *Usecase) retention() time.Duration {
	return cmp.Or(s.cfg.GetMinute("modules.approval.retention_minutes"), defaultRetention)
}

func (s *Usecase) imageURLTTL() time.Duration {
	return cmp.Or(s.cfg.GetSecond("modules.approval.image_url_ttl_seconds"), defaultImageURLTTL)
}

func (s *Usecase) urgencyWindows() (warning, critical time.Duration) {
	warning = cmp.Or(s.cfg.GetSecond("modules.approval.urgency.warning_seconds"), defaultWarningWindow)
	critical = cmp.Or(s.cfg.GetSecond("modules.approval.urgency.critical_seconds"), defaultCriticalWindow)
	return warning, critical
}

// Close cancels every pending session and retention timer. Workflows still
// live are left as they are; they are not recorded as expired.
func (s *Usecase) Close() {
	for _, w := range s.reg.all() {
		w.mu.Lock()
		if w.timer != nil {
			w.timer.Cancel()
		}
		if w.retention != nil {
			w.retention.Stop()
		}
		w.mu.Unlock()
	}
}
