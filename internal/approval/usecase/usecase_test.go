package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shandysiswandi/chequeflow/internal/approval/entity"
	"github.com/shandysiswandi/chequeflow/internal/pkg/clock"
	"github.com/shandysiswandi/chequeflow/internal/pkg/config"
	"github.com/shandysiswandi/chequeflow/internal/pkg/goroutine"
	"github.com/shandysiswandi/chequeflow/internal/pkg/hash"
	"github.com/shandysiswandi/chequeflow/internal/pkg/instrument"
	"github.com/shandysiswandi/chequeflow/internal/pkg/otp"
	"github.com/shandysiswandi/chequeflow/internal/pkg/storage"
	"github.com/shandysiswandi/chequeflow/internal/pkg/uid"
	"github.com/shandysiswandi/chequeflow/internal/pkg/validator"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

const testConfig = `
modules:
  approval:
    session_minutes: 30
    retention_minutes: 60
    image_url_ttl_seconds: 300
    urgency:
      warning_seconds: 300
      critical_seconds: 60
`

type mockRepoDB struct{ mock.Mock }

func (m *mockRepoDB) GetCheque(ctx context.Context, ref string) (*entity.Cheque, error) {
	args := m.Called(ctx, ref)
	c, _ := args.Get(0).(*entity.Cheque)
	return c, args.Error(1)
}

type mockDecisionStore struct{ mock.Mock }

func (m *mockDecisionStore) RecordFinal(ctx context.Context, rec entity.DecisionRecord) error {
	return m.Called(ctx, rec).Error(0)
}

type mockNotifier struct{ mock.Mock }

func (m *mockNotifier) SendOTP(ctx context.Context, destination, code string) error {
	return m.Called(ctx, destination, code).Error(0)
}

func (m *mockNotifier) SendDecisionConfirmation(ctx context.Context, destination, chequeNumber string, decision entity.Decision) error {
	return m.Called(ctx, destination, chequeNumber, decision).Error(0)
}

type mockMessaging struct{ mock.Mock }

func (m *mockMessaging) PublishChequeDecided(ctx context.Context, msg ChequeDecidedEvent) error {
	return m.Called(ctx, msg).Error(0)
}

type sequenceGenerator struct {
	mu    sync.Mutex
	codes []string
	next  int
}

func (g *sequenceGenerator) Generate(int) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.next >= len(g.codes) {
		return "", errors.New("sequence exhausted")
	}
	c := g.codes[g.next]
	g.next++
	return c, nil
}

type fixedNumberID int64

func (f fixedNumberID) Generate() int64 { return int64(f) }

type fakeStorage struct {
	storage.Storage
	err error
}

func (f *fakeStorage) PresignGet(_ context.Context, bucket, key string, expiry time.Duration) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return "https://cdn.example.com/" + bucket + "/" + key + "?ttl=" + expiry.String(), nil
}

type fixture struct {
	uc    *Usecase
	clk   *clock.Fake
	db    *mockRepoDB
	store *mockDecisionStore
	notif *mockNotifier
	mq    *mockMessaging
	gm    *goroutine.Manager
}

var testCheque = entity.Cheque{
	Ref:           "CHQ-0001",
	Number:        "000123",
	HolderName:    "Asha Rao",
	PayeeName:     "Northwind Traders",
	Mobile:        "+919876547890",
	AmountMinor:   1250000,
	Currency:      "INR",
	IssueDate:     time.Date(2026, 2, 27, 0, 0, 0, 0, time.UTC),
	ImageBucket:   "cheques",
	FrontImageKey: "CHQ-0001/front.png",
	BackImageKey:  "CHQ-0001/back.png",
}

func newFixture(t *testing.T, codes ...string) *fixture {
	t.Helper()

	cfg, err := config.NewViperFromBytes("yaml", []byte(testConfig))
	require.NoError(t, err)

	v, err := validator.NewV10Validator()
	require.NoError(t, err)

	f := &fixture{
		clk:   clock.NewFake(t0),
		db:    new(mockRepoDB),
		store: new(mockDecisionStore),
		notif: new(mockNotifier),
		mq:    new(mockMessaging),
		gm:    goroutine.NewManager(0),
	}

	engine := otp.NewEngine(otp.DefaultConfig(), &sequenceGenerator{codes: codes}, hash.NewHMACSHA256("test"))

	f.uc = New(Dependency{
		RepoDB:        f.db,
		DecisionStore: f.store,
		Notifier:      f.notif,
		RepoMessaging: f.mq,
		Validator:     v,
		Config:        cfg,
		Storage:       &fakeStorage{},
		UUID:          uid.NewUUID(),
		UID:           fixedNumberID(42),
		OTP:           engine,
		Clock:         f.clk,
		Instrument:    instrument.NewNoop(),
		Goroutine:     f.gm,
	})
	f.uc.recordBackoff = time.Millisecond

	f.db.On("GetCheque", mock.Anything, testCheque.Ref).Return(&testCheque, nil).Maybe()
	f.mq.On("PublishChequeDecided", mock.Anything, mock.Anything).Return(nil).Maybe()
	f.notif.On("SendDecisionConfirmation", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil).Maybe()

	t.Cleanup(f.uc.Close)

	return f
}

// drain waits for background dispatch so mock expectations can be asserted.
func (f *fixture) drain(t *testing.T) {
	t.Helper()
	require.NoError(t, f.gm.Wait())
}

func (f *fixture) create(t *testing.T) string {
	t.Helper()

	out, err := f.uc.Create(context.Background(), CreateInput{ChequeRef: testCheque.Ref})
	require.NoError(t, err)
	return out.ID
}

func (f *fixture) approve(t *testing.T, id, code string) *ApproveOutput {
	t.Helper()

	f.notif.On("SendOTP", mock.Anything, testCheque.Mobile, code).Return(nil).Once()
	out, err := f.uc.Approve(context.Background(), id)
	require.NoError(t, err)
	return out
}

func (f *fixture) expectRecord(decision entity.Decision) {
	f.store.On("RecordFinal", mock.Anything, mock.MatchedBy(func(rec entity.DecisionRecord) bool {
		return rec.Decision == decision && rec.ChequeRef == testCheque.Ref
	})).Return(nil).Once()
}

func (f *fixture) state(t *testing.T, id string) entity.State {
	t.Helper()

	out, err := f.uc.GetStatus(context.Background(), id)
	require.NoError(t, err)
	return out.State
}
