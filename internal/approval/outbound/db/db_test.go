package db

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shandysiswandi/chequeflow/internal/approval/entity"
	"github.com/shandysiswandi/chequeflow/internal/pkg/goerror"
	"github.com/shandysiswandi/chequeflow/internal/pkg/instrument"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	pgmodule "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

func newTestDB(t *testing.T) *DB {
	t.Helper()

	if testing.Short() {
		t.Skip("skipping postgres container test in short mode")
	}
	testcontainers.SkipIfProviderIsNotHealthy(t)

	ctx := context.Background()
	container, err := pgmodule.Run(ctx,
		"postgres:16-alpine",
		pgmodule.WithDatabase("chequeflow_test"),
		pgmodule.WithUsername("test"),
		pgmodule.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	require.NoError(t, err)
	t.Cleanup(func() {
		if termErr := container.Terminate(ctx); termErr != nil {
			t.Logf("terminate container: %v", termErr)
		}
	})

	connStr, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	pool, err := pgxpool.New(ctx, connStr)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	d := NewDB(pool, instrument.NewNoop())
	require.NoError(t, d.Migrate(ctx))
	// a second run is a no-op
	require.NoError(t, d.Migrate(ctx))

	return d
}

func TestDB_GetCheque(t *testing.T) {
	d := newTestDB(t)
	ctx := context.Background()

	_, err := d.conn.Exec(ctx, `
		INSERT INTO cheques (ref, number, holder_name, payee_name, mobile, amount_minor, currency, issue_date, image_bucket, front_image_key)
		VALUES ('CHQ-0001', '000123', 'Asha Rao', 'Northwind Traders', '+919876547890', 1250000, 'INR', '2026-02-27', 'cheques', 'CHQ-0001/front.png')`)
	require.NoError(t, err)

	c, err := d.GetCheque(ctx, "CHQ-0001")
	require.NoError(t, err)
	assert.Equal(t, "000123", c.Number)
	assert.Equal(t, "Asha Rao", c.HolderName)
	assert.Equal(t, int64(1250000), c.AmountMinor)
	assert.Equal(t, "INR", c.Currency)
	assert.Equal(t, "2026-02-27", c.IssueDate.Format(time.DateOnly))
	assert.Equal(t, "CHQ-0001/front.png", c.FrontImageKey)
	assert.Empty(t, c.BackImageKey)

	_, err = d.GetCheque(ctx, "CHQ-404")
	assert.ErrorIs(t, err, goerror.ErrNotFound)
}

func TestDB_RecordFinal(t *testing.T) {
	d := newTestDB(t)
	ctx := context.Background()

	rec := entity.DecisionRecord{
		WorkflowID: "wf-1",
		ChequeRef:  "CHQ-0001",
		Decision:   entity.DecisionApproved,
		DecidedAt:  time.Date(2026, 3, 1, 10, 4, 0, 0, time.UTC),
	}
	require.NoError(t, d.RecordFinal(ctx, rec))

	again := rec
	again.Decision = entity.DecisionExpired
	assert.ErrorIs(t, d.RecordFinal(ctx, again), entity.ErrDecisionAlreadyRecorded)

	got, err := d.GetDecision(ctx, "wf-1")
	require.NoError(t, err)
	assert.Equal(t, entity.DecisionApproved, got.Decision)
	assert.True(t, rec.DecidedAt.Equal(got.DecidedAt))

	_, err = d.GetDecision(ctx, "wf-404")
	assert.ErrorIs(t, err, goerror.ErrNotFound)
}
