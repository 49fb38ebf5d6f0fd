package idempotency

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcredis "github.com/testcontainers/testcontainers-go/modules/redis"
)

func newTestRedis(t *testing.T) *redis.Client {
	t.Helper()

	if testing.Short() {
		t.Skip("skipping redis container test in short mode")
	}
	testcontainers.SkipIfProviderIsNotHealthy(t)

	ctx := context.Background()
	container, err := tcredis.Run(ctx, "redis:7-alpine")
	require.NoError(t, err)
	t.Cleanup(func() {
		if termErr := container.Terminate(ctx); termErr != nil {
			t.Logf("terminate container: %v", termErr)
		}
	})

	uri, err := container.ConnectionString(ctx)
	require.NoError(t, err)
	opt, err := redis.ParseURL(uri)
	require.NoError(t, err)

	rdb := redis.NewClient(opt)
	t.Cleanup(func() { _ = rdb.Close() })
	return rdb
}

func TestParseState(t *testing.T) {
	tests := []struct {
		in      string
		want    State
		wantErr error
	}{
		{in: "in_progress", want: StateInProgress},
		{in: "completed", want: StateCompleted},
		{in: "failed", want: StateFailed},
		{in: "none", want: StateError, wantErr: ErrInvalidState},
		{in: "garbage", want: StateError, wantErr: ErrInvalidState},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := parseState(tt.in)
			assert.Equal(t, tt.want, got)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestStateTracker_ExecEmptyKey(t *testing.T) {
	s := New(nil)
	err := s.Exec(context.Background(), "", func(context.Context) error { return nil })
	assert.ErrorIs(t, err, ErrEmptyKey)
}

func TestStateTracker_Exec(t *testing.T) {
	rdb := newTestRedis(t)
	ctx := context.Background()
	s := New(rdb, WithPrefix("test:"))

	calls := 0
	fn := func(context.Context) error {
		calls++
		return nil
	}

	require.NoError(t, s.Exec(ctx, "k1", fn))
	assert.ErrorIs(t, s.Exec(ctx, "k1", fn), ErrAlreadyCompleted)
	assert.Equal(t, 1, calls)

	v, err := rdb.Get(ctx, "test:k1").Result()
	require.NoError(t, err)
	assert.Equal(t, "completed", v)
}

func TestStateTracker_ExecFailure(t *testing.T) {
	rdb := newTestRedis(t)
	ctx := context.Background()
	s := New(rdb)

	boom := errors.New("boom")
	retryable := errors.New("retryable")

	err := s.Exec(ctx, "f1", func(context.Context) error { return boom })
	assert.ErrorIs(t, err, boom)
	assert.ErrorIs(t, s.Exec(ctx, "f1", func(context.Context) error { return nil }), ErrAlreadyFailed)

	failOn := WithFailOn(func(err error) bool { return !errors.Is(err, retryable) })
	err = s.Exec(ctx, "f2", func(context.Context) error { return retryable }, failOn)
	assert.ErrorIs(t, err, retryable)
	assert.NoError(t, s.Exec(ctx, "f2", func(context.Context) error { return nil }, failOn))
}

func TestStateTracker_ExecInProgress(t *testing.T) {
	rdb := newTestRedis(t)
	ctx := context.Background()
	s := New(rdb)

	state, err := s.Acquire(ctx, "p1", time.Minute)
	require.NoError(t, err)
	assert.Equal(t, StateNone, state)

	assert.ErrorIs(t, s.Exec(ctx, "p1", func(context.Context) error { return nil }), ErrAlreadyInProgress)

	require.NoError(t, s.Release(ctx, "p1"))
	assert.NoError(t, s.Exec(ctx, "p1", func(context.Context) error { return nil }))
}
