package goroutine

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManager_Go(t *testing.T) {
	m := NewManager(4)

	var ran atomic.Int32
	for range 3 {
		ok := m.Go(context.Background(), "count", func(context.Context) error {
			ran.Add(1)
			return nil
		})
		require.True(t, ok)
	}

	require.NoError(t, m.Wait())
	assert.Equal(t, int32(3), ran.Load())
	assert.Zero(t, m.Failed())
}

func TestManager_Errors(t *testing.T) {
	m := NewManager(0)
	boom := errors.New("boom")

	m.Go(context.Background(), "fail", func(context.Context) error { return boom })
	m.Go(context.Background(), "panic", func(context.Context) error { panic("oops") })

	err := m.Wait()
	assert.ErrorIs(t, err, boom)
	assert.ErrorIs(t, err, ErrPanic)
	assert.Equal(t, 2, m.Failed())
}

func TestManager_Limit(t *testing.T) {
	m := NewManager(1)
	release := make(chan struct{})
	started := make(chan struct{})

	require.True(t, m.Go(context.Background(), "block", func(context.Context) error {
		close(started)
		<-release
		return nil
	}))
	<-started

	assert.False(t, m.Go(context.Background(), "extra", func(context.Context) error { return nil }))

	close(release)
	require.NoError(t, m.Wait())
}

func TestManager_ClosedAndCanceled(t *testing.T) {
	m := NewManager(2)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	called := false
	require.True(t, m.Go(ctx, "canceled", func(context.Context) error {
		called = true
		return nil
	}))
	require.NoError(t, m.Wait())
	assert.False(t, called)

	assert.False(t, m.Go(context.Background(), "late", func(context.Context) error { return nil }))

	var nilManager *Manager
	assert.False(t, nilManager.Go(context.Background(), "nil", nil))
	assert.NoError(t, nilManager.Wait())
}
