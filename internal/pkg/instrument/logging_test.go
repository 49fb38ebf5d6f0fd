package instrument

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandler_MasksAndEnriches(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(newHandler(&buf, "chequeflow", "debug", nil, DefaultMaskFields))

	ctx := SetCorrelationID(context.Background(), "cid-1")
	logger.InfoContext(ctx, "otp dispatched",
		"workflow_id", "wf-1",
		"code", "482913",
		"payload", map[string]any{"destination": "+919876547890", "state": "awaiting_otp"},
	)

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))

	assert.Equal(t, "cid-1", line["_cID"])
	assert.Equal(t, "chequeflow", line["service"])
	assert.Equal(t, "wf-1", line["workflow_id"])
	assert.Equal(t, "***", line["code"])
	assert.Equal(t, map[string]any{"destination": "***", "state": "awaiting_otp"}, line["payload"])
}

func TestHandler_Level(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(newHandler(&buf, "svc", "warn", nil, nil))

	logger.Info("hidden")
	assert.Zero(t, buf.Len())

	logger.Warn("shown")
	assert.NotZero(t, buf.Len())
}

func TestDetachedContext(t *testing.T) {
	parent, cancel := context.WithCancel(SetCorrelationID(context.Background(), "abc"))
	cancel()

	ctx := DetachedContext(parent)
	assert.NoError(t, ctx.Err())
	assert.Equal(t, "abc", GetCorrelationID(ctx))
}

func TestNewNoop(t *testing.T) {
	ins := NewNoop()

	_, span := ins.Tracer("t").Start(context.Background(), "op")
	span.End()

	c, err := ins.Meter("m").Int64Counter("c")
	require.NoError(t, err)
	c.Add(context.Background(), 1)

	assert.NoError(t, ins.Shutdown(context.Background()))
}
