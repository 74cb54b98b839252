package observability

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLogger_AddsCorrelationID(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Configure("debug", &buf))

	ctx := WithCorrelationID(context.Background(), "corr-1")
	Logger(ctx).WithField("chat_id", 42).Info("handled")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	require.Equal(t, "corr-1", line["correlation_id"])
	require.Equal(t, "handled", line["msg"])
	require.EqualValues(t, 42, line["chat_id"])
}

func TestLogger_WithoutCorrelationID(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Configure("", &buf))
	Logger(context.Background()).Info("plain")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	require.NotContains(t, line, "correlation_id")
}

func TestConfigure_InvalidLevel(t *testing.T) {
	require.Error(t, Configure("loud", nil))
}

func TestNewCorrelationID_Unique(t *testing.T) {
	require.NotEqual(t, NewCorrelationID(), NewCorrelationID())
	require.Empty(t, CorrelationID(context.Background()))
}
