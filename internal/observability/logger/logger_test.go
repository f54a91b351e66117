package logger

import (
	"context"
	"testing"

	obscontext "github.com/smallbiznis/rentaldocs/internal/observability/context"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestWithContextCarriesCorrelationFields(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)

	traceID, err := trace.TraceIDFromHex("4bf92f3577b34da6a3ce929d0e0e4736")
	require.NoError(t, err)
	spanID, err := trace.SpanIDFromHex("00f067aa0ba902b7")
	require.NoError(t, err)
	ctx := trace.ContextWithSpanContext(context.Background(), trace.NewSpanContext(trace.SpanContextConfig{
		TraceID: traceID,
		SpanID:  spanID,
	}))
	ctx = obscontext.WithRequestID(ctx, "req-1")
	ctx = obscontext.WithPreviewGeneration(ctx, "01J0000000000000000000000")

	WithContext(ctx, zap.New(core)).Info("preview rendered")

	require.Equal(t, 1, logs.Len())
	fields := logs.All()[0].ContextMap()
	assert.Equal(t, "req-1", fields["request_id"])
	assert.Equal(t, "4bf92f3577b34da6a3ce929d0e0e4736", fields["trace_id"])
	assert.Equal(t, "00f067aa0ba902b7", fields["span_id"])
	assert.Equal(t, "01J0000000000000000000000", fields["preview_generation"])
}

func TestWithContextWithoutSpan(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)

	WithContext(obscontext.WithRequestID(context.Background(), " req-2 "), zap.New(core)).Info("ok")

	fields := logs.All()[0].ContextMap()
	assert.Equal(t, "req-2", fields["request_id"])
	assert.Equal(t, "", fields["trace_id"])
	assert.NotContains(t, fields, "preview_generation")
	assert.Nil(t, WithRequest(nil, "req", "", ""))
}
