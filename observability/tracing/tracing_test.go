package tracing_test

import (
	"context"
	"testing"

	"github.com/afigjabbarli-tech/BuyBuddy.Marketplace.Backend/observability/tracing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

func TestTraceID(t *testing.T) {
	tp := sdktrace.NewTracerProvider()
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })

	ctx, span := tp.Tracer("test").Start(context.Background(), "op")
	defer span.End()

	assert.Equal(t, span.SpanContext().TraceID().String(), tracing.TraceID(ctx))
}

func TestTraceID_WithoutSpan(t *testing.T) {
	first := tracing.TraceID(context.Background())
	second := tracing.TraceID(context.Background())

	assert.Len(t, first, 32)
	assert.Regexp(t, "^[0-9a-f]{32}$", first)
	assert.NotEqual(t, first, second)
}

func TestInitGlobalTracer_Disabled(t *testing.T) {
	shutdown, err := tracing.InitGlobalTracer(tracing.Config{})
	require.NoError(t, err)
	require.NoError(t, shutdown())

	_, span := otel.Tracer("test").Start(context.Background(), "op")
	defer span.End()
	assert.False(t, span.SpanContext().IsValid())
}
