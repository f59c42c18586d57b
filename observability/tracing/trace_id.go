package tracing

import (
	"context"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"
)

// TraceID returns the trace ID of the span in ctx. Without a valid span, such as
// when tracing is disabled, a random ID in the same hex format is returned so
// log lines of one run can still be correlated.
func TraceID(ctx context.Context) string {
	if id := trace.SpanContextFromContext(ctx).TraceID(); id.IsValid() {
		return id.String()
	}
	return trace.TraceID(uuid.New()).String()
}
