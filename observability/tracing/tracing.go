// Package tracing installs the process wide OpenTelemetry tracer provider.
package tracing

import (
	"context"
	"net"
	"strconv"
	"time"

	"github.com/afigjabbarli-tech/BuyBuddy.Marketplace.Backend/meta"
	"github.com/code19m/errx"
	"github.com/spf13/cast"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
	"go.opentelemetry.io/otel/trace/noop"
)

const shutdownTimeout = 5 * time.Second

// ShutdownFunc flushes pending spans and stops the provider.
type ShutdownFunc func() error

// InitGlobalTracer installs a tracer provider exporting over OTLP gRPC, or a
// no-op provider when cfg.Enable is false. The returned ShutdownFunc must be
// called before exit.
func InitGlobalTracer(cfg Config) (ShutdownFunc, error) {
	if !cfg.Enable {
		otel.SetTracerProvider(noop.NewTracerProvider())
		return func() error { return nil }, nil
	}

	exporter, err := otlptracegrpc.New(context.Background(),
		otlptracegrpc.WithInsecure(),
		otlptracegrpc.WithEndpoint(net.JoinHostPort(cfg.ExporterHost, strconv.Itoa(cfg.ExporterPort))),
		otlptracegrpc.WithReconnectionPeriod(reconnectionPeriod),
	)
	if err != nil {
		return nil, errx.Wrap(err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(cfg.SampleRate))),
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(newResource(cfg.Tags)),
	)

	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))
	otel.SetTracerProvider(tp)

	return func() error {
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := tp.ForceFlush(ctx); err != nil {
			return errx.Wrap(err)
		}
		return errx.Wrap(tp.Shutdown(ctx))
	}, nil
}

// newResource describes this process: the recorded service info plus tags.
func newResource(tags map[string]any) *resource.Resource {
	service := meta.Service()
	attrs := []attribute.KeyValue{
		semconv.ServiceNameKey.String(service.Name),
		semconv.ServiceVersionKey.String(service.Version),
	}
	for k, v := range tags {
		attrs = append(attrs, attribute.String(k, cast.ToString(v)))
	}
	return resource.NewWithAttributes(semconv.SchemaURL, attrs...)
}
