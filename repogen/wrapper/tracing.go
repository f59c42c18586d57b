package wrapper

import (
	"context"
	"fmt"

	"github.com/afigjabbarli-tech/BuyBuddy.Marketplace.Backend/entity"
	"github.com/afigjabbarli-tech/BuyBuddy.Marketplace.Backend/pagination"
	"github.com/afigjabbarli-tech/BuyBuddy.Marketplace.Backend/repogen"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	readTracerName  = "repogen/read"
	writeTracerName = "repogen/write"
)

// TracingReadWrapper starts an OpenTelemetry span for each read call.
// Spans are named "<Entity>.<Operation>" and record errors.
type TracingReadWrapper[E entity.Entity[K, T, S], K entity.Key, T entity.Timestamp[T], S entity.Status, F any] struct {
	tracer     trace.Tracer
	entityName string
	next       repogen.ReadRepo[E, K, T, S, F]
}

// NewTracingReadWrapper returns a repogen.ReadWrapFunc that traces every call.
func NewTracingReadWrapper[E entity.Entity[K, T, S], K entity.Key, T entity.Timestamp[T], S entity.Status, F any]() repogen.ReadWrapFunc[E, K, T, S, F] {
	return func(next repogen.ReadRepo[E, K, T, S, F]) repogen.ReadRepo[E, K, T, S, F] {
		var zero E
		return &TracingReadWrapper[E, K, T, S, F]{
			tracer:     otel.Tracer(readTracerName),
			entityName: entity.NameOf(zero),
			next:       next,
		}
	}
}

func (w *TracingReadWrapper[E, K, T, S, F]) GetByUid(ctx context.Context, uid K, opts ...repogen.ReadOption) (E, error) {
	ctx, span := startSpan(ctx, w.tracer, w.entityName, "GetByUid", attribute.String("uid", fmt.Sprint(uid)))
	defer span.End()

	e, err := w.next.GetByUid(ctx, uid, opts...)
	endSpan(span, err)
	return e, err
}

func (w *TracingReadWrapper[E, K, T, S, F]) GetAll(ctx context.Context, opts ...repogen.ReadOption) ([]E, error) {
	ctx, span := startSpan(ctx, w.tracer, w.entityName, "GetAll")
	defer span.End()

	es, err := w.next.GetAll(ctx, opts...)
	span.SetAttributes(attribute.Int("count", len(es)))
	endSpan(span, err)
	return es, err
}

func (w *TracingReadWrapper[E, K, T, S, F]) GetByCondition(ctx context.Context, filters F, opts ...repogen.ReadOption) (E, error) {
	ctx, span := startSpan(ctx, w.tracer, w.entityName, "GetByCondition")
	defer span.End()

	e, err := w.next.GetByCondition(ctx, filters, opts...)
	endSpan(span, err)
	return e, err
}

func (w *TracingReadWrapper[E, K, T, S, F]) GetWhere(ctx context.Context, filters F, opts ...repogen.ReadOption) ([]E, error) {
	ctx, span := startSpan(ctx, w.tracer, w.entityName, "GetWhere")
	defer span.End()

	es, err := w.next.GetWhere(ctx, filters, opts...)
	span.SetAttributes(attribute.Int("count", len(es)))
	endSpan(span, err)
	return es, err
}

func (w *TracingReadWrapper[E, K, T, S, F]) Count(ctx context.Context, opts ...repogen.ReadOption) (int, error) {
	ctx, span := startSpan(ctx, w.tracer, w.entityName, "Count")
	defer span.End()

	n, err := w.next.Count(ctx, opts...)
	endSpan(span, err)
	return n, err
}

func (w *TracingReadWrapper[E, K, T, S, F]) CountWhere(ctx context.Context, filters F, opts ...repogen.ReadOption) (int, error) {
	ctx, span := startSpan(ctx, w.tracer, w.entityName, "CountWhere")
	defer span.End()

	n, err := w.next.CountWhere(ctx, filters, opts...)
	endSpan(span, err)
	return n, err
}

func (w *TracingReadWrapper[E, K, T, S, F]) Exist(ctx context.Context, filters F, opts ...repogen.ReadOption) (bool, error) {
	ctx, span := startSpan(ctx, w.tracer, w.entityName, "Exist")
	defer span.End()

	ok, err := w.next.Exist(ctx, filters, opts...)
	endSpan(span, err)
	return ok, err
}

func (w *TracingReadWrapper[E, K, T, S, F]) ListPage(
	ctx context.Context,
	filters F,
	page pagination.Request,
	opts ...repogen.ReadOption,
) (pagination.Response[E], error) {
	ctx, span := startSpan(ctx, w.tracer, w.entityName, "ListPage",
		attribute.Int("page_number", page.PageNumber),
		attribute.Int("page_size", page.PageSize),
	)
	defer span.End()

	resp, err := w.next.ListPage(ctx, filters, page, opts...)
	span.SetAttributes(attribute.Int64("total_count", resp.TotalCount))
	endSpan(span, err)
	return resp, err
}

// TracingWriteWrapper starts an OpenTelemetry span for each staging call.
type TracingWriteWrapper[E entity.Entity[K, T, S], K entity.Key, T entity.Timestamp[T], S entity.Status] struct {
	tracer     trace.Tracer
	entityName string
	next       repogen.WriteRepo[E, K, T, S]
}

// NewTracingWriteWrapper returns a repogen.WriteWrapFunc that traces every call.
func NewTracingWriteWrapper[E entity.Entity[K, T, S], K entity.Key, T entity.Timestamp[T], S entity.Status]() repogen.WriteWrapFunc[E, K, T, S] {
	return func(next repogen.WriteRepo[E, K, T, S]) repogen.WriteRepo[E, K, T, S] {
		var zero E
		return &TracingWriteWrapper[E, K, T, S]{
			tracer:     otel.Tracer(writeTracerName),
			entityName: entity.NameOf(zero),
			next:       next,
		}
	}
}

func (w *TracingWriteWrapper[E, K, T, S]) Add(ctx context.Context, e E) (bool, E, error) {
	return traceOne(ctx, w.tracer, w.entityName, "Add", e, w.next.Add)
}

func (w *TracingWriteWrapper[E, K, T, S]) AddRange(ctx context.Context, es []E) (bool, []E, error) {
	return traceRange(ctx, w.tracer, w.entityName, "AddRange", es, w.next.AddRange)
}

func (w *TracingWriteWrapper[E, K, T, S]) Update(ctx context.Context, e E) (bool, E, error) {
	return traceOne(ctx, w.tracer, w.entityName, "Update", e, w.next.Update)
}

func (w *TracingWriteWrapper[E, K, T, S]) UpdateRange(ctx context.Context, es []E) (bool, []E, error) {
	return traceRange(ctx, w.tracer, w.entityName, "UpdateRange", es, w.next.UpdateRange)
}

func (w *TracingWriteWrapper[E, K, T, S]) Remove(ctx context.Context, e E) (bool, E, error) {
	return traceOne(ctx, w.tracer, w.entityName, "Remove", e, w.next.Remove)
}

func (w *TracingWriteWrapper[E, K, T, S]) RemoveRange(ctx context.Context, es []E) (bool, []E, error) {
	return traceRange(ctx, w.tracer, w.entityName, "RemoveRange", es, w.next.RemoveRange)
}

func (w *TracingWriteWrapper[E, K, T, S]) SoftRemove(ctx context.Context, e E) (bool, E, error) {
	return traceOne(ctx, w.tracer, w.entityName, "SoftRemove", e, w.next.SoftRemove)
}

func traceOne[E any](
	ctx context.Context,
	tracer trace.Tracer,
	entityName, operation string,
	e E,
	next func(context.Context, E) (bool, E, error),
) (bool, E, error) {
	ctx, span := startSpan(ctx, tracer, entityName, operation)
	defer span.End()

	ok, out, err := next(ctx, e)
	span.SetAttributes(attribute.Bool("succeeded", ok))
	endSpan(span, err)
	return ok, out, err
}

func traceRange[E any](
	ctx context.Context,
	tracer trace.Tracer,
	entityName, operation string,
	es []E,
	next func(context.Context, []E) (bool, []E, error),
) (bool, []E, error) {
	ctx, span := startSpan(ctx, tracer, entityName, operation, attribute.Int("count", len(es)))
	defer span.End()

	ok, out, err := next(ctx, es)
	span.SetAttributes(attribute.Bool("succeeded", ok))
	endSpan(span, err)
	return ok, out, err
}

func startSpan(
	ctx context.Context,
	tracer trace.Tracer,
	entityName, operation string,
	attrs ...attribute.KeyValue,
) (context.Context, trace.Span) {
	attrs = append(attrs,
		attribute.String("entity_name", entityName),
		attribute.String("operation", operation),
	)
	return tracer.Start(ctx, entityName+"."+operation, trace.WithAttributes(attrs...))
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
}
