package wrapper

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/afigjabbarli-tech/BuyBuddy.Marketplace.Backend/entity"
	"github.com/afigjabbarli-tech/BuyBuddy.Marketplace.Backend/observability/logger"
	"github.com/afigjabbarli-tech/BuyBuddy.Marketplace.Backend/pagination"
	"github.com/afigjabbarli-tech/BuyBuddy.Marketplace.Backend/repogen"
	"github.com/code19m/errx"
)

// LoggerReadWrapper logs every read call: an entry when it starts, a warning
// when nothing is found, a completion entry with the result size, and an error
// entry with caller and stack context on failure.
type LoggerReadWrapper[E entity.Entity[K, T, S], K entity.Key, T entity.Timestamp[T], S entity.Status, F any] struct {
	logger logger.Logger
	next   repogen.ReadRepo[E, K, T, S, F]
}

// NewLoggerReadWrapper returns a repogen.ReadWrapFunc that logs through l.
func NewLoggerReadWrapper[E entity.Entity[K, T, S], K entity.Key, T entity.Timestamp[T], S entity.Status, F any](
	l logger.Logger,
) repogen.ReadWrapFunc[E, K, T, S, F] {
	return func(next repogen.ReadRepo[E, K, T, S, F]) repogen.ReadRepo[E, K, T, S, F] {
		var zero E
		return &LoggerReadWrapper[E, K, T, S, F]{
			logger: l.Named("repogen.read").With("entity_name", entity.NameOf(zero)),
			next:   next,
		}
	}
}

func (w *LoggerReadWrapper[E, K, T, S, F]) GetByUid(ctx context.Context, uid K, opts ...repogen.ReadOption) (E, error) {
	log := w.start(ctx, "GetByUid", "uid", fmt.Sprint(uid))
	start := time.Now()

	e, err := w.next.GetByUid(ctx, uid, opts...)
	if err != nil {
		logFailure(log, err)
		return e, err
	}

	log = log.With("execution_time", time.Since(start).String())
	if entity.IsNil(e) {
		log.Warn("no entity found")
		return e, nil
	}
	log.With("result", "found").Info("finished")
	return e, nil
}

func (w *LoggerReadWrapper[E, K, T, S, F]) GetAll(ctx context.Context, opts ...repogen.ReadOption) ([]E, error) {
	log := w.start(ctx, "GetAll")
	start := time.Now()

	es, err := w.next.GetAll(ctx, opts...)
	return es, finishList(log, start, len(es), err)
}

func (w *LoggerReadWrapper[E, K, T, S, F]) GetByCondition(ctx context.Context, filters F, opts ...repogen.ReadOption) (E, error) {
	log := w.start(ctx, "GetByCondition", "filters", filters)
	start := time.Now()

	e, err := w.next.GetByCondition(ctx, filters, opts...)
	if err != nil {
		logFailure(log, err)
		return e, err
	}

	log = log.With("execution_time", time.Since(start).String())
	if entity.IsNil(e) {
		log.Warn("no entity matches the condition")
		return e, nil
	}
	log.With("result", "found", "uid", fmt.Sprint(e.PrimaryKey())).Info("finished")
	return e, nil
}

func (w *LoggerReadWrapper[E, K, T, S, F]) GetWhere(ctx context.Context, filters F, opts ...repogen.ReadOption) ([]E, error) {
	log := w.start(ctx, "GetWhere", "filters", filters)
	start := time.Now()

	es, err := w.next.GetWhere(ctx, filters, opts...)
	return es, finishList(log, start, len(es), err)
}

func (w *LoggerReadWrapper[E, K, T, S, F]) Count(ctx context.Context, opts ...repogen.ReadOption) (int, error) {
	log := w.start(ctx, "Count")
	start := time.Now()

	n, err := w.next.Count(ctx, opts...)
	return n, finishList(log, start, n, err)
}

func (w *LoggerReadWrapper[E, K, T, S, F]) CountWhere(ctx context.Context, filters F, opts ...repogen.ReadOption) (int, error) {
	log := w.start(ctx, "CountWhere", "filters", filters)
	start := time.Now()

	n, err := w.next.CountWhere(ctx, filters, opts...)
	return n, finishList(log, start, n, err)
}

func (w *LoggerReadWrapper[E, K, T, S, F]) Exist(ctx context.Context, filters F, opts ...repogen.ReadOption) (bool, error) {
	log := w.start(ctx, "Exist", "filters", filters)
	start := time.Now()

	ok, err := w.next.Exist(ctx, filters, opts...)
	if err != nil {
		logFailure(log, err)
		return ok, err
	}

	log.With("execution_time", time.Since(start).String(), "result", ok).Info("finished")
	return ok, nil
}

func (w *LoggerReadWrapper[E, K, T, S, F]) ListPage(
	ctx context.Context,
	filters F,
	page pagination.Request,
	opts ...repogen.ReadOption,
) (pagination.Response[E], error) {
	log := w.start(ctx, "ListPage", "filters", filters, "page_number", page.PageNumber, "page_size", page.PageSize)
	start := time.Now()

	resp, err := w.next.ListPage(ctx, filters, page, opts...)
	if err != nil {
		logFailure(log, err)
		return resp, err
	}

	log = log.With("execution_time", time.Since(start).String(), "total_count", resp.TotalCount)
	if len(resp.PageContent) == 0 {
		log.Warn("page is empty")
		return resp, nil
	}
	log.With("count", len(resp.PageContent)).Info("finished")
	return resp, nil
}

func (w *LoggerReadWrapper[E, K, T, S, F]) start(ctx context.Context, operation string, kv ...any) logger.Logger {
	log := w.logger.WithContext(ctx).With("operation", operation).With(kv...)
	log.Info("started")
	return log
}

// LoggerWriteWrapper logs every staging call and the states that did not
// reach the target.
type LoggerWriteWrapper[E entity.Entity[K, T, S], K entity.Key, T entity.Timestamp[T], S entity.Status] struct {
	logger logger.Logger
	next   repogen.WriteRepo[E, K, T, S]
}

// NewLoggerWriteWrapper returns a repogen.WriteWrapFunc that logs through l.
func NewLoggerWriteWrapper[E entity.Entity[K, T, S], K entity.Key, T entity.Timestamp[T], S entity.Status](
	l logger.Logger,
) repogen.WriteWrapFunc[E, K, T, S] {
	return func(next repogen.WriteRepo[E, K, T, S]) repogen.WriteRepo[E, K, T, S] {
		var zero E
		return &LoggerWriteWrapper[E, K, T, S]{
			logger: l.Named("repogen.write").With("entity_name", entity.NameOf(zero)),
			next:   next,
		}
	}
}

func (w *LoggerWriteWrapper[E, K, T, S]) Add(ctx context.Context, e E) (bool, E, error) {
	return logOne(ctx, w.logger, "Add", e, w.next.Add)
}

func (w *LoggerWriteWrapper[E, K, T, S]) AddRange(ctx context.Context, es []E) (bool, []E, error) {
	return logRange(ctx, w.logger, "AddRange", es, w.next.AddRange)
}

func (w *LoggerWriteWrapper[E, K, T, S]) Update(ctx context.Context, e E) (bool, E, error) {
	return logOne(ctx, w.logger, "Update", e, w.next.Update)
}

func (w *LoggerWriteWrapper[E, K, T, S]) UpdateRange(ctx context.Context, es []E) (bool, []E, error) {
	return logRange(ctx, w.logger, "UpdateRange", es, w.next.UpdateRange)
}

func (w *LoggerWriteWrapper[E, K, T, S]) Remove(ctx context.Context, e E) (bool, E, error) {
	return logOne(ctx, w.logger, "Remove", e, w.next.Remove)
}

func (w *LoggerWriteWrapper[E, K, T, S]) RemoveRange(ctx context.Context, es []E) (bool, []E, error) {
	return logRange(ctx, w.logger, "RemoveRange", es, w.next.RemoveRange)
}

func (w *LoggerWriteWrapper[E, K, T, S]) SoftRemove(ctx context.Context, e E) (bool, E, error) {
	return logOne(ctx, w.logger, "SoftRemove", e, w.next.SoftRemove)
}

func logOne[E interface{ EntityKey() any }](
	ctx context.Context,
	l logger.Logger,
	operation string,
	e E,
	next func(context.Context, E) (bool, E, error),
) (bool, E, error) {
	log := l.WithContext(ctx).With("operation", operation)
	if entity.IsNil(e) {
		log.Warn("entity is nil")
		return next(ctx, e)
	}

	log = log.With("uid", fmt.Sprint(e.EntityKey()))
	log.Info("started")

	ok, out, err := next(ctx, e)
	if err != nil {
		logFailure(log, err)
		return ok, out, err
	}

	if !ok {
		log.Warn("entity did not reach the target state")
		return ok, out, nil
	}
	log.Info("staged")
	return ok, out, nil
}

func logRange[E any](
	ctx context.Context,
	l logger.Logger,
	operation string,
	es []E,
	next func(context.Context, []E) (bool, []E, error),
) (bool, []E, error) {
	log := l.WithContext(ctx).With("operation", operation, "count", len(es))
	if len(es) == 0 {
		log.Warn("no entities given")
		return next(ctx, es)
	}
	log.Info("started")

	ok, out, err := next(ctx, es)
	if err != nil {
		logFailure(log, err)
		return ok, out, err
	}

	if !ok {
		log.Warn("not every entity reached the target state")
		return ok, out, nil
	}
	log.Info("staged")
	return ok, out, nil
}

func finishList(log logger.Logger, start time.Time, n int, err error) error {
	if err != nil {
		logFailure(log, err)
		return err
	}

	log = log.With("execution_time", time.Since(start).String())
	if n == 0 {
		log.Warn("no entities found")
		return nil
	}
	log.With("count", n).Info("finished")
	return nil
}

// logFailure writes err with the location of the repository caller. An errx
// error carries the trace recorded where it was raised; any other error gets
// the stack of the failing call.
func logFailure(log logger.Logger, err error) {
	c := caller()
	trace := stackTrace()
	var e errx.ErrorX
	if errors.As(err, &e) && e.Trace() != "" {
		trace = e.Trace()
	}
	log.With(
		"caller_method", c.method,
		"caller_file", c.file,
		"caller_line", c.line,
		"stack_trace", trace,
	).Errorx(err)
}
