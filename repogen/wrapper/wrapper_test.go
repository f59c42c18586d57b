package wrapper_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/afigjabbarli-tech/BuyBuddy.Marketplace.Backend/domain"
	"github.com/afigjabbarli-tech/BuyBuddy.Marketplace.Backend/observability/logger"
	"github.com/afigjabbarli-tech/BuyBuddy.Marketplace.Backend/pagination"
	"github.com/afigjabbarli-tech/BuyBuddy.Marketplace.Backend/repogen"
	"github.com/afigjabbarli-tech/BuyBuddy.Marketplace.Backend/repogen/wrapper"
	"github.com/code19m/errx"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type (
	readRepo  = repogen.ReadRepo[*domain.Brand, uuid.UUID, time.Time, domain.BrandStatus, domain.BrandFilters]
	writeRepo = repogen.WriteRepo[*domain.Brand, uuid.UUID, time.Time, domain.BrandStatus]
)

// fakeRepo serves a fixed set of brands and fails every call when err is set.
type fakeRepo struct {
	brands []*domain.Brand
	err    error
}

func (f *fakeRepo) GetByUid(_ context.Context, uid uuid.UUID, _ ...repogen.ReadOption) (*domain.Brand, error) {
	if f.err != nil {
		return nil, f.err
	}
	for _, b := range f.brands {
		if b.Uid == uid {
			return b, nil
		}
	}
	return nil, nil
}

func (f *fakeRepo) GetAll(_ context.Context, _ ...repogen.ReadOption) ([]*domain.Brand, error) {
	if f.err != nil {
		return []*domain.Brand{}, f.err
	}
	return f.brands, nil
}

func (f *fakeRepo) GetByCondition(ctx context.Context, _ domain.BrandFilters, opts ...repogen.ReadOption) (*domain.Brand, error) {
	all, err := f.GetAll(ctx, opts...)
	if err != nil || len(all) == 0 {
		return nil, err
	}
	return all[0], nil
}

func (f *fakeRepo) GetWhere(ctx context.Context, _ domain.BrandFilters, opts ...repogen.ReadOption) ([]*domain.Brand, error) {
	return f.GetAll(ctx, opts...)
}

func (f *fakeRepo) Count(ctx context.Context, opts ...repogen.ReadOption) (int, error) {
	all, err := f.GetAll(ctx, opts...)
	return len(all), err
}

func (f *fakeRepo) CountWhere(ctx context.Context, _ domain.BrandFilters, opts ...repogen.ReadOption) (int, error) {
	return f.Count(ctx, opts...)
}

func (f *fakeRepo) Exist(ctx context.Context, _ domain.BrandFilters, opts ...repogen.ReadOption) (bool, error) {
	n, err := f.Count(ctx, opts...)
	return n > 0, err
}

func (f *fakeRepo) ListPage(
	ctx context.Context,
	_ domain.BrandFilters,
	page pagination.Request,
	opts ...repogen.ReadOption,
) (pagination.Response[*domain.Brand], error) {
	page.Normalize()
	all, err := f.GetAll(ctx, opts...)
	return pagination.NewResponse(all, int64(len(all)), page), err
}

func (f *fakeRepo) Add(_ context.Context, b *domain.Brand) (bool, *domain.Brand, error) {
	if f.err != nil {
		return false, b, f.err
	}
	return b != nil, b, nil
}

func (f *fakeRepo) AddRange(_ context.Context, bs []*domain.Brand) (bool, []*domain.Brand, error) {
	if f.err != nil {
		return false, bs, f.err
	}
	return len(bs) > 0, bs, nil
}

func (f *fakeRepo) Update(ctx context.Context, b *domain.Brand) (bool, *domain.Brand, error) {
	return f.Add(ctx, b)
}

func (f *fakeRepo) UpdateRange(ctx context.Context, bs []*domain.Brand) (bool, []*domain.Brand, error) {
	return f.AddRange(ctx, bs)
}

func (f *fakeRepo) Remove(ctx context.Context, b *domain.Brand) (bool, *domain.Brand, error) {
	return f.Add(ctx, b)
}

func (f *fakeRepo) RemoveRange(ctx context.Context, bs []*domain.Brand) (bool, []*domain.Brand, error) {
	return f.AddRange(ctx, bs)
}

func (f *fakeRepo) SoftRemove(_ context.Context, b *domain.Brand) (bool, *domain.Brand, error) {
	return false, b, f.err
}

func newObservedLogger() (logger.Logger, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.DebugLevel)
	return logger.NewFromZap(zap.New(core)), logs
}

func wrapRead(repo readRepo, l logger.Logger) readRepo {
	return wrapper.ChainRead(repo,
		wrapper.NewTracingReadWrapper[*domain.Brand, uuid.UUID, time.Time, domain.BrandStatus, domain.BrandFilters](),
		wrapper.NewLoggerReadWrapper[*domain.Brand, uuid.UUID, time.Time, domain.BrandStatus, domain.BrandFilters](l),
	)
}

func wrapWrite(repo writeRepo, l logger.Logger) writeRepo {
	return wrapper.ChainWrite(repo,
		wrapper.NewTracingWriteWrapper[*domain.Brand, uuid.UUID, time.Time, domain.BrandStatus](),
		wrapper.NewLoggerWriteWrapper[*domain.Brand, uuid.UUID, time.Time, domain.BrandStatus](l),
	)
}

func TestLoggerReadWrapper_Found(t *testing.T) {
	l, logs := newObservedLogger()
	b := domain.NewBrand("Alpha LLC", "Alpha")
	repo := wrapRead(&fakeRepo{brands: []*domain.Brand{b}}, l)

	got, err := repo.GetByUid(context.Background(), b.Uid)
	require.NoError(t, err)
	assert.Same(t, b, got)

	entries := logs.All()
	require.Len(t, entries, 2)

	assert.Equal(t, "started", entries[0].Message)
	assert.Equal(t, "repogen.read", entries[0].LoggerName)
	fields := entries[0].ContextMap()
	assert.Equal(t, "Brand", fields["entity_name"])
	assert.Equal(t, "GetByUid", fields["operation"])
	assert.Equal(t, b.Uid.String(), fields["uid"])

	assert.Equal(t, "finished", entries[1].Message)
	assert.Equal(t, zapcore.InfoLevel, entries[1].Level)
	assert.Contains(t, entries[1].ContextMap(), "execution_time")
}

func TestLoggerReadWrapper_Empty(t *testing.T) {
	ctx := context.Background()
	l, logs := newObservedLogger()
	repo := wrapRead(&fakeRepo{}, l)

	tests := []struct {
		name string
		call func() error
		want string
	}{
		{
			name: "get by uid",
			call: func() error { _, err := repo.GetByUid(ctx, uuid.New()); return err },
			want: "no entity found",
		},
		{
			name: "get by condition",
			call: func() error { _, err := repo.GetByCondition(ctx, domain.BrandFilters{}); return err },
			want: "no entity matches the condition",
		},
		{
			name: "get where",
			call: func() error { _, err := repo.GetWhere(ctx, domain.BrandFilters{}); return err },
			want: "no entities found",
		},
		{
			name: "list page",
			call: func() error { _, err := repo.ListPage(ctx, domain.BrandFilters{}, pagination.Request{}); return err },
			want: "page is empty",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_ = logs.TakeAll()

			require.NoError(t, tc.call())

			warns := logs.FilterLevelExact(zapcore.WarnLevel).All()
			require.Len(t, warns, 1)
			assert.Equal(t, tc.want, warns[0].Message)
		})
	}
}

func TestLoggerReadWrapper_Failure(t *testing.T) {
	tests := []struct {
		name      string
		cause     error
		wantCode  any
		wantTrace func(t *testing.T, trace string, cause error)
	}{
		{
			name:     "errx error keeps its origin trace",
			cause:    errx.New("storage is down", errx.WithCode("STORAGE_DOWN")),
			wantCode: "STORAGE_DOWN",
			wantTrace: func(t *testing.T, trace string, cause error) {
				assert.Equal(t, errx.AsErrorX(cause).Trace(), trace)
				assert.Contains(t, trace, "wrapper_test.go")
				assert.NotContains(t, trace, "goroutine")
			},
		},
		{
			name:  "plain error gets the call stack",
			cause: errors.New("storage is down"),
			wantTrace: func(t *testing.T, trace string, _ error) {
				assert.Contains(t, trace, "goroutine")
				assert.Contains(t, trace, "logFailure")
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			l, logs := newObservedLogger()
			repo := wrapRead(&fakeRepo{err: tc.cause}, l)

			n, err := repo.Count(context.Background())
			assert.Zero(t, n)
			assert.Equal(t, tc.cause, err, "errors pass through unchanged")

			errs := logs.FilterLevelExact(zapcore.ErrorLevel).All()
			require.Len(t, errs, 1)

			fields := errs[0].ContextMap()
			assert.Equal(t, "Count", fields["operation"])
			assert.Equal(t, tc.wantCode, fields["error_code"])
			assert.Contains(t, fields["caller_method"], "TestLoggerReadWrapper_Failure")
			assert.Contains(t, fields["caller_file"], "wrapper_test.go")

			trace, ok := fields["stack_trace"].(string)
			require.True(t, ok)
			tc.wantTrace(t, trace, tc.cause)
		})
	}
}

func TestLoggerWriteWrapper(t *testing.T) {
	ctx := context.Background()
	l, logs := newObservedLogger()
	repo := wrapWrite(&fakeRepo{}, l)
	b := domain.NewBrand("Alpha LLC", "Alpha")

	ok, got, err := repo.Add(ctx, b)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Same(t, b, got)

	entries := logs.TakeAll()
	require.Len(t, entries, 2)
	assert.Equal(t, "repogen.write", entries[0].LoggerName)
	assert.Equal(t, b.Uid.String(), entries[0].ContextMap()["uid"])
	assert.Equal(t, "staged", entries[1].Message)

	ok, _, err = repo.Add(ctx, nil)
	require.NoError(t, err)
	assert.False(t, ok)
	entries = logs.TakeAll()
	require.Len(t, entries, 1)
	assert.Equal(t, "entity is nil", entries[0].Message)

	ok, _, err = repo.RemoveRange(ctx, nil)
	require.NoError(t, err)
	assert.False(t, ok)
	entries = logs.TakeAll()
	require.Len(t, entries, 1)
	assert.Equal(t, "no entities given", entries[0].Message)

	ok, _, err = repo.SoftRemove(ctx, b)
	require.NoError(t, err)
	assert.False(t, ok)
	warns := logs.FilterLevelExact(zapcore.WarnLevel).All()
	require.Len(t, warns, 1)
	assert.Equal(t, "entity did not reach the target state", warns[0].Message)
}

func TestTracingWrappers(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(provider)
	t.Cleanup(func() { otel.SetTracerProvider(prev) })

	ctx := context.Background()
	l := logger.NewFromZap(zap.NewNop())
	b := domain.NewBrand("Alpha LLC", "Alpha")

	read := wrapRead(&fakeRepo{brands: []*domain.Brand{b}}, l)
	_, err := read.GetAll(ctx)
	require.NoError(t, err)

	write := wrapWrite(&fakeRepo{err: assert.AnError}, l)
	_, _, err = write.Update(ctx, b)
	require.ErrorIs(t, err, assert.AnError)

	spans := recorder.Ended()
	require.Len(t, spans, 2)

	assert.Equal(t, "Brand.GetAll", spans[0].Name())
	assert.Equal(t, codes.Unset, spans[0].Status().Code)

	assert.Equal(t, "Brand.Update", spans[1].Name())
	assert.Equal(t, codes.Error, spans[1].Status().Code)
	require.NotEmpty(t, spans[1].Events(), "the error is recorded as an event")
}
