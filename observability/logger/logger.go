// Package logger provides the structured logger used across the module.
package logger

import (
	"context"
	"errors"

	"github.com/afigjabbarli-tech/BuyBuddy.Marketplace.Backend/meta"
	"github.com/code19m/errx"
	"go.uber.org/zap"
)

// Logger is a leveled structured logger.
type Logger interface {
	Debug(msg any)
	Info(msg any)
	Warn(msg any)
	Error(msg any)

	// Warnx and Errorx log err.Error() and, for errx errors, its code, type,
	// trace, fields and details as separate keys.
	Warnx(err error)
	Errorx(err error)
	// Fatalx is Errorx followed by os.Exit(1).
	Fatalx(err error)

	// With returns a child logger that adds keysAndValues to every entry.
	With(keysAndValues ...any) Logger
	// WithContext returns a child logger carrying the request metadata found in ctx.
	WithContext(ctx context.Context) Logger
	// Named appends name to the logger name.
	Named(name string) Logger

	// Sync flushes buffered entries.
	Sync() error
}

type logger struct {
	s *zap.SugaredLogger
}

// New builds a Logger from cfg.
func New(cfg Config) (Logger, error) {
	return newLogger(cfg)
}

// NewFromZap wraps an existing zap logger, e.g. one built over
// zaptest/observer in tests.
func NewFromZap(z *zap.Logger) Logger {
	return &logger{s: z.Sugar()}
}

func newLogger(cfg Config) (Logger, error) {
	if cfg.Disable {
		return NewFromZap(zap.NewNop()), nil
	}

	zapConfig, err := cfg.zapConfig()
	if err != nil {
		return nil, err
	}

	z, err := zapConfig.Build()
	if err != nil {
		return nil, errx.Wrap(err)
	}
	return NewFromZap(z), nil
}

func (l *logger) Debug(msg any) { l.s.Debug(msg) }
func (l *logger) Info(msg any)  { l.s.Info(msg) }
func (l *logger) Warn(msg any)  { l.s.Warn(msg) }
func (l *logger) Error(msg any) { l.s.Error(msg) }

func (l *logger) Warnx(err error)  { l.s.With(errxFields(err)...).Warn(err.Error()) }
func (l *logger) Errorx(err error) { l.s.With(errxFields(err)...).Error(err.Error()) }
func (l *logger) Fatalx(err error) { l.s.With(errxFields(err)...).Fatal(err.Error()) }

func (l *logger) With(keysAndValues ...any) Logger {
	if len(keysAndValues) == 0 {
		return l
	}
	return &logger{s: l.s.With(keysAndValues...)}
}

func (l *logger) WithContext(ctx context.Context) Logger {
	if ctx == nil {
		return l
	}

	data := meta.ExtractMetaFromContext(ctx)
	fields := make([]any, 0, len(data)*2) //nolint:mnd // key and value
	for k, v := range data {
		fields = append(fields, string(k), v)
	}
	return l.With(fields...)
}

func (l *logger) Named(name string) Logger {
	return &logger{s: l.s.Named(name)}
}

func (l *logger) Sync() error {
	return l.s.Sync()
}

func errxFields(err error) []any {
	var e errx.ErrorX
	if !errors.As(err, &e) {
		return nil
	}
	return []any{
		"error_code", e.Code(),
		"error_type", e.Type().String(),
		"error_trace", e.Trace(),
		"error_fields", e.Fields(),
		"error_details", e.Details(),
	}
}
