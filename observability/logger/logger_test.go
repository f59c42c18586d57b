package logger_test

import (
	"context"
	"errors"
	"testing"

	"github.com/afigjabbarli-tech/BuyBuddy.Marketplace.Backend/meta"
	"github.com/afigjabbarli-tech/BuyBuddy.Marketplace.Backend/observability/logger"
	"github.com/code19m/errx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestLogger_WithContext(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	log := logger.NewFromZap(zap.New(core)).Named("repo")

	ctx := meta.InjectMetaToContext(context.Background(), map[meta.ContextKey]string{ //nolint:exhaustive // test
		meta.TraceID:       "trace-1",
		meta.RequestUserID: "user-1",
	})

	log.WithContext(ctx).With("entity_name", "Brand").Info("started")

	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, "repo", entries[0].LoggerName)

	fields := entries[0].ContextMap()
	assert.Equal(t, "trace-1", fields["trace_id"])
	assert.Equal(t, "user-1", fields["request_user_id"])
	assert.Equal(t, "Brand", fields["entity_name"])
}

func TestLogger_Errorx(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	log := logger.NewFromZap(zap.New(core))

	log.Errorx(errx.New("brand exists",
		errx.WithCode("BRAND_ALREADY_EXISTS"),
		errx.WithType(errx.T_Conflict),
		errx.WithDetails(errx.D{"key": "42"}),
	))
	log.Warnx(errors.New("plain"))

	entries := logs.All()
	require.Len(t, entries, 2)

	assert.Equal(t, zapcore.ErrorLevel, entries[0].Level)
	assert.Equal(t, "brand exists", entries[0].Message)
	fields := entries[0].ContextMap()
	assert.Equal(t, "BRAND_ALREADY_EXISTS", fields["error_code"])
	assert.Equal(t, errx.T_Conflict.String(), fields["error_type"])

	assert.Equal(t, zapcore.WarnLevel, entries[1].Level)
	assert.NotContains(t, entries[1].ContextMap(), "error_code")
}

func TestNew_Disabled(t *testing.T) {
	log, err := logger.New(logger.Config{Disable: true})
	require.NoError(t, err)
	log.Info("dropped")
	assert.NoError(t, log.Sync())
}

func TestNew_InvalidLevel(t *testing.T) {
	_, err := logger.New(logger.Config{Level: "loud", Encoding: "json", Output: "stdout"})
	require.Error(t, err)
}
