// Package hooks holds bun query hooks shared by every backend.
package hooks

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/afigjabbarli-tech/BuyBuddy.Marketplace.Backend/observability/logger"
	"github.com/uptrace/bun"
)

var _ bun.QueryHook = (*QueryLogger)(nil)

// QueryLogger writes executed queries to a structured logger. Failed and slow
// queries are always logged; every other query only in verbose mode.
// sql.ErrNoRows and sql.ErrTxDone are not treated as failures.
type QueryLogger struct {
	log     logger.Logger
	verbose bool
	slow    time.Duration
}

// NewQueryLogger returns a hook writing to log. A zero slow threshold disables
// slow query reporting.
func NewQueryLogger(log logger.Logger, verbose bool, slow time.Duration) *QueryLogger {
	return &QueryLogger{log: log, verbose: verbose, slow: slow}
}

func (h *QueryLogger) BeforeQuery(ctx context.Context, _ *bun.QueryEvent) context.Context {
	return ctx
}

func (h *QueryLogger) AfterQuery(ctx context.Context, event *bun.QueryEvent) {
	elapsed := time.Since(event.StartTime)
	failed := event.Err != nil && !errors.Is(event.Err, sql.ErrNoRows) && !errors.Is(event.Err, sql.ErrTxDone)
	slow := h.slow > 0 && elapsed >= h.slow

	if !failed && !slow && !h.verbose {
		return
	}

	entry := h.log.WithContext(ctx).With(
		"operation", event.Operation(),
		"query", strings.ReplaceAll(event.Query, `"`, ""),
		"duration", elapsed.Round(time.Microsecond),
	)

	switch {
	case failed:
		entry.With("error", event.Err.Error()).Error("query failed")
	case slow:
		entry.Warn("slow query")
	default:
		entry.Debug("query")
	}
}
