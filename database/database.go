// Package database opens bun connections for the supported backends.
//
// PostgreSQL goes through a pgx pool, SQLite through the pure-Go modernc
// driver. Both get the query log and OpenTelemetry hooks, and both can be
// migrated from an embedded set of SQL files.
package database

import (
	"github.com/afigjabbarli-tech/BuyBuddy.Marketplace.Backend/database/hooks"
	"github.com/afigjabbarli-tech/BuyBuddy.Marketplace.Backend/observability/logger"
	"github.com/code19m/errx"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/extra/bunotel"
)

const CodeUnsupportedDriver = "UNSUPPORTED_DRIVER"

// NewBunDB creates a new Bun database connection with the provided configuration.
func NewBunDB(cfg Config) (*bun.DB, error) {
	var bunDB *bun.DB

	switch cfg.Driver {
	case DriverPostgres, "":
		pool, err := NewPool(cfg)
		if err != nil {
			return nil, errx.Wrap(err)
		}
		bunDB = bun.NewDB(stdlib.OpenDBFromPool(pool), pgdialect.New())

	case DriverSQLite:
		sqldb, err := OpenSQLite(cfg)
		if err != nil {
			return nil, errx.Wrap(err)
		}
		bunDB = bun.NewDB(sqldb, sqlitedialect.New())

	default:
		return nil, errx.New(
			"unsupported database driver",
			errx.WithCode(CodeUnsupportedDriver),
			errx.WithType(errx.T_Validation),
			errx.WithDetails(errx.D{"driver": cfg.Driver}),
		)
	}

	bunDB.AddQueryHook(hooks.NewQueryLogger(logger.Named("database"), cfg.Debug, cfg.SlowQueryThreshold))
	bunDB.AddQueryHook(bunotel.NewQueryHook(bunotel.WithFormattedQueries(true)))

	return bunDB, nil
}
