package database

import (
	"database/sql"

	"github.com/XSAM/otelsql"
	"github.com/code19m/errx"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"

	_ "modernc.org/sqlite" // registers the "sqlite" driver
)

const sqliteDriverName = "sqlite"

// OpenSQLite opens an instrumented modernc sqlite handle.
// SQLite allows a single writer, and an in-memory database exists only within
// its connection, so the handle is limited to one open connection.
func OpenSQLite(cfg Config) (*sql.DB, error) {
	sqldb, err := otelsql.Open(sqliteDriverName, cfg.sqliteDSN(),
		otelsql.WithAttributes(semconv.DBSystemSqlite),
	)
	if err != nil {
		return nil, errx.Wrap(err)
	}

	sqldb.SetMaxOpenConns(1)
	sqldb.SetMaxIdleConns(1)
	sqldb.SetConnMaxLifetime(0)

	if err = sqldb.Ping(); err != nil {
		_ = sqldb.Close()
		return nil, errx.Wrap(err)
	}

	return sqldb, nil
}
