package database

import (
	"errors"
	"io/fs"

	"github.com/code19m/errx"
	"github.com/golang-migrate/migrate/v4"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/uptrace/bun"

	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5" // registers the "pgx5" scheme
)

const (
	CodeMigrationFailed = "MIGRATION_FAILED"

	migrationSource = "iofs"
	pgxScheme       = "pgx5"
)

// Migrate applies every pending up migration found under dir in fsys and
// returns the resulting schema version.
//
// SQLite migrations run over db itself, so in-memory databases see them.
// PostgreSQL migrations open their own connection from cfg.
func Migrate(db *bun.DB, cfg Config, fsys fs.FS, dir string) (uint, error) {
	src, err := iofs.New(fsys, dir)
	if err != nil {
		return 0, errx.Wrap(err, errx.WithCode(CodeMigrationFailed), errx.WithDetails(errx.D{"dir": dir}))
	}

	var m *migrate.Migrate

	switch cfg.Driver {
	case DriverSQLite:
		drv, err := migratesqlite.WithInstance(db.DB, &migratesqlite.Config{})
		if err != nil {
			return 0, errx.Wrap(err, errx.WithCode(CodeMigrationFailed))
		}
		// The driver must not be closed: closing it closes db.
		m, err = migrate.NewWithInstance(migrationSource, src, DriverSQLite, drv)
		if err != nil {
			return 0, errx.Wrap(err, errx.WithCode(CodeMigrationFailed))
		}

	default:
		m, err = migrate.NewWithSourceInstance(migrationSource, src, cfg.migrationURL(pgxScheme))
		if err != nil {
			return 0, errx.Wrap(err, errx.WithCode(CodeMigrationFailed))
		}
		defer m.Close()
	}

	if err = m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return 0, errx.Wrap(err, errx.WithCode(CodeMigrationFailed), errx.WithDetails(errx.D{"dir": dir}))
	}

	version, _, err := m.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return 0, errx.Wrap(err, errx.WithCode(CodeMigrationFailed))
	}

	return version, nil
}
