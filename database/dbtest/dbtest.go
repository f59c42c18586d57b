// Package dbtest opens migrated in-memory SQLite databases for tests.
package dbtest

import (
	"testing"

	"github.com/afigjabbarli-tech/BuyBuddy.Marketplace.Backend/database"
	"github.com/afigjabbarli-tech/BuyBuddy.Marketplace.Backend/domain"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/extra/bundebug"
)

// Config returns the database configuration NewSQLite uses.
func Config() database.Config {
	return database.Config{
		Driver: database.DriverSQLite,
		Path:   ":memory:",
	}
}

// NewSQLite returns a fresh in-memory database with the marketplace schema.
// Setting BUNDEBUG=1 prints queries, BUNDEBUG=2 also prints their results.
func NewSQLite(t testing.TB) *bun.DB {
	t.Helper()

	cfg := Config()

	db, err := database.NewBunDB(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	db.AddQueryHook(bundebug.NewQueryHook(bundebug.FromEnv("BUNDEBUG")))

	_, err = database.Migrate(db, cfg, domain.Migrations, domain.MigrationsDir(cfg.Driver))
	require.NoError(t, err)

	return db
}
