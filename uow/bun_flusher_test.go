package uow_test

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/afigjabbarli-tech/BuyBuddy.Marketplace.Backend/database/dbtest"
	"github.com/afigjabbarli-tech/BuyBuddy.Marketplace.Backend/domain"
	"github.com/afigjabbarli-tech/BuyBuddy.Marketplace.Backend/uow"
	"github.com/code19m/errx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
)

const schema = "main"

func newBrand(commonName string) *domain.Brand {
	b := domain.NewBrand(commonName+" LLC", commonName)
	b.MarkCreated(nil, time.Now().UTC())
	return b
}

func countBrands(t *testing.T, db *bun.DB) int {
	t.Helper()
	n, err := db.NewSelect().Model((*domain.Brand)(nil)).Count(context.Background())
	require.NoError(t, err)
	return n
}

func TestBunFlusher_Commit(t *testing.T) {
	ctx := context.Background()
	db := dbtest.NewSQLite(t)
	s := uow.NewSession(uow.NewBunFlusher(db, schema))

	a, b := newBrand("Alpha"), newBrand("Beta")
	_, _ = s.Add(ctx, a)
	_, _ = s.Add(ctx, b)

	n, err := s.Commit(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, 2, countBrands(t, db))

	a.Slogan = "first"
	_, _ = s.Update(ctx, a)
	_, _ = s.Remove(ctx, b)

	n, err = s.Commit(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, 1, countBrands(t, db))

	stored := new(domain.Brand)
	require.NoError(t, db.NewSelect().Model(stored).Where("uid = ?", a.Uid).Scan(ctx))
	assert.Equal(t, "first", stored.Slogan)
}

func TestBunFlusher_Conflict(t *testing.T) {
	ctx := context.Background()
	db := dbtest.NewSQLite(t)
	s := uow.NewSession(uow.NewBunFlusher(db, schema, uow.WithConflictCodes(domain.ConflictCodes())))

	_, _ = s.Add(ctx, newBrand("Alpha"))
	_, err := s.Commit(ctx)
	require.NoError(t, err)

	dup := newBrand("Alpha")
	other := newBrand("Gamma")
	_, _ = s.Add(ctx, other)
	_, _ = s.Add(ctx, dup)

	_, err = s.Commit(ctx)
	require.Error(t, err)
	assert.True(t, errx.IsCodeIn(err, domain.CodeBrandAlreadyExists))
	assert.Equal(t, errx.T_Conflict, errx.GetType(err))

	assert.Equal(t, 1, countBrands(t, db), "the transaction is rolled back")
	assert.Equal(t, uow.Added, s.State(other))
}

func TestBunFlusher_MissingRow(t *testing.T) {
	ctx := context.Background()
	db := dbtest.NewSQLite(t)
	s := uow.NewSession(uow.NewBunFlusher(db, schema))

	ghost := newBrand("Ghost")
	_, _ = s.Remove(ctx, ghost)

	_, err := s.Commit(ctx)
	require.Error(t, err)
	assert.True(t, errx.IsCodeIn(err, uow.CodeIncorrectRowsAffection))
	assert.Equal(t, errx.T_NotFound, errx.GetType(err))
}

func TestBunFlusher_DriverError(t *testing.T) {
	sqldb, mock, err := sqlmock.New()
	require.NoError(t, err)
	db := bun.NewDB(sqldb, sqlitedialect.New())
	t.Cleanup(func() { _ = db.Close() })

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO").WillReturnError(assert.AnError)
	mock.ExpectRollback()

	f := uow.NewBunFlusher(db, schema)
	_, err = f.Flush(context.Background(), []uow.Change{{Model: newBrand("Alpha"), State: uow.Added}})

	require.Error(t, err)
	details := errx.AsErrorX(err).Details()
	assert.Contains(t, details, "key")
	assert.Contains(t, details["query"], "INSERT INTO")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBunFlusher_UnknownState(t *testing.T) {
	db := dbtest.NewSQLite(t)
	f := uow.NewBunFlusher(db, schema)

	_, err := f.Flush(context.Background(), []uow.Change{{Model: newBrand("Alpha"), State: uow.Unchanged}})
	require.Error(t, err)
	assert.True(t, errx.IsCodeIn(err, uow.CodeUnknownState))
}
