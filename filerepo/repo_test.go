package filerepo_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/afigjabbarli-tech/BuyBuddy.Marketplace.Backend/domain"
	"github.com/afigjabbarli-tech/BuyBuddy.Marketplace.Backend/filerepo"
	"github.com/afigjabbarli-tech/BuyBuddy.Marketplace.Backend/meta"
	"github.com/afigjabbarli-tech/BuyBuddy.Marketplace.Backend/pagination"
	"github.com/afigjabbarli-tech/BuyBuddy.Marketplace.Backend/repogen"
	"github.com/afigjabbarli-tech/BuyBuddy.Marketplace.Backend/uow"
	"github.com/code19m/errx"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type (
	brandRepo   = filerepo.Repo[*domain.Brand, uuid.UUID, time.Time, domain.BrandStatus, domain.BrandFilters]
	countryRepo = filerepo.Repo[*domain.Country, uuid.UUID, time.Time, domain.CountryStatus, domain.CountryFilters]
)

var actorID = uuid.MustParse("9a0b1c2d-3e4f-4a5b-8c6d-7e8f9a0b1c2d")

func actorCtx() context.Context {
	return meta.InjectMetaToContext(context.Background(), map[meta.ContextKey]string{ //nolint:exhaustive // test
		meta.RequestUserID: actorID.String(),
	})
}

func newBrandRepo(path string) *brandRepo {
	return filerepo.NewBuilder[*domain.Brand, uuid.UUID, time.Time, domain.BrandStatus, domain.BrandFilters](
		path, filerepo.YAML[*domain.Brand]{},
	).
		WithMatcher(domain.MatchBrand).
		WithAuditor(domain.NewAuditor(nil)).
		Build()
}

func newCountryRepo(path string) *countryRepo {
	return filerepo.NewBuilder[*domain.Country, uuid.UUID, time.Time, domain.CountryStatus, domain.CountryFilters](
		path, filerepo.JSONLines[*domain.Country]{},
	).
		WithMatcher(domain.MatchCountry).
		WithAuditor(domain.NewAuditor(nil)).
		Build()
}

func TestRepo_MissingFile(t *testing.T) {
	ctx := context.Background()
	repo := newBrandRepo(filepath.Join(t.TempDir(), "brands.yaml"))

	all, err := repo.GetAll(ctx)
	require.NoError(t, err)
	assert.NotNil(t, all)
	assert.Empty(t, all)

	got, err := repo.GetByUid(ctx, uuid.New())
	require.NoError(t, err)
	assert.Nil(t, got)

	n, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestRepo_YAMLRoundTrip(t *testing.T) {
	ctx := actorCtx()
	path := filepath.Join(t.TempDir(), "nested", "brands.yaml")
	repo := newBrandRepo(path)

	alpha := domain.NewBrand("Alpha LLC", "Alpha")
	alpha.Slogan = "first"
	beta := domain.NewBrand("Beta LLC", "Beta")

	ok, _, err := repo.AddRange(ctx, []*domain.Brand{alpha, beta})
	require.NoError(t, err)
	require.True(t, ok)

	n, err := repo.Commit(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.FileExists(t, path)

	reopened := newBrandRepo(path)
	all, err := reopened.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "Alpha", all[0].CommonName, "reads keep file order")
	assert.Equal(t, "first", all[0].Slogan)
	assert.Equal(t, alpha.Uid, all[0].Uid)
	require.NotNil(t, all[0].CreatedBy)
	assert.Equal(t, actorID, *all[0].CreatedBy)

	name := "Beta"
	got, err := reopened.GetByCondition(ctx, domain.BrandFilters{CommonName: &name})
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, beta.Uid, got.Uid)
}

func TestRepo_JSONLinesWrites(t *testing.T) {
	ctx := actorCtx()
	path := filepath.Join(t.TempDir(), "countries.jsonl")
	repo := newCountryRepo(path)

	az := domain.NewCountry("Azerbaijan", "AZ")
	de := domain.NewCountry("Germany", "DE")
	uz := domain.NewCountry("Uzbekistan", "UZ")
	_, _, err := repo.AddRange(ctx, []*domain.Country{az, de, uz})
	require.NoError(t, err)
	_, err = repo.Commit(ctx)
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Len(t, strings.Split(strings.TrimSpace(string(data)), "\n"), 3)

	tracked, err := repo.GetByUid(ctx, de.Uid, repogen.WithTracking())
	require.NoError(t, err)
	assert.Same(t, de, tracked, "tracked reads return the instance the session holds")

	de.Capital = "Berlin"
	ok, _, err := repo.Update(ctx, de)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, _, err = repo.Remove(ctx, uz)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, _, err = repo.SoftRemove(ctx, az)
	require.NoError(t, err)
	assert.True(t, ok)

	n, err := repo.Commit(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	count, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	live, err := repo.GetWhere(ctx, domain.CountryFilters{ExcludeDeleted: true})
	require.NoError(t, err)
	require.Len(t, live, 1)
	assert.Equal(t, "Berlin", live[0].Capital)

	n, err = repo.CountWhere(ctx, domain.CountryFilters{ExcludeDeleted: true})
	require.NoError(t, err)
	assert.Equal(t, len(live), n)

	exists, err := repo.Exist(ctx, domain.CountryFilters{Alpha2Code: "uz"})
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestRepo_ListPage(t *testing.T) {
	ctx := actorCtx()
	repo := newCountryRepo(filepath.Join(t.TempDir(), "countries.jsonl"))

	for _, code := range []string{"AZ", "DE", "FR", "IT", "UZ"} {
		_, _, err := repo.Add(ctx, domain.NewCountry(code, code))
		require.NoError(t, err)
	}
	_, err := repo.Commit(ctx)
	require.NoError(t, err)

	page, err := repo.ListPage(ctx, domain.CountryFilters{}, pagination.Request{PageNumber: 3, PageSize: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(5), page.TotalCount)
	require.Len(t, page.PageContent, 1)
	assert.Equal(t, "UZ", page.PageContent[0].Alpha2Code)

	page, err = repo.ListPage(ctx, domain.CountryFilters{}, pagination.Request{PageNumber: 4, PageSize: 2})
	require.NoError(t, err)
	assert.Empty(t, page.PageContent)
}

func TestRepo_CommitFailures(t *testing.T) {
	ctx := actorCtx()
	path := filepath.Join(t.TempDir(), "brands.yaml")

	first := newBrandRepo(path)
	alpha := domain.NewBrand("Alpha LLC", "Alpha")
	_, _, err := first.Add(ctx, alpha)
	require.NoError(t, err)
	_, err = first.Commit(ctx)
	require.NoError(t, err)

	before, err := os.ReadFile(path)
	require.NoError(t, err)

	t.Run("duplicate key", func(t *testing.T) {
		repo := newBrandRepo(path)
		dup := domain.NewBrand("Other LLC", "Other")
		dup.Uid = alpha.Uid
		_, _, err := repo.Add(ctx, dup)
		require.NoError(t, err)

		_, err = repo.Commit(ctx)
		require.Error(t, err)
		assert.True(t, errx.IsCodeIn(err, uow.CodeConflict))
		assert.Equal(t, uow.Added, repo.StateOf(dup))
	})

	t.Run("missing key", func(t *testing.T) {
		repo := newBrandRepo(path)
		_, _, err := repo.Remove(ctx, domain.NewBrand("Ghost LLC", "Ghost"))
		require.NoError(t, err)

		_, err = repo.Commit(ctx)
		require.Error(t, err)
		assert.True(t, errx.IsCodeIn(err, uow.CodeIncorrectRowsAffection))
	})

	after, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, string(before), string(after), "failed commits leave the file untouched")
}

func TestRepo_DuplicateRows(t *testing.T) {
	path := filepath.Join(t.TempDir(), "countries.jsonl")
	c := domain.NewCountry("Azerbaijan", "AZ")

	var sb strings.Builder
	require.NoError(t, filerepo.JSONLines[*domain.Country]{}.Encode(&sb, []*domain.Country{c, c}))
	require.NoError(t, os.WriteFile(path, []byte(sb.String()), 0o600))

	_, err := newCountryRepo(path).GetByUid(context.Background(), c.Uid)
	require.Error(t, err)
	assert.True(t, errx.IsCodeIn(err, repogen.CodeMultipleRowsFound))
}

func TestRepo_CancelledContext(t *testing.T) {
	repo := newBrandRepo(filepath.Join(t.TempDir(), "brands.yaml"))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := repo.GetAll(ctx)
	require.ErrorIs(t, err, context.Canceled)

	_, err = repo.Exist(ctx, domain.BrandFilters{})
	require.ErrorIs(t, err, context.Canceled)
}

func TestRepo_CSV(t *testing.T) {
	ctx := actorCtx()
	path := filepath.Join(t.TempDir(), "brands.csv")
	require.NoError(t, os.WriteFile(path, []byte("uid,common_name\n"), 0o600))

	repo := filerepo.NewBuilder[*domain.Brand, uuid.UUID, time.Time, domain.BrandStatus, domain.BrandFilters](
		path, filerepo.CSV[*domain.Brand]{},
	).Build()

	_, err := repo.GetAll(ctx)
	require.Error(t, err)
	assert.True(t, errx.IsCodeIn(err, filerepo.CodeNotImplemented))

	ok, _, err := repo.Add(ctx, domain.NewBrand("Alpha LLC", "Alpha"))
	require.NoError(t, err)
	assert.True(t, ok, "staging does not touch the file")

	_, err = repo.Commit(ctx)
	require.Error(t, err)
	assert.True(t, errx.IsCodeIn(err, filerepo.CodeNotImplemented))
}
