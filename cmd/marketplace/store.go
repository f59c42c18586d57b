package main

import (
	"context"
	"path/filepath"
	"time"

	"github.com/afigjabbarli-tech/BuyBuddy.Marketplace.Backend/database"
	"github.com/afigjabbarli-tech/BuyBuddy.Marketplace.Backend/domain"
	"github.com/afigjabbarli-tech/BuyBuddy.Marketplace.Backend/entity"
	"github.com/afigjabbarli-tech/BuyBuddy.Marketplace.Backend/filerepo"
	"github.com/afigjabbarli-tech/BuyBuddy.Marketplace.Backend/observability/logger"
	"github.com/afigjabbarli-tech/BuyBuddy.Marketplace.Backend/repogen"
	"github.com/afigjabbarli-tech/BuyBuddy.Marketplace.Backend/repogen/wrapper"
	"github.com/afigjabbarli-tech/BuyBuddy.Marketplace.Backend/uow"
	"github.com/code19m/errx"
	"github.com/google/uuid"
)

const (
	countriesFileName = "countries.jsonl"
	brandsFileName    = "brands.yaml"
)

type (
	countryRepo = repogen.Repo[*domain.Country, uuid.UUID, time.Time, domain.CountryStatus, domain.CountryFilters]
	brandRepo   = repogen.Repo[*domain.Brand, uuid.UUID, time.Time, domain.BrandStatus, domain.BrandFilters]
)

// store is the set of repositories the CLI works with. commit persists what
// they staged and close releases the backend.
type store struct {
	countries countryRepo
	brands    brandRepo

	commit func(ctx context.Context) (int, error)
	close  func() error
}

func openStore(cfg Config, log logger.Logger) (*store, error) {
	switch cfg.Storage.Backend {
	case backendFile:
		return openFileStore(cfg, log), nil
	default:
		return openDatabaseStore(cfg, log)
	}
}

func openDatabaseStore(cfg Config, log logger.Logger) (*store, error) {
	db, err := database.NewBunDB(cfg.Database)
	if err != nil {
		return nil, errx.Wrap(err)
	}

	version, err := database.Migrate(db, cfg.Database, domain.Migrations, domain.MigrationsDir(cfg.Database.Driver))
	if err != nil {
		_ = db.Close()
		return nil, errx.Wrap(err)
	}
	log.With("version", version, "driver", cfg.Database.Driver).Info("schema migrated")

	schema := cfg.Database.SchemaName()
	session := uow.NewSession(
		uow.NewBunFlusher(db, schema, uow.WithConflictCodes(domain.ConflictCodes())),
		uow.WithLogger(log.Named("uow.session")),
	)
	auditor := repogen.WithAuditor[uuid.UUID, time.Time](domain.NewAuditor(nil))

	countries := repogen.NewBunRepo(
		repogen.NewBunReadRepoBuilder[*domain.Country, uuid.UUID, time.Time, domain.CountryStatus, domain.CountryFilters](db, session).
			WithSchemaName(schema).
			WithFilterFunc(domain.CountryFilterFunc).
			WithLogger(log.Named("repogen.read")),
		session,
		auditor,
	)
	brands := repogen.NewBunRepo(
		repogen.NewBunReadRepoBuilder[*domain.Brand, uuid.UUID, time.Time, domain.BrandStatus, domain.BrandFilters](db, session).
			WithSchemaName(schema).
			WithFilterFunc(domain.BrandFilterFunc).
			WithLogger(log.Named("repogen.read")),
		session,
		auditor,
	)

	return &store{
		countries: decorate[*domain.Country, uuid.UUID, time.Time, domain.CountryStatus, domain.CountryFilters](countries, log),
		brands:    decorate[*domain.Brand, uuid.UUID, time.Time, domain.BrandStatus, domain.BrandFilters](brands, log),
		commit:    session.Commit,
		close:     db.Close,
	}, nil
}

func openFileStore(cfg Config, log logger.Logger) *store {
	auditor := domain.NewAuditor(nil)

	countries := filerepo.NewBuilder[*domain.Country, uuid.UUID, time.Time, domain.CountryStatus, domain.CountryFilters](
		filepath.Join(cfg.Storage.Dir, countriesFileName),
		filerepo.JSONLines[*domain.Country]{},
	).
		WithMatcher(domain.MatchCountry).
		WithAuditor(auditor).
		WithLogger(log.Named("filerepo.countries")).
		Build()

	brands := filerepo.NewBuilder[*domain.Brand, uuid.UUID, time.Time, domain.BrandStatus, domain.BrandFilters](
		filepath.Join(cfg.Storage.Dir, brandsFileName),
		filerepo.YAML[*domain.Brand]{},
	).
		WithMatcher(domain.MatchBrand).
		WithAuditor(auditor).
		WithLogger(log.Named("filerepo.brands")).
		Build()

	return &store{
		countries: decorate[*domain.Country, uuid.UUID, time.Time, domain.CountryStatus, domain.CountryFilters](countries, log),
		brands:    decorate[*domain.Brand, uuid.UUID, time.Time, domain.BrandStatus, domain.BrandFilters](brands, log),
		commit: func(ctx context.Context) (int, error) {
			n, err := countries.Commit(ctx)
			if err != nil {
				return n, err
			}
			m, err := brands.Commit(ctx)
			return n + m, err
		},
		close: func() error { return nil },
	}
}

// decorated is a Repo whose read and write halves are wrapped separately.
type decorated[E entity.Entity[K, T, S], K entity.Key, T entity.Timestamp[T], S entity.Status, F any] struct {
	repogen.ReadRepo[E, K, T, S, F]
	repogen.WriteRepo[E, K, T, S]
}

func decorate[E entity.Entity[K, T, S], K entity.Key, T entity.Timestamp[T], S entity.Status, F any](
	repo repogen.Repo[E, K, T, S, F],
	log logger.Logger,
) repogen.Repo[E, K, T, S, F] {
	return &decorated[E, K, T, S, F]{
		ReadRepo: wrapper.ChainRead[E, K, T, S, F](repo,
			wrapper.NewTracingReadWrapper[E, K, T, S, F](),
			wrapper.NewLoggerReadWrapper[E, K, T, S, F](log),
		),
		WriteRepo: wrapper.ChainWrite[E, K, T, S](repo,
			wrapper.NewTracingWriteWrapper[E, K, T, S](),
			wrapper.NewLoggerWriteWrapper[E, K, T, S](log),
		),
	}
}
