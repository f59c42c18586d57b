// Command marketplace prepares the marketplace store: it connects to the
// configured backend, applies the schema migrations and seeds reference data.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/afigjabbarli-tech/BuyBuddy.Marketplace.Backend/cfgloader"
	"github.com/afigjabbarli-tech/BuyBuddy.Marketplace.Backend/mask"
	"github.com/afigjabbarli-tech/BuyBuddy.Marketplace.Backend/meta"
	"github.com/afigjabbarli-tech/BuyBuddy.Marketplace.Backend/observability/logger"
	"github.com/afigjabbarli-tech/BuyBuddy.Marketplace.Backend/observability/tracing"
	"github.com/code19m/errx"
	"go.opentelemetry.io/otel"
)

func main() {
	os.Exit(start())
}

// start runs the command and returns the process exit code.
func start() int {
	cfg := cfgloader.MustLoad[Config](cfgloader.WithSilent())

	meta.SetServiceInfo(cfg.Service.Name, cfg.Service.Version)
	if cfg.Logger.Service == "" {
		cfg.Logger.Service = cfg.Service.Name
	}
	logger.SetGlobal(cfg.Logger)
	defer func() { _ = logger.Sync() }()

	log := logger.Named("marketplace")
	log.With("config", mask.StructToOrdMap(cfg)).Info("config loaded")

	shutdown, err := tracing.InitGlobalTracer(cfg.Tracing)
	if err != nil {
		log.Fatalx(err)
	}
	defer func() {
		if err := shutdown(); err != nil {
			log.Warnx(err)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Errorx(err)
		return 1
	}
	return 0
}

// run opens the store, seeds it and reports how many records it holds.
func run(ctx context.Context, cfg Config, log logger.Logger) error {
	s, err := openStore(cfg, log)
	if err != nil {
		return err
	}
	defer func() {
		if err := s.close(); err != nil {
			log.Warnx(errx.Wrap(err))
		}
	}()

	ctx, span := otel.Tracer("marketplace").Start(ctx, "marketplace.prepare")
	defer span.End()

	ctx = meta.InjectMetaToContext(ctx, map[meta.ContextKey]string{ //nolint:exhaustive // only trace and actor are known
		meta.TraceID:       tracing.TraceID(ctx),
		meta.RequestUserID: cfg.Seed.ActorID,
	})

	if _, err = seed(ctx, s, cfg.Seed, log); err != nil {
		return err
	}

	countries, err := s.countries.Count(ctx)
	if err != nil {
		return err
	}
	brands, err := s.brands.Count(ctx)
	if err != nil {
		return err
	}

	log.With("backend", cfg.Storage.Backend, "countries", countries, "brands", brands).Info("store is ready")

	return nil
}
