package bootstrap

import (
	"context"
	"log/slog"
	"strings"
	"time"

	authorization "quorum/contexts/identity-access/authorization-service"
	authevents "quorum/contexts/identity-access/authorization-service/adapters/events"
	authmemory "quorum/contexts/identity-access/authorization-service/adapters/memory"
	authpostgres "quorum/contexts/identity-access/authorization-service/adapters/postgres"
	authworkers "quorum/contexts/identity-access/authorization-service/application/workers"
	authservices "quorum/contexts/identity-access/authorization-service/domain/services"
	formworkflow "quorum/contexts/tally-operations/form-workflow-service"
	tallypostgres "quorum/contexts/tally-operations/form-workflow-service/adapters/postgres"
	tallyworkers "quorum/contexts/tally-operations/form-workflow-service/application/workers"
	"quorum/contexts/tally-operations/form-workflow-service/domain/entities"
	"quorum/internal/platform/config"
	"quorum/internal/platform/db"
	"quorum/internal/platform/httpserver"
	"quorum/internal/platform/messaging"
)

// Package bootstrap is the composition root.
// Keep construction/wiring here so module code stays framework-agnostic.

type APIApp struct {
	server   *httpserver.Server
	postgres *db.Postgres
	logger   *slog.Logger
}

type WorkerApp struct {
	postgres       *db.Postgres
	bus            *messaging.Kafka
	tallyRelay     tallyworkers.OutboxRelay
	authzRelay     authworkers.OutboxRelay
	policyConsumer authworkers.PolicyChangedConsumer
	pollInterval   time.Duration
	logger         *slog.Logger
}

func BuildAPI() (*APIApp, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	logger := slog.Default().With("service", cfg.ServiceName, "process", "api")

	pg, err := db.Open(cfg.DBDriver, cfg.PostgresDSN, cfg.SQLitePath)
	if err != nil {
		return nil, err
	}

	tallyModule, authModule, err := buildModules(cfg, pg, logger)
	if err != nil {
		_ = pg.Close()
		return nil, err
	}

	server := httpserver.New(tallyModule, authModule, logger, normalizeAddr(cfg.HTTPPort))
	return &APIApp{
		server:   server,
		postgres: pg,
		logger:   logger,
	}, nil
}

func BuildWorker() (*WorkerApp, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	logger := slog.Default().With("service", cfg.ServiceName, "process", "worker")

	pg, err := db.Open(cfg.DBDriver, cfg.PostgresDSN, cfg.SQLitePath)
	if err != nil {
		return nil, err
	}

	kafka, err := messaging.NewKafka(cfg.KafkaBrokers, logger)
	if err != nil {
		_ = pg.Close()
		return nil, err
	}

	tallyRepo := tallypostgres.NewRepository(pg.DB, logger)
	authRepo := authpostgres.NewRepository(pg.DB, logger)

	tallyModule := formworkflow.NewModule(formworkflow.Dependencies{
		Forms:        tallyRepo,
		Tallies:      tallyRepo,
		Geography:    tallyRepo,
		Ballots:      tallyRepo,
		Results:      tallyRepo,
		Recons:       tallyRepo,
		Reviews:      tallyRepo,
		Checks:       tallyRepo,
		Requests:     tallyRepo,
		Stats:        tallyRepo,
		Revisions:    tallyRepo,
		Outbox:       tallyRepo,
		Relay:        tallyRepo,
		Publisher:    kafka,
		Clock:        tallypostgres.SystemClock{},
		IDGen:        tallypostgres.UUIDGenerator{},
		Logger:       logger,
		StartBarcode: cfg.StartBarcode,
		OCVCenterMin: cfg.OCVCenterMin,
	})

	// Worker-side dedup and cache state; the policy consumer retires
	// cached permission sets as grant/revoke/delegation events land.
	authState := authmemory.NewStore()

	return &WorkerApp{
		postgres:   pg,
		bus:        kafka,
		tallyRelay: tallyModule.Relay,
		authzRelay: authworkers.OutboxRelay{
			Outbox:    authRepo,
			Publisher: authevents.NewPublisher(kafka, logger),
			Clock:     authpostgres.SystemClock{},
			BatchSize: 100,
			Logger:    logger,
		},
		policyConsumer: authworkers.PolicyChangedConsumer{
			Dedup:           authState,
			PermissionCache: authState,
			Clock:           authpostgres.SystemClock{},
		},
		pollInterval: 2 * time.Second,
		logger:       logger,
	}, nil
}

func buildModules(cfg config.Config, pg *db.Postgres, logger *slog.Logger) (formworkflow.Module, authorization.Module, error) {
	tallyRepo := tallypostgres.NewRepository(pg.DB, logger)
	if err := tallyRepo.Migrate(); err != nil {
		return formworkflow.Module{}, authorization.Module{}, err
	}

	if err := seedQuarantineChecks(cfg, tallyRepo); err != nil {
		return formworkflow.Module{}, authorization.Module{}, err
	}

	tallyModule := formworkflow.NewModule(formworkflow.Dependencies{
		Forms:        tallyRepo,
		Tallies:      tallyRepo,
		Geography:    tallyRepo,
		Ballots:      tallyRepo,
		Results:      tallyRepo,
		Recons:       tallyRepo,
		Reviews:      tallyRepo,
		Checks:       tallyRepo,
		Requests:     tallyRepo,
		Stats:        tallyRepo,
		Revisions:    tallyRepo,
		Outbox:       tallyRepo,
		Clock:        tallypostgres.SystemClock{},
		IDGen:        tallypostgres.UUIDGenerator{},
		Logger:       logger,
		StartBarcode: cfg.StartBarcode,
		OCVCenterMin: cfg.OCVCenterMin,
	})

	authRepo := authpostgres.NewRepository(pg.DB, logger)
	if err := authRepo.Migrate(); err != nil {
		return formworkflow.Module{}, authorization.Module{}, err
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := authRepo.SeedRoles(ctx, authservices.BaselineRoles()); err != nil {
		return formworkflow.Module{}, authorization.Module{}, err
	}

	authCache := authmemory.NewStore()
	authModule := authorization.NewModule(authorization.Dependencies{
		Repository:         authRepo,
		Idempotency:        authCache,
		PermissionCache:    authCache,
		Clock:              authpostgres.SystemClock{},
		IDGenerator:        authpostgres.UUIDGenerator{},
		IdempotencyTTL:     7 * 24 * time.Hour,
		PermissionCacheTTL: 5 * time.Minute,
		Logger:             logger,
	})
	return tallyModule, authModule, nil
}

func seedQuarantineChecks(cfg config.Config, repo *tallypostgres.Repository) error {
	seeds, err := config.LoadQuarantineSeeds(cfg.QuarantineConfigPath)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	now := time.Now().UTC()
	for _, seed := range seeds {
		check := entities.QuarantineCheck{
			QuarantineCheckID: seed.Name,
			TallyID:           seed.TallyID,
			Name:              seed.Name,
			Method:            entities.QuarantineMethod(seed.Method),
			Value:             seed.Value,
			Percentage:        seed.Percentage,
			Active:            seed.Active,
			CreatedAt:         now,
			UpdatedAt:         now,
		}
		if err := repo.UpsertQuarantineCheck(ctx, check); err != nil {
			return err
		}
	}
	return nil
}

func (a *APIApp) Run(_ context.Context) error {
	if a.logger != nil {
		a.logger.Info("api app started",
			"event", "bootstrap_api_started",
			"module", "internal/app/bootstrap",
			"layer", "platform",
		)
	}
	return a.server.Start()
}

func (a *APIApp) Close() error {
	if a.postgres != nil {
		return a.postgres.Close()
	}
	return nil
}

func (w *WorkerApp) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	if err := w.bus.Subscribe(ctx, authevents.TopicPolicyEvents, "authorization-policy-cache", w.policyConsumer.Handle); err != nil {
		return err
	}

	w.logger.Info("worker app started",
		"event", "bootstrap_worker_started",
		"module", "internal/app/bootstrap",
		"layer", "platform",
		"poll_interval", w.pollInterval.String(),
	)

	for {
		if err := w.tallyRelay.RunOnce(ctx); err != nil {
			return err
		}
		if err := w.authzRelay.RunOnce(ctx); err != nil {
			return err
		}
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

func (w *WorkerApp) Close() error {
	if w.postgres != nil {
		return w.postgres.Close()
	}
	return nil
}

func normalizeAddr(port string) string {
	value := strings.TrimSpace(port)
	if value == "" {
		return ":8080"
	}
	if strings.HasPrefix(value, ":") {
		return value
	}
	return ":" + value
}
