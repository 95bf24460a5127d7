package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/erp/kernel/internal/domain/fx"
	"github.com/erp/kernel/internal/domain/shared"
	"github.com/erp/kernel/internal/infrastructure/cache"
	"github.com/erp/kernel/internal/infrastructure/clock"
	"github.com/erp/kernel/internal/infrastructure/config"
	"github.com/erp/kernel/internal/infrastructure/event"
	"github.com/erp/kernel/internal/infrastructure/logger"
	"github.com/erp/kernel/internal/infrastructure/persistence"
	"github.com/erp/kernel/internal/infrastructure/telemetry"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const serviceVersion = "1.0.0"

// app holds the process-wide dependencies shared by every command
type app struct {
	cfg        *config.Config
	log        *zap.Logger
	providers  *telemetry.Providers
	metrics    *telemetry.KernelMetrics
	ids        shared.IDGenerator
	clock      shared.Clock
	serializer *event.Serializer
	stdout     io.Writer

	db    *persistence.Database
	redis *redis.Client
}

func newApp(ctx context.Context, configPath, logLevel string, stdout io.Writer) (*app, error) {
	var (
		cfg *config.Config
		err error
	)
	if configPath != "" {
		cfg, err = config.LoadFile(configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
	}

	log, err := logger.New(logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	providers, err := telemetry.Setup(ctx, telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.Telemetry.ServiceName,
		ServiceVersion:    serviceVersion,
		Insecure:          cfg.Telemetry.Insecure,
		MetricsInterval:   cfg.Telemetry.MetricsInterval,
		LogsEnabled:       cfg.Telemetry.LogsEnabled,
	}, log)
	if err != nil {
		_ = log.Sync()
		return nil, fmt.Errorf("failed to initialize telemetry: %w", err)
	}
	if cfg.Telemetry.LogsEnabled {
		log = providers.BridgeLogger(log, logger.ParseLevel(cfg.Log.Level))
	}

	metrics, err := telemetry.NewKernelMetrics(providers.Meter("finance-kernel"))
	if err != nil {
		_ = providers.Shutdown(ctx)
		return nil, fmt.Errorf("failed to create metrics: %w", err)
	}

	return &app{
		cfg:        cfg,
		log:        log,
		providers:  providers,
		metrics:    metrics,
		ids:        clock.UUIDv7{},
		clock:      clock.System{},
		serializer: event.NewKernelSerializer(),
		stdout:     stdout,
	}, nil
}

// database opens the configured database on first use
func (a *app) database(ctx context.Context) (*persistence.Database, error) {
	if a.db != nil {
		return a.db, nil
	}
	db, err := persistence.Open(&a.cfg.Database,
		persistence.WithLogger(a.log, logger.GormLevel(a.cfg.Log.Level)),
		persistence.WithSlowQueryThreshold(a.cfg.Telemetry.DBSlowQueryThresh),
		persistence.WithTracing(telemetry.DBTracingConfig{
			Enabled:         a.cfg.Telemetry.Enabled && a.cfg.Telemetry.DBTraceEnabled,
			LogFullSQL:      a.cfg.Telemetry.DBLogFullSQL,
			SlowQueryThresh: a.cfg.Telemetry.DBSlowQueryThresh,
			DBSystem:        dbSystem(a.cfg.Database.Driver),
		}),
	)
	if err != nil {
		return nil, err
	}
	a.db = db
	logger.L(ctx).Debug("Database connected", zap.String("driver", db.Driver()))

	if a.cfg.Redis.Enabled {
		client, err := cache.NewRedisClient(ctx, a.cfg.Redis)
		if err != nil {
			return nil, err
		}
		a.redis = client
	}
	return db, nil
}

func dbSystem(driver string) string {
	if driver == "sqlite" {
		return "sqlite"
	}
	return "postgresql"
}

// kernelTx is the set of repositories and the event publisher bound to one
// database transaction. Events are recorded in the outbox of the same
// transaction and are discarded with it on rollback.
type kernelTx struct {
	*persistence.Repositories
	publisher shared.EventPublisher
	rates     fx.RateRepository
}

func (a *app) inTransaction(ctx context.Context, fn func(ctx context.Context, tx *kernelTx) error) error {
	db, err := a.database(ctx)
	if err != nil {
		return err
	}
	scope := persistence.NewGormTransactionScope(db.DB, a.ids, a.clock)
	return scope.Execute(ctx, func(ctx context.Context, repos *persistence.Repositories) error {
		bus := event.NewInMemoryEventBus(logger.L(ctx))
		bus.Subscribe(event.NewOutboxRecorder(event.NewGormOutboxRepository(repos.DB()), a.serializer, a.ids, a.clock))

		var rates fx.RateRepository = repos.Rates()
		if a.redis != nil {
			rates = cache.NewRateCache(rates, a.redis,
				cache.WithTTL(a.cfg.FX.RateCacheTTL),
				cache.WithLogger(logger.L(ctx)),
			)
		}
		return fn(ctx, &kernelTx{
			Repositories: repos,
			publisher:    event.NewKernelPublisher(bus, a.serializer, logger.L(ctx)),
			rates:        rates,
		})
	})
}

// runContext tags ctx with the command name, a fresh run id and the logger
func (a *app) runContext(ctx context.Context, command string) context.Context {
	ctx = logger.WithContext(ctx, a.log)
	return logger.WithRun(ctx, command, a.ids.Generate().String())
}

func (a *app) printJSON(v any) error {
	enc := json.NewEncoder(a.stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func (a *app) close(ctx context.Context) {
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			a.log.Warn("Failed to close Redis client", zap.Error(err))
		}
	}
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			a.log.Warn("Failed to close database", zap.Error(err))
		}
	}
	if err := a.providers.Shutdown(ctx); err != nil {
		a.log.Warn("Failed to shutdown telemetry", zap.Error(err))
	}
	_ = a.log.Sync()
}
