package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	reviewservice "legisflow/contexts/legislative-advocacy/review-service"
	reviewmemory "legisflow/contexts/legislative-advocacy/review-service/adapters/memory"
	reviewpostgres "legisflow/contexts/legislative-advocacy/review-service/adapters/postgres"
	workflowservice "legisflow/contexts/legislative-advocacy/workflow-service"
	"legisflow/contexts/legislative-advocacy/workflow-service/adapters/definition"
	workflowmemory "legisflow/contexts/legislative-advocacy/workflow-service/adapters/memory"
	workflowpostgres "legisflow/contexts/legislative-advocacy/workflow-service/adapters/postgres"
	contractsv1 "legisflow/contracts/gen/events/v1"
	"legisflow/internal/platform/config"
	"legisflow/internal/platform/db"
	"legisflow/internal/platform/messaging"
	"legisflow/internal/platform/observability"

	"github.com/redis/go-redis/v9"
)

// Package bootstrap is the composition root.
// Keep construction/wiring here so module code stays framework-agnostic.

type eventBus interface {
	Publish(ctx context.Context, topic string, event contractsv1.Envelope) error
	Subscribe(
		ctx context.Context,
		topic string,
		consumerGroup string,
		handler func(context.Context, contractsv1.Envelope) error,
	) error
}

// runtime holds everything both processes share.
type runtime struct {
	cfg      config.Config
	logger   *slog.Logger
	postgres *db.Postgres
	redis    *redis.Client
	bus      eventBus
	workflow workflowservice.Module
	review   reviewservice.Module
	tracing  func(context.Context) error
}

func buildRuntime(ctx context.Context, process string) (*runtime, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	level, err := cfg.SlogLevel()
	if err != nil {
		return nil, err
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})).
		With("service", cfg.ServiceName, "process", process)
	slog.SetDefault(logger)

	rt := &runtime{cfg: cfg, logger: logger}
	rt.tracing, err = observability.Setup(ctx, cfg.ServiceName+"-"+process, cfg.OTelEndpoint, cfg.OTelEnabled)
	if err != nil {
		return nil, fmt.Errorf("setup tracing: %w", err)
	}

	catalog, err := definition.NewCatalog(cfg.ProcessDefinitionPath)
	if err != nil {
		rt.close()
		return nil, err
	}

	bus, err := rt.buildBus(ctx, process)
	if err != nil {
		rt.close()
		return nil, err
	}
	rt.bus = bus

	if cfg.UsesPostgres() {
		err = rt.wirePostgres(ctx, catalog, bus)
	} else {
		rt.wireMemory(catalog, bus)
	}
	if err != nil {
		rt.close()
		return nil, err
	}

	logger.Info("runtime wired",
		"event", "bootstrap_runtime_wired",
		"module", "internal/app/bootstrap",
		"layer", "platform",
		"store", storeKind(cfg),
		"event_bus", cfg.EventBus,
		"process_id", catalog.Definition().ProcessID,
		"process_states", catalog.Definition().Total(),
	)
	return rt, nil
}

func (rt *runtime) buildBus(ctx context.Context, process string) (eventBus, error) {
	if rt.cfg.EventBus != config.EventBusRedis {
		return messaging.NewBus(rt.logger), nil
	}
	rt.redis = redis.NewClient(&redis.Options{Addr: rt.cfg.RedisAddr})
	hostname, _ := os.Hostname()
	streams := messaging.NewRedisStreams(rt.redis, rt.cfg.RedisStreamPrefix, rt.logger,
		messaging.WithConsumerName(process+"-"+hostname))
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := streams.Ping(pingCtx); err != nil {
		return nil, fmt.Errorf("connect redis %s: %w", rt.cfg.RedisAddr, err)
	}
	return streams, nil
}

func (rt *runtime) wirePostgres(ctx context.Context, catalog *definition.Catalog, bus eventBus) error {
	pg, err := db.Connect(rt.cfg.DatabaseURL, db.Options{
		MaxOpenConns:    20,
		MaxIdleConns:    5,
		ConnMaxLifetime: 30 * time.Minute,
	})
	if err != nil {
		return err
	}
	rt.postgres = pg

	applied, err := db.Migrate(ctx, pg.DB)
	if err != nil {
		return err
	}
	if len(applied) > 0 {
		rt.logger.Info("database migrations applied",
			"event", "bootstrap_migrations_applied",
			"module", "internal/app/bootstrap",
			"layer", "platform",
			"migrations", applied,
		)
	}

	workflowRepo := workflowpostgres.NewRepository(pg.DB, rt.logger)
	rt.workflow = workflowservice.NewModule(workflowservice.Dependencies{
		Catalog:         catalog,
		Workflows:       workflowRepo,
		Gates:           workflowRepo,
		Outbox:          workflowRepo,
		Dedup:           workflowRepo,
		Publisher:       bus,
		Subscriber:      bus,
		Clock:           workflowpostgres.SystemClock{},
		IDGenerator:     workflowpostgres.UUIDGenerator{},
		OutboxBatchSize: rt.cfg.OutboxBatchSize,
		DedupTTL:        rt.cfg.ConsumerDedupTTL,
		Logger:          rt.logger,
	})

	reviewRepo := reviewpostgres.NewRepository(pg.DB, rt.logger)
	rt.review = reviewservice.NewModule(reviewservice.Dependencies{
		Artifacts:       reviewRepo,
		Outbox:          reviewRepo,
		Dedup:           reviewRepo,
		Publisher:       bus,
		Subscriber:      bus,
		Clock:           reviewRepo,
		IDGenerator:     reviewRepo,
		OutboxBatchSize: rt.cfg.OutboxBatchSize,
		DedupTTL:        rt.cfg.ConsumerDedupTTL,
		Logger:          rt.logger,
	})
	return nil
}

func (rt *runtime) wireMemory(catalog *definition.Catalog, bus eventBus) {
	workflowStore := workflowmemory.NewStore()
	rt.workflow = workflowservice.NewModule(workflowservice.Dependencies{
		Catalog:         catalog,
		Workflows:       workflowStore,
		Gates:           workflowStore,
		Outbox:          workflowStore,
		Dedup:           workflowStore,
		Publisher:       bus,
		Subscriber:      bus,
		Clock:           workflowStore,
		IDGenerator:     workflowStore,
		OutboxBatchSize: rt.cfg.OutboxBatchSize,
		DedupTTL:        rt.cfg.ConsumerDedupTTL,
		Logger:          rt.logger,
	})
	rt.workflow.Store = workflowStore

	reviewStore := reviewmemory.NewStore()
	rt.review = reviewservice.NewModule(reviewservice.Dependencies{
		Artifacts:       reviewStore,
		Outbox:          reviewStore,
		Dedup:           reviewStore,
		Publisher:       bus,
		Subscriber:      bus,
		Clock:           reviewStore,
		IDGenerator:     reviewStore,
		OutboxBatchSize: rt.cfg.OutboxBatchSize,
		DedupTTL:        rt.cfg.ConsumerDedupTTL,
		Logger:          rt.logger,
	})
	rt.review.Store = reviewStore
}

func (rt *runtime) close() error {
	var errs []error
	if rt.tracing != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		errs = append(errs, rt.tracing(ctx))
		cancel()
	}
	if rt.redis != nil {
		errs = append(errs, rt.redis.Close())
	}
	if rt.postgres != nil {
		errs = append(errs, rt.postgres.Close())
	}
	return errors.Join(errs...)
}

func storeKind(cfg config.Config) string {
	if cfg.UsesPostgres() {
		return "postgres"
	}
	return "memory"
}
