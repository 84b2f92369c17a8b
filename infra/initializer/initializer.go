package initializer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/amirasaad/bankcore/infra"
	infraaudit "github.com/amirasaad/bankcore/infra/audit"
	infracache "github.com/amirasaad/bankcore/infra/cache"
	inframetrics "github.com/amirasaad/bankcore/infra/metrics"
	infrarepository "github.com/amirasaad/bankcore/infra/repository"
	"github.com/amirasaad/bankcore/infra/repository/memory"
	"github.com/amirasaad/bankcore/pkg/audit"
	"github.com/amirasaad/bankcore/pkg/cache"
	"github.com/amirasaad/bankcore/pkg/config"
	"github.com/amirasaad/bankcore/pkg/reference"
	"github.com/amirasaad/bankcore/pkg/repository"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
)

// Cleanup releases what InitializeDependencies opened.
type Cleanup func() error

type closers []func() error

func (c closers) close() error {
	var errs []error
	for i := len(c) - 1; i >= 0; i-- {
		if err := c[i](); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// InitializeDependencies builds the store, cache, audit sink, reference
// generator and metrics collector selected by cfg. Metrics register with reg;
// a nil reg uses a fresh registry.
func InitializeDependencies(cfg *config.App, reg prometheus.Registerer) (deps *config.Deps, cleanup Cleanup, err error) {
	logger := setupLogger(cfg.Log)
	deps = &config.Deps{Logger: logger, Config: cfg}

	var toClose closers
	defer func() {
		if err != nil {
			if cerr := toClose.close(); cerr != nil {
				logger.Error("Failed to release dependencies", "error", cerr)
			}
			deps = nil
		}
	}()

	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	collector, err := inframetrics.NewPrometheusCollector(cfg.Metrics.Namespace, reg)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize metrics: %w", err)
	}
	deps.Metrics = collector

	deps.References = reference.New(reference.WithPrefix(cfg.Reference.Prefix))

	deps.Uow, err = initStore(cfg, logger, &toClose)
	if err != nil {
		return nil, nil, err
	}

	deps.Cache, err = initCache(cfg, collector, logger, &toClose)
	if err != nil {
		return nil, nil, err
	}

	deps.Audit, err = initAudit(cfg, deps.Uow, logger, &toClose)
	if err != nil {
		return nil, nil, err
	}

	logger.Info("Dependencies initialized",
		"store", cfg.Store,
		"cache_driver", cfg.Cache.Driver,
		"audit_sink", cfg.AuditSink,
	)
	return deps, toClose.close, nil
}

func initStore(cfg *config.App, logger *slog.Logger, toClose *closers) (repository.UnitOfWork, error) {
	if cfg.Store == config.StoreMemory {
		logger.Info("Using in-memory ledger store")
		return memory.NewStore(), nil
	}

	db, err := infra.NewDBConnection(cfg.DB, cfg.Env)
	if err != nil {
		logger.Error("Failed to initialize database", "error", err)
		return nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	*toClose = append(*toClose, sqlDB.Close)

	if cfg.DB.AutoMigrate {
		if err := infra.Migrate(db); err != nil {
			return nil, fmt.Errorf("failed to migrate database: %w", err)
		}
	}
	return infrarepository.NewUoW(db), nil
}

func initCache(
	cfg *config.App,
	collector *inframetrics.PrometheusCollector,
	logger *slog.Logger,
	toClose *closers,
) (cache.Cache, error) {
	switch cfg.Cache.Driver {
	case config.CacheNone:
		return cache.Noop{}, nil
	case config.CacheMemory:
		c := infracache.NewMemoryCache(cfg.Cache.CleanupInterval, logger)
		*toClose = append(*toClose, c.Close)
		return c, nil
	}

	opts, err := redis.ParseURL(cfg.Redis.URL)
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_URL: %w", err)
	}
	opts.PoolSize = cfg.Redis.PoolSize
	opts.DialTimeout = cfg.Redis.DialTimeout
	opts.ReadTimeout = cfg.Redis.ReadTimeout
	opts.WriteTimeout = cfg.Redis.WriteTimeout

	rc := infracache.NewRedisCache(redis.NewClient(opts), cfg.Redis.KeyPrefix, logger)
	*toClose = append(*toClose, rc.Close)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := rc.Ping(ctx); err != nil {
		// The breaker keeps an unreachable cache off the request path.
		logger.Warn("Redis is not reachable, continuing without a warm cache", "error", err)
	}

	return infracache.NewResilientCache(rc, infracache.ResilientConfig{
		Name:                config.CacheRedis,
		Timeout:             cfg.Breaker.Timeout,
		MaxRequests:         cfg.Breaker.MaxRequests,
		Interval:            cfg.Breaker.Interval,
		OpenTimeout:         cfg.Breaker.OpenTimeout,
		ConsecutiveFailures: cfg.Breaker.ConsecutiveFailures,
	}, collector, logger), nil
}

func initAudit(
	cfg *config.App,
	uow repository.UnitOfWork,
	logger *slog.Logger,
	toClose *closers,
) (audit.Sink, error) {
	logSink := audit.NewLogSink(logger)
	switch cfg.AuditSink {
	case config.AuditStore:
		return audit.Multi{logSink, audit.NewStoreSink(uow.AuditRepository())}, nil
	case config.AuditKafka:
		k, err := infraaudit.NewKafkaSink(cfg.Kafka.Brokers, cfg.Kafka.Topic, logger)
		if err != nil {
			return nil, err
		}
		*toClose = append(*toClose, k.Close)
		return audit.Multi{logSink, k}, nil
	default:
		return logSink, nil
	}
}
