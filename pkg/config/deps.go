package config

import (
	"log/slog"

	"github.com/amirasaad/bankcore/pkg/audit"
	"github.com/amirasaad/bankcore/pkg/cache"
	"github.com/amirasaad/bankcore/pkg/metrics"
	"github.com/amirasaad/bankcore/pkg/reference"
	"github.com/amirasaad/bankcore/pkg/repository"
)

// Deps holds all infrastructure dependencies for building the services.
// Cache, Audit, References and Metrics may be nil; services fall back to
// a no-op cache, a slog audit sink, a default generator and a no-op collector.
type Deps struct {
	Uow        repository.UnitOfWork
	Cache      cache.Cache
	Audit      audit.Sink
	References *reference.Generator
	Metrics    metrics.Collector
	Logger     *slog.Logger
	Config     *App
}
