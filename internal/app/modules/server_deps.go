package modules

import (
	"github.com/abeyonalaja/waste-tracking-service-sub010/internal/api/handlers"
	"github.com/abeyonalaja/waste-tracking-service-sub010/internal/config"
)

// NewServerDeps builds base server deps then lets each module contribute explicit wiring.
func NewServerDeps(cfg *config.Config, infra *Infrastructure, mods []Module) handlers.ServerDeps {
	deps := handlers.ServerDeps{
		Checks:         map[string]handlers.HealthCheck{},
		MaxUploadBytes: cfg.Batch.MaxUploadBytes,
	}
	if infra.DB != nil && infra.DB.Pool != nil {
		deps.Checks["database"] = infra.DB.Pool.Ping
	}
	for _, mod := range mods {
		if mod == nil {
			continue
		}
		contributor, ok := mod.(ServerDepsContributor)
		if !ok {
			continue
		}
		contributor.ContributeServerDeps(&deps)
	}
	return deps
}
