// Package app is the composition root. Bootstrap stays orchestration-only.
package app

import (
	"context"
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/riverqueue/river"

	"github.com/abeyonalaja/waste-tracking-service-sub010/internal/api/handlers"
	"github.com/abeyonalaja/waste-tracking-service-sub010/internal/app/modules"
	"github.com/abeyonalaja/waste-tracking-service-sub010/internal/config"
	"github.com/abeyonalaja/waste-tracking-service-sub010/internal/infrastructure"
	"github.com/abeyonalaja/waste-tracking-service-sub010/internal/pkg/worker"
)

// Application holds composed application dependencies.
type Application struct {
	Config  *config.Config
	Router  *gin.Engine
	DB      *infrastructure.DatabaseClients
	Pools   *worker.Pools
	Modules []modules.Module
}

// Bootstrap initializes all dependencies using module-oriented manual DI.
func Bootstrap(ctx context.Context, cfg *config.Config) (*Application, error) {
	infra, err := modules.NewInfrastructure(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("init infrastructure: %w", err)
	}

	batchModule := modules.NewBatchModule(infra)
	allModules := []modules.Module{batchModule}

	workers := river.NewWorkers()
	var periodic []*river.PeriodicJob
	for _, mod := range allModules {
		mod.RegisterWorkers(workers)
		if src, ok := mod.(modules.PeriodicJobSource); ok {
			periodic = append(periodic, src.PeriodicJobs()...)
		}
	}
	if err := infra.InitRiver(workers, periodic); err != nil {
		infra.Close()
		return nil, fmt.Errorf("init river workers: %w", err)
	}
	// River needs the workers before the client exists and the service
	// needs the client to dispatch, so the dispatcher is bound last.
	batchModule.BindDispatcher()

	server := handlers.NewServer(modules.NewServerDeps(cfg, infra, allModules))

	return &Application{
		Config:  cfg,
		Router:  newRouter(cfg, server, batchModule.RPC, infra.Metrics),
		DB:      infra.DB,
		Pools:   infra.Pools,
		Modules: allModules,
	}, nil
}
