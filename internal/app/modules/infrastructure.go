package modules

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/riverqueue/river"
	"go.uber.org/zap"

	"github.com/abeyonalaja/waste-tracking-service-sub010/internal/batch"
	"github.com/abeyonalaja/waste-tracking-service-sub010/internal/config"
	"github.com/abeyonalaja/waste-tracking-service-sub010/internal/infrastructure"
	"github.com/abeyonalaja/waste-tracking-service-sub010/internal/pkg/logger"
	"github.com/abeyonalaja/waste-tracking-service-sub010/internal/pkg/metrics"
	"github.com/abeyonalaja/waste-tracking-service-sub010/internal/pkg/worker"
	"github.com/abeyonalaja/waste-tracking-service-sub010/internal/repository/memory"
	"github.com/abeyonalaja/waste-tracking-service-sub010/internal/repository/postgres"
)

// Infrastructure holds shared cross-cutting dependencies for all modules.
// It is a provider, not a Module.
type Infrastructure struct {
	Config  *config.Config
	Pools   *worker.Pools
	Metrics *metrics.Recorder

	Store       batch.Store
	Submissions batch.SubmissionCreator

	// Set only for the postgres store driver.
	DB          *infrastructure.DatabaseClients
	Events      *postgres.EventLog
	RiverClient *river.Client[pgx.Tx]
}

// NewInfrastructure initializes the record stores, worker pools and metrics.
func NewInfrastructure(ctx context.Context, cfg *config.Config) (*Infrastructure, error) {
	pools, err := worker.NewPools(ctx, worker.PoolConfig{
		GeneralPoolSize:    cfg.Worker.GeneralPoolSize,
		ValidationPoolSize: cfg.Worker.ValidationPoolSize,
	})
	if err != nil {
		return nil, fmt.Errorf("init worker pools: %w", err)
	}

	infra := &Infrastructure{
		Config:  cfg,
		Pools:   pools,
		Metrics: metrics.New(),
	}

	switch cfg.Store.Driver {
	case config.StorePostgres:
		db, err := infrastructure.NewDatabaseClients(ctx, cfg.Database)
		if err != nil {
			pools.Shutdown()
			return nil, fmt.Errorf("init database: %w", err)
		}
		if cfg.Database.AutoMigrate {
			if err := db.AutoMigrate(ctx); err != nil {
				db.Close()
				pools.Shutdown()
				return nil, fmt.Errorf("auto-migrate: %w", err)
			}
		}
		infra.DB = db
		infra.Store = postgres.NewStore(db.Pool)
		infra.Submissions = postgres.NewSubmissionStore(db.Pool)
		infra.Events = postgres.NewEventLog(db.Pool)
	default:
		infra.Store = memory.NewStore()
		infra.Submissions = memory.NewSubmissionStore()
	}

	logger.Info("Infrastructure initialized", zap.String("store", cfg.Store.Driver))
	return infra, nil
}

// InitRiver initializes the River client on top of a prepared worker
// registry. It is a no-op for the memory store driver.
func (i *Infrastructure) InitRiver(workers *river.Workers, periodic []*river.PeriodicJob) error {
	if i == nil || i.Config == nil {
		return fmt.Errorf("infrastructure is not initialized")
	}
	if i.DB == nil {
		return nil
	}
	if err := i.DB.InitRiverClient(workers, periodic, i.Config.River); err != nil {
		return fmt.Errorf("init river: %w", err)
	}
	i.RiverClient = i.DB.RiverClient
	return nil
}

// Close releases infra resources in reverse dependency order.
func (i *Infrastructure) Close() {
	if i == nil {
		return
	}
	if i.Pools != nil {
		i.Pools.Shutdown()
	}
	if i.DB != nil {
		i.DB.Close()
	}
}
