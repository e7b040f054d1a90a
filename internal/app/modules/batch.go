package modules

import (
	"context"

	"github.com/riverqueue/river"
	"go.uber.org/zap"

	"github.com/abeyonalaja/waste-tracking-service-sub010/internal/api/handlers"
	"github.com/abeyonalaja/waste-tracking-service-sub010/internal/batch"
	"github.com/abeyonalaja/waste-tracking-service-sub010/internal/domain"
	"github.com/abeyonalaja/waste-tracking-service-sub010/internal/jobs"
	"github.com/abeyonalaja/waste-tracking-service-sub010/internal/pkg/logger"
	"github.com/abeyonalaja/waste-tracking-service-sub010/internal/pkg/worker"
	"github.com/abeyonalaja/waste-tracking-service-sub010/internal/rpc"
	"github.com/abeyonalaja/waste-tracking-service-sub010/internal/usecase"
	"github.com/abeyonalaja/waste-tracking-service-sub010/internal/validation"
)

// recordedEvents are persisted to the batch event log.
var recordedEvents = []domain.EventType{
	domain.EventBatchCreated,
	domain.EventBatchContentReceived,
	domain.EventBatchValidated,
	domain.EventBatchFinalized,
	domain.EventBatchSubmitted,
	domain.EventSubmissionAttempted,
}

// BatchModule wires the batch service, its RPC surface, the facade used by
// the public API and the batch jobs.
type BatchModule struct {
	infra   *Infrastructure
	jobsCfg jobs.Config

	Service *batch.Service
	RPC     *rpc.Server
	Facade  *usecase.BatchFacade
}

// NewBatchModule creates the batch module. The facade calls the batch
// service over HTTP when rpc.batch_service_url is set and in process
// otherwise.
func NewBatchModule(infra *Infrastructure) *BatchModule {
	cfg := infra.Config

	svc := batch.NewService(infra.Store, infra.Submissions, validation.New(), batch.Config{
		SubmitConcurrency: cfg.Batch.SubmitConcurrency,
		MaxUploadBytes:    cfg.Batch.MaxUploadBytes,
	}).WithMetrics(infra.Metrics)

	events := domain.NewEventDispatcher()
	if infra.Events != nil {
		for _, et := range recordedEvents {
			events.Register(et, infra.Events.Record)
		}
	}
	svc.WithEvents(events)

	server := rpc.NewServer(svc)
	var client rpc.BatchClient = rpc.NewLocalClient(server)
	if cfg.RPC.BatchServiceURL != "" {
		client = rpc.NewHTTPClient(cfg.RPC.BatchServiceURL, cfg.RPC.Timeout)
		logger.Info("Batch facade uses remote batch service", zap.String("url", cfg.RPC.BatchServiceURL))
	}

	return &BatchModule{
		infra: infra,
		jobsCfg: jobs.Config{
			MaxSubmitAttempts: cfg.Batch.MaxSubmitAttempts,
			SweepInterval:     cfg.River.SweepInterval,
			StaleAfter:        cfg.River.StaleAfter,
			SweepLimit:        cfg.River.SweepLimit,
		},
		Service: svc,
		RPC:     server,
		Facade:  usecase.NewBatchFacade(client),
	}
}

func (m *BatchModule) Name() string { return "batch" }

func (m *BatchModule) ContributeServerDeps(deps *handlers.ServerDeps) {
	if deps == nil {
		return
	}
	deps.Batches = m.Facade
}

func (m *BatchModule) RegisterWorkers(workers *river.Workers) {
	if workers == nil || m == nil {
		return
	}
	jobs.Register(workers, m.Service, m.jobsCfg)
}

func (m *BatchModule) PeriodicJobs() []*river.PeriodicJob {
	return jobs.PeriodicJobs(m.jobsCfg)
}

// BindDispatcher schedules batch steps on River when a River client is
// available and on the validation worker pool otherwise.
func (m *BatchModule) BindDispatcher() {
	if m.infra.RiverClient != nil {
		m.Service.WithDispatcher(jobs.NewDispatcher(m.infra.RiverClient, m.jobsCfg))
		return
	}
	m.Service.WithDispatcher(batch.NewPoolDispatcher(m.infra.Pools, m.Service))
}

// Start runs the stale batch sweep on the general pool when River is not
// there to schedule it. The loop stops when the pools shut down.
func (m *BatchModule) Start(context.Context) error {
	if m.infra.RiverClient != nil {
		return nil
	}
	interval := m.jobsCfg.SweepInterval
	if interval <= 0 {
		interval = jobs.DefaultSweepInterval
	}
	sweeper := jobs.NewBatchSweepWorker(m.Service, m.jobsCfg.StaleAfter, m.jobsCfg.SweepLimit)
	return m.infra.Pools.SubmitDetached(worker.PoolGeneral, func(ctx context.Context) {
		sweeper.Loop(ctx, interval)
	})
}

func (m *BatchModule) Shutdown(context.Context) error { return nil }
