package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/riverqueue/river"
	"go.uber.org/zap"

	"github.com/abeyonalaja/waste-tracking-service-sub010/internal/batch"
	"github.com/abeyonalaja/waste-tracking-service-sub010/internal/pkg/logger"
)

// BatchSweepArgs is a periodic maintenance job that re-dispatches batches
// stuck in Processing or Submitting.
type BatchSweepArgs struct{}

// Kind returns the job kind identifier for the stale batch sweep.
func (BatchSweepArgs) Kind() string { return "batch_sweep" }

// InsertOpts ensures at most one sweep is enqueued per minute.
func (BatchSweepArgs) InsertOpts() river.InsertOpts {
	return river.InsertOpts{
		Queue:       river.QueueDefault,
		MaxAttempts: 1,
		UniqueOpts: river.UniqueOpts{
			ByPeriod: time.Minute,
			ByQueue:  true,
			ByArgs:   true,
		},
	}
}

// BatchSweepWorker re-dispatches stale batches.
type BatchSweepWorker struct {
	river.WorkerDefaults[BatchSweepArgs]
	svc        *batch.Service
	staleAfter time.Duration
	limit      int
}

// NewBatchSweepWorker creates a sweep worker. Non-positive values fall back
// to the defaults.
func NewBatchSweepWorker(svc *batch.Service, staleAfter time.Duration, limit int) *BatchSweepWorker {
	if staleAfter <= 0 {
		staleAfter = DefaultStaleAfter
	}
	if limit <= 0 {
		limit = DefaultSweepLimit
	}
	return &BatchSweepWorker{svc: svc, staleAfter: staleAfter, limit: limit}
}

// Work runs one sweep.
func (w *BatchSweepWorker) Work(ctx context.Context, _ *river.Job[BatchSweepArgs]) error {
	return w.sweep(ctx)
}

// Loop sweeps every interval until ctx is done. Deployments without River
// run it on the general worker pool.
func (w *BatchSweepWorker) Loop(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = DefaultSweepInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		if err := w.sweep(ctx); err != nil && ctx.Err() == nil {
			logger.Warn("stale batch sweep failed", zap.Error(err))
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func (w *BatchSweepWorker) sweep(ctx context.Context) error {
	if w == nil || w.svc == nil {
		return fmt.Errorf("batch sweep worker is not initialized")
	}
	n, err := w.svc.Sweep(ctx, w.staleAfter, w.limit)
	if err != nil {
		return fmt.Errorf("sweep stale batches: %w", err)
	}
	if n > 0 {
		logger.Info("stale batch sweep completed",
			zap.Int("dispatched", n),
			zap.Duration("stale_after", w.staleAfter),
		)
	}
	return nil
}
