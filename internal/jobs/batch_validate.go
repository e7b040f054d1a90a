package jobs

import (
	"context"
	"fmt"

	"github.com/riverqueue/river"
	"go.uber.org/zap"

	"github.com/abeyonalaja/waste-tracking-service-sub010/internal/batch"
	"github.com/abeyonalaja/waste-tracking-service-sub010/internal/pkg/logger"
)

// ValidateBatchArgs carries only the batch identity; the worker reads the
// content from the store.
type ValidateBatchArgs struct {
	AccountID string `json:"account_id"`
	BatchID   string `json:"batch_id"`
}

// Kind returns the job kind identifier for batch validation.
func (ValidateBatchArgs) Kind() string { return "batch_validate" }

// InsertOpts returns default insert options for validation jobs.
func (ValidateBatchArgs) InsertOpts() river.InsertOpts {
	return river.InsertOpts{
		Queue:       QueueValidation,
		MaxAttempts: 5,
	}
}

// ValidateBatchWorker validates the content of a Processing batch.
type ValidateBatchWorker struct {
	river.WorkerDefaults[ValidateBatchArgs]
	svc *batch.Service
}

// NewValidateBatchWorker creates a ValidateBatchWorker.
func NewValidateBatchWorker(svc *batch.Service) *ValidateBatchWorker {
	return &ValidateBatchWorker{svc: svc}
}

// Work runs validation. Validate is a no-op for a batch that has moved on,
// so redelivered jobs are harmless.
func (w *ValidateBatchWorker) Work(ctx context.Context, job *river.Job[ValidateBatchArgs]) error {
	if w == nil || w.svc == nil {
		return fmt.Errorf("validate batch worker is not initialized")
	}
	logger.Debug("Processing batch validation job",
		zap.String("batch_id", job.Args.BatchID),
		zap.Int("attempt", job.Attempt),
	)
	if err := w.svc.Validate(ctx, job.Args.AccountID, job.Args.BatchID); err != nil {
		return fmt.Errorf("validate batch %s: %w", job.Args.BatchID, err)
	}
	return nil
}
