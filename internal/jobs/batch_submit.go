package jobs

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/riverqueue/river"
	"go.uber.org/zap"

	"github.com/abeyonalaja/waste-tracking-service-sub010/internal/batch"
	"github.com/abeyonalaja/waste-tracking-service-sub010/internal/pkg/logger"
)

// maxSubmitBackoff caps the delay between submission attempts.
const maxSubmitBackoff = 5 * time.Minute

// SubmitBatchArgs carries only the batch identity.
type SubmitBatchArgs struct {
	AccountID string `json:"account_id"`
	BatchID   string `json:"batch_id"`
}

// Kind returns the job kind identifier for batch submission.
func (SubmitBatchArgs) Kind() string { return "batch_submit" }

// InsertOpts returns default insert options for submission jobs.
func (SubmitBatchArgs) InsertOpts() river.InsertOpts {
	return river.InsertOpts{
		Queue:       QueueSubmission,
		MaxAttempts: DefaultMaxSubmitAttempts,
	}
}

// SubmitBatchWorker creates the pending submissions of a Submitting batch.
// A partial attempt fails the job so River retries the remaining rows.
type SubmitBatchWorker struct {
	river.WorkerDefaults[SubmitBatchArgs]
	svc *batch.Service
}

// NewSubmitBatchWorker creates a SubmitBatchWorker.
func NewSubmitBatchWorker(svc *batch.Service) *SubmitBatchWorker {
	return &SubmitBatchWorker{svc: svc}
}

// Work runs one submission attempt.
func (w *SubmitBatchWorker) Work(ctx context.Context, job *river.Job[SubmitBatchArgs]) error {
	if w == nil || w.svc == nil {
		return fmt.Errorf("submit batch worker is not initialized")
	}

	err := w.svc.Submit(ctx, job.Args.AccountID, job.Args.BatchID)
	if err == nil {
		return nil
	}
	if errors.Is(err, batch.ErrSubmissionIncomplete) && job.Attempt >= job.MaxAttempts {
		logger.Warn("Batch submission attempts exhausted, left for sweep",
			zap.String("batch_id", job.Args.BatchID),
			zap.Int("attempt", job.Attempt),
		)
	}
	return fmt.Errorf("submit batch %s: %w", job.Args.BatchID, err)
}

// NextRetry backs off exponentially from one second up to maxSubmitBackoff.
func (w *SubmitBatchWorker) NextRetry(job *river.Job[SubmitBatchArgs]) time.Time {
	return time.Now().Add(submitBackoff(job.Attempt))
}

func submitBackoff(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	if attempt > 9 {
		return maxSubmitBackoff
	}
	d := time.Second << (attempt - 1)
	if d > maxSubmitBackoff {
		return maxSubmitBackoff
	}
	return d
}
