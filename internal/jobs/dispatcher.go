package jobs

import (
	"context"
	"fmt"

	"github.com/riverqueue/river"
	"github.com/riverqueue/river/rivertype"

	"github.com/abeyonalaja/waste-tracking-service-sub010/internal/batch"
)

// Inserter is the part of river.Client used to enqueue jobs.
type Inserter interface {
	Insert(ctx context.Context, args river.JobArgs, opts *river.InsertOpts) (*rivertype.JobInsertResult, error)
}

// Dispatcher enqueues batch steps as River jobs.
type Dispatcher struct {
	client            Inserter
	maxSubmitAttempts int
}

var _ batch.Dispatcher = (*Dispatcher)(nil)

// NewDispatcher creates a Dispatcher.
func NewDispatcher(client Inserter, cfg Config) *Dispatcher {
	return &Dispatcher{client: client, maxSubmitAttempts: cfg.withDefaults().MaxSubmitAttempts}
}

// DispatchValidation implements batch.Dispatcher.
func (d *Dispatcher) DispatchValidation(ctx context.Context, accountID, batchID string) error {
	if _, err := d.client.Insert(ctx, ValidateBatchArgs{AccountID: accountID, BatchID: batchID}, nil); err != nil {
		return fmt.Errorf("enqueue validation of batch %s: %w", batchID, err)
	}
	return nil
}

// DispatchSubmission implements batch.Dispatcher.
func (d *Dispatcher) DispatchSubmission(ctx context.Context, accountID, batchID string) error {
	opts := SubmitBatchArgs{}.InsertOpts()
	opts.MaxAttempts = d.maxSubmitAttempts
	if _, err := d.client.Insert(ctx, SubmitBatchArgs{AccountID: accountID, BatchID: batchID}, &opts); err != nil {
		return fmt.Errorf("enqueue submission of batch %s: %w", batchID, err)
	}
	return nil
}
