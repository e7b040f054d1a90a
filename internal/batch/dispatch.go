package batch

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/abeyonalaja/waste-tracking-service-sub010/internal/pkg/logger"
	"github.com/abeyonalaja/waste-tracking-service-sub010/internal/pkg/worker"
)

// Dispatcher schedules the asynchronous steps of a batch. A dispatch that
// fails is not fatal: the stale batch sweep picks the batch up again.
type Dispatcher interface {
	DispatchValidation(ctx context.Context, accountID, batchID string) error
	DispatchSubmission(ctx context.Context, accountID, batchID string) error
}

type noopDispatcher struct{}

func (noopDispatcher) DispatchValidation(context.Context, string, string) error { return nil }
func (noopDispatcher) DispatchSubmission(context.Context, string, string) error { return nil }

// InlineDispatcher runs each step synchronously in the caller. Used by the
// CLI and tests.
type InlineDispatcher struct {
	Service *Service
}

// DispatchValidation implements Dispatcher.
func (d InlineDispatcher) DispatchValidation(ctx context.Context, accountID, batchID string) error {
	return d.Service.Validate(ctx, accountID, batchID)
}

// DispatchSubmission implements Dispatcher.
func (d InlineDispatcher) DispatchSubmission(ctx context.Context, accountID, batchID string) error {
	return d.Service.Submit(ctx, accountID, batchID)
}

// PoolDispatcher runs each step on the validation worker pool, detached
// from the request that scheduled it.
type PoolDispatcher struct {
	pools   *worker.Pools
	service *Service
}

// NewPoolDispatcher creates a PoolDispatcher.
func NewPoolDispatcher(pools *worker.Pools, service *Service) *PoolDispatcher {
	return &PoolDispatcher{pools: pools, service: service}
}

// DispatchValidation implements Dispatcher.
func (d *PoolDispatcher) DispatchValidation(_ context.Context, accountID, batchID string) error {
	return d.submit("validate", accountID, batchID, d.service.Validate)
}

// DispatchSubmission implements Dispatcher.
func (d *PoolDispatcher) DispatchSubmission(_ context.Context, accountID, batchID string) error {
	return d.submit("submit", accountID, batchID, d.service.Submit)
}

func (d *PoolDispatcher) submit(step, accountID, batchID string, fn func(ctx context.Context, accountID, batchID string) error) error {
	err := d.pools.SubmitDetached(worker.PoolValidation, func(ctx context.Context) {
		if err := fn(ctx, accountID, batchID); err != nil {
			logger.ForBatch(accountID, batchID).Warn("Batch step failed",
				zap.String("step", step),
				zap.Error(err),
			)
		}
	})
	if err != nil {
		return fmt.Errorf("dispatch %s: %w", step, err)
	}
	return nil
}
