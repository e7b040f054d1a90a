package batch

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/abeyonalaja/waste-tracking-service-sub010/internal/domain"
	apperrors "github.com/abeyonalaja/waste-tracking-service-sub010/internal/pkg/errors"
	"github.com/abeyonalaja/waste-tracking-service-sub010/internal/pkg/logger"
)

// ErrSubmissionIncomplete is returned by Submit when some rows are still
// pending after an attempt. The caller retries; created rows are kept.
var ErrSubmissionIncomplete = errors.New("batch submission incomplete")

// Submit creates the submission of every pending row of a Submitting
// batch, at most Config.SubmitConcurrency at a time. Created rows are
// recorded even when others fail; the batch becomes Submitted once no row
// is pending.
func (s *Service) Submit(ctx context.Context, accountID, batchID string) error {
	log := logger.ForBatch(accountID, batchID)

	b, err := s.load(ctx, accountID, batchID)
	if err != nil {
		return err
	}
	st, ok := b.State.(domain.Submitting)
	if !ok {
		log.Debug("Submission skipped", zap.String("status", string(b.State.Status())))
		return nil
	}

	entries := append([]domain.SubmissionEntry(nil), st.Submissions...)
	declaredAt := s.now().UTC()

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.SubmitConcurrency)
	for i := range entries {
		if entries[i].Created != nil || entries[i].Pending == nil {
			continue
		}
		e := &entries[i]
		g.Go(func() error {
			summary, err := s.submissions.CreateSubmission(gctx, SubmissionRequest{
				AccountID:     accountID,
				BatchID:       batchID,
				TransactionID: st.TransactionID,
				RowNumber:     e.RowNumber,
				HasEstimates:  st.HasEstimates,
				DeclaredAt:    declaredAt,
				Submission:    *e.Pending,
			})
			e.Attempts++
			if err != nil {
				e.LastError = err.Error()
				s.metrics.Submission(false)
				return nil
			}
			e.Created, e.Pending, e.LastError = &summary, nil, ""
			s.metrics.Submission(true)
			return nil
		})
	}
	_ = g.Wait()

	var (
		created []domain.CreatedSubmissionSummary
		failed  int
	)
	for _, e := range entries {
		if e.Created == nil {
			failed++
			continue
		}
		created = append(created, *e.Created)
	}

	now := s.now().UTC()
	var next domain.BatchState
	eventType := domain.EventSubmissionAttempted
	if failed == 0 {
		sort.SliceStable(entries, func(a, c int) bool { return entries[a].RowNumber < entries[c].RowNumber })
		summaries := make([]domain.CreatedSubmissionSummary, len(entries))
		for i, e := range entries {
			summaries[i] = *e.Created
		}
		next = domain.Submitted{
			Timestamp:     now,
			HasEstimates:  st.HasEstimates,
			TransactionID: st.TransactionID,
			Submissions:   summaries,
		}
		eventType = domain.EventBatchSubmitted
	} else {
		next = domain.Submitting{
			Timestamp:     now,
			HasEstimates:  st.HasEstimates,
			TransactionID: st.TransactionID,
			Submissions:   entries,
		}
	}

	if err := b.Transition(next); err != nil {
		return fmt.Errorf("submit batch %s: %w", batchID, err)
	}
	if err := s.store.Update(ctx, b); err != nil {
		if errors.Is(err, apperrors.ErrVersionConflict) {
			// Creation is idempotent per row, so the winner's view is
			// complete or will be completed by its own retry.
			log.Info("Concurrent submission attempt won, result dropped")
			return nil
		}
		return fmt.Errorf("store submission progress: %w", err)
	}

	s.metrics.Transition(string(next.Status()))
	s.publish(ctx, b, eventType, domain.TransitionPayload{
		From:     domain.StatusSubmitting,
		To:       next.Status(),
		RowCount: len(entries),
		Created:  len(created),
		Failed:   failed,
	})

	if failed > 0 {
		log.Warn("Batch submission incomplete",
			zap.Int("created", len(created)),
			zap.Int("pending", failed),
		)
		return fmt.Errorf("%w: %d of %d rows pending", ErrSubmissionIncomplete, failed, len(entries))
	}
	log.Info("Batch submitted",
		zap.String("transaction_id", st.TransactionID),
		zap.Int("submissions", len(created)),
	)
	return nil
}
