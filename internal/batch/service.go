// Package batch owns the lifecycle of a bulk upload batch.
//
// A batch moves Processing -> FailedCsvValidation | FailedValidation |
// PassedValidation -> Submitting -> Submitted. Every state write is an
// optimistic compare-and-swap on the batch version; the loser of a race
// either reports a conflict (caller driven operations) or drops its result
// (background steps).
package batch

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/zeebo/xxh3"
	"go.uber.org/zap"

	"github.com/abeyonalaja/waste-tracking-service-sub010/internal/bulkcsv"
	"github.com/abeyonalaja/waste-tracking-service-sub010/internal/codec"
	"github.com/abeyonalaja/waste-tracking-service-sub010/internal/domain"
	apperrors "github.com/abeyonalaja/waste-tracking-service-sub010/internal/pkg/errors"
	"github.com/abeyonalaja/waste-tracking-service-sub010/internal/pkg/logger"
	"github.com/abeyonalaja/waste-tracking-service-sub010/internal/pkg/metrics"
	"github.com/abeyonalaja/waste-tracking-service-sub010/internal/validation"
)

// Defaults for Config zero values.
const (
	DefaultSubmitConcurrency = 8
	DefaultMaxUploadBytes    = 20 << 20
)

// Config tunes the service.
type Config struct {
	// SubmitConcurrency caps concurrent CreateSubmission calls per batch.
	SubmitConcurrency int
	// MaxUploadBytes caps the decoded size of one content upload.
	MaxUploadBytes int
}

// Service implements the batch operations.
type Service struct {
	store       Store
	submissions SubmissionCreator
	validator   *validation.Validator
	dispatcher  Dispatcher
	events      *domain.EventDispatcher
	metrics     *metrics.Recorder
	now         func() time.Time
	cfg         Config
}

// NewService creates a Service. The dispatcher defaults to one that
// schedules nothing; wire one with WithDispatcher.
func NewService(store Store, submissions SubmissionCreator, validator *validation.Validator, cfg Config) *Service {
	if cfg.SubmitConcurrency <= 0 {
		cfg.SubmitConcurrency = DefaultSubmitConcurrency
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = DefaultMaxUploadBytes
	}
	return &Service{
		store:       store,
		submissions: submissions,
		validator:   validator,
		dispatcher:  noopDispatcher{},
		now:         time.Now,
		cfg:         cfg,
	}
}

// WithDispatcher sets how validation and submission are scheduled.
func (s *Service) WithDispatcher(d Dispatcher) *Service {
	s.dispatcher = d
	return s
}

// WithEvents publishes batch events to d (optional dependency).
func (s *Service) WithEvents(d *domain.EventDispatcher) *Service {
	s.events = d
	return s
}

// WithMetrics records pipeline metrics (optional dependency).
func (s *Service) WithMetrics(m *metrics.Recorder) *Service {
	s.metrics = m
	return s
}

// WithClock replaces the wall clock.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// Digest identifies stored content.
func Digest(content codec.Content) string {
	return fmt.Sprintf("%016x", xxh3.Hash(content.Value))
}

// CreateOrAppendContent stores content for a batch and schedules its
// validation. An empty batchID allocates a new batch. An existing batch
// must be in a state that accepts new content. It returns the batch id.
func (s *Service) CreateOrAppendContent(ctx context.Context, accountID, batchID string, content codec.Content) (string, error) {
	if content.Type != codec.ContentTypeCSV {
		return "", apperrors.ErrInvalidInputType()
	}
	raw, err := content.Decode()
	if err != nil {
		return "", apperrors.Wrap(err, apperrors.CodeContentCorrupt, "content could not be decompressed", http.StatusBadRequest)
	}
	if len(raw) == 0 {
		return "", apperrors.ErrNoContent()
	}
	if len(raw) > s.cfg.MaxUploadBytes {
		return "", apperrors.New(apperrors.CodeContentTooLarge,
			fmt.Sprintf("content exceeds %d bytes", s.cfg.MaxUploadBytes), http.StatusRequestEntityTooLarge)
	}

	now := s.now().UTC()
	state := domain.Processing{Timestamp: now, ContentDigest: Digest(content)}

	var (
		b     *domain.Batch
		event = domain.EventBatchContentReceived
		from  domain.BatchStatus
	)
	if batchID == "" {
		b = &domain.Batch{ID: newID(), AccountID: accountID, State: state}
		if err := s.store.Create(ctx, b, content); err != nil {
			return "", fmt.Errorf("create batch: %w", err)
		}
		event = domain.EventBatchCreated
		s.metrics.BatchCreated()
	} else {
		if b, err = s.load(ctx, accountID, batchID); err != nil {
			return "", err
		}
		from = b.State.Status()
		if !from.AcceptsContent() {
			return "", apperrors.ErrInvalidTransition(batchID, string(from), "add content to")
		}
		if err := b.Transition(state); err != nil {
			return "", apperrors.ErrInvalidTransition(batchID, string(from), "add content to")
		}
		if err := s.store.ReplaceContent(ctx, b, content); err != nil {
			return "", storeError(err, batchID)
		}
	}

	s.metrics.Transition(string(domain.StatusProcessing))
	s.publish(ctx, b, event, domain.TransitionPayload{From: from, To: domain.StatusProcessing})
	logger.ForBatch(accountID, b.ID).Info("Batch content received",
		zap.Int("bytes", len(raw)),
		zap.String("digest", state.ContentDigest),
	)

	if err := s.dispatcher.DispatchValidation(ctx, accountID, b.ID); err != nil {
		logger.ForBatch(accountID, b.ID).Warn("Validation dispatch failed, left for sweep", zap.Error(err))
	}
	return b.ID, nil
}

// Validate parses and validates the content of a Processing batch and
// records the outcome. It does nothing for a batch in any other state, for
// a batch whose content changed after it was scheduled, or when a
// concurrent write wins the version race.
func (s *Service) Validate(ctx context.Context, accountID, batchID string) error {
	log := logger.ForBatch(accountID, batchID)

	b, err := s.load(ctx, accountID, batchID)
	if err != nil {
		return err
	}
	processing, ok := b.State.(domain.Processing)
	if !ok {
		log.Debug("Validation skipped", zap.String("status", string(b.State.Status())))
		return nil
	}

	content, err := s.store.Content(ctx, accountID, batchID)
	if err != nil {
		return storeError(err, batchID)
	}
	if processing.ContentDigest != "" && Digest(content) != processing.ContentDigest {
		log.Info("Validation skipped: newer content pending")
		return nil
	}
	raw, err := content.Decode()
	if err != nil {
		return apperrors.Wrap(err, apperrors.CodeContentCorrupt, "stored content could not be decompressed", http.StatusInternalServerError)
	}

	start := time.Now()
	res, err := s.validator.ValidateCSV(raw)
	took := time.Since(start)

	now := s.now().UTC()
	var next domain.BatchState
	payload := domain.TransitionPayload{From: domain.StatusProcessing, DurationMillis: took.Milliseconds()}
	var perr *bulkcsv.ParseError
	switch {
	case errors.As(err, &perr):
		next = domain.FailedCsvValidation{Timestamp: now, Error: perr.Error()}
	case err != nil:
		return fmt.Errorf("validate batch %s: %w", batchID, err)
	default:
		next = res.State(now)
		payload.RowCount = res.Rows
		payload.FailureCount = len(res.Failures)
		payload.FailuresByCode = validation.FailuresByCode(res.Failures)
	}
	payload.To = next.Status()

	if err := b.Transition(next); err != nil {
		return fmt.Errorf("validate batch %s: %w", batchID, err)
	}
	if err := s.store.Update(ctx, b); err != nil {
		if errors.Is(err, apperrors.ErrVersionConflict) {
			log.Info("Stale validation result dropped")
			return nil
		}
		return fmt.Errorf("store validation result: %w", err)
	}

	s.metrics.Validated(res.Rows, validation.FailuresBySection(res.Failures), took)
	s.metrics.Transition(string(payload.To))
	s.publish(ctx, b, domain.EventBatchValidated, payload)
	log.Info("Batch validated",
		zap.String("status", string(payload.To)),
		zap.Int("rows", payload.RowCount),
		zap.Int("failures", payload.FailureCount),
		zap.Duration("took", took),
	)
	return nil
}

// Finalize moves a PassedValidation batch to Submitting and schedules the
// creation of its submissions. Finalizing a batch that is already
// Submitting schedules the pending rows again.
func (s *Service) Finalize(ctx context.Context, accountID, batchID string) error {
	b, err := s.load(ctx, accountID, batchID)
	if err != nil {
		return err
	}

	switch st := b.State.(type) {
	case domain.Submitting:
		logger.ForBatch(accountID, batchID).Info("Finalize repeated, dispatching pending rows",
			zap.Int("pending", len(st.Pending())),
		)
	case domain.PassedValidation:
		entries := make([]domain.SubmissionEntry, len(st.Submissions))
		for i := range st.Submissions {
			sub := st.Submissions[i]
			entries[i] = domain.SubmissionEntry{RowNumber: sub.RowNumber, Pending: &sub}
		}
		now := s.now().UTC()
		next := domain.Submitting{
			Timestamp:     now,
			HasEstimates:  st.HasEstimates,
			TransactionID: NewTransactionID(now),
			Submissions:   entries,
		}
		if err := b.Transition(next); err != nil {
			return apperrors.ErrInvalidTransition(batchID, string(st.Status()), "finalize")
		}
		if err := s.store.Update(ctx, b); err != nil {
			return storeError(err, batchID)
		}
		s.metrics.Transition(string(domain.StatusSubmitting))
		s.publish(ctx, b, domain.EventBatchFinalized, domain.TransitionPayload{
			From:     domain.StatusPassedValidation,
			To:       domain.StatusSubmitting,
			RowCount: len(entries),
		})
		logger.ForBatch(accountID, batchID).Info("Batch finalized",
			zap.String("transaction_id", next.TransactionID),
			zap.Int("rows", len(entries)),
		)
	default:
		return apperrors.ErrInvalidTransition(batchID, string(b.State.Status()), "finalize")
	}

	if err := s.dispatcher.DispatchSubmission(ctx, accountID, batchID); err != nil {
		logger.ForBatch(accountID, batchID).Warn("Submission dispatch failed, left for sweep", zap.Error(err))
	}
	return nil
}

// Sweep re-dispatches batches stuck in Processing or Submitting for longer
// than staleAfter. It returns the number of batches dispatched.
func (s *Service) Sweep(ctx context.Context, staleAfter time.Duration, limit int) (int, error) {
	cutoff := s.now().UTC().Add(-staleAfter)
	stale, err := s.store.ListStale(ctx,
		[]domain.BatchStatus{domain.StatusProcessing, domain.StatusSubmitting}, cutoff, limit)
	if err != nil {
		return 0, fmt.Errorf("list stale batches: %w", err)
	}

	dispatched := 0
	for _, b := range stale {
		var err error
		if b.State.Status() == domain.StatusProcessing {
			err = s.dispatcher.DispatchValidation(ctx, b.AccountID, b.ID)
		} else {
			err = s.dispatcher.DispatchSubmission(ctx, b.AccountID, b.ID)
		}
		if err != nil {
			logger.ForBatch(b.AccountID, b.ID).Warn("Stale batch dispatch failed", zap.Error(err))
			continue
		}
		dispatched++
	}
	return dispatched, nil
}

func (s *Service) load(ctx context.Context, accountID, batchID string) (*domain.Batch, error) {
	b, err := s.store.Get(ctx, accountID, batchID)
	if err != nil {
		return nil, storeError(err, batchID)
	}
	return b, nil
}

func (s *Service) publish(ctx context.Context, b *domain.Batch, eventType domain.EventType, p domain.TransitionPayload) {
	if s.events == nil {
		return
	}
	payload, err := p.ToJSON()
	if err != nil {
		logger.Warn("Encode event payload", zap.Error(err))
		return
	}
	// Handler failures are logged by the dispatcher; events never fail a
	// state change that is already stored.
	_ = s.events.Dispatch(ctx, &domain.DomainEvent{
		EventID:   newID(),
		EventType: eventType,
		AccountID: b.AccountID,
		BatchID:   b.ID,
		Status:    b.State.Status(),
		Payload:   payload,
		CreatedAt: s.now().UTC(),
	})
}

// storeError maps store sentinels to application errors.
func storeError(err error, batchID string) error {
	switch {
	case errors.Is(err, apperrors.ErrNotFound):
		return apperrors.ErrBatchNotFound(batchID)
	case errors.Is(err, apperrors.ErrVersionConflict):
		return apperrors.Wrap(err, apperrors.CodeConcurrentUpdate,
			"batch "+batchID+" was modified concurrently", http.StatusConflict)
	default:
		return err
	}
}

// NewTransactionID returns a batch transaction id of the form
// YYMM_XXXXXXXX.
func NewTransactionID(at time.Time) string {
	return at.Format("0601") + "_" + strings.ToUpper(uuid.NewString()[:8])
}

// newID generates a UUID v7 (time-ordered).
func newID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.New().String()
	}
	return id.String()
}
