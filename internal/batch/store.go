package batch

import (
	"context"
	"time"

	"github.com/abeyonalaja/waste-tracking-service-sub010/internal/codec"
	"github.com/abeyonalaja/waste-tracking-service-sub010/internal/domain"
)

// Store persists batches and their content.
//
// Writes are optimistic: Update and ReplaceContent succeed only when the
// stored version equals b.Version, and bump b.Version on success. A lost
// race returns an error wrapping errors.ErrVersionConflict. Reads of an
// unknown (accountID, id) return an error wrapping errors.ErrNotFound.
type Store interface {
	// Create inserts a new batch together with its first content.
	Create(ctx context.Context, b *domain.Batch, content codec.Content) error

	// Get loads a batch by its partition key and id.
	Get(ctx context.Context, accountID, id string) (*domain.Batch, error)

	// Update writes b.State.
	Update(ctx context.Context, b *domain.Batch) error

	// ReplaceContent writes new content and b.State as one unit. Content
	// is written first so a reader that sees the new state also sees the
	// new content.
	ReplaceContent(ctx context.Context, b *domain.Batch, content codec.Content) error

	// Content loads the stored (compressed) content of a batch.
	Content(ctx context.Context, accountID, id string) (codec.Content, error)

	// ListStale returns up to limit batches whose status is one of
	// statuses and whose state timestamp is before cutoff, oldest first.
	ListStale(ctx context.Context, statuses []domain.BatchStatus, cutoff time.Time, limit int) ([]*domain.Batch, error)
}

// SubmissionRequest asks the submission system to create one durable
// submission from a validated row.
type SubmissionRequest struct {
	AccountID     string
	BatchID       string
	TransactionID string
	RowNumber     int
	HasEstimates  bool
	DeclaredAt    time.Time
	Submission    domain.PartialSubmission
}

// SubmissionCreator creates submissions. Implementations must be
// idempotent by (BatchID, RowNumber): a repeated request returns the
// summary created the first time.
type SubmissionCreator interface {
	CreateSubmission(ctx context.Context, req SubmissionRequest) (domain.CreatedSubmissionSummary, error)
}

// Summarize builds the created submission summary for req with id.
func Summarize(id string, req SubmissionRequest) domain.CreatedSubmissionSummary {
	return domain.CreatedSubmissionSummary{
		ID: id,
		SubmissionDeclaration: domain.SubmissionDeclaration{
			DeclarationTimestamp: req.DeclaredAt,
			TransactionID:        req.TransactionID,
		},
		HasEstimates:     req.HasEstimates,
		CollectionDate:   req.Submission.CollectionDate.Date,
		WasteDescription: req.Submission.WasteDescription.Description,
		Reference:        req.Submission.Reference,
	}
}
