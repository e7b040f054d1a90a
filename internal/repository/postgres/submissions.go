package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/abeyonalaja/waste-tracking-service-sub010/internal/batch"
	"github.com/abeyonalaja/waste-tracking-service-sub010/internal/domain"
)

// SubmissionStore creates one submissions row per batch row.
type SubmissionStore struct {
	pool *pgxpool.Pool
}

var _ batch.SubmissionCreator = (*SubmissionStore)(nil)

// NewSubmissionStore creates a SubmissionStore.
func NewSubmissionStore(pool *pgxpool.Pool) *SubmissionStore {
	return &SubmissionStore{pool: pool}
}

// CreateSubmission implements batch.SubmissionCreator. A repeated request
// for the same (batch, row) returns the stored submission unchanged.
func (s *SubmissionStore) CreateSubmission(ctx context.Context, req batch.SubmissionRequest) (domain.CreatedSubmissionSummary, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return domain.CreatedSubmissionSummary{}, err
	}
	payload, err := json.Marshal(req.Submission)
	if err != nil {
		return domain.CreatedSubmissionSummary{}, fmt.Errorf("encode submission: %w", err)
	}
	summary := batch.Summarize(id.String(), req)

	if _, err := s.pool.Exec(ctx, `
		INSERT INTO submissions (id, account_id, batch_id, row_number, transaction_id, reference,
		                         waste_description, has_estimates, collection_date, declared_at, payload)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (batch_id, row_number) DO NOTHING`,
		summary.ID, req.AccountID, req.BatchID, req.RowNumber, summary.SubmissionDeclaration.TransactionID,
		summary.Reference, summary.WasteDescription, summary.HasEstimates, summary.CollectionDate,
		summary.SubmissionDeclaration.DeclarationTimestamp, payload,
	); err != nil {
		return domain.CreatedSubmissionSummary{}, fmt.Errorf("insert submission row %d: %w", req.RowNumber, err)
	}

	var out domain.CreatedSubmissionSummary
	err = s.pool.QueryRow(ctx, `
		SELECT id, transaction_id, declared_at, has_estimates, collection_date, waste_description, reference
		FROM submissions WHERE batch_id = $1 AND row_number = $2`,
		req.BatchID, req.RowNumber,
	).Scan(&out.ID, &out.SubmissionDeclaration.TransactionID, &out.SubmissionDeclaration.DeclarationTimestamp,
		&out.HasEstimates, &out.CollectionDate, &out.WasteDescription, &out.Reference)
	if err != nil {
		return domain.CreatedSubmissionSummary{}, fmt.Errorf("load submission row %d: %w", req.RowNumber, err)
	}
	out.SubmissionDeclaration.DeclarationTimestamp = out.SubmissionDeclaration.DeclarationTimestamp.UTC()
	out.CollectionDate = out.CollectionDate.UTC()
	return out, nil
}

// Count returns the number of submissions created for a batch.
func (s *SubmissionStore) Count(ctx context.Context, batchID string) (int, error) {
	var n int
	err := s.pool.QueryRow(ctx, `SELECT count(*) FROM submissions WHERE batch_id = $1`, batchID).Scan(&n)
	return n, err
}
