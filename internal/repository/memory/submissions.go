package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/abeyonalaja/waste-tracking-service-sub010/internal/batch"
	"github.com/abeyonalaja/waste-tracking-service-sub010/internal/domain"
)

type submissionKey struct {
	batchID   string
	rowNumber int
}

// SubmissionStore creates submissions in memory, once per batch row.
type SubmissionStore struct {
	mu          sync.Mutex
	submissions map[submissionKey]domain.CreatedSubmissionSummary
}

var _ batch.SubmissionCreator = (*SubmissionStore)(nil)

// NewSubmissionStore creates an empty SubmissionStore.
func NewSubmissionStore() *SubmissionStore {
	return &SubmissionStore{submissions: make(map[submissionKey]domain.CreatedSubmissionSummary)}
}

// CreateSubmission implements batch.SubmissionCreator.
func (s *SubmissionStore) CreateSubmission(ctx context.Context, req batch.SubmissionRequest) (domain.CreatedSubmissionSummary, error) {
	if err := ctx.Err(); err != nil {
		return domain.CreatedSubmissionSummary{}, err
	}
	k := submissionKey{req.BatchID, req.RowNumber}

	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.submissions[k]; ok {
		return existing, nil
	}
	id, err := uuid.NewV7()
	if err != nil {
		return domain.CreatedSubmissionSummary{}, err
	}
	summary := batch.Summarize(id.String(), req)
	s.submissions[k] = summary
	return summary, nil
}

// List returns the submissions created for a batch in row order.
func (s *SubmissionStore) List(batchID string) []domain.CreatedSubmissionSummary {
	s.mu.Lock()
	defer s.mu.Unlock()

	var rows []int
	for k := range s.submissions {
		if k.batchID == batchID {
			rows = append(rows, k.rowNumber)
		}
	}
	sort.Ints(rows)
	out := make([]domain.CreatedSubmissionSummary, 0, len(rows))
	for _, r := range rows {
		out = append(out, s.submissions[submissionKey{batchID, r}])
	}
	return out
}
