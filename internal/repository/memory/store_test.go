package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abeyonalaja/waste-tracking-service-sub010/internal/batch"
	"github.com/abeyonalaja/waste-tracking-service-sub010/internal/codec"
	"github.com/abeyonalaja/waste-tracking-service-sub010/internal/domain"
	apperrors "github.com/abeyonalaja/waste-tracking-service-sub010/internal/pkg/errors"
)

var t0 = time.Date(2026, time.March, 2, 9, 0, 0, 0, time.UTC)

func newBatch(id string, at time.Time) *domain.Batch {
	return &domain.Batch{ID: id, AccountID: "acc-1", State: domain.Processing{Timestamp: at, ContentDigest: "d1"}}
}

func TestStore_CreateGetUpdate(t *testing.T) {
	ctx := context.Background()
	s := NewStore()

	b := newBatch("b-1", t0)
	require.NoError(t, s.Create(ctx, b, codec.Content{Type: codec.ContentTypeCSV, Compression: codec.None, Value: []byte("a")}))
	assert.EqualValues(t, 1, b.Version)

	err := s.Create(ctx, newBatch("b-1", t0), codec.Content{})
	assert.ErrorIs(t, err, apperrors.ErrConflict)

	got, err := s.Get(ctx, "acc-1", "b-1")
	require.NoError(t, err)
	assert.Equal(t, b.State, got.State)

	_, err = s.Get(ctx, "other-account", "b-1")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	require.NoError(t, got.Transition(domain.FailedCsvValidation{Timestamp: t0, Error: "bad"}))
	require.NoError(t, s.Update(ctx, got))
	assert.EqualValues(t, 2, got.Version)

	// b still holds version 1
	require.NoError(t, b.Transition(domain.FailedCsvValidation{Timestamp: t0, Error: "late"}))
	err = s.Update(ctx, b)
	assert.ErrorIs(t, err, apperrors.ErrVersionConflict)

	reloaded, err := s.Get(ctx, "acc-1", "b-1")
	require.NoError(t, err)
	assert.Equal(t, "bad", reloaded.State.(domain.FailedCsvValidation).Error)
}

func TestStore_ReplaceContent(t *testing.T) {
	ctx := context.Background()
	s := NewStore()

	b := newBatch("b-1", t0)
	require.NoError(t, s.Create(ctx, b, codec.Content{Type: codec.ContentTypeCSV, Compression: codec.None, Value: []byte("one")}))

	stale := *b
	require.NoError(t, b.Transition(domain.Processing{Timestamp: t0, ContentDigest: "d2"}))
	require.NoError(t, s.ReplaceContent(ctx, b, codec.Content{Type: codec.ContentTypeCSV, Compression: codec.None, Value: []byte("two")}))

	c, err := s.Content(ctx, "acc-1", "b-1")
	require.NoError(t, err)
	assert.Equal(t, []byte("two"), c.Value)

	err = s.ReplaceContent(ctx, &stale, codec.Content{Value: []byte("three")})
	assert.ErrorIs(t, err, apperrors.ErrVersionConflict)
	c, err = s.Content(ctx, "acc-1", "b-1")
	require.NoError(t, err)
	assert.Equal(t, []byte("two"), c.Value, "losing writer does not touch content")

	c.Value[0] = 'X'
	again, err := s.Content(ctx, "acc-1", "b-1")
	require.NoError(t, err)
	assert.Equal(t, []byte("two"), again.Value)

	_, err = s.Content(ctx, "acc-1", "missing")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestStore_ListStale(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	content := codec.Content{Type: codec.ContentTypeCSV, Compression: codec.None, Value: []byte("x")}

	require.NoError(t, s.Create(ctx, newBatch("old", t0.Add(-2*time.Hour)), content))
	require.NoError(t, s.Create(ctx, newBatch("older", t0.Add(-3*time.Hour)), content))
	require.NoError(t, s.Create(ctx, newBatch("fresh", t0), content))
	failed := &domain.Batch{ID: "failed", AccountID: "acc-1", State: domain.FailedCsvValidation{Timestamp: t0.Add(-5 * time.Hour)}}
	require.NoError(t, s.Create(ctx, failed, content))

	got, err := s.ListStale(ctx, []domain.BatchStatus{domain.StatusProcessing, domain.StatusSubmitting}, t0.Add(-time.Hour), 10)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "older", got[0].ID)
	assert.Equal(t, "old", got[1].ID)

	got, err = s.ListStale(ctx, []domain.BatchStatus{domain.StatusProcessing}, t0.Add(-time.Hour), 1)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "older", got[0].ID)
}

func TestSubmissionStore_Idempotent(t *testing.T) {
	ctx := context.Background()
	s := NewSubmissionStore()

	req := batch.SubmissionRequest{
		AccountID:     "acc-1",
		BatchID:       "b-1",
		TransactionID: "2603_ABCDEF12",
		RowNumber:     2,
		DeclaredAt:    t0,
		Submission:    domain.PartialSubmission{RowNumber: 2, Reference: "ref-2"},
	}
	first, err := s.CreateSubmission(ctx, req)
	require.NoError(t, err)
	assert.NotEmpty(t, first.ID)
	assert.Equal(t, "ref-2", first.Reference)
	assert.Equal(t, "2603_ABCDEF12", first.SubmissionDeclaration.TransactionID)

	again, err := s.CreateSubmission(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, first, again)

	req.RowNumber = 1
	req.Submission.Reference = "ref-1"
	_, err = s.CreateSubmission(ctx, req)
	require.NoError(t, err)

	list := s.List("b-1")
	require.Len(t, list, 2)
	assert.Equal(t, "ref-1", list[0].Reference)
	assert.Equal(t, "ref-2", list[1].Reference)

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	_, err = s.CreateSubmission(cancelled, req)
	assert.ErrorIs(t, err, context.Canceled)
}
