package batch

import (
	"context"
	"strconv"

	"github.com/abeyonalaja/waste-tracking-service-sub010/internal/codec"
	"github.com/abeyonalaja/waste-tracking-service-sub010/internal/domain"
	apperrors "github.com/abeyonalaja/waste-tracking-service-sub010/internal/pkg/errors"
)

// RowResult lists the failure messages of one row.
type RowResult struct {
	ID        string   `json:"id"`
	AccountID string   `json:"accountId"`
	BatchID   string   `json:"batchId"`
	Messages  []string `json:"messages"`
}

// ColumnResult lists the failures of one column, grouped by row.
type ColumnResult struct {
	ColumnRef string           `json:"columnRef"`
	AccountID string           `json:"accountId"`
	BatchID   string           `json:"batchId"`
	Errors    []ColumnRowError `json:"errors"`
}

// ColumnRowError holds the failure messages of a column in one row.
type ColumnRowError struct {
	Messages  []string `json:"messages"`
	RowNumber int      `json:"rowNumber"`
}

// Get returns a batch.
func (s *Service) Get(ctx context.Context, accountID, batchID string) (*domain.Batch, error) {
	return s.load(ctx, accountID, batchID)
}

// Content returns the stored, still compressed content of a batch.
func (s *Service) Content(ctx context.Context, accountID, batchID string) (codec.Content, error) {
	content, err := s.store.Content(ctx, accountID, batchID)
	if err != nil {
		return codec.Content{}, storeError(err, batchID)
	}
	return content, nil
}

// Row returns the failures of row rowID (its 1-based row number) of a
// FailedValidation batch.
func (s *Service) Row(ctx context.Context, accountID, batchID, rowID string) (*RowResult, error) {
	failed, err := s.failedValidation(ctx, accountID, batchID)
	if err != nil {
		return nil, err
	}

	number, convErr := strconv.Atoi(rowID)
	if convErr == nil {
		for _, r := range failed.RowErrors {
			if r.RowNumber == number {
				return &RowResult{
					ID:        rowID,
					AccountID: accountID,
					BatchID:   batchID,
					Messages:  append([]string(nil), r.ErrorDetails...),
				}, nil
			}
		}
	}
	return nil, apperrors.NotFound(apperrors.CodeRowNotFound, "row "+rowID+" of batch "+batchID+" not found")
}

// Column returns the failures of column columnRef (its header name) of a
// FailedValidation batch.
func (s *Service) Column(ctx context.Context, accountID, batchID, columnRef string) (*ColumnResult, error) {
	failed, err := s.failedValidation(ctx, accountID, batchID)
	if err != nil {
		return nil, err
	}

	for _, c := range failed.ColumnErrors {
		if c.ColumnName != columnRef {
			continue
		}
		res := &ColumnResult{ColumnRef: columnRef, AccountID: accountID, BatchID: batchID}
		index := make(map[int]int)
		for _, d := range c.ErrorDetails {
			i, ok := index[d.RowNumber]
			if !ok {
				i = len(res.Errors)
				index[d.RowNumber] = i
				res.Errors = append(res.Errors, ColumnRowError{RowNumber: d.RowNumber})
			}
			res.Errors[i].Messages = append(res.Errors[i].Messages, d.ErrorReason)
		}
		return res, nil
	}
	return nil, apperrors.NotFound(apperrors.CodeColumnNotFound, "column "+columnRef+" of batch "+batchID+" not found")
}

func (s *Service) failedValidation(ctx context.Context, accountID, batchID string) (domain.FailedValidation, error) {
	b, err := s.load(ctx, accountID, batchID)
	if err != nil {
		return domain.FailedValidation{}, err
	}
	failed, ok := b.State.(domain.FailedValidation)
	if !ok {
		return domain.FailedValidation{}, apperrors.NotFound(apperrors.CodeRowNotFound,
			"batch "+batchID+" has no validation errors")
	}
	return failed, nil
}
