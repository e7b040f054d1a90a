// Package rpc exposes the batch service as six JSON-over-HTTP operations
// that answer with a uniform envelope, and provides clients for them.
package rpc

import (
	"github.com/abeyonalaja/waste-tracking-service-sub010/internal/batch"
	"github.com/abeyonalaja/waste-tracking-service-sub010/internal/codec"
	"github.com/abeyonalaja/waste-tracking-service-sub010/internal/domain"
	apperrors "github.com/abeyonalaja/waste-tracking-service-sub010/internal/pkg/errors"
)

// Method names, mounted under BasePath.
const (
	BasePath = "/rpc/batch"

	MethodAddContentToBatch   = "addContentToBatch"
	MethodGetBatch            = "getBatch"
	MethodFinalizeBatch       = "finalizeBatch"
	MethodDownloadProducerCsv = "downloadProducerCsv"
	MethodGetRow              = "getRow"
	MethodGetColumn           = "getColumn"
)

// ErrorBody is the error half of an unsuccessful envelope.
type ErrorBody struct {
	StatusCode int    `json:"statusCode"`
	Name       string `json:"name"`
	Message    string `json:"message"`
}

// Response is the envelope every operation answers with. Exactly one of
// Value and Error is set, according to Success.
type Response[T any] struct {
	Success bool       `json:"success"`
	Value   *T         `json:"value,omitempty"`
	Error   *ErrorBody `json:"error,omitempty"`
}

// AddContentRequest appends content to a batch, creating it when BatchID is
// empty.
type AddContentRequest struct {
	AccountID string        `json:"accountId" binding:"required"`
	BatchID   string        `json:"batchId,omitempty"`
	Content   codec.Content `json:"content"`
}

// AddContentResult carries the id of the batch the content landed in.
type AddContentResult struct {
	BatchID string `json:"batchId"`
}

// BatchRef identifies a batch.
type BatchRef struct {
	ID        string `json:"id" binding:"required"`
	AccountID string `json:"accountId" binding:"required"`
}

// Empty is the value of operations with nothing to return.
type Empty struct{}

// DownloadResult carries the stored, still compressed CSV. Data is base64
// in JSON. An empty Compression means Snappy.
type DownloadResult struct {
	Data        []byte            `json:"data"`
	Compression codec.Compression `json:"compression,omitempty"`
}

// RowRequest selects one row of a batch.
type RowRequest struct {
	RowID     string `json:"rowId" binding:"required"`
	BatchID   string `json:"batchId" binding:"required"`
	AccountID string `json:"accountId" binding:"required"`
}

// ColumnRequest selects one column of a batch.
type ColumnRequest struct {
	ColumnRef string `json:"columnRef" binding:"required"`
	BatchID   string `json:"batchId" binding:"required"`
	AccountID string `json:"accountId" binding:"required"`
}

// Batch, Row and Column values are the batch service's own types.
type (
	Batch        = domain.Batch
	RowResult    = batch.RowResult
	ColumnResult = batch.ColumnResult
)

// ok wraps v in a successful envelope.
func ok[T any](v T) Response[T] {
	return Response[T]{Success: true, Value: &v}
}

// failure wraps err in an unsuccessful envelope. Anything that is not an
// AppError becomes a generic internal error.
func failure[T any](err error) Response[T] {
	appErr := apperrors.FromError(err)
	return Response[T]{Error: &ErrorBody{
		StatusCode: appErr.HTTPStatus,
		Name:       appErr.Name(),
		Message:    appErr.Message,
	}}
}

func envelope[T any](v T, err error) Response[T] {
	if err != nil {
		return failure[T](err)
	}
	return ok(v)
}
