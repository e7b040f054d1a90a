// Package usecase provides the application use cases consumed by the public
// API.
package usecase

import (
	"bytes"
	"context"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/abeyonalaja/waste-tracking-service-sub010/internal/codec"
	"github.com/abeyonalaja/waste-tracking-service-sub010/internal/domain"
	apperrors "github.com/abeyonalaja/waste-tracking-service-sub010/internal/pkg/errors"
	"github.com/abeyonalaja/waste-tracking-service-sub010/internal/pkg/logger"
	"github.com/abeyonalaja/waste-tracking-service-sub010/internal/rpc"
)

// Input is one uploaded file.
type Input struct {
	Type string
	Data []byte
}

// CreateBatchResult identifies a created batch.
type CreateBatchResult struct {
	ID string `json:"id"`
}

// BatchFacade translates API requests into batch service calls and
// normalizes their failures into AppErrors.
type BatchFacade struct {
	client rpc.BatchClient
}

// NewBatchFacade creates a BatchFacade over client.
func NewBatchFacade(client rpc.BatchClient) *BatchFacade {
	return &BatchFacade{client: client}
}

// CreateBatch uploads inputs as a new batch. Every input must be text/csv.
// Several inputs are joined into one CSV that keeps the first header row.
func (f *BatchFacade) CreateBatch(ctx context.Context, accountID string, inputs []Input) (*CreateBatchResult, error) {
	if len(inputs) == 0 {
		return nil, apperrors.ErrNoContent()
	}
	for _, in := range inputs {
		if !isCSV(in.Type) {
			return nil, apperrors.ErrInvalidInputType()
		}
	}

	content, err := codec.Encode(codec.ContentTypeCSV, codec.Snappy, JoinCSV(inputs))
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeInternal, "An internal error occurred", http.StatusInternalServerError)
	}
	resp, err := f.client.AddContentToBatch(ctx, rpc.AddContentRequest{AccountID: accountID, Content: content})
	v, err := unwrap(rpc.MethodAddContentToBatch, resp, err)
	if err != nil {
		return nil, err
	}
	return &CreateBatchResult{ID: v.BatchID}, nil
}

// GetBatch returns a batch.
func (f *BatchFacade) GetBatch(ctx context.Context, accountID, batchID string) (*domain.Batch, error) {
	resp, err := f.client.GetBatch(ctx, rpc.BatchRef{ID: batchID, AccountID: accountID})
	return unwrap(rpc.MethodGetBatch, resp, err)
}

// FinalizeBatch requests submission of a batch that passed validation.
func (f *BatchFacade) FinalizeBatch(ctx context.Context, accountID, batchID string) error {
	resp, err := f.client.FinalizeBatch(ctx, rpc.BatchRef{ID: batchID, AccountID: accountID})
	_, err = unwrap(rpc.MethodFinalizeBatch, resp, err)
	return err
}

// DownloadCsv returns the uploaded CSV exactly as it was received.
func (f *BatchFacade) DownloadCsv(ctx context.Context, accountID, batchID string) ([]byte, error) {
	resp, err := f.client.DownloadProducerCsv(ctx, rpc.BatchRef{ID: batchID, AccountID: accountID})
	v, err := unwrap(rpc.MethodDownloadProducerCsv, resp, err)
	if err != nil {
		return nil, err
	}

	compression := v.Compression
	if compression == "" {
		compression = codec.Snappy
	}
	raw, err := codec.Content{Type: codec.ContentTypeCSV, Compression: compression, Value: v.Data}.Decode()
	if err != nil {
		logger.Error("Stored batch content is corrupt", zap.String("batch_id", batchID), zap.Error(err))
		return nil, apperrors.Wrap(err, apperrors.CodeContentCorrupt, "stored content could not be decompressed",
			http.StatusInternalServerError)
	}
	return raw, nil
}

// GetRow returns the failure messages of one row.
func (f *BatchFacade) GetRow(ctx context.Context, accountID, batchID, rowID string) (*rpc.RowResult, error) {
	resp, err := f.client.GetRow(ctx, rpc.RowRequest{RowID: rowID, BatchID: batchID, AccountID: accountID})
	return unwrap(rpc.MethodGetRow, resp, err)
}

// GetColumn returns the failures of one column grouped by row.
func (f *BatchFacade) GetColumn(ctx context.Context, accountID, batchID, columnRef string) (*rpc.ColumnResult, error) {
	resp, err := f.client.GetColumn(ctx, rpc.ColumnRequest{ColumnRef: columnRef, BatchID: batchID, AccountID: accountID})
	return unwrap(rpc.MethodGetColumn, resp, err)
}

// unwrap turns an envelope into its value or an AppError. A transport
// failure is logged and reported as a bare internal error.
func unwrap[T any](method string, resp rpc.Response[T], err error) (*T, error) {
	if err != nil {
		logger.Error("Batch service call failed", zap.String("method", method), zap.Error(err))
		return nil, internalError()
	}
	if !resp.Success {
		if resp.Error == nil {
			return nil, internalError()
		}
		return nil, apperrors.New(codeForStatus(resp.Error.StatusCode), resp.Error.Message, resp.Error.StatusCode)
	}
	if resp.Value == nil {
		logger.Error("Batch service returned no value", zap.String("method", method))
		return nil, internalError()
	}
	return resp.Value, nil
}

func internalError() *apperrors.AppError {
	return apperrors.New(apperrors.CodeInternal, "An internal error occurred", http.StatusInternalServerError)
}

func codeForStatus(status int) string {
	switch status {
	case http.StatusBadRequest:
		return apperrors.CodeInvalidRequest
	case http.StatusNotFound:
		return apperrors.CodeNotFound
	case http.StatusConflict:
		return apperrors.CodeBatchInvalidState
	case http.StatusRequestEntityTooLarge:
		return apperrors.CodeContentTooLarge
	case http.StatusServiceUnavailable:
		return apperrors.CodeServiceUnavailable
	}
	if status >= 500 {
		return apperrors.CodeUpstreamFailed
	}
	return strings.ToUpper(strings.ReplaceAll(http.StatusText(status), " ", "_"))
}

// isCSV accepts text/csv with optional media type parameters.
func isCSV(contentType string) bool {
	mediaType, _, _ := strings.Cut(contentType, ";")
	return strings.EqualFold(strings.TrimSpace(mediaType), codec.ContentTypeCSV)
}

// JoinCSV concatenates the inputs, dropping the header row of every input
// after the first.
func JoinCSV(inputs []Input) []byte {
	if len(inputs) == 1 {
		return inputs[0].Data
	}
	var buf bytes.Buffer
	for i, in := range inputs {
		data := in.Data
		if i > 0 {
			_, rest, found := bytes.Cut(data, []byte("\n"))
			if !found {
				continue
			}
			data = rest
		}
		if len(data) == 0 {
			continue
		}
		if buf.Len() > 0 && !bytes.HasSuffix(buf.Bytes(), []byte("\n")) {
			buf.WriteByte('\n')
		}
		buf.Write(data)
	}
	return buf.Bytes()
}

