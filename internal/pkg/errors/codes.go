package errors

import "net/http"

// Error code constants. Backend logs are always in English; clients key
// their own copy off Code.

// Batch error codes.
const (
	CodeBatchNotFound     = "BATCH_NOT_FOUND"
	CodeBatchInvalidState = "BATCH_INVALID_STATE"
	CodeRowNotFound       = "ROW_NOT_FOUND"
	CodeColumnNotFound    = "COLUMN_NOT_FOUND"
	CodeContentNotFound   = "CONTENT_NOT_FOUND"
	CodeContentCorrupt    = "CONTENT_CORRUPT"
	CodeConcurrentUpdate  = "CONCURRENT_UPDATE"
)

// Input error codes.
const (
	CodeNoContent        = "NO_CONTENT"
	CodeInvalidInputType = "INVALID_INPUT_TYPE"
	CodeContentTooLarge  = "CONTENT_TOO_LARGE"
	CodeInvalidRequest   = "INVALID_REQUEST"
)

// Infrastructure error codes.
const (
	CodeNotFound           = "NOT_FOUND"
	CodeInternal           = "INTERNAL_ERROR"
	CodeUpstreamFailed     = "UPSTREAM_FAILED"
	CodeServiceUnavailable = "SERVICE_UNAVAILABLE"
)

// Upload rejection messages.
const (
	InputTypeMessage = "Input type must be 'text/csv'"
	NoContentMessage = "content is empty"
)

// ErrBatchNotFound creates a batch not found error.
func ErrBatchNotFound(batchID string) *AppError {
	return &AppError{
		Code:       CodeBatchNotFound,
		Message:    "batch " + batchID + " not found",
		HTTPStatus: http.StatusNotFound,
	}
}

// ErrInvalidTransition creates an illegal state transition error.
func ErrInvalidTransition(batchID, from, op string) *AppError {
	return &AppError{
		Code:       CodeBatchInvalidState,
		Message:    "cannot " + op + " batch " + batchID + " in state " + from,
		HTTPStatus: http.StatusConflict,
	}
}

// ErrInvalidInputType creates the bad request returned for non-CSV uploads.
func ErrInvalidInputType() *AppError {
	return &AppError{
		Code:       CodeInvalidInputType,
		Message:    InputTypeMessage,
		HTTPStatus: http.StatusBadRequest,
	}
}

// ErrNoContent creates the bad request returned for an upload with no content.
func ErrNoContent() *AppError {
	return &AppError{
		Code:       CodeNoContent,
		Message:    NoContentMessage,
		HTTPStatus: http.StatusBadRequest,
	}
}
