package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestAppError_Error(t *testing.T) {
	tests := []struct {
		name string
		err  *AppError
		want string
	}{
		{
			name: "without wrapped error",
			err:  New(CodeBatchNotFound, "batch not found", http.StatusNotFound),
			want: "BATCH_NOT_FOUND: batch not found",
		},
		{
			name: "with wrapped error",
			err:  Wrap(fmt.Errorf("db error"), "DB_ERROR", "database failure", http.StatusInternalServerError),
			want: "DB_ERROR: database failure: db error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestAppError_Unwrap(t *testing.T) {
	inner := fmt.Errorf("inner error")
	appErr := Wrap(inner, "CODE", "msg", 500)

	if !errors.Is(appErr, inner) {
		t.Error("errors.Is should match inner error")
	}
}

func TestAppError_Name(t *testing.T) {
	tests := []struct {
		status int
		want   string
	}{
		{http.StatusBadRequest, "Bad Request"},
		{http.StatusNotFound, "Not Found"},
		{http.StatusConflict, "Conflict"},
		{0, "Internal Server Error"},
	}
	for _, tt := range tests {
		if got := New("X", "x", tt.status).Name(); got != tt.want {
			t.Errorf("Name() for %d = %q, want %q", tt.status, got, tt.want)
		}
	}
}

func TestIsAppError(t *testing.T) {
	appErr := NotFound(CodeBatchNotFound, "batch not found")
	wrapped := fmt.Errorf("wrapped: %w", appErr)

	got, ok := IsAppError(wrapped)
	if !ok {
		t.Fatal("IsAppError should return true for wrapped AppError")
	}
	if got.Code != CodeBatchNotFound {
		t.Errorf("Code = %q, want %s", got.Code, CodeBatchNotFound)
	}
}

func TestFromError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantCode   string
		wantStatus int
	}{
		{"app error passes through", BadRequest(CodeNoContent, "empty"), CodeNoContent, http.StatusBadRequest},
		{"not found sentinel", fmt.Errorf("get: %w", ErrNotFound), CodeNotFound, http.StatusNotFound},
		{"version conflict sentinel", ErrVersionConflict, CodeConcurrentUpdate, http.StatusConflict},
		{"unknown error", fmt.Errorf("dial tcp: refused"), CodeInternal, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FromError(tt.err)
			if got.Code != tt.wantCode {
				t.Errorf("Code = %q, want %q", got.Code, tt.wantCode)
			}
			if got.HTTPStatus != tt.wantStatus {
				t.Errorf("HTTPStatus = %d, want %d", got.HTTPStatus, tt.wantStatus)
			}
		})
	}
	if FromError(nil) != nil {
		t.Error("FromError(nil) should be nil")
	}
}

func TestErrorConstructors(t *testing.T) {
	tests := []struct {
		name       string
		err        *AppError
		wantStatus int
	}{
		{"NotFound", NotFound("NF", "not found"), http.StatusNotFound},
		{"BadRequest", BadRequest("BR", "bad request"), http.StatusBadRequest},
		{"Conflict", Conflict("CF", "conflict"), http.StatusConflict},
		{"Internal", Internal("IE", "internal"), http.StatusInternalServerError},
		{"InvalidTransition", ErrInvalidTransition("b-1", "Processing", "finalize"), http.StatusConflict},
		{"InvalidInputType", ErrInvalidInputType(), http.StatusBadRequest},
		{"NoContent", ErrNoContent(), http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err.HTTPStatus != tt.wantStatus {
				t.Errorf("HTTPStatus = %d, want %d", tt.err.HTTPStatus, tt.wantStatus)
			}
		})
	}
	if got := ErrInvalidInputType().Message; got != "Input type must be 'text/csv'" {
		t.Errorf("InvalidInputType message = %q", got)
	}
	if got := ErrNoContent(); got.Code != CodeNoContent || got.Message != "content is empty" {
		t.Errorf("NoContent = %s %q", got.Code, got.Message)
	}
}
