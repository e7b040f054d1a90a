package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abeyonalaja/waste-tracking-service-sub010/internal/api/middleware"
	"github.com/abeyonalaja/waste-tracking-service-sub010/internal/batch"
	"github.com/abeyonalaja/waste-tracking-service-sub010/internal/domain"
	"github.com/abeyonalaja/waste-tracking-service-sub010/internal/pkg/logger"
	"github.com/abeyonalaja/waste-tracking-service-sub010/internal/repository/memory"
	"github.com/abeyonalaja/waste-tracking-service-sub010/internal/rpc"
	"github.com/abeyonalaja/waste-tracking-service-sub010/internal/testutil"
	"github.com/abeyonalaja/waste-tracking-service-sub010/internal/usecase"
	"github.com/abeyonalaja/waste-tracking-service-sub010/internal/validation"
)

func init() {
	gin.SetMode(gin.TestMode)
	_ = logger.Init("error", "json")
}

const batchesPath = "/api/v1/accounts/acc-1/batches"

func newTestRouter(t *testing.T, deps ServerDeps) *gin.Engine {
	t.Helper()
	svc := batch.NewService(memory.NewStore(), memory.NewSubmissionStore(),
		validation.New(validation.WithClock(testutil.Clock)), batch.Config{}).
		WithClock(testutil.Clock)
	svc.WithDispatcher(batch.InlineDispatcher{Service: svc})
	deps.Batches = usecase.NewBatchFacade(rpc.NewLocalClient(rpc.NewServer(svc)))

	srv := NewServer(deps)
	router := gin.New()
	router.Use(middleware.RequestID())
	srv.RegisterHealth(router)
	api := router.Group("/api/v1")
	api.Use(middleware.MustOpenAPIValidator("/api/v1"), middleware.ErrorHandler())
	srv.RegisterRoutes(api)
	return router
}

func do(router *gin.Engine, method, path, contentType string, body []byte) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func jsonUpload(t *testing.T, inputs ...InputBody) []byte {
	t.Helper()
	body, err := json.Marshal(CreateBatchRequest{Inputs: inputs})
	require.NoError(t, err)
	return body
}

func createBatch(t *testing.T, router *gin.Engine, csv []byte) string {
	t.Helper()
	w := do(router, http.MethodPost, batchesPath, "application/json",
		jsonUpload(t, InputBody{Type: "text/csv", Data: string(csv)}))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var res usecase.CreateBatchResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	require.NotEmpty(t, res.ID)
	return res.ID
}

func getBatch(t *testing.T, router *gin.Engine, id string) domain.Batch {
	t.Helper()
	w := do(router, http.MethodGet, batchesPath+"/"+id, "", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var b domain.Batch
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &b))
	return b
}

func errorCode(t *testing.T, w *httptest.ResponseRecorder) (string, string) {
	t.Helper()
	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body), w.Body.String())
	return body["code"], body["message"]
}

func TestCreateBatch_ValidLifecycle(t *testing.T) {
	router := newTestRouter(t, ServerDeps{})
	raw := testutil.CSV(testutil.ValidRow())
	id := createBatch(t, router, raw)

	b := getBatch(t, router, id)
	assert.Equal(t, "acc-1", b.AccountID)
	assert.Equal(t, domain.StatusPassedValidation, b.State.Status())

	w := do(router, http.MethodPost, batchesPath+"/"+id+"/finalize", "", nil)
	require.Equal(t, http.StatusAccepted, w.Code, w.Body.String())
	assert.Equal(t, domain.StatusSubmitted, getBatch(t, router, id).State.Status())

	w = do(router, http.MethodGet, batchesPath+"/"+id+"/content", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/csv; charset=utf-8", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), id+".csv")
	assert.Equal(t, raw, w.Body.Bytes())
}

func TestCreateBatch_Multipart(t *testing.T) {
	router := newTestRouter(t, ServerDeps{})
	raw := testutil.CSV(testutil.ValidRow())

	tests := []struct {
		name     string
		filename string
		partType string
		wantCode int
	}{
		{name: "declared csv", filename: "upload.txt", partType: "text/csv", wantCode: http.StatusCreated},
		{name: "csv extension", filename: "upload.csv", partType: "application/octet-stream", wantCode: http.StatusCreated},
		{name: "not csv", filename: "upload.json", partType: "application/json", wantCode: http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			mw := multipart.NewWriter(&buf)
			h := make(textproto.MIMEHeader)
			h.Set("Content-Disposition", `form-data; name="file"; filename="`+tt.filename+`"`)
			h.Set("Content-Type", tt.partType)
			part, err := mw.CreatePart(h)
			require.NoError(t, err)
			_, err = part.Write(raw)
			require.NoError(t, err)
			require.NoError(t, mw.Close())

			w := do(router, http.MethodPost, batchesPath, mw.FormDataContentType(), buf.Bytes())
			assert.Equal(t, tt.wantCode, w.Code, w.Body.String())
		})
	}
}

func TestCreateBatch_Rejections(t *testing.T) {
	router := newTestRouter(t, ServerDeps{MaxUploadBytes: 1 << 10})

	tests := []struct {
		name        string
		contentType string
		body        []byte
		wantStatus  int
		wantCode    string
		wantMessage string
	}{
		{
			name:        "no inputs",
			contentType: "application/json",
			body:        []byte(`{"inputs":[]}`),
			wantStatus:  http.StatusBadRequest,
			wantCode:    "NO_CONTENT",
			wantMessage: "content is empty",
		},
		{
			name:        "wrong input type",
			contentType: "application/json",
			body:        []byte(`{"inputs":[{"type":"application/pdf","data":"x"}]}`),
			wantStatus:  http.StatusBadRequest,
			wantCode:    "INVALID_INPUT_TYPE",
			wantMessage: "Input type must be 'text/csv'",
		},
		{
			name:        "body too large",
			contentType: "application/json",
			body:        []byte(`{"inputs":[{"type":"text/csv","data":"` + strings.Repeat("a", 128<<10) + `"}]}`),
			wantStatus:  http.StatusRequestEntityTooLarge,
			wantCode:    "CONTENT_TOO_LARGE",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(router, http.MethodPost, batchesPath, tt.contentType, tt.body)
			require.Equal(t, tt.wantStatus, w.Code, w.Body.String())
			code, msg := errorCode(t, w)
			assert.Equal(t, tt.wantCode, code)
			if tt.wantMessage != "" {
				assert.Equal(t, tt.wantMessage, msg)
			}
		})
	}
}

func TestRowAndColumn(t *testing.T) {
	router := newTestRouter(t, ServerDeps{})
	bad := testutil.ValidRow()
	bad.Exporter.OrganisationName = ""
	id := createBatch(t, router, testutil.CSV(bad))
	require.Equal(t, domain.StatusFailedValidation, getBatch(t, router, id).State.Status())

	w := do(router, http.MethodGet, batchesPath+"/"+id+"/rows/1", "", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var row rpc.RowResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &row))
	assert.Equal(t, "1", row.ID)
	assert.Equal(t, []string{"Enter the exporter organisation name"}, row.Messages)

	w = do(router, http.MethodGet, batchesPath+"/"+id+"/columns/exporterOrganisationName", "", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var col rpc.ColumnResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &col))
	require.Len(t, col.Errors, 1)
	assert.Equal(t, 1, col.Errors[0].RowNumber)

	w = do(router, http.MethodGet, batchesPath+"/"+id+"/rows/2", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestUnknownBatchAndIllegalFinalize(t *testing.T) {
	router := newTestRouter(t, ServerDeps{})

	w := do(router, http.MethodGet, batchesPath+"/missing", "", nil)
	require.Equal(t, http.StatusNotFound, w.Code)
	code, msg := errorCode(t, w)
	assert.Equal(t, "NOT_FOUND", code)
	assert.Equal(t, "batch missing not found", msg)

	id := createBatch(t, router, []byte("not,a,template\n1,2,3\n"))
	assert.Equal(t, domain.StatusFailedCsvValidation, getBatch(t, router, id).State.Status())

	w = do(router, http.MethodPost, batchesPath+"/"+id+"/finalize", "", nil)
	require.Equal(t, http.StatusConflict, w.Code)
	code, _ = errorCode(t, w)
	assert.Equal(t, "BATCH_INVALID_STATE", code)
}

func TestHealth(t *testing.T) {
	router := newTestRouter(t, ServerDeps{Checks: map[string]HealthCheck{
		"database": func(context.Context) error { return nil },
	}})
	w := do(router, http.MethodGet, "/health/live", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	w = do(router, http.MethodGet, "/health/ready", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	router = newTestRouter(t, ServerDeps{Checks: map[string]HealthCheck{
		"database": func(context.Context) error { return errors.New("down") },
	}})
	w = do(router, http.MethodGet, "/health/ready", "", nil)
	require.Equal(t, http.StatusServiceUnavailable, w.Code)
	var h Health
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &h))
	assert.Equal(t, HealthStatusDegraded, h.Status)
	assert.Equal(t, "error", h.Checks["database"])
}
