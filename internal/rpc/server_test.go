package rpc_test

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abeyonalaja/waste-tracking-service-sub010/internal/batch"
	"github.com/abeyonalaja/waste-tracking-service-sub010/internal/codec"
	"github.com/abeyonalaja/waste-tracking-service-sub010/internal/domain"
	"github.com/abeyonalaja/waste-tracking-service-sub010/internal/pkg/logger"
	"github.com/abeyonalaja/waste-tracking-service-sub010/internal/repository/memory"
	"github.com/abeyonalaja/waste-tracking-service-sub010/internal/rpc"
	"github.com/abeyonalaja/waste-tracking-service-sub010/internal/testutil"
	"github.com/abeyonalaja/waste-tracking-service-sub010/internal/validation"
)

func init() {
	_ = logger.Init("error", "json")
	gin.SetMode(gin.TestMode)
}

const account = "acc-1"

func newServer(t *testing.T) (*rpc.Server, *httptest.Server) {
	t.Helper()
	svc := batch.NewService(memory.NewStore(), memory.NewSubmissionStore(),
		validation.New(validation.WithClock(testutil.Clock)), batch.Config{}).
		WithClock(testutil.Clock)
	svc.WithDispatcher(batch.InlineDispatcher{Service: svc})

	server := rpc.NewServer(svc)
	r := gin.New()
	server.Register(r)
	ts := httptest.NewServer(r)
	t.Cleanup(ts.Close)
	return server, ts
}

func snappyCSV(t *testing.T, raw []byte) codec.Content {
	t.Helper()
	c, err := codec.Encode(codec.ContentTypeCSV, codec.Snappy, raw)
	require.NoError(t, err)
	return c
}

func TestHTTPClient_ValidBatchLifecycle(t *testing.T) {
	ctx := context.Background()
	_, ts := newServer(t)
	client := rpc.NewHTTPClient(ts.URL, 5*time.Second)

	raw := testutil.CSV(testutil.ValidRow())
	added, err := client.AddContentToBatch(ctx, rpc.AddContentRequest{AccountID: account, Content: snappyCSV(t, raw)})
	require.NoError(t, err)
	require.True(t, added.Success, "error: %+v", added.Error)
	id := added.Value.BatchID
	require.NotEmpty(t, id)

	got, err := client.GetBatch(ctx, rpc.BatchRef{ID: id, AccountID: account})
	require.NoError(t, err)
	require.True(t, got.Success)
	assert.Equal(t, id, got.Value.ID)
	assert.Equal(t, domain.StatusPassedValidation, got.Value.State.Status())

	fin, err := client.FinalizeBatch(ctx, rpc.BatchRef{ID: id, AccountID: account})
	require.NoError(t, err)
	require.True(t, fin.Success, "error: %+v", fin.Error)

	got, err = client.GetBatch(ctx, rpc.BatchRef{ID: id, AccountID: account})
	require.NoError(t, err)
	submitted, ok := got.Value.State.(domain.Submitted)
	require.True(t, ok, "state is %s", got.Value.State.Status())
	require.Len(t, submitted.Submissions, 1)
	assert.Equal(t, "ref-001", submitted.Submissions[0].Reference)

	dl, err := client.DownloadProducerCsv(ctx, rpc.BatchRef{ID: id, AccountID: account})
	require.NoError(t, err)
	require.True(t, dl.Success)
	assert.Equal(t, codec.Snappy, dl.Value.Compression)
	decoded, err := codec.Decompress(dl.Value.Data)
	require.NoError(t, err)
	assert.Equal(t, raw, decoded)
}

func TestHTTPClient_RowAndColumn(t *testing.T) {
	ctx := context.Background()
	_, ts := newServer(t)
	client := rpc.NewHTTPClient(ts.URL, 5*time.Second)

	bad := testutil.ValidRow()
	bad.Exporter.OrganisationName = ""
	added, err := client.AddContentToBatch(ctx, rpc.AddContentRequest{
		AccountID: account,
		Content:   snappyCSV(t, testutil.CSV(bad)),
	})
	require.NoError(t, err)
	require.True(t, added.Success)
	id := added.Value.BatchID

	row, err := client.GetRow(ctx, rpc.RowRequest{RowID: "1", BatchID: id, AccountID: account})
	require.NoError(t, err)
	require.True(t, row.Success, "error: %+v", row.Error)
	assert.Equal(t, []string{"Enter the exporter organisation name"}, row.Value.Messages)

	col, err := client.GetColumn(ctx, rpc.ColumnRequest{ColumnRef: "exporterOrganisationName", BatchID: id, AccountID: account})
	require.NoError(t, err)
	require.True(t, col.Success)
	require.Len(t, col.Value.Errors, 1)
	assert.Equal(t, 1, col.Value.Errors[0].RowNumber)

	missing, err := client.GetRow(ctx, rpc.RowRequest{RowID: "7", BatchID: id, AccountID: account})
	require.NoError(t, err)
	assert.False(t, missing.Success)
	assert.Equal(t, http.StatusNotFound, missing.Error.StatusCode)
}

func TestHTTPClient_ErrorEnvelopes(t *testing.T) {
	ctx := context.Background()
	_, ts := newServer(t)
	client := rpc.NewHTTPClient(ts.URL, 5*time.Second)

	tests := []struct {
		name       string
		call       func() (*rpc.ErrorBody, error)
		wantStatus int
		wantName   string
		wantMsg    string
	}{
		{
			name: "unknown batch",
			call: func() (*rpc.ErrorBody, error) {
				r, err := client.GetBatch(ctx, rpc.BatchRef{ID: "missing", AccountID: account})
				return r.Error, err
			},
			wantStatus: http.StatusNotFound,
			wantName:   "Not Found",
			wantMsg:    "batch missing not found",
		},
		{
			name: "wrong content type",
			call: func() (*rpc.ErrorBody, error) {
				c, _ := codec.Encode("application/json", codec.Snappy, []byte("{}"))
				r, err := client.AddContentToBatch(ctx, rpc.AddContentRequest{AccountID: account, Content: c})
				return r.Error, err
			},
			wantStatus: http.StatusBadRequest,
			wantName:   "Bad Request",
			wantMsg:    "Input type must be 'text/csv'",
		},
		{
			name: "missing account",
			call: func() (*rpc.ErrorBody, error) {
				r, err := client.FinalizeBatch(ctx, rpc.BatchRef{ID: "b-1"})
				return r.Error, err
			},
			wantStatus: http.StatusBadRequest,
			wantName:   "Bad Request",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body, err := tt.call()
			require.NoError(t, err)
			require.NotNil(t, body)
			assert.Equal(t, tt.wantStatus, body.StatusCode)
			assert.Equal(t, tt.wantName, body.Name)
			if tt.wantMsg != "" {
				assert.Equal(t, tt.wantMsg, body.Message)
			}
		})
	}
}

func TestHTTPClient_FinalizeIllegalState(t *testing.T) {
	ctx := context.Background()
	_, ts := newServer(t)
	client := rpc.NewHTTPClient(ts.URL, 5*time.Second)

	added, err := client.AddContentToBatch(ctx, rpc.AddContentRequest{
		AccountID: account,
		Content:   snappyCSV(t, []byte("not,a,template\n1,2,3\n")),
	})
	require.NoError(t, err)
	require.True(t, added.Success)

	fin, err := client.FinalizeBatch(ctx, rpc.BatchRef{ID: added.Value.BatchID, AccountID: account})
	require.NoError(t, err)
	require.False(t, fin.Success)
	assert.Equal(t, http.StatusConflict, fin.Error.StatusCode)
	assert.Equal(t, "Conflict", fin.Error.Name)
}

func TestServer_MalformedBody(t *testing.T) {
	_, ts := newServer(t)

	resp, err := http.Post(ts.URL+rpc.BasePath+"/"+rpc.MethodGetBatch, "application/json", bytes.NewBufferString("{"))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestHTTPClient_TransportFailure(t *testing.T) {
	_, ts := newServer(t)
	url := ts.URL
	ts.Close()

	client := rpc.NewHTTPClient(url, time.Second)
	_, err := client.GetBatch(context.Background(), rpc.BatchRef{ID: "b", AccountID: account})
	require.Error(t, err)
}

func TestHTTPClient_NonEnvelopeResponse(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "bad gateway", http.StatusBadGateway)
	}))
	defer ts.Close()

	client := rpc.NewHTTPClient(ts.URL, time.Second)
	_, err := client.GetBatch(context.Background(), rpc.BatchRef{ID: "b", AccountID: account})
	require.Error(t, err)
}

func TestLocalClient_MatchesHTTP(t *testing.T) {
	ctx := context.Background()
	server, ts := newServer(t)
	remote := rpc.NewHTTPClient(ts.URL, 5*time.Second)
	local := rpc.NewLocalClient(server)

	ref := rpc.BatchRef{ID: "missing", AccountID: account}
	viaHTTP, err := remote.GetBatch(ctx, ref)
	require.NoError(t, err)
	inProcess, err := local.GetBatch(ctx, ref)
	require.NoError(t, err)
	assert.Equal(t, viaHTTP, inProcess)

	added, err := local.AddContentToBatch(ctx, rpc.AddContentRequest{
		AccountID: account,
		Content:   snappyCSV(t, testutil.CSV(testutil.ValidRow())),
	})
	require.NoError(t, err)
	require.True(t, added.Success)

	got, err := remote.GetBatch(ctx, rpc.BatchRef{ID: added.Value.BatchID, AccountID: account})
	require.NoError(t, err)
	require.True(t, got.Success)
	assert.Equal(t, domain.StatusPassedValidation, got.Value.State.Status())
}
