package usecase_test

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abeyonalaja/waste-tracking-service-sub010/internal/batch"
	"github.com/abeyonalaja/waste-tracking-service-sub010/internal/domain"
	apperrors "github.com/abeyonalaja/waste-tracking-service-sub010/internal/pkg/errors"
	"github.com/abeyonalaja/waste-tracking-service-sub010/internal/pkg/logger"
	"github.com/abeyonalaja/waste-tracking-service-sub010/internal/repository/memory"
	"github.com/abeyonalaja/waste-tracking-service-sub010/internal/rpc"
	"github.com/abeyonalaja/waste-tracking-service-sub010/internal/testutil"
	"github.com/abeyonalaja/waste-tracking-service-sub010/internal/usecase"
	"github.com/abeyonalaja/waste-tracking-service-sub010/internal/validation"
)

func init() {
	_ = logger.Init("error", "json")
}

const account = "acc-1"

// newFacade wires a facade to an in-process batch service. With inline
// false nothing is dispatched and batches stay in Processing.
func newFacade(t *testing.T, inline bool) *usecase.BatchFacade {
	t.Helper()
	svc := batch.NewService(memory.NewStore(), memory.NewSubmissionStore(),
		validation.New(validation.WithClock(testutil.Clock)), batch.Config{}).
		WithClock(testutil.Clock)
	if inline {
		svc.WithDispatcher(batch.InlineDispatcher{Service: svc})
	}
	return usecase.NewBatchFacade(rpc.NewLocalClient(rpc.NewServer(svc)))
}

func requireAppError(t *testing.T, err error, code string, status int) *apperrors.AppError {
	t.Helper()
	require.Error(t, err)
	appErr, ok := apperrors.IsAppError(err)
	require.True(t, ok, "want AppError, got %T: %v", err, err)
	assert.Equal(t, status, appErr.HTTPStatus)
	if code != "" {
		assert.Equal(t, code, appErr.Code)
	}
	return appErr
}

func TestCreateBatch_RejectsInputs(t *testing.T) {
	f := newFacade(t, true)
	csv := testutil.CSV(testutil.ValidRow())

	tests := []struct {
		name    string
		inputs  []usecase.Input
		code    string
		message string
	}{
		{name: "json input", inputs: []usecase.Input{{Type: "application/json", Data: []byte(`{}`)}},
			code: apperrors.CodeInvalidInputType, message: "Input type must be 'text/csv'"},
		{name: "no inputs", inputs: []usecase.Input{}, code: apperrors.CodeNoContent, message: "content is empty"},
		{name: "nil inputs", inputs: nil, code: apperrors.CodeNoContent, message: "content is empty"},
		{name: "one bad among good", inputs: []usecase.Input{
			{Type: "text/csv", Data: csv},
			{Type: "text/plain", Data: csv},
		}, code: apperrors.CodeInvalidInputType, message: "Input type must be 'text/csv'"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.CreateBatch(context.Background(), account, tt.inputs)
			appErr := requireAppError(t, err, tt.code, http.StatusBadRequest)
			assert.Equal(t, tt.message, appErr.Message)
		})
	}
}

func TestCreateBatch_ValidSingleRow(t *testing.T) {
	ctx := context.Background()
	f := newFacade(t, true)

	res, err := f.CreateBatch(ctx, account, []usecase.Input{{Type: "text/csv", Data: testutil.CSV(testutil.ValidRow())}})
	require.NoError(t, err)
	require.NotEmpty(t, res.ID)

	b, err := f.GetBatch(ctx, account, res.ID)
	require.NoError(t, err)
	passed, ok := b.State.(domain.PassedValidation)
	require.True(t, ok, "state is %s", b.State.Status())
	assert.Len(t, passed.Submissions, 1)
}

func TestCreateBatch_MissingExporterOrganisation(t *testing.T) {
	ctx := context.Background()
	f := newFacade(t, true)

	row := testutil.ValidRow()
	row.Exporter.OrganisationName = ""
	res, err := f.CreateBatch(ctx, account, []usecase.Input{{Type: "text/csv", Data: testutil.CSV(row)}})
	require.NoError(t, err)

	b, err := f.GetBatch(ctx, account, res.ID)
	require.NoError(t, err)
	failed, ok := b.State.(domain.FailedValidation)
	require.True(t, ok, "state is %s", b.State.Status())
	require.Len(t, failed.RowErrors, 1)
	require.Len(t, failed.ColumnErrors, 1)
	assert.Equal(t, 1, failed.RowErrors[0].RowNumber)
	assert.Equal(t, 1, failed.RowErrors[0].ErrorAmount)
	assert.Equal(t, "exporterOrganisationName", failed.ColumnErrors[0].ColumnName)
	assert.Equal(t, 1, failed.ColumnErrors[0].ErrorAmount)

	row1, err := f.GetRow(ctx, account, res.ID, "1")
	require.NoError(t, err)
	assert.Equal(t, []string{"Enter the exporter organisation name"}, row1.Messages)

	col, err := f.GetColumn(ctx, account, res.ID, "exporterOrganisationName")
	require.NoError(t, err)
	require.Len(t, col.Errors, 1)
	assert.Equal(t, 1, col.Errors[0].RowNumber)

	_, err = f.GetRow(ctx, account, res.ID, "2")
	requireAppError(t, err, apperrors.CodeNotFound, http.StatusNotFound)
}

func TestCreateBatch_MultipleInputsKeepFirstHeader(t *testing.T) {
	ctx := context.Background()
	f := newFacade(t, true)

	second := testutil.ValidRow()
	second.Reference = "ref-002"
	res, err := f.CreateBatch(ctx, account, []usecase.Input{
		{Type: "text/csv", Data: testutil.CSV(testutil.ValidRow())},
		{Type: "text/csv; charset=utf-8", Data: testutil.CSV(second)},
	})
	require.NoError(t, err)

	b, err := f.GetBatch(ctx, account, res.ID)
	require.NoError(t, err)
	passed, ok := b.State.(domain.PassedValidation)
	require.True(t, ok, "state is %s", b.State.Status())
	require.Len(t, passed.Submissions, 2)
	assert.Equal(t, "ref-002", passed.Submissions[1].Reference)
}

func TestJoinCSV(t *testing.T) {
	tests := []struct {
		name   string
		inputs []string
		want   string
	}{
		{name: "single input untouched", inputs: []string{"h\na"}, want: "h\na"},
		{name: "second header dropped", inputs: []string{"h\na\n", "h\nb\n"}, want: "h\na\nb\n"},
		{name: "missing trailing newline", inputs: []string{"h\na", "h\nb"}, want: "h\na\nb"},
		{name: "header only input skipped", inputs: []string{"h\na\n", "h"}, want: "h\na\n"},
		{name: "crlf", inputs: []string{"h\r\na\r\n", "h\r\nb\r\n"}, want: "h\r\na\r\nb\r\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inputs := make([]usecase.Input, len(tt.inputs))
			for i, s := range tt.inputs {
				inputs[i] = usecase.Input{Type: "text/csv", Data: []byte(s)}
			}
			assert.Equal(t, tt.want, string(usecase.JoinCSV(inputs)))
		})
	}
}

func TestDownloadCsv_RoundTrip(t *testing.T) {
	ctx := context.Background()
	f := newFacade(t, true)

	raw := testutil.CSV(testutil.ValidRow())
	res, err := f.CreateBatch(ctx, account, []usecase.Input{{Type: "text/csv", Data: raw}})
	require.NoError(t, err)

	got, err := f.DownloadCsv(ctx, account, res.ID)
	require.NoError(t, err)
	assert.Equal(t, raw, got)
}

func TestFinalizeBatch(t *testing.T) {
	ctx := context.Background()

	t.Run("processing batch is rejected", func(t *testing.T) {
		f := newFacade(t, false)
		res, err := f.CreateBatch(ctx, account, []usecase.Input{{Type: "text/csv", Data: testutil.CSV(testutil.ValidRow())}})
		require.NoError(t, err)

		b, err := f.GetBatch(ctx, account, res.ID)
		require.NoError(t, err)
		require.Equal(t, domain.StatusProcessing, b.State.Status())

		err = f.FinalizeBatch(ctx, account, res.ID)
		requireAppError(t, err, apperrors.CodeBatchInvalidState, http.StatusConflict)
	})

	t.Run("passed batch is submitted", func(t *testing.T) {
		f := newFacade(t, true)
		res, err := f.CreateBatch(ctx, account, []usecase.Input{{Type: "text/csv", Data: testutil.CSV(testutil.ValidRow())}})
		require.NoError(t, err)

		require.NoError(t, f.FinalizeBatch(ctx, account, res.ID))
		b, err := f.GetBatch(ctx, account, res.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.StatusSubmitted, b.State.Status())
	})

	t.Run("unknown batch", func(t *testing.T) {
		f := newFacade(t, true)
		err := f.FinalizeBatch(ctx, account, "missing")
		appErr := requireAppError(t, err, apperrors.CodeNotFound, http.StatusNotFound)
		assert.Equal(t, "batch missing not found", appErr.Message)
	})
}

// failingClient fails every call at the transport.
type failingClient struct{ err error }

func (c failingClient) AddContentToBatch(context.Context, rpc.AddContentRequest) (rpc.Response[rpc.AddContentResult], error) {
	return rpc.Response[rpc.AddContentResult]{}, c.err
}

func (c failingClient) GetBatch(context.Context, rpc.BatchRef) (rpc.Response[rpc.Batch], error) {
	return rpc.Response[rpc.Batch]{}, c.err
}

func (c failingClient) FinalizeBatch(context.Context, rpc.BatchRef) (rpc.Response[rpc.Empty], error) {
	return rpc.Response[rpc.Empty]{}, c.err
}

func (c failingClient) DownloadProducerCsv(context.Context, rpc.BatchRef) (rpc.Response[rpc.DownloadResult], error) {
	return rpc.Response[rpc.DownloadResult]{Success: true, Value: &rpc.DownloadResult{Data: []byte{0xff, 0x01}}}, c.err
}

func (c failingClient) GetRow(context.Context, rpc.RowRequest) (rpc.Response[rpc.RowResult], error) {
	return rpc.Response[rpc.RowResult]{}, c.err
}

func (c failingClient) GetColumn(context.Context, rpc.ColumnRequest) (rpc.Response[rpc.ColumnResult], error) {
	return rpc.Response[rpc.ColumnResult]{Error: &rpc.ErrorBody{StatusCode: http.StatusBadGateway, Name: "Bad Gateway", Message: "upstream"}}, c.err
}

func TestFacade_TransportFailureIsGeneric(t *testing.T) {
	ctx := context.Background()
	f := usecase.NewBatchFacade(failingClient{err: errors.New("dial tcp 10.0.0.7:5000: connection refused")})

	calls := map[string]func() error{
		"create": func() error {
			_, err := f.CreateBatch(ctx, account, []usecase.Input{{Type: "text/csv", Data: []byte("h\n1\n")}})
			return err
		},
		"get":      func() error { _, err := f.GetBatch(ctx, account, "b"); return err },
		"finalize": func() error { return f.FinalizeBatch(ctx, account, "b") },
		"download": func() error { _, err := f.DownloadCsv(ctx, account, "b"); return err },
		"row":      func() error { _, err := f.GetRow(ctx, account, "b", "1"); return err },
		"column":   func() error { _, err := f.GetColumn(ctx, account, "b", "c"); return err },
	}
	for name, call := range calls {
		t.Run(name, func(t *testing.T) {
			appErr := requireAppError(t, call(), apperrors.CodeInternal, http.StatusInternalServerError)
			assert.NotContains(t, appErr.Error(), "connection refused")
		})
	}
}

func TestFacade_UnsuccessfulEnvelopeKeepsStatus(t *testing.T) {
	f := usecase.NewBatchFacade(failingClient{})

	_, err := f.GetColumn(context.Background(), account, "b", "c")
	appErr := requireAppError(t, err, apperrors.CodeUpstreamFailed, http.StatusBadGateway)
	assert.Equal(t, "upstream", appErr.Message)

	_, err = f.DownloadCsv(context.Background(), account, "b")
	requireAppError(t, err, apperrors.CodeContentCorrupt, http.StatusInternalServerError)
}
