package app

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abeyonalaja/waste-tracking-service-sub010/internal/config"
	"github.com/abeyonalaja/waste-tracking-service-sub010/internal/domain"
	"github.com/abeyonalaja/waste-tracking-service-sub010/internal/pkg/logger"
	"github.com/abeyonalaja/waste-tracking-service-sub010/internal/rpc"
	"github.com/abeyonalaja/waste-tracking-service-sub010/internal/testutil"
)

func init() {
	_ = logger.Init("error", "json")
	gin.SetMode(gin.TestMode)
}

func memoryConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{Port: 8080},
		Store:  config.StoreConfig{Driver: config.StoreMemory},
		Log:    config.LogConfig{Level: "error", Format: "json"},
		River: config.RiverConfig{
			SweepInterval: time.Hour,
			StaleAfter:    time.Hour,
		},
		Worker: config.WorkerConfig{
			GeneralPoolSize:    4,
			ValidationPoolSize: 2,
		},
		Batch: config.BatchConfig{
			MaxUploadBytes:    1 << 20,
			SubmitConcurrency: 2,
			MaxSubmitAttempts: 3,
		},
	}
}

func TestBootstrap_NoDB(t *testing.T) {
	// Bootstrap without a real database should fail at DB connection.
	cfg := memoryConfig()
	cfg.Store.Driver = config.StorePostgres
	cfg.Database = config.DatabaseConfig{
		Host:     "localhost",
		Port:     65432, // Non-existent port
		User:     "test",
		Password: "test",
		Database: "test",
		SSLMode:  "disable",
		MaxConns: 5,
		MinConns: 1,
	}

	ctx := context.Background()
	app, err := Bootstrap(ctx, cfg)
	require.Error(t, err, "Bootstrap should fail without database")
	assert.Nil(t, app, "Application should be nil on bootstrap failure")
}

func TestApplication_Shutdown_Nil(t *testing.T) {
	// Shutdown on empty application should not panic.
	app := &Application{}

	assert.NotPanics(t, func() {
		app.Shutdown()
	}, "Shutdown on empty Application should not panic")
}

func newMemoryApp(t *testing.T) *Application {
	t.Helper()
	app, err := Bootstrap(context.Background(), memoryConfig())
	require.NoError(t, err)
	require.NoError(t, app.Start(context.Background()))
	t.Cleanup(app.Shutdown)
	return app
}

func serve(app *Application, method, path string, body []byte) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	app.Router.ServeHTTP(w, req)
	return w
}

func waitForStatus(t *testing.T, app *Application, path string, want domain.BatchStatus) {
	t.Helper()
	require.Eventually(t, func() bool {
		w := serve(app, http.MethodGet, path, nil)
		if w.Code != http.StatusOK {
			return false
		}
		var b domain.Batch
		if err := json.Unmarshal(w.Body.Bytes(), &b); err != nil {
			return false
		}
		return b.State.Status() == want
	}, 5*time.Second, 10*time.Millisecond, "batch never reached %s", want)
}

func TestBootstrap_MemoryEndToEnd(t *testing.T) {
	app := newMemoryApp(t)

	upload, err := json.Marshal(map[string]any{
		"inputs": []map[string]string{{
			"type": "text/csv",
			"data": string(testutil.CSV(testutil.ValidRowAt(time.Now()))),
		}},
	})
	require.NoError(t, err)

	w := serve(app, http.MethodPost, "/api/v1/accounts/acc-1/batches", upload)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var created struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))

	path := "/api/v1/accounts/acc-1/batches/" + created.ID
	waitForStatus(t, app, path, domain.StatusPassedValidation)

	w = serve(app, http.MethodPost, path+"/finalize", nil)
	require.Equal(t, http.StatusAccepted, w.Code, w.Body.String())
	waitForStatus(t, app, path, domain.StatusSubmitted)

	ref, err := json.Marshal(rpc.BatchRef{ID: created.ID, AccountID: "acc-1"})
	require.NoError(t, err)
	w = serve(app, http.MethodPost, rpc.BasePath+"/"+rpc.MethodGetBatch, ref)
	require.Equal(t, http.StatusOK, w.Code)
	var env rpc.Response[rpc.Batch]
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	require.True(t, env.Success)
	assert.Equal(t, domain.StatusSubmitted, env.Value.State.Status())
}

func TestBootstrap_OperationalRoutes(t *testing.T) {
	app := newMemoryApp(t)

	tests := []struct {
		name     string
		method   string
		path     string
		wantCode int
		contains string
	}{
		{name: "liveness", method: http.MethodGet, path: "/health/live", wantCode: http.StatusOK, contains: `"ok"`},
		{name: "readiness", method: http.MethodGet, path: "/health/ready", wantCode: http.StatusOK},
		{name: "metrics", method: http.MethodGet, path: "/metrics", wantCode: http.StatusOK, contains: "bulk_batches_created_total"},
		{name: "log level", method: http.MethodGet, path: "/log/level", wantCode: http.StatusOK, contains: "level"},
		{name: "unknown route", method: http.MethodGet, path: "/nope", wantCode: http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := serve(app, tt.method, tt.path, nil)
			assert.Equal(t, tt.wantCode, w.Code)
			if tt.contains != "" {
				assert.Contains(t, w.Body.String(), tt.contains)
			}
		})
	}
}
