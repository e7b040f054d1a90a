// Package handlers implements the public batch API on gin.
//
// Handlers report failures with c.Error and leave rendering to
// middleware.ErrorHandler.
package handlers

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/abeyonalaja/waste-tracking-service-sub010/internal/usecase"
)

// HealthCheck reports whether one dependency is usable.
type HealthCheck func(ctx context.Context) error

// Server implements the API handlers.
type Server struct {
	batches        *usecase.BatchFacade
	checks         map[string]HealthCheck
	maxUploadBytes int64
}

// ServerDeps holds all dependencies for creating a Server.
type ServerDeps struct {
	Batches *usecase.BatchFacade
	// Checks are run by the readiness probe, keyed by dependency name.
	Checks map[string]HealthCheck
	// MaxUploadBytes bounds the CSV payload of one create request.
	MaxUploadBytes int
}

// NewServer creates a new Server with all dependencies.
func NewServer(deps ServerDeps) *Server {
	limit := int64(deps.MaxUploadBytes)
	if limit <= 0 {
		limit = 20 << 20
	}
	return &Server{
		batches:        deps.Batches,
		checks:         deps.Checks,
		maxUploadBytes: limit,
	}
}

// RegisterRoutes mounts the batch routes on r, which is expected to be the
// /api/v1 group.
func (s *Server) RegisterRoutes(r gin.IRouter) {
	batches := r.Group("/accounts/:accountId/batches")
	batches.POST("", s.CreateBatch)
	batches.GET("/:batchId", s.GetBatch)
	batches.POST("/:batchId/finalize", s.FinalizeBatch)
	batches.GET("/:batchId/content", s.DownloadCsv)
	batches.GET("/:batchId/rows/:rowId", s.GetRow)
	batches.GET("/:batchId/columns/:columnRef", s.GetColumn)
}

// RegisterHealth mounts the liveness and readiness probes on r.
func (s *Server) RegisterHealth(r gin.IRouter) {
	r.GET("/health/live", s.GetLiveness)
	r.GET("/health/ready", s.GetReadiness)
}
