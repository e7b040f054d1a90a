package rpc

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/abeyonalaja/waste-tracking-service-sub010/internal/batch"
	apperrors "github.com/abeyonalaja/waste-tracking-service-sub010/internal/pkg/errors"
	"github.com/abeyonalaja/waste-tracking-service-sub010/internal/pkg/logger"
)

// Server serves the batch operations over HTTP.
type Server struct {
	svc *batch.Service
}

// NewServer creates a Server backed by svc.
func NewServer(svc *batch.Service) *Server {
	return &Server{svc: svc}
}

// Register mounts every operation as POST BasePath/<method>.
func (s *Server) Register(r gin.IRouter) {
	g := r.Group(BasePath)
	g.POST("/"+MethodAddContentToBatch, handle(MethodAddContentToBatch, s.addContentToBatch))
	g.POST("/"+MethodGetBatch, handle(MethodGetBatch, s.getBatch))
	g.POST("/"+MethodFinalizeBatch, handle(MethodFinalizeBatch, s.finalizeBatch))
	g.POST("/"+MethodDownloadProducerCsv, handle(MethodDownloadProducerCsv, s.downloadProducerCsv))
	g.POST("/"+MethodGetRow, handle(MethodGetRow, s.getRow))
	g.POST("/"+MethodGetColumn, handle(MethodGetColumn, s.getColumn))
}

func (s *Server) addContentToBatch(ctx context.Context, req AddContentRequest) (AddContentResult, error) {
	id, err := s.svc.CreateOrAppendContent(ctx, req.AccountID, req.BatchID, req.Content)
	return AddContentResult{BatchID: id}, err
}

func (s *Server) getBatch(ctx context.Context, req BatchRef) (Batch, error) {
	b, err := s.svc.Get(ctx, req.AccountID, req.ID)
	if err != nil {
		return Batch{}, err
	}
	return *b, nil
}

func (s *Server) finalizeBatch(ctx context.Context, req BatchRef) (Empty, error) {
	return Empty{}, s.svc.Finalize(ctx, req.AccountID, req.ID)
}

func (s *Server) downloadProducerCsv(ctx context.Context, req BatchRef) (DownloadResult, error) {
	content, err := s.svc.Content(ctx, req.AccountID, req.ID)
	if err != nil {
		return DownloadResult{}, err
	}
	return DownloadResult{Data: content.Value, Compression: content.Compression}, nil
}

func (s *Server) getRow(ctx context.Context, req RowRequest) (RowResult, error) {
	r, err := s.svc.Row(ctx, req.AccountID, req.BatchID, req.RowID)
	if err != nil {
		return RowResult{}, err
	}
	return *r, nil
}

func (s *Server) getColumn(ctx context.Context, req ColumnRequest) (ColumnResult, error) {
	c, err := s.svc.Column(ctx, req.AccountID, req.BatchID, req.ColumnRef)
	if err != nil {
		return ColumnResult{}, err
	}
	return *c, nil
}

// handle binds the JSON request body, runs fn and writes its envelope. The
// HTTP status mirrors the envelope status code.
func handle[Req, Res any](method string, fn func(context.Context, Req) (Res, error)) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req Req
		if err := c.ShouldBindJSON(&req); err != nil {
			write(c, failure[Res](apperrors.Wrap(err, apperrors.CodeInvalidRequest,
				"invalid "+method+" request: "+err.Error(), http.StatusBadRequest)))
			return
		}
		res, err := fn(c.Request.Context(), req)
		if err != nil {
			logCallError(method, err)
		}
		write(c, envelope(res, err))
	}
}

func write[T any](c *gin.Context, r Response[T]) {
	status := http.StatusOK
	if !r.Success {
		status = r.Error.StatusCode
	}
	c.JSON(status, r)
}

func logCallError(method string, err error) {
	appErr := apperrors.FromError(err)
	if appErr.IsClientError() {
		logger.Debug("RPC call rejected",
			zap.String("method", method),
			zap.String("code", appErr.Code),
			zap.String("message", appErr.Message),
		)
		return
	}
	logger.Error("RPC call failed",
		zap.String("method", method),
		zap.String("code", appErr.Code),
		zap.Error(err),
	)
}
