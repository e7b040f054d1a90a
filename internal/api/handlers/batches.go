package handlers

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/abeyonalaja/waste-tracking-service-sub010/internal/codec"
	apperrors "github.com/abeyonalaja/waste-tracking-service-sub010/internal/pkg/errors"
	"github.com/abeyonalaja/waste-tracking-service-sub010/internal/usecase"
)

// multipartField is the form field carrying uploaded files.
const multipartField = "file"

// CreateBatchRequest is the JSON form of a batch upload.
type CreateBatchRequest struct {
	Inputs []InputBody `json:"inputs"`
}

// InputBody is one uploaded file with its declared media type.
type InputBody struct {
	Type string `json:"type"`
	Data string `json:"data"`
}

// CreateBatch handles POST /accounts/{accountId}/batches. The body is
// either JSON or multipart/form-data with one or more "file" parts.
func (s *Server) CreateBatch(c *gin.Context) {
	// Escaped JSON can be up to twice the raw CSV.
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, 2*s.maxUploadBytes+(64<<10))

	inputs, err := readInputs(c)
	if err != nil {
		_ = c.Error(err)
		return
	}

	res, err := s.batches.CreateBatch(c.Request.Context(), c.Param("accountId"), inputs)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, res)
}

// GetBatch handles GET /accounts/{accountId}/batches/{batchId}.
func (s *Server) GetBatch(c *gin.Context) {
	b, err := s.batches.GetBatch(c.Request.Context(), c.Param("accountId"), c.Param("batchId"))
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, b)
}

// FinalizeBatch handles POST /accounts/{accountId}/batches/{batchId}/finalize.
func (s *Server) FinalizeBatch(c *gin.Context) {
	if err := s.batches.FinalizeBatch(c.Request.Context(), c.Param("accountId"), c.Param("batchId")); err != nil {
		_ = c.Error(err)
		return
	}
	c.Status(http.StatusAccepted)
}

// DownloadCsv handles GET /accounts/{accountId}/batches/{batchId}/content.
func (s *Server) DownloadCsv(c *gin.Context) {
	batchID := c.Param("batchId")
	raw, err := s.batches.DownloadCsv(c.Request.Context(), c.Param("accountId"), batchID)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", batchID+".csv"))
	c.Data(http.StatusOK, codec.ContentTypeCSV+"; charset=utf-8", raw)
}

// GetRow handles GET /accounts/{accountId}/batches/{batchId}/rows/{rowId}.
func (s *Server) GetRow(c *gin.Context) {
	row, err := s.batches.GetRow(c.Request.Context(), c.Param("accountId"), c.Param("batchId"), c.Param("rowId"))
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, row)
}

// GetColumn handles GET /accounts/{accountId}/batches/{batchId}/columns/{columnRef}.
func (s *Server) GetColumn(c *gin.Context) {
	col, err := s.batches.GetColumn(c.Request.Context(), c.Param("accountId"), c.Param("batchId"), c.Param("columnRef"))
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, col)
}

func readInputs(c *gin.Context) ([]usecase.Input, error) {
	if strings.HasPrefix(c.ContentType(), "multipart/") {
		return readMultipart(c)
	}

	var req CreateBatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		return nil, bodyError(err)
	}
	inputs := make([]usecase.Input, 0, len(req.Inputs))
	for _, in := range req.Inputs {
		inputs = append(inputs, usecase.Input{Type: in.Type, Data: []byte(in.Data)})
	}
	return inputs, nil
}

func readMultipart(c *gin.Context) ([]usecase.Input, error) {
	form, err := c.MultipartForm()
	if err != nil {
		return nil, bodyError(err)
	}
	files := form.File[multipartField]
	inputs := make([]usecase.Input, 0, len(files))
	for _, fh := range files {
		data, err := readPart(fh)
		if err != nil {
			return nil, bodyError(err)
		}
		inputs = append(inputs, usecase.Input{Type: partType(fh), Data: data})
	}
	return inputs, nil
}

func readPart(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}

// partType is the declared part type. Clients that send no specific type
// are trusted on a .csv file name.
func partType(fh *multipart.FileHeader) string {
	t := fh.Header.Get("Content-Type")
	if t != "" && t != "application/octet-stream" {
		return t
	}
	if strings.EqualFold(filepath.Ext(fh.Filename), ".csv") {
		return codec.ContentTypeCSV
	}
	return t
}

func bodyError(err error) *apperrors.AppError {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return apperrors.New(apperrors.CodeContentTooLarge,
			fmt.Sprintf("request body exceeds %d bytes", tooLarge.Limit), http.StatusRequestEntityTooLarge)
	}
	return apperrors.Wrap(err, apperrors.CodeInvalidRequest, "request body is malformed", http.StatusBadRequest)
}
