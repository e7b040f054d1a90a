package rpc

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// BatchClient invokes the batch operations. The returned error reports a
// transport failure only; operation failures arrive as unsuccessful
// envelopes.
type BatchClient interface {
	AddContentToBatch(ctx context.Context, req AddContentRequest) (Response[AddContentResult], error)
	GetBatch(ctx context.Context, req BatchRef) (Response[Batch], error)
	FinalizeBatch(ctx context.Context, req BatchRef) (Response[Empty], error)
	DownloadProducerCsv(ctx context.Context, req BatchRef) (Response[DownloadResult], error)
	GetRow(ctx context.Context, req RowRequest) (Response[RowResult], error)
	GetColumn(ctx context.Context, req ColumnRequest) (Response[ColumnResult], error)
}

// maxResponseBytes bounds a decoded envelope; downloads carry base64 CSV.
const maxResponseBytes = 128 << 20

// HTTPClient calls a remote Server.
type HTTPClient struct {
	baseURL string
	http    *http.Client
}

var _ BatchClient = (*HTTPClient)(nil)

// NewHTTPClient creates a client for the server at baseURL. Every call is
// bounded by timeout.
func NewHTTPClient(baseURL string, timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

// AddContentToBatch implements BatchClient.
func (c *HTTPClient) AddContentToBatch(ctx context.Context, req AddContentRequest) (Response[AddContentResult], error) {
	return call[AddContentRequest, AddContentResult](ctx, c, MethodAddContentToBatch, req)
}

// GetBatch implements BatchClient.
func (c *HTTPClient) GetBatch(ctx context.Context, req BatchRef) (Response[Batch], error) {
	return call[BatchRef, Batch](ctx, c, MethodGetBatch, req)
}

// FinalizeBatch implements BatchClient.
func (c *HTTPClient) FinalizeBatch(ctx context.Context, req BatchRef) (Response[Empty], error) {
	return call[BatchRef, Empty](ctx, c, MethodFinalizeBatch, req)
}

// DownloadProducerCsv implements BatchClient.
func (c *HTTPClient) DownloadProducerCsv(ctx context.Context, req BatchRef) (Response[DownloadResult], error) {
	return call[BatchRef, DownloadResult](ctx, c, MethodDownloadProducerCsv, req)
}

// GetRow implements BatchClient.
func (c *HTTPClient) GetRow(ctx context.Context, req RowRequest) (Response[RowResult], error) {
	return call[RowRequest, RowResult](ctx, c, MethodGetRow, req)
}

// GetColumn implements BatchClient.
func (c *HTTPClient) GetColumn(ctx context.Context, req ColumnRequest) (Response[ColumnResult], error) {
	return call[ColumnRequest, ColumnResult](ctx, c, MethodGetColumn, req)
}

func call[Req, Res any](ctx context.Context, c *HTTPClient, method string, req Req) (Response[Res], error) {
	var out Response[Res]

	body, err := json.Marshal(req)
	if err != nil {
		return out, fmt.Errorf("encode %s request: %w", method, err)
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+BasePath+"/"+method, bytes.NewReader(body))
	if err != nil {
		return out, fmt.Errorf("build %s request: %w", method, err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return out, fmt.Errorf("call %s: %w", method, err)
	}
	defer resp.Body.Close()

	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(&out); err != nil {
		return out, fmt.Errorf("decode %s response (HTTP %d): %w", method, resp.StatusCode, err)
	}
	if !out.Success && out.Error == nil {
		return out, fmt.Errorf("%s response (HTTP %d) has neither value nor error", method, resp.StatusCode)
	}
	return out, nil
}

// LocalClient calls a Server in process, producing the same envelopes as
// the HTTP transport.
type LocalClient struct {
	server *Server
}

var _ BatchClient = (*LocalClient)(nil)

// NewLocalClient creates a LocalClient.
func NewLocalClient(server *Server) *LocalClient {
	return &LocalClient{server: server}
}

// AddContentToBatch implements BatchClient.
func (c *LocalClient) AddContentToBatch(ctx context.Context, req AddContentRequest) (Response[AddContentResult], error) {
	v, err := c.server.addContentToBatch(ctx, req)
	return envelope(v, err), nil
}

// GetBatch implements BatchClient.
func (c *LocalClient) GetBatch(ctx context.Context, req BatchRef) (Response[Batch], error) {
	v, err := c.server.getBatch(ctx, req)
	return envelope(v, err), nil
}

// FinalizeBatch implements BatchClient.
func (c *LocalClient) FinalizeBatch(ctx context.Context, req BatchRef) (Response[Empty], error) {
	v, err := c.server.finalizeBatch(ctx, req)
	return envelope(v, err), nil
}

// DownloadProducerCsv implements BatchClient.
func (c *LocalClient) DownloadProducerCsv(ctx context.Context, req BatchRef) (Response[DownloadResult], error) {
	v, err := c.server.downloadProducerCsv(ctx, req)
	return envelope(v, err), nil
}

// GetRow implements BatchClient.
func (c *LocalClient) GetRow(ctx context.Context, req RowRequest) (Response[RowResult], error) {
	v, err := c.server.getRow(ctx, req)
	return envelope(v, err), nil
}

// GetColumn implements BatchClient.
func (c *LocalClient) GetColumn(ctx context.Context, req ColumnRequest) (Response[ColumnResult], error) {
	v, err := c.server.getColumn(ctx, req)
	return envelope(v, err), nil
}
