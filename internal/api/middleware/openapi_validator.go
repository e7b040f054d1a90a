package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/getkin/kin-openapi/openapi3filter"
	"github.com/getkin/kin-openapi/routers"
	"github.com/getkin/kin-openapi/routers/gorillamux"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/abeyonalaja/waste-tracking-service-sub010/internal/api/openapi"
	"github.com/abeyonalaja/waste-tracking-service-sub010/internal/pkg/logger"
)

// Contract violation codes.
const (
	codeRouteInvalid    = "OPENAPI_ROUTE_INVALID"
	codeRequestInvalid  = "OPENAPI_REQUEST_INVALID"
	codeResponseInvalid = "OPENAPI_RESPONSE_INVALID"

	responseInvalidMessage = "response does not conform to OpenAPI contract"
)

// MustOpenAPIValidator is NewOpenAPIValidator for router setup; it panics
// when the embedded contract cannot be loaded.
func MustOpenAPIValidator(basePath string) gin.HandlerFunc {
	mw, err := NewOpenAPIValidator(basePath)
	if err != nil {
		panic(fmt.Sprintf("init openapi validator: %v", err))
	}
	return mw
}

// NewOpenAPIValidator checks batch API traffic against the embedded
// contract. Requests that violate it get a 400; handler responses that
// violate it are replaced with a 500. Paths the contract does not describe
// pass through untouched.
//
// Multipart upload bodies are read and bounded by the handler, so for those
// only the route and path parameters are checked. Non-JSON responses (the
// CSV download) are checked for status and headers only.
func NewOpenAPIValidator(basePath string) (gin.HandlerFunc, error) {
	doc, err := openapi.Load()
	if err != nil {
		return nil, err
	}
	router, err := gorillamux.NewRouter(doc)
	if err != nil {
		return nil, fmt.Errorf("create openapi router: %w", err)
	}

	v := &contractValidator{router: router, basePath: normalizeBasePath(basePath)}
	return v.handle, nil
}

type contractValidator struct {
	router   routers.Router
	basePath string
}

type violation struct {
	code    string
	message string
}

func (v *contractValidator) handle(c *gin.Context) {
	req := c.Request
	path, rawPath := req.URL.Path, req.URL.RawPath
	input, bad := v.checkRequest(req)
	req.URL.Path, req.URL.RawPath = path, rawPath

	if bad != nil {
		abortContract(c, http.StatusBadRequest, bad.code, bad.message)
		return
	}
	if input == nil {
		c.Next()
		return
	}

	w := newCaptureWriter(c.Writer)
	c.Writer = w
	c.Next()

	if err := v.checkResponse(req.Context(), input, w); err != nil {
		logger.Error("Response violates the API contract",
			zap.String("method", req.Method),
			zap.String("path", req.URL.Path),
			zap.Int("status", w.Status()),
			zap.Error(err),
		)
		w.replace(http.StatusInternalServerError, codeResponseInvalid, responseInvalidMessage)
	}
	if err := w.flush(); err != nil {
		logger.Warn("Failed to write validated response",
			zap.String("method", req.Method),
			zap.String("path", req.URL.Path),
			zap.Error(err),
		)
	}
}

// checkRequest matches req to a contract operation and validates it. A nil
// input with no violation means the path is outside the contract. req.URL
// may be left rewritten.
func (v *contractValidator) checkRequest(req *http.Request) (*openapi3filter.RequestValidationInput, *violation) {
	route, params, err := v.match(req)
	if err != nil {
		if isPathNotFound(err) {
			return nil, nil
		}
		return nil, &violation{code: codeRouteInvalid, message: err.Error()}
	}

	input := &openapi3filter.RequestValidationInput{
		Request:    req,
		PathParams: params,
		Route:      route,
		Options: &openapi3filter.Options{
			ExcludeRequestBody: isMultipart(req.Header.Get("Content-Type")),
			AuthenticationFunc: noAuthentication,
		},
	}
	if err := openapi3filter.ValidateRequest(req.Context(), input); err != nil {
		return nil, &violation{code: codeRequestInvalid, message: err.Error()}
	}
	return input, nil
}

// match tries the path as received, then with the base path removed since
// contract paths are relative to it.
func (v *contractValidator) match(req *http.Request) (*routers.Route, map[string]string, error) {
	paths := [][2]string{{req.URL.Path, req.URL.RawPath}}
	stripped := [2]string{contractPath(v.basePath, req.URL.Path), req.URL.RawPath}
	if stripped[1] != "" {
		stripped[1] = contractPath(v.basePath, stripped[1])
	}
	if stripped != paths[0] {
		paths = append(paths, stripped)
	}

	var lastErr error
	for _, p := range paths {
		req.URL.Path, req.URL.RawPath = p[0], p[1]
		route, params, err := v.router.FindRoute(req)
		if err == nil {
			return route, params, nil
		}
		if !isPathNotFound(err) {
			return nil, nil, err
		}
		lastErr = err
	}
	return nil, nil, lastErr
}

func (v *contractValidator) checkResponse(ctx context.Context, input *openapi3filter.RequestValidationInput, w *captureWriter) error {
	out := &openapi3filter.ResponseValidationInput{
		RequestValidationInput: input,
		Status:                 w.Status(),
		Header:                 w.Header().Clone(),
		Options: &openapi3filter.Options{
			ExcludeResponseBody: !isJSON(w.Header().Get("Content-Type")),
			AuthenticationFunc:  noAuthentication,
		},
	}
	if w.body.Len() > 0 {
		out.SetBodyBytes(w.body.Bytes())
	}
	return openapi3filter.ValidateResponse(ctx, out)
}

func noAuthentication(context.Context, *openapi3filter.AuthenticationInput) error { return nil }

func isMultipart(contentType string) bool {
	return strings.HasPrefix(strings.ToLower(contentType), "multipart/")
}

func isJSON(contentType string) bool {
	return strings.HasPrefix(strings.ToLower(contentType), "application/json")
}

// normalizeBasePath returns "/x/y" for any spelling of a base path, or ""
// for the root.
func normalizeBasePath(basePath string) string {
	basePath = strings.Trim(strings.TrimSpace(basePath), "/")
	if basePath == "" {
		return ""
	}
	return "/" + basePath
}

// contractPath strips basePath from path. Paths outside basePath are
// returned unchanged.
func contractPath(basePath, path string) string {
	switch {
	case basePath == "" && path == "":
		return "/"
	case basePath == "":
		return path
	case path == basePath:
		return "/"
	case strings.HasPrefix(path, basePath+"/"):
		return strings.TrimPrefix(path, basePath)
	default:
		return path
	}
}

func isPathNotFound(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, routers.ErrPathNotFound) {
		return true
	}
	// gorillamux reports a miss as a fresh RouteError with the same reason.
	return strings.Contains(err.Error(), routers.ErrPathNotFound.Error())
}

func abortContract(c *gin.Context, status int, code, message string) {
	c.AbortWithStatusJSON(status, gin.H{"code": code, "message": message})
}

// captureWriter holds the handler's response until it has been validated.
type captureWriter struct {
	gin.ResponseWriter
	body   bytes.Buffer
	status int
	wrote  bool
}

func newCaptureWriter(w gin.ResponseWriter) *captureWriter {
	return &captureWriter{ResponseWriter: w, status: http.StatusOK}
}

func (w *captureWriter) WriteHeader(code int) {
	if !w.wrote {
		w.status, w.wrote = code, true
	}
}

func (w *captureWriter) WriteHeaderNow() { w.wrote = true }

func (w *captureWriter) Write(data []byte) (int, error) {
	w.wrote = true
	return w.body.Write(data)
}

func (w *captureWriter) WriteString(s string) (int, error) { return w.Write([]byte(s)) }

func (w *captureWriter) Status() int { return w.status }

func (w *captureWriter) Size() int { return w.body.Len() }

func (w *captureWriter) Written() bool { return w.wrote }

// replace discards the captured response and substitutes a JSON error.
func (w *captureWriter) replace(status int, code, message string) {
	w.status, w.wrote = status, true
	w.body.Reset()
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	data, err := json.Marshal(gin.H{"code": code, "message": message})
	if err != nil {
		return
	}
	w.body.Write(data)
}

// flush sends the captured response to the client.
func (w *captureWriter) flush() error {
	w.ResponseWriter.WriteHeader(w.status)
	if w.body.Len() == 0 {
		return nil
	}
	_, err := w.ResponseWriter.Write(w.body.Bytes())
	return err
}
