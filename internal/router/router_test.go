package router

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	canonicalHandler "github.com/jwalitptl/admin-records/internal/handler/canonical"
	"github.com/jwalitptl/admin-records/internal/handler/health"
	promHandler "github.com/jwalitptl/admin-records/internal/handler/prometheus"
	"github.com/jwalitptl/admin-records/internal/middleware"
	canonicalService "github.com/jwalitptl/admin-records/internal/service/canonical"
	"github.com/jwalitptl/admin-records/pkg/httputil"
	"github.com/jwalitptl/admin-records/pkg/logger"
	"github.com/jwalitptl/admin-records/pkg/metrics"
	"github.com/jwalitptl/admin-records/pkg/validator"
)

func newTestRouter(t *testing.T, config RouterConfig) (*Router, *health.Handler) {
	t.Helper()
	reg := prometheus.NewRegistry()
	m := metrics.NewWithRegistry(reg, "test", "canonical")
	svc := canonicalService.NewService(canonicalService.DefaultConfig(), logger.Nop(), m)

	healthH := health.NewHandler([]string{"patient", "staff"})
	if config.CORSConfig.AllowOrigins == nil {
		config.CORSConfig = middleware.DefaultCORSConfig()
	}
	r := NewRouter(healthH, promHandler.New(reg, m), config, canonicalHandler.NewHandler(svc, validator.New()))
	r.Setup()
	return r, healthH
}

func do(r *Router, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	w := httptest.NewRecorder()
	r.Engine().ServeHTTP(w, req)
	return w
}

func TestRouter_Health(t *testing.T) {
	r, healthH := newTestRouter(t, RouterConfig{})

	w := do(r, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"entities":["patient","staff"]`)
	assert.NotEmpty(t, w.Header().Get(middleware.HeaderXRequestID))
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))

	assert.Equal(t, http.StatusOK, do(r, http.MethodGet, "/health/ready", "").Code)
	healthH.Drain()
	assert.Equal(t, http.StatusServiceUnavailable, do(r, http.MethodGet, "/health/ready", "").Code)
	assert.Equal(t, http.StatusOK, do(r, http.MethodGet, "/health/live", "").Code)
}

func TestRouter_CanonicalizeAndMetrics(t *testing.T) {
	r, _ := newTestRouter(t, RouterConfig{MetricsPath: "/metrics"})

	w := do(r, http.MethodPost, "/api/v1/patient/canonicalize", `{"_id": "p-1", "firstName": "Asha"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "1.0", w.Header().Get(middleware.HeaderAPIVersion))

	var resp httputil.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)

	w = do(r, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, "test_canonical_records_canonicalized_total")
	assert.Contains(t, body, `path="/api/v1/:entity/canonicalize"`)
}

func TestRouter_MetricsDisabled(t *testing.T) {
	r, _ := newTestRouter(t, RouterConfig{})

	assert.Equal(t, http.StatusNotFound, do(r, http.MethodGet, "/metrics", "").Code)
}

func TestRouter_NoRoute(t *testing.T) {
	r, _ := newTestRouter(t, RouterConfig{})

	w := do(r, http.MethodGet, "/api/v2/anything", "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	var resp httputil.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotNil(t, resp.Error)
	assert.Equal(t, "route not found", resp.Error.Message)
}

func TestRouter_APIGuards(t *testing.T) {
	r, _ := newTestRouter(t, RouterConfig{MaxBodyBytes: 32})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/patient/canonicalize", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "text/plain")
	w := httptest.NewRecorder()
	r.Engine().ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnsupportedMediaType, w.Code)

	w = do(r, http.MethodPost, "/api/v1/patient/canonicalize", `{"_id": "p-1", "notes": "`+strings.Repeat("x", 64)+`"}`)
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)

	req = httptest.NewRequest(http.MethodPost, "/api/v1/patient/canonicalize", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(middleware.HeaderAcceptVersion, "9.0")
	w = httptest.NewRecorder()
	r.Engine().ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotAcceptable, w.Code)
}

func TestRouter_RateLimit(t *testing.T) {
	r, _ := newTestRouter(t, RouterConfig{RateLimitEnabled: true, RateLimit: rate.Limit(0.001), RateBurst: 1})

	assert.Equal(t, http.StatusOK, do(r, http.MethodGet, "/health", "").Code)
	assert.Equal(t, http.StatusTooManyRequests, do(r, http.MethodGet, "/health", "").Code)
}
