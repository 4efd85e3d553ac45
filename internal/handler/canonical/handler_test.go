package canonical

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	canonicalService "github.com/jwalitptl/admin-records/internal/service/canonical"
	"github.com/jwalitptl/admin-records/pkg/logger"
	"github.com/jwalitptl/admin-records/pkg/metrics"
	"github.com/jwalitptl/admin-records/pkg/validator"
)

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func setupRouter(t *testing.T, maxBatch int, bodyLimit int64) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	svc := canonicalService.NewService(
		canonicalService.Config{Concurrency: 4, MaxBatch: maxBatch},
		logger.Nop(),
		metrics.NewWithRegistry(prometheus.NewRegistry(), "test", "canonical"),
	)

	r := gin.New()
	api := r.Group("/api/v1")
	if bodyLimit > 0 {
		api.Use(func(c *gin.Context) {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, bodyLimit)
			c.Next()
		})
	}
	NewHandler(svc, validator.New()).RegisterRoutes(api)
	return r
}

func post(t *testing.T, r *gin.Engine, path, body string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	return w, env
}

func TestCanonicalize_SingleRecord(t *testing.T) {
	r := setupRouter(t, 10, 0)

	w, env := post(t, r, "/api/v1/patients/canonicalize", `{"_id": "p-1", "name": "Ravi Kumar", "status": "INACTIVE"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, env.Success)

	var patient map[string]interface{}
	require.NoError(t, json.Unmarshal(env.Data, &patient))
	assert.Equal(t, "p-1", patient["id"])
	assert.Equal(t, "Ravi", patient["firstName"])
	assert.Equal(t, "Kumar", patient["lastName"])
	assert.Equal(t, "inactive", patient["status"])
}

func TestCanonicalize_Batch(t *testing.T) {
	r := setupRouter(t, 10, 0)

	bodies := map[string]string{
		"envelope":   `{"records": [{"_id": "s-1"}, {"_id": "s-2"}, {"_id": "s-3"}]}`,
		"bare array": `[{"_id": "s-1"}, {"_id": "s-2"}, {"_id": "s-3"}]`,
	}
	for name, body := range bodies {
		t.Run(name, func(t *testing.T) {
			w, env := post(t, r, "/api/v1/staff/canonicalize", body)
			require.Equal(t, http.StatusOK, w.Code, w.Body.String())

			var out struct {
				Entity  string                   `json:"entity"`
				Count   int                      `json:"count"`
				Records []map[string]interface{} `json:"records"`
			}
			require.NoError(t, json.Unmarshal(env.Data, &out))
			assert.Equal(t, "staff", out.Entity)
			assert.Equal(t, 3, out.Count)
			for i, rec := range out.Records {
				assert.Equal(t, []string{"s-1", "s-2", "s-3"}[i], rec["id"])
			}
		})
	}
}

func TestCanonicalize_BadRequests(t *testing.T) {
	r := setupRouter(t, 2, 0)

	tests := []struct {
		name string
		path string
		body string
		code int
	}{
		{"unknown entity", "/api/v1/invoices/canonicalize", `{}`, http.StatusBadRequest},
		{"malformed json", "/api/v1/patient/canonicalize", `{"_id": `, http.StatusBadRequest},
		{"scalar body", "/api/v1/patient/canonicalize", `42`, http.StatusBadRequest},
		{"empty records", "/api/v1/patient/canonicalize", `{"records": []}`, http.StatusBadRequest},
		{"records not objects", "/api/v1/patient/canonicalize", `{"records": [1, 2]}`, http.StatusBadRequest},
		{"batch over limit", "/api/v1/patient/canonicalize", `[{}, {}, {}]`, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, env := post(t, r, tt.path, tt.body)
			assert.Equal(t, tt.code, w.Code)
			assert.False(t, env.Success)
			require.NotNil(t, env.Error)
			assert.Equal(t, tt.code, env.Error.Code)
		})
	}
}

func TestCanonicalize_BodyTooLarge(t *testing.T) {
	r := setupRouter(t, 10, 16)

	w, env := post(t, r, "/api/v1/patient/canonicalize", `{"_id": "p-1", "name": "a name longer than the limit"}`)
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	require.NotNil(t, env.Error)
	assert.Equal(t, "request body too large", env.Error.Message)
}

func TestSerialize(t *testing.T) {
	r := setupRouter(t, 10, 0)

	w, env := post(t, r, "/api/v1/appointments/serialize",
		`{"id": "a-1", "clientName": "Meera", "dateTime": "2025-03-05T09:30:00Z", "duration": 0}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(env.Data, &out))
	assert.Equal(t, "a-1", out["id"])
	assert.Equal(t, "2025-03-05", out["date"])
	assert.Equal(t, "09:30", out["time"])
	assert.Equal(t, "scheduled", out["status"])

	w, _ = post(t, r, "/api/v1/appointments/serialize", `{"duration": "long"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestComposeProfile(t *testing.T) {
	r := setupRouter(t, 10, 0)

	w, env := post(t, r, "/api/v1/profiles/doctor",
		`{"_id": "u-1", "role": "Doctor", "firstName": "Anita", "specialization": "Cardiology"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var out struct {
		Profile map[string]interface{} `json:"profile"`
		Wire    map[string]interface{} `json:"wire"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &out))
	assert.Equal(t, "doctor", out.Profile["role"])
	assert.Equal(t, "Cardiology", out.Profile["specialization"])
	assert.Equal(t, "doctor", out.Wire["role"])
	assert.Equal(t, "Cardiology", out.Wire["specialization"])

	w, env = post(t, r, "/api/v1/profiles/doctor", `{"_id": "u-2", "role": "pharmacist"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	require.NotNil(t, env.Error)

	w, _ = post(t, r, "/api/v1/profiles/janitor", `{"_id": "u-3", "role": "janitor"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = post(t, r, "/api/v1/profiles/doctor", `[]`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
