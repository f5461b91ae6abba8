package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/health-assessment-mcp-server/internal/domain"
	"github.com/health-assessment-mcp-server/internal/service"
)

type stubConfigManager struct {
	cfg *domain.Config
}

func (m *stubConfigManager) GetConfig() *domain.Config             { return m.cfg }
func (m *stubConfigManager) GetServerConfig() *domain.ServerConfig { return &m.cfg.Server }
func (m *stubConfigManager) GetCacheConfig() *domain.CacheConfig   { return &m.cfg.Cache }
func (m *stubConfigManager) Reload() error                         { return nil }
func (m *stubConfigManager) Validate() error                       { return nil }
func (m *stubConfigManager) IsProduction() bool                    { return false }
func (m *stubConfigManager) IsDevelopment() bool                   { return true }

type failingCache struct{}

func (failingCache) Get(context.Context, *domain.PatientInput) (*domain.Assessment, bool) {
	return nil, false
}
func (failingCache) Set(context.Context, *domain.PatientInput, *domain.Assessment) error {
	return errors.New("down")
}
func (failingCache) Ping(context.Context) error { return errors.New("down") }
func (failingCache) Close() error               { return nil }

type statsCache struct{}

func (statsCache) Get(context.Context, *domain.PatientInput) (*domain.Assessment, bool) {
	return nil, false
}
func (statsCache) Set(context.Context, *domain.PatientInput, *domain.Assessment) error { return nil }
func (statsCache) Ping(context.Context) error                                         { return nil }
func (statsCache) Close() error                                                       { return nil }
func (statsCache) Stats() map[string]interface{} {
	return map[string]interface{}{"local_entries": 3, "redis_enabled": false}
}

func newTestServer(t *testing.T, opts ...ServerOption) *Server {
	t.Helper()
	return newTestServerWithConfig(t, &domain.Config{Logging: domain.LoggingConfig{Level: "info"}}, opts...)
}

func newTestServerWithConfig(t *testing.T, cfg *domain.Config, opts ...ServerOption) *Server {
	t.Helper()
	gin.SetMode(gin.TestMode)

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	return NewServer(&stubConfigManager{cfg: cfg}, service.NewAssessor(logger), logger, opts...)
}

func patientJSON(overrides map[string]any) []byte {
	body := map[string]any{
		"age":              65,
		"sex":              "female",
		"height_cm":        165,
		"weight_kg":        70,
		"creatinine_mg_dl": 1.0,
		"systolic_bp":      145,
		"diastolic_bp":     85,
		"grip_strength":    "weak",
		"slow_walk":        "yes",
		"weight_loss":      "no",
		"fatigue":          "yes",
		"activity_level":   "normal",
		"drinking":         "none",
		"smoking":          "current",
		"betel_nut":        "none",
		"drug_use":         "none",
		"stress_level":     4,
		"sleep_hours":      6.5,
	}
	for k, v := range overrides {
		body[k] = v
	}
	b, _ := json.Marshal(body)
	return b
}

func do(s *Server, method, path string, body []byte) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	return w
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)
	w := do(s, http.MethodGet, "/health", nil)

	require.Equal(t, http.StatusOK, w.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, service.EngineVersion, body["engine_version"])
	assert.NotEmpty(t, w.Header().Get("X-Correlation-ID"))
}

func TestHealth_DegradedCache(t *testing.T) {
	s := newTestServer(t, WithCache(failingCache{}))
	w := do(s, http.MethodGet, "/health", nil)

	require.Equal(t, http.StatusOK, w.Code)
	var body struct {
		Checks map[string]string `json:"checks"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "degraded", body.Checks["cache"])
}

func TestHealth_CacheStats(t *testing.T) {
	s := newTestServer(t, WithCache(statsCache{}))
	w := do(s, http.MethodGet, "/health", nil)

	require.Equal(t, http.StatusOK, w.Code)
	var body struct {
		Checks struct {
			Cache      string         `json:"cache"`
			CacheStats map[string]any `json:"cache_stats"`
		} `json:"checks"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "ok", body.Checks.Cache)
	assert.EqualValues(t, 3, body.Checks.CacheStats["local_entries"])
	assert.Equal(t, false, body.Checks.CacheStats["redis_enabled"])
}

func TestAssess(t *testing.T) {
	s := newTestServer(t)
	w := do(s, http.MethodPost, "/api/v1/assessments", patientJSON(nil))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var assessment domain.Assessment
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &assessment))

	assert.InDelta(t, 59.0733, assessment.Result.EGFR, 1e-4)
	assert.InDelta(t, 25.7117, assessment.Result.BMI, 1e-4)
	assert.Equal(t, 3, assessment.Result.FrailtyScore)
	assert.Equal(t, domain.FrailtyFrail, assessment.Result.FrailtyLevel)
	assert.Equal(t, 1, assessment.Result.LifestyleRiskScore)
	assert.Equal(t, []domain.Specialty{
		domain.SpecialtyNephrology,
		domain.SpecialtyCardiology,
		domain.SpecialtyGeriatricsRehab,
		domain.SpecialtyCessationOralENT,
	}, assessment.Recommendations.Referrals)
	assert.Equal(t, []domain.Advisory{
		domain.AdvisorySmokingCessation,
		domain.AdvisoryOverweight,
	}, assessment.Recommendations.Advisories)
}

func TestAssess_ValidationError(t *testing.T) {
	s := newTestServer(t)
	w := do(s, http.MethodPost, "/api/v1/assessments", patientJSON(map[string]any{"sleep_hours": 6.3}))
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)

	var body struct {
		Error domain.MCPError `json:"error"`
		Field string          `json:"field"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "sleep_hours", body.Field)
	assert.Equal(t, domain.ErrValidation, body.Error.Code)
	assert.Equal(t, w.Header().Get("X-Correlation-ID"), body.Error.RequestID)
}

func TestAssess_MalformedBody(t *testing.T) {
	s := newTestServer(t)
	w := do(s, http.MethodPost, "/api/v1/assessments", []byte(`{"age": "old"`))
	require.Equal(t, http.StatusBadRequest, w.Code)

	var body domain.MCPError
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, domain.ErrInvalidInput, body.Code)
}

func TestValidate(t *testing.T) {
	s := newTestServer(t)

	w := do(s, http.MethodPost, "/api/v1/validate", patientJSON(nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"valid":true}`, w.Body.String())

	w = do(s, http.MethodPost, "/api/v1/validate", patientJSON(map[string]any{"sex": "other"}))
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestRules(t *testing.T) {
	s := newTestServer(t)
	w := do(s, http.MethodGet, "/api/v1/rules", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Rules []service.RuleDefinition `json:"rules"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Len(t, body.Rules, 16)
	assert.Equal(t, "REF1", body.Rules[0].Code)
	assert.Equal(t, "ADV10", body.Rules[15].Code)
}

func TestReferenceValues(t *testing.T) {
	s := newTestServer(t)
	w := do(s, http.MethodGet, "/api/v1/reference-values", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		ReferenceValues []domain.ReferenceValue `json:"reference_values"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Len(t, body.ReferenceValues, len(domain.IdealReferenceValues()))
}

func TestMCPHandlerMounted(t *testing.T) {
	called := false
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		w.WriteHeader(http.StatusAccepted)
	})
	s := newTestServer(t, WithMCPHandler("/mcp", h))

	w := do(s, http.MethodPost, "/mcp", []byte(`{}`))
	assert.True(t, called)
	assert.Equal(t, http.StatusAccepted, w.Code)
}

func TestMCPHandlerBypassesRequestLimits(t *testing.T) {
	cfg := &domain.Config{
		Logging: domain.LoggingConfig{Level: "info"},
		Server:  domain.ServerConfig{RequestTimeout: 20 * time.Millisecond},
		RateLimit: domain.RateLimitConfig{
			Enabled:           true,
			RequestsPerSecond: 0.001,
			Burst:             1,
			ClientTTL:         time.Minute,
		},
	}
	var deadlines []bool
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, ok := r.Context().Deadline()
		deadlines = append(deadlines, ok)
		w.WriteHeader(http.StatusAccepted)
	})
	s := newTestServerWithConfig(t, cfg, WithMCPHandler("/mcp", h))

	for i := 0; i < 3; i++ {
		assert.Equal(t, http.StatusAccepted, do(s, http.MethodPost, "/mcp", []byte(`{}`)).Code)
	}
	assert.Equal(t, []bool{false, false, false}, deadlines)

	// REST routes keep the limiter.
	assert.Equal(t, http.StatusOK, do(s, http.MethodGet, "/health", nil).Code)
	assert.Equal(t, http.StatusTooManyRequests, do(s, http.MethodGet, "/health", nil).Code)
}
