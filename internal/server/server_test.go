package server

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/collinskramp/mao-http-endpoint-mock/internal/clock"
	"github.com/collinskramp/mao-http-endpoint-mock/internal/config"
	"github.com/collinskramp/mao-http-endpoint-mock/internal/random"
	"github.com/collinskramp/mao-http-endpoint-mock/internal/sim"
)

// quietConfig disables every probabilistic gate so handler behavior can
// be asserted without scripting randomness.
func quietConfig() config.Config {
	cfg := config.Default()
	cfg.BaseSuccessRate = 1.0
	cfg.OutageChance = 0
	cfg.NormalPeriodChance = 0
	cfg.SlowResponseChance = 0
	cfg.ServerErrorChance = 0
	cfg.ClientErrorChance = 0
	cfg.TimeoutChance = 0
	return cfg
}

func newTestServer(cfg config.Config) (*Server, *sim.Pipeline) {
	clk := clock.NewFake(time.Unix(1700000000, 0))
	pipe := sim.NewPipeline(cfg, clk, random.New(1))
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return New(pipe, clk, log), pipe
}

func do(s *Server, method, target, body string) *httptest.ResponseRecorder {
	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, rd)
	w := httptest.NewRecorder()
	s.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var m map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &m))
	return m
}

func TestServer_OptionsBypassesPipeline(t *testing.T) {
	s, pipe := newTestServer(quietConfig())

	w := do(s, http.MethodOptions, "/anything", "")

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Zero(t, pipe.Metrics().TotalRequests, "OPTIONS must not run the pipeline")
}

func TestServer_HealthPayload(t *testing.T) {
	s, _ := newTestServer(quietConfig())

	for _, path := range []string{"/", "/health"} {
		w := do(s, http.MethodGet, path, "")
		require.Equal(t, http.StatusOK, w.Code, path)

		body := decode(t, w)
		assert.Equal(t, "healthy", body["status"])
		assert.NotEmpty(t, body["requestId"])
		assert.NotEmpty(t, body["timestamp"])
		assert.Contains(t, body, "response_time_ms")
		assert.Contains(t, body, "artificial_delay_ms")
		assert.Equal(t, false, body["normal_period"])

		metrics, ok := body["metrics"].(map[string]any)
		require.True(t, ok)
		assert.Contains(t, metrics, "total_requests")

		cb, ok := body["circuit_breaker"].(map[string]any)
		require.True(t, ok)
		assert.Equal(t, "closed", cb["state"])
	}
}

func TestServer_HelloQueryVariant(t *testing.T) {
	s, _ := newTestServer(quietConfig())

	w := do(s, http.MethodGet, "/?name=Ada", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Hello Ada!", decode(t, w)["message"])

	// /health does not have the hello variant.
	w = do(s, http.MethodGet, "/health?name=Ada", "")
	assert.Equal(t, "healthy", decode(t, w)["status"])
}

func TestServer_PostRoot(t *testing.T) {
	s, _ := newTestServer(quietConfig())

	w := do(s, http.MethodPost, "/", `{"name":"Bob"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Hello Bob!", decode(t, w)["message"])

	w = do(s, http.MethodPost, "/", `{"foo":42}`)
	body := decode(t, w)
	assert.Equal(t, "Request processed", body["message"])
	echo, ok := body["echo"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, float64(42), echo["foo"])
}

func TestServer_HelloValidation(t *testing.T) {
	s, pipe := newTestServer(quietConfig())

	w := do(s, http.MethodPost, "/hello", `{"name":"Eve"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Hello Eve!", decode(t, w)["message"])

	for _, body := range []string{"", `{}`, `{"name":""}`, `not json`} {
		w := do(s, http.MethodPost, "/hello", body)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		resp := decode(t, w)
		assert.Equal(t, "error", resp["status"])
		assert.Equal(t, "validation_error", resp["error_type"])
		assert.NotEmpty(t, resp["requestId"])
	}

	// Validation errors do not feed the circuit breaker.
	assert.Zero(t, pipe.Snapshot().Breaker.ErrorWindowSize)
}

func TestServer_CatchAllEcho(t *testing.T) {
	s, _ := newTestServer(quietConfig())

	w := do(s, http.MethodDelete, "/widgets/7", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "DELETE /widgets/7 processed", decode(t, w)["message"])

	// GET on /hello is not the POST contract; it falls through.
	w = do(s, http.MethodGet, "/hello", "")
	assert.Equal(t, "GET /hello processed", decode(t, w)["message"])
}

func TestServer_RateLimitResponse(t *testing.T) {
	cfg := quietConfig()
	cfg.RateLimitMax = 1
	s, _ := newTestServer(cfg)

	require.Equal(t, http.StatusOK, do(s, http.MethodGet, "/health", "").Code)

	w := do(s, http.MethodGet, "/health", "")
	require.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "10", w.Header().Get("Retry-After"))

	body := decode(t, w)
	assert.Equal(t, "error", body["status"])
	assert.Equal(t, "rate_limit", body["error_type"])
	assert.Equal(t, float64(10), body["retry_after"])
	assert.NotEmpty(t, body["timestamp"])
}

func TestServer_BreakerRejectionAndReset(t *testing.T) {
	cfg := quietConfig()
	cfg.ServerErrorChance = 1
	cfg.CircuitBreakerThreshold = 1
	s, _ := newTestServer(cfg)

	// One injected error fills the window; the next request trips the
	// breaker.
	require.Equal(t, http.StatusInternalServerError, do(s, http.MethodGet, "/", "").Code)

	w := do(s, http.MethodGet, "/", "")
	require.Equal(t, http.StatusServiceUnavailable, w.Code)
	body := decode(t, w)
	assert.Equal(t, "circuit_breaker_open", body["error_type"])
	assert.Equal(t, "open", body["circuit_breaker_state"])
	assert.Contains(t, body, "recovery_time_remaining")

	// Reset always succeeds regardless of breaker state.
	w = do(s, http.MethodPost, "/reset-circuit-breaker", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "success", decode(t, w)["status"])

	// Admission works again: the 100% injection rate classifies a
	// server_error instead of a breaker rejection.
	assert.Equal(t, http.StatusInternalServerError, do(s, http.MethodGet, "/", "").Code)
}

func TestServer_RequestIDsAreUnique(t *testing.T) {
	s, _ := newTestServer(quietConfig())

	a := decode(t, do(s, http.MethodGet, "/health", ""))["requestId"].(string)
	b := decode(t, do(s, http.MethodGet, "/health", ""))["requestId"].(string)

	assert.True(t, strings.HasPrefix(a, "req_"))
	assert.NotEqual(t, a, b)
}
