package server

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/collinskramp/mao-http-endpoint-mock/internal/sim"
)

// errorPayload is the common machine-readable error body.
type errorPayload struct {
	Status                string   `json:"status"`
	Message               string   `json:"message"`
	Timestamp             string   `json:"timestamp"`
	RequestID             string   `json:"requestId"`
	ErrorType             string   `json:"error_type"`
	RetryAfter            *float64 `json:"retry_after,omitempty"`
	CircuitBreakerState   string   `json:"circuit_breaker_state,omitempty"`
	RecoveryTimeRemaining *float64 `json:"recovery_time_remaining,omitempty"`
	ResponseTimeMs        *float64 `json:"response_time_ms,omitempty"`
}

func (s *Server) writeError(w http.ResponseWriter, requestID string, out sim.Outcome) {
	p := errorPayload{
		Status:    "error",
		Message:   out.ErrType.Message(),
		Timestamp: s.timestamp(),
		RequestID: requestID,
		ErrorType: string(out.ErrType),
	}
	if out.RetryAfter > 0 {
		secs := out.RetryAfter.Seconds()
		p.RetryAfter = &secs
		w.Header().Set("Retry-After", strconv.Itoa(int(out.RetryAfter.Round(time.Second).Seconds())))
	}
	if out.ErrType == sim.KindBreakerOpen {
		p.CircuitBreakerState = out.BreakerState
		secs := out.RecoveryRemaining.Seconds()
		p.RecoveryTimeRemaining = &secs
	}
	if out.ResponseTime > 0 {
		ms := float64(out.ResponseTime) / float64(time.Millisecond)
		p.ResponseTimeMs = &ms
	}
	writeJSON(w, out.Status, p)
}

// writeValidationError handles the endpoint-level check that runs after
// pipeline success and bypasses the error-injection machinery. It does
// not feed the circuit breaker.
func (s *Server) writeValidationError(w http.ResponseWriter, requestID, msg string, out sim.Outcome) {
	ms := float64(out.ResponseTime) / float64(time.Millisecond)
	writeJSON(w, http.StatusBadRequest, errorPayload{
		Status:         "error",
		Message:        msg,
		Timestamp:      s.timestamp(),
		RequestID:      requestID,
		ErrorType:      string(sim.KindValidation),
		ResponseTimeMs: &ms,
	})
}

// successBase carries the fields present on every success payload.
func (s *Server) successBase(requestID string, out sim.Outcome) map[string]any {
	return map[string]any{
		"status":              "success",
		"requestId":           requestID,
		"timestamp":           s.timestamp(),
		"response_time_ms":    float64(out.ResponseTime) / float64(time.Millisecond),
		"artificial_delay_ms": out.Delay.Milliseconds(),
		"normal_period":       out.NormalPeriod,
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func setCORS(w http.ResponseWriter) {
	h := w.Header()
	h.Set("Access-Control-Allow-Origin", "*")
	h.Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
	h.Set("Access-Control-Allow-Headers", "Content-Type, X-Client-ID")
}
