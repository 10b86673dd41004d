// Package server binds the admission pipeline to HTTP: it builds the
// request descriptor, runs the pipeline, and renders success or error
// payloads per endpoint.
package server

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net"
	"net/http"

	"github.com/google/uuid"

	"github.com/collinskramp/mao-http-endpoint-mock/internal/clock"
	"github.com/collinskramp/mao-http-endpoint-mock/internal/sim"
)

const maxBodyBytes = 1 << 20

// Server is the HTTP binding of the failure-simulating endpoint.
type Server struct {
	pipe *sim.Pipeline
	clk  clock.Clock
	log  *slog.Logger
}

// New returns a Server over the given pipeline.
func New(pipe *sim.Pipeline, clk clock.Clock, log *slog.Logger) *Server {
	return &Server{pipe: pipe, clk: clk, log: log}
}

// Handler returns the fully wrapped main-listener handler.
func (s *Server) Handler() http.Handler {
	return AccessLog(s.log, Tracing(s))
}

// ServeHTTP implements the endpoint contract. Paths are case-sensitive
// and matched after the query string is stripped.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	setCORS(w)

	// OPTIONS bypasses the pipeline entirely.
	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	// Manual operator recovery also bypasses every admission gate.
	if r.Method == http.MethodPost && r.URL.Path == "/reset-circuit-breaker" {
		s.pipe.ResetBreaker()
		writeJSON(w, http.StatusOK, map[string]any{
			"status":    "success",
			"message":   "Circuit breaker reset",
			"requestId": newRequestID(),
			"timestamp": s.timestamp(),
		})
		return
	}

	req := sim.Request{
		ID:        newRequestID(),
		Method:    r.Method,
		Path:      r.URL.Path,
		ClientKey: clientKey(r),
		Body:      parseBody(r),
		Query:     r.URL.Query(),
	}

	out := s.pipe.Process(req)
	if !out.OK() {
		s.writeError(w, req.ID, out)
		return
	}
	s.dispatch(w, req, out)
}

// dispatch renders the endpoint-specific success payload. A panic here
// must still produce a well-formed JSON error body.
func (s *Server) dispatch(w http.ResponseWriter, req sim.Request, out sim.Outcome) {
	defer func() {
		if rec := recover(); rec != nil {
			s.log.Error("panic in success dispatch",
				"request_id", req.ID, "path", req.Path, "panic", fmt.Sprint(rec))
			s.writeError(w, req.ID, sim.Outcome{
				ErrType:      sim.KindUnexpected,
				Status:       sim.KindUnexpected.StatusCode(),
				ResponseTime: out.ResponseTime,
			})
		}
	}()

	base := s.successBase(req.ID, out)

	switch {
	case req.Method == http.MethodGet && (req.Path == "/" || req.Path == "/health"):
		if name := req.Query.Get("name"); req.Path == "/" && name != "" {
			base["message"] = fmt.Sprintf("Hello %s!", name)
			writeJSON(w, http.StatusOK, base)
			return
		}
		snap := s.pipe.Snapshot()
		base["status"] = "healthy"
		base["uptime_seconds"] = snap.UptimeSeconds
		base["metrics"] = map[string]any{
			"total_requests":       snap.TotalRequests,
			"successful_requests":  snap.SuccessCount,
			"failed_requests":      snap.ErrorCount,
			"avg_response_time_ms": snap.AvgResponseTimeMs,
		}
		base["circuit_breaker"] = snap.Breaker
		writeJSON(w, http.StatusOK, base)

	case req.Method == http.MethodPost && req.Path == "/hello":
		name, _ := req.Body["name"].(string)
		if name == "" {
			s.writeValidationError(w, req.ID, "field 'name' is required", out)
			return
		}
		base["message"] = fmt.Sprintf("Hello %s!", name)
		writeJSON(w, http.StatusOK, base)

	case req.Method == http.MethodPost && req.Path == "/":
		if name, _ := req.Body["name"].(string); name != "" {
			base["message"] = fmt.Sprintf("Hello %s!", name)
		} else {
			base["message"] = "Request processed"
			base["echo"] = req.Body
		}
		base["method"] = req.Method
		base["path"] = req.Path
		writeJSON(w, http.StatusOK, base)

	default:
		base["message"] = fmt.Sprintf("%s %s processed", req.Method, req.Path)
		base["method"] = req.Method
		base["path"] = req.Path
		writeJSON(w, http.StatusOK, base)
	}
}

func (s *Server) timestamp() string {
	return s.clk.Now().UTC().Format("2006-01-02T15:04:05.000Z07:00")
}

func newRequestID() string {
	return "req_" + uuid.NewString()
}

// clientKey identifies the caller for rate limiting: the X-Client-ID
// header when present, else the host part of the remote address.
func clientKey(r *http.Request) string {
	if id := r.Header.Get("X-Client-ID"); id != "" {
		return id
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// parseBody decodes a JSON object body, tolerating absence and garbage.
// A missing or unparseable body is simply a nil map.
func parseBody(r *http.Request) map[string]any {
	if r.Body == nil || r.Method == http.MethodGet || r.Method == http.MethodHead {
		return nil
	}
	var body map[string]any
	dec := json.NewDecoder(http.MaxBytesReader(nil, r.Body, maxBodyBytes))
	if err := dec.Decode(&body); err != nil {
		return nil
	}
	return body
}
