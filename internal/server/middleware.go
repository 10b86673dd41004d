package server

import (
	"log/slog"
	"net/http"
	"time"

	"go.opentelemetry.io/otel"
)

// statusCapture records the status code written downstream.
type statusCapture struct {
	http.ResponseWriter
	statusCode int
}

func (sc *statusCapture) WriteHeader(code int) {
	sc.statusCode = code
	sc.ResponseWriter.WriteHeader(code)
}

// AccessLog logs one line per request with method, path, status, and
// wall-clock duration.
func AccessLog(log *slog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sc := &statusCapture{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(sc, r)

		log.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", sc.statusCode,
			"duration_ms", time.Since(start).Milliseconds(),
		)
	})
}

// Tracing opens one span per request.
func Tracing(next http.Handler) http.Handler {
	tracer := otel.Tracer("mock-endpoint")

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), r.URL.Path)
		defer span.End()

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
