package server

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/collinskramp/mao-http-endpoint-mock/internal/analytics"
)

// OpsHandler serves the operational surface on a separate listener so
// the main endpoint contract (every unknown path runs the pipeline)
// stays exact. Routes: /metrics (Prometheus), /status (state snapshot),
// and /analytics when a Redis sink is configured.
func (s *Server) OpsHandler(a *analytics.Analytics) http.Handler {
	mux := http.NewServeMux()

	mux.Handle("/metrics", promhttp.Handler())

	mux.HandleFunc("/status", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		writeJSON(w, http.StatusOK, s.pipe.Snapshot())
	})

	if a != nil {
		mux.HandleFunc("/analytics", func(w http.ResponseWriter, r *http.Request) {
			clientKey := r.URL.Query().Get("client")
			if clientKey == "" {
				http.Error(w, "client query missing", http.StatusBadRequest)
				return
			}
			data, err := a.FetchClientAnalytics(clientKey)
			if err != nil {
				http.Error(w, err.Error(), http.StatusBadGateway)
				return
			}
			writeJSON(w, http.StatusOK, data)
		})
	}

	return mux
}
