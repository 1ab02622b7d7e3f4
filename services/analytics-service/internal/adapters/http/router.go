package http

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/patientmesh/mesh/services/analytics-service/internal/application"
)

func writeJSON(w http.ResponseWriter, statusCode int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(payload)
}

// NewRouter exposes probes and the running per kind totals of the worker.
func NewRouter(service *application.Service) http.Handler {
	r := chi.NewRouter()
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"status": "success", "message": "ok"})
	})
	r.Get("/stats", func(w http.ResponseWriter, _ *http.Request) {
		counts := service.Counts()
		out := make(map[string]int64, len(counts))
		for kind, n := range counts {
			out[string(kind)] = n
		}
		writeJSON(w, http.StatusOK, map[string]any{"status": "success", "data": out})
	})
	return r
}
