package http

import (
	"encoding/json"
	"net/http"
)

// rejection is the body the gateway writes when it answers a request itself
// instead of forwarding it.
type rejection struct {
	Status    string `json:"status"`
	Code      string `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"request_id,omitempty"`
}

func reject(w http.ResponseWriter, r *http.Request, statusCode int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(rejection{
		Status:    "error",
		Code:      code,
		Message:   message,
		RequestID: requestIDFromContext(r.Context()),
	})
}

func probe(state string) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(map[string]string{"status": state})
	}
}
