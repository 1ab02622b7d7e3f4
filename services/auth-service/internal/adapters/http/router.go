package http

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/patientmesh/mesh/services/auth-service/internal/application"
)

type Handler struct {
	service *application.Service
}

func NewHandler(service *application.Service) *Handler {
	return &Handler{service: service}
}

func NewRouter(handler *Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(requestIDMiddleware)
	r.Use(recoverMiddleware)
	r.Use(loggingMiddleware)

	r.Get("/healthz", probe("ok"))
	r.Get("/readyz", probe("ready"))

	r.Post("/login", handler.login)
	r.Get("/validate", handler.validate)
	return r
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var req application.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logHTTPOperationError(r.Context(), "login", http.StatusBadRequest, "INVALID_JSON", err)
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "request body must be valid json")
		return
	}
	resp, err := h.service.Login(r.Context(), req)
	if err != nil {
		status, code, message := mapDomainError(err)
		logHTTPOperationError(r.Context(), "login", status, code, err)
		writeError(w, status, code, message)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// validate answers 401 only for a missing or malformed header. A well-formed
// but invalid token is a 200 with false.
func (h *Handler) validate(w http.ResponseWriter, r *http.Request) {
	token, ok := bearerToken(r.Header.Get("Authorization"))
	if !ok {
		writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing or malformed bearer token")
		return
	}
	writeJSON(w, http.StatusOK, h.service.Validate(r.Context(), token))
}
