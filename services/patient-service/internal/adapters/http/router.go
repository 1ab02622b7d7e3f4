package http

import (
	_ "embed"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/patientmesh/mesh/services/patient-service/internal/application"
)

//go:embed openapi.yaml
var openAPIDocument []byte

type Handler struct {
	service *application.Service
}

func NewHandler(service *application.Service) *Handler {
	return &Handler{service: service}
}

type RouterOptions struct {
	// RequireIdentity rejects /patients calls that did not pass the gateway.
	RequireIdentity bool
}

func NewRouter(handler *Handler, opts RouterOptions) http.Handler {
	r := chi.NewRouter()
	r.Use(requestIDMiddleware)
	r.Use(recoverMiddleware)
	r.Use(loggingMiddleware)

	r.Get("/healthz", probe("ok"))
	r.Get("/readyz", probe("ready"))
	r.Get("/docs", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/yaml")
		_, _ = w.Write(openAPIDocument)
	})

	r.Route("/patients", func(r chi.Router) {
		r.Use(identityMiddleware(opts.RequireIdentity))
		r.Get("/", handler.listPatients)
		r.Post("/", handler.createPatient)
		r.Get("/{id}", handler.getPatient)
		r.Put("/{id}", handler.updatePatient)
		r.Delete("/{id}", handler.deletePatient)
	})
	return r
}
