package http

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/patientmesh/mesh/services/patient-service/internal/application"
)

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, operation string, err error) {
	status, code, msg := mapDomainError(err)
	logHTTPOperationError(r.Context(), operation, status, code, msg, err)
	writeError(w, status, code, msg)
}

func (h *Handler) listPatients(w http.ResponseWriter, r *http.Request) {
	resp, err := h.service.ListPatients(r.Context())
	if err != nil {
		h.fail(w, r, "list_patients", err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) getPatient(w http.ResponseWriter, r *http.Request) {
	resp, err := h.service.GetPatient(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, "get_patient", err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) createPatient(w http.ResponseWriter, r *http.Request) {
	var req application.CreatePatientRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "invalid json body")
		return
	}
	res, err := h.service.CreatePatient(r.Context(), req)
	if err != nil {
		h.fail(w, r, "create_patient", err)
		return
	}
	writeJSON(w, http.StatusCreated, application.ToPatientResponse(res.Patient))
}

func (h *Handler) updatePatient(w http.ResponseWriter, r *http.Request) {
	var req application.UpdatePatientRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "invalid json body")
		return
	}
	resp, err := h.service.UpdatePatient(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		h.fail(w, r, "update_patient", err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) deletePatient(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeletePatient(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.fail(w, r, "delete_patient", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
