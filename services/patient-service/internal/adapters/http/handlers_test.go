package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/patientmesh/mesh/services/patient-service/internal/application"
	"github.com/patientmesh/mesh/services/patient-service/internal/domain"
	"github.com/patientmesh/mesh/services/patient-service/internal/ports"
)

type stubPatients struct {
	mu      sync.Mutex
	records []domain.Patient
	failAll error
}

func (s *stubPatients) Create(_ context.Context, params ports.CreatePatientParams) (domain.Patient, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failAll != nil {
		return domain.Patient{}, s.failAll
	}
	for _, p := range s.records {
		if p.Email == params.Patient.Email {
			return domain.Patient{}, domain.ErrConflict
		}
	}
	p := domain.Patient{
		ID:               params.ID,
		Name:             params.Patient.Name,
		Email:            params.Patient.Email,
		Address:          params.Patient.Address,
		DateOfBirth:      params.Patient.DateOfBirth,
		RegistrationDate: params.Patient.RegistrationDate,
		CreatedAt:        params.CreatedAt,
	}
	s.records = append(s.records, p)
	return p, nil
}

func (s *stubPatients) Update(_ context.Context, params ports.UpdatePatientParams) (domain.Patient, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, p := range s.records {
		if p.ID == params.ID {
			s.records[i] = params.Patch.Apply(p)
			return s.records[i], nil
		}
	}
	return domain.Patient{}, domain.ErrNotFound
}

func (s *stubPatients) Delete(_ context.Context, id uuid.UUID, _ time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, p := range s.records {
		if p.ID == id {
			s.records = append(s.records[:i], s.records[i+1:]...)
			return nil
		}
	}
	return domain.ErrNotFound
}

func (s *stubPatients) GetByID(_ context.Context, id uuid.UUID) (domain.Patient, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.records {
		if p.ID == id {
			return p, nil
		}
	}
	return domain.Patient{}, domain.ErrNotFound
}

func (s *stubPatients) List(_ context.Context) ([]domain.Patient, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failAll != nil {
		return nil, s.failAll
	}
	return append([]domain.Patient(nil), s.records...), nil
}

type failingBilling struct{}

func (failingBilling) ProvisionAccount(context.Context, ports.BillingAccountRequest) (ports.BillingAccount, error) {
	return ports.BillingAccount{}, &ports.BillingCallError{Kind: ports.BillingFailureNetwork, Err: errors.New("connection refused")}
}

type nopPublisher struct{}

func (nopPublisher) Publish(context.Context, string, []byte, string) error { return nil }

func newTestRouter(store *stubPatients) http.Handler {
	svc := application.NewService(application.Dependencies{
		Patients:  store,
		Billing:   failingBilling{},
		Publisher: nopPublisher{},
	})
	return NewRouter(NewHandler(svc), RouterOptions{RequireIdentity: true})
}

func doRequest(t *testing.T, h http.Handler, method, path, body string, authenticated bool) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if authenticated {
		req.Header.Set(headerUserID, "user-1")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

const janeBody = `{"name":"Jane Doe","email":"JANE@X.COM","address":"1 Rd","dateOfBirth":"1990-01-01","registrationDate":"2024-01-01"}`

func TestCreatePatientHTTPScenario(t *testing.T) {
	t.Parallel()

	h := newTestRouter(&stubPatients{})

	rec := doRequest(t, h, http.MethodPost, "/patients", janeBody, true)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201 even with billing down, got %d: %s", rec.Code, rec.Body.String())
	}
	var created application.PatientResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if created.Email != "jane@x.com" || created.ID == "" || created.DateOfBirth != "1990-01-01" {
		t.Fatalf("unexpected response %+v", created)
	}

	dup := strings.Replace(janeBody, "JANE@X.COM", "jane@x.com", 1)
	rec = doRequest(t, h, http.MethodPost, "/patients", dup, true)
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rec.Code)
	}
	var apiErr apiError
	if err := json.Unmarshal(rec.Body.Bytes(), &apiErr); err != nil {
		t.Fatalf("decode error body: %v", err)
	}
	if apiErr.Status != "error" || apiErr.Code != "CONFLICT" {
		t.Fatalf("unexpected error envelope %+v", apiErr)
	}

	rec = doRequest(t, h, http.MethodGet, "/patients", "", true)
	var list []application.PatientResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &list); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if rec.Code != http.StatusOK || len(list) != 1 {
		t.Fatalf("expected one patient, got %d %s", rec.Code, rec.Body.String())
	}
}

func TestPatientHTTPStatusCodes(t *testing.T) {
	t.Parallel()

	store := &stubPatients{}
	h := newTestRouter(store)
	rec := doRequest(t, h, http.MethodPost, "/patients", janeBody, true)
	if rec.Code != http.StatusCreated {
		t.Fatalf("seed create failed: %d", rec.Code)
	}
	var created application.PatientResponse
	_ = json.Unmarshal(rec.Body.Bytes(), &created)

	cases := []struct {
		name   string
		method string
		path   string
		body   string
		auth   bool
		want   int
	}{
		{name: "missing identity", method: http.MethodGet, path: "/patients", auth: false, want: http.StatusUnauthorized},
		{name: "invalid json", method: http.MethodPost, path: "/patients", body: "{", auth: true, want: http.StatusBadRequest},
		{name: "missing fields", method: http.MethodPost, path: "/patients", body: `{"name":"x"}`, auth: true, want: http.StatusBadRequest},
		{name: "bad date on update", method: http.MethodPut, path: "/patients/" + created.ID, body: `{"dateOfBirth":"13-13-2020"}`, auth: true, want: http.StatusBadRequest},
		{name: "update unknown", method: http.MethodPut, path: "/patients/" + uuid.NewString(), body: `{"name":"x"}`, auth: true, want: http.StatusNotFound},
		{name: "get existing", method: http.MethodGet, path: "/patients/" + created.ID, auth: true, want: http.StatusOK},
		{name: "delete unknown", method: http.MethodDelete, path: "/patients/" + uuid.NewString(), auth: true, want: http.StatusNotFound},
		{name: "health is public", method: http.MethodGet, path: "/healthz", auth: false, want: http.StatusOK},
		{name: "docs are public", method: http.MethodGet, path: "/docs", auth: false, want: http.StatusOK},
	}
	for _, tc := range cases {
		rec := doRequest(t, h, tc.method, tc.path, tc.body, tc.auth)
		if rec.Code != tc.want {
			t.Fatalf("%s: expected %d, got %d (%s)", tc.name, tc.want, rec.Code, rec.Body.String())
		}
	}

	rec = doRequest(t, h, http.MethodDelete, "/patients/"+created.ID, "", true)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}
}

func TestStorageFaultMapsTo503(t *testing.T) {
	t.Parallel()

	h := newTestRouter(&stubPatients{failAll: domain.ErrStorageUnavailable})
	rec := doRequest(t, h, http.MethodGet, "/patients", "", true)
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rec.Code)
	}
	rec = doRequest(t, h, http.MethodPost, "/patients", janeBody, true)
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 on create, got %d", rec.Code)
	}
}

func TestMissingIdentityUsesErrorEnvelope(t *testing.T) {
	t.Parallel()

	h := newTestRouter(&stubPatients{})
	rec := doRequest(t, h, http.MethodPost, "/patients", janeBody, false)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	var apiErr apiError
	if err := json.Unmarshal(rec.Body.Bytes(), &apiErr); err != nil {
		t.Fatalf("decode error body: %v", err)
	}
	if apiErr.Status != "error" || apiErr.Code != "UNAUTHORIZED" {
		t.Fatalf("unexpected error envelope %+v", apiErr)
	}

	status, code, _ := mapDomainError(fmt.Errorf("wrapped: %w", domain.ErrUnauthorized))
	if status != http.StatusUnauthorized || code != "UNAUTHORIZED" {
		t.Fatalf("unauthorized must map to 401, got %d %s", status, code)
	}
}
