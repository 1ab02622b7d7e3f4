package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/patientmesh/mesh/platform/tokens"
	"github.com/patientmesh/mesh/services/auth-service/internal/adapters/security"
	"github.com/patientmesh/mesh/services/auth-service/internal/application"
	"github.com/patientmesh/mesh/services/auth-service/internal/domain"
	"golang.org/x/crypto/bcrypt"
)

type singleUser struct {
	user domain.User
}

func (s *singleUser) GetByEmail(_ context.Context, email string) (domain.User, error) {
	if s.user.Email != email {
		return domain.User{}, domain.ErrNotFound
	}
	return s.user, nil
}

func (s *singleUser) Upsert(_ context.Context, user domain.User) (domain.User, error) {
	if s.user.ID == uuid.Nil {
		s.user = user
	}
	s.user.PasswordHash = user.PasswordHash
	return s.user, nil
}

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	signer, err := tokens.NewSigner([]byte(strings.Repeat("k", 32)), time.Hour)
	if err != nil {
		t.Fatalf("signer: %v", err)
	}
	svc := application.NewService(application.Dependencies{
		Users:  &singleUser{},
		Hasher: security.NewBcryptHasher(bcrypt.MinCost),
		Tokens: signer,
	})
	if _, err := svc.EnsureUser(context.Background(), "testuser@test.com", "password123", "ADMIN"); err != nil {
		t.Fatalf("seed: %v", err)
	}
	return NewRouter(NewHandler(svc))
}

func call(h http.Handler, method, path, body, authorization string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestLoginThenValidate(t *testing.T) {
	t.Parallel()

	h := newTestRouter(t)
	rec := call(h, http.MethodPost, "/login", `{"email":"testuser@test.com","password":"password123"}`, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var resp application.LoginResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil || resp.Token == "" {
		t.Fatalf("expected token, got %s", rec.Body.String())
	}

	rec = call(h, http.MethodGet, "/validate", "", "Bearer "+resp.Token)
	if rec.Code != http.StatusOK || strings.TrimSpace(rec.Body.String()) != "true" {
		t.Fatalf("expected 200 true, got %d %s", rec.Code, rec.Body.String())
	}
	rec = call(h, http.MethodGet, "/validate", "", "Bearer "+resp.Token+"x")
	if rec.Code != http.StatusOK || strings.TrimSpace(rec.Body.String()) != "false" {
		t.Fatalf("expected 200 false for tampered token, got %d %s", rec.Code, rec.Body.String())
	}
}

func TestAuthStatusCodes(t *testing.T) {
	t.Parallel()

	h := newTestRouter(t)
	cases := []struct {
		name   string
		method string
		path   string
		body   string
		auth   string
		want   int
	}{
		{name: "wrong password", method: http.MethodPost, path: "/login", body: `{"email":"testuser@test.com","password":"nope"}`, want: http.StatusUnauthorized},
		{name: "unknown user", method: http.MethodPost, path: "/login", body: `{"email":"x@test.com","password":"password123"}`, want: http.StatusUnauthorized},
		{name: "invalid json", method: http.MethodPost, path: "/login", body: `{`, want: http.StatusBadRequest},
		{name: "validate without header", method: http.MethodGet, path: "/validate", want: http.StatusUnauthorized},
		{name: "validate other scheme", method: http.MethodGet, path: "/validate", auth: "Basic abc", want: http.StatusUnauthorized},
		{name: "validate blank token", method: http.MethodGet, path: "/validate", auth: "Bearer   ", want: http.StatusUnauthorized},
		{name: "health", method: http.MethodGet, path: "/healthz", want: http.StatusOK},
	}
	for _, tc := range cases {
		if rec := call(h, tc.method, tc.path, tc.body, tc.auth); rec.Code != tc.want {
			t.Fatalf("%s: expected %d, got %d", tc.name, tc.want, rec.Code)
		}
	}
}
