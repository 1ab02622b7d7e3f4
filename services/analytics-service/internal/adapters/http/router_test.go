package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/patientmesh/mesh/contracts/events"
	"github.com/patientmesh/mesh/services/analytics-service/internal/adapters/cache"
	"github.com/patientmesh/mesh/services/analytics-service/internal/application"
)

func TestStatsReportsCounts(t *testing.T) {
	t.Parallel()

	svc := application.NewService(cache.NewMemoryDeduplicator(time.Hour))
	raw, _ := events.PatientEvent{EventID: "e1", EventKind: events.PatientCreated, PatientID: "p1"}.Encode()
	if _, err := svc.HandlePatientEvent(context.Background(), raw); err != nil {
		t.Fatalf("handle: %v", err)
	}

	rec := httptest.NewRecorder()
	NewRouter(svc).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/stats", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var body struct {
		Data map[string]int64 `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Data["CREATED"] != 1 {
		t.Fatalf("unexpected stats %v", body.Data)
	}
}
