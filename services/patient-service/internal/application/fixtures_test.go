package application_test

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/patientmesh/mesh/contracts/events"
	"github.com/patientmesh/mesh/services/patient-service/internal/application"
	"github.com/patientmesh/mesh/services/patient-service/internal/domain"
	"github.com/patientmesh/mesh/services/patient-service/internal/ports"
)

type memoryPatients struct {
	mu      sync.Mutex
	records map[uuid.UUID]domain.Patient
	deleted map[uuid.UUID]bool
}

func newMemoryPatients() *memoryPatients {
	return &memoryPatients{
		records: map[uuid.UUID]domain.Patient{},
		deleted: map[uuid.UUID]bool{},
	}
}

func (m *memoryPatients) emailTakenLocked(email string, except uuid.UUID) bool {
	for id, p := range m.records {
		if id == except || m.deleted[id] {
			continue
		}
		if strings.EqualFold(p.Email, email) {
			return true
		}
	}
	return false
}

func (m *memoryPatients) Create(_ context.Context, params ports.CreatePatientParams) (domain.Patient, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.emailTakenLocked(params.Patient.Email, uuid.Nil) {
		return domain.Patient{}, domain.ErrConflict
	}
	p := domain.Patient{
		ID:               params.ID,
		Name:             params.Patient.Name,
		Email:            params.Patient.Email,
		Address:          params.Patient.Address,
		DateOfBirth:      params.Patient.DateOfBirth,
		RegistrationDate: params.Patient.RegistrationDate,
		CreatedAt:        params.CreatedAt,
		UpdatedAt:        params.CreatedAt,
	}
	m.records[p.ID] = p
	return p, nil
}

func (m *memoryPatients) Update(_ context.Context, params ports.UpdatePatientParams) (domain.Patient, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	current, ok := m.records[params.ID]
	if !ok || m.deleted[params.ID] {
		return domain.Patient{}, domain.ErrNotFound
	}
	if params.Patch.EmailChangeFor(current) && m.emailTakenLocked(*params.Patch.Email, params.ID) {
		return domain.Patient{}, domain.ErrConflict
	}
	next := params.Patch.Apply(current)
	next.UpdatedAt = params.UpdatedAt
	m.records[params.ID] = next
	return next, nil
}

func (m *memoryPatients) Delete(_ context.Context, id uuid.UUID, _ time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.records[id]; !ok || m.deleted[id] {
		return domain.ErrNotFound
	}
	m.deleted[id] = true
	return nil
}

func (m *memoryPatients) GetByID(_ context.Context, id uuid.UUID) (domain.Patient, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.records[id]
	if !ok || m.deleted[id] {
		return domain.Patient{}, domain.ErrNotFound
	}
	return p, nil
}

func (m *memoryPatients) List(_ context.Context) ([]domain.Patient, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.Patient, 0, len(m.records))
	for id, p := range m.records {
		if !m.deleted[id] {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID.String() < out[j].ID.String()
	})
	return out, nil
}

type fakeBilling struct {
	mu     sync.Mutex
	err    error
	calls  []ports.BillingAccountRequest
	before func(ctx context.Context)
}

func (f *fakeBilling) ProvisionAccount(ctx context.Context, req ports.BillingAccountRequest) (ports.BillingAccount, error) {
	if f.before != nil {
		f.before(ctx)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, req)
	if f.err != nil {
		return ports.BillingAccount{}, f.err
	}
	return ports.BillingAccount{AccountID: "acct-" + req.PatientID, Status: "ACTIVE"}, nil
}

func (f *fakeBilling) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

type publishedMessage struct {
	eventType string
	key       string
	event     events.PatientEvent
	committed bool
	ctxErr    error
}

type fakePublisher struct {
	mu       sync.Mutex
	err      error
	store    *memoryPatients
	messages []publishedMessage
}

func (f *fakePublisher) Publish(ctx context.Context, eventType string, payload []byte, partitionKey string) error {
	evt, decodeErr := events.DecodePatientEvent(payload)
	committed := false
	if decodeErr == nil && f.store != nil {
		if id, err := uuid.Parse(evt.PatientID); err == nil {
			_, getErr := f.store.GetByID(ctx, id)
			committed = getErr == nil
		}
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.messages = append(f.messages, publishedMessage{
		eventType: eventType,
		key:       partitionKey,
		event:     evt,
		committed: committed,
		ctxErr:    ctx.Err(),
	})
	if f.err != nil {
		return f.err
	}
	return decodeErr
}

func (f *fakePublisher) published() []publishedMessage {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]publishedMessage(nil), f.messages...)
}

type fixture struct {
	service   *application.Service
	store     *memoryPatients
	billing   *fakeBilling
	publisher *fakePublisher
}

func newFixture() *fixture {
	store := newMemoryPatients()
	billing := &fakeBilling{}
	publisher := &fakePublisher{store: store}
	var (
		clockMu sync.Mutex
		tick    time.Time = time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
	)
	clock := func() time.Time {
		clockMu.Lock()
		defer clockMu.Unlock()
		tick = tick.Add(time.Millisecond)
		return tick
	}
	svc := application.NewService(application.Dependencies{
		Config:    application.Config{ServiceName: "patient-service"},
		Patients:  store,
		Billing:   billing,
		Publisher: publisher,
		Clock:     clock,
	})
	return &fixture{service: svc, store: store, billing: billing, publisher: publisher}
}

func janeDoe() application.CreatePatientRequest {
	return application.CreatePatientRequest{
		Name:             "Jane Doe",
		Email:            "JANE@X.COM",
		Address:          "1 Rd",
		DateOfBirth:      "1990-01-01",
		RegistrationDate: "2024-01-01",
	}
}

var errBrokerDown = errors.New("broker down")
