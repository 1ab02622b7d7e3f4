package application

import (
	"time"

	"github.com/patientmesh/mesh/services/patient-service/internal/ports"
)

const EventTypePatientCreated = "patient.created"

type Config struct {
	ServiceName string
}

type Service struct {
	cfg       Config
	patients  ports.PatientRepository
	billing   ports.BillingClient
	publisher ports.EventPublisher
	nowFn     func() time.Time
}

type Dependencies struct {
	Config    Config
	Patients  ports.PatientRepository
	Billing   ports.BillingClient
	Publisher ports.EventPublisher
	Clock     func() time.Time
}

func NewService(deps Dependencies) *Service {
	cfg := deps.Config
	if cfg.ServiceName == "" {
		cfg.ServiceName = "patient-service"
	}
	nowFn := deps.Clock
	if nowFn == nil {
		nowFn = func() time.Time { return time.Now().UTC() }
	}
	return &Service{
		cfg:       cfg,
		patients:  deps.Patients,
		billing:   deps.Billing,
		publisher: deps.Publisher,
		nowFn:     nowFn,
	}
}
