package application

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"
	"github.com/patientmesh/mesh/contracts/events"
	"github.com/patientmesh/mesh/services/patient-service/internal/domain"
	"github.com/patientmesh/mesh/services/patient-service/internal/ports"
)

type onboardingRun struct {
	result OnboardingResult
}

func newOnboardingRun() *onboardingRun {
	return &onboardingRun{result: OnboardingResult{Trace: []State{StateValidating}}}
}

func (r *onboardingRun) advance(next State) {
	r.result.Trace = append(r.result.Trace, next)
}

func (r *onboardingRun) record(step State, kind string, err error) {
	r.result.Issues = append(r.result.Issues, Issue{Step: step, Kind: kind, Err: err})
}

// CreatePatient runs the onboarding state machine. Only validation and email
// conflicts reject the request. Once the record is committed, billing and
// event failures are recorded as issues and the committed patient is returned.
func (s *Service) CreatePatient(ctx context.Context, req CreatePatientRequest) (OnboardingResult, error) {
	run := newOnboardingRun()

	draft, err := domain.ValidateCreate(req.input())
	if err != nil {
		run.advance(StateRejected)
		return run.result, err
	}

	run.advance(StatePersisting)
	patient, err := s.patients.Create(ctx, ports.CreatePatientParams{
		ID:        uuid.New(),
		Patient:   draft,
		CreatedAt: s.nowFn(),
	})
	if err != nil {
		if errors.Is(err, domain.ErrConflict) {
			run.advance(StateRejected)
			return run.result, err
		}
		logOnboarding(ctx, slog.LevelError, "persist", "failure", "patient persistence failed", "error", err)
		return run.result, err
	}
	run.result.Patient = patient

	// The record is committed; a caller disconnect must not cut the rest short.
	detached := context.WithoutCancel(ctx)

	run.advance(StateBillingCall)
	s.provisionBilling(detached, patient, run)

	run.advance(StateEventEmit)
	s.emitCreated(detached, patient, run)

	run.advance(StateDone)
	return run.result, nil
}

func (s *Service) provisionBilling(ctx context.Context, patient domain.Patient, run *onboardingRun) {
	if s.billing == nil {
		return
	}
	account, err := s.billing.ProvisionAccount(ctx, ports.BillingAccountRequest{
		PatientID: patient.ID.String(),
		Name:      patient.Name,
		Email:     patient.Email,
	})
	if err != nil {
		kind := string(ports.BillingFailureKindOf(err))
		if kind == "" {
			kind = string(ports.BillingFailureNetwork)
		}
		run.record(StateBillingCall, kind, err)
		logOnboarding(ctx, slog.LevelWarn, "provision_billing_account", "degraded", "billing account provisioning failed",
			"patient_id", patient.ID.String(),
			"failure_kind", kind,
			"error", err,
		)
		return
	}
	logOnboarding(ctx, slog.LevelInfo, "provision_billing_account", "success", "billing account provisioned",
		"patient_id", patient.ID.String(),
		"billing_account_id", account.AccountID,
		"billing_status", account.Status,
	)
}

func (s *Service) emitCreated(ctx context.Context, patient domain.Patient, run *onboardingRun) {
	if s.publisher == nil {
		return
	}
	evt := events.PatientEvent{
		EventID:       uuid.NewString(),
		EventKind:     events.PatientCreated,
		PatientID:     patient.ID.String(),
		Name:          patient.Name,
		Email:         patient.Email,
		Timestamp:     s.nowFn(),
		SourceService: s.cfg.ServiceName,
		SchemaVersion: events.PatientEventSchemaVersion,
	}
	payload, err := evt.Encode()
	if err == nil {
		err = s.publisher.Publish(ctx, EventTypePatientCreated, payload, evt.PatientID)
	}
	if err != nil {
		run.record(StateEventEmit, "publish", err)
		logOnboarding(ctx, slog.LevelWarn, "publish_patient_event", "degraded", "patient event publish failed",
			"patient_id", evt.PatientID,
			"event_id", evt.EventID,
			"error", err,
		)
	}
}

func logOnboarding(ctx context.Context, level slog.Level, operation, outcome, msg string, attrs ...any) {
	fields := append([]any{
		"module", "onboarding",
		"layer", "application",
		"operation", operation,
		"outcome", outcome,
	}, attrs...)
	slog.Default().Log(ctx, level, msg, fields...)
}
