package application

import (
	"github.com/patientmesh/mesh/services/patient-service/internal/domain"
)

// State is a step of the onboarding state machine.
type State string

const (
	StateValidating  State = "VALIDATING"
	StatePersisting  State = "PERSISTING"
	StateBillingCall State = "BILLING_CALL"
	StateEventEmit   State = "EVENT_EMIT"
	StateDone        State = "DONE"
	StateRejected    State = "REJECTED"
)

// Issue is a non-fatal dependency failure recorded after the record committed.
type Issue struct {
	Step State
	Kind string
	Err  error
}

type OnboardingResult struct {
	Patient domain.Patient
	Trace   []State
	Issues  []Issue
}

func (r OnboardingResult) Degraded() bool { return len(r.Issues) > 0 }

func (r OnboardingResult) FinalState() State {
	if len(r.Trace) == 0 {
		return ""
	}
	return r.Trace[len(r.Trace)-1]
}

type CreatePatientRequest struct {
	Name             string `json:"name"`
	Email            string `json:"email"`
	Address          string `json:"address"`
	DateOfBirth      string `json:"dateOfBirth"`
	RegistrationDate string `json:"registrationDate"`
}

type UpdatePatientRequest struct {
	Name        *string `json:"name,omitempty"`
	Email       *string `json:"email,omitempty"`
	Address     *string `json:"address,omitempty"`
	DateOfBirth *string `json:"dateOfBirth,omitempty"`
}

type PatientResponse struct {
	ID               string `json:"id"`
	Name             string `json:"name"`
	Email            string `json:"email"`
	Address          string `json:"address"`
	DateOfBirth      string `json:"dateOfBirth"`
	RegistrationDate string `json:"registrationDate"`
}

func ToPatientResponse(p domain.Patient) PatientResponse {
	return PatientResponse{
		ID:               p.ID.String(),
		Name:             p.Name,
		Email:            p.Email,
		Address:          p.Address,
		DateOfBirth:      p.DateOfBirth.Format(domain.DateLayout),
		RegistrationDate: p.RegistrationDate.Format(domain.DateLayout),
	}
}

func (r CreatePatientRequest) input() domain.CreateInput {
	return domain.CreateInput{
		Name:             r.Name,
		Email:            r.Email,
		Address:          r.Address,
		DateOfBirth:      r.DateOfBirth,
		RegistrationDate: r.RegistrationDate,
	}
}

func (r UpdatePatientRequest) input() domain.UpdateInput {
	return domain.UpdateInput{
		Name:        r.Name,
		Email:       r.Email,
		Address:     r.Address,
		DateOfBirth: r.DateOfBirth,
	}
}
