package application

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/patientmesh/mesh/services/patient-service/internal/domain"
	"github.com/patientmesh/mesh/services/patient-service/internal/ports"
)

func (s *Service) ListPatients(ctx context.Context) ([]PatientResponse, error) {
	patients, err := s.patients.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]PatientResponse, 0, len(patients))
	for _, p := range patients {
		out = append(out, ToPatientResponse(p))
	}
	return out, nil
}

func (s *Service) GetPatient(ctx context.Context, rawID string) (PatientResponse, error) {
	id, err := parsePatientID(rawID)
	if err != nil {
		return PatientResponse{}, err
	}
	patient, err := s.patients.GetByID(ctx, id)
	if err != nil {
		return PatientResponse{}, err
	}
	return ToPatientResponse(patient), nil
}

// UpdatePatient never calls billing and never publishes.
func (s *Service) UpdatePatient(ctx context.Context, rawID string, req UpdatePatientRequest) (PatientResponse, error) {
	id, err := parsePatientID(rawID)
	if err != nil {
		return PatientResponse{}, err
	}
	patch, err := domain.ValidateUpdate(req.input())
	if err != nil {
		return PatientResponse{}, err
	}
	patient, err := s.patients.Update(ctx, ports.UpdatePatientParams{
		ID:        id,
		Patch:     patch,
		UpdatedAt: s.nowFn(),
	})
	if err != nil {
		return PatientResponse{}, err
	}
	return ToPatientResponse(patient), nil
}

func (s *Service) DeletePatient(ctx context.Context, rawID string) error {
	id, err := parsePatientID(rawID)
	if err != nil {
		return err
	}
	return s.patients.Delete(ctx, id, s.nowFn())
}

// Malformed ids cannot name an existing record.
func parsePatientID(raw string) (uuid.UUID, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: %s", domain.ErrNotFound, raw)
	}
	return id, nil
}
