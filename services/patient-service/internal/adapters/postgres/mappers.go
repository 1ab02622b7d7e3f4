package postgres

import (
	"github.com/patientmesh/mesh/services/patient-service/internal/domain"
	"github.com/patientmesh/mesh/services/patient-service/internal/ports"
)

func toDomainPatient(rec patientModel) domain.Patient {
	return domain.Patient{
		ID:               rec.ID,
		Name:             rec.Name,
		Email:            rec.Email,
		Address:          rec.Address,
		DateOfBirth:      rec.DateOfBirth.UTC(),
		RegistrationDate: rec.RegistrationDate.UTC(),
		CreatedAt:        rec.CreatedAt.UTC(),
		UpdatedAt:        rec.UpdatedAt.UTC(),
	}
}

func fromCreateParams(params ports.CreatePatientParams) patientModel {
	return patientModel{
		ID:               params.ID,
		Name:             params.Patient.Name,
		Email:            params.Patient.Email,
		Address:          params.Patient.Address,
		DateOfBirth:      params.Patient.DateOfBirth,
		RegistrationDate: params.Patient.RegistrationDate,
		CreatedAt:        params.CreatedAt,
		UpdatedAt:        params.CreatedAt,
	}
}

func applyPatch(rec patientModel, patch domain.PatientPatch) patientModel {
	next := patch.Apply(toDomainPatient(rec))
	rec.Name = next.Name
	rec.Email = next.Email
	rec.Address = next.Address
	rec.DateOfBirth = next.DateOfBirth
	return rec
}
