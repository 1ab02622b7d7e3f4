package ports

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/patientmesh/mesh/services/patient-service/internal/domain"
)

type CreatePatientParams struct {
	ID        uuid.UUID
	Patient   domain.NewPatient
	CreatedAt time.Time
}

type UpdatePatientParams struct {
	ID        uuid.UUID
	Patch     domain.PatientPatch
	UpdatedAt time.Time
}

// PatientRepository is the Record Store. Create and Update enforce email
// uniqueness among active records atomically and return domain.ErrConflict
// when it would be violated.
type PatientRepository interface {
	Create(ctx context.Context, params CreatePatientParams) (domain.Patient, error)
	Update(ctx context.Context, params UpdatePatientParams) (domain.Patient, error)
	Delete(ctx context.Context, id uuid.UUID, deletedAt time.Time) error
	GetByID(ctx context.Context, id uuid.UUID) (domain.Patient, error)
	List(ctx context.Context) ([]domain.Patient, error)
}
