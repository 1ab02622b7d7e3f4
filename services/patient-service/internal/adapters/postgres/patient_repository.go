package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/patientmesh/mesh/services/patient-service/internal/domain"
	"github.com/patientmesh/mesh/services/patient-service/internal/ports"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type PatientRepository struct {
	db *gorm.DB
}

func NewPatientRepository(db *gorm.DB) *PatientRepository {
	return &PatientRepository{db: db}
}

// Create checks and inserts in one transaction. The partial unique index on
// active emails settles races between concurrent creators.
func (r *PatientRepository) Create(ctx context.Context, params ports.CreatePatientParams) (domain.Patient, error) {
	rec := fromCreateParams(params)
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		taken, err := emailTaken(tx, rec.Email, uuid.Nil)
		if err != nil {
			return err
		}
		if taken {
			return domain.ErrConflict
		}
		return tx.Create(&rec).Error
	})
	if err != nil {
		return domain.Patient{}, storageError(err)
	}
	return toDomainPatient(rec), nil
}

func (r *PatientRepository) Update(ctx context.Context, params ports.UpdatePatientParams) (domain.Patient, error) {
	var out patientModel
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var rec patientModel
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ?", params.ID).
			Take(&rec).Error; err != nil {
			return err
		}
		if params.Patch.EmailChangeFor(toDomainPatient(rec)) {
			taken, err := emailTaken(tx, *params.Patch.Email, rec.ID)
			if err != nil {
				return err
			}
			if taken {
				return domain.ErrConflict
			}
		}
		rec = applyPatch(rec, params.Patch)
		rec.UpdatedAt = params.UpdatedAt
		if err := tx.Save(&rec).Error; err != nil {
			return err
		}
		out = rec
		return nil
	})
	if err != nil {
		return domain.Patient{}, storageError(err)
	}
	return toDomainPatient(out), nil
}

func (r *PatientRepository) Delete(ctx context.Context, id uuid.UUID, deletedAt time.Time) error {
	res := r.db.WithContext(ctx).
		Model(&patientModel{}).
		Where("id = ?", id).
		Update("deleted_at", deletedAt)
	if res.Error != nil {
		return storageError(res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *PatientRepository) GetByID(ctx context.Context, id uuid.UUID) (domain.Patient, error) {
	var rec patientModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).Take(&rec).Error; err != nil {
		return domain.Patient{}, storageError(err)
	}
	return toDomainPatient(rec), nil
}

func (r *PatientRepository) List(ctx context.Context) ([]domain.Patient, error) {
	var rows []patientModel
	if err := r.db.WithContext(ctx).Order("created_at ASC, id ASC").Find(&rows).Error; err != nil {
		return nil, storageError(err)
	}
	out := make([]domain.Patient, 0, len(rows))
	for _, rec := range rows {
		out = append(out, toDomainPatient(rec))
	}
	return out, nil
}

func emailTaken(tx *gorm.DB, email string, except uuid.UUID) (bool, error) {
	var count int64
	q := tx.Model(&patientModel{}).Where("email = ?", email)
	if except != uuid.Nil {
		q = q.Where("id <> ?", except)
	}
	if err := q.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

var _ ports.PatientRepository = (*PatientRepository)(nil)
