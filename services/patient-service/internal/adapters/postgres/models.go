package postgres

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type patientModel struct {
	ID               uuid.UUID      `gorm:"column:id;type:uuid;primaryKey"`
	Name             string         `gorm:"column:name"`
	Email            string         `gorm:"column:email"`
	Address          string         `gorm:"column:address"`
	DateOfBirth      time.Time      `gorm:"column:date_of_birth;type:date"`
	RegistrationDate time.Time      `gorm:"column:registration_date;type:date"`
	CreatedAt        time.Time      `gorm:"column:created_at"`
	UpdatedAt        time.Time      `gorm:"column:updated_at"`
	DeletedAt        gorm.DeletedAt `gorm:"column:deleted_at"`
}

func (patientModel) TableName() string { return "patients" }
