package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// DateLayout is the calendar date format used on every wire surface.
const DateLayout = "2006-01-02"

type Patient struct {
	ID               uuid.UUID
	Name             string
	Email            string
	Address          string
	DateOfBirth      time.Time
	RegistrationDate time.Time
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// NewPatient is a validated creation request. Email is already normalized.
type NewPatient struct {
	Name             string
	Email            string
	Address          string
	DateOfBirth      time.Time
	RegistrationDate time.Time
}

// PatientPatch carries only the fields present in an update request.
type PatientPatch struct {
	Name        *string
	Email       *string
	Address     *string
	DateOfBirth *time.Time
}

func (p PatientPatch) Empty() bool {
	return p.Name == nil && p.Email == nil && p.Address == nil && p.DateOfBirth == nil
}

// EmailChangeFor reports whether applying the patch would move current onto
// a different email. The comparison ignores case.
func (p PatientPatch) EmailChangeFor(current Patient) bool {
	return p.Email != nil && !strings.EqualFold(*p.Email, current.Email)
}

// Apply returns current with the patch fields written over it.
func (p PatientPatch) Apply(current Patient) Patient {
	next := current
	if p.EmailChangeFor(current) {
		next.Email = *p.Email
	}
	if p.Name != nil {
		next.Name = *p.Name
	}
	if p.Address != nil {
		next.Address = *p.Address
	}
	if p.DateOfBirth != nil {
		next.DateOfBirth = *p.DateOfBirth
	}
	return next
}
