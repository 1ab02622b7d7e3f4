package domain

import (
	"fmt"
	"net/mail"
	"strings"
	"time"
	"unicode/utf8"
)

const maxNameLength = 100

type CreateInput struct {
	Name             string
	Email            string
	Address          string
	DateOfBirth      string
	RegistrationDate string
}

type UpdateInput struct {
	Name        *string
	Email       *string
	Address     *string
	DateOfBirth *string
}

func NormalizeEmail(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}

// ValidateCreate requires every field. Registration date is only accepted here.
func ValidateCreate(in CreateInput) (NewPatient, error) {
	name, err := validateName(in.Name)
	if err != nil {
		return NewPatient{}, err
	}
	email, err := validateEmail(in.Email)
	if err != nil {
		return NewPatient{}, err
	}
	address, err := validateAddress(in.Address)
	if err != nil {
		return NewPatient{}, err
	}
	if strings.TrimSpace(in.DateOfBirth) == "" {
		return NewPatient{}, fmt.Errorf("%w: dateOfBirth is required", ErrInvalidInput)
	}
	dob, err := ParseDate("dateOfBirth", in.DateOfBirth)
	if err != nil {
		return NewPatient{}, err
	}
	if strings.TrimSpace(in.RegistrationDate) == "" {
		return NewPatient{}, fmt.Errorf("%w: registrationDate is required", ErrInvalidInput)
	}
	registered, err := ParseDate("registrationDate", in.RegistrationDate)
	if err != nil {
		return NewPatient{}, err
	}
	return NewPatient{
		Name:             name,
		Email:            email,
		Address:          address,
		DateOfBirth:      dob,
		RegistrationDate: registered,
	}, nil
}

// ValidateUpdate checks only the fields that are present and normalizes each
// one independently.
func ValidateUpdate(in UpdateInput) (PatientPatch, error) {
	var patch PatientPatch
	if in.Name != nil {
		name, err := validateName(*in.Name)
		if err != nil {
			return PatientPatch{}, err
		}
		patch.Name = &name
	}
	if in.Email != nil {
		email, err := validateEmail(*in.Email)
		if err != nil {
			return PatientPatch{}, err
		}
		patch.Email = &email
	}
	if in.Address != nil {
		address, err := validateAddress(*in.Address)
		if err != nil {
			return PatientPatch{}, err
		}
		patch.Address = &address
	}
	if in.DateOfBirth != nil {
		dob, err := ParseDate("dateOfBirth", *in.DateOfBirth)
		if err != nil {
			return PatientPatch{}, err
		}
		patch.DateOfBirth = &dob
	}
	if patch.Empty() {
		return PatientPatch{}, fmt.Errorf("%w: no fields to update", ErrInvalidInput)
	}
	return patch, nil
}

func ParseDate(field, raw string) (time.Time, error) {
	parsed, err := time.Parse(DateLayout, strings.TrimSpace(raw))
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %s must be in yyyy-MM-dd format", ErrBadFormat, field)
	}
	return parsed.UTC(), nil
}

func validateName(raw string) (string, error) {
	name := strings.TrimSpace(raw)
	if name == "" {
		return "", fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	if utf8.RuneCountInString(name) > maxNameLength {
		return "", fmt.Errorf("%w: name cannot exceed %d characters", ErrInvalidInput, maxNameLength)
	}
	return name, nil
}

func validateEmail(raw string) (string, error) {
	email := NormalizeEmail(raw)
	if email == "" {
		return "", fmt.Errorf("%w: email is required", ErrInvalidInput)
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "", fmt.Errorf("%w: email should be valid", ErrInvalidInput)
	}
	return email, nil
}

func validateAddress(raw string) (string, error) {
	address := strings.TrimSpace(raw)
	if address == "" {
		return "", fmt.Errorf("%w: address is required", ErrInvalidInput)
	}
	return address, nil
}
