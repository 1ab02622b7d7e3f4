package domain

import (
	"fmt"
	"net/mail"
	"strings"
	"time"
)

const AccountStatusActive = "ACTIVE"

type Account struct {
	AccountID string    `json:"account_id"`
	PatientID string    `json:"patient_id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

type AccountRequest struct {
	PatientID string
	Name      string
	Email     string
}

func ValidateAccountRequest(req AccountRequest) (AccountRequest, error) {
	out := AccountRequest{
		PatientID: strings.TrimSpace(req.PatientID),
		Name:      strings.TrimSpace(req.Name),
		Email:     strings.ToLower(strings.TrimSpace(req.Email)),
	}
	if out.PatientID == "" {
		return AccountRequest{}, fmt.Errorf("%w: patient_id is required", ErrInvalidInput)
	}
	if out.Name == "" {
		return AccountRequest{}, fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	if _, err := mail.ParseAddress(out.Email); err != nil {
		return AccountRequest{}, fmt.Errorf("%w: email is invalid", ErrInvalidInput)
	}
	return out, nil
}
