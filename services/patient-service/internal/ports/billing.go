package ports

import (
	"context"
	"errors"
	"fmt"

	"github.com/patientmesh/mesh/services/patient-service/internal/domain"
)

type BillingAccountRequest struct {
	PatientID string
	Name      string
	Email     string
}

type BillingAccount struct {
	AccountID string
	Status    string
}

type BillingFailureKind string

const (
	BillingFailureNetwork  BillingFailureKind = "network"
	BillingFailureTimeout  BillingFailureKind = "timeout"
	BillingFailureRejected BillingFailureKind = "rejected"
)

// BillingCallError is the typed failure of a billing call. It matches
// domain.ErrDependencyUnavailable under errors.Is.
type BillingCallError struct {
	Kind BillingFailureKind
	Err  error
}

func (e *BillingCallError) Error() string {
	return fmt.Sprintf("billing call %s: %v", e.Kind, e.Err)
}

func (e *BillingCallError) Unwrap() error { return e.Err }

func (e *BillingCallError) Is(target error) bool {
	return target == domain.ErrDependencyUnavailable
}

// BillingFailureKindOf extracts the failure kind from err, or "" when err is
// not a billing call failure.
func BillingFailureKindOf(err error) BillingFailureKind {
	var callErr *BillingCallError
	if errors.As(err, &callErr) {
		return callErr.Kind
	}
	return ""
}

type BillingClient interface {
	ProvisionAccount(ctx context.Context, req BillingAccountRequest) (BillingAccount, error)
}
