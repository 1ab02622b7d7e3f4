package ports

import (
	"context"

	"github.com/patientmesh/mesh/services/billing-service/internal/domain"
)

// AccountRegistry holds at most one account per patient id.
type AccountRegistry interface {
	// Claim stores account unless one already exists for its patient, and
	// returns the stored account with created reporting which case applied.
	Claim(ctx context.Context, account domain.Account) (stored domain.Account, created bool, err error)
}
