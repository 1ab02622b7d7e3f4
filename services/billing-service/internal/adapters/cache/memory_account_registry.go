package cache

import (
	"context"
	"sync"

	"github.com/patientmesh/mesh/services/billing-service/internal/domain"
	"github.com/patientmesh/mesh/services/billing-service/internal/ports"
)

// MemoryAccountRegistry is used when no Redis URL is configured. Accounts do
// not survive a restart.
type MemoryAccountRegistry struct {
	mu       sync.Mutex
	accounts map[string]domain.Account
}

func NewMemoryAccountRegistry() *MemoryAccountRegistry {
	return &MemoryAccountRegistry{accounts: map[string]domain.Account{}}
}

func (r *MemoryAccountRegistry) Claim(_ context.Context, account domain.Account) (domain.Account, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.accounts[account.PatientID]; ok {
		return existing, false, nil
	}
	r.accounts[account.PatientID] = account
	return account, true, nil
}

var _ ports.AccountRegistry = (*MemoryAccountRegistry)(nil)
