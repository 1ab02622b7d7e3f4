package application

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/patientmesh/mesh/services/billing-service/internal/domain"
	"github.com/patientmesh/mesh/services/billing-service/internal/ports"
)

type Service struct {
	accounts ports.AccountRegistry
	nowFn    func() time.Time
}

type Dependencies struct {
	Accounts ports.AccountRegistry
	Clock    func() time.Time
}

func NewService(deps Dependencies) *Service {
	nowFn := deps.Clock
	if nowFn == nil {
		nowFn = func() time.Time { return time.Now().UTC() }
	}
	return &Service{accounts: deps.Accounts, nowFn: nowFn}
}

// CreateBillingAccount is idempotent per patient id: repeated calls return
// the account created by the first one.
func (s *Service) CreateBillingAccount(ctx context.Context, req domain.AccountRequest) (domain.Account, error) {
	valid, err := domain.ValidateAccountRequest(req)
	if err != nil {
		return domain.Account{}, err
	}
	account, created, err := s.accounts.Claim(ctx, domain.Account{
		AccountID: uuid.NewString(),
		PatientID: valid.PatientID,
		Name:      valid.Name,
		Email:     valid.Email,
		Status:    domain.AccountStatusActive,
		CreatedAt: s.nowFn(),
	})
	if err != nil {
		return domain.Account{}, err
	}
	slog.Default().InfoContext(ctx, "billing account resolved",
		"module", "billing",
		"layer", "application",
		"operation", "create_billing_account",
		"outcome", "success",
		"patient_id", account.PatientID,
		"account_id", account.AccountID,
		"created", created,
	)
	return account, nil
}
