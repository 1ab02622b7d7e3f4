package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/patientmesh/mesh/services/billing-service/internal/domain"
	"github.com/patientmesh/mesh/services/billing-service/internal/ports"
	"github.com/redis/go-redis/v9"
)

const accountKeyPrefix = "billing:account:"

type RedisAccountRegistry struct {
	client *redis.Client
}

func NewRedisAccountRegistry(client *redis.Client) *RedisAccountRegistry {
	return &RedisAccountRegistry{client: client}
}

func accountKey(patientID string) string {
	return accountKeyPrefix + patientID
}

func (r *RedisAccountRegistry) Claim(ctx context.Context, account domain.Account) (domain.Account, bool, error) {
	payload, err := json.Marshal(account)
	if err != nil {
		return domain.Account{}, false, fmt.Errorf("encode account: %w", err)
	}
	key := accountKey(account.PatientID)
	created, err := r.client.SetNX(ctx, key, payload, 0).Result()
	if err != nil {
		return domain.Account{}, false, fmt.Errorf("%w: %v", domain.ErrStorageUnavailable, err)
	}
	if created {
		return account, true, nil
	}
	raw, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return domain.Account{}, false, fmt.Errorf("%w: account key vanished", domain.ErrStorageUnavailable)
		}
		return domain.Account{}, false, fmt.Errorf("%w: %v", domain.ErrStorageUnavailable, err)
	}
	var stored domain.Account
	if err := json.Unmarshal(raw, &stored); err != nil {
		return domain.Account{}, false, fmt.Errorf("%w: decode account: %v", domain.ErrStorageUnavailable, err)
	}
	return stored, false, nil
}

var _ ports.AccountRegistry = (*RedisAccountRegistry)(nil)
