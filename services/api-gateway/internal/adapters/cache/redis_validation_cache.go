package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/patientmesh/mesh/platform/tokens"
	"github.com/redis/go-redis/v9"
)

const validationKeyPrefix = "gateway:token:"

type cachedClaims struct {
	Subject   string    `json:"sub"`
	Email     string    `json:"email,omitempty"`
	Role      string    `json:"role,omitempty"`
	IssuedAt  time.Time `json:"iat"`
	ExpiresAt time.Time `json:"exp"`
}

// RedisValidationCache stores accepted token claims with a TTL.
type RedisValidationCache struct {
	client *redis.Client
}

func NewRedisValidationCache(client *redis.Client) *RedisValidationCache {
	return &RedisValidationCache{client: client}
}

func (c *RedisValidationCache) Get(ctx context.Context, fingerprint string) (tokens.Claims, bool, error) {
	raw, err := c.client.Get(ctx, validationKey(fingerprint)).Bytes()
	if errors.Is(err, redis.Nil) {
		return tokens.Claims{}, false, nil
	}
	if err != nil {
		return tokens.Claims{}, false, err
	}
	var stored cachedClaims
	if err := json.Unmarshal(raw, &stored); err != nil {
		return tokens.Claims{}, false, err
	}
	return tokens.Claims{
		Subject:   stored.Subject,
		Email:     stored.Email,
		Role:      stored.Role,
		IssuedAt:  stored.IssuedAt,
		ExpiresAt: stored.ExpiresAt,
	}, true, nil
}

func (c *RedisValidationCache) Put(ctx context.Context, fingerprint string, claims tokens.Claims, ttl time.Duration) error {
	payload, err := json.Marshal(cachedClaims{
		Subject:   claims.Subject,
		Email:     claims.Email,
		Role:      claims.Role,
		IssuedAt:  claims.IssuedAt,
		ExpiresAt: claims.ExpiresAt,
	})
	if err != nil {
		return err
	}
	return c.client.Set(ctx, validationKey(fingerprint), payload, ttl).Err()
}

func validationKey(fingerprint string) string {
	return validationKeyPrefix + fingerprint
}
