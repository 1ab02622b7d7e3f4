package application

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/patientmesh/mesh/platform/tokens"
	"github.com/patientmesh/mesh/services/api-gateway/internal/domain"
	"github.com/patientmesh/mesh/services/api-gateway/internal/ports"
)

type Config struct {
	CacheTTL time.Duration
}

type Dependencies struct {
	Config    Config
	Routes    *domain.RouteTable
	Validator ports.TokenValidator
	// Cache is optional; nil disables result caching.
	Cache ports.ValidationCache
	Clock func() time.Time
}

// Gate decides for every inbound request whether it may be forwarded and
// with which identity. It holds no mutable state of its own.
type Gate struct {
	cfg       Config
	routes    *domain.RouteTable
	validator ports.TokenValidator
	cache     ports.ValidationCache
	nowFn     func() time.Time
}

func NewGate(deps Dependencies) *Gate {
	nowFn := deps.Clock
	if nowFn == nil {
		nowFn = time.Now
	}
	return &Gate{
		cfg:       deps.Config,
		routes:    deps.Routes,
		validator: deps.Validator,
		cache:     deps.Cache,
		nowFn:     nowFn,
	}
}

func (g *Gate) Authorize(ctx context.Context, path, authorization string) domain.Decision {
	route, ok := g.routes.Match(path)
	if !ok {
		return domain.Reject(domain.ReasonNoRoute, domain.Route{})
	}
	if !route.AuthRequired {
		return domain.Decision{Forward: true, Route: route}
	}

	raw, ok := BearerToken(authorization)
	if !ok {
		logGate(ctx, slog.LevelInfo, "reject", "request rejected", "reason", domain.ReasonUnauthenticated, "path", path)
		return domain.Reject(domain.ReasonUnauthenticated, route)
	}
	claims, err := g.validate(ctx, raw)
	if err != nil {
		reason := domain.ReasonInvalidToken
		level := slog.LevelInfo
		if errors.Is(err, domain.ErrValidatorUnavailable) {
			reason = domain.ReasonValidatorUnavailable
			level = slog.LevelError
		}
		logGate(ctx, level, "reject", "request rejected", "reason", reason, "path", path, "error", err)
		return domain.Reject(reason, route)
	}
	return domain.Decision{
		Forward: true,
		Route:   route,
		Identity: &domain.Identity{
			UserID: claims.Subject,
			Email:  claims.Email,
			Role:   claims.Role,
		},
	}
}

func (g *Gate) validate(ctx context.Context, raw string) (tokens.Claims, error) {
	if g.cache == nil {
		return g.validator.Validate(ctx, raw)
	}
	fingerprint := Fingerprint(raw)
	now := g.nowFn()
	cached, hit, err := g.cache.Get(ctx, fingerprint)
	if err != nil {
		logGate(ctx, slog.LevelWarn, "cache_get", "validation cache read failed", "error", err)
	}
	// A cached entry never outlives the token itself.
	if hit && now.Before(cached.ExpiresAt) {
		return cached, nil
	}

	claims, err := g.validator.Validate(ctx, raw)
	if err != nil {
		return tokens.Claims{}, err
	}
	ttl := g.cfg.CacheTTL
	if remaining := claims.ExpiresAt.Sub(now); remaining < ttl {
		ttl = remaining
	}
	if ttl > 0 {
		if putErr := g.cache.Put(ctx, fingerprint, claims, ttl); putErr != nil {
			logGate(ctx, slog.LevelWarn, "cache_put", "validation cache write failed", "error", putErr)
		}
	}
	return claims, nil
}

// BearerToken extracts the token from a "Bearer <token>" header value.
func BearerToken(header string) (string, bool) {
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return "", false
	}
	token := strings.TrimSpace(header[len(prefix):])
	return token, token != ""
}

// Fingerprint keys cache entries so raw tokens are never stored.
func Fingerprint(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}

func logGate(ctx context.Context, level slog.Level, operation, msg string, attrs ...any) {
	fields := append([]any{
		"module", "gate",
		"layer", "application",
		"operation", operation,
	}, attrs...)
	slog.Default().Log(ctx, level, msg, fields...)
}
