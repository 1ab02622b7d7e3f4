package ports

import (
	"context"
	"time"

	"github.com/patientmesh/mesh/platform/tokens"
)

// TokenValidator applies the shared validity predicate. Errors wrap
// domain.ErrInvalidToken or domain.ErrValidatorUnavailable.
type TokenValidator interface {
	Validate(ctx context.Context, raw string) (tokens.Claims, error)
}

// ValidationCache remembers positive validation results keyed by a token
// fingerprint.
type ValidationCache interface {
	Get(ctx context.Context, fingerprint string) (tokens.Claims, bool, error)
	Put(ctx context.Context, fingerprint string, claims tokens.Claims, ttl time.Duration) error
}
