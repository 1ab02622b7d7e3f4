package validator

import (
	"context"
	"fmt"

	"github.com/patientmesh/mesh/platform/tokens"
	"github.com/patientmesh/mesh/services/api-gateway/internal/domain"
)

// Local verifies tokens in process with the shared signing secret.
type Local struct {
	verifier *tokens.Verifier
}

func NewLocal(verifier *tokens.Verifier) *Local {
	return &Local{verifier: verifier}
}

func (l *Local) Validate(_ context.Context, raw string) (tokens.Claims, error) {
	claims, err := l.verifier.Verify(raw)
	if err != nil {
		return tokens.Claims{}, fmt.Errorf("%w: %v", domain.ErrInvalidToken, err)
	}
	return claims, nil
}
