package ports

import (
	"context"

	"github.com/patientmesh/mesh/platform/tokens"
	"github.com/patientmesh/mesh/services/auth-service/internal/domain"
)

type UserRepository interface {
	GetByEmail(ctx context.Context, email string) (domain.User, error)
	// Upsert creates the user or replaces hash and role of the user with the
	// same email. The stored user is returned.
	Upsert(ctx context.Context, user domain.User) (domain.User, error)
}

type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hash, password string) error
}

type TokenIssuer interface {
	Issue(subject, email, role string) (string, tokens.Claims, error)
	Verify(raw string) (tokens.Claims, error)
}
