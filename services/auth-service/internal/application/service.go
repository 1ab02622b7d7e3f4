package application

import (
	"time"

	"github.com/patientmesh/mesh/services/auth-service/internal/ports"
)

type Service struct {
	users  ports.UserRepository
	hasher ports.PasswordHasher
	tokens ports.TokenIssuer
	nowFn  func() time.Time
}

type Dependencies struct {
	Users  ports.UserRepository
	Hasher ports.PasswordHasher
	Tokens ports.TokenIssuer
}

func NewService(deps Dependencies) *Service {
	return &Service{
		users:  deps.Users,
		hasher: deps.Hasher,
		tokens: deps.Tokens,
		nowFn:  func() time.Time { return time.Now().UTC() },
	}
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Token string `json:"token"`
}
