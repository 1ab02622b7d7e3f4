package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"

	"github.com/google/uuid"
	"github.com/patientmesh/mesh/services/auth-service/internal/domain"
)

// Login never says which of email or password was wrong.
func (s *Service) Login(ctx context.Context, req LoginRequest) (LoginResponse, error) {
	email := domain.NormalizeEmail(req.Email)
	if email == "" || req.Password == "" {
		return LoginResponse{}, domain.ErrInvalidCredentials
	}
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			logAuth(ctx, slog.LevelWarn, "login", "failure", "login rejected", "reason", "unknown_email")
			return LoginResponse{}, domain.ErrInvalidCredentials
		}
		return LoginResponse{}, err
	}
	if err := s.hasher.Compare(user.PasswordHash, req.Password); err != nil {
		logAuth(ctx, slog.LevelWarn, "login", "failure", "login rejected", "reason", "password_mismatch", "user_id", user.ID.String())
		return LoginResponse{}, domain.ErrInvalidCredentials
	}
	token, claims, err := s.tokens.Issue(user.ID.String(), user.Email, user.Role)
	if err != nil {
		return LoginResponse{}, fmt.Errorf("issue token: %w", err)
	}
	logAuth(ctx, slog.LevelInfo, "login", "success", "token issued",
		"user_id", user.ID.String(),
		"expires_at", claims.ExpiresAt,
	)
	return LoginResponse{Token: token}, nil
}

// Validate reports whether raw carries a valid signature and lies inside its
// issuance window. Callers reject blank tokens before asking.
func (s *Service) Validate(ctx context.Context, raw string) bool {
	if strings.TrimSpace(raw) == "" {
		return false
	}
	if _, err := s.tokens.Verify(raw); err != nil {
		logAuth(ctx, slog.LevelInfo, "validate", "failure", "token rejected", "error", err)
		return false
	}
	return true
}

// EnsureUser creates or refreshes a user from configuration.
func (s *Service) EnsureUser(ctx context.Context, email, password, role string) (domain.User, error) {
	email = domain.NormalizeEmail(email)
	if addr, err := mail.ParseAddress(email); err != nil || addr.Address != email {
		return domain.User{}, fmt.Errorf("%w: bootstrap email is invalid", domain.ErrInvalidInput)
	}
	if len(password) < 8 {
		return domain.User{}, fmt.Errorf("%w: bootstrap password must be at least 8 characters", domain.ErrInvalidInput)
	}
	role = strings.ToUpper(strings.TrimSpace(role))
	if role == "" {
		role = domain.RoleUser
	}
	hash, err := s.hasher.Hash(password)
	if err != nil {
		return domain.User{}, fmt.Errorf("hash password: %w", err)
	}
	now := s.nowFn()
	return s.users.Upsert(ctx, domain.User{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: hash,
		Role:         role,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
}

func logAuth(ctx context.Context, level slog.Level, operation, outcome, msg string, attrs ...any) {
	fields := append([]any{
		"module", "auth",
		"layer", "application",
		"operation", operation,
		"outcome", outcome,
	}, attrs...)
	slog.Default().Log(ctx, level, msg, fields...)
}
