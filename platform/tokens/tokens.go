// Package tokens holds the identity-token validity predicate shared by the
// auth service (issuer) and the api gateway (local verifier).
//
// A token is valid iff its HS256 signature verifies with the configured
// secret and the current time lies within [iat, exp]. Nothing else is
// consulted: there is no revocation list and no server-side session.
package tokens

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const minSecretBytes = 32

var (
	ErrMalformed = errors.New("malformed token")
	ErrExpired   = errors.New("token expired")
	ErrInvalid   = errors.New("invalid token")
)

type Claims struct {
	Subject   string
	Email     string
	Role      string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

type identityClaims struct {
	Email string `json:"email,omitempty"`
	Role  string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

type Option func(*Verifier)

// WithClock replaces the time source used for the [iat, exp] check.
func WithClock(now func() time.Time) Option {
	return func(v *Verifier) {
		if now != nil {
			v.nowFn = now
		}
	}
}

// WithLeeway widens both ends of the validity window.
func WithLeeway(d time.Duration) Option {
	return func(v *Verifier) {
		if d > 0 {
			v.leeway = d
		}
	}
}

type Verifier struct {
	secret []byte
	leeway time.Duration
	nowFn  func() time.Time
}

func NewVerifier(secret []byte, opts ...Option) (*Verifier, error) {
	if len(secret) < minSecretBytes {
		return nil, fmt.Errorf("signing secret must be at least %d bytes", minSecretBytes)
	}
	v := &Verifier{
		secret: append([]byte(nil), secret...),
		nowFn:  time.Now,
	}
	for _, opt := range opts {
		opt(v)
	}
	return v, nil
}

func (v *Verifier) Verify(raw string) (Claims, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Claims{}, ErrMalformed
	}
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuedAt(),
		jwt.WithExpirationRequired(),
		jwt.WithLeeway(v.leeway),
		jwt.WithTimeFunc(v.nowFn),
	)
	parsed, err := parser.ParseWithClaims(raw, &identityClaims{}, func(*jwt.Token) (any, error) {
		return v.secret, nil
	})
	if err != nil {
		return Claims{}, classify(err)
	}
	claims, ok := parsed.Claims.(*identityClaims)
	if !ok || !parsed.Valid {
		return Claims{}, ErrInvalid
	}
	if claims.IssuedAt == nil {
		return Claims{}, fmt.Errorf("%w: missing iat", ErrInvalid)
	}
	if strings.TrimSpace(claims.Subject) == "" {
		return Claims{}, fmt.Errorf("%w: missing sub", ErrInvalid)
	}
	return toClaims(claims), nil
}

type Signer struct {
	*Verifier
	ttl time.Duration
}

func NewSigner(secret []byte, ttl time.Duration, opts ...Option) (*Signer, error) {
	if ttl <= 0 {
		return nil, errors.New("token ttl must be positive")
	}
	v, err := NewVerifier(secret, opts...)
	if err != nil {
		return nil, err
	}
	return &Signer{Verifier: v, ttl: ttl}, nil
}

func (s *Signer) Issue(subject, email, role string) (string, Claims, error) {
	if strings.TrimSpace(subject) == "" {
		return "", Claims{}, errors.New("token subject is required")
	}
	now := s.nowFn().UTC().Truncate(time.Second)
	claims := &identityClaims{
		Email: email,
		Role:  role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", Claims{}, fmt.Errorf("sign token: %w", err)
	}
	return signed, toClaims(claims), nil
}

// PeekClaims decodes claims WITHOUT checking the signature. Callers may only
// use it on a token some verifier has already accepted.
func PeekClaims(raw string) (Claims, error) {
	var claims identityClaims
	if _, _, err := jwt.NewParser().ParseUnverified(strings.TrimSpace(raw), &claims); err != nil {
		return Claims{}, ErrMalformed
	}
	if claims.ExpiresAt == nil || claims.Subject == "" {
		return Claims{}, ErrMalformed
	}
	return toClaims(&claims), nil
}

// DecodeSecret accepts either base64 key material (as generated by
// `openssl rand -base64 32`) or a raw string.
func DecodeSecret(raw string) []byte {
	raw = strings.TrimSpace(raw)
	if decoded, err := base64.StdEncoding.DecodeString(raw); err == nil && len(decoded) >= minSecretBytes {
		return decoded
	}
	return []byte(raw)
}

func classify(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return ErrExpired
	case errors.Is(err, jwt.ErrTokenMalformed):
		return ErrMalformed
	default:
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
}

func toClaims(c *identityClaims) Claims {
	out := Claims{
		Subject: c.Subject,
		Email:   c.Email,
		Role:    c.Role,
	}
	if c.IssuedAt != nil {
		out.IssuedAt = c.IssuedAt.Time.UTC()
	}
	if c.ExpiresAt != nil {
		out.ExpiresAt = c.ExpiresAt.Time.UTC()
	}
	return out
}
