package bootstrap

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/patientmesh/mesh/platform/tokens"
	"gopkg.in/yaml.v3"
)

type Config struct {
	ServiceID string

	HTTPPort int

	DatabaseURL string
	MaxDBConns  int32

	JWTSecret  []byte
	TokenTTL   time.Duration
	BcryptCost int

	BootstrapEmail    string
	BootstrapPassword string
	BootstrapRole     string
}

type configFile struct {
	Service struct {
		ID       string `yaml:"id"`
		HTTPPort int    `yaml:"http_port"`
	} `yaml:"service"`
	Auth struct {
		TokenTTLMinutes int `yaml:"token_ttl_minutes"`
		BcryptCost      int `yaml:"bcrypt_cost"`
		BootstrapUser   struct {
			Email    string `yaml:"email"`
			Password string `yaml:"password"`
			Role     string `yaml:"role"`
		} `yaml:"bootstrap_user"`
	} `yaml:"auth"`
	Dependencies struct {
		PostgresURL string `yaml:"postgres_url"`
	} `yaml:"dependencies"`
}

// LoadConfig reads defaults, then the yaml file, then the environment. The
// signing secret is only taken from JWT_SECRET.
func LoadConfig(path string) (Config, error) {
	cfg := Config{
		ServiceID:     "auth-service",
		HTTPPort:      4005,
		MaxDBConns:    10,
		TokenTTL:      10 * time.Hour,
		BcryptCost:    12,
		BootstrapRole: "ADMIN",
	}

	raw, err := os.ReadFile(path)
	if err == nil {
		var f configFile
		if unmarshalErr := yaml.Unmarshal(raw, &f); unmarshalErr != nil {
			return Config{}, fmt.Errorf("parse config file: %w", unmarshalErr)
		}
		if f.Service.ID != "" {
			cfg.ServiceID = f.Service.ID
		}
		if f.Service.HTTPPort > 0 {
			cfg.HTTPPort = f.Service.HTTPPort
		}
		if f.Auth.TokenTTLMinutes > 0 {
			cfg.TokenTTL = time.Duration(f.Auth.TokenTTLMinutes) * time.Minute
		}
		if f.Auth.BcryptCost > 0 {
			cfg.BcryptCost = f.Auth.BcryptCost
		}
		if f.Auth.BootstrapUser.Email != "" {
			cfg.BootstrapEmail = f.Auth.BootstrapUser.Email
			cfg.BootstrapPassword = f.Auth.BootstrapUser.Password
		}
		if f.Auth.BootstrapUser.Role != "" {
			cfg.BootstrapRole = f.Auth.BootstrapUser.Role
		}
		if f.Dependencies.PostgresURL != "" {
			cfg.DatabaseURL = f.Dependencies.PostgresURL
		}
	}

	cfg.DatabaseURL = envOrDefault("DB_URL", envOrDefault("POSTGRES_URL", cfg.DatabaseURL))
	cfg.HTTPPort = envInt("HTTP_PORT", cfg.HTTPPort)
	cfg.MaxDBConns = int32(envInt("DB_MAX_CONNS", int(cfg.MaxDBConns)))
	if minutes := envInt("TOKEN_TTL_MINUTES", 0); minutes > 0 {
		cfg.TokenTTL = time.Duration(minutes) * time.Minute
	}
	cfg.BcryptCost = envInt("BCRYPT_COST", cfg.BcryptCost)
	cfg.BootstrapEmail = envOrDefault("BOOTSTRAP_USER_EMAIL", cfg.BootstrapEmail)
	cfg.BootstrapPassword = envOrDefault("BOOTSTRAP_USER_PASSWORD", cfg.BootstrapPassword)
	cfg.BootstrapRole = envOrDefault("BOOTSTRAP_USER_ROLE", cfg.BootstrapRole)

	secret := strings.TrimSpace(os.Getenv("JWT_SECRET"))
	if secret == "" {
		return Config{}, fmt.Errorf("missing JWT_SECRET")
	}
	cfg.JWTSecret = tokens.DecodeSecret(secret)

	if cfg.DatabaseURL == "" {
		return Config{}, fmt.Errorf("missing DB_URL/POSTGRES_URL")
	}
	return cfg, nil
}

func envOrDefault(name, fallback string) string {
	if value := os.Getenv(name); value != "" {
		return value
	}
	return fallback
}

func envInt(name string, fallback int) int {
	raw := os.Getenv(name)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return v
}
