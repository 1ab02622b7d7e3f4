package bootstrap

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/patientmesh/mesh/platform/tokens"
	"github.com/patientmesh/mesh/services/api-gateway/internal/domain"
	"gopkg.in/yaml.v3"
)

const (
	ValidationLocal  = "local"
	ValidationRemote = "remote"
)

type Config struct {
	ServiceID string

	HTTPPort int

	ValidationMode    string
	JWTSecret         []byte
	AuthServiceURL    string
	ValidationTimeout time.Duration

	RedisURL          string
	CacheTTL          time.Duration
	MemoryCacheSize   int
	KeepAuthorization bool

	Upstreams map[string]string
	Routes    []domain.Route
}

type routeFile struct {
	Prefix       string `yaml:"prefix"`
	Upstream     string `yaml:"upstream"`
	StripPrefix  string `yaml:"strip_prefix"`
	TargetPrefix string `yaml:"target_prefix"`
	AuthRequired bool   `yaml:"auth_required"`
}

type configFile struct {
	Service struct {
		ID       string `yaml:"id"`
		HTTPPort int    `yaml:"http_port"`
	} `yaml:"service"`
	Auth struct {
		Mode                string `yaml:"mode"`
		ValidationTimeoutMS int    `yaml:"validation_timeout_ms"`
		CacheTTLSeconds     int    `yaml:"cache_ttl_seconds"`
		MemoryCacheSize     int    `yaml:"memory_cache_size"`
		KeepAuthorization   bool   `yaml:"keep_authorization"`
	} `yaml:"auth"`
	Dependencies struct {
		RedisURL string `yaml:"redis_url"`
	} `yaml:"dependencies"`
	Upstreams map[string]string `yaml:"upstreams"`
	Routes    []routeFile       `yaml:"routes"`
}

func defaultRoutes() []domain.Route {
	return []domain.Route{
		{Prefix: "/api/patients", Upstream: "patient", StripPrefix: "/api", AuthRequired: true},
		{Prefix: "/api-docs/patients", Upstream: "patient", StripPrefix: "/api-docs/patients", TargetPrefix: "/docs"},
		{Prefix: "/auth", Upstream: "auth", StripPrefix: "/auth"},
	}
}

func LoadConfig(path string) (Config, error) {
	cfg := Config{
		ServiceID:         "api-gateway",
		HTTPPort:          4004,
		ValidationMode:    ValidationLocal,
		ValidationTimeout: 2 * time.Second,
		CacheTTL:          time.Minute,
		MemoryCacheSize:   10000,
		Upstreams: map[string]string{
			"patient": "http://localhost:4000",
			"auth":    "http://localhost:4005",
		},
		Routes: defaultRoutes(),
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
		if f.Auth.Mode != "" {
			cfg.ValidationMode = f.Auth.Mode
		}
		if f.Auth.ValidationTimeoutMS > 0 {
			cfg.ValidationTimeout = time.Duration(f.Auth.ValidationTimeoutMS) * time.Millisecond
		}
		if f.Auth.CacheTTLSeconds > 0 {
			cfg.CacheTTL = time.Duration(f.Auth.CacheTTLSeconds) * time.Second
		}
		if f.Auth.MemoryCacheSize > 0 {
			cfg.MemoryCacheSize = f.Auth.MemoryCacheSize
		}
		cfg.KeepAuthorization = f.Auth.KeepAuthorization
		cfg.RedisURL = f.Dependencies.RedisURL
		for name, target := range f.Upstreams {
			cfg.Upstreams[name] = target
		}
		if len(f.Routes) > 0 {
			cfg.Routes = make([]domain.Route, 0, len(f.Routes))
			for _, r := range f.Routes {
				cfg.Routes = append(cfg.Routes, domain.Route{
					Prefix:       r.Prefix,
					Upstream:     r.Upstream,
					StripPrefix:  r.StripPrefix,
					TargetPrefix: r.TargetPrefix,
					AuthRequired: r.AuthRequired,
				})
			}
		}
	}

	cfg.HTTPPort = envInt("HTTP_PORT", cfg.HTTPPort)
	cfg.ValidationMode = strings.ToLower(envOrDefault("AUTH_VALIDATION_MODE", cfg.ValidationMode))
	cfg.Upstreams["patient"] = envOrDefault("PATIENT_SERVICE_URL", cfg.Upstreams["patient"])
	cfg.Upstreams["auth"] = envOrDefault("AUTH_SERVICE_URL", cfg.Upstreams["auth"])
	cfg.AuthServiceURL = cfg.Upstreams["auth"]
	cfg.RedisURL = envOrDefault("REDIS_URL", cfg.RedisURL)
	if seconds := envInt("VALIDATION_CACHE_TTL_SECONDS", -1); seconds >= 0 {
		cfg.CacheTTL = time.Duration(seconds) * time.Second
	}

	switch cfg.ValidationMode {
	case ValidationLocal:
		secret := strings.TrimSpace(os.Getenv("JWT_SECRET"))
		if secret == "" {
			return Config{}, fmt.Errorf("missing JWT_SECRET for local token validation")
		}
		cfg.JWTSecret = tokens.DecodeSecret(secret)
	case ValidationRemote:
		if cfg.AuthServiceURL == "" {
			return Config{}, fmt.Errorf("missing AUTH_SERVICE_URL for remote token validation")
		}
	default:
		return Config{}, fmt.Errorf("unknown AUTH_VALIDATION_MODE %q", cfg.ValidationMode)
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
