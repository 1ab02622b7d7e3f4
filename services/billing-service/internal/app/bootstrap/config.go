package bootstrap

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

type Config struct {
	ServiceID string
	GRPCPort  int
	RedisURL  string
}

type configFile struct {
	Service struct {
		ID       string `yaml:"id"`
		GRPCPort int    `yaml:"grpc_port"`
	} `yaml:"service"`
	Dependencies struct {
		RedisURL string `yaml:"redis_url"`
	} `yaml:"dependencies"`
}

func LoadConfig(path string) (Config, error) {
	cfg := Config{
		ServiceID: "billing-service",
		GRPCPort:  9002,
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
		if f.Service.GRPCPort > 0 {
			cfg.GRPCPort = f.Service.GRPCPort
		}
		cfg.RedisURL = strings.TrimSpace(f.Dependencies.RedisURL)
	}

	cfg.RedisURL = envOrDefault("REDIS_URL", cfg.RedisURL)
	cfg.GRPCPort = envInt("GRPC_PORT", envInt("BILLING_SERVICE_GRPC_PORT", cfg.GRPCPort))

	if cfg.GRPCPort <= 0 {
		return Config{}, fmt.Errorf("invalid GRPC_PORT %d", cfg.GRPCPort)
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
