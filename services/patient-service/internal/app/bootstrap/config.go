package bootstrap

import (
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	ServiceID string

	HTTPPort int

	DatabaseURL string
	MaxDBConns  int32

	KafkaBrokers      []string
	KafkaTopicPatient string
	KafkaWriteTimeout time.Duration

	BillingAddress string
	BillingPort    int
	BillingTimeout time.Duration

	RequireGatewayIdentity bool
}

// BillingEndpoint is the gRPC target built from the billing host and port.
func (c Config) BillingEndpoint() string {
	return net.JoinHostPort(c.BillingAddress, strconv.Itoa(c.BillingPort))
}

type configFile struct {
	Service struct {
		ID                     string `yaml:"id"`
		HTTPPort               int    `yaml:"http_port"`
		RequireGatewayIdentity *bool  `yaml:"require_gateway_identity"`
	} `yaml:"service"`
	Dependencies struct {
		PostgresURL         string   `yaml:"postgres_url"`
		KafkaBrokers        []string `yaml:"kafka_brokers"`
		KafkaTopicPatient   string   `yaml:"kafka_topic_patient"`
		BillingAddress      string   `yaml:"billing_address"`
		BillingGRPCPort     int      `yaml:"billing_grpc_port"`
		BillingTimeoutMS    int      `yaml:"billing_timeout_ms"`
		KafkaWriteTimeoutMS int      `yaml:"kafka_write_timeout_ms"`
	} `yaml:"dependencies"`
}

func LoadConfig(path string) (Config, error) {
	cfg := Config{
		ServiceID:              "patient-service",
		HTTPPort:               4000,
		MaxDBConns:             20,
		KafkaTopicPatient:      "patient",
		KafkaWriteTimeout:      10 * time.Second,
		BillingAddress:         "localhost",
		BillingPort:            9002,
		BillingTimeout:         3 * time.Second,
		RequireGatewayIdentity: true,
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
		if f.Service.RequireGatewayIdentity != nil {
			cfg.RequireGatewayIdentity = *f.Service.RequireGatewayIdentity
		}
		if f.Dependencies.PostgresURL != "" {
			cfg.DatabaseURL = f.Dependencies.PostgresURL
		}
		if len(f.Dependencies.KafkaBrokers) > 0 {
			cfg.KafkaBrokers = trimNonEmpty(f.Dependencies.KafkaBrokers)
		}
		if f.Dependencies.KafkaTopicPatient != "" {
			cfg.KafkaTopicPatient = f.Dependencies.KafkaTopicPatient
		}
		if f.Dependencies.BillingAddress != "" {
			cfg.BillingAddress = f.Dependencies.BillingAddress
		}
		if f.Dependencies.BillingGRPCPort > 0 {
			cfg.BillingPort = f.Dependencies.BillingGRPCPort
		}
		if f.Dependencies.BillingTimeoutMS > 0 {
			cfg.BillingTimeout = time.Duration(f.Dependencies.BillingTimeoutMS) * time.Millisecond
		}
		if f.Dependencies.KafkaWriteTimeoutMS > 0 {
			cfg.KafkaWriteTimeout = time.Duration(f.Dependencies.KafkaWriteTimeoutMS) * time.Millisecond
		}
	}

	cfg.DatabaseURL = envOrDefault("DB_URL", envOrDefault("POSTGRES_URL", cfg.DatabaseURL))
	cfg.KafkaBrokers = envCSV("KAFKA_BROKERS", cfg.KafkaBrokers)
	cfg.KafkaTopicPatient = envOrDefault("KAFKA_TOPIC_PATIENT", cfg.KafkaTopicPatient)
	cfg.BillingAddress = envOrDefault("BILLING_SERVICE_ADDRESS", cfg.BillingAddress)
	cfg.BillingPort = envInt("BILLING_SERVICE_GRPC_PORT", cfg.BillingPort)
	cfg.BillingTimeout = envMillis("BILLING_TIMEOUT_MS", cfg.BillingTimeout)
	cfg.KafkaWriteTimeout = envMillis("KAFKA_WRITE_TIMEOUT_MS", cfg.KafkaWriteTimeout)
	cfg.HTTPPort = envInt("HTTP_PORT", cfg.HTTPPort)
	cfg.MaxDBConns = int32(envInt("DB_MAX_CONNS", int(cfg.MaxDBConns)))
	cfg.RequireGatewayIdentity = envBool("REQUIRE_GATEWAY_IDENTITY", cfg.RequireGatewayIdentity)

	if cfg.DatabaseURL == "" {
		return Config{}, fmt.Errorf("missing DB_URL/POSTGRES_URL")
	}
	if cfg.BillingAddress == "" || cfg.BillingPort <= 0 {
		return Config{}, fmt.Errorf("missing BILLING_SERVICE_ADDRESS/BILLING_SERVICE_GRPC_PORT")
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

func envMillis(name string, fallback time.Duration) time.Duration {
	ms := envInt(name, -1)
	if ms <= 0 {
		return fallback
	}
	return time.Duration(ms) * time.Millisecond
}

func envBool(name string, fallback bool) bool {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return fallback
	}
	switch strings.ToLower(raw) {
	case "1", "true", "yes":
		return true
	case "0", "false", "no":
		return false
	default:
		return fallback
	}
}

func envCSV(name string, fallback []string) []string {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return fallback
	}
	return trimNonEmpty(strings.Split(raw, ","))
}

func trimNonEmpty(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		trimmed := strings.TrimSpace(v)
		if trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
