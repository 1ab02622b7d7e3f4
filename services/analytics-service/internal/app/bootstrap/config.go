package bootstrap

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	ServiceID string

	HTTPPort int

	KafkaBrokers       []string
	KafkaTopicPatient  string
	KafkaConsumerGroup string
	PollInterval       time.Duration
	BatchSize          int

	RedisURL string
	DedupTTL time.Duration
}

type configFile struct {
	Service struct {
		ID       string `yaml:"id"`
		HTTPPort int    `yaml:"http_port"`
	} `yaml:"service"`
	Worker struct {
		PollIntervalMS int `yaml:"poll_interval_ms"`
		BatchSize      int `yaml:"batch_size"`
		DedupTTLHours  int `yaml:"dedup_ttl_hours"`
	} `yaml:"worker"`
	Dependencies struct {
		KafkaBrokers       []string `yaml:"kafka_brokers"`
		KafkaTopicPatient  string   `yaml:"kafka_topic_patient"`
		KafkaConsumerGroup string   `yaml:"kafka_consumer_group"`
		RedisURL           string   `yaml:"redis_url"`
	} `yaml:"dependencies"`
}

func LoadConfig(path string) (Config, error) {
	cfg := Config{
		ServiceID:          "analytics-service",
		HTTPPort:           4002,
		KafkaTopicPatient:  "patient",
		KafkaConsumerGroup: "analytics-service",
		PollInterval:       time.Second,
		BatchSize:          50,
		DedupTTL:           24 * time.Hour,
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
		if f.Worker.PollIntervalMS > 0 {
			cfg.PollInterval = time.Duration(f.Worker.PollIntervalMS) * time.Millisecond
		}
		if f.Worker.BatchSize > 0 {
			cfg.BatchSize = f.Worker.BatchSize
		}
		if f.Worker.DedupTTLHours > 0 {
			cfg.DedupTTL = time.Duration(f.Worker.DedupTTLHours) * time.Hour
		}
		if len(f.Dependencies.KafkaBrokers) > 0 {
			cfg.KafkaBrokers = trimNonEmpty(f.Dependencies.KafkaBrokers)
		}
		if f.Dependencies.KafkaTopicPatient != "" {
			cfg.KafkaTopicPatient = f.Dependencies.KafkaTopicPatient
		}
		if f.Dependencies.KafkaConsumerGroup != "" {
			cfg.KafkaConsumerGroup = f.Dependencies.KafkaConsumerGroup
		}
		cfg.RedisURL = f.Dependencies.RedisURL
	}

	if raw := strings.TrimSpace(os.Getenv("KAFKA_BROKERS")); raw != "" {
		cfg.KafkaBrokers = trimNonEmpty(strings.Split(raw, ","))
	}
	cfg.KafkaTopicPatient = envOrDefault("KAFKA_TOPIC_PATIENT", cfg.KafkaTopicPatient)
	cfg.KafkaConsumerGroup = envOrDefault("KAFKA_CONSUMER_GROUP", cfg.KafkaConsumerGroup)
	cfg.RedisURL = envOrDefault("REDIS_URL", cfg.RedisURL)
	cfg.HTTPPort = envInt("HTTP_PORT", cfg.HTTPPort)
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

func trimNonEmpty(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if trimmed := strings.TrimSpace(v); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
