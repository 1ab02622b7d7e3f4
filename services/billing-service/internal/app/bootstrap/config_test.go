package bootstrap

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadConfigFileThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	raw := []byte(`
service:
  id: billing-test
  grpc_port: 9100
dependencies:
  redis_url: redis://file:6379/0
`)
	if err := os.WriteFile(path, raw, 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("REDIS_URL", "")
	t.Setenv("GRPC_PORT", "")
	t.Setenv("BILLING_SERVICE_GRPC_PORT", "9200")

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.ServiceID != "billing-test" || cfg.RedisURL != "redis://file:6379/0" {
		t.Fatalf("file values not applied: %+v", cfg)
	}
	if cfg.GRPCPort != 9200 {
		t.Fatalf("expected env port 9200, got %d", cfg.GRPCPort)
	}
}

func TestLoadConfigDefaultsWithoutFile(t *testing.T) {
	t.Setenv("REDIS_URL", "")
	t.Setenv("GRPC_PORT", "")
	t.Setenv("BILLING_SERVICE_GRPC_PORT", "")

	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.ServiceID != "billing-service" || cfg.GRPCPort != 9002 || cfg.RedisURL != "" {
		t.Fatalf("unexpected defaults %+v", cfg)
	}
}

func TestLoadConfigRejectsBadPort(t *testing.T) {
	t.Setenv("GRPC_PORT", "-1")
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatalf("expected invalid port error")
	}
}
