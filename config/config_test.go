package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, data string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `api:
  addr: ":8081"
  jwt_secret: "secret"
store:
  backend: "sqlite"
  path: "/tmp/fleet.db"
ingest:
  enabled: true
  mqtt:
    broker: "tcp://localhost:1883"
    client_id: "fleethealth"
    username: "user"
    password: "pass"
metrics:
  sinks:
    - "prometheus"
sweep:
  enabled: true
  interval_minutes: 5
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load error: %v", err)
	}
	checks := []struct {
		name string
		got  any
		want any
	}{
		{"api.addr", cfg.API.Addr, ":8081"},
		{"api.jwt_secret", cfg.API.JWTSecret, "secret"},
		{"store.backend", cfg.Store.Backend, "sqlite"},
		{"store.path", cfg.Store.Path, "/tmp/fleet.db"},
		{"ingest.enabled", cfg.Ingest.Enabled, true},
		{"mqtt.broker", cfg.Ingest.MQTT.Broker, "tcp://localhost:1883"},
		{"mqtt.client_id", cfg.Ingest.MQTT.ClientID, "fleethealth"},
		{"metrics.sinks", len(cfg.Metrics.Sinks) == 1 && cfg.Metrics.Sinks[0] == "prometheus", true},
		{"sweep.interval", cfg.Sweep.IntervalMinutes, 5},
		{"metrics.prometheus_port default", cfg.Metrics.PrometheusPort, ":2112"},
		{"log_level default", cfg.LogLevel, "info"},
		{"sentry.environment default", cfg.Sentry.Environment, "production"},
	}
	for _, c := range checks {
		if c.got != c.want {
			t.Errorf("%s: got %v want %v", c.name, c.got, c.want)
		}
	}
}

func TestLoadEnvOverride(t *testing.T) {
	path := writeConfig(t, `api:
  addr: ":8080"
  jwt_secret: "secret"
store:
  backend: "memory"
`)
	t.Setenv("FH_STORE__BACKEND", "sqlite")
	t.Setenv("FH_STORE__PATH", "/tmp/override.db")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load error: %v", err)
	}
	if cfg.Store.Backend != "sqlite" || cfg.Store.Path != "/tmp/override.db" {
		t.Fatalf("env override not applied: %+v", cfg.Store)
	}
}

func TestLoadRejectsBadConfig(t *testing.T) {
	cases := map[string]string{
		"unknown backend": `api:
  addr: ":8080"
  jwt_secret: "s"
store:
  backend: "postgres"
`,
		"missing identity": `api:
  addr: ":8080"
`,
		"bad sink": `api:
  addr: ":8080"
  jwt_secret: "s"
metrics:
  sinks:
    - "statsd"
`,
		"bad sweep interval": `api:
  addr: ":8080"
  jwt_secret: "s"
sweep:
  interval_minutes: -3
`,
		"bad sentry rate": `api:
  addr: ":8080"
  jwt_secret: "s"
sentry:
  traces_sample_rate: 1.5
`,
	}
	for name, data := range cases {
		if _, err := Load(writeConfig(t, data)); err == nil {
			t.Errorf("%s: expected error", name)
		}
	}
}

func TestLoadUnsupportedFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("x = 1"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatalf("expected unsupported format error")
	}
}
