// Package config loads the service configuration from a yaml or json file
// with FH_-prefixed environment overrides.
package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/opfleet/fleethealth/core/metrics"
	"github.com/opfleet/fleethealth/infra/mqtt"
)

type Config struct {
	LogLevel string         `json:"log_level"`
	API      APIConfig      `json:"api"`
	Store    StoreConfig    `json:"store"`
	Ingest   IngestConfig   `json:"ingest"`
	Metrics  metrics.Config `json:"metrics"`
	Sweep    SweepConfig    `json:"sweep"`
	Sentry   SentryConfig   `json:"sentry"`
}

// IngestConfig controls the broker-fed telemetry/prediction consumer.
type IngestConfig struct {
	Enabled bool        `json:"enabled"`
	MQTT    mqtt.Config `json:"mqtt"`
}

func Load(path string) (*Config, error) {
	k := koanf.New(".")
	ext := strings.ToLower(filepath.Ext(path))
	var parser koanf.Parser
	switch ext {
	case ".yaml", ".yml":
		parser = yaml.Parser()
	case ".json":
		parser = json.Parser()
	default:
		return nil, fmt.Errorf("unsupported config format: %s", ext)
	}
	if err := k.Load(file.Provider(path), parser); err != nil {
		return nil, err
	}
	// Optional environment overrides
	if err := k.Load(env.Provider("FH_", "__", func(s string) string {
		s = strings.TrimPrefix(strings.ToLower(s), "fh_")
		return strings.ReplaceAll(s, "__", ".")
	}), nil); err != nil {
		return nil, err
	}
	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return nil, err
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	cfg.API.SetDefaults()
	cfg.Store.SetDefaults()
	cfg.Metrics.SetDefaults()
	cfg.Sweep.SetDefaults()
	cfg.Sentry.SetDefaults()
	if err := cfg.API.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.Store.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.Metrics.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.Sweep.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.Sentry.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
