package metrics

import "fmt"

// InfluxConfig holds the InfluxDB sink connection settings.
type InfluxConfig struct {
	URL    string `json:"url"`
	Token  string `json:"token"`
	Org    string `json:"org"`
	Bucket string `json:"bucket"`
}

// Config defines settings for metrics sinks.
type Config struct {
	// Sinks names the enabled sinks: "prometheus", "influx".
	Sinks          []string     `json:"sinks"`
	PrometheusPort string       `json:"prometheus_port"`
	Influx         InfluxConfig `json:"influx"`
}

// SetDefaults applies sane defaults.
func (c *Config) SetDefaults() {
	if c.PrometheusPort == "" {
		c.PrometheusPort = ":2112"
	}
}

// Validate checks the named sinks.
func (c Config) Validate() error {
	for _, s := range c.Sinks {
		switch s {
		case "prometheus", "influx":
		default:
			return fmt.Errorf("unknown metrics sink %s", s)
		}
	}
	return nil
}
