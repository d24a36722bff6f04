package config

import "fmt"

// APIConfig defines settings for the HTTP API server.
type APIConfig struct {
	// Addr is the listen address, e.g. ":8080".
	Addr string `json:"addr"`
	// JWTSecret verifies bearer tokens. When empty the API falls back to
	// the static identity below, which is only meant for development.
	JWTSecret string `json:"jwt_secret"`
	// StaticProfileID and StaticRole define the development identity.
	StaticProfileID string `json:"static_profile_id"`
	StaticRole      string `json:"static_role"`
	// ReadTimeoutSeconds and WriteTimeoutSeconds bound request handling.
	ReadTimeoutSeconds  int `json:"read_timeout_seconds"`
	WriteTimeoutSeconds int `json:"write_timeout_seconds"`
}

// SetDefaults applies sane defaults.
func (c *APIConfig) SetDefaults() {
	if c.Addr == "" {
		c.Addr = ":8080"
	}
	if c.ReadTimeoutSeconds == 0 {
		c.ReadTimeoutSeconds = 10
	}
	if c.WriteTimeoutSeconds == 0 {
		c.WriteTimeoutSeconds = 10
	}
}

// Validate checks mandatory fields.
func (c APIConfig) Validate() error {
	if c.Addr == "" {
		return fmt.Errorf("api addr is required")
	}
	if c.JWTSecret == "" && c.StaticProfileID == "" {
		return fmt.Errorf("api requires jwt_secret or static_profile_id")
	}
	return nil
}
