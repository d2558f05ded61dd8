// Package config loads babytrack configuration from a YAML file with
// environment-variable overrides.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"babytrack/internal/model"
)

// DefaultBaseURL is the production endpoint of the tracking service.
const DefaultBaseURL = "https://prodapp.babytrackers.com"

// DefaultKeyFile is where the account-linking private key lives unless
// configured otherwise.
const DefaultKeyFile = "oauth_passthrough.key"

const defaultTimeout = 15 * time.Second

// Config holds all babytrack configuration. Construct via Load and treat
// as immutable afterwards; components receive it (or slices of it) at
// construction time.
type Config struct {
	// ApplicationID verifies inbound requests from the voice front-end.
	// Empty disables verification.
	ApplicationID string `yaml:"application_id"`

	// DeviceID identifies this client to the tracking service and selects
	// the sync cursor on the device list.
	DeviceID string `yaml:"device_id" validate:"required"`

	BaseURL string `yaml:"base_url" validate:"omitempty,url"`
	KeyFile string `yaml:"key_file"`

	// Optional static credentials; when both are set, token decryption is
	// bypassed.
	Email    string `yaml:"email" validate:"omitempty,email"`
	Password string `yaml:"password"`

	// JournalPath enables the local transaction journal when non-empty.
	JournalPath string `yaml:"journal_path"`

	// Timeout bounds each HTTP call, e.g. "15s". Empty means 15s.
	Timeout string `yaml:"timeout"`

	Babies model.Roster `yaml:"babies"`
}

// Load reads the YAML file at path, applies BABYTRACK_* environment
// overrides, fills defaults, and validates the result.
func Load(path string) (Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: reading %s: %w", path, err)
	}
	var cfg Config
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: parsing %s: %w", path, err)
	}

	cfg.applyEnv()
	cfg.applyDefaults()

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	overrides := []struct {
		env string
		dst *string
	}{
		{"BABYTRACK_APPLICATION_ID", &c.ApplicationID},
		{"BABYTRACK_DEVICE_ID", &c.DeviceID},
		{"BABYTRACK_BASE_URL", &c.BaseURL},
		{"BABYTRACK_KEY_FILE", &c.KeyFile},
		{"BABYTRACK_EMAIL", &c.Email},
		{"BABYTRACK_PASSWORD", &c.Password},
		{"BABYTRACK_JOURNAL_PATH", &c.JournalPath},
		{"BABYTRACK_TIMEOUT", &c.Timeout},
	}
	for _, o := range overrides {
		if v := os.Getenv(o.env); v != "" {
			*o.dst = v
		}
	}
}

func (c *Config) applyDefaults() {
	if c.BaseURL == "" {
		c.BaseURL = DefaultBaseURL
	}
	if c.KeyFile == "" {
		c.KeyFile = DefaultKeyFile
	}
}

func (c *Config) validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	for i, b := range c.Babies {
		if b.Name == "" {
			return fmt.Errorf("config: babies[%d] has no name", i)
		}
	}
	if c.Timeout != "" {
		if _, err := time.ParseDuration(c.Timeout); err != nil {
			return fmt.Errorf("config: invalid timeout %q: %w", c.Timeout, err)
		}
	}
	return nil
}

// RequestTimeout returns the per-HTTP-call timeout.
func (c Config) RequestTimeout() time.Duration {
	if c.Timeout == "" {
		return defaultTimeout
	}
	d, err := time.ParseDuration(c.Timeout)
	if err != nil || d <= 0 {
		return defaultTimeout
	}
	return d
}

// HasStaticCredentials reports whether token decryption can be bypassed.
func (c Config) HasStaticCredentials() bool {
	return c.Email != "" && c.Password != ""
}
