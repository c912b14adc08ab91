package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/adhocore/gronx"
	"gopkg.in/yaml.v3"
)

const (
	defaultTimeout     = 30 * time.Second
	defaultRateRPS     = 1.0
	defaultRateBurst   = 1
	defaultLogLevel    = "info"
	defaultRefreshCron = "*/5 * * * *"
)

// LoadConfigFile reads and parses a config file.
func LoadConfigFile(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("config file not found: %s", path)
		}
		return nil, err
	}
	var cfg Config
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// ResolveConfigPath picks the config path: an explicitly set flag wins,
// then ASKDB_CONFIG, then the flag default.
func ResolveConfigPath(flagPath string, flagSet bool) string {
	if flagSet {
		return flagPath
	}
	if p := os.Getenv("ASKDB_CONFIG"); p != "" {
		return p
	}
	return flagPath
}

// Validate fills defaults and rejects values the rest of the program
// cannot work with.
func (c *Config) Validate() error {
	if c.API.BaseURL == "" {
		return fmt.Errorf("api.base_url is required")
	}
	if c.API.UserID == "" {
		return fmt.Errorf("api.user_id is required")
	}
	if c.API.Timeout.Duration() <= 0 {
		c.API.Timeout = Duration(defaultTimeout)
	}
	if c.API.RateLimit.RPS <= 0 {
		c.API.RateLimit.RPS = defaultRateRPS
	}
	if c.API.RateLimit.Burst <= 0 {
		c.API.RateLimit.Burst = defaultRateBurst
	}
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	if c.State.Path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("state.path not set and home dir unknown: %w", err)
		}
		c.State.Path = filepath.Join(home, ".askdb", "state")
	}
	if c.Dashboard.RefreshCron == "" {
		c.Dashboard.RefreshCron = defaultRefreshCron
	}
	if !gronx.IsValid(c.Dashboard.RefreshCron) {
		return fmt.Errorf("dashboard.refresh_cron is not a valid cron expression: %q", c.Dashboard.RefreshCron)
	}
	return nil
}
