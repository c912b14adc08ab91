package config

import (
	"os"
	"strconv"
	"time"
)

// Flags holds command-line overrides and which of them were set
// explicitly.
type Flags struct {
	Config  string
	BaseURL string
	UserID  string
	Set     map[string]bool
}

// ParseConfigEnvs loads ASKDB_* environment variables into a fresh
// Config; the caller's config is unchanged.
func ParseConfigEnvs() *Config {
	var cfg Config
	if v := os.Getenv("ASKDB_BASE_URL"); v != "" {
		cfg.API.BaseURL = v
	}
	if v := os.Getenv("ASKDB_USER_ID"); v != "" {
		cfg.API.UserID = v
	}
	if v := os.Getenv("ASKDB_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.API.Timeout = Duration(d)
		}
	}
	if v := os.Getenv("ASKDB_RATE_RPS"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.API.RateLimit.RPS = f
		}
	}
	if v := os.Getenv("ASKDB_RATE_BURST"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.API.RateLimit.Burst = n
		}
	}
	if v := os.Getenv("ASKDB_STATE_PATH"); v != "" {
		cfg.State.Path = v
	}
	if v := os.Getenv("ASKDB_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("ASKDB_METRICS_ADDR"); v != "" {
		cfg.Metrics.Addr = v
	}
	if v := os.Getenv("ASKDB_DASHBOARD_REFRESH_CRON"); v != "" {
		cfg.Dashboard.RefreshCron = v
	}
	return &cfg
}

// LoadEffectiveConfig merges the three sources with flags taking
// precedence over the config file, and the file over environment
// variables. The result is validated with defaults applied.
func LoadEffectiveConfig(flags Flags) (*Config, error) {
	cfg := ParseConfigEnvs()

	path := ResolveConfigPath(flags.Config, flags.Set["config"])
	if path != "" {
		fileCfg, err := LoadConfigFile(path)
		if err != nil {
			// a missing default-path file is fine; an explicit one is not
			if flags.Set["config"] || os.Getenv("ASKDB_CONFIG") != "" {
				return nil, err
			}
		} else {
			mergeConfig(cfg, fileCfg)
		}
	}

	if flags.BaseURL != "" {
		cfg.API.BaseURL = flags.BaseURL
	}
	if flags.UserID != "" {
		cfg.API.UserID = flags.UserID
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// mergeConfig copies set fields of src over dst.
func mergeConfig(dst, src *Config) {
	if src.API.BaseURL != "" {
		dst.API.BaseURL = src.API.BaseURL
	}
	if src.API.UserID != "" {
		dst.API.UserID = src.API.UserID
	}
	if src.API.Timeout.Duration() > 0 {
		dst.API.Timeout = src.API.Timeout
	}
	if src.API.RateLimit.RPS > 0 {
		dst.API.RateLimit.RPS = src.API.RateLimit.RPS
	}
	if src.API.RateLimit.Burst > 0 {
		dst.API.RateLimit.Burst = src.API.RateLimit.Burst
	}
	if src.State.Path != "" {
		dst.State.Path = src.State.Path
	}
	if src.Logging.Level != "" {
		dst.Logging.Level = src.Logging.Level
	}
	if src.Metrics.Addr != "" {
		dst.Metrics.Addr = src.Metrics.Addr
	}
	if src.Dashboard.RefreshCron != "" {
		dst.Dashboard.RefreshCron = src.Dashboard.RefreshCron
	}
}
