// Package app wires configuration, logging, telemetry, local state and
// the backend client into one runtime the CLI commands share.
package app

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"

	"askdb/pkg/cache"
	"askdb/pkg/client"
	"askdb/pkg/config"
	"askdb/pkg/logger"
	"askdb/pkg/session"
	"askdb/pkg/state"
	"askdb/pkg/telemetry"
)

// App is the assembled runtime for one CLI invocation.
type App struct {
	Cfg     *config.Config
	Client  *client.Client
	Session *session.Session
}

// New builds the runtime from flags, config file and environment.
func New(flags config.Flags) (*App, error) {
	// a .env file is a development convenience, absence is fine
	_ = godotenv.Load(".env")

	cfg, err := config.LoadEffectiveConfig(flags)
	if err != nil {
		return nil, fmt.Errorf("askdb: load config: %w", err)
	}

	logger.Init(cfg.Logging.Level)
	telemetry.Init()
	if cfg.Metrics.Addr != "" {
		telemetry.Serve(cfg.Metrics.Addr)
	}

	if err := state.Open(cfg.State.Path); err != nil {
		return nil, err
	}

	c, err := client.New(client.Options{
		BaseURL:   cfg.API.BaseURL,
		UserID:    cfg.API.UserID,
		Timeout:   cfg.API.Timeout.Duration(),
		RateRPS:   cfg.API.RateLimit.RPS,
		RateBurst: cfg.API.RateLimit.Burst,
		Cache:     cache.New(nil),
	})
	if err != nil {
		state.Close()
		return nil, err
	}

	logger.Info("app_ready", "base_url", cfg.API.BaseURL, "user", cfg.API.UserID,
		"timeout", cfg.API.Timeout.Duration().Truncate(time.Millisecond).String())

	return &App{Cfg: cfg, Client: c, Session: session.New(c)}, nil
}

// Close flushes logs and releases local state.
func (a *App) Close() {
	if err := state.Close(); err != nil {
		logger.Warn("state_close_failed", "error", err)
	}
	logger.Sync()
}
