// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package config loads the service configuration from environment variables.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/robfig/cron/v3"
)

// ScheduleOff disables a scheduled job.
const ScheduleOff = "off"

// Config holds the application configuration loaded from environment variables.
type Config struct {
	DBPath     string `env:"OCMS_DB_PATH" envDefault:"./data/ocms-render.db"`
	ServerHost string `env:"OCMS_SERVER_HOST" envDefault:"localhost"`
	ServerPort int    `env:"OCMS_SERVER_PORT" envDefault:"8080"`
	Env        string `env:"OCMS_ENV" envDefault:"development"`
	LogLevel   string `env:"OCMS_LOG_LEVEL" envDefault:"info"`

	// TrustProxy takes the client address from X-Real-IP/X-Forwarded-For.
	// Enable only behind a reverse proxy that sets these headers.
	TrustProxy bool `env:"OCMS_TRUST_PROXY" envDefault:"false"`

	// Cache configuration
	RedisURL     string `env:"OCMS_REDIS_URL"`                              // Optional Redis URL for distributed caching
	CachePrefix  string `env:"OCMS_CACHE_PREFIX" envDefault:"ocms-render:"` // Redis key prefix
	CacheTTL     int    `env:"OCMS_CACHE_TTL" envDefault:"300"`             // Page cache TTL in seconds
	CacheMaxSize int    `env:"OCMS_CACHE_MAX_SIZE" envDefault:"10000"`      // Max memory cache entries

	// Composition
	AccessControl  bool `env:"OCMS_ACCESS_CONTROL" envDefault:"true"`
	SanitizeHTML   bool `env:"OCMS_SANITIZE_HTML" envDefault:"false"`
	MaxMasterDepth int  `env:"OCMS_MAX_MASTER_DEPTH" envDefault:"32"`

	// Preview and manage requests are rate limited per client.
	PreviewRate  float64 `env:"OCMS_PREVIEW_RATE" envDefault:"5"`
	PreviewBurst int     `env:"OCMS_PREVIEW_BURST" envDefault:"10"`

	// Scheduled jobs, as cron specs. "off" disables a job.
	RedirectReload     string `env:"OCMS_REDIRECT_RELOAD" envDefault:"@every 5m"`
	CacheWarmup        string `env:"OCMS_CACHE_WARMUP" envDefault:"@every 15m"`
	CacheWarmupLimit   int    `env:"OCMS_CACHE_WARMUP_LIMIT" envDefault:"100"`
	EventCleanup       string `env:"OCMS_EVENT_CLEANUP" envDefault:"@daily"`
	EventRetentionDays int    `env:"OCMS_EVENT_RETENTION_DAYS" envDefault:"30"`
}

// IsDevelopment returns true if the application is running in development mode.
func (c Config) IsDevelopment() bool {
	return c.Env == "development"
}

// ServerAddr returns the full server address in host:port format.
func (c Config) ServerAddr() string {
	return fmt.Sprintf("%s:%d", c.ServerHost, c.ServerPort)
}

// PageCacheTTL returns the page cache TTL.
func (c Config) PageCacheTTL() time.Duration {
	return time.Duration(c.CacheTTL) * time.Second
}

// EventRetention returns how long events are kept.
func (c Config) EventRetention() time.Duration {
	return time.Duration(c.EventRetentionDays) * 24 * time.Hour
}

// Load parses environment variables and returns a Config struct.
func Load() (*Config, error) {
	return load(env.Options{})
}

// LoadFromEnvironment parses the given variables instead of the process
// environment.
func LoadFromEnvironment(vars map[string]string) (*Config, error) {
	return load(env.Options{Environment: vars})
}

func load(opts env.Options) (*Config, error) {
	cfg := &Config{}
	if err := env.ParseWithOptions(cfg, opts); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks value ranges and cron specs.
func (c Config) Validate() error {
	var errs []error
	if c.DBPath == "" {
		errs = append(errs, errors.New("OCMS_DB_PATH must not be empty"))
	}
	if c.ServerPort < 1 || c.ServerPort > 65535 {
		errs = append(errs, fmt.Errorf("OCMS_SERVER_PORT must be between 1 and 65535, got %d", c.ServerPort))
	}
	if c.CacheTTL < 0 {
		errs = append(errs, fmt.Errorf("OCMS_CACHE_TTL must not be negative, got %d", c.CacheTTL))
	}
	if c.CacheMaxSize < 0 {
		errs = append(errs, fmt.Errorf("OCMS_CACHE_MAX_SIZE must not be negative, got %d", c.CacheMaxSize))
	}
	if c.MaxMasterDepth < 1 {
		errs = append(errs, fmt.Errorf("OCMS_MAX_MASTER_DEPTH must be at least 1, got %d", c.MaxMasterDepth))
	}
	if c.PreviewRate <= 0 || c.PreviewBurst < 1 {
		errs = append(errs, fmt.Errorf("OCMS_PREVIEW_RATE must be positive and OCMS_PREVIEW_BURST at least 1, got %g/%d",
			c.PreviewRate, c.PreviewBurst))
	}
	if c.CacheWarmupLimit < 0 {
		errs = append(errs, fmt.Errorf("OCMS_CACHE_WARMUP_LIMIT must not be negative, got %d", c.CacheWarmupLimit))
	}
	if c.EventRetentionDays < 1 {
		errs = append(errs, fmt.Errorf("OCMS_EVENT_RETENTION_DAYS must be at least 1, got %d", c.EventRetentionDays))
	}
	for name, spec := range map[string]string{
		"OCMS_REDIRECT_RELOAD": c.RedirectReload,
		"OCMS_CACHE_WARMUP":    c.CacheWarmup,
		"OCMS_EVENT_CLEANUP":   c.EventCleanup,
	} {
		if spec == "" || spec == ScheduleOff {
			continue
		}
		if _, err := cron.ParseStandard(spec); err != nil {
			errs = append(errs, fmt.Errorf("%s: invalid schedule %q: %w", name, spec, err))
		}
	}
	return errors.Join(errs...)
}
