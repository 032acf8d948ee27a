// Package config loads service configuration from a YAML file with
// environment variable overrides. Supabase credentials are only ever
// read from the environment.
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config is the top-level service configuration.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Logging  LoggingConfig  `yaml:"logging"`
	Supabase SupabaseConfig `yaml:"supabase"`
	Realtime RealtimeConfig `yaml:"realtime"`
}

// ServerConfig configures the HTTP API server.
type ServerConfig struct {
	Addr              string   `yaml:"addr"`
	AllowedOrigins    []string `yaml:"allowed_origins"`
	RequestsPerSecond int      `yaml:"requests_per_second"`
	Burst             int      `yaml:"burst"`
}

// LoggingConfig configures the logger.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Pretty bool   `yaml:"pretty"`
}

// SupabaseConfig holds the hosted backend connection settings.
// Keys are taken from the environment, never from the YAML file.
type SupabaseConfig struct {
	URL        string `yaml:"url"`
	AnonKey    string `yaml:"-"`
	ServiceKey string `yaml:"-"`
	JWTSecret  string `yaml:"-"`
}

// RealtimeConfig configures the change-notification watcher.
type RealtimeConfig struct {
	Enabled bool `yaml:"enabled"`
	// RecomputeSchedule is a cron expression for the periodic bulk
	// availability recompute. Empty disables the schedule.
	RecomputeSchedule string `yaml:"recompute_schedule"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Addr:              ":8080",
			AllowedOrigins:    []string{"*"},
			RequestsPerSecond: 20,
			Burst:             40,
		},
		Logging: LoggingConfig{Level: "info"},
		Realtime: RealtimeConfig{
			Enabled:           true,
			RecomputeSchedule: "*/5 * * * *",
		},
	}
}

// Load reads configuration from path (optional) and applies environment
// overrides. An empty path loads defaults plus the environment. A .env
// file next to the working directory is honored if present.
func Load(path string) (Config, error) {
	_ = godotenv.Load()

	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config: %w", err)
		}
	}

	applyEnv(&cfg)

	if cfg.Supabase.URL == "" {
		return cfg, fmt.Errorf("SUPABASE_URL is required")
	}
	if cfg.Supabase.AnonKey == "" && cfg.Supabase.ServiceKey == "" {
		return cfg, fmt.Errorf("SUPABASE_ANON_KEY or SUPABASE_SERVICE_KEY is required")
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("FRONTHOUSE_ADDR"); v != "" {
		cfg.Server.Addr = v
	}
	if v := os.Getenv("FRONTHOUSE_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("FRONTHOUSE_RPS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.Server.RequestsPerSecond = n
		}
	}
	if v := os.Getenv("FRONTHOUSE_REALTIME"); v != "" {
		cfg.Realtime.Enabled = v != "false" && v != "0"
	}
	if v := os.Getenv("SUPABASE_URL"); v != "" {
		cfg.Supabase.URL = v
	}
	if v := os.Getenv("SUPABASE_ANON_KEY"); v != "" {
		cfg.Supabase.AnonKey = v
	}
	if v := os.Getenv("SUPABASE_SERVICE_KEY"); v != "" {
		cfg.Supabase.ServiceKey = v
	}
	if v := os.Getenv("SUPABASE_JWT_SECRET"); v != "" {
		cfg.Supabase.JWTSecret = v
	}
}
