// Package config loads server settings from .env, an optional YAML file and
// the environment, in increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Port         string `yaml:"port"`
	DatabasePath string `yaml:"database_path"`
	SeedFile     string `yaml:"seed_file"`
	SiteURL      string `yaml:"site_url"`

	GeminiAPIKey string `yaml:"gemini_api_key"`
	GeminiModel  string `yaml:"gemini_model"`
	// AgentStateURL points at an external agent's websocket state feed. When
	// empty the in-process concierge store is used.
	AgentStateURL string `yaml:"agent_state_url"`

	LogLevel       string `yaml:"log_level"`
	LogDevelopment bool   `yaml:"log_development"`

	ContactRatePerMinute int `yaml:"contact_rate_per_minute"`
}

func Default() Config {
	return Config{
		Port:                 "8080",
		DatabasePath:         "data/gtm.db",
		SiteURL:              "https://gtm.quest",
		GeminiModel:          "gemini-2.5-flash-lite",
		LogLevel:             "info",
		ContactRatePerMinute: 5,
	}
}

// Load reads .env (if present), then the YAML file named by GTM_CONFIG
// (default config.yaml, skipped when missing), then environment overrides.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	cfg := Default()
	path := os.Getenv("GTM_CONFIG")
	if path == "" {
		path = "config.yaml"
	}
	if err := cfg.mergeFile(path); err != nil {
		return Config{}, err
	}
	if err := cfg.mergeEnv(); err != nil {
		return Config{}, err
	}
	cfg.SiteURL = strings.TrimRight(cfg.SiteURL, "/")
	return cfg, cfg.Validate()
}

func (c *Config) mergeFile(path string) error {
	raw, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(raw, c); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

func (c *Config) mergeEnv() error {
	str := map[string]*string{
		"PORT":            &c.Port,
		"DATABASE_PATH":   &c.DatabasePath,
		"SEED_FILE":       &c.SeedFile,
		"SITE_URL":        &c.SiteURL,
		"GEMINI_API_KEY":  &c.GeminiAPIKey,
		"GEMINI_MODEL":    &c.GeminiModel,
		"AGENT_STATE_URL": &c.AgentStateURL,
		"LOG_LEVEL":       &c.LogLevel,
	}
	for key, dst := range str {
		if v, ok := os.LookupEnv(key); ok && v != "" {
			*dst = v
		}
	}
	if v := os.Getenv("LOG_DEVELOPMENT"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("LOG_DEVELOPMENT: %w", err)
		}
		c.LogDevelopment = b
	}
	if v := os.Getenv("CONTACT_RATE_PER_MINUTE"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("CONTACT_RATE_PER_MINUTE: %w", err)
		}
		c.ContactRatePerMinute = n
	}
	return nil
}

func (c Config) Validate() error {
	if p, err := strconv.Atoi(c.Port); err != nil || p <= 0 || p > 65535 {
		return fmt.Errorf("invalid port %q", c.Port)
	}
	if c.ContactRatePerMinute <= 0 {
		return fmt.Errorf("contact_rate_per_minute must be positive, got %d", c.ContactRatePerMinute)
	}
	if c.DatabasePath == "" {
		return errors.New("database_path is required")
	}
	return nil
}

// Addr is the listen address for the HTTP server.
func (c Config) Addr() string { return ":" + c.Port }

// ConciergeEnabled reports whether the in-process Gemini concierge can run.
func (c Config) ConciergeEnabled() bool { return c.GeminiAPIKey != "" }
