// Package config loads runtime settings from env files, an optional YAML file
// and environment variables, in that order of precedence from lowest to highest.
package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config is the full runtime configuration of the server and CLI.
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Fetch   FetchConfig   `yaml:"fetch"`
	Insight InsightConfig `yaml:"insight"`
	Logging LoggingConfig `yaml:"logging"`
}

type ServerConfig struct {
	Port      string          `yaml:"port"`
	GinMode   string          `yaml:"gin_mode"`
	DataDir   string          `yaml:"data_dir"`
	DevMode   bool            `yaml:"dev_mode"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
}

// RateLimitConfig is a per-client token bucket.
type RateLimitConfig struct {
	RequestsPerSecond float64 `yaml:"requests_per_second"`
	Burst             int     `yaml:"burst"`
}

type FetchConfig struct {
	Timeout      Duration `yaml:"timeout"`
	MaxRedirects int      `yaml:"max_redirects"`
	UserAgent    string   `yaml:"user_agent"`
	MaxBodyBytes int64    `yaml:"max_body_bytes"`
}

// InsightConfig configures the optional OpenAI compatible insight provider.
type InsightConfig struct {
	Enabled     bool     `yaml:"enabled"`
	APIKey      string   `yaml:"api_key"`
	BaseURL     string   `yaml:"base_url"`
	Model       string   `yaml:"model"`
	Timeout     Duration `yaml:"timeout"`
	SampleChars int      `yaml:"sample_chars"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

const defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36"

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Port:    "8082",
			GinMode: "release",
			DataDir: "data",
			RateLimit: RateLimitConfig{
				RequestsPerSecond: 2,
				Burst:             5,
			},
		},
		Fetch: FetchConfig{
			Timeout:      DurationOf(30 * time.Second),
			MaxRedirects: 5,
			UserAgent:    defaultUserAgent,
			MaxBodyBytes: 10 * 1024 * 1024,
		},
		Insight: InsightConfig{
			Model:       "gpt-4o-mini",
			Timeout:     DurationOf(20 * time.Second),
			SampleChars: 1000,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// LoadEnv loads the first env file that exists. Variables already present in
// the environment are never overwritten.
func LoadEnv(files ...string) {
	if len(files) == 0 {
		files = []string{".env.development", ".env"}
	}
	for _, file := range files {
		if err := godotenv.Load(file); err == nil {
			slog.Debug("loaded env file", "file", file)
			return
		}
	}
	slog.Debug("no .env file found, using environment variables")
}

// Load builds the configuration. path names an optional YAML file; when empty
// the AUDIT_CONFIG variable is consulted.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		path = os.Getenv("AUDIT_CONFIG")
	}
	if path != "" {
		fh, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open config: %w", err)
		}
		defer fh.Close()

		if err := decodeYAML(fh, &cfg); err != nil {
			return nil, err
		}
	}

	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	cfg.normalise()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func decodeYAML(r io.Reader, cfg *Config) error {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("decode config: %w", err)
	}
	return nil
}

type lookupFunc func(key string) (string, bool)

func (c *Config) applyEnv(lookup lookupFunc) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && strings.TrimSpace(v) != "" {
			*dst = strings.TrimSpace(v)
		}
	}

	str("PORT", &c.Server.Port)
	str("GIN_MODE", &c.Server.GinMode)
	str("DATA_DIR", &c.Server.DataDir)
	str("OPENAI_BASE_URL", &c.Insight.BaseURL)
	str("OPENAI_MODEL", &c.Insight.Model)
	str("LOG_LEVEL", &c.Logging.Level)
	str("LOG_FORMAT", &c.Logging.Format)

	if v, ok := lookup("OPENAI_API_KEY"); ok && strings.TrimSpace(v) != "" {
		c.Insight.APIKey = strings.TrimSpace(v)
		c.Insight.Enabled = true
	}

	if v, ok := lookup("DEV_MODE"); ok && v != "" {
		dev, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid DEV_MODE %q: %w", v, err)
		}
		c.Server.DevMode = dev
	}
	if v, ok := lookup("FETCH_TIMEOUT"); ok && v != "" {
		d, err := parseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid FETCH_TIMEOUT: %w", err)
		}
		c.Fetch.Timeout = DurationOf(d)
	}
	if v, ok := lookup("FETCH_MAX_REDIRECTS"); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid FETCH_MAX_REDIRECTS %q: %w", v, err)
		}
		c.Fetch.MaxRedirects = n
	}
	if v, ok := lookup("RATE_LIMIT_RPS"); ok && v != "" {
		rps, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("invalid RATE_LIMIT_RPS %q: %w", v, err)
		}
		c.Server.RateLimit.RequestsPerSecond = rps
	}
	if v, ok := lookup("RATE_LIMIT_BURST"); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid RATE_LIMIT_BURST %q: %w", v, err)
		}
		c.Server.RateLimit.Burst = n
	}

	return nil
}

func (c *Config) normalise() {
	c.Server.Port = strings.TrimPrefix(strings.TrimSpace(c.Server.Port), ":")
	c.Fetch.UserAgent = strings.TrimSpace(c.Fetch.UserAgent)
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	c.Insight.BaseURL = strings.TrimRight(strings.TrimSpace(c.Insight.BaseURL), "/")
}

// Validate reports the first invalid setting.
func (c Config) Validate() error {
	if c.Server.Port == "" {
		return errors.New("server.port must be set")
	}
	if _, err := strconv.Atoi(c.Server.Port); err != nil {
		return fmt.Errorf("server.port must be numeric (got %q)", c.Server.Port)
	}
	switch c.Server.GinMode {
	case "debug", "release", "test":
	default:
		return fmt.Errorf("server.gin_mode must be debug, release or test (got %q)", c.Server.GinMode)
	}
	if c.Server.RateLimit.RequestsPerSecond <= 0 {
		return fmt.Errorf("server.rate_limit.requests_per_second must be > 0 (got %v)", c.Server.RateLimit.RequestsPerSecond)
	}
	if c.Server.RateLimit.Burst <= 0 {
		return fmt.Errorf("server.rate_limit.burst must be > 0 (got %d)", c.Server.RateLimit.Burst)
	}
	if c.Fetch.Timeout.Duration <= 0 {
		return fmt.Errorf("fetch.timeout must be > 0 (got %s)", c.Fetch.Timeout)
	}
	if c.Fetch.MaxRedirects <= 0 {
		return fmt.Errorf("fetch.max_redirects must be > 0 (got %d)", c.Fetch.MaxRedirects)
	}
	if c.Fetch.UserAgent == "" {
		return errors.New("fetch.user_agent must be set")
	}
	if c.Fetch.MaxBodyBytes <= 0 {
		return fmt.Errorf("fetch.max_body_bytes must be > 0 (got %d)", c.Fetch.MaxBodyBytes)
	}
	if c.Insight.Enabled && strings.TrimSpace(c.Insight.APIKey) == "" {
		return errors.New("insight.api_key must be set when insight.enabled is true")
	}
	if c.Insight.SampleChars <= 0 {
		return fmt.Errorf("insight.sample_chars must be > 0 (got %d)", c.Insight.SampleChars)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be debug, info, warn or error (got %q)", c.Logging.Level)
	}
	switch c.Logging.Format {
	case "text", "json":
	default:
		return fmt.Errorf("logging.format must be text or json (got %q)", c.Logging.Format)
	}
	return nil
}
