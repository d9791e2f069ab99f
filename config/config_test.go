package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

var envKeys = []string{
	"PORT", "GIN_MODE", "DATA_DIR", "AUDIT_CONFIG", "FETCH_TIMEOUT", "FETCH_MAX_REDIRECTS",
	"OPENAI_API_KEY", "OPENAI_BASE_URL", "OPENAI_MODEL", "LOG_LEVEL", "LOG_FORMAT",
	"RATE_LIMIT_RPS", "RATE_LIMIT_BURST", "DEV_MODE",
}

// clearEnv blanks every variable Load reads; blank values are ignored.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range envKeys {
		t.Setenv(key, "")
	}
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Server.Port != "8082" {
		t.Errorf("port = %q, want 8082", cfg.Server.Port)
	}
	if cfg.Fetch.Timeout.Duration != 30*time.Second {
		t.Errorf("timeout = %v, want 30s", cfg.Fetch.Timeout)
	}
	if cfg.Fetch.MaxRedirects != 5 {
		t.Errorf("max redirects = %d, want 5", cfg.Fetch.MaxRedirects)
	}
	if cfg.Server.RateLimit.RequestsPerSecond != 2 || cfg.Server.RateLimit.Burst != 5 {
		t.Errorf("rate limit = %+v, want 2 rps burst 5", cfg.Server.RateLimit)
	}
	if cfg.Insight.Enabled {
		t.Error("insight must be disabled without an API key")
	}
	if cfg.Insight.Model != "gpt-4o-mini" || cfg.Insight.SampleChars != 1000 {
		t.Errorf("insight = %+v", cfg.Insight)
	}
}

func TestLoadYAML(t *testing.T) {
	clearEnv(t)
	path := writeFile(t, "audit.yaml", `
server:
  port: ":9090"
  data_dir: /var/lib/seoaudit
  rate_limit:
    requests_per_second: 0.5
    burst: 2
fetch:
  timeout: 10s
  max_redirects: 3
insight:
  enabled: true
  api_key: sk-test
  base_url: http://localhost:11434/v1/
  timeout: 45
logging:
  level: DEBUG
  format: json
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Server.Port != "9090" {
		t.Errorf("port = %q, want 9090", cfg.Server.Port)
	}
	if cfg.Server.DataDir != "/var/lib/seoaudit" {
		t.Errorf("data dir = %q", cfg.Server.DataDir)
	}
	if cfg.Server.RateLimit.RequestsPerSecond != 0.5 || cfg.Server.RateLimit.Burst != 2 {
		t.Errorf("rate limit = %+v", cfg.Server.RateLimit)
	}
	if cfg.Fetch.Timeout.Duration != 10*time.Second || cfg.Fetch.MaxRedirects != 3 {
		t.Errorf("fetch = %+v", cfg.Fetch)
	}
	if cfg.Fetch.UserAgent == "" {
		t.Error("unset user agent should keep its default")
	}
	if cfg.Insight.Timeout.Duration != 45*time.Second {
		t.Errorf("insight timeout = %v, want 45s", cfg.Insight.Timeout)
	}
	if cfg.Insight.BaseURL != "http://localhost:11434/v1" {
		t.Errorf("base url = %q", cfg.Insight.BaseURL)
	}
	if cfg.Logging.Level != "debug" || cfg.Logging.Format != "json" {
		t.Errorf("logging = %+v", cfg.Logging)
	}
}

func TestLoadYAMLFromEnvPath(t *testing.T) {
	clearEnv(t)
	path := writeFile(t, "audit.yaml", "server:\n  port: \"7000\"\n")
	t.Setenv("AUDIT_CONFIG", path)

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Port != "7000" {
		t.Errorf("port = %q, want 7000", cfg.Server.Port)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	clearEnv(t)
	path := writeFile(t, "audit.yaml", "server:\n  port: \"7000\"\nfetch:\n  timeout: 10s\n")

	t.Setenv("PORT", "8181")
	t.Setenv("FETCH_TIMEOUT", "5")
	t.Setenv("FETCH_MAX_REDIRECTS", "2")
	t.Setenv("OPENAI_API_KEY", "sk-env")
	t.Setenv("OPENAI_MODEL", "gpt-4o")
	t.Setenv("RATE_LIMIT_RPS", "10")
	t.Setenv("RATE_LIMIT_BURST", "20")
	t.Setenv("DEV_MODE", "true")
	t.Setenv("GIN_MODE", "debug")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Server.Port != "8181" {
		t.Errorf("port = %q, env should win over YAML", cfg.Server.Port)
	}
	if cfg.Fetch.Timeout.Duration != 5*time.Second {
		t.Errorf("timeout = %v, want 5s", cfg.Fetch.Timeout)
	}
	if cfg.Fetch.MaxRedirects != 2 {
		t.Errorf("max redirects = %d, want 2", cfg.Fetch.MaxRedirects)
	}
	if !cfg.Insight.Enabled || cfg.Insight.APIKey != "sk-env" || cfg.Insight.Model != "gpt-4o" {
		t.Errorf("insight = %+v", cfg.Insight)
	}
	if cfg.Server.RateLimit.RequestsPerSecond != 10 || cfg.Server.RateLimit.Burst != 20 {
		t.Errorf("rate limit = %+v", cfg.Server.RateLimit)
	}
	if !cfg.Server.DevMode || cfg.Server.GinMode != "debug" {
		t.Errorf("server = %+v", cfg.Server)
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		env     map[string]string
		wantErr string
	}{
		{name: "unknown field", yaml: "fetch:\n  retries: 3\n", wantErr: "field retries not found"},
		{name: "bad duration", yaml: "fetch:\n  timeout: soon\n", wantErr: "invalid duration"},
		{name: "zero timeout", yaml: "fetch:\n  timeout: 0s\n", wantErr: "fetch.timeout"},
		{name: "negative redirects", yaml: "fetch:\n  max_redirects: -1\n", wantErr: "fetch.max_redirects"},
		{name: "zero redirects", yaml: "fetch:\n  max_redirects: 0\n", wantErr: "fetch.max_redirects"},
		{name: "blank user agent", yaml: "fetch:\n  user_agent: \"  \"\n", wantErr: "fetch.user_agent"},
		{name: "zero body cap", yaml: "fetch:\n  max_body_bytes: 0\n", wantErr: "fetch.max_body_bytes"},
		{name: "insight without key", yaml: "insight:\n  enabled: true\n", wantErr: "insight.api_key"},
		{name: "bad log level", yaml: "logging:\n  level: verbose\n", wantErr: "logging.level"},
		{name: "bad env redirects", env: map[string]string{"FETCH_MAX_REDIRECTS": "many"}, wantErr: "FETCH_MAX_REDIRECTS"},
		{name: "bad env dev mode", env: map[string]string{"DEV_MODE": "maybe"}, wantErr: "DEV_MODE"},
		{name: "bad gin mode", env: map[string]string{"GIN_MODE": "prod"}, wantErr: "gin_mode"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			path := writeFile(t, "audit.yaml", tt.yaml)

			_, err := Load(path)
			if err == nil {
				t.Fatalf("expected error containing %q", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %v, want it to contain %q", err, tt.wantErr)
			}
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	clearEnv(t)
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("expected error for missing config file")
	}
}

func TestLoadEnv(t *testing.T) {
	const key = "SEOAUDIT_CONFIG_TEST_VALUE"
	t.Cleanup(func() { os.Unsetenv(key) })

	dir := t.TempDir()
	first := filepath.Join(dir, ".env.development")
	second := writeFile(t, ".env", key+"=from-dotenv\n")

	LoadEnv(first, second)

	if got := os.Getenv(key); got != "from-dotenv" {
		t.Errorf("%s = %q, want from-dotenv", key, got)
	}
}

func TestParseDuration(t *testing.T) {
	tests := []struct {
		in   string
		want time.Duration
	}{
		{"", 0},
		{"30", 30 * time.Second},
		{"1.5", 1500 * time.Millisecond},
		{"250ms", 250 * time.Millisecond},
		{"2m", 2 * time.Minute},
	}

	for _, tt := range tests {
		got, err := parseDuration(tt.in)
		if err != nil {
			t.Errorf("parseDuration(%q): %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("parseDuration(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
