package store

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestParseConfigDefaults(t *testing.T) {
	cfg, err := ParseConfig([]byte("{}"))
	if err != nil {
		t.Fatalf("Expected defaults to validate, got %v", err)
	}

	if cfg.Feed.Provider != "YAHOO" {
		t.Errorf("Expected feed provider YAHOO, got %s", cfg.Feed.Provider)
	}
	if cfg.Feed.FetchTimeout != 30*time.Second {
		t.Errorf("Expected fetch timeout 30s, got %v", cfg.Feed.FetchTimeout)
	}
	if cfg.Cache.Backend != "SQLITE" {
		t.Errorf("Expected cache backend SQLITE, got %s", cfg.Cache.Backend)
	}
	if cfg.LLM.Provider != "NOOP" {
		t.Errorf("Expected llm provider NOOP, got %s", cfg.LLM.Provider)
	}
	if !cfg.Report.Enabled {
		t.Error("Expected report generation to be enabled by default")
	}
	loc, err := cfg.Location()
	if err != nil || loc.String() != "Asia/Seoul" {
		t.Errorf("Expected Asia/Seoul location, got %v (%v)", loc, err)
	}
}

func TestParseConfigOverrides(t *testing.T) {
	raw := `
timezone: UTC
feed:
  provider: mock
  fetch_timeout: 5s
cache:
  backend: memory
llm:
  provider: claude
  model: claude-sonnet-4-20250514
report:
  enabled: false
watch:
  symbols: [" 005930 ", "AAPL"]
`
	cfg, err := ParseConfig([]byte(raw))
	if err != nil {
		t.Fatalf("Expected config to parse, got %v", err)
	}
	if cfg.Feed.Provider != "MOCK" {
		t.Errorf("Expected provider to be upper-cased, got %s", cfg.Feed.Provider)
	}
	if cfg.Feed.FetchTimeout != 5*time.Second {
		t.Errorf("Expected fetch timeout 5s, got %v", cfg.Feed.FetchTimeout)
	}
	if cfg.Cache.Backend != "MEMORY" {
		t.Errorf("Expected MEMORY backend, got %s", cfg.Cache.Backend)
	}
	if cfg.Report.Enabled {
		t.Error("Expected report generation to be disabled")
	}
	if cfg.Watch.Symbols[0] != "005930" {
		t.Errorf("Expected trimmed symbol, got %q", cfg.Watch.Symbols[0])
	}
	// Untouched sections keep their defaults.
	if cfg.Feed.MaxRetries != 3 {
		t.Errorf("Expected default max retries 3, got %d", cfg.Feed.MaxRetries)
	}
}

func TestParseConfigValidation(t *testing.T) {
	cases := map[string]string{
		"unknown provider": "feed:\n  provider: BLOOMBERG\n",
		"missing model":    "llm:\n  provider: OPENAI\n",
		"bad timezone":     "timezone: Mars/Olympus\n",
		"bad backend":      "cache:\n  backend: POSTGRES\n",
	}
	for name, raw := range cases {
		if _, err := ParseConfig([]byte(raw)); err == nil {
			t.Errorf("%s: expected validation error", name)
		} else if !strings.Contains(err.Error(), "config validation failed") {
			t.Errorf("%s: expected wrapped validation error, got %v", name, err)
		}
	}
}

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("cache:\n  backend: BADGER\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("Expected config to load, got %v", err)
	}
	if cfg.Cache.Backend != "BADGER" {
		t.Errorf("Expected BADGER backend, got %s", cfg.Cache.Backend)
	}

	if _, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("Expected error for missing file")
	}
}
