package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadMissingFileGivesDefaults(t *testing.T) {
	t.Setenv("GNEWS_API_KEY", "")
	cfg, err := LoadFrom(filepath.Join(t.TempDir(), "nope.json"))
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}
	if cfg.GNews.Endpoint != "https://gnews.io/api/v4" {
		t.Errorf("unexpected endpoint %q", cfg.GNews.Endpoint)
	}
	if cfg.FetchTimeout() != 10*time.Second {
		t.Errorf("expected 10s timeout, got %v", cfg.FetchTimeout())
	}
	if len(cfg.Breaking.Sources) == 0 {
		t.Error("expected default breaking sources")
	}
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "config.json")
	cfg := DefaultConfig()
	cfg.UI.Theme = "dark"
	cfg.Server.Port = "8080"
	if err := cfg.SaveTo(path); err != nil {
		t.Fatalf("SaveTo: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm() != 0600 {
		t.Errorf("expected 0600, got %v", info.Mode().Perm())
	}

	t.Setenv("PORT", "")
	got, err := LoadFrom(path)
	if err != nil {
		t.Fatal(err)
	}
	if !got.DarkMode() || got.Server.Port != "8080" {
		t.Errorf("round trip lost values: %+v", got)
	}
}

func TestCorruptFileGivesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	os.WriteFile(path, []byte("{not json"), 0600)

	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("expected defaults, got error %v", err)
	}
	if cfg.Server.Port == "" {
		t.Error("expected default port")
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("GNEWS_API_KEY", "k123")
	t.Setenv("NEWSHUB_API_URL", "http://localhost:5000")
	t.Setenv("PORT", "9999")
	t.Setenv("SESSION_TTL", "2")

	cfg, err := LoadFrom(filepath.Join(t.TempDir(), "missing.json"))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.GNews.APIKey != "k123" {
		t.Errorf("api key: got %q", cfg.GNews.APIKey)
	}
	if cfg.Backend.URL != "http://localhost:5000" {
		t.Errorf("backend url: got %q", cfg.Backend.URL)
	}
	if cfg.Server.Port != "9999" {
		t.Errorf("port: got %q", cfg.Server.Port)
	}
	if cfg.SessionTTL() != 2*time.Hour {
		t.Errorf("session ttl: got %v", cfg.SessionTTL())
	}
}

func TestDurationFallbacks(t *testing.T) {
	cfg := &Config{}
	if cfg.BreakingInterval() != 10*time.Minute {
		t.Errorf("interval: %v", cfg.BreakingInterval())
	}
	if cfg.SessionTTL() != 24*time.Hour {
		t.Errorf("session ttl: %v", cfg.SessionTTL())
	}
	if cfg.CacheTTL() != 0 {
		t.Errorf("cache ttl: %v", cfg.CacheTTL())
	}
}
