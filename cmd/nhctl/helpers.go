package main

import (
	"log"
	"os"
	"path/filepath"

	"github.com/abelbrown/newshub/internal/config"
	"github.com/abelbrown/newshub/internal/store"
)

// dataDir returns ~/.newshub/, creating it if needed.
func dataDir() string {
	dir := config.Dir()
	if err := os.MkdirAll(dir, 0755); err != nil {
		log.Fatalf("failed to create data directory: %v", err)
	}
	return dir
}

// dbPath returns the path to the TUI's newshub.db.
func dbPath() string {
	return filepath.Join(dataDir(), "newshub.db")
}

// serverDBPath returns the newsd database, honoring DATABASE_PATH and the
// config file.
func serverDBPath() string {
	cfg := loadConfig()
	if cfg.Server.DatabasePath != "" {
		return cfg.Server.DatabasePath
	}
	return filepath.Join(dataDir(), "newsd.db")
}

// eventLogPath returns the path to newshub.events.jsonl.
func eventLogPath() string {
	return filepath.Join(dataDir(), "newshub.events.jsonl")
}

// openDB opens the store at path or fatals.
func openDB(path string) *store.Store {
	st, err := store.Open(path)
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	return st
}

// loadConfig reads the config or fatals.
func loadConfig() *config.Config {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	return cfg
}

// truncate shortens a string to max runes, appending "..." if truncated.
func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max-3]) + "..."
}
