package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config is the persistent application configuration
type Config struct {
	// Remote article source
	GNews GNewsConfig `json:"gnews"`

	// UI Preferences
	UI UIConfig `json:"ui"`

	// REST backend the TUI syncs preferences with. Empty URL means local only.
	Backend BackendConfig `json:"backend"`

	// Breaking news ticker
	Breaking BreakingConfig `json:"breaking"`

	// newsd settings
	Server ServerConfig `json:"server"`
}

// GNewsConfig holds the article source settings
type GNewsConfig struct {
	APIKey            string  `json:"api_key,omitempty"`
	Endpoint          string  `json:"endpoint"`
	TimeoutSeconds    int     `json:"timeout_seconds"`
	RequestsPerSecond float64 `json:"requests_per_second"`
}

// UIConfig holds UI preferences
type UIConfig struct {
	Theme   string `json:"theme"`   // "light" or "dark"
	Density string `json:"density"` // "comfortable" or "compact"
}

// BackendConfig points the TUI at a newsd instance
type BackendConfig struct {
	URL   string `json:"url,omitempty"`
	Token string `json:"token,omitempty"`
}

// BreakingSource is one RSS feed for the ticker
type BreakingSource struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

// BreakingConfig controls the breaking news ticker
type BreakingConfig struct {
	Enabled         bool             `json:"enabled"`
	Sources         []BreakingSource `json:"sources"`
	IntervalMinutes int              `json:"interval_minutes"`
}

// ServerConfig holds newsd settings
type ServerConfig struct {
	Port            string `json:"port"`
	DatabasePath    string `json:"database_path"`
	MongoURI        string `json:"mongo_uri,omitempty"`
	MongoDatabase   string `json:"mongo_database,omitempty"`
	CacheTTLSeconds int    `json:"cache_ttl_seconds"`
	CacheSize       int    `json:"cache_size"`
	SessionTTLHours int    `json:"session_ttl_hours"`
	AllowedOrigin   string `json:"allowed_origin"`
}

// DefaultConfig returns sensible defaults
func DefaultConfig() *Config {
	return &Config{
		GNews: GNewsConfig{
			Endpoint:          "https://gnews.io/api/v4",
			TimeoutSeconds:    10,
			RequestsPerSecond: 1,
		},
		UI: UIConfig{
			Theme:   "light",
			Density: "comfortable",
		},
		Breaking: BreakingConfig{
			Enabled: true,
			Sources: []BreakingSource{
				{Name: "BBC", URL: "https://feeds.bbci.co.uk/news/rss.xml"},
				{Name: "NPR", URL: "https://feeds.npr.org/1001/rss.xml"},
				{Name: "Al Jazeera", URL: "https://www.aljazeera.com/xml/rss/all.xml"},
			},
			IntervalMinutes: 10,
		},
		Server: ServerConfig{
			Port:            "5000",
			DatabasePath:    filepath.Join(Dir(), "newsd.db"),
			MongoDatabase:   "newshub",
			CacheTTLSeconds: 300,
			CacheSize:       256,
			SessionTTLHours: 24 * 7,
			AllowedOrigin:   "*",
		},
	}
}

// Dir returns the NewsHub data directory
func Dir() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".newshub")
}

// ConfigPath returns the path to the config file
func ConfigPath() string {
	return filepath.Join(Dir(), "config.json")
}

// Load reads .env (if present) and the config file, or returns defaults.
// Environment variables always win over the file.
func Load() (*Config, error) {
	// A missing .env is the normal case.
	_ = godotenv.Load()
	return LoadFrom(ConfigPath())
}

// LoadFrom reads config from path. A missing file yields defaults; a corrupt
// one also yields defaults so a bad edit never locks the user out.
func LoadFrom(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
	case err != nil:
		return nil, err
	default:
		if jerr := json.Unmarshal(data, cfg); jerr != nil {
			cfg = DefaultConfig()
		}
	}

	cfg.AutoPopulateFromEnv()
	return cfg, nil
}

// Save writes config to disk
func (c *Config) Save() error {
	return c.SaveTo(ConfigPath())
}

// SaveTo writes config to path
func (c *Config) SaveTo(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0600) // holds the API key
}

// AutoPopulateFromEnv applies environment overrides
func (c *Config) AutoPopulateFromEnv() {
	if key := os.Getenv("GNEWS_API_KEY"); key != "" {
		c.GNews.APIKey = key
	}
	if url := os.Getenv("NEWSHUB_API_URL"); url != "" {
		c.Backend.URL = url
	}
	if tok := os.Getenv("NEWSHUB_TOKEN"); tok != "" {
		c.Backend.Token = tok
	}
	if port := os.Getenv("PORT"); port != "" {
		c.Server.Port = port
	}
	if path := os.Getenv("DATABASE_PATH"); path != "" {
		c.Server.DatabasePath = path
	}
	if uri := os.Getenv("MONGO_URI"); uri != "" {
		c.Server.MongoURI = uri
	}
	if ttl := os.Getenv("SESSION_TTL"); ttl != "" {
		if h, err := strconv.Atoi(ttl); err == nil && h > 0 {
			c.Server.SessionTTLHours = h
		}
	}
}

// FetchTimeout returns the article source timeout
func (c *Config) FetchTimeout() time.Duration {
	if c.GNews.TimeoutSeconds <= 0 {
		return 10 * time.Second
	}
	return time.Duration(c.GNews.TimeoutSeconds) * time.Second
}

// BreakingInterval returns how often the ticker refreshes
func (c *Config) BreakingInterval() time.Duration {
	if c.Breaking.IntervalMinutes <= 0 {
		return 10 * time.Minute
	}
	return time.Duration(c.Breaking.IntervalMinutes) * time.Minute
}

// CacheTTL returns how long the server caches article responses
func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.Server.CacheTTLSeconds) * time.Second
}

// SessionTTL returns how long a login session stays valid
func (c *Config) SessionTTL() time.Duration {
	if c.Server.SessionTTLHours <= 0 {
		return 24 * time.Hour
	}
	return time.Duration(c.Server.SessionTTLHours) * time.Hour
}

// DarkMode reports whether the configured theme is dark
func (c *Config) DarkMode() bool {
	return c.UI.Theme == "dark"
}
