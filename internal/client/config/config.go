package config

import (
	"os"
	"time"
)

// Config holds runtime settings for the Taskly client.
type Config struct {
	ServerBaseURL       string
	OnlineCheckInterval time.Duration
	DatabasePath        string
	// RequestTimeout bounds a single API call; zero means no timeout.
	RequestTimeout time.Duration
	LogLevel       string
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerBaseURL = "http://127.0.0.1:8080"
	c.OnlineCheckInterval = 3 * time.Second
	c.DatabasePath = "taskly.db"
	c.RequestTimeout = 0
	c.LogLevel = "warn"
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// JSON (if present) and command-line flags (if present). Invalid input panics.
func LoadConfig() *Config {
	return load(os.Args[1:])
}

func load(args []string) *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg, args)
	parseFlags(cfg, args)
	return cfg
}
