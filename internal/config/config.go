// Package config loads application configuration from environment variables.
package config

import (
	"fmt"
	"net/url"
	"os"
	"time"
	_ "time/tzdata" // zone database for scratch images
)

// Config holds the application configuration loaded from environment variables.
type Config struct {
	InventoryAPIURL   string
	InventoryAPIToken string
	PollInterval      time.Duration
	ListenAddr        string
	DBPath            string
	Location          *time.Location
}

// HasInventoryAPI returns true when an inventory API URL is configured. Used
// by the composition root to decide whether to create a real inventory client
// or run with sync disabled.
func (c *Config) HasInventoryAPI() bool {
	return c.InventoryAPIURL != ""
}

// Load reads configuration from environment variables and returns a validated Config.
// The inventory API (STOCKPANEL_INVENTORY_API_URL, STOCKPANEL_INVENTORY_API_TOKEN) is
// optional; if absent, the app starts but alerts are computed from the last stored snapshot.
// Optional variables with defaults: STOCKPANEL_POLL_INTERVAL (5m),
// STOCKPANEL_LISTEN_ADDR (127.0.0.1:8080), STOCKPANEL_DB_PATH (stockpanel.db),
// STOCKPANEL_LOCATION (Local).
func Load() (*Config, error) {
	apiURL := os.Getenv("STOCKPANEL_INVENTORY_API_URL")
	if apiURL != "" {
		u, err := url.Parse(apiURL)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return nil, fmt.Errorf("STOCKPANEL_INVENTORY_API_URL must be an absolute URL, got %q", apiURL)
		}
	}
	token := os.Getenv("STOCKPANEL_INVENTORY_API_TOKEN")

	pollInterval := 5 * time.Minute
	if v, ok := os.LookupEnv("STOCKPANEL_POLL_INTERVAL"); ok {
		parsed, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("STOCKPANEL_POLL_INTERVAL has invalid duration %q: %w", v, err)
		}
		if parsed <= 0 {
			return nil, fmt.Errorf("STOCKPANEL_POLL_INTERVAL must be positive, got %q", v)
		}
		pollInterval = parsed
	}

	listenAddr := "127.0.0.1:8080"
	if v, ok := os.LookupEnv("STOCKPANEL_LISTEN_ADDR"); ok {
		listenAddr = v
	}

	dbPath := "stockpanel.db"
	if v, ok := os.LookupEnv("STOCKPANEL_DB_PATH"); ok {
		dbPath = v
	}

	location := time.Local
	if v, ok := os.LookupEnv("STOCKPANEL_LOCATION"); ok && v != "" {
		loc, err := time.LoadLocation(v)
		if err != nil {
			return nil, fmt.Errorf("STOCKPANEL_LOCATION has invalid time zone %q: %w", v, err)
		}
		location = loc
	}

	return &Config{
		InventoryAPIURL:   apiURL,
		InventoryAPIToken: token,
		PollInterval:      pollInterval,
		ListenAddr:        listenAddr,
		DBPath:            dbPath,
		Location:          location,
	}, nil
}
