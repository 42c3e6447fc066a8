// Package config loads the daemon configuration from environment variables.
//
// Environment Variables:
// CDN Configuration:
// - SUB_CDN_URL: Base URL of the subtitle CDN (default: https://cdn.commasubs.org)
// - MANIFEST_CACHE_SIZE: Manifest LRU cache capacity (default: 10)
// - RECHECK_CRON: Cron expression (with seconds) for re-querying videos
//   without subtitles (default: every 10 minutes)
//
// Bridge Configuration:
// - BRIDGE_ADDR: Listen address of the local bridge API (default: 127.0.0.1:8750)
//
// Site Configuration:
// - BERRIZ_API_URL: Berriz service API base (default: https://svc-api.berriz.in)
// - PREFETCH_WORKERS: Label prefetch worker count (default: 2)
//
// System Configuration:
// - DATA_DIR: Directory for persisted state such as options.json (default: .)
// - LOG_LEVEL: DEBUG, INFO, WARN or ERROR (default: INFO)
// - LOG_FILE: Log file path; empty logs to stdout (default: empty)
package config

import (
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strconv"

	"github.com/commasubs/subtitle-overlay/internal/playback"
	"github.com/commasubs/subtitle-overlay/pkg/log"
)

type Config struct {
	CDN    CDNConfig    `json:"cdn"`
	Bridge BridgeConfig `json:"bridge"`
	Sites  SitesConfig  `json:"sites"`
	System SystemConfig `json:"system"`
}

// CDNConfig holds the subtitle CDN settings.
type CDNConfig struct {
	URL           string `json:"url"`
	CacheCapacity int    `json:"cache_capacity"`
	RecheckCron   string `json:"recheck_cron"`
}

// BridgeConfig holds the local bridge API settings.
type BridgeConfig struct {
	Addr string `json:"addr"`
}

// SitesConfig holds per-site integration settings.
type SitesConfig struct {
	BerrizAPIURL    string `json:"berriz_api_url"`
	PrefetchWorkers int    `json:"prefetch_workers"`
}

// SystemConfig holds the system configuration.
type SystemConfig struct {
	DataDir  string `json:"data_dir"`
	LogLevel string `json:"log_level"`
	LogFile  string `json:"log_file"`
}

// OptionsPath returns the location of the persisted user options.
func (c SystemConfig) OptionsPath() string {
	return filepath.Join(c.DataDir, "options.json")
}

// Option is a function type for configuring Config
type Option func(*Config)

// NewFromEnv creates a new Config instance with values from environment variables and options
func NewFromEnv(opts ...Option) (*Config, error) {
	config := &Config{
		CDN: CDNConfig{
			URL:           getEnvString("SUB_CDN_URL", "https://cdn.commasubs.org"),
			CacheCapacity: getEnvInt("MANIFEST_CACHE_SIZE", 10),
			RecheckCron:   getEnvString("RECHECK_CRON", "0 */10 * * * *"),
		},
		Bridge: BridgeConfig{
			Addr: getEnvString("BRIDGE_ADDR", "127.0.0.1:8750"),
		},
		Sites: SitesConfig{
			BerrizAPIURL:    getEnvString("BERRIZ_API_URL", playback.DefaultAPIBase),
			PrefetchWorkers: getEnvInt("PREFETCH_WORKERS", 2),
		},
		System: SystemConfig{
			DataDir:  getEnvString("DATA_DIR", "."),
			LogLevel: getEnvString("LOG_LEVEL", "INFO"),
			LogFile:  getEnvString("LOG_FILE", ""),
		},
	}

	// Apply custom options
	for _, opt := range opts {
		opt(config)
	}

	if err := config.validate(); err != nil {
		return nil, err
	}

	log.Debug("config: %+v", config)
	return config, nil
}

// validate checks if all required configuration is properly set
func (c *Config) validate() error {
	if c.CDN.URL == "" {
		return fmt.Errorf("SUB_CDN_URL is required")
	}
	if c.CDN.CacheCapacity <= 0 {
		return fmt.Errorf("MANIFEST_CACHE_SIZE must be positive")
	}
	if _, _, err := net.SplitHostPort(c.Bridge.Addr); err != nil {
		return fmt.Errorf("BRIDGE_ADDR %q is not a host:port address: %w", c.Bridge.Addr, err)
	}
	if c.Sites.PrefetchWorkers <= 0 {
		return fmt.Errorf("PREFETCH_WORKERS must be positive")
	}
	return nil
}

// getEnvString gets a string value from environment variables with default
func getEnvString(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt gets an integer value from environment variables with default
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}
