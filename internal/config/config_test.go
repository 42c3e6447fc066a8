package config

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewFromEnvDefaults(t *testing.T) {
	cfg, err := NewFromEnv()
	require.NoError(t, err)

	assert.Equal(t, "https://cdn.commasubs.org", cfg.CDN.URL)
	assert.Equal(t, 10, cfg.CDN.CacheCapacity)
	assert.Equal(t, "127.0.0.1:8750", cfg.Bridge.Addr)
	assert.Equal(t, 2, cfg.Sites.PrefetchWorkers)
	assert.Equal(t, "INFO", cfg.System.LogLevel)
	assert.Equal(t, filepath.Join(".", "options.json"), cfg.System.OptionsPath())
}

func TestNewFromEnvOverrides(t *testing.T) {
	t.Setenv("SUB_CDN_URL", "http://localhost:9000")
	t.Setenv("MANIFEST_CACHE_SIZE", "25")
	t.Setenv("BRIDGE_ADDR", "127.0.0.1:0")
	t.Setenv("DATA_DIR", "/var/lib/overlay")
	t.Setenv("LOG_LEVEL", "DEBUG")

	cfg, err := NewFromEnv()
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:9000", cfg.CDN.URL)
	assert.Equal(t, 25, cfg.CDN.CacheCapacity)
	assert.Equal(t, "127.0.0.1:0", cfg.Bridge.Addr)
	assert.Equal(t, "/var/lib/overlay/options.json", cfg.System.OptionsPath())
	assert.Equal(t, "DEBUG", cfg.System.LogLevel)
}

func TestNewFromEnvIgnoresMalformedNumbers(t *testing.T) {
	t.Setenv("MANIFEST_CACHE_SIZE", "lots")

	cfg, err := NewFromEnv()
	require.NoError(t, err)
	assert.Equal(t, 10, cfg.CDN.CacheCapacity)
}

func TestValidateRejectsBadAddr(t *testing.T) {
	t.Setenv("BRIDGE_ADDR", "not-an-address")

	_, err := NewFromEnv()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "BRIDGE_ADDR")
}

func TestValidateRejectsZeroWorkers(t *testing.T) {
	t.Setenv("PREFETCH_WORKERS", "-1")

	_, err := NewFromEnv()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "PREFETCH_WORKERS")
}

func TestOptions(t *testing.T) {
	cfg, err := NewFromEnv(func(c *Config) {
		c.CDN.CacheCapacity = 3
	})
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.CDN.CacheCapacity)
}
