package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, "info", cfg.Logger.Level)
	assert.Equal(t, "console", cfg.Logger.Format)
	assert.Equal(t, "tabscript", cfg.Logger.ServiceName)
	assert.Equal(t, 16*time.Millisecond, cfg.Host.FrameInterval)
	assert.Equal(t, 30*time.Second, cfg.Host.RequestTimeout)
	assert.False(t, cfg.Host.AllowCrossOrigin)
	assert.True(t, cfg.Host.CacheEnabled)
	assert.Empty(t, cfg.Host.CSPDefaultSrc)
	assert.Equal(t, 2*time.Second, cfg.Run.Duration)
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tabscript.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadFile(t *testing.T) {
	path := writeConfig(t, `
logger:
  level: debug
  format: json
host:
  viewport_width: 320
  frame_interval: 40ms
  csp_default_src: ["'self'", "https://api.example.com"]
  allow_cross_origin: true
run:
  duration: 500ms
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Logger.Level)
	assert.Equal(t, "json", cfg.Logger.Format)
	assert.Equal(t, 320, cfg.Host.ViewportWidth)
	assert.Equal(t, 600, cfg.Host.ViewportHeight, "unset keys keep their defaults")
	assert.Equal(t, 40*time.Millisecond, cfg.Host.FrameInterval)
	assert.Equal(t, []string{"'self'", "https://api.example.com"}, cfg.Host.CSPDefaultSrc)
	assert.True(t, cfg.Host.AllowCrossOrigin)
	assert.Equal(t, 500*time.Millisecond, cfg.Run.Duration)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	path := writeConfig(t, "logger:\n  level: debug\n")
	t.Setenv("TABSCRIPT_LOGGER_LEVEL", "warn")
	t.Setenv("TABSCRIPT_HOST_USER_AGENT", "agent/1")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "warn", cfg.Logger.Level)
	assert.Equal(t, "agent/1", cfg.Host.UserAgent)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err, "an explicitly named file must exist")

	dir := t.TempDir()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })

	cfg, err := Load("")
	require.NoError(t, err, "the default file is optional")
	assert.Equal(t, "info", cfg.Logger.Level)
}

func TestLoadRejectsInvalid(t *testing.T) {
	path := writeConfig(t, "logger:\n  format: xml\n")
	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "logger.format")
}

func TestValidate(t *testing.T) {
	cases := map[string]func(*Config){
		"zero viewport":  func(c *Config) { c.Host.ViewportWidth = 0 },
		"zero frame":     func(c *Config) { c.Host.FrameInterval = 0 },
		"empty cache":    func(c *Config) { c.Host.CacheMaxEntries = 0 },
		"negative run":   func(c *Config) { c.Run.Duration = -time.Second },
		"negative fetch": func(c *Config) { c.Host.RequestTimeout = -time.Second },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := Default()
			mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}

	cfg := Default()
	cfg.Host.CacheEnabled = false
	cfg.Host.CacheMaxEntries = 0
	assert.NoError(t, cfg.Validate(), "entry count is irrelevant with the cache off")
}
