package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestLoadDefaults(t *testing.T) {
	// Change to temp dir so no config.yaml is found
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "https://www.poewiki.net/w/api.php", cfg.Wiki.APIURL)
	assert.Equal(t, "poewiki-cli/1.0", cfg.Wiki.UserAgent)
	assert.Equal(t, 15, cfg.Wiki.TimeoutSecs)
	assert.InDelta(t, 5.0, cfg.Wiki.RateLimit, 0.001)
	assert.Equal(t, 50, cfg.Wiki.MaxLimit)
	assert.Equal(t, "cargo_mapping.yaml", cfg.Wiki.MappingPath)
	assert.Equal(t, 30, cfg.Telegram.UpdateTimeoutSecs)
	assert.Equal(t, 10, cfg.Telegram.InlineLimit)
	assert.Equal(t, 8080, cfg.Health.Port)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoadFromYAML(t *testing.T) {
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })

	yaml := `
wiki:
  api_url: https://wiki.example.test/api.php
  max_limit: 25
log:
  level: debug
  format: console
health:
  port: 9090
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0644))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "https://wiki.example.test/api.php", cfg.Wiki.APIURL)
	assert.Equal(t, 25, cfg.Wiki.MaxLimit)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format)
	assert.Equal(t, 9090, cfg.Health.Port)
	// Defaults still apply for unset values
	assert.Equal(t, 15, cfg.Wiki.TimeoutSecs)
	assert.Equal(t, "cargo_mapping.yaml", cfg.Wiki.MappingPath)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })

	yaml := `
log:
  level: debug
wiki:
  max_limit: 25
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0644))

	t.Setenv("POEWIKI_LOG_LEVEL", "warn")
	t.Setenv("POEWIKI_WIKI_MAX_LIMIT", "5")

	cfg, err := Load()
	require.NoError(t, err)

	// Env overrides file
	assert.Equal(t, "warn", cfg.Log.Level)
	assert.Equal(t, 5, cfg.Wiki.MaxLimit)
}

func TestLoadEnvOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })

	t.Setenv("POEWIKI_TELEGRAM_TOKEN", "123:abc")
	t.Setenv("POEWIKI_HEALTH_PORT", "3000")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "123:abc", cfg.Telegram.Token)
	assert.Equal(t, 3000, cfg.Health.Port)
}

func TestInitLoggerConsole(t *testing.T) {
	err := InitLogger(LogConfig{Level: "debug", Format: "console"})
	require.NoError(t, err)
	assert.NotNil(t, zap.L())
}

func TestInitLoggerJSON(t *testing.T) {
	err := InitLogger(LogConfig{Level: "info", Format: "json"})
	require.NoError(t, err)
	assert.NotNil(t, zap.L())
}

func TestInitLoggerInvalidLevel(t *testing.T) {
	err := InitLogger(LogConfig{Level: "invalid", Format: "json"})
	assert.Error(t, err)
}
