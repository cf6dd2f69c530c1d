package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/natefinch/lumberjack.v2"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "auto", cfg.Backend)
	assert.Equal(t, 0, cfg.Device)
	assert.True(t, cfg.Sudo)
	assert.True(t, cfg.Reset)
	assert.True(t, cfg.Duplicates)
	assert.False(t, cfg.Passive)
	assert.Equal(t, 10*time.Second, cfg.Timeout)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Empty(t, cfg.Cache.File)
	assert.Len(t, cfg.Options(), 5)
	assert.Equal(t, os.Stderr, cfg.Log.Writer())
}

func TestLoadValidConfig(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "eddyscan.yml")

	configContent := `
backend: dummy
device: 1
sudo: false
passive: true
timeout: 30s
cache:
  file: /tmp/sightings.json
log:
  level: debug
  file:
    path: /tmp/eddyscan.log
    max_size_mb: 5
    compress: true
`
	require.NoError(t, os.WriteFile(configPath, []byte(configContent), 0644))

	cfg, err := Load(configPath)
	require.NoError(t, err)

	assert.Equal(t, "dummy", cfg.Backend)
	assert.Equal(t, 1, cfg.Device)
	assert.False(t, cfg.Sudo)
	assert.True(t, cfg.Reset)
	assert.True(t, cfg.Passive)
	assert.Equal(t, 30*time.Second, cfg.Timeout)
	assert.Equal(t, "/tmp/sightings.json", cfg.Cache.File)
	assert.Equal(t, "debug", cfg.Log.Level)

	w, ok := cfg.Log.Writer().(*lumberjack.Logger)
	require.True(t, ok)
	assert.Equal(t, "/tmp/eddyscan.log", w.Filename)
	assert.Equal(t, 5, w.MaxSize)
	assert.Equal(t, 3, w.MaxBackups)
	assert.True(t, w.Compress)
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("EDDYSCAN_BACKEND", "native")
	t.Setenv("EDDYSCAN_LOG_LEVEL", "warn")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "native", cfg.Backend)
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestLoadInvalid(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yml"))
	assert.Error(t, err)

	configPath := filepath.Join(t.TempDir(), "bad.yml")
	require.NoError(t, os.WriteFile(configPath, []byte("backend: bluetoothctl\n"), 0644))
	_, err = Load(configPath)
	assert.Error(t, err)

	require.NoError(t, os.WriteFile(configPath, []byte("device: -2\n"), 0644))
	_, err = Load(configPath)
	assert.Error(t, err)
}
