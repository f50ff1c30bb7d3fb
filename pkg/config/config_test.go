package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, "127.0.0.1", cfg.EventServer.Host)
	assert.Equal(t, 0, cfg.EventServer.Port)
	assert.Equal(t, 20*time.Second, cfg.Verify.Timeout())
	assert.Equal(t, 500*time.Millisecond, cfg.Verify.PollInterval())
	assert.Equal(t, "down", cfg.Verify.ScrollDirection)
	assert.Equal(t, "mobitest-report", cfg.Report.OutputDir)
	assert.NoError(t, cfg.validate())
}

func TestLoad_OverridesDefaults(t *testing.T) {
	path := writeConfig(t, t.TempDir(), "config.yaml", `
eventServer:
  host: 0.0.0.0
  port: 4723
verify:
  timeoutSec: 2.5
  scrollCount: 3
report:
  allure: true
env:
  API_KEY: secret
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0", cfg.EventServer.Host)
	assert.Equal(t, 4723, cfg.EventServer.Port)
	assert.Equal(t, 2500*time.Millisecond, cfg.Verify.Timeout())
	assert.Equal(t, 3, cfg.Verify.ScrollCount)
	assert.True(t, cfg.Report.Allure)
	assert.Equal(t, "secret", cfg.Env["API_KEY"])

	// Unset fields keep their defaults.
	assert.Equal(t, 500*time.Millisecond, cfg.Verify.PollInterval())
	assert.Equal(t, "down", cfg.Verify.ScrollDirection)
	assert.Equal(t, "mobitest-report", cfg.Report.OutputDir)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"negative timeout", "verify:\n  timeoutSec: -1\n"},
		{"zero poll interval", "verify:\n  pollIntervalMs: 0\n"},
		{"capacity out of range", "verify:\n  scrollCapacity: 1.5\n"},
		{"bad scroll direction", "verify:\n  scrollDirection: sideways\n"},
		{"not yaml", "{{{"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			path := writeConfig(t, t.TempDir(), "config.yaml", tc.yaml)
			_, err := Load(path)
			assert.Error(t, err)
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoadFromDir(t *testing.T) {
	t.Run("prefers config.yaml", func(t *testing.T) {
		dir := t.TempDir()
		writeConfig(t, dir, "config.yaml", "eventServer:\n  port: 1111\n")
		writeConfig(t, dir, "config.yml", "eventServer:\n  port: 2222\n")

		cfg, err := LoadFromDir(dir)
		require.NoError(t, err)
		assert.Equal(t, 1111, cfg.EventServer.Port)
	})

	t.Run("falls back to config.yml", func(t *testing.T) {
		dir := t.TempDir()
		writeConfig(t, dir, "config.yml", "eventServer:\n  port: 2222\n")

		cfg, err := LoadFromDir(dir)
		require.NoError(t, err)
		assert.Equal(t, 2222, cfg.EventServer.Port)
	})

	t.Run("defaults without a file", func(t *testing.T) {
		cfg, err := LoadFromDir(t.TempDir())
		require.NoError(t, err)
		assert.Equal(t, 20*time.Second, cfg.Verify.Timeout())
	})
}
