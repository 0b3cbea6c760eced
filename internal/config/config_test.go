package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, "default", cfg.User)
	assert.Equal(t, "cli", cfg.Channel)
	assert.Equal(t, 180, cfg.Dialog.PendingTTLSeconds)
	assert.False(t, cfg.LLM.Enabled)
	assert.Equal(t, "http://localhost:11434", cfg.LLM.Endpoint)
}

func TestLoadReadsTOMLFromXDGPath(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)

	cfgDir := filepath.Join(dir, "gutlog")
	require.NoError(t, os.MkdirAll(cfgDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(cfgDir, "config.toml"), []byte(`
db_path = "/tmp/test.db"
timezone = "UTC"
user = "marc"

[thresholds]
strict = 0.9

[dialog]
pending_ttl_seconds = 60

[llm]
enabled = true
model = "mistral"
`), 0o644))

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "/tmp/test.db", cfg.DBPath)
	assert.Equal(t, "UTC", cfg.Timezone)
	assert.Equal(t, "marc", cfg.User)
	assert.Equal(t, "cli", cfg.Channel, "unset fields keep defaults")
	assert.Equal(t, 0.9, cfg.Thresholds.Strict)
	assert.Equal(t, 60, cfg.Dialog.PendingTTLSeconds)
	assert.True(t, cfg.LLM.Enabled)
	assert.Equal(t, "mistral", cfg.LLM.Model)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)

	cfgDir := filepath.Join(dir, "gutlog")
	require.NoError(t, os.MkdirAll(cfgDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(cfgDir, "config.toml"),
		[]byte("user = \"fromfile\"\n"), 0o644))

	t.Setenv("GUTLOG_USER", "fromenv")
	t.Setenv("GUTLOG_DB_PATH", "/tmp/env.db")
	t.Setenv("GUTLOG_PENDING_TTL_SECONDS", "45")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "fromenv", cfg.User)
	assert.Equal(t, "/tmp/env.db", cfg.DBPath)
	assert.Equal(t, 45, cfg.Dialog.PendingTTLSeconds)
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "default", cfg.User)
}

func TestLoadInvalidTOMLFails(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)

	cfgDir := filepath.Join(dir, "gutlog")
	require.NoError(t, os.MkdirAll(cfgDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(cfgDir, "config.toml"),
		[]byte("user = [broken"), 0o644))

	_, err := Load()
	assert.Error(t, err)
}

func TestExpandHome(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(home, "x.db"), expandHome("~/x.db"))
	assert.Equal(t, "/abs/x.db", expandHome("/abs/x.db"))
}

func TestLocation(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, time.Local, cfg.Location())

	cfg.Timezone = "UTC"
	assert.Equal(t, time.UTC, cfg.Location())

	cfg.Timezone = "Not/AZone"
	assert.Equal(t, time.Local, cfg.Location())
}

func TestPendingTTL(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, 3*time.Minute, cfg.PendingTTL())
}

func TestBuildThresholdsMergesOverrides(t *testing.T) {
	cfg := DefaultConfig()
	th := cfg.BuildThresholds()
	assert.Equal(t, 0.80, th.Strict)

	cfg.Thresholds.Strict = 0.9
	cfg.Thresholds.Lenient = 0.75
	th = cfg.BuildThresholds()
	assert.Equal(t, 0.9, th.Strict)
	assert.Equal(t, 0.75, th.Lenient)
	assert.Equal(t, 0.65, th.Rescue, "untouched fields keep defaults")
}

func TestBuildThresholdsRejectsInconsistentOverrides(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Thresholds.Lenient = 0.95 // above strict

	th := cfg.BuildThresholds()
	assert.Equal(t, 0.80, th.Strict)
	assert.Equal(t, 0.72, th.Lenient, "invalid combinations fall back entirely")
}
