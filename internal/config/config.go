// Package config loads gutlog configuration from a TOML file with
// environment-variable overrides. Precedence: defaults, then the config
// file, then GUTLOG_* environment variables.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/mkellerman/gutlog/internal/ontology"
)

// Config holds all gutlog configuration.
type Config struct {
	DBPath   string `toml:"db_path"`
	Timezone string `toml:"timezone"`
	User     string `toml:"user"`
	Channel  string `toml:"channel"`

	Thresholds ThresholdsConfig `toml:"thresholds"`
	Dialog     DialogConfig     `toml:"dialog"`
	LLM        LLMConfig        `toml:"llm"`
}

// ThresholdsConfig mirrors the decision and spell thresholds; zero
// values fall back to the built-in defaults.
type ThresholdsConfig struct {
	Strict         float64 `toml:"strict"`
	Lenient        float64 `toml:"lenient"`
	Rescue         float64 `toml:"rescue"`
	Reject         float64 `toml:"reject"`
	Spell          float64 `toml:"spell"`
	SpellProtected float64 `toml:"spell_protected"`
}

// DialogConfig controls clarification state.
type DialogConfig struct {
	PendingTTLSeconds int `toml:"pending_ttl_seconds"`
}

// LLMConfig mirrors the file-configurable part of the LLM fallback.
type LLMConfig struct {
	Enabled   bool   `toml:"enabled"`
	Endpoint  string `toml:"endpoint"`
	Model     string `toml:"model"`
	TimeoutMs int    `toml:"timeout_ms"`
	LogCalls  bool   `toml:"log_calls"`
}

// DefaultConfig returns config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		DBPath:   "~/.local/share/gutlog/gutlog.db",
		Timezone: "Local",
		User:     "default",
		Channel:  "cli",
		Dialog: DialogConfig{
			PendingTTLSeconds: 180,
		},
		LLM: LLMConfig{
			Enabled:   false,
			Endpoint:  "http://localhost:11434",
			Model:     "llama3.2",
			TimeoutMs: 800,
		},
	}
}

// Load reads config from the standard paths, falling back to defaults,
// then applies environment overrides.
func Load() (Config, error) {
	cfg := DefaultConfig()

	for _, p := range configPaths() {
		if _, err := os.Stat(p); err == nil {
			if _, err := toml.DecodeFile(p, &cfg); err != nil {
				return cfg, fmt.Errorf("parse config %s: %w", p, err)
			}
			break
		}
	}

	applyEnv(&cfg)
	cfg.DBPath = expandHome(cfg.DBPath)
	return cfg, nil
}

func configPaths() []string {
	var paths []string
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		paths = append(paths, filepath.Join(xdg, "gutlog", "config.toml"))
	}
	home, _ := os.UserHomeDir()
	if home != "" {
		paths = append(paths, filepath.Join(home, ".config", "gutlog", "config.toml"))
	}
	return paths
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("GUTLOG_DB_PATH"); v != "" {
		cfg.DBPath = v
	}
	if v := os.Getenv("GUTLOG_TIMEZONE"); v != "" {
		cfg.Timezone = v
	}
	if v := os.Getenv("GUTLOG_USER"); v != "" {
		cfg.User = v
	}
	if v := os.Getenv("GUTLOG_CHANNEL"); v != "" {
		cfg.Channel = v
	}
	if v := os.Getenv("GUTLOG_PENDING_TTL_SECONDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.Dialog.PendingTTLSeconds = n
		}
	}
}

func expandHome(path string) string {
	if !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[2:])
}

// Location resolves the configured timezone. "Local" or an unparseable
// name resolves to the system timezone.
func (c Config) Location() *time.Location {
	if c.Timezone == "" || strings.EqualFold(c.Timezone, "local") {
		return time.Local
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}

// PendingTTL returns the clarification-state lifetime.
func (c Config) PendingTTL() time.Duration {
	return time.Duration(c.Dialog.PendingTTLSeconds) * time.Second
}

// BuildThresholds merges configured threshold overrides onto the
// defaults, keeping any field left at zero.
func (c Config) BuildThresholds() ontology.Thresholds {
	th := ontology.DefaultThresholds()
	if c.Thresholds.Strict > 0 {
		th.Strict = c.Thresholds.Strict
	}
	if c.Thresholds.Lenient > 0 {
		th.Lenient = c.Thresholds.Lenient
	}
	if c.Thresholds.Rescue > 0 {
		th.Rescue = c.Thresholds.Rescue
	}
	if c.Thresholds.Reject > 0 {
		th.Reject = c.Thresholds.Reject
	}
	if c.Thresholds.Spell > 0 {
		th.Spell = c.Thresholds.Spell
	}
	if c.Thresholds.SpellProtected > 0 {
		th.SpellProtected = c.Thresholds.SpellProtected
	}
	if !th.Valid() {
		return ontology.DefaultThresholds()
	}
	return th
}
