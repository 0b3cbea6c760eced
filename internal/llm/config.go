// Package llm provides a timeout-bounded client for an external language
// model, used only as a last-resort slot-filling fallback. The rest of
// the pipeline never blocks on it.
package llm

import (
	"os"
	"strconv"
	"time"
)

// TaskType identifies the kind of LLM task being performed.
type TaskType string

const (
	// TaskSlotFill asks the model to complete missing slots for a parse.
	TaskSlotFill TaskType = "slot_fill"
)

// TaskConfig holds per-task LLM parameters.
type TaskConfig struct {
	Temperature float64
	MaxTokens   int
	TimeoutMs   int // overrides global if > 0
}

// Config holds all configuration for the LLM subsystem.
type Config struct {
	Enabled    bool
	LogCalls   bool
	Endpoint   string
	Model      string
	TimeoutMs  int
	MaxRetries int
	CacheTTLMs int
	Tasks      map[TaskType]TaskConfig
}

// DefaultConfig returns a Config with sensible defaults. The fallback is
// disabled by default; the deterministic pipeline works without it.
func DefaultConfig() Config {
	return Config{
		Enabled:    false,
		LogCalls:   false,
		Endpoint:   "http://localhost:11434",
		Model:      "llama3.2",
		TimeoutMs:  800,
		MaxRetries: 0,
		CacheTTLMs: 5 * 60 * 1000,
		Tasks: map[TaskType]TaskConfig{
			TaskSlotFill: {Temperature: 0.1, MaxTokens: 256, TimeoutMs: 800},
		},
	}
}

// LoadConfig reads LLM configuration from environment variables, falling
// back to defaults for any unset values.
func LoadConfig() Config {
	cfg := DefaultConfig()

	if v := os.Getenv("GUTLOG_LLM_ENABLED"); v != "" {
		cfg.Enabled, _ = strconv.ParseBool(v)
	}
	if v := os.Getenv("GUTLOG_LLM_LOG_CALLS"); v != "" {
		cfg.LogCalls, _ = strconv.ParseBool(v)
	}
	if v := os.Getenv("GUTLOG_LLM_ENDPOINT"); v != "" {
		cfg.Endpoint = v
	}
	if v := os.Getenv("GUTLOG_LLM_MODEL"); v != "" {
		cfg.Model = v
	}
	if v := os.Getenv("GUTLOG_LLM_TIMEOUT_MS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.TimeoutMs = n
		}
	}
	if v := os.Getenv("GUTLOG_LLM_MAX_RETRIES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			cfg.MaxRetries = n
		}
	}
	if v := os.Getenv("GUTLOG_LLM_CACHE_TTL_MS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			cfg.CacheTTLMs = n
		}
	}
	if v := os.Getenv("GUTLOG_LLM_SLOT_FILL_TIMEOUT_MS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			tc := cfg.Tasks[TaskSlotFill]
			tc.TimeoutMs = n
			cfg.Tasks[TaskSlotFill] = tc
		}
	}

	return cfg
}

// CacheTTL returns the response cache lifetime as a duration.
func (c Config) CacheTTL() time.Duration {
	return time.Duration(c.CacheTTLMs) * time.Millisecond
}

// TaskTimeout returns the effective timeout for a given task type.
func (c Config) TaskTimeout(task TaskType) int {
	if tc, ok := c.Tasks[task]; ok && tc.TimeoutMs > 0 {
		return tc.TimeoutMs
	}
	return c.TimeoutMs
}
