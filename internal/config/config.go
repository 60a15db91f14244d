// Package config holds parallax settings: the Ollama server, logging and
// voting policy. Values come from defaults, an optional YAML/JSON file,
// then environment variables; CLI flags are applied last by the caller.
package config

import (
	"fmt"
	"net/url"
	"os"
	"time"

	"parallax/internal/logging"
	"parallax/internal/voting"
)

const (
	DefaultBaseURL = "http://localhost:11434"
	DefaultModel   = "gemma3"

	EnvBaseURL = "PARALLAX_OLLAMA_URL"
	EnvModel   = "PARALLAX_MODEL"
)

// Ollama describes the inference server.
type Ollama struct {
	BaseURL string   `json:"base_url" yaml:"base_url"`
	Model   string   `json:"model" yaml:"model"`
	Timeout Duration `json:"timeout,omitempty" yaml:"timeout,omitempty"` // 0 = transport defaults
}

// Log selects the slog handler.
type Log struct {
	Level  string `json:"level,omitempty" yaml:"level,omitempty"`   // debug, info, warn, error
	Format string `json:"format,omitempty" yaml:"format,omitempty"` // text, json
}

// Voting configures the sentiment vote.
type Voting struct {
	TieBreak string `json:"tie_break,omitempty" yaml:"tie_break,omitempty"` // first-seen, priority
}

// Config is the full settings tree.
type Config struct {
	Ollama Ollama `json:"ollama" yaml:"ollama"`
	Log    Log    `json:"log" yaml:"log"`
	Voting Voting `json:"voting" yaml:"voting"`
}

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		Ollama: Ollama{BaseURL: DefaultBaseURL, Model: DefaultModel},
		Log:    Log{Level: "info", Format: "text"},
		Voting: Voting{TieBreak: voting.TieBreakFirstSeen.String()},
	}
}

// ApplyEnv overrides the server URL and model from the environment.
func (c *Config) ApplyEnv() {
	if v := os.Getenv(EnvBaseURL); v != "" {
		c.Ollama.BaseURL = v
	}
	if v := os.Getenv(EnvModel); v != "" {
		c.Ollama.Model = v
	}
}

// Validate checks that every value is usable.
func (c *Config) Validate() error {
	u, err := url.ParseRequestURI(c.Ollama.BaseURL)
	if err != nil || u.Host == "" {
		return fmt.Errorf("config: ollama.base_url %q is not an absolute URL", c.Ollama.BaseURL)
	}
	if c.Ollama.Model == "" {
		return fmt.Errorf("config: ollama.model is required")
	}
	if c.Ollama.Timeout < 0 {
		return fmt.Errorf("config: ollama.timeout must not be negative")
	}
	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("config: log.level: %w", err)
	}
	switch c.Log.Format {
	case "", "text", "json":
	default:
		return fmt.Errorf("config: log.format %q (want text or json)", c.Log.Format)
	}
	if _, err := voting.ParseTieBreak(c.Voting.TieBreak); err != nil {
		return fmt.Errorf("config: voting.tie_break: %w", err)
	}
	return nil
}

// Duration is a time.Duration written as "30s" in YAML and JSON.
type Duration time.Duration

func (d Duration) String() string { return time.Duration(d).String() }

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

func (d *Duration) UnmarshalText(b []byte) error {
	v, err := time.ParseDuration(string(b))
	if err != nil {
		return fmt.Errorf("parse duration %q: %w", b, err)
	}
	*d = Duration(v)
	return nil
}
