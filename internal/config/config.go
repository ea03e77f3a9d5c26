package config

import (
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	// DefaultDebounceMs is the quiet period after an edit before the
	// command is re-run; a burst of keystrokes inside it runs only once.
	DefaultDebounceMs = 50
	// DefaultMaxOutputLines bounds the output pane; beyond it the oldest
	// lines of the current run are dropped.
	DefaultMaxOutputLines = 10000
	// DefaultMaxInputBytes caps how much piped stdin is buffered at
	// startup. Input beyond the cap is truncated, not streamed.
	DefaultMaxInputBytes = 64 << 20
)

type Config struct {
	DebounceMs     int `yaml:"debounce_ms"`
	MaxOutputLines int `yaml:"max_output_lines"`
	MaxInputBytes  int `yaml:"max_input_bytes"`
}

func (c *Config) Debounce() time.Duration {
	return time.Duration(c.DebounceMs) * time.Millisecond
}

// Load reads the config from ~/.config/tip/config.yaml.
// Returns defaults if the file doesn't exist.
func Load() (*Config, error) {
	cfg := &Config{}

	home, err := os.UserHomeDir()
	if err == nil {
		path := filepath.Join(home, ".config", "tip", "config.yaml")
		data, err := os.ReadFile(path)
		if err != nil && !os.IsNotExist(err) {
			return nil, err
		}
		if err == nil {
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, err
			}
		}
	}

	if cfg.DebounceMs <= 0 {
		cfg.DebounceMs = DefaultDebounceMs
	}
	if cfg.MaxOutputLines <= 0 {
		cfg.MaxOutputLines = DefaultMaxOutputLines
	}
	if cfg.MaxInputBytes <= 0 {
		cfg.MaxInputBytes = DefaultMaxInputBytes
	}

	return cfg, nil
}
