// internal/config/config.go
//
// This package models the run configuration file. A missing file is not an
// error: the defaults describe a local Ollama with the standard loop shape.

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	defaultBaseURL       = "http://localhost:11434"
	defaultModel         = "llama3.1"
	defaultMaxTries      = 4
	defaultHintThreshold = 2
	defaultRecordPolicy  = "terminal"
	defaultSinkType      = "csv"
	defaultSinkPath      = "training_data.csv"
	defaultTimeout       = 120
)

// OllamaConfig locates the model endpoint.
type OllamaConfig struct {
	BaseURL        string `yaml:"base_url"`
	Model          string `yaml:"model"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

// Timeout returns the per-call deadline.
func (o OllamaConfig) Timeout() time.Duration {
	return time.Duration(o.TimeoutSeconds) * time.Second
}

// SolverConfig carries the try-loop parameters.
type SolverConfig struct {
	MaxTries      int    `yaml:"max_tries"`
	HintThreshold int    `yaml:"hint_threshold"`
	RecordPolicy  string `yaml:"record_policy"`
}

// SinkConfig selects where outcome records land.
type SinkConfig struct {
	Type string `yaml:"type"`
	Path string `yaml:"path"`
}

// PluginsConfig points at the verdict-rule plugin directory. Empty means
// no plugins.
type PluginsConfig struct {
	Dir string `yaml:"dir"`
}

// Config models the run configuration YAML file.
type Config struct {
	Version int           `yaml:"version"`
	Ollama  OllamaConfig  `yaml:"ollama"`
	Solver  SolverConfig  `yaml:"solver"`
	Sink    SinkConfig    `yaml:"sink"`
	Plugins PluginsConfig `yaml:"plugins"`
}

// Default returns the configuration used when no file is present.
func Default() Config {
	cfg := Config{Version: 1}
	cfg.applyDefaults()
	return cfg
}

// Load reads the config file at path. A missing file yields the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}

	var parsed Config
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
	}

	parsed.applyDefaults()
	parsed.normalize()
	if err := parsed.validate(); err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}
	return parsed, nil
}

func (c *Config) applyDefaults() {
	if c.Version == 0 {
		c.Version = 1
	}
	if c.Ollama.BaseURL == "" {
		c.Ollama.BaseURL = defaultBaseURL
	}
	if c.Ollama.Model == "" {
		c.Ollama.Model = defaultModel
	}
	if c.Ollama.TimeoutSeconds == 0 {
		c.Ollama.TimeoutSeconds = defaultTimeout
	}
	if c.Solver.MaxTries == 0 {
		c.Solver.MaxTries = defaultMaxTries
	}
	if c.Solver.HintThreshold == 0 {
		c.Solver.HintThreshold = defaultHintThreshold
	}
	if c.Solver.RecordPolicy == "" {
		c.Solver.RecordPolicy = defaultRecordPolicy
	}
	if c.Sink.Type == "" {
		c.Sink.Type = defaultSinkType
	}
	if c.Sink.Path == "" {
		c.Sink.Path = defaultSinkPath
	}
}

func (c *Config) normalize() {
	c.Ollama.BaseURL = strings.TrimRight(strings.TrimSpace(c.Ollama.BaseURL), "/")
	c.Ollama.Model = strings.TrimSpace(c.Ollama.Model)
	c.Solver.RecordPolicy = strings.ToLower(strings.TrimSpace(c.Solver.RecordPolicy))
	c.Sink.Type = strings.ToLower(strings.TrimSpace(c.Sink.Type))
	c.Sink.Path = strings.TrimSpace(c.Sink.Path)
	c.Plugins.Dir = strings.TrimSpace(c.Plugins.Dir)
}

func (c *Config) validate() error {
	if c.Version < 1 {
		return fmt.Errorf("version must be >= 1")
	}
	if c.Ollama.BaseURL == "" {
		return fmt.Errorf("ollama.base_url is required")
	}
	if c.Ollama.Model == "" {
		return fmt.Errorf("ollama.model is required")
	}
	if c.Ollama.TimeoutSeconds < 0 {
		return fmt.Errorf("ollama.timeout_seconds must be >= 0")
	}
	if c.Solver.MaxTries < 1 {
		return fmt.Errorf("solver.max_tries must be >= 1")
	}
	if c.Solver.HintThreshold < 0 {
		return fmt.Errorf("solver.hint_threshold must be >= 0")
	}
	switch c.Solver.RecordPolicy {
	case "terminal", "every":
	default:
		return fmt.Errorf("solver.record_policy must be terminal or every, got %q", c.Solver.RecordPolicy)
	}
	switch c.Sink.Type {
	case "csv", "sqlite":
	default:
		return fmt.Errorf("sink.type must be csv or sqlite, got %q", c.Sink.Type)
	}
	if c.Sink.Path == "" {
		return fmt.Errorf("sink.path is required")
	}
	return nil
}
