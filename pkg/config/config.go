// Package config handles configuration for mobitest-runner.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the workspace configuration (config.yaml).
type Config struct {
	// Event ingestion server
	EventServer EventServerConfig `yaml:"eventServer"`

	// Verification timing
	Verify VerifyConfig `yaml:"verify"`

	// Reporting
	Report ReportConfig `yaml:"report"`

	// Log file path; empty disables file logging
	LogPath string `yaml:"logPath"`

	// Environment variables passed through to checks and flows
	Env map[string]string `yaml:"env"`
}

// EventServerConfig configures the local batch ingestion server.
type EventServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"` // 0 picks a free port
}

// VerifyConfig configures default event check timing.
type VerifyConfig struct {
	TimeoutSec      float64 `yaml:"timeoutSec"`      // per-check wait bound
	PollIntervalMs  int     `yaml:"pollIntervalMs"`  // sleep between polls
	ScrollCount     int     `yaml:"scrollCount"`     // scroll retries for element lookups
	ScrollCapacity  float64 `yaml:"scrollCapacity"`  // 0..1 of the screen
	ScrollDirection string  `yaml:"scrollDirection"` // up, down, left, right
}

// ReportConfig configures the reporting sink.
type ReportConfig struct {
	OutputDir string `yaml:"outputDir"`
	Allure    bool   `yaml:"allure"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		EventServer: EventServerConfig{Host: "127.0.0.1", Port: 0},
		Verify: VerifyConfig{
			TimeoutSec:      20,
			PollIntervalMs:  500,
			ScrollCount:     0,
			ScrollCapacity:  0.7,
			ScrollDirection: "down",
		},
		Report: ReportConfig{OutputDir: "mobitest-report"},
	}
}

// Timeout returns the check timeout as a duration.
func (v VerifyConfig) Timeout() time.Duration {
	return time.Duration(v.TimeoutSec * float64(time.Second))
}

// PollInterval returns the poll interval as a duration.
func (v VerifyConfig) PollInterval() time.Duration {
	return time.Duration(v.PollIntervalMs) * time.Millisecond
}

// Load loads configuration from a file, filling unset fields from defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path) //#nosec G304 -- user-provided config file
	if err != nil {
		return nil, err
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFromDir looks for config.yaml or config.yml in the directory.
func LoadFromDir(dir string) (*Config, error) {
	for _, name := range []string{"config.yaml", "config.yml"} {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err == nil {
			return Load(path)
		}
	}

	// No config file found, return defaults
	return Default(), nil
}

func (c *Config) validate() error {
	if c.Verify.TimeoutSec < 0 {
		return fmt.Errorf("verify.timeoutSec must not be negative")
	}
	if c.Verify.PollIntervalMs <= 0 {
		return fmt.Errorf("verify.pollIntervalMs must be positive")
	}
	if c.Verify.ScrollCapacity < 0 || c.Verify.ScrollCapacity > 1 {
		return fmt.Errorf("verify.scrollCapacity must be within 0..1")
	}
	switch c.Verify.ScrollDirection {
	case "up", "down", "left", "right":
	default:
		return fmt.Errorf("verify.scrollDirection must be one of up, down, left, right")
	}
	return nil
}
