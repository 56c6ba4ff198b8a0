package config

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

const BuildConfigFile = "site.build.yaml"

// BuildConfig contains tunable build parameters
// These can be overridden via site.build.yaml
type BuildConfig struct {
	// Worker settings
	MaxWorkers     int `yaml:"maxWorkers"`     // Maximum worker pool size (default: 32)
	DefaultWorkers int `yaml:"defaultWorkers"` // Post render workers (default: 8)

	// Timeouts
	ShutdownTimeout   time.Duration `yaml:"shutdownTimeout"`   // Server shutdown timeout (default: 5s)
	DebounceDuration  time.Duration `yaml:"debounceDuration"`  // File watcher debounce (default: 300ms)
	RegexMatchTimeout time.Duration `yaml:"regexMatchTimeout"` // Per-rule highlighter timeout (default: 250ms)

	// TOC
	TOCOffset      float64       `yaml:"tocOffset"`      // Active heading threshold line in px (default: 150)
	TOCMinInterval time.Duration `yaml:"tocMinInterval"` // Scroll recompute gate (default: 16ms)

	ExcerptLength int `yaml:"excerptLength"` // Derived excerpt runes (default: 120)
}

// DefaultBuildConfig returns the default build configuration
func DefaultBuildConfig() *BuildConfig {
	return &BuildConfig{
		MaxWorkers:     32,
		DefaultWorkers: 8,

		ShutdownTimeout:   5 * time.Second,
		DebounceDuration:  300 * time.Millisecond,
		RegexMatchTimeout: 250 * time.Millisecond,

		TOCOffset:      150,
		TOCMinInterval: 16 * time.Millisecond,

		ExcerptLength: 120,
	}
}

// LoadBuildConfig loads build configuration from path.
// Returns defaults if the file doesn't exist or doesn't parse.
func LoadBuildConfig(path string) *BuildConfig {
	cfg := DefaultBuildConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return DefaultBuildConfig()
	}

	cfg.validate()
	return cfg
}

// validate ensures configuration values are within reasonable bounds
func (c *BuildConfig) validate() {
	if c.MaxWorkers < 1 {
		c.MaxWorkers = 1
	}
	if c.MaxWorkers > 256 {
		c.MaxWorkers = 256
	}
	if c.DefaultWorkers < 1 {
		c.DefaultWorkers = 1
	}
	if c.DefaultWorkers > c.MaxWorkers {
		c.DefaultWorkers = c.MaxWorkers
	}

	if c.ShutdownTimeout < 1*time.Second {
		c.ShutdownTimeout = 1 * time.Second
	}
	if c.ShutdownTimeout > 60*time.Second {
		c.ShutdownTimeout = 60 * time.Second
	}
	if c.DebounceDuration < 10*time.Millisecond {
		c.DebounceDuration = 10 * time.Millisecond
	}
	if c.DebounceDuration > 5*time.Second {
		c.DebounceDuration = 5 * time.Second
	}
	if c.RegexMatchTimeout < 10*time.Millisecond {
		c.RegexMatchTimeout = 10 * time.Millisecond
	}
	if c.RegexMatchTimeout > 10*time.Second {
		c.RegexMatchTimeout = 10 * time.Second
	}

	if c.TOCOffset < 0 {
		c.TOCOffset = 0
	}
	if c.TOCMinInterval < 0 {
		c.TOCMinInterval = 0
	}
	if c.TOCMinInterval > time.Second {
		c.TOCMinInterval = time.Second
	}

	if c.ExcerptLength < 20 {
		c.ExcerptLength = 20
	}
	if c.ExcerptLength > 1000 {
		c.ExcerptLength = 1000
	}
}
