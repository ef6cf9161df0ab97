package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/hasbyte1/go-authencoding/authencoding"
)

// Config holds the ldappw configuration
type Config struct {
	// Scheme settings
	DefaultScheme   string   `json:"default_scheme,omitempty"`   // Scheme used by encrypt when --scheme is absent
	BcryptCost      int      `json:"bcrypt_cost,omitempty"`      // bcrypt work factor
	DisabledSchemes []string `json:"disabled_schemes,omitempty"` // Schemes left out of the registry
	EnableArgon2    bool     `json:"enable_argon2,omitempty"`    // Register {ARGON2} after the built-ins

	// Salt source: "secure" or "reseeding"
	Random string `json:"random,omitempty"`

	// Logging and metrics
	LogLevel    string `json:"log_level,omitempty"`    // debug, info, warn or error
	MetricsFile string `json:"metrics_file,omitempty"` // Optional: Prometheus textfile written after each command
}

// DefaultConfig returns the configuration used when no file is given.
func DefaultConfig() Config {
	var c Config
	c.setDefaults()
	return c
}

// LoadConfig loads configuration from a JSON file
func LoadConfig(path string, config *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading config file: %w", err)
	}

	if err := json.Unmarshal(data, config); err != nil {
		return fmt.Errorf("parsing config file: %w", err)
	}

	// Resolve the metrics file relative to the config file location
	if config.MetricsFile != "" && !filepath.IsAbs(config.MetricsFile) {
		config.MetricsFile = filepath.Join(filepath.Dir(path), config.MetricsFile)
	}

	config.setDefaults()
	return config.validate()
}

func (c *Config) setDefaults() {
	if c.DefaultScheme == "" {
		c.DefaultScheme = string(authencoding.DefaultScheme)
	}
	if c.BcryptCost == 0 {
		c.BcryptCost = authencoding.DefaultBcryptCost
	}
	if c.Random == "" {
		c.Random = "secure"
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
}

func (c *Config) validate() error {
	if c.Random != "secure" && c.Random != "reseeding" {
		return fmt.Errorf("random must be \"secure\" or \"reseeding\", got %q", c.Random)
	}
	if _, err := c.Level(); err != nil {
		return err
	}
	return nil
}

// Level parses LogLevel.
func (c *Config) Level() (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return 0, fmt.Errorf("invalid log_level %q: %w", c.LogLevel, err)
	}
	return l, nil
}

// Options converts the configuration into registry options.
func (c *Config) Options() authencoding.Options {
	opts := authencoding.Options{
		BcryptCost:   c.BcryptCost,
		EnableArgon2: c.EnableArgon2,
	}
	if c.Random == "reseeding" {
		opts.Random = authencoding.NewReseedingRandom()
	}
	for _, s := range c.DisabledSchemes {
		opts.Disabled = append(opts.Disabled, authencoding.ParseIdentifier(s))
	}
	return opts
}
