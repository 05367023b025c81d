package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the checker configuration, usually read from tyck.yaml.
type Config struct {
	// UnfoldLimit bounds how deep the normalizer unfolds definitions before giving up
	// and treating the term as stuck. Protects against non-terminating definitions
	// that have not been rejected by the termination checker yet.
	UnfoldLimit int `yaml:"unfold_limit,omitempty"`

	// Confluence selects which functions get their overlapping clauses checked:
	// "always" (every function) or "overlap" (only functions marked overlap).
	Confluence string `yaml:"confluence,omitempty"`

	// Termination enables the structural termination checker.
	Termination *bool `yaml:"termination,omitempty"`

	// ShowGoals reports explicit holes as GOAL diagnostics.
	ShowGoals *bool `yaml:"show_goals,omitempty"`

	// Color controls coloured diagnostics: "auto", "always" or "never".
	Color string `yaml:"color,omitempty"`

	// ReportDB is a SQLite database path that receives diagnostics and verdicts
	// of every run. Empty disables persistence.
	ReportDB string `yaml:"report_db,omitempty"`
}

// DefaultConfig returns the configuration used when no file is given.
func DefaultConfig() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// LoadConfig reads and validates a YAML configuration file.
// Fields that are absent keep their defaults.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return ParseConfig(data, path)
}

// ParseConfig parses configuration from raw YAML bytes.
// The path argument is used only for error messages.
func ParseConfig(data []byte, path string) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.UnfoldLimit == 0 {
		c.UnfoldLimit = DefaultUnfoldLimit
	}
	if c.Confluence == "" {
		c.Confluence = ConfluenceAlways
	}
	if c.Termination == nil {
		on := true
		c.Termination = &on
	}
	if c.ShowGoals == nil {
		on := true
		c.ShowGoals = &on
	}
	if c.Color == "" {
		c.Color = ColorAuto
	}
}

// Validate checks field values.
func (c *Config) Validate() error {
	if c.UnfoldLimit < 0 {
		return fmt.Errorf("unfold_limit must not be negative, got %d", c.UnfoldLimit)
	}
	switch c.Confluence {
	case ConfluenceAlways, ConfluenceOverlap:
	default:
		return fmt.Errorf("confluence must be %q or %q, got %q", ConfluenceAlways, ConfluenceOverlap, c.Confluence)
	}
	switch c.Color {
	case ColorAuto, ColorAlways, ColorNever:
	default:
		return fmt.Errorf("color must be auto, always or never, got %q", c.Color)
	}
	return nil
}

// TerminationEnabled reports whether the termination checker runs.
func (c *Config) TerminationEnabled() bool {
	return c.Termination == nil || *c.Termination
}

// GoalsEnabled reports whether explicit holes are reported as goals.
func (c *Config) GoalsEnabled() bool {
	return c.ShowGoals == nil || *c.ShowGoals
}
