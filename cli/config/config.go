package config

import (
	"fmt"
	"time"
)

// Settings represents a synccheck.yaml settings file.
// All values are optional and act as defaults for synccheck check flags.
// CLI flags always override settings values.
type Settings struct {
	// Tap is the tap executable path.
	Tap string `yaml:"tap"`
	// Config is the tap's JSON config file.
	Config string `yaml:"config"`
	// Catalog is the tap's JSON catalog file.
	Catalog string `yaml:"catalog"`
	// Stream is the stream whose replication key value is displayed.
	Stream string `yaml:"stream"`
	// Artifacts is the directory for run logs and the checkpoint file.
	Artifacts string `yaml:"artifacts"`
	// Timeout bounds each tap run (e.g. "10m").
	Timeout Duration `yaml:"timeout"`
	// Report is the JSON report destination ("-" for stderr).
	Report string `yaml:"report"`
}

// Duration wraps time.Duration for YAML string parsing (e.g. "30s", "10m").
type Duration struct {
	time.Duration
}

// UnmarshalYAML parses a duration string like "30s" or "5m30s".
func (d *Duration) UnmarshalYAML(unmarshal func(any) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	if s == "" {
		return nil
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	d.Duration = parsed
	return nil
}
