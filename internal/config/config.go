// Package config loads thaum settings from an optional TOML file and
// THAUM_* environment variables.
//
// Precedence, lowest first: Default, file, environment. Command-line flags
// are applied on top by the cli package.
package config

import (
	"bytes"
	"fmt"
	"os"

	"github.com/caarlos0/env/v11"
	"github.com/pelletier/go-toml/v2"
)

// Output formats.
const (
	FormatText = "text"
	FormatJSON = "json"
)

// Config holds settings shared by all commands.
type Config struct {
	// DB is the journal path used by run, trace and replay.
	DB string `toml:"db" env:"THAUM_DB"`

	// Format is the output format, "text" or "json".
	Format string `toml:"format" env:"THAUM_FORMAT"`

	// Verbose enables debug logging.
	Verbose bool `toml:"verbose" env:"THAUM_VERBOSE"`

	// NoJournal disables journaling in run even when DB is set.
	NoJournal bool `toml:"no_journal" env:"THAUM_NO_JOURNAL"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		DB:     "thaum.db",
		Format: FormatText,
	}
}

// Load returns Default overlaid with the TOML file at path (skipped when
// path is empty) and then the environment.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		if err := loadToml(path, &cfg); err != nil {
			return Config{}, err
		}
	}
	if err := ParseEnv(&cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// ParseEnv overlays THAUM_* variables onto target. Unset variables leave
// fields untouched.
func ParseEnv(target *Config) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// Validate checks field values.
func (c Config) Validate() error {
	if c.Format != FormatText && c.Format != FormatJSON {
		return fmt.Errorf("invalid format %q: must be %s or %s", c.Format, FormatText, FormatJSON)
	}
	return nil
}

func loadToml(path string, out *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("config load failed (%s): %w", path, err)
	}
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(out); err != nil {
		return fmt.Errorf("config parse failed (%s): %w", path, err)
	}
	return nil
}
