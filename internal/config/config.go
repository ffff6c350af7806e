// Package config loads and saves the stoich settings file.
//
// Settings live in <user config dir>/stoich/config.toml. Everything has
// a default; a missing file is not an error. The working precision is
// read here once at startup and pinned for the whole process so results
// stay reproducible across pipeline steps.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/shopspring/decimal"

	"github.com/steveyegge/stoich/internal/util"
)

// ErrNotFound is returned by Load when the config file does not exist.
var ErrNotFound = errors.New("config file not found")

// Config is the on-disk settings schema.
type Config struct {
	// Precision is the number of digits carried by decimal division
	// throughout a run.
	Precision int `toml:"precision"`
	// Tolerance bounds acceptable verification residuals, as a decimal
	// string (e.g. "1e-10").
	Tolerance string `toml:"tolerance"`
	// Theme selects the CLI color scheme: auto, dark or light.
	Theme string `toml:"theme"`
	// Masses is the path of the atomic mass overrides file. Empty means
	// the default location.
	Masses string `toml:"masses"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Precision: 100,
		Tolerance: "1e-10",
		Theme:     "auto",
	}
}

// Path returns the standard config file location.
func Path() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolving config dir: %w", err)
	}
	return filepath.Join(base, "stoich", "config.toml"), nil
}

// Load reads the config file at path, filling unset fields with
// defaults. A missing file yields the defaults and ErrNotFound; callers
// that treat absence as normal should errors.Is for it.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return cfg, fmt.Errorf("reading config: %w", err)
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return Default(), fmt.Errorf("parsing config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return Default(), fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Save writes cfg to path, creating parent directories as needed.
func Save(path string, cfg Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	data, err := toml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	if err := util.AtomicWriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// Validate checks the settings for usable values.
func (c Config) Validate() error {
	if c.Precision < 10 || c.Precision > 10000 {
		return fmt.Errorf("precision %d out of range [10, 10000]", c.Precision)
	}
	tol, err := decimal.NewFromString(c.Tolerance)
	if err != nil {
		return fmt.Errorf("invalid tolerance %q: %w", c.Tolerance, err)
	}
	if tol.Sign() <= 0 {
		return fmt.Errorf("tolerance must be positive, got %s", tol)
	}
	switch c.Theme {
	case "auto", "dark", "light":
	default:
		return fmt.Errorf("invalid theme %q (want auto, dark or light)", c.Theme)
	}
	return nil
}

// ToleranceDecimal returns the parsed tolerance. Validate first.
func (c Config) ToleranceDecimal() decimal.Decimal {
	return decimal.RequireFromString(c.Tolerance)
}
