// Package config loads the per-project jsnav configuration from TOML or
// YAML, applies environment overrides and validates the result.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/morozRed/jsnav/internal/indexer"
	"github.com/morozRed/jsnav/internal/logging"
)

// ErrUnknownFormat is returned for config files that are neither TOML nor YAML.
var ErrUnknownFormat = errors.New("unknown config format")

// FileNames are probed in order in each directory during discovery.
var FileNames = []string{".jsnav.toml", ".jsnav.yaml", ".jsnav.yml"}

// Color modes.
const (
	ColorAuto   = "auto"
	ColorAlways = "always"
	ColorNever  = "never"
)

// Environment overrides.
const (
	EnvLogLevel = "JSNAV_LOG_LEVEL"
	EnvColor    = "JSNAV_COLOR"
	EnvNoColor  = "NO_COLOR"
)

// Config is the project configuration.
type Config struct {
	LogLevel  string               `toml:"log_level" yaml:"log_level"`
	Color     string               `toml:"color" yaml:"color"`
	Watch     WatchConfig          `toml:"watch" yaml:"watch"`
	WatchList []indexer.WatchEntry `toml:"watchlist" yaml:"watchlist"`
	Ignore    []string             `toml:"ignore" yaml:"ignore"`

	// Path is the file the config was read from; empty for defaults.
	Path string `toml:"-" yaml:"-"`
}

// WatchConfig configures `jsnav watch`.
type WatchConfig struct {
	Debounce time.Duration `toml:"debounce" yaml:"debounce"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		LogLevel:  "info",
		Color:     ColorAuto,
		Watch:     WatchConfig{Debounce: 200 * time.Millisecond},
		WatchList: append([]indexer.WatchEntry(nil), indexer.DefaultWatchList...),
	}
}

// Discover looks for a config file in dir and its parents. It returns an
// empty path when none exists.
func Discover(dir string) (string, error) {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("failed to resolve %s: %w", dir, err)
	}
	for {
		for _, name := range FileNames {
			candidate := filepath.Join(dir, name)
			if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
				return candidate, nil
			}
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", nil
		}
		dir = parent
	}
}

// Load reads path, or the discovered config under workDir when path is
// empty, then applies environment overrides and validates. A missing
// discovered file yields defaults.
func Load(path, workDir string) (*Config, error) {
	if path == "" {
		found, err := Discover(workDir)
		if err != nil {
			return nil, err
		}
		path = found
	}

	cfg := &Config{}
	if path != "" {
		if err := decodeFile(cfg, path); err != nil {
			return nil, fmt.Errorf("failed to load config from %s: %w", path, err)
		}
		cfg.Path = path
	}

	cfg.ApplyEnvOverrides()
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func decodeFile(cfg *Config, path string) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return fmt.Errorf("failed to decode TOML file: %w", err)
		}
	case ".yaml", ".yml":
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("failed to read YAML file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return fmt.Errorf("failed to decode YAML file: %w", err)
		}
	default:
		return fmt.Errorf("%w: %s", ErrUnknownFormat, filepath.Ext(path))
	}
	return nil
}

// ApplyEnvOverrides applies JSNAV_* variables. NO_COLOR forces color off
// unless JSNAV_COLOR is set.
func (c *Config) ApplyEnvOverrides() {
	if level := os.Getenv(EnvLogLevel); level != "" {
		c.LogLevel = level
	}
	if color := os.Getenv(EnvColor); color != "" {
		c.Color = color
	} else if _, ok := os.LookupEnv(EnvNoColor); ok {
		c.Color = ColorNever
	}
}

// SetDefaults fills zero values.
func (c *Config) SetDefaults() {
	defaults := Default()
	if c.LogLevel == "" {
		c.LogLevel = defaults.LogLevel
	}
	if c.Color == "" {
		c.Color = defaults.Color
	}
	if c.Watch.Debounce == 0 {
		c.Watch.Debounce = defaults.Watch.Debounce
	}
	if c.WatchList == nil {
		c.WatchList = defaults.WatchList
	}
	c.LogLevel = strings.ToLower(c.LogLevel)
	c.Color = strings.ToLower(c.Color)
}

// ValidationError describes one invalid field.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateErrors collects every ValidationError found.
type ValidateErrors []ValidationError

func (e ValidateErrors) Error() string {
	msgs := make([]string, 0, len(e))
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return strings.Join(msgs, "; ")
}

// Validate checks field values.
func (c *Config) Validate() error {
	var errs ValidateErrors

	if _, ok := logging.ParseLevel(c.LogLevel); !ok {
		errs = append(errs, ValidationError{
			Field:   "log_level",
			Message: fmt.Sprintf("invalid level '%s', must be one of: debug, info, warn, error", c.LogLevel),
		})
	}

	switch c.Color {
	case ColorAuto, ColorAlways, ColorNever:
	default:
		errs = append(errs, ValidationError{
			Field:   "color",
			Message: fmt.Sprintf("invalid mode '%s', must be one of: auto, always, never", c.Color),
		})
	}

	if c.Watch.Debounce < 0 {
		errs = append(errs, ValidationError{
			Field:   "watch.debounce",
			Message: "must not be negative",
		})
	}

	for i, entry := range c.WatchList {
		if strings.TrimSpace(entry.Name) == "" {
			errs = append(errs, ValidationError{
				Field:   fmt.Sprintf("watchlist[%d].name", i),
				Message: "must not be empty",
			})
		}
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}
