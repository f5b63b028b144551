// Package config loads settings from defaults, a TOML file, the environment
// and command-line flags, in that order.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/spf13/pflag"
)

const (
	appDir         = "todo"
	configFileName = "config.toml"
	dbFileName     = "todo.db"
)

// ErrInvalid marks flag values and settings that fail validation.
var ErrInvalid = errors.New("invalid configuration")

// Config is the effective configuration.
type Config struct {
	Database string `toml:"database"`
	Theme    string `toml:"theme"`     // classic | neon | mono
	LogLevel string `toml:"log_level"` // debug | info | warn | error
	LogFile  string `toml:"log_file"`  // empty: stderr for commands, nowhere for the screen
	Seed     bool   `toml:"seed"`      // populate an empty table on first run
	Watch    bool   `toml:"watch"`     // re-read when the database file changes

	// Path of the config file that was read, empty when none was.
	Source string `toml:"-"`
}

// Flag names shared by BindFlags and Load.
const (
	FlagConfig   = "config"
	FlagDatabase = "db"
	FlagTheme    = "theme"
	FlagLogLevel = "log-level"
	FlagLogFile  = "log-file"
	FlagNoSeed   = "no-seed"
	FlagNoWatch  = "no-watch"
)

// Dir returns the per-user directory holding the config file and database.
func Dir() string {
	base, err := os.UserConfigDir()
	if err != nil {
		base = "."
	}
	return filepath.Join(base, appDir)
}

// DefaultPath is where Load looks for a config file when none is given.
func DefaultPath() string {
	return filepath.Join(Dir(), configFileName)
}

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		Database: filepath.Join(Dir(), dbFileName),
		Theme:    "classic",
		LogLevel: "info",
		Seed:     true,
		Watch:    true,
	}
}

// BindFlags registers the flags Load understands.
func BindFlags(fs *pflag.FlagSet) {
	fs.String(FlagConfig, "", "config file (default "+DefaultPath()+")")
	fs.String(FlagDatabase, "", "database file")
	fs.String(FlagTheme, "", "color theme: classic, neon or mono")
	fs.String(FlagLogLevel, "", "log level: debug, info, warn or error")
	fs.String(FlagLogFile, "", "write logs to this file")
	fs.Bool(FlagNoSeed, false, "do not populate an empty database")
	fs.Bool(FlagNoWatch, false, "do not watch the database file for changes")
}

// Load builds the configuration. fs may be nil.
func Load(fs *pflag.FlagSet) (*Config, error) {
	cfg := Default()

	path, explicit := DefaultPath(), false
	if fs != nil && fs.Changed(FlagConfig) {
		path, _ = fs.GetString(FlagConfig)
		explicit = true
	} else if env := os.Getenv("TODO_CONFIG"); env != "" {
		path, explicit = env, true
	}
	if err := loadFile(cfg, path, explicit); err != nil {
		return nil, fmt.Errorf("loading config file %s: %w", path, err)
	}

	loadFromEnv(cfg)

	if fs != nil {
		if err := loadFromFlags(cfg, fs); err != nil {
			return nil, fmt.Errorf("parsing flags: %w: %w", ErrInvalid, err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	return cfg, nil
}

func loadFile(cfg *Config, path string, explicit bool) error {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) && !explicit {
			return nil
		}
		return err
	}
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return err
	}
	cfg.Source = path
	return nil
}

func loadFromEnv(cfg *Config) {
	if v := os.Getenv("TODO_DB"); v != "" {
		cfg.Database = v
	}
	if v := os.Getenv("TODO_THEME"); v != "" {
		cfg.Theme = v
	}
	if v := os.Getenv("TODO_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("TODO_LOG_FILE"); v != "" {
		cfg.LogFile = v
	}
}

func loadFromFlags(cfg *Config, fs *pflag.FlagSet) error {
	strs := []struct {
		name string
		dst  *string
	}{
		{FlagDatabase, &cfg.Database},
		{FlagTheme, &cfg.Theme},
		{FlagLogLevel, &cfg.LogLevel},
		{FlagLogFile, &cfg.LogFile},
	}
	for _, f := range strs {
		if !fs.Changed(f.name) {
			continue
		}
		v, err := fs.GetString(f.name)
		if err != nil {
			return err
		}
		*f.dst = v
	}

	if fs.Changed(FlagNoSeed) {
		v, err := fs.GetBool(FlagNoSeed)
		if err != nil {
			return err
		}
		cfg.Seed = !v
	}
	if fs.Changed(FlagNoWatch) {
		v, err := fs.GetBool(FlagNoWatch)
		if err != nil {
			return err
		}
		cfg.Watch = !v
	}
	return nil
}

// Validate rejects values nothing downstream can use.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Database) == "" {
		return errors.New("config: database path is empty")
	}
	switch strings.ToLower(c.Theme) {
	case "classic", "neon", "mono":
	default:
		return fmt.Errorf("config: unknown theme %q", c.Theme)
	}
	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("config: unknown log level %q", c.LogLevel)
	}
	return nil
}

// Encode writes cfg as TOML.
func (c *Config) Encode() (string, error) {
	var b strings.Builder
	if err := toml.NewEncoder(&b).Encode(c); err != nil {
		return "", err
	}
	return b.String(), nil
}
