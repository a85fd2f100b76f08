// Package config resolves the settings of the sudo-prompt command line from
// flags, SUDO_PROMPT_* environment variables and an optional config file.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	// EnvPrefix is prepended to every key looked up in the environment.
	EnvPrefix = "SUDO_PROMPT"
	// FileName is the base name of the config file searched in Dir.
	FileName = "config"

	LauncherPowerShell   = "powershell"
	LauncherShellExecute = "shellexecute"
)

var ErrInvalidLauncher = errors.New("launcher must be powershell or shellexecute")

// Config is the resolved CLI configuration.
type Config struct {
	Name         string        `mapstructure:"name"`
	Icns         string        `mapstructure:"icns"`
	EnvFile      string        `mapstructure:"env_file"`
	Applet       string        `mapstructure:"applet"`
	Launcher     string        `mapstructure:"launcher"`
	Timeout      time.Duration `mapstructure:"timeout"`
	PollInterval time.Duration `mapstructure:"poll_interval"`
	TempDir      string        `mapstructure:"temp_dir"`
	Verbose      bool          `mapstructure:"verbose"`
}

// DefaultConfig returns the settings used when nothing overrides them.
func DefaultConfig() Config {
	return Config{
		Launcher:     LauncherPowerShell,
		Timeout:      30 * time.Minute,
		PollInterval: time.Second,
	}
}

// LoadOptions defines explicit configuration loading inputs.
type LoadOptions struct {
	// File forces loading from a specific config file when set.
	File string
	// Dir overrides the directory searched for FileName.* when set.
	Dir string
	// Flags are bound to the keys they are named after, with dashes for
	// underscores. Only flags the user changed take precedence.
	Flags *pflag.FlagSet
}

// Dir returns the default config directory, e.g. ~/.config/sudo-prompt.
func Dir() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve config directory: %w", err)
	}
	return filepath.Join(base, "sudo-prompt"), nil
}

// Load resolves the configuration. Precedence, highest first: changed flags,
// environment, config file, defaults.
func Load(opts LoadOptions) (*Config, error) {
	v := viper.New()

	defaults := DefaultConfig()
	v.SetDefault("name", defaults.Name)
	v.SetDefault("icns", defaults.Icns)
	v.SetDefault("env_file", defaults.EnvFile)
	v.SetDefault("applet", defaults.Applet)
	v.SetDefault("launcher", defaults.Launcher)
	v.SetDefault("timeout", defaults.Timeout)
	v.SetDefault("poll_interval", defaults.PollInterval)
	v.SetDefault("temp_dir", defaults.TempDir)
	v.SetDefault("verbose", defaults.Verbose)

	if err := readFile(v, opts); err != nil {
		return nil, err
	}
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if opts.Flags != nil {
		for _, key := range v.AllKeys() {
			if f := opts.Flags.Lookup(strings.ReplaceAll(key, "_", "-")); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("failed to bind flag %s: %w", f.Name, err)
				}
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks values viper cannot type-check.
func (c *Config) Validate() error {
	switch c.Launcher {
	case LauncherPowerShell, LauncherShellExecute:
	default:
		return fmt.Errorf("%w: got %q", ErrInvalidLauncher, c.Launcher)
	}
	if c.Timeout < 0 {
		return fmt.Errorf("timeout cannot be negative: %s", c.Timeout)
	}
	if c.PollInterval < 0 {
		return fmt.Errorf("poll interval cannot be negative: %s", c.PollInterval)
	}
	return nil
}

func readFile(v *viper.Viper, opts LoadOptions) error {
	if opts.File != "" {
		v.SetConfigFile(opts.File)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("failed to read config file %s: %w", opts.File, err)
		}
		return nil
	}

	dir := opts.Dir
	if dir == "" {
		var err error
		if dir, err = Dir(); err != nil {
			// no home directory, run on defaults
			return nil
		}
	}
	v.SetConfigName(FileName)
	v.AddConfigPath(dir)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("failed to read config: %w", err)
	}
	return nil
}
