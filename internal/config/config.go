// SPDX-License-Identifier: MPL-2.0

// Package config loads pyspect configuration: the module search path, the
// import blacklist handed to loaders, and plugin enable-lists.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/spf13/viper"
)

const (
	// AppName is the application name, used for the config directory.
	AppName = "pyspect"
	// ConfigFileName is the name of the config file (without extension).
	ConfigFileName = "config"
	// ConfigFileExt is the config file extension.
	ConfigFileExt = "toml"
	// EnvPrefix prefixes environment variable overrides (PYSPECT_VERBOSE etc).
	EnvPrefix = "PYSPECT"
)

// ErrInvalidConfig is the sentinel error wrapped by config load failures.
var ErrInvalidConfig = errors.New("invalid config")

// Config is the effective pyspect configuration.
type Config struct {
	// SearchPath is the ordered list of locations searched for modules.
	// Order determines resolution priority.
	SearchPath []string `mapstructure:"search_path" toml:"search_path"`
	// Blacklist names imports that loaders must refuse.
	Blacklist []string `mapstructure:"blacklist" toml:"blacklist"`
	// Plugins is the plugin enable-list; supports "*" and "-name" entries.
	Plugins []string `mapstructure:"plugins" toml:"plugins"`
	// Verbose enables verbose CLI output.
	Verbose bool `mapstructure:"verbose" toml:"verbose"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Plugins: []string{"*"},
	}
}

// ConfigDir returns the pyspect configuration directory using
// platform-specific conventions: Windows uses %APPDATA%, macOS uses
// ~/Library/Application Support, and Linux/others use $XDG_CONFIG_HOME
// (defaulting to ~/.config).
func ConfigDir() (string, error) {
	if configDirOverride != "" {
		return configDirOverride, nil
	}

	var configDir string
	switch runtime.GOOS {
	case "windows":
		configDir = os.Getenv("APPDATA")
		if configDir == "" {
			configDir = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
	case "darwin":
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		configDir = filepath.Join(home, "Library", "Application Support")
	default:
		configDir = os.Getenv("XDG_CONFIG_HOME")
		if configDir == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return "", fmt.Errorf("failed to get home directory: %w", err)
			}
			configDir = filepath.Join(home, ".config")
		}
	}

	return filepath.Join(configDir, AppName), nil
}

// Load reads the configuration from the config file and environment. A
// missing config file is not an error: defaults apply. A malformed file
// is reported, wrapped in ErrInvalidConfig.
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName(ConfigFileName)
	v.SetConfigType(ConfigFileExt)
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()

	v.SetDefault("search_path", []string{})
	v.SetDefault("blacklist", []string{})
	v.SetDefault("plugins", []string{"*"})
	v.SetDefault("verbose", false)

	if configFilePathOverride != "" {
		v.SetConfigFile(configFilePathOverride)
	} else {
		dir, err := ConfigDir()
		if err != nil {
			return Default(), nil
		}
		v.AddConfigPath(dir)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return Default(), nil
		}
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	cfg := Default()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return cfg, nil
}
