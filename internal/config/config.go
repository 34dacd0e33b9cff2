// Package config provides configuration management for nixup using Viper.
package config

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/viper"

	"github.com/thoreinstein/nixup/internal/paths"
	"github.com/thoreinstein/nixup/internal/profile"
)

// AppName is the application name used for config file naming.
const AppName = "nixup"

// DefaultInstallerURL is the official Nix installer script.
const DefaultInstallerURL = "https://nixos.org/nix/install"

// DefaultProjectName is the directory name created under the chosen base.
const DefaultProjectName = "devenv"

// Config represents the top-level configuration structure.
type Config struct {
	Version        int    `mapstructure:"version" yaml:"version"`
	DefaultProfile string `mapstructure:"default_profile" yaml:"default_profile"`
	ProjectName    string `mapstructure:"project_name" yaml:"project_name"`
	InstallerURL   string `mapstructure:"installer_url" yaml:"installer_url"`

	// FlakeURL overrides the selected profile's flake source when set.
	FlakeURL string `mapstructure:"flake_url" yaml:"flake_url"`
}

// Init initializes Viper with default configuration.
// Call this once at application startup before accessing config values.
func Init() {
	// Config file settings
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	// Search paths (in order of precedence)
	viper.AddConfigPath(".") // Current directory
	viper.AddConfigPath(paths.NixupConfigDir())

	// Environment variable support
	viper.SetEnvPrefix("NIXUP")
	viper.AutomaticEnv()

	// Defaults
	viper.SetDefault("version", 1)
	viper.SetDefault("default_profile", profile.DefaultName)
	viper.SetDefault("project_name", DefaultProjectName)
	viper.SetDefault("installer_url", DefaultInstallerURL)
}

// Load reads the configuration file.
// If path is provided, it reads from that specific file.
// If path is empty, it searches in the default locations.
// Returns the loaded configuration or default values if no file is found (when path is empty).
func Load(path string) (*Config, error) {
	if path != "" {
		viper.SetConfigFile(path)
	}

	if err := viper.ReadInConfig(); err != nil {
		// If config file not found...
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			// If user specified a path, this is an error
			if path != "" {
				return nil, fmt.Errorf("config file not found at %s: %w", path, err)
			}
			// Otherwise (implicit load), it's fine to use defaults
		} else {
			// Real read error (parsing, permissions, etc)
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	return &cfg, nil
}

// ProfilesPath returns the path of the profile catalog file.
// Returns: <NixupConfigDir>/profiles.toml
func ProfilesPath() string {
	return filepath.Join(paths.NixupConfigDir(), "profiles.toml")
}
