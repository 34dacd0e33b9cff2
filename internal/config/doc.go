// Package config provides configuration management for the nixup CLI.
//
// Configuration is loaded via Viper from a YAML file searched in the
// current directory and the nixup config directory, with NIXUP_* env
// variables taking precedence. Every setting has a default so the tool
// works with no config file at all.
//
// Settings cover the remote sources (installer script URL, flake URL
// override), the default environment profile, and the project directory
// name the bootstrap creates.
package config
