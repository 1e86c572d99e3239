// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package config loads the outpass client configuration.
//
// The client works with no configuration at all: [Default] carries the
// production API and content origins as compile-time constants, a 15
// second request timeout and a plain file credential store under the
// user's state directory. A YAML file named by --config or
// OUTPASS_CONFIG may change the credential store backend, the log level
// and, for development and staging environments only, the origins.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"time"

	"gopkg.in/yaml.v3"
)

// Production origins of the college portal.
const (
	DefaultAPIURL     = "https://api.jit.college"
	DefaultContentURL = "https://d2x4fvstvsmor9.cloudfront.net/"
	DefaultTimeout    = 15 * time.Second
)

// Environment selects which override section applies.
type Environment string

const (
	Development Environment = "development"
	Staging     Environment = "staging"
	Production  Environment = "production"
)

// Credential store backends.
const (
	BackendFile   = "file"
	BackendSealed = "sealed"
	BackendSQLite = "sqlite"
	BackendMemory = "memory"
)

// Config is the client configuration.
type Config struct {
	Environment Environment `yaml:"environment"`

	API   APIConfig   `yaml:"api"`
	Store StoreConfig `yaml:"store"`
	Log   LogConfig   `yaml:"log"`

	// Per-environment overrides, applied after the base values.
	Development *Overrides `yaml:"development,omitempty"`
	Staging     *Overrides `yaml:"staging,omitempty"`
}

// Overrides holds the fields an environment section may replace.
type Overrides struct {
	API   *APIConfig   `yaml:"api,omitempty"`
	Store *StoreConfig `yaml:"store,omitempty"`
	Log   *LogConfig   `yaml:"log,omitempty"`
}

// APIConfig locates the remote service.
type APIConfig struct {
	// BaseURL is the REST origin, without a trailing slash.
	BaseURL string `yaml:"base_url"`

	// ContentURL is the static asset origin used to resolve relative
	// photo and file references.
	ContentURL string `yaml:"content_url"`

	// Timeout is the single fixed per-request timeout, as a Go duration
	// string. Default: 15s
	Timeout string `yaml:"timeout"`
}

// StoreConfig selects the credential store.
type StoreConfig struct {
	// Backend is one of file, sealed, sqlite, memory. Default: file
	Backend string `yaml:"backend"`

	// StateDir holds the credential store and the sealing identity.
	StateDir string `yaml:"state_dir"`

	// Path overrides the backend's file inside StateDir.
	Path string `yaml:"path"`

	// IdentityPath is the age identity for the sealed backend.
	// Default: ${StateDir}/identity
	IdentityPath string `yaml:"identity_path"`
}

// LogConfig controls the command logger.
type LogConfig struct {
	// Level is debug, info, warn or error. Default: warn
	Level string `yaml:"level"`
}

// Default returns the zero-configuration client settings.
func Default() *Config {
	return &Config{
		Environment: Production,
		API: APIConfig{
			BaseURL:    DefaultAPIURL,
			ContentURL: DefaultContentURL,
			Timeout:    DefaultTimeout.String(),
		},
		Store: StoreConfig{
			Backend:  BackendFile,
			StateDir: DefaultStateDir(),
		},
		Log: LogConfig{Level: "warn"},
	}
}

// DefaultStateDir resolves the state directory: $OUTPASS_STATE_DIR,
// then $XDG_STATE_HOME/outpass, then ~/.local/state/outpass.
func DefaultStateDir() string {
	if directory := os.Getenv("OUTPASS_STATE_DIR"); directory != "" {
		return directory
	}
	if stateHome := os.Getenv("XDG_STATE_HOME"); stateHome != "" {
		return filepath.Join(stateHome, "outpass")
	}
	homeDirectory, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), "outpass")
	}
	return filepath.Join(homeDirectory, ".local", "state", "outpass")
}

// Load reads the file named by OUTPASS_CONFIG, or returns Default when
// the variable is unset.
func Load() (*Config, error) {
	path := os.Getenv("OUTPASS_CONFIG")
	if path == "" {
		return Default(), nil
	}
	return LoadFile(path)
}

// LoadFile reads a YAML configuration file over Default, applies the
// environment section and expands ${VAR} references in paths.
func LoadFile(path string) (*Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parsing %s: %w", path, err)
	}
	cfg.applyEnvironmentOverrides()
	cfg.expandVariables()
	return cfg, nil
}

func (c *Config) applyEnvironmentOverrides() {
	var overrides *Overrides
	switch c.Environment {
	case Development:
		overrides = c.Development
	case Staging:
		overrides = c.Staging
	case Production:
		// Production always talks to the compiled-in origins.
		c.API.BaseURL = DefaultAPIURL
		c.API.ContentURL = DefaultContentURL
	}
	if overrides == nil {
		return
	}

	if overrides.API != nil {
		if overrides.API.BaseURL != "" {
			c.API.BaseURL = overrides.API.BaseURL
		}
		if overrides.API.ContentURL != "" {
			c.API.ContentURL = overrides.API.ContentURL
		}
		if overrides.API.Timeout != "" {
			c.API.Timeout = overrides.API.Timeout
		}
	}
	if overrides.Store != nil {
		if overrides.Store.Backend != "" {
			c.Store.Backend = overrides.Store.Backend
		}
		if overrides.Store.StateDir != "" {
			c.Store.StateDir = overrides.Store.StateDir
		}
		if overrides.Store.Path != "" {
			c.Store.Path = overrides.Store.Path
		}
		if overrides.Store.IdentityPath != "" {
			c.Store.IdentityPath = overrides.Store.IdentityPath
		}
	}
	if overrides.Log != nil && overrides.Log.Level != "" {
		c.Log.Level = overrides.Log.Level
	}
}

func (c *Config) expandVariables() {
	vars := map[string]string{
		"HOME":              os.Getenv("HOME"),
		"OUTPASS_STATE_DIR": c.Store.StateDir,
	}
	c.Store.StateDir = expandVars(c.Store.StateDir, vars)
	vars["OUTPASS_STATE_DIR"] = c.Store.StateDir
	c.Store.Path = expandVars(c.Store.Path, vars)
	c.Store.IdentityPath = expandVars(c.Store.IdentityPath, vars)
}

var varPattern = regexp.MustCompile(`\$\{([^}:]+)(?::-([^}]*))?\}`)

// expandVars replaces ${VAR} and ${VAR:-default}, consulting vars before
// the process environment.
func expandVars(s string, vars map[string]string) string {
	return varPattern.ReplaceAllStringFunc(s, func(match string) string {
		parts := varPattern.FindStringSubmatch(match)
		name := parts[1]
		if value, ok := vars[name]; ok && value != "" {
			return value
		}
		if value := os.Getenv(name); value != "" {
			return value
		}
		return parts[2]
	})
}

// StorePath returns the credential store location for the configured
// backend.
func (c *Config) StorePath() string {
	if c.Store.Path != "" {
		return c.Store.Path
	}
	switch c.Store.Backend {
	case BackendSealed:
		return filepath.Join(c.Store.StateDir, "credentials.age")
	case BackendSQLite:
		return filepath.Join(c.Store.StateDir, "credentials.db")
	default:
		return filepath.Join(c.Store.StateDir, "credentials.json")
	}
}

// IdentityPath returns the sealing identity location.
func (c *Config) IdentityPath() string {
	if c.Store.IdentityPath != "" {
		return c.Store.IdentityPath
	}
	return filepath.Join(c.Store.StateDir, "identity")
}

// RequestTimeout parses API.Timeout.
func (c *Config) RequestTimeout() (time.Duration, error) {
	timeout, err := time.ParseDuration(c.API.Timeout)
	if err != nil {
		return 0, fmt.Errorf("config: api.timeout: %w", err)
	}
	return timeout, nil
}

// Validate reports every problem found, joined.
func (c *Config) Validate() error {
	var errs []error

	if !slices.Contains([]Environment{Development, Staging, Production}, c.Environment) {
		errs = append(errs, fmt.Errorf("invalid environment: %q", c.Environment))
	}
	if c.API.BaseURL == "" {
		errs = append(errs, errors.New("api.base_url is required"))
	}
	if c.API.ContentURL == "" {
		errs = append(errs, errors.New("api.content_url is required"))
	}
	if timeout, err := c.RequestTimeout(); err != nil {
		errs = append(errs, err)
	} else if timeout <= 0 {
		errs = append(errs, fmt.Errorf("api.timeout must be positive, got %s", timeout))
	}
	backends := []string{BackendFile, BackendSealed, BackendSQLite, BackendMemory}
	if !slices.Contains(backends, c.Store.Backend) {
		errs = append(errs, fmt.Errorf("store.backend must be one of %v, got %q", backends, c.Store.Backend))
	}
	if c.Store.Backend != BackendMemory && c.Store.StateDir == "" && c.Store.Path == "" {
		errs = append(errs, errors.New("store.state_dir or store.path is required"))
	}
	levels := []string{"debug", "info", "warn", "error"}
	if !slices.Contains(levels, c.Log.Level) {
		errs = append(errs, fmt.Errorf("log.level must be one of %v, got %q", levels, c.Log.Level))
	}

	return errors.Join(errs...)
}
