// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package config provides YAML configuration loading for the thread
// tooling.
//
// Configuration is loaded from a single file specified by either the
// THREADS_CONFIG environment variable (via [Load]) or a --config flag
// (via [LoadFile]). There are no fallbacks, no ~/.config discovery,
// and no automatic file search. This ensures deterministic, auditable
// configuration with no hidden overrides.
//
// Variable expansion is performed on path fields after loading:
// ${HOME} and ${VAR:-default} patterns are expanded. No other
// environment variables override config values.
package config

import (
	"errors"
	"fmt"
	"os"
	"regexp"

	"gopkg.in/yaml.v3"
)

// Config is the configuration for the thread tooling.
type Config struct {
	// Store configures the event store backing thread aggregation.
	Store StoreConfig `yaml:"store"`

	// Session identifies the session whose perspective threads are
	// aggregated from.
	Session SessionConfig `yaml:"session"`

	// Room optionally restricts processing to a single room ID.
	Room string `yaml:"room"`

	// LogLevel sets the minimum log level: debug, info, warn, error.
	// Default: info.
	LogLevel string `yaml:"log_level"`
}

// StoreConfig configures the event store.
type StoreConfig struct {
	// Path is the Pebble database directory. Empty selects the
	// in-memory store.
	Path string `yaml:"path"`

	// Compression selects the record compression: none, lz4, zstd.
	// Default: zstd.
	Compression string `yaml:"compression"`
}

// SessionConfig identifies the owning session.
type SessionConfig struct {
	// UserID is the session's own Matrix user ID, used for
	// participation and highlight bookkeeping.
	UserID string `yaml:"user_id"`
}

// Default returns the default configuration. These defaults are a base
// before loading the config file, not a substitute for it.
func Default() *Config {
	return &Config{
		Store: StoreConfig{
			Compression: "zstd",
		},
		LogLevel: "info",
	}
}

// Load loads configuration from the THREADS_CONFIG environment
// variable. There are no fallbacks: if THREADS_CONFIG is not set, this
// fails.
func Load() (*Config, error) {
	path := os.Getenv("THREADS_CONFIG")
	if path == "" {
		return nil, fmt.Errorf("THREADS_CONFIG environment variable not set; " +
			"set it to the path of your threads.yaml config file, or use --config flag")
	}
	return LoadFile(path)
}

// LoadFile loads configuration from a specific file path. The config
// file is the single source of truth; environment variables do not
// override config values. The only expansion performed is ${HOME} and
// similar path variables for portability.
func LoadFile(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	cfg.Store.Path = expandVars(cfg.Store.Path)
	return cfg, nil
}

// expandVars expands ${VAR} and ${VAR:-default} patterns.
var varPattern = regexp.MustCompile(`\$\{([^}:]+)(?::-([^}]*))?\}`)

func expandVars(s string) string {
	return varPattern.ReplaceAllStringFunc(s, func(match string) string {
		parts := varPattern.FindStringSubmatch(match)
		if len(parts) < 2 {
			return match
		}
		if value := os.Getenv(parts[1]); value != "" {
			return value
		}
		if len(parts) >= 3 {
			return parts[2]
		}
		return ""
	})
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	var errs []error

	switch c.Store.Compression {
	case "none", "lz4", "zstd":
	default:
		errs = append(errs, fmt.Errorf("store.compression must be one of: none, lz4, zstd"))
	}

	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("log_level must be one of: debug, info, warn, error"))
	}

	if c.Session.UserID == "" {
		errs = append(errs, fmt.Errorf("session.user_id is required"))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}
