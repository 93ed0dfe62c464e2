// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "threads.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("writing config: %v", err)
	}
	return path
}

func TestLoadFile(t *testing.T) {
	path := writeConfig(t, `
store:
  path: /var/lib/threads/events
  compression: lz4
session:
  user_id: "@me:example.org"
log_level: debug
`)
	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if cfg.Store.Path != "/var/lib/threads/events" {
		t.Errorf("store path = %q", cfg.Store.Path)
	}
	if cfg.Store.Compression != "lz4" {
		t.Errorf("compression = %q", cfg.Store.Compression)
	}
	if cfg.Session.UserID != "@me:example.org" {
		t.Errorf("user ID = %q", cfg.Session.UserID)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("log level = %q", cfg.LogLevel)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}
}

func TestLoadFileDefaults(t *testing.T) {
	path := writeConfig(t, `
session:
  user_id: "@me:example.org"
`)
	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if cfg.Store.Compression != "zstd" {
		t.Errorf("default compression = %q, want zstd", cfg.Store.Compression)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("default log level = %q, want info", cfg.LogLevel)
	}
	if cfg.Store.Path != "" {
		t.Errorf("default store path = %q, want in-memory", cfg.Store.Path)
	}
}

func TestLoadFileExpandsVariables(t *testing.T) {
	t.Setenv("THREADS_DATA", "/srv/threads")
	path := writeConfig(t, `
store:
  path: ${THREADS_DATA}/events
session:
  user_id: "@me:example.org"
`)
	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if cfg.Store.Path != "/srv/threads/events" {
		t.Errorf("expanded path = %q", cfg.Store.Path)
	}

	t.Run("default value", func(t *testing.T) {
		path := writeConfig(t, `
store:
  path: ${THREADS_UNSET_VAR:-/tmp/threads}/events
session:
  user_id: "@me:example.org"
`)
		cfg, err := LoadFile(path)
		if err != nil {
			t.Fatalf("LoadFile: %v", err)
		}
		if cfg.Store.Path != "/tmp/threads/events" {
			t.Errorf("expanded path = %q", cfg.Store.Path)
		}
	})
}

func TestLoadRequiresEnvironmentVariable(t *testing.T) {
	t.Setenv("THREADS_CONFIG", "")
	if _, err := Load(); err == nil {
		t.Fatal("Load succeeded without THREADS_CONFIG")
	}

	t.Run("set", func(t *testing.T) {
		path := writeConfig(t, `
session:
  user_id: "@me:example.org"
`)
		t.Setenv("THREADS_CONFIG", path)
		if _, err := Load(); err != nil {
			t.Errorf("Load: %v", err)
		}
	})
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:    "bad compression",
			mutate:  func(c *Config) { c.Store.Compression = "gzip" },
			wantErr: "store.compression",
		},
		{
			name:    "bad log level",
			mutate:  func(c *Config) { c.LogLevel = "trace" },
			wantErr: "log_level",
		},
		{
			name:    "missing user ID",
			mutate:  func(c *Config) { c.Session.UserID = "" },
			wantErr: "session.user_id",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			cfg.Session.UserID = "@me:example.org"
			tc.mutate(cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("Validate accepted invalid config")
			}
			if !strings.Contains(err.Error(), tc.wantErr) {
				t.Errorf("error %q does not mention %q", err, tc.wantErr)
			}
		})
	}
}

func TestLoadFileMissing(t *testing.T) {
	if _, err := LoadFile(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatal("LoadFile succeeded for a missing file")
	}
}
