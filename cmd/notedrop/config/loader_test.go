// Copyright (C) 2025 Notedrop Labs (oss@notedrop.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadInternal_CreatesDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".notedrop", "notedrop.yaml")

	if err := loadInternal(path); err != nil {
		t.Fatalf("loadInternal failed: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("default config file was not created: %v", err)
	}
	if Global.Store.Profile != "production" {
		t.Errorf("Profile = %s, want production", Global.Store.Profile)
	}
	if Global.Backups.MaxBackups != 5 {
		t.Errorf("MaxBackups = %d, want 5", Global.Backups.MaxBackups)
	}
}

func TestLoadInternal_PartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notedrop.yaml")
	content := []byte("backups:\n  max_backups: 9\n")
	if err := os.WriteFile(path, content, 0644); err != nil {
		t.Fatalf("writing config: %v", err)
	}

	if err := loadInternal(path); err != nil {
		t.Fatalf("loadInternal failed: %v", err)
	}
	if Global.Backups.MaxBackups != 9 {
		t.Errorf("MaxBackups = %d, want 9", Global.Backups.MaxBackups)
	}
	if Global.Store.Profile != "production" {
		t.Errorf("unset Profile = %s, want default production", Global.Store.Profile)
	}
}

func TestLoadInternal_RejectsInvalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"bad profile", "store:\n  path: /tmp/notes.json\n  profile: staging\n"},
		{"zero backups", "backups:\n  max_backups: 0\n"},
		{"bad log level", "logging:\n  level: trace\n"},
		{"malformed yaml", "store: [unclosed\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "notedrop.yaml")
			if err := os.WriteFile(path, []byte(tt.content), 0644); err != nil {
				t.Fatalf("writing config: %v", err)
			}
			if err := loadInternal(path); err == nil {
				t.Error("expected an error for invalid config")
			}
		})
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.Store.Path == "" {
		t.Error("default store path should not be empty")
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("default log level = %s, want info", cfg.Logging.Level)
	}
}
