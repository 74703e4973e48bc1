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
)

type NotedropConfig struct {
	// Store: where the note collection lives on disk
	Store StoreConfig `yaml:"store"`

	// Locking: writer-exclusion tuning
	Locking LockConfig `yaml:"locking"`

	// Backups: snapshot retention
	Backups BackupConfig `yaml:"backups"`

	// Logging: operational log output
	Logging LogConfig `yaml:"logging"`
}

type StoreConfig struct {
	// Path is the primary file, e.g. ~/.notedrop/notes.json
	Path string `yaml:"path" validate:"required"`
	// Profile selects the lock tuning bundle
	Profile string `yaml:"profile" validate:"oneof=production development"`
}

type LockConfig struct {
	// TimeoutSeconds is the stale-lock age; 0 uses the profile default
	TimeoutSeconds int `yaml:"timeout_seconds" validate:"gte=0"`
	MaxRetries     int `yaml:"max_retries" validate:"gte=0,lte=10"`
}

type BackupConfig struct {
	// MaxBackups is how many snapshots are retained per store
	MaxBackups int `yaml:"max_backups" validate:"gte=1,lte=100"`
}

type LogConfig struct {
	Level string `yaml:"level" validate:"oneof=debug info warn error"`
	// Dir empty disables file logging
	Dir string `yaml:"dir"`
}

func DefaultConfig() NotedropConfig {
	storePath := filepath.Join("~", ".notedrop", "notes.json")
	if home, err := os.UserHomeDir(); err == nil {
		storePath = filepath.Join(home, ".notedrop", "notes.json")
	}
	return NotedropConfig{
		Store: StoreConfig{
			Path:    storePath,
			Profile: "production",
		},
		Locking: LockConfig{
			TimeoutSeconds: 0,
			MaxRetries:     0,
		},
		Backups: BackupConfig{
			MaxBackups: 5,
		},
		Logging: LogConfig{
			Level: "info",
			Dir:   "",
		},
	}
}
