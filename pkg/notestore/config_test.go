// Copyright (C) 2025 Notedrop Labs (oss@notedrop.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package notestore

import (
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Profile != ProfileProduction {
		t.Errorf("Profile = %s, want %s", cfg.Profile, ProfileProduction)
	}
	if cfg.LockTimeout != 10*time.Second {
		t.Errorf("LockTimeout = %v, want 10s", cfg.LockTimeout)
	}
	if cfg.LockMaxRetries != 0 {
		t.Errorf("LockMaxRetries = %d, want 0", cfg.LockMaxRetries)
	}
	if cfg.LockRetryBaseDelay != 200*time.Millisecond {
		t.Errorf("LockRetryBaseDelay = %v, want 200ms", cfg.LockRetryBaseDelay)
	}
	if cfg.MaxBackups != 5 {
		t.Errorf("MaxBackups = %d, want 5", cfg.MaxBackups)
	}
}

func TestDevelopmentConfig(t *testing.T) {
	cfg := DevelopmentConfig()

	if cfg.Profile != ProfileDevelopment {
		t.Errorf("Profile = %s, want %s", cfg.Profile, ProfileDevelopment)
	}
	if cfg.LockTimeout != 2*time.Second {
		t.Errorf("LockTimeout = %v, want 2s", cfg.LockTimeout)
	}
	if cfg.LockMaxRetries != 3 {
		t.Errorf("LockMaxRetries = %d, want 3", cfg.LockMaxRetries)
	}
}

func TestConfigForProfile(t *testing.T) {
	tests := []struct {
		name    string
		profile Profile
		want    Profile
	}{
		{"production", ProfileProduction, ProfileProduction},
		{"development", ProfileDevelopment, ProfileDevelopment},
		{"unknown falls back to production", Profile("staging"), ProfileProduction},
		{"empty falls back to production", Profile(""), ProfileProduction},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ConfigForProfile(tt.profile); got.Profile != tt.want {
				t.Errorf("ConfigForProfile(%q).Profile = %s, want %s", tt.profile, got.Profile, tt.want)
			}
		})
	}
}

func TestConfig_withDefaults(t *testing.T) {
	cfg := Config{}.withDefaults()

	if cfg.Profile != ProfileProduction {
		t.Errorf("Profile = %s, want %s", cfg.Profile, ProfileProduction)
	}
	if cfg.LockTimeout != DefaultLockTimeout {
		t.Errorf("LockTimeout = %v, want %v", cfg.LockTimeout, DefaultLockTimeout)
	}
	if cfg.MaxBackups != DefaultMaxBackups {
		t.Errorf("MaxBackups = %d, want %d", cfg.MaxBackups, DefaultMaxBackups)
	}
	if cfg.Logger == nil {
		t.Error("Logger should default to the package default logger")
	}

	// Explicit values survive.
	custom := Config{LockTimeout: time.Minute, MaxBackups: 9}.withDefaults()
	if custom.LockTimeout != time.Minute {
		t.Errorf("explicit LockTimeout overridden: %v", custom.LockTimeout)
	}
	if custom.MaxBackups != 9 {
		t.Errorf("explicit MaxBackups overridden: %d", custom.MaxBackups)
	}
}
