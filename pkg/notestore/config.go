// Copyright (C) 2025 Notedrop Labs (oss@notedrop.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package notestore

import (
	"time"

	"github.com/notedrop/notedrop/pkg/logging"
)

// Profile selects a deployment-mode behavior bundle for the store.
type Profile string

const (
	// ProfileProduction fails fast on contention: long stale-lock
	// timeout, no retries. The caller decides how to retry.
	ProfileProduction Profile = "production"

	// ProfileDevelopment is permissive: short stale-lock timeout and
	// a few retries with backoff, convenient for local iteration.
	ProfileDevelopment Profile = "development"
)

// Default tuning values, per profile.
const (
	DefaultLockTimeout    = 10 * time.Second
	DefaultRetryBaseDelay = 200 * time.Millisecond
	DefaultMaxBackups     = 5

	developmentLockTimeout = 2 * time.Second
	developmentMaxRetries  = 3
)

// Config configures a Store.
//
// # Description
//
// Config is an explicit construction-time struct: the store never reads
// the process environment at call sites. Zero values are filled in with
// the production-profile defaults.
//
// # Example
//
//	cfg := notestore.DevelopmentConfig()
//	cfg.MaxBackups = 10
//	store, err := notestore.Open[Note](path, cfg)
type Config struct {
	// Profile names the behavior bundle this config was derived from.
	// Informational; the timing fields below are what the store obeys.
	Profile Profile

	// LockTimeout is the age past which a lock file is considered
	// abandoned and eligible for takeover.
	// Default: 10s (production), 2s (development)
	LockTimeout time.Duration

	// LockMaxRetries is how many times Acquire retries after finding a
	// live lock. Zero fails immediately with the holder's identity.
	// Default: 0 (production), 3 (development)
	LockMaxRetries int

	// LockRetryBaseDelay seeds the exponential backoff between retries
	// (delay = base * 2^attempt).
	// Default: 200ms
	LockRetryBaseDelay time.Duration

	// MaxBackups is how many timestamped snapshots to retain per path.
	// Default: 5
	MaxBackups int

	// Logger receives operational detail (recoveries, stale takeovers,
	// swallowed backup failures). Default: logging.Default().
	Logger *logging.Logger

	// Metrics receives operation counters. Nil disables instrumentation.
	Metrics *Metrics
}

// DefaultConfig returns the production profile: fail fast on contention.
func DefaultConfig() Config {
	return Config{
		Profile:            ProfileProduction,
		LockTimeout:        DefaultLockTimeout,
		LockMaxRetries:     0,
		LockRetryBaseDelay: DefaultRetryBaseDelay,
		MaxBackups:         DefaultMaxBackups,
	}
}

// DevelopmentConfig returns the permissive profile: short stale timeout,
// retries enabled.
func DevelopmentConfig() Config {
	return Config{
		Profile:            ProfileDevelopment,
		LockTimeout:        developmentLockTimeout,
		LockMaxRetries:     developmentMaxRetries,
		LockRetryBaseDelay: DefaultRetryBaseDelay,
		MaxBackups:         DefaultMaxBackups,
	}
}

// ConfigForProfile maps a deployment-mode flag to its config bundle.
// Unrecognized profiles get the production bundle.
func ConfigForProfile(profile Profile) Config {
	if profile == ProfileDevelopment {
		return DevelopmentConfig()
	}
	return DefaultConfig()
}

// withDefaults fills zero-valued fields with production defaults.
func (c Config) withDefaults() Config {
	if c.Profile == "" {
		c.Profile = ProfileProduction
	}
	if c.LockTimeout <= 0 {
		c.LockTimeout = DefaultLockTimeout
	}
	if c.LockRetryBaseDelay <= 0 {
		c.LockRetryBaseDelay = DefaultRetryBaseDelay
	}
	if c.MaxBackups <= 0 {
		c.MaxBackups = DefaultMaxBackups
	}
	if c.Logger == nil {
		c.Logger = logging.Default()
	}
	return c
}
