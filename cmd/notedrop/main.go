// Copyright (C) 2025 Notedrop Labs (oss@notedrop.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package main

import (
	"log"
	"os"
	"time"

	"github.com/mattn/go-isatty"

	"github.com/notedrop/notedrop/cmd/notedrop/config"
	"github.com/notedrop/notedrop/pkg/logging"
	"github.com/notedrop/notedrop/pkg/notestore"
)

// logger is the process-wide operational logger, set up in preRun.
var logger *logging.Logger

func main() {
	// Execute the root command. Cobra handles parsing the arguments.
	if err := rootCmd.Execute(); err != nil {
		log.Fatalf("Error executing command: %v", err)
	}
}

// preRun loads the config and wires the logger before any command runs.
func preRun() {
	if err := config.Load(); err != nil {
		log.Fatalf("Error loading config: %v", err)
	}

	logger = logging.New(logging.Config{
		Level:   logging.ParseLevel(config.Global.Logging.Level),
		LogDir:  config.Global.Logging.Dir,
		Service: "notedrop",
		// Structured JSON when piped, human text on a terminal.
		JSON:  !isatty.IsTerminal(os.Stderr.Fd()),
		Quiet: quietMode,
	})
}

// storeConfig maps the file config plus CLI overrides to store tuning.
func storeConfig() notestore.Config {
	cfg := notestore.ConfigForProfile(notestore.Profile(config.Global.Store.Profile))
	if devMode {
		cfg = notestore.DevelopmentConfig()
	}
	if config.Global.Locking.TimeoutSeconds > 0 {
		cfg.LockTimeout = time.Duration(config.Global.Locking.TimeoutSeconds) * time.Second
	}
	if config.Global.Locking.MaxRetries > 0 {
		cfg.LockMaxRetries = config.Global.Locking.MaxRetries
	}
	if config.Global.Backups.MaxBackups > 0 {
		cfg.MaxBackups = config.Global.Backups.MaxBackups
	}
	cfg.Logger = logger
	return cfg
}

// openStore opens the configured note store, with --store overriding
// the configured path.
func openStore() (*notestore.Store[Note], error) {
	path := config.Global.Store.Path
	if storePath != "" {
		path = storePath
	}
	return notestore.Open[Note](path, storeConfig())
}
