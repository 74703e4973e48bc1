// Copyright (C) 2025 Notedrop Labs (oss@notedrop.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/notedrop/notedrop/pkg/notestore"
)

// =============================================================================
// STORE COMMANDS
// =============================================================================

// runStoreInit makes sure a usable store exists, creating or repairing
// as needed.
func runStoreInit(cmd *cobra.Command, args []string) {
	store, err := openStore()
	if err != nil {
		OutputError("store init", "opening store", err)
	}

	notes, err := store.EnsureInitialized(context.Background(), []Note{})
	if err != nil {
		OutputError("store init", "initializing store", err)
	}

	OutputResult("store init", map[string]interface{}{
		"path":  store.Path(),
		"notes": len(notes),
	})
	if !jsonOutput && !quietMode {
		fmt.Printf("Store ready at %s (%d notes)\n", store.Path(), len(notes))
	}
}

// runStoreHealth reports health once, or continuously with --watch.
func runStoreHealth(cmd *cobra.Command, args []string) {
	store, err := openStore()
	if err != nil {
		OutputError("store health", "opening store", err)
	}

	report := store.Health()
	emitHealth(store, report)

	if !watchMode {
		if !report.Healthy() {
			os.Exit(CLIExitFindings)
		}
		return
	}

	watcher, err := store.Watch()
	if err != nil {
		OutputError("store health", "starting watcher", err)
	}
	defer watcher.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	for {
		select {
		case <-ctx.Done():
			return
		case _, ok := <-watcher.Events():
			if !ok {
				return
			}
			emitHealth(store, store.Health())
		}
	}
}

func emitHealth(store *notestore.Store[Note], report notestore.HealthReport) {
	OutputResult("store health", report)
	if jsonOutput || quietMode {
		return
	}

	status := "healthy"
	if !report.Healthy() {
		status = "unhealthy"
	}
	fmt.Printf("%s: %s\n", store.Path(), status)
	fmt.Printf("  exists:    %v\n", report.Exists)
	fmt.Printf("  readable:  %v\n", report.Readable)
	fmt.Printf("  integrity: %v", report.Integrity.Valid)
	if !report.Integrity.Valid && report.Integrity.Reason != "" {
		fmt.Printf(" (%s)", report.Integrity.Reason)
	}
	fmt.Println()
	fmt.Printf("  backups:   %d\n", report.BackupCount)
	if report.Exists {
		fmt.Printf("  size:      %d bytes\n", report.SizeBytes)
		fmt.Printf("  modified:  %s\n", report.LastModified.Local().Format(time.RFC3339))
	}
	for _, w := range report.Warnings {
		fmt.Printf("  warning:   %s\n", w)
	}
}

// runStoreVerify checks the checksum without touching anything else.
func runStoreVerify(cmd *cobra.Command, args []string) {
	store, err := openStore()
	if err != nil {
		OutputError("store verify", "opening store", err)
	}

	v := notestore.VerifyFile(store.Path())
	OutputResult("store verify", v)
	if !jsonOutput && !quietMode {
		if v.Valid {
			fmt.Printf("%s: checksum OK\n", store.Path())
		} else {
			fmt.Printf("%s: checksum FAILED (%s)\n", store.Path(), v.Reason)
		}
	}
	if !v.Valid {
		os.Exit(CLIExitFindings)
	}
}

// runStoreBackups lists backups and optionally prunes by age.
func runStoreBackups(cmd *cobra.Command, args []string) {
	store, err := openStore()
	if err != nil {
		OutputError("store backups", "opening store", err)
	}

	mgr := notestore.NewBackupManager(storeConfig().MaxBackups, logger)

	if pruneOlder != "" {
		maxAge, err := time.ParseDuration(pruneOlder)
		if err != nil {
			OutputError("store backups", "parsing --prune-older-than", err)
		}
		removed, err := mgr.CleanOld(store.Path(), maxAge)
		if err != nil {
			OutputError("store backups", "pruning backups", err)
		}
		if !jsonOutput && !quietMode && removed > 0 {
			fmt.Printf("Removed %d backups older than %s\n", removed, maxAge)
		}
	}

	backups, err := mgr.List(store.Path())
	if err != nil {
		OutputError("store backups", "listing backups", err)
	}

	OutputResult("store backups", backups)
	if jsonOutput || quietMode {
		return
	}
	if len(backups) == 0 {
		fmt.Println("No backups.")
		return
	}
	for _, b := range backups {
		fmt.Printf("%s  %8d bytes  %s\n",
			b.CreatedAt.Local().Format(time.RFC3339), b.Size, b.Path)
	}
}

// runStoreRestore replaces the collection from a backup file, routed
// through the atomic write path so a fresh snapshot of the current
// state is taken first.
func runStoreRestore(cmd *cobra.Command, args []string) {
	store, err := openStore()
	if err != nil {
		OutputError("store restore", "opening store", err)
	}

	data, err := os.ReadFile(args[0])
	if err != nil {
		OutputError("store restore", "reading backup file", err)
	}

	var notes []Note
	if err := json.Unmarshal(data, &notes); err != nil {
		OutputError("store restore", "parsing backup file", err)
	}

	if err := store.Write(context.Background(), notes); err != nil {
		OutputError("store restore", "writing store", err)
	}

	OutputResult("store restore", map[string]interface{}{
		"source": args[0],
		"notes":  len(notes),
	})
	if !jsonOutput && !quietMode {
		fmt.Printf("Restored %d notes from %s\n", len(notes), args[0])
	}
}
