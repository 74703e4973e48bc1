// Copyright (C) 2025 Notedrop Labs (oss@notedrop.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package main

import (
	"github.com/spf13/cobra"
)

// --- Global Command Variables ---
var (
	storePath  string // --store override for the configured store path
	jsonOutput bool   // --json structured output for scripting
	quietMode  bool   // --quiet exit-code-only mode
	devMode    bool   // --dev development lock profile (retries enabled)

	noteTags   []string // --tag on notes add / notes list
	noteBody   string   // --body on notes add
	watchMode  bool     // --watch on store health
	pruneOlder string   // --prune-older-than on store backups

	rootCmd = &cobra.Command{
		Use:   "notedrop",
		Short: "A cli to manage a durable single-file note store",
		Long: `Notedrop keeps an ordered collection of notes in one JSON file,
with checksum verification, timestamped backups, and crash-safe
atomic writes. Several processes can share the same store; writes
are serialized through a lock file next to the data.`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			preRun()
		},
	}

	// --- Notes ---
	notesCmd = &cobra.Command{
		Use:   "notes",
		Short: "Read and modify the note collection",
	}
	notesListCmd = &cobra.Command{
		Use:   "list",
		Short: "List all notes, optionally filtered by tag",
		Run:   runNotesList, // Defined in cmd_notes.go
	}
	notesAddCmd = &cobra.Command{
		Use:   "add [title]",
		Short: "Add a note with the given title",
		Args:  cobra.ExactArgs(1),
		Run:   runNotesAdd, // Defined in cmd_notes.go
	}
	notesShowCmd = &cobra.Command{
		Use:   "show [id]",
		Short: "Show one note by ID or unique ID prefix",
		Args:  cobra.ExactArgs(1),
		Run:   runNotesShow, // Defined in cmd_notes.go
	}
	notesRemoveCmd = &cobra.Command{
		Use:     "remove [id]",
		Short:   "Remove a note by ID or unique ID prefix",
		Aliases: []string{"rm"},
		Args:    cobra.ExactArgs(1),
		Run:     runNotesRemove, // Defined in cmd_notes.go
	}

	// --- Store Management ---
	storeCmd = &cobra.Command{
		Use:   "store",
		Short: "Manage the store file itself",
	}
	storeInitCmd = &cobra.Command{
		Use:   "init",
		Short: "Create the store if absent, repairing an unusable one",
		Run:   runStoreInit, // Defined in cmd_store.go
	}
	storeHealthCmd = &cobra.Command{
		Use:   "health",
		Short: "Report store health without modifying anything",
		Run:   runStoreHealth, // Defined in cmd_store.go
	}
	storeVerifyCmd = &cobra.Command{
		Use:   "verify",
		Short: "Check the primary file against its checksum",
		Run:   runStoreVerify, // Defined in cmd_store.go
	}
	storeBackupsCmd = &cobra.Command{
		Use:   "backups",
		Short: "List backups, optionally pruning old ones",
		Run:   runStoreBackups, // Defined in cmd_store.go
	}
	storeRestoreCmd = &cobra.Command{
		Use:   "restore [backup-file]",
		Short: "Replace the store content from a backup file",
		Args:  cobra.ExactArgs(1),
		Run:   runStoreRestore, // Defined in cmd_store.go
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&storePath, "store", "", "Path to the store file (overrides config)")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output as JSON for scripting")
	rootCmd.PersistentFlags().BoolVarP(&quietMode, "quiet", "q", false, "Suppress output, exit code only")
	rootCmd.PersistentFlags().BoolVar(&devMode, "dev", false, "Use the development lock profile (short timeouts, retries)")

	notesListCmd.Flags().StringSliceVar(&noteTags, "tag", nil, "Only notes carrying this tag (repeatable)")
	notesAddCmd.Flags().StringVar(&noteBody, "body", "", "Note body text")
	notesAddCmd.Flags().StringSliceVar(&noteTags, "tag", nil, "Tag to attach (repeatable)")

	storeHealthCmd.Flags().BoolVar(&watchMode, "watch", false, "Keep running and re-report on file changes")
	storeBackupsCmd.Flags().StringVar(&pruneOlder, "prune-older-than", "", "Also delete backups older than this duration (e.g. 72h)")

	notesCmd.AddCommand(notesListCmd, notesAddCmd, notesShowCmd, notesRemoveCmd)
	storeCmd.AddCommand(storeInitCmd, storeHealthCmd, storeVerifyCmd, storeBackupsCmd, storeRestoreCmd)
	rootCmd.AddCommand(notesCmd, storeCmd)
}
