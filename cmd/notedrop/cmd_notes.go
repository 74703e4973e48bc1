// Copyright (C) 2025 Notedrop Labs (oss@notedrop.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/notedrop/notedrop/pkg/notestore"
)

// =============================================================================
// NOTES COMMANDS
// =============================================================================

// runNotesList lists the collection, honoring --tag filters.
func runNotesList(cmd *cobra.Command, args []string) {
	store, err := openStore()
	if err != nil {
		OutputError("notes list", "opening store", err)
	}

	notes, err := store.Read(context.Background())
	if err != nil {
		if errors.Is(err, notestore.ErrStoreAbsent) {
			notes = []Note{}
		} else {
			OutputError("notes list", "reading store", err)
		}
	}

	if len(noteTags) > 0 {
		filtered := notes[:0]
		for _, n := range notes {
			for _, tag := range noteTags {
				if n.hasTag(tag) {
					filtered = append(filtered, n)
					break
				}
			}
		}
		notes = filtered
	}

	OutputResult("notes list", notes)
	if jsonOutput || quietMode {
		return
	}
	if len(notes) == 0 {
		fmt.Println("No notes.")
		return
	}
	for _, n := range notes {
		line := fmt.Sprintf("%-8s  %s", shortID(n.ID), n.Title)
		if len(n.Tags) > 0 {
			line += "  [" + strings.Join(n.Tags, ", ") + "]"
		}
		fmt.Println(line)
	}
}

// runNotesAdd appends a note through the read-mutate-write cycle.
func runNotesAdd(cmd *cobra.Command, args []string) {
	store, err := openStore()
	if err != nil {
		OutputError("notes add", "opening store", err)
	}
	ctx := context.Background()

	notes, err := store.EnsureInitialized(ctx, []Note{})
	if err != nil {
		OutputError("notes add", "initializing store", err)
	}

	note := NewNote(args[0], noteBody, noteTags)
	notes = append(notes, note)

	if err := store.Write(ctx, notes); err != nil {
		var held *notestore.LockHeldError
		if errors.As(err, &held) && held.Holder != nil {
			OutputError("notes add", fmt.Sprintf("store is locked by pid %d", held.Holder.PID), err)
		}
		OutputError("notes add", "writing store", err)
	}

	OutputResult("notes add", note)
	if !jsonOutput && !quietMode {
		fmt.Printf("Added %s  %s\n", shortID(note.ID), note.Title)
	}
}

// runNotesShow prints one note, matched by full ID or unique prefix.
func runNotesShow(cmd *cobra.Command, args []string) {
	store, err := openStore()
	if err != nil {
		OutputError("notes show", "opening store", err)
	}

	notes, err := store.Read(context.Background())
	if err != nil {
		OutputError("notes show", "reading store", err)
	}

	note, err := findNote(notes, args[0])
	if err != nil {
		OutputError("notes show", "finding note", err)
	}

	OutputResult("notes show", note)
	if jsonOutput || quietMode {
		return
	}
	fmt.Printf("ID:      %s\n", note.ID)
	fmt.Printf("Title:   %s\n", note.Title)
	if len(note.Tags) > 0 {
		fmt.Printf("Tags:    %s\n", strings.Join(note.Tags, ", "))
	}
	fmt.Printf("Created: %s\n", note.CreatedAt.Local().Format("2006-01-02 15:04"))
	fmt.Printf("Updated: %s\n", note.UpdatedAt.Local().Format("2006-01-02 15:04"))
	if note.Body != "" {
		fmt.Printf("\n%s\n", note.Body)
	}
}

// runNotesRemove deletes one note through the read-mutate-write cycle.
func runNotesRemove(cmd *cobra.Command, args []string) {
	store, err := openStore()
	if err != nil {
		OutputError("notes remove", "opening store", err)
	}
	ctx := context.Background()

	notes, err := store.Read(ctx)
	if err != nil {
		OutputError("notes remove", "reading store", err)
	}

	note, err := findNote(notes, args[0])
	if err != nil {
		OutputError("notes remove", "finding note", err)
	}

	remaining := make([]Note, 0, len(notes)-1)
	for _, n := range notes {
		if n.ID != note.ID {
			remaining = append(remaining, n)
		}
	}

	if err := store.Write(ctx, remaining); err != nil {
		OutputError("notes remove", "writing store", err)
	}

	OutputResult("notes remove", note)
	if !jsonOutput && !quietMode {
		fmt.Printf("Removed %s  %s\n", shortID(note.ID), note.Title)
	}
}

// findNote resolves a full ID or unique prefix against the collection.
func findNote(notes []Note, id string) (Note, error) {
	var matches []Note
	for _, n := range notes {
		if n.ID == id {
			return n, nil
		}
		if n.matchesPrefix(id) {
			matches = append(matches, n)
		}
	}
	switch len(matches) {
	case 1:
		return matches[0], nil
	case 0:
		return Note{}, fmt.Errorf("no note with id %q", id)
	default:
		return Note{}, fmt.Errorf("id prefix %q matches %d notes, be more specific", id, len(matches))
	}
}

// shortID returns the leading segment of a UUID for display.
func shortID(id string) string {
	if i := strings.IndexByte(id, '-'); i > 0 {
		return id[:i]
	}
	return id
}
