// Copyright (C) 2025 Notedrop Labs (oss@notedrop.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package main

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Note is one record in the store.
//
// The store itself never inspects these fields; this shape belongs to
// the CLI and any other frontend sharing the same file.
type Note struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Body      string    `json:"body,omitempty"`
	Tags      []string  `json:"tags,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewNote builds a note with a fresh identity and timestamps.
func NewNote(title, body string, tags []string) Note {
	now := time.Now().UTC()
	return Note{
		ID:        uuid.NewString(),
		Title:     title,
		Body:      body,
		Tags:      tags,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// matchesPrefix reports whether the note's ID starts with prefix,
// allowing short IDs on the command line.
func (n Note) matchesPrefix(prefix string) bool {
	return prefix != "" && strings.HasPrefix(n.ID, prefix)
}

// hasTag reports whether the note carries the given tag.
func (n Note) hasTag(tag string) bool {
	for _, t := range n.Tags {
		if t == tag {
			return true
		}
	}
	return false
}
