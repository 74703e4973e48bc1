// Copyright (C) 2025 Notedrop Labs (oss@notedrop.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package validation

import (
	"testing"
)

func TestValidateStorePath(t *testing.T) {
	tests := []struct {
		name    string
		path    string
		wantErr bool
	}{
		// Valid paths
		{"absolute", "/var/lib/notedrop/notes.json", false},
		{"relative", "data/notes.json", false},
		{"bare file", "notes.json", false},
		{"dotfile", ".notes.json", false},

		// Invalid paths
		{"empty", "", true},
		{"dot", ".", true},
		{"root", "/", true},
		{"traversal", "../notes.json", true},
		{"deep traversal", "../../etc/passwd", true},
		{"reserved lock suffix", "notes.json.lock", true},
		{"reserved checksum suffix", "notes.json.checksum", true},
		{"reserved tmp suffix", "notes.json.tmp", true},
		{"reserved backup name", "notes.json.backup.2025-01-01", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateStorePath(tt.path)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateStorePath(%q) error = %v, wantErr %v", tt.path, err, tt.wantErr)
			}
		})
	}
}

func TestSanitizeStorePath(t *testing.T) {
	tests := []struct {
		name    string
		path    string
		want    string
		wantErr bool
	}{
		{"already clean", "/data/notes.json", "/data/notes.json", false},
		{"trailing space", " notes.json ", "notes.json", false},
		{"redundant segments", "/data//./notes.json", "/data/notes.json", false},
		{"interior dotdot resolved", "/data/sub/../notes.json", "/data/notes.json", false},
		{"empty", "", "", true},
		{"escaping dotdot", "../notes.json", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := SanitizeStorePath(tt.path)
			if (err != nil) != tt.wantErr {
				t.Fatalf("SanitizeStorePath(%q) error = %v, wantErr %v", tt.path, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("SanitizeStorePath(%q) = %q, want %q", tt.path, got, tt.want)
			}
		})
	}
}
