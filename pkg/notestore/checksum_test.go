// Copyright (C) 2025 Notedrop Labs (oss@notedrop.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package notestore

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDigest(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want string
	}{
		{
			name: "empty",
			data: []byte{},
			want: "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855",
		},
		{
			name: "hello",
			data: []byte("hello"),
			want: "2cf24dba5fb0a30e26e83b2ac5b9e29e1b161e5c1fa7425e73043362938b9824",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Digest(tt.data)
			if got != tt.want {
				t.Errorf("Digest() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestDigest_Deterministic(t *testing.T) {
	data := []byte(`[{"id":"1","title":"a"}]`)
	if Digest(data) != Digest(data) {
		t.Error("Digest should be deterministic")
	}
	if Digest(data) == Digest(append(data, ' ')) {
		t.Error("Digest should change for any byte change")
	}
}

func TestVerifyFile_Valid(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "notes.json")
	content := []byte(`[{"id":"1"}]`)

	if err := os.WriteFile(path, content, 0644); err != nil {
		t.Fatalf("writing primary: %v", err)
	}
	if err := os.WriteFile(path+ChecksumSuffix, []byte(Digest(content)), 0644); err != nil {
		t.Fatalf("writing checksum: %v", err)
	}

	v := VerifyFile(path)
	if !v.Valid {
		t.Errorf("VerifyFile = invalid (%s), want valid", v.Reason)
	}
	if v.Reason != "" {
		t.Errorf("valid result should carry no reason, got %q", v.Reason)
	}
}

func TestVerifyFile_MissingChecksum(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "notes.json")

	if err := os.WriteFile(path, []byte("[]"), 0644); err != nil {
		t.Fatalf("writing primary: %v", err)
	}

	v := VerifyFile(path)
	if v.Valid {
		t.Error("VerifyFile should be invalid without a checksum sidecar")
	}
	if !strings.Contains(v.Reason, "missing checksum") {
		t.Errorf("Reason = %q, want it to mention the missing checksum", v.Reason)
	}
}

func TestVerifyFile_Mismatch(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "notes.json")

	if err := os.WriteFile(path, []byte("[]"), 0644); err != nil {
		t.Fatalf("writing primary: %v", err)
	}
	if err := os.WriteFile(path+ChecksumSuffix, []byte(Digest([]byte("tampered"))), 0644); err != nil {
		t.Fatalf("writing checksum: %v", err)
	}

	v := VerifyFile(path)
	if v.Valid {
		t.Error("VerifyFile should detect a digest mismatch")
	}
}

func TestVerifyFile_MissingPrimary(t *testing.T) {
	v := VerifyFile(filepath.Join(t.TempDir(), "does-not-exist.json"))
	if v.Valid {
		t.Error("VerifyFile should be invalid for a missing file")
	}
	if v.Reason == "" {
		t.Error("invalid result should carry a reason")
	}
}

func TestVerifyFile_TrailingWhitespaceInSidecar(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "notes.json")
	content := []byte("[]")

	if err := os.WriteFile(path, content, 0644); err != nil {
		t.Fatalf("writing primary: %v", err)
	}
	// Hand-edited sidecars often gain a trailing newline.
	if err := os.WriteFile(path+ChecksumSuffix, []byte(Digest(content)+"\n"), 0644); err != nil {
		t.Fatalf("writing checksum: %v", err)
	}

	if v := VerifyFile(path); !v.Valid {
		t.Errorf("VerifyFile should tolerate trailing whitespace, got invalid (%s)", v.Reason)
	}
}
