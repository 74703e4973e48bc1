// Copyright (C) 2025 Notedrop Labs (oss@notedrop.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package validation provides input validation utilities for security-critical operations.
//
// This package contains validators for user-provided inputs that are used in
// file paths or subprocess calls. Using these validators prevents injection
// attacks (command injection, path traversal).
package validation

import (
	"fmt"
	"path/filepath"
	"strings"
)

// ValidateStorePath validates a primary store path before any file operation.
//
// Valid paths:
//   - Non-empty
//   - No ".." traversal segments after cleaning
//   - Not a bare directory separator
//
// The path does not need to exist; the store creates it on first write.
//
// Returns an error if the path is invalid.
//
// Example:
//
//	if err := validation.ValidateStorePath(path); err != nil {
//	    return nil, fmt.Errorf("invalid store path: %w", err)
//	}
func ValidateStorePath(path string) error {
	if path == "" {
		return fmt.Errorf("store path cannot be empty")
	}

	cleaned := filepath.Clean(path)
	if cleaned == "." || cleaned == string(filepath.Separator) {
		return fmt.Errorf("store path %q does not name a file", path)
	}

	// Reject traversal that escapes the configured data directory. A cleaned
	// path still starting with ".." was pointed outside its base.
	if cleaned == ".." || strings.HasPrefix(cleaned, ".."+string(filepath.Separator)) {
		return fmt.Errorf("path traversal detected in %q", path)
	}

	// The sidecar suffixes are reserved for the store's own files.
	base := filepath.Base(cleaned)
	for _, suffix := range []string{".lock", ".checksum", ".tmp"} {
		if strings.HasSuffix(base, suffix) {
			return fmt.Errorf("store path %q uses reserved suffix %q", path, suffix)
		}
	}
	if strings.Contains(base, ".backup.") {
		return fmt.Errorf("store path %q uses reserved backup naming", path)
	}

	return nil
}

// SanitizeStorePath cleans and validates a store path.
// Returns the cleaned path if valid, or an error if invalid.
//
// Use this when you need both validation and normalization:
//
//	safePath, err := validation.SanitizeStorePath(userInput)
//	if err != nil {
//	    return err
//	}
func SanitizeStorePath(path string) (string, error) {
	cleaned := filepath.Clean(strings.TrimSpace(path))
	if err := ValidateStorePath(cleaned); err != nil {
		return "", err
	}
	return cleaned, nil
}
