// Copyright (C) 2025 Notedrop Labs (oss@notedrop.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package notestore

import (
	"crypto/sha256"
	"encoding/hex"
	"os"
	"strings"
)

// Sidecar and staging suffixes, relative to the primary path.
const (
	ChecksumSuffix = ".checksum"
	LockSuffix     = ".lock"
	TempSuffix     = ".tmp"
	BackupSuffix   = ".backup"
)

// Digest returns the SHA-256 hex digest of data.
//
// The digest covers the exact byte content; any serialization change,
// however cosmetic, produces a different digest.
func Digest(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// Verification is the result of comparing a file against its checksum sidecar.
//
// The checksum sidecar is the sole source of truth for "is the primary file
// intact": it guards byte integrity, not schema. A file can verify cleanly
// and still hold JSON the caller cannot parse.
type Verification struct {
	// Valid is true when the file digest matches the sidecar.
	Valid bool `json:"valid"`

	// Reason explains the failure when Valid is false.
	Reason string `json:"reason,omitempty"`
}

// VerifyFile compares path's content against its checksum sidecar.
//
// # Description
//
// Reads path and path+".checksum" and compares digests. A missing sidecar
// reports invalid with reason "missing checksum"; a read error reports
// invalid with the underlying error text. VerifyFile has no side effects.
//
// # Inputs
//
//   - path: The primary file to verify.
//
// # Outputs
//
//   - Verification: Match result and failure reason.
func VerifyFile(path string) Verification {
	data, err := os.ReadFile(path)
	if err != nil {
		return Verification{Valid: false, Reason: err.Error()}
	}

	sidecar, err := os.ReadFile(path + ChecksumSuffix)
	if err != nil {
		if os.IsNotExist(err) {
			return Verification{Valid: false, Reason: ErrChecksumMissing.Error()}
		}
		return Verification{Valid: false, Reason: err.Error()}
	}

	if Digest(data) != strings.TrimSpace(string(sidecar)) {
		return Verification{Valid: false, Reason: ErrChecksumMismatch.Error()}
	}

	return Verification{Valid: true}
}
