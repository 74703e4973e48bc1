// Copyright (C) 2025 Notedrop Labs (oss@notedrop.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package notestore

import (
	"fmt"
	"os"
	"time"
)

// HealthReport is a read-only diagnostic snapshot of one store.
//
// Translatable to a boolean "service healthy" via Healthy() plus
// human-readable warnings for operators.
type HealthReport struct {
	// Exists is true when the primary file is present.
	Exists bool `json:"exists"`

	// Readable is true when the primary file can be opened for reading.
	Readable bool `json:"readable"`

	// Integrity is the checksum verification result.
	Integrity Verification `json:"integrity"`

	// BackupCount is how many snapshots exist for this store.
	BackupCount int `json:"backup_count"`

	// LastModified is the primary file's modification time.
	LastModified time.Time `json:"last_modified"`

	// SizeBytes is the primary file's size.
	SizeBytes int64 `json:"size_bytes"`

	// Warnings carries operator-facing conditions that don't make the
	// store unhealthy on their own (e.g. a live writer lock).
	Warnings []string `json:"warnings,omitempty"`
}

// Healthy reduces the report to a single service-health boolean.
func (r HealthReport) Healthy() bool {
	return r.Exists && r.Readable && r.Integrity.Valid
}

// Health returns a diagnostic snapshot of the store.
//
// # Description
//
// Health never mutates state and never fails: internal errors degrade
// the individual field to its failure default instead of propagating.
//
// # Outputs
//
//   - HealthReport: Current store diagnostics.
func (s *Store[T]) Health() HealthReport {
	var report HealthReport

	info, err := os.Stat(s.path)
	if err == nil {
		report.Exists = true
		report.SizeBytes = info.Size()
		report.LastModified = info.ModTime()

		if f, err := os.Open(s.path); err == nil {
			f.Close()
			report.Readable = true
		}

		report.Integrity = VerifyFile(s.path)
	} else {
		report.Integrity = Verification{Valid: false, Reason: ErrStoreAbsent.Error()}
	}

	if backups, err := s.backups.List(s.path); err == nil {
		report.BackupCount = len(backups)
	}

	if holder := s.locks.Holder(s.path); holder != nil {
		age := time.Since(holder.AcquiredAt)
		if age <= s.cfg.LockTimeout {
			report.Warnings = append(report.Warnings, fmt.Sprintf(
				"write lock held by pid %d on %s for %s",
				holder.PID, holder.HostID, age.Round(time.Millisecond),
			))
		} else {
			report.Warnings = append(report.Warnings, fmt.Sprintf(
				"stale write lock from pid %d, eligible for takeover",
				holder.PID,
			))
		}
	}

	return report
}
