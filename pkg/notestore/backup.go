// Copyright (C) 2025 Notedrop Labs (oss@notedrop.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package notestore

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/notedrop/notedrop/pkg/logging"
)

// backupTimeFormat renders an ISO8601 UTC timestamp with colons replaced
// by dashes, keeping backup names portable across filesystems.
const backupTimeFormat = "2006-01-02T15-04-05.000Z0700"

// BackupInfo describes one point-in-time snapshot of a primary file.
type BackupInfo struct {
	// Path is the full path to the backup file.
	Path string

	// OriginalPath is the primary file that was snapshotted.
	OriginalPath string

	// CreatedAt is the snapshot's modification time, which orders
	// backups for recovery and pruning.
	CreatedAt time.Time

	// Size is the backup size in bytes.
	Size int64
}

// BackupManager defines snapshot and retention operations for a primary file.
//
// # Thread Safety
//
// Implementations must be safe for concurrent use.
type BackupManager interface {
	// Snapshot copies the primary file to a timestamped backup.
	// An absent primary returns ("", nil): nothing to back up.
	Snapshot(path string) (backupPath string, err error)

	// List returns all backups for a primary path, newest first.
	List(path string) ([]BackupInfo, error)

	// Prune deletes backups beyond the retention count, oldest first.
	// Returns how many were removed.
	Prune(path string) (int, error)

	// CleanOld removes backups older than maxAge. Returns how many
	// were removed.
	CleanOld(path string, maxAge time.Duration) (int, error)
}

// FileBackupManager implements BackupManager with sibling files named
// <primary>.backup.<timestamp>.
//
// # Description
//
// Snapshot failures are reported to the caller, who treats them as
// non-fatal: a missing backup degrades recovery capability but must not
// block normal writes. Per-file deletion failures during pruning are
// logged and swallowed so one bad file does not block the rest.
//
// # Thread Safety
//
// FileBackupManager is safe for concurrent use; it keeps no mutable state.
type FileBackupManager struct {
	maxBackups int
	logger     *logging.Logger
}

// Compile-time interface verification.
var _ BackupManager = (*FileBackupManager)(nil)

// NewBackupManager creates a FileBackupManager retaining maxBackups
// snapshots per path (values below 1 get the default of 5).
func NewBackupManager(maxBackups int, logger *logging.Logger) *FileBackupManager {
	if maxBackups <= 0 {
		maxBackups = DefaultMaxBackups
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &FileBackupManager{maxBackups: maxBackups, logger: logger}
}

// Snapshot copies path to a timestamped sibling backup file.
//
// # Inputs
//
//   - path: The primary file to snapshot.
//
// # Outputs
//
//   - backupPath: Path of the created backup, or "" when the primary
//     does not exist.
//   - error: Non-nil if the copy failed.
func (m *FileBackupManager) Snapshot(path string) (string, error) {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return "", nil // Nothing to back up
	}
	if err != nil {
		return "", fmt.Errorf("stat %s: %w", path, err)
	}

	backupPath := path + BackupSuffix + "." + time.Now().UTC().Format(backupTimeFormat)
	if err := copyFile(path, backupPath, info.Mode().Perm()); err != nil {
		return "", fmt.Errorf("snapshot %s: %w", path, err)
	}

	return backupPath, nil
}

// List returns all backups for path, newest first by modification time.
//
// A directory that does not exist yet yields an empty list, not an error.
func (m *FileBackupManager) List(path string) ([]BackupInfo, error) {
	dir := filepath.Dir(path)
	prefix := filepath.Base(path) + BackupSuffix + "."

	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("listing backups in %s: %w", dir, err)
	}

	var backups []BackupInfo
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasPrefix(entry.Name(), prefix) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		backups = append(backups, BackupInfo{
			Path:         filepath.Join(dir, entry.Name()),
			OriginalPath: path,
			CreatedAt:    info.ModTime(),
			Size:         info.Size(),
		})
	}

	sort.Slice(backups, func(i, j int) bool {
		return backups[i].CreatedAt.After(backups[j].CreatedAt)
	})

	return backups, nil
}

// Prune deletes every backup beyond the retention count, oldest first.
func (m *FileBackupManager) Prune(path string) (int, error) {
	backups, err := m.List(path)
	if err != nil {
		return 0, err
	}
	if len(backups) <= m.maxBackups {
		return 0, nil
	}

	removed := 0
	for _, backup := range backups[m.maxBackups:] {
		if err := os.Remove(backup.Path); err != nil {
			m.logger.Warn("failed to prune backup", "backup", backup.Path, "error", err.Error())
			continue
		}
		removed++
	}
	return removed, nil
}

// CleanOld removes backups for path older than maxAge.
func (m *FileBackupManager) CleanOld(path string, maxAge time.Duration) (int, error) {
	backups, err := m.List(path)
	if err != nil {
		return 0, err
	}

	cutoff := time.Now().Add(-maxAge)
	removed := 0
	for _, backup := range backups {
		if backup.CreatedAt.After(cutoff) {
			continue
		}
		if err := os.Remove(backup.Path); err != nil {
			m.logger.Warn("failed to remove old backup", "backup", backup.Path, "error", err.Error())
			continue
		}
		removed++
	}
	return removed, nil
}

// copyFile copies src to dst, preserving the source permissions.
func copyFile(src, dst string, perm os.FileMode) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, perm)
	if err != nil {
		return err
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		os.Remove(dst)
		return err
	}
	return out.Close()
}
