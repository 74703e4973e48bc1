// Copyright (C) 2025 Notedrop Labs (oss@notedrop.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package notestore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
)

// Write atomically replaces the store's collection.
//
// # Description
//
// The full sequence: acquire the lock, snapshot the current primary
// (best effort), serialize and stage the new document plus its checksum
// in temp files, rename both into place, re-verify the live primary,
// prune old backups (best effort), release the lock. On any failure the
// staging files are removed and the previous primary and checksum are
// left untouched; the lock is always released.
//
// The two renames are independently atomic but not jointly atomic: a
// process killed between them leaves primary and checksum briefly in
// disagreement, which the recovering read path repairs from the snapshot
// taken at the start of this call.
//
// # Inputs
//
//   - ctx: Context for cancellation; checked before each staging step.
//   - records: The complete new collection. Nil is stored as an empty array.
//
// # Outputs
//
//   - error: *LockHeldError when another writer holds the lock,
//     *WriteError for any failure after acquisition.
func (s *Store[T]) Write(ctx context.Context, records []T) error {
	if records == nil {
		records = []T{}
	}

	handle, err := s.locks.Acquire(ctx, s.path)
	if err != nil {
		if errors.Is(err, ErrLockHeld) {
			s.metrics.lockContended()
			s.metrics.writeResult("lock_held")
		} else {
			s.metrics.writeResult("error")
		}
		return err
	}
	defer s.locks.Release(handle)

	if err := s.writeLocked(ctx, records); err != nil {
		s.metrics.writeResult("error")
		return err
	}

	s.metrics.writeResult("success")
	return nil
}

// writeLocked runs steps 2-7 of the write sequence with the lock held.
func (s *Store[T]) writeLocked(ctx context.Context, records []T) error {
	tmpData := s.path + TempSuffix
	tmpChecksum := s.checksumPath() + TempSuffix

	// Retried writes must never pick up stale staging artifacts.
	cleanupTemps := true
	defer func() {
		if cleanupTemps {
			_ = os.Remove(tmpData)
			_ = os.Remove(tmpChecksum)
		}
	}()

	// Snapshot before touching anything. A failed snapshot degrades
	// recovery capability but must not block the write.
	switch backupPath, err := s.backups.Snapshot(s.path); {
	case err != nil:
		s.logger.Warn("pre-write snapshot failed, continuing", "error", err.Error())
		s.metrics.snapshotResult("error")
	case backupPath == "":
		s.metrics.snapshotResult("skipped")
	default:
		s.logger.Debug("pre-write snapshot created", "backup", backupPath)
		s.metrics.snapshotResult("created")
	}

	if err := ctx.Err(); err != nil {
		return &WriteError{Op: "stage", Path: s.path, Err: err}
	}

	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return &WriteError{Op: "marshal", Path: s.path, Err: err}
	}

	if err := os.WriteFile(tmpData, data, 0644); err != nil {
		return &WriteError{Op: "write_temp", Path: s.path, Err: err}
	}

	sum := Digest(data)
	if err := os.WriteFile(tmpChecksum, []byte(sum), 0644); err != nil {
		return &WriteError{Op: "write_temp_checksum", Path: s.path, Err: err}
	}

	if err := ctx.Err(); err != nil {
		return &WriteError{Op: "stage", Path: s.path, Err: err}
	}

	if err := os.Rename(tmpData, s.path); err != nil {
		return &WriteError{Op: "rename_data", Path: s.path, Err: err}
	}
	if err := os.Rename(tmpChecksum, s.checksumPath()); err != nil {
		return &WriteError{Op: "rename_checksum", Path: s.path, Err: err}
	}
	cleanupTemps = false

	// A write that cannot verify its own output is a failed write.
	if v := VerifyFile(s.path); !v.Valid {
		return &WriteError{
			Op:   "verify",
			Path: s.path,
			Err:  fmt.Errorf("integrity check failed after write: %s", v.Reason),
		}
	}

	if removed, err := s.backups.Prune(s.path); err != nil {
		s.logger.Warn("backup pruning failed", "error", err.Error())
	} else if removed > 0 {
		s.logger.Debug("pruned old backups", "removed", removed)
		s.metrics.backupsRemoved(removed)
	}

	return nil
}
