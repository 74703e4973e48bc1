// Copyright (C) 2025 Notedrop Labs (oss@notedrop.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package notestore

import (
	"errors"
	"fmt"
	"time"
)

// Sentinel errors for store operations.
var (
	// Lock errors
	ErrLockHeld          = errors.New("store is locked by another writer")
	ErrLockAcquireFailed = errors.New("failed to acquire store lock")

	// Read errors
	ErrStoreAbsent   = errors.New("store file does not exist")
	ErrMalformedData = errors.New("store file contains malformed JSON")
	ErrUnrecoverable = errors.New("store is corrupt and no backup could be recovered")

	// Integrity errors (surfaced through Verification, wrapped when raised)
	ErrChecksumMissing  = errors.New("missing checksum")
	ErrChecksumMismatch = errors.New("checksum validation failed")
)

// LockHeldError provides detailed information about a lock conflict.
//
// # Description
//
// Wraps ErrLockHeld with information about the current lock holder,
// allowing the caller to decide how to proceed (wait, retry, report 503).
//
// # Fields
//
//   - Path: The primary file whose lock is held.
//   - Holder: Information about the current lock holder, if readable.
type LockHeldError struct {
	Path   string
	Holder *LockInfo
}

// Error returns a human-readable error message.
func (e *LockHeldError) Error() string {
	if e.Holder != nil {
		return fmt.Sprintf("store %s is locked by PID %d on %s (session %s) since %s: %v",
			e.Path, e.Holder.PID, e.Holder.HostID, e.Holder.SessionID,
			e.Holder.AcquiredAt.Format(time.RFC3339), ErrLockHeld)
	}
	return fmt.Sprintf("store %s is locked: %v", e.Path, ErrLockHeld)
}

// Unwrap returns ErrLockHeld for errors.Is support.
func (e *LockHeldError) Unwrap() error {
	return ErrLockHeld
}

// WriteError represents a failure between lock acquisition and lock release.
//
// # Description
//
// Any WriteError leaves the primary file and its checksum unchanged from
// before the call, and staging files are removed before it propagates.
//
// # Fields
//
//   - Op: The write step that failed (marshal, write_temp, rename_data, ...).
//   - Path: The primary file being written.
//   - Err: The underlying error.
type WriteError struct {
	Op   string
	Path string
	Err  error
}

// Error returns a human-readable error message.
func (e *WriteError) Error() string {
	return fmt.Sprintf("store write %s (%s): %v", e.Op, e.Path, e.Err)
}

// Unwrap returns the underlying error for errors.Is/As support.
func (e *WriteError) Unwrap() error {
	return e.Err
}

// UnrecoverableReadError indicates the primary file failed verification and
// every backup was also corrupt or unparseable.
//
// # Fields
//
//   - Path: The primary file that could not be read.
//   - Reason: The original verification failure reason.
type UnrecoverableReadError struct {
	Path   string
	Reason string
}

// Error returns a human-readable error message.
func (e *UnrecoverableReadError) Error() string {
	return fmt.Sprintf("store %s: %v (primary failed verification: %s)", e.Path, ErrUnrecoverable, e.Reason)
}

// Unwrap returns ErrUnrecoverable for errors.Is support.
func (e *UnrecoverableReadError) Unwrap() error {
	return ErrUnrecoverable
}
