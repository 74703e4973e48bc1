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
	"io/fs"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/notedrop/notedrop/pkg/logging"
)

// LockInfo identifies the holder of a lock file.
//
// Serialized as JSON into the lock sidecar so that any other process
// sharing the filesystem can report who holds the lock and decide
// whether the holder is stale.
type LockInfo struct {
	// PID is the operating system process id of the holder.
	PID int `json:"pid"`

	// HostID is the hostname of the holder, for shared filesystems.
	HostID string `json:"host_id"`

	// SessionID distinguishes lock managers within one process.
	SessionID string `json:"session_id"`

	// AcquiredAt is when the lock was taken; staleness is measured
	// against this timestamp.
	AcquiredAt time.Time `json:"timestamp"`
}

// LockHandle represents one held lock. Pass it back to Release.
type LockHandle struct {
	path string
	info LockInfo
}

// Path returns the lock file path this handle guards.
func (h *LockHandle) Path() string {
	return h.path
}

// LockManager provides mutual exclusion over a named resource using a
// sidecar lock file.
//
// # Description
//
// Acquisition is a single exclusive-create of the lock file, so two
// callers that both "see no lock" cannot both proceed; the second gets
// an EEXIST-class failure and enters the same retry path as "lock held".
// A lock older than the configured timeout is treated as abandoned: the
// next acquirer removes it and takes over.
//
// # Thread Safety
//
// LockManager is safe for concurrent use. Exclusivity is enforced by the
// filesystem, so it holds across independent OS processes as well.
type LockManager struct {
	timeout    time.Duration
	maxRetries int
	baseDelay  time.Duration
	sessionID  string
	logger     *logging.Logger
	metrics    *Metrics
}

// NewLockManager creates a LockManager with the config's lock tuning.
func NewLockManager(cfg Config) *LockManager {
	cfg = cfg.withDefaults()
	return &LockManager{
		timeout:    cfg.LockTimeout,
		maxRetries: cfg.LockMaxRetries,
		baseDelay:  cfg.LockRetryBaseDelay,
		sessionID:  uuid.NewString(),
		logger:     cfg.Logger,
		metrics:    cfg.Metrics,
	}
}

// Acquire takes the lock for resource, retrying per the configured budget.
//
// # Description
//
// Attempts an exclusive create of resource+".lock". When a live lock is
// found, retries up to LockMaxRetries times with exponential backoff
// (base * 2^attempt); a stale lock is removed and retaken immediately.
// With retries exhausted (or disabled), fails with *LockHeldError
// carrying the holder's identity.
//
// # Inputs
//
//   - ctx: Cancels the backoff wait. Must not be nil.
//   - resource: The primary file path to lock (not the lock path itself).
//
// # Outputs
//
//   - *LockHandle: The held lock, to be passed to Release.
//   - error: *LockHeldError when another holder has a live lock;
//     ErrLockAcquireFailed wrapping for filesystem failures.
func (m *LockManager) Acquire(ctx context.Context, resource string) (*LockHandle, error) {
	lockPath := resource + LockSuffix

	for attempt := 0; ; attempt++ {
		handle, holder, err := m.tryAcquire(lockPath)
		if err != nil {
			return nil, err
		}
		if handle != nil {
			return handle, nil
		}

		// Lock exists. A holder past the timeout is abandoned: reap it
		// and try again without consuming a retry.
		if m.isStale(lockPath, holder) {
			m.logger.Warn("removing stale lock",
				"lock", lockPath,
				"holder_pid", holderPID(holder),
				"timeout", m.timeout.String(),
			)
			if err := os.Remove(lockPath); err != nil && !os.IsNotExist(err) {
				return nil, fmt.Errorf("%w: removing stale lock: %v", ErrLockAcquireFailed, err)
			}
			m.metrics.staleTakeover()
			attempt--
			continue
		}

		if attempt >= m.maxRetries {
			return nil, &LockHeldError{Path: resource, Holder: holder}
		}

		delay := m.baseDelay * (1 << attempt)
		m.logger.Debug("lock held, backing off",
			"lock", lockPath,
			"attempt", attempt+1,
			"delay", delay.String(),
		)
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("%w: %v", ErrLockAcquireFailed, ctx.Err())
		case <-time.After(delay):
		}
	}
}

// tryAcquire attempts the exclusive create. Returns a handle on success,
// or the current holder (possibly nil if unreadable) when the lock exists.
func (m *LockManager) tryAcquire(lockPath string) (*LockHandle, *LockInfo, error) {
	file, err := os.OpenFile(lockPath, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0644)
	if err != nil {
		if errors.Is(err, fs.ErrExist) {
			return nil, m.readHolder(lockPath), nil
		}
		return nil, nil, fmt.Errorf("%w: creating lock file: %v", ErrLockAcquireFailed, err)
	}

	hostname, _ := os.Hostname()
	info := LockInfo{
		PID:        os.Getpid(),
		HostID:     hostname,
		SessionID:  m.sessionID,
		AcquiredAt: time.Now(),
	}

	data, err := json.Marshal(info)
	if err == nil {
		_, err = file.Write(data)
	}
	closeErr := file.Close()
	if err == nil {
		err = closeErr
	}
	if err != nil {
		// A lock file we couldn't fully record is worse than no lock.
		_ = os.Remove(lockPath)
		return nil, nil, fmt.Errorf("%w: writing lock info: %v", ErrLockAcquireFailed, err)
	}

	return &LockHandle{path: lockPath, info: info}, nil, nil
}

// Release deletes the lock file.
//
// # Description
//
// "Already gone" is a non-fatal, logged condition: another process may
// have reaped the lock as stale. Release never fails; a lock left behind
// is recovered by the staleness timeout.
func (m *LockManager) Release(handle *LockHandle) {
	if handle == nil {
		return
	}
	if err := os.Remove(handle.path); err != nil {
		if os.IsNotExist(err) {
			m.logger.Warn("lock file already removed, possibly reaped as stale", "lock", handle.path)
			return
		}
		m.logger.Error("failed to remove lock file", "lock", handle.path, "error", err.Error())
	}
}

// Holder returns the current lock holder for resource, or nil when the
// lock file is absent or unreadable. Read-only; used for diagnostics.
func (m *LockManager) Holder(resource string) *LockInfo {
	return m.readHolder(resource + LockSuffix)
}

// readHolder parses the lock file, tolerating concurrent removal and
// partial writes. A nil result means "held by an unidentifiable holder"
// if the file still exists.
func (m *LockManager) readHolder(lockPath string) *LockInfo {
	data, err := os.ReadFile(lockPath)
	if err != nil {
		return nil
	}
	var info LockInfo
	if err := json.Unmarshal(data, &info); err != nil {
		return nil
	}
	return &info
}

// isStale reports whether the lock at lockPath is older than the timeout.
// Falls back to file modification time when the holder record is unreadable.
func (m *LockManager) isStale(lockPath string, holder *LockInfo) bool {
	if holder != nil {
		return time.Since(holder.AcquiredAt) > m.timeout
	}
	info, err := os.Stat(lockPath)
	if err != nil {
		// Gone between observation and staleness check; the next
		// tryAcquire settles it.
		return false
	}
	return time.Since(info.ModTime()) > m.timeout
}

func holderPID(holder *LockInfo) int {
	if holder == nil {
		return 0
	}
	return holder.PID
}
