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
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/notedrop/notedrop/pkg/logging"
)

// quietConfig returns a production-profile config that logs nowhere.
func quietConfig() Config {
	cfg := DefaultConfig()
	cfg.Logger = logging.New(logging.Config{Quiet: true})
	return cfg
}

func TestLockManager_AcquireRelease(t *testing.T) {
	resource := filepath.Join(t.TempDir(), "notes.json")
	mgr := NewLockManager(quietConfig())

	handle, err := mgr.Acquire(context.Background(), resource)
	if err != nil {
		t.Fatalf("Acquire failed: %v", err)
	}

	// Lock file exists and records this process.
	data, err := os.ReadFile(resource + LockSuffix)
	if err != nil {
		t.Fatalf("reading lock file: %v", err)
	}
	var info LockInfo
	if err := json.Unmarshal(data, &info); err != nil {
		t.Fatalf("lock file is not JSON: %v", err)
	}
	if info.PID != os.Getpid() {
		t.Errorf("lock PID = %d, want %d", info.PID, os.Getpid())
	}
	if info.SessionID == "" {
		t.Error("lock should record a session id")
	}
	if info.AcquiredAt.IsZero() {
		t.Error("lock should record an acquisition timestamp")
	}

	mgr.Release(handle)
	if _, err := os.Stat(resource + LockSuffix); !os.IsNotExist(err) {
		t.Error("Release should remove the lock file")
	}
}

func TestLockManager_HeldNoRetries(t *testing.T) {
	resource := filepath.Join(t.TempDir(), "notes.json")
	first := NewLockManager(quietConfig())
	second := NewLockManager(quietConfig()) // production: 0 retries

	handle, err := first.Acquire(context.Background(), resource)
	if err != nil {
		t.Fatalf("first Acquire failed: %v", err)
	}
	defer first.Release(handle)

	_, err = second.Acquire(context.Background(), resource)
	if err == nil {
		t.Fatal("second Acquire should fail while the lock is held")
	}
	if !errors.Is(err, ErrLockHeld) {
		t.Errorf("error should wrap ErrLockHeld, got %v", err)
	}

	var heldErr *LockHeldError
	if !errors.As(err, &heldErr) {
		t.Fatalf("error should be *LockHeldError, got %T", err)
	}
	if heldErr.Holder == nil || heldErr.Holder.PID != os.Getpid() {
		t.Errorf("LockHeldError should identify the holder, got %+v", heldErr.Holder)
	}
}

func TestLockManager_RetrySucceedsAfterRelease(t *testing.T) {
	resource := filepath.Join(t.TempDir(), "notes.json")

	cfg := quietConfig()
	cfg.LockMaxRetries = 3
	cfg.LockRetryBaseDelay = 20 * time.Millisecond

	first := NewLockManager(cfg)
	second := NewLockManager(cfg)

	handle, err := first.Acquire(context.Background(), resource)
	if err != nil {
		t.Fatalf("first Acquire failed: %v", err)
	}

	go func() {
		time.Sleep(30 * time.Millisecond)
		first.Release(handle)
	}()

	got, err := second.Acquire(context.Background(), resource)
	if err != nil {
		t.Fatalf("second Acquire should succeed after release, got %v", err)
	}
	second.Release(got)
}

func TestLockManager_StaleTakeover(t *testing.T) {
	resource := filepath.Join(t.TempDir(), "notes.json")

	// Plant a lock whose holder appears long gone.
	stale := LockInfo{
		PID:        99999,
		HostID:     "elsewhere",
		SessionID:  "dead-session",
		AcquiredAt: time.Now().Add(-time.Hour),
	}
	data, _ := json.Marshal(stale)
	if err := os.WriteFile(resource+LockSuffix, data, 0644); err != nil {
		t.Fatalf("planting stale lock: %v", err)
	}

	mgr := NewLockManager(quietConfig())
	handle, err := mgr.Acquire(context.Background(), resource)
	if err != nil {
		t.Fatalf("Acquire should take over a stale lock, got %v", err)
	}
	defer mgr.Release(handle)

	// The lock file now belongs to us.
	holder := mgr.Holder(resource)
	if holder == nil || holder.PID != os.Getpid() {
		t.Errorf("holder after takeover = %+v, want this process", holder)
	}
}

func TestLockManager_StaleByModTime(t *testing.T) {
	resource := filepath.Join(t.TempDir(), "notes.json")
	lockPath := resource + LockSuffix

	// An unparseable lock file falls back to modification-time staleness.
	if err := os.WriteFile(lockPath, []byte("not json"), 0644); err != nil {
		t.Fatalf("planting corrupt lock: %v", err)
	}
	old := time.Now().Add(-time.Hour)
	if err := os.Chtimes(lockPath, old, old); err != nil {
		t.Fatalf("backdating lock: %v", err)
	}

	mgr := NewLockManager(quietConfig())
	handle, err := mgr.Acquire(context.Background(), resource)
	if err != nil {
		t.Fatalf("Acquire should reap an old unparseable lock, got %v", err)
	}
	mgr.Release(handle)
}

func TestLockManager_ContextCancelsBackoff(t *testing.T) {
	resource := filepath.Join(t.TempDir(), "notes.json")

	cfg := quietConfig()
	cfg.LockMaxRetries = 5
	cfg.LockRetryBaseDelay = time.Second

	first := NewLockManager(cfg)
	handle, err := first.Acquire(context.Background(), resource)
	if err != nil {
		t.Fatalf("first Acquire failed: %v", err)
	}
	defer first.Release(handle)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err = NewLockManager(cfg).Acquire(ctx, resource)
	if err == nil {
		t.Fatal("Acquire should fail when the context is cancelled")
	}
	if elapsed := time.Since(start); elapsed > 500*time.Millisecond {
		t.Errorf("Acquire took %s, should abort promptly on cancellation", elapsed)
	}
}

func TestLockManager_ReleaseTwice(t *testing.T) {
	resource := filepath.Join(t.TempDir(), "notes.json")
	mgr := NewLockManager(quietConfig())

	handle, err := mgr.Acquire(context.Background(), resource)
	if err != nil {
		t.Fatalf("Acquire failed: %v", err)
	}

	// Double release must not panic or error; "already gone" is logged only.
	mgr.Release(handle)
	mgr.Release(handle)
	mgr.Release(nil)
}

func TestLockManager_HolderAbsent(t *testing.T) {
	resource := filepath.Join(t.TempDir(), "notes.json")
	mgr := NewLockManager(quietConfig())

	if holder := mgr.Holder(resource); holder != nil {
		t.Errorf("Holder with no lock = %+v, want nil", holder)
	}
}
