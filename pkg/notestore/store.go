// Copyright (C) 2025 Notedrop Labs (oss@notedrop.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package notestore

import (
	"context"
	"errors"
	"fmt"

	"github.com/notedrop/notedrop/pkg/logging"
	"github.com/notedrop/notedrop/pkg/validation"
)

// Store is a single-file durable store for an ordered collection of
// records of type T.
//
// # Description
//
// The store never interprets record fields; it treats the whole
// collection as one JSON document. Callers read the whole collection,
// mutate it in memory, and write the whole collection back
// (last-writer-wins at whole-collection granularity).
//
// # Thread Safety
//
// Store is safe for concurrent use. Writes on the same primary path are
// serialized by the lock file, across goroutines and across processes.
type Store[T any] struct {
	path    string
	cfg     Config
	logger  *logging.Logger
	locks   *LockManager
	backups BackupManager
	metrics *Metrics
}

// Open creates a Store for the primary file at path.
//
// # Description
//
// Validates the path and wires the lock and backup managers from cfg.
// Open touches no files; the primary is created by the first Write or
// by EnsureInitialized.
//
// # Inputs
//
//   - path: The primary file path. Sidecar files are derived from it.
//   - cfg: Store configuration; zero fields get production defaults.
//
// # Outputs
//
//   - *Store[T]: Ready-to-use store.
//   - error: Non-nil if the path is invalid.
func Open[T any](path string, cfg Config) (*Store[T], error) {
	safePath, err := validation.SanitizeStorePath(path)
	if err != nil {
		return nil, fmt.Errorf("invalid store path: %w", err)
	}

	cfg = cfg.withDefaults()
	logger := cfg.Logger.With("store_path", safePath)

	return &Store[T]{
		path:    safePath,
		cfg:     cfg,
		logger:  logger,
		locks:   NewLockManager(cfg),
		backups: NewBackupManager(cfg.MaxBackups, logger),
		metrics: cfg.Metrics,
	}, nil
}

// Path returns the primary file path.
func (s *Store[T]) Path() string {
	return s.path
}

// checksumPath returns the checksum sidecar path.
func (s *Store[T]) checksumPath() string {
	return s.path + ChecksumSuffix
}

// EnsureInitialized guarantees a readable primary file exists.
//
// # Description
//
// An absent store is created with defaults. A present store is read
// through the recovering read path. If even recovery fails, one last
// forced write of the defaults is attempted, accepting data loss as the
// final fallback; only when that write also fails does an error surface.
//
// # Inputs
//
//   - ctx: Context for cancellation. Must not be nil.
//   - defaults: Collection to seed an absent or unrecoverable store with.
//
// # Outputs
//
//   - []T: The current collection after initialization.
//   - error: Non-nil only when the store could not be made usable.
func (s *Store[T]) EnsureInitialized(ctx context.Context, defaults []T) ([]T, error) {
	records, err := s.Read(ctx)
	switch {
	case err == nil:
		return records, nil

	case errors.Is(err, ErrStoreAbsent):
		s.logger.Info("store absent, creating with defaults", "records", len(defaults))
		if werr := s.Write(ctx, defaults); werr != nil {
			return nil, werr
		}
		return defaults, nil

	default:
		// Recovery exhausted or the data is malformed. Reset to the
		// defaults rather than leave the store unusable.
		s.logger.Error("store unusable, resetting to defaults", "error", err.Error())
		if werr := s.Write(ctx, defaults); werr != nil {
			return nil, fmt.Errorf("resetting unusable store: %w", werr)
		}
		return defaults, nil
	}
}
