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
	"fmt"
	"os"
)

// Read returns the store's current collection, recovering from backups
// when the primary file fails verification.
//
// # Description
//
// The primary is verified against its checksum sidecar before parsing.
// On verification failure the backups are walked newest-first; the first
// one holding parseable JSON is promoted back into the primary slot
// through the atomic write path (restoring checksum consistency) and its
// content returned. Parse failure on a checksum-valid file is a distinct
// condition: the bytes are exactly what was written, so backups hold no
// better truth and ErrMalformedData surfaces instead.
//
// # Inputs
//
//   - ctx: Context for cancellation, passed through to a promoting write.
//
// # Outputs
//
//   - []T: The collection.
//   - error: ErrStoreAbsent when the primary does not exist,
//     ErrMalformedData for checksum-valid unparseable JSON,
//     *UnrecoverableReadError when primary and every backup are unusable.
func (s *Store[T]) Read(ctx context.Context) ([]T, error) {
	if _, err := os.Stat(s.path); err != nil {
		if os.IsNotExist(err) {
			return nil, ErrStoreAbsent
		}
		return nil, fmt.Errorf("stat %s: %w", s.path, err)
	}

	verification := VerifyFile(s.path)
	if verification.Valid {
		data, err := os.ReadFile(s.path)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", s.path, err)
		}
		var records []T
		if err := json.Unmarshal(data, &records); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedData, err)
		}
		return records, nil
	}

	s.logger.Warn("integrity check failed, attempting backup recovery",
		"reason", verification.Reason,
	)
	return s.recover(ctx, verification.Reason)
}

// recover walks backups newest-first and promotes the first parseable one.
func (s *Store[T]) recover(ctx context.Context, reason string) ([]T, error) {
	backups, err := s.backups.List(s.path)
	if err != nil {
		s.logger.Error("listing backups for recovery failed", "error", err.Error())
	}

	for _, backup := range backups {
		data, err := os.ReadFile(backup.Path)
		if err != nil {
			s.logger.Warn("skipping unreadable backup", "backup", backup.Path, "error", err.Error())
			continue
		}

		var records []T
		if err := json.Unmarshal(data, &records); err != nil {
			s.logger.Warn("skipping unparseable backup", "backup", backup.Path, "error", err.Error())
			continue
		}

		// Promote through the atomic write path so primary and
		// checksum come back into agreement.
		if err := s.Write(ctx, records); err != nil {
			s.metrics.recoveryResult("unrecoverable")
			return nil, fmt.Errorf("promoting backup %s: %w", backup.Path, err)
		}

		s.logger.Info("recovered store from backup",
			"backup", backup.Path,
			"records", len(records),
		)
		s.metrics.recoveryResult("recovered")
		return records, nil
	}

	s.metrics.recoveryResult("unrecoverable")
	return nil, &UnrecoverableReadError{Path: s.path, Reason: reason}
}
