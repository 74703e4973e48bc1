// Copyright (C) 2025 Notedrop Labs (oss@notedrop.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package notestore provides a single-file, crash-consistent record store.
//
// The store holds one mutable collection of records serialized as a single
// JSON document. It guarantees that no concurrent writer can corrupt the
// dataset, that every write is verifiable after the fact, and that past
// versions are recoverable when verification fails.
//
// # On-Disk Layout
//
// All files live next to the configured primary path P:
//
//	P                      # primary collection, JSON array
//	P.checksum             # hex SHA-256 of P's exact bytes
//	P.lock                 # JSON {pid, host_id, session_id, timestamp}
//	P.tmp, P.checksum.tmp  # write staging
//	P.backup.<timestamp>   # point-in-time snapshots
//
// # Write Path
//
// Every write is all-or-nothing: acquire the lock, snapshot the current
// primary, stage the new document and its checksum in temp files, rename
// both into place, re-verify the live file, prune old backups, release
// the lock. A failure at any step cleans up staging files and leaves the
// previous primary and checksum untouched.
//
// # Read Path
//
// Reads verify the primary against its checksum sidecar first. On a
// mismatch the store walks backups newest-first, promotes the first
// parseable one back into the primary slot through the same atomic write
// path, and returns its content. Only when every backup is unusable does
// a read fail.
//
// # Concurrency
//
// Mutual exclusion is filesystem-based (exclusive-create of the lock
// sidecar), so correctness holds across independent OS processes sharing
// the same files, not just goroutines. A lock older than the configured
// timeout is treated as abandoned and taken over.
//
// # Thread Safety
//
// Store is safe for concurrent use. All operations on a given primary
// path are serialized by the lock file.
package notestore
