// Copyright (C) 2025 Notedrop Labs (oss@notedrop.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package notestore

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/notedrop/notedrop/pkg/logging"
)

// ChangeType classifies an external modification of a store file.
type ChangeType string

const (
	ChangeWrite  ChangeType = "write"
	ChangeRemove ChangeType = "remove"
	ChangeRename ChangeType = "rename"
	ChangeCreate ChangeType = "create"
)

// Change is one observed modification of the primary file or its
// checksum sidecar.
type Change struct {
	// Path is the file that changed.
	Path string

	// Type is the kind of modification.
	Type ChangeType

	// At is when the change was observed.
	At time.Time
}

// Watcher reports modifications of a store's primary file and checksum
// sidecar made by other processes.
//
// # Description
//
// Atomic writes replace the primary by rename, so the watcher observes
// the parent directory and filters events down to the two files of
// interest. This also means the watcher sees the store's own writes;
// callers that only care about foreign changes should pause consumption
// around their own write calls.
//
// # Thread Safety
//
// Safe for concurrent use. Events() is closed by Close().
type Watcher struct {
	path    string
	watched map[string]struct{}
	fsw     *fsnotify.Watcher
	events  chan Change
	logger  *logging.Logger
}

// Watch starts a Watcher for the store's files.
//
// # Outputs
//
//   - *Watcher: Running watcher; callers must Close() it.
//   - error: Non-nil if the parent directory cannot be watched.
func (s *Store[T]) Watch() (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating watcher: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := fsw.Add(dir); err != nil {
		fsw.Close()
		return nil, fmt.Errorf("watching %s: %w", dir, err)
	}

	w := &Watcher{
		path: s.path,
		watched: map[string]struct{}{
			filepath.Base(s.path):           {},
			filepath.Base(s.checksumPath()): {},
		},
		fsw:    fsw,
		events: make(chan Change, 16),
		logger: s.logger,
	}
	go w.run()
	return w, nil
}

// Events returns the stream of observed changes. Closed by Close().
func (w *Watcher) Events() <-chan Change {
	return w.events
}

// Close stops the watcher and closes the event channel.
func (w *Watcher) Close() error {
	return w.fsw.Close()
}

// run pumps fsnotify events until the underlying watcher closes.
func (w *Watcher) run() {
	defer close(w.events)

	for {
		select {
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if _, interesting := w.watched[filepath.Base(ev.Name)]; !interesting {
				continue
			}
			change := Change{Path: ev.Name, At: time.Now()}
			switch {
			case ev.Op.Has(fsnotify.Remove):
				change.Type = ChangeRemove
			case ev.Op.Has(fsnotify.Rename):
				change.Type = ChangeRename
			case ev.Op.Has(fsnotify.Create):
				change.Type = ChangeCreate
			case ev.Op.Has(fsnotify.Write):
				change.Type = ChangeWrite
			default:
				continue // chmod etc.
			}

			select {
			case w.events <- change:
			default:
				// Slow consumer; dropping is better than stalling
				// the notify pipeline.
				w.logger.Warn("dropping file change event", "path", ev.Name)
			}

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.logger.Error("file watcher error", "error", err.Error())
		}
	}
}
