// Copyright (C) 2025 Notedrop Labs (oss@notedrop.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package notestore

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the store's Prometheus instrumentation.
//
// # Description
//
// The store only records counters; collection and serving belong to the
// embedding application. All methods are nil-safe so an uninstrumented
// store pays no cost.
//
// # Thread Safety
//
// Safe for concurrent use; Prometheus counters are atomic.
type Metrics struct {
	writes          *prometheus.CounterVec
	recoveries      *prometheus.CounterVec
	lockContention  prometheus.Counter
	staleTakeovers  prometheus.Counter
	backupsPruned   prometheus.Counter
	backupSnapshots *prometheus.CounterVec
}

// NewMetrics creates and registers store metrics.
//
// # Inputs
//
//   - reg: Target registry. Nil uses prometheus.DefaultRegisterer.
//
// # Outputs
//
//   - *Metrics: Registered metric set.
//   - error: Non-nil if a collector is already registered.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	m := &Metrics{
		writes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "notedrop",
			Subsystem: "store",
			Name:      "writes_total",
			Help:      "Atomic write attempts by result (success, lock_held, error).",
		}, []string{"result"}),
		recoveries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "notedrop",
			Subsystem: "store",
			Name:      "recoveries_total",
			Help:      "Backup recovery attempts by result (recovered, unrecoverable).",
		}, []string{"result"}),
		lockContention: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "notedrop",
			Subsystem: "store",
			Name:      "lock_contention_total",
			Help:      "Write attempts that found the lock held by another writer.",
		}),
		staleTakeovers: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "notedrop",
			Subsystem: "store",
			Name:      "stale_lock_takeovers_total",
			Help:      "Abandoned locks removed by a later acquirer.",
		}),
		backupsPruned: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "notedrop",
			Subsystem: "store",
			Name:      "backups_pruned_total",
			Help:      "Backup files deleted by retention pruning.",
		}),
		backupSnapshots: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "notedrop",
			Subsystem: "store",
			Name:      "backup_snapshots_total",
			Help:      "Pre-write snapshots by result (created, skipped, error).",
		}, []string{"result"}),
	}

	for _, collector := range []prometheus.Collector{
		m.writes, m.recoveries, m.lockContention,
		m.staleTakeovers, m.backupsPruned, m.backupSnapshots,
	} {
		if err := reg.Register(collector); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *Metrics) writeResult(result string) {
	if m == nil {
		return
	}
	m.writes.WithLabelValues(result).Inc()
}

func (m *Metrics) recoveryResult(result string) {
	if m == nil {
		return
	}
	m.recoveries.WithLabelValues(result).Inc()
}

func (m *Metrics) staleTakeover() {
	if m == nil {
		return
	}
	m.staleTakeovers.Inc()
}

func (m *Metrics) lockContended() {
	if m == nil {
		return
	}
	m.lockContention.Inc()
}

func (m *Metrics) backupsRemoved(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.backupsPruned.Add(float64(n))
}

func (m *Metrics) snapshotResult(result string) {
	if m == nil {
		return
	}
	m.backupSnapshots.WithLabelValues(result).Inc()
}
