// Copyright (C) 2025 Notedrop Labs (oss@notedrop.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package notestore

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestNewMetrics_RegistersOnce(t *testing.T) {
	reg := prometheus.NewRegistry()

	if _, err := NewMetrics(reg); err != nil {
		t.Fatalf("NewMetrics failed: %v", err)
	}
	if _, err := NewMetrics(reg); err == nil {
		t.Error("second registration on the same registry should fail")
	}
}

func TestMetrics_NilSafe(t *testing.T) {
	var m *Metrics

	// Must not panic on an uninstrumented store.
	m.writeResult("success")
	m.recoveryResult("recovered")
	m.staleTakeover()
	m.lockContended()
	m.backupsRemoved(3)
	m.snapshotResult("created")
}

func TestMetrics_CountsWrites(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics, err := NewMetrics(reg)
	if err != nil {
		t.Fatalf("NewMetrics failed: %v", err)
	}

	cfg := quietConfig()
	cfg.Metrics = metrics
	store, err := Open[testNote](filepath.Join(t.TempDir(), "notes.json"), cfg)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}

	if err := store.Write(context.Background(), []testNote{{ID: "1"}}); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	got := testutil.ToFloat64(metrics.writes.WithLabelValues("success"))
	if got != 1 {
		t.Errorf("writes_total{result=success} = %v, want 1", got)
	}
	if got := testutil.ToFloat64(metrics.writes.WithLabelValues("error")); got != 0 {
		t.Errorf("writes_total{result=error} = %v, want 0", got)
	}
}
