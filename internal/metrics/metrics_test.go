// Cadence - Predictive Artist Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cadence

package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecordRebuild(t *testing.T) {
	before := testutil.ToFloat64(RebuildFailures.WithLabelValues("content"))

	RecordRebuild("content", 20*time.Millisecond, nil)
	RecordRebuild("content", 30*time.Millisecond, errors.New("empty vocabulary"))

	after := testutil.ToFloat64(RebuildFailures.WithLabelValues("content"))
	if after-before != 1 {
		t.Errorf("failures delta = %v, want 1", after-before)
	}
}

func TestRecordStoreError(t *testing.T) {
	before := testutil.ToFloat64(StoreErrors.WithLabelValues("interactions", "append"))
	RecordStoreError("interactions", "append")
	if got := testutil.ToFloat64(StoreErrors.WithLabelValues("interactions", "append")); got-before != 1 {
		t.Errorf("store errors delta = %v, want 1", got-before)
	}
}

func TestRecordMatrix(t *testing.T) {
	RecordMatrix(12, 40)
	if got := testutil.ToFloat64(MatrixSize.WithLabelValues("users")); got != 12 {
		t.Errorf("users = %v, want 12", got)
	}
	if got := testutil.ToFloat64(MatrixSize.WithLabelValues("items")); got != 40 {
		t.Errorf("items = %v, want 40", got)
	}
}

func TestRecordRecommendation(t *testing.T) {
	RecordRecommendation("hybrid", 5*time.Millisecond)
	if n := testutil.CollectAndCount(RecommendationDuration); n == 0 {
		t.Error("expected at least one histogram series")
	}
}
