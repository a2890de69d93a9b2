// Catalog - Item Catalog Browser
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/catalog

package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	io_prometheus_client "github.com/prometheus/client_model/go"
)

// histogramCount extracts the sample count from a Prometheus histogram.
func histogramCount(h prometheus.Histogram) uint64 {
	var m io_prometheus_client.Metric
	if err := h.Write(&m); err != nil {
		return 0
	}
	return m.GetHistogram().GetSampleCount()
}

func TestRecordAPIRequest(t *testing.T) {
	before := testutil.ToFloat64(APIRequestsTotal.WithLabelValues("GET", "/api/items", "200"))

	RecordAPIRequest("GET", "/api/items", "200", 3*time.Millisecond)
	RecordAPIRequest("GET", "/api/items", "200", 4*time.Millisecond)

	after := testutil.ToFloat64(APIRequestsTotal.WithLabelValues("GET", "/api/items", "200"))
	if after-before != 2 {
		t.Errorf("requests delta = %v, want 2", after-before)
	}
}

func TestTrackActiveRequest(t *testing.T) {
	before := testutil.ToFloat64(APIActiveRequests)

	TrackActiveRequest(true)
	if got := testutil.ToFloat64(APIActiveRequests); got != before+1 {
		t.Errorf("active = %v, want %v", got, before+1)
	}
	TrackActiveRequest(false)
	if got := testutil.ToFloat64(APIActiveRequests); got != before {
		t.Errorf("active = %v, want %v", got, before)
	}
}

func TestRecordStoreLoad(t *testing.T) {
	okBefore := testutil.ToFloat64(StoreLoadsTotal.WithLabelValues("ok"))
	errBefore := testutil.ToFloat64(StoreLoadsTotal.WithLabelValues("error"))
	reusedBefore := testutil.ToFloat64(StoreLoadsTotal.WithLabelValues("reused"))

	RecordStoreLoad(time.Millisecond, 3, false, nil)
	RecordStoreLoad(0, 0, false, errors.New("bad json"))
	RecordStoreLoad(0, 3, true, nil)

	if d := testutil.ToFloat64(StoreLoadsTotal.WithLabelValues("ok")) - okBefore; d != 1 {
		t.Errorf("ok delta = %v, want 1", d)
	}
	if d := testutil.ToFloat64(StoreLoadsTotal.WithLabelValues("error")) - errBefore; d != 1 {
		t.Errorf("error delta = %v, want 1", d)
	}
	if d := testutil.ToFloat64(StoreLoadsTotal.WithLabelValues("reused")) - reusedBefore; d != 1 {
		t.Errorf("reused delta = %v, want 1", d)
	}
	if got := testutil.ToFloat64(StoreItems); got != 3 {
		t.Errorf("StoreItems = %v, want 3", got)
	}
}

func TestRecordStatsRecompute(t *testing.T) {
	RecordStatsRecompute("change", errors.New("parse"))
	if got := testutil.ToFloat64(StatsCacheValid); got != 0 {
		t.Errorf("StatsCacheValid = %v, want 0 after failure", got)
	}

	before := testutil.ToFloat64(StatsRecomputes.WithLabelValues("demand", "ok"))
	RecordStatsRecompute("demand", nil)
	if got := testutil.ToFloat64(StatsCacheValid); got != 1 {
		t.Errorf("StatsCacheValid = %v, want 1 after success", got)
	}
	if d := testutil.ToFloat64(StatsRecomputes.WithLabelValues("demand", "ok")) - before; d != 1 {
		t.Errorf("recompute delta = %v, want 1", d)
	}
}

func TestRecordStatsRead(t *testing.T) {
	hits := testutil.ToFloat64(StatsCacheRequests.WithLabelValues("hit"))
	misses := testutil.ToFloat64(StatsCacheRequests.WithLabelValues("miss"))

	RecordStatsRead(true)
	RecordStatsRead(false)
	RecordStatsRead(false)

	if d := testutil.ToFloat64(StatsCacheRequests.WithLabelValues("hit")) - hits; d != 1 {
		t.Errorf("hit delta = %v, want 1", d)
	}
	if d := testutil.ToFloat64(StatsCacheRequests.WithLabelValues("miss")) - misses; d != 2 {
		t.Errorf("miss delta = %v, want 2", d)
	}
}

func TestStoreLoadDurationObserved(t *testing.T) {
	before := histogramCount(StoreLoadDuration)

	RecordStoreLoad(2*time.Millisecond, 1, false, nil)
	RecordStoreLoad(0, 1, true, nil)

	if d := histogramCount(StoreLoadDuration) - before; d != 1 {
		t.Errorf("duration samples delta = %v, want 1 (reused loads are not timed)", d)
	}
}
