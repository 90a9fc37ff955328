// observability/observability_test.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package observability

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestCollectorRecords(t *testing.T) {
	reg := prometheus.NewRegistry()
	c, err := NewCollector(reg)
	if err != nil {
		t.Fatalf("NewCollector: %v", err)
	}

	c.RecordLoaded(DBNavaid, "fix", 3)
	c.RecordLoaded(DBNavaid, "fix", 2)
	c.Malformed(DBAirway, 1)
	c.Merges(1, 2)
	c.BuildFinished(DBAirway, 2, 50*time.Millisecond)
	c.PathQuery("point_to_point", "found")

	if got := testutil.ToFloat64(c.RecordsLoaded.WithLabelValues(DBNavaid, "fix")); got != 5 {
		t.Errorf("navdb_records_loaded_total = %v, want 5", got)
	}
	if got := testutil.ToFloat64(c.MalformedLines.WithLabelValues(DBAirway)); got != 1 {
		t.Errorf("navdb_malformed_lines_total = %v, want 1", got)
	}
	if got := testutil.ToFloat64(c.Colocated); got != 1 {
		t.Errorf("navdb_colocated_total = %v, want 1", got)
	}
	if got := testutil.ToFloat64(c.Duplicates); got != 2 {
		t.Errorf("navdb_duplicates_total = %v, want 2", got)
	}
	if got := testutil.ToFloat64(c.BuildStatus.WithLabelValues(DBAirway)); got != 2 {
		t.Errorf("navdb_build_status = %v, want 2", got)
	}
	if got := testutil.ToFloat64(c.PathQueries.WithLabelValues("point_to_point", "found")); got != 1 {
		t.Errorf("navdb_path_queries_total = %v, want 1", got)
	}
	if n := testutil.CollectAndCount(c.BuildDuration); n != 1 {
		t.Errorf("navdb_build_duration_seconds series = %d, want 1", n)
	}
}

func TestCollectorSharedRegistry(t *testing.T) {
	reg := prometheus.NewRegistry()
	a, err := NewCollector(reg)
	if err != nil {
		t.Fatalf("NewCollector: %v", err)
	}
	b, err := NewCollector(reg)
	if err != nil {
		t.Fatalf("second NewCollector: %v", err)
	}

	a.Malformed(DBNavaid, 1)
	b.Malformed(DBNavaid, 1)
	if got := testutil.ToFloat64(a.MalformedLines.WithLabelValues(DBNavaid)); got != 2 {
		t.Errorf("shared counter = %v, want 2", got)
	}
}

func TestNilCollector(t *testing.T) {
	var c *Collector
	// None of these should panic.
	c.RecordLoaded(DBNavaid, "navaid", 1)
	c.Malformed(DBNavaid, 1)
	c.Merges(1, 1)
	c.BuildFinished(DBNavaid, 1, time.Second)
	c.PathQuery("point_to_point", "empty")
}

func TestSpans(t *testing.T) {
	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))
	tracer := Tracer(tp)

	_, span := StartSpan(context.Background(), tracer, "navdb.build", attribute.String("db", DBAirway))
	EndSpan(span, nil)
	_, span = StartSpan(context.Background(), tracer, "navdb.build", attribute.String("db", DBNavaid))
	EndSpan(span, errors.New("boom"))

	ended := sr.Ended()
	if len(ended) != 2 {
		t.Fatalf("got %d spans, want 2", len(ended))
	}
	if ended[0].Name() != "navdb.build" {
		t.Errorf("span name = %q", ended[0].Name())
	}
	if ended[0].Status().Code == codes.Error {
		t.Errorf("successful span marked as error")
	}
	if ended[1].Status().Code != codes.Error {
		t.Errorf("failed span status = %v, want Error", ended[1].Status().Code)
	}
	found := false
	for _, kv := range ended[1].Attributes() {
		if kv.Key == "db" && kv.Value.AsString() == DBNavaid {
			found = true
		}
	}
	if !found {
		t.Errorf("db attribute missing: %v", ended[1].Attributes())
	}
}
