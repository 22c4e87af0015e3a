package observability

import (
	"testing"
	"time"
)

func TestMetricsSnapshot(t *testing.T) {
	m := NewMetrics()
	m.RecordRequest("/tickets", "GET", 200, 10*time.Millisecond)
	m.RecordRequest("/tickets", "GET", 200, 30*time.Millisecond)
	m.RecordRequest("/tickets", "POST", 400, time.Millisecond)
	m.RecordError("/tickets", "POST", "VALIDATION_FAILED")

	snap := m.Snapshot()
	if len(snap.Requests) != 2 || len(snap.Errors) != 1 {
		t.Fatalf("snapshot = %+v", snap)
	}
	get := snap.Requests[0]
	if get.Key != "/tickets|GET|200" || get.Count != 2 || get.AvgLatencyMS != 20 {
		t.Fatalf("GET stats = %+v", get)
	}
	if snap.Errors[0].Key != "/tickets|POST|VALIDATION_FAILED" {
		t.Fatalf("errors = %+v", snap.Errors)
	}
}

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics
	m.RecordRequest("/", "GET", 200, time.Millisecond)
	m.RecordError("/", "GET", "X")
	if snap := m.Snapshot(); len(snap.Requests) != 0 {
		t.Fatalf("nil snapshot = %+v", snap)
	}
}
