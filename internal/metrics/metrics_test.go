package metrics

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"tasks-api/pkg/docstore"
)

func TestInstrumentBackend(t *testing.T) {
	m := New()
	b := m.InstrumentBackend(docstore.NewMemoryStore(nil))
	ctx := context.Background()

	if _, err := b.Read(ctx); err == nil {
		t.Fatalf("expected not found")
	}
	if err := b.Write(ctx, docstore.EmptyDocument); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := b.Read(ctx); err != nil {
		t.Fatalf("read: %v", err)
	}

	if got := testutil.ToFloat64(m.storageOps.WithLabelValues("memory", "read", "error")); got != 1 {
		t.Fatalf("read errors = %v", got)
	}
	if got := testutil.ToFloat64(m.storageOps.WithLabelValues("memory", "read", "ok")); got != 1 {
		t.Fatalf("read ok = %v", got)
	}
	if got := testutil.ToFloat64(m.storageOps.WithLabelValues("memory", "write", "ok")); got != 1 {
		t.Fatalf("write ok = %v", got)
	}
	if b.Driver() != docstore.DriverMemory {
		t.Fatalf("driver = %s", b.Driver())
	}
}

func TestObserveRequest(t *testing.T) {
	m := New()
	m.ObserveRequest("GET /tasks", "GET", 200, 5*time.Millisecond)
	m.ObserveRequest("GET /tasks", "GET", 200, 5*time.Millisecond)
	m.ObserveRequest("GET /tasks/{id}", "GET", 404, time.Millisecond)

	if got := testutil.ToFloat64(m.requests.WithLabelValues("GET /tasks", "GET", "200")); got != 2 {
		t.Fatalf("requests = %v", got)
	}
	if got := testutil.ToFloat64(m.requests.WithLabelValues("GET /tasks/{id}", "GET", "404")); got != 1 {
		t.Fatalf("not found requests = %v", got)
	}
	if n, err := testutil.GatherAndCount(m.Registry(), "tasks_http_request_duration_seconds"); err != nil || n != 2 {
		t.Fatalf("duration series = %d, %v", n, err)
	}
}
