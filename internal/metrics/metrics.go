// Package metrics exposes Prometheus collectors for the HTTP surface and the
// backing document.
package metrics

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"tasks-api/pkg/docstore"
)

// Metrics owns a private registry and the collectors registered on it.
type Metrics struct {
	registry        *prometheus.Registry
	requests        *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	storageOps      *prometheus.CounterVec
	storageDuration *prometheus.HistogramVec
}

// New creates a Metrics with process and Go runtime collectors included.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "tasks",
			Name:      "http_requests_total",
			Help:      "HTTP requests by route, method and status code.",
		}, []string{"route", "method", "code"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "tasks",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route", "method"}),
		storageOps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "tasks",
			Name:      "document_operations_total",
			Help:      "Backing document reads and writes by driver and result.",
		}, []string{"driver", "op", "result"}),
		storageDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "tasks",
			Name:      "document_operation_duration_seconds",
			Help:      "Backing document read and write latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"driver", "op"}),
	}
	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.requests, m.requestDuration, m.storageOps, m.storageDuration,
	)
	return m
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Handler serves the exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// ObserveRequest records one finished HTTP request.
func (m *Metrics) ObserveRequest(route, method string, code int, d time.Duration) {
	m.requests.WithLabelValues(route, method, strconv.Itoa(code)).Inc()
	m.requestDuration.WithLabelValues(route, method).Observe(d.Seconds())
}

// InstrumentBackend wraps b so every Read and Write is counted and timed.
func (m *Metrics) InstrumentBackend(b docstore.Backend) docstore.Backend {
	return &instrumented{Backend: b, m: m}
}

type instrumented struct {
	docstore.Backend
	m *Metrics
}

func (i *instrumented) Read(ctx context.Context) ([]byte, error) {
	start := time.Now()
	data, err := i.Backend.Read(ctx)
	i.observe("read", start, err)
	return data, err
}

func (i *instrumented) Write(ctx context.Context, data []byte) error {
	start := time.Now()
	err := i.Backend.Write(ctx, data)
	i.observe("write", start, err)
	return err
}

// Close forwards to the wrapped backend when it holds resources.
func (i *instrumented) Close() error {
	if c, ok := i.Backend.(interface{ Close() error }); ok {
		return c.Close()
	}
	return nil
}

func (i *instrumented) observe(op string, start time.Time, err error) {
	driver := string(i.Backend.Driver())
	result := "ok"
	if err != nil {
		result = "error"
	}
	i.m.storageOps.WithLabelValues(driver, op, result).Inc()
	i.m.storageDuration.WithLabelValues(driver, op).Observe(time.Since(start).Seconds())
}
