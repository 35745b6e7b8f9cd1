// Package metrics records Instapaper API, authentication, bulk and tool
// activity through the OpenTelemetry Metrics API. InitProvider bridges the
// instruments to a Prometheus /metrics endpoint.
// file: internal/metrics/metrics.go
package metrics

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

// meterName is the instrumentation scope for every instrument here.
const meterName = "github.com/dkoosis/instapaper-mcp"

// Status attribute values.
const (
	StatusOK    = "ok"
	StatusError = "error"
)

// Metrics holds the instruments. A nil *Metrics records nothing.
type Metrics struct {
	// APIRequests counts signed API calls by endpoint and status.
	APIRequests metric.Int64Counter
	// APIRequestDuration tracks signed API call latency by endpoint.
	APIRequestDuration metric.Float64Histogram
	// Authentications counts xAuth exchanges by status.
	Authentications metric.Int64Counter
	// AuthenticationDuration tracks xAuth exchange latency.
	AuthenticationDuration metric.Float64Histogram
	// BulkItems counts per-ID bulk outcomes by operation and status.
	BulkItems metric.Int64Counter
	// ToolCalls counts MCP tool invocations by tool and status.
	ToolCalls metric.Int64Counter
	// ToolDuration tracks MCP tool latency by tool.
	ToolDuration metric.Float64Histogram
}

// latencyBuckets are histogram boundaries in seconds for HTTP round trips.
var latencyBuckets = []float64{
	0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30,
}

// NewMetrics creates every instrument from mp.
func NewMetrics(mp metric.MeterProvider) (*Metrics, error) {
	m := mp.Meter(meterName)
	var err error
	met := &Metrics{}

	if met.APIRequests, err = m.Int64Counter("instapaper.api.requests",
		metric.WithDescription("Signed Instapaper API requests by endpoint and status."),
	); err != nil {
		return nil, err
	}
	if met.APIRequestDuration, err = m.Float64Histogram("instapaper.api.duration",
		metric.WithDescription("Latency of signed Instapaper API requests."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}
	if met.Authentications, err = m.Int64Counter("instapaper.auth.exchanges",
		metric.WithDescription("xAuth token exchanges by status."),
	); err != nil {
		return nil, err
	}
	if met.AuthenticationDuration, err = m.Float64Histogram("instapaper.auth.duration",
		metric.WithDescription("Latency of xAuth token exchanges."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}
	if met.BulkItems, err = m.Int64Counter("instapaper.bulk.items",
		metric.WithDescription("Per-ID bulk outcomes by operation and status."),
	); err != nil {
		return nil, err
	}
	if met.ToolCalls, err = m.Int64Counter("instapaper.mcp.tool_calls",
		metric.WithDescription("MCP tool invocations by tool and status."),
	); err != nil {
		return nil, err
	}
	if met.ToolDuration, err = m.Float64Histogram("instapaper.mcp.tool_duration",
		metric.WithDescription("Latency of MCP tool invocations."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}
	return met, nil
}

var (
	defaultMetrics     *Metrics
	defaultMetricsOnce sync.Once
)

// DefaultMetrics returns the package-level instance built from the global
// meter provider on first use.
func DefaultMetrics() *Metrics {
	defaultMetricsOnce.Do(func() {
		var err error
		defaultMetrics, err = NewMetrics(otel.GetMeterProvider())
		if err != nil {
			panic("metrics: failed to create default metrics: " + err.Error())
		}
	})
	return defaultMetrics
}

// Noop returns instruments that discard every measurement.
func Noop() *Metrics {
	m, err := NewMetrics(noop.NewMeterProvider())
	if err != nil {
		panic("metrics: noop provider failed: " + err.Error())
	}
	return m
}

// StatusOf maps an error to a status attribute value.
func StatusOf(err error) string {
	if err != nil {
		return StatusError
	}
	return StatusOK
}

// RecordAPIRequest records one signed API call.
func (m *Metrics) RecordAPIRequest(ctx context.Context, endpoint string, elapsed time.Duration, err error) {
	if m == nil {
		return
	}
	m.APIRequests.Add(ctx, 1, metric.WithAttributes(
		attribute.String("endpoint", endpoint),
		attribute.String("status", StatusOf(err)),
	))
	m.APIRequestDuration.Record(ctx, elapsed.Seconds(), metric.WithAttributes(
		attribute.String("endpoint", endpoint),
	))
}

// RecordAuthentication records one xAuth exchange.
func (m *Metrics) RecordAuthentication(ctx context.Context, elapsed time.Duration, err error) {
	if m == nil {
		return
	}
	m.Authentications.Add(ctx, 1, metric.WithAttributes(attribute.String("status", StatusOf(err))))
	m.AuthenticationDuration.Record(ctx, elapsed.Seconds())
}

// RecordBulk records the per-ID outcome counts of one bulk call.
func (m *Metrics) RecordBulk(ctx context.Context, operation string, succeeded, failed int) {
	if m == nil {
		return
	}
	if succeeded > 0 {
		m.BulkItems.Add(ctx, int64(succeeded), metric.WithAttributes(
			attribute.String("operation", operation),
			attribute.String("status", StatusOK),
		))
	}
	if failed > 0 {
		m.BulkItems.Add(ctx, int64(failed), metric.WithAttributes(
			attribute.String("operation", operation),
			attribute.String("status", StatusError),
		))
	}
}

// RecordToolCall records one MCP tool invocation.
func (m *Metrics) RecordToolCall(ctx context.Context, tool string, elapsed time.Duration, err error) {
	if m == nil {
		return
	}
	m.ToolCalls.Add(ctx, 1, metric.WithAttributes(
		attribute.String("tool", tool),
		attribute.String("status", StatusOf(err)),
	))
	m.ToolDuration.Record(ctx, elapsed.Seconds(), metric.WithAttributes(attribute.String("tool", tool)))
}
