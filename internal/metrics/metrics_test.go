// file: internal/metrics/metrics_test.go
package metrics

import (
	"context"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func newTestMetrics(t *testing.T) (*Metrics, *sdkmetric.ManualReader) {
	t.Helper()
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = mp.Shutdown(context.Background()) })

	m, err := NewMetrics(mp)
	require.NoError(t, err)
	return m, reader
}

func collect(t *testing.T, reader *sdkmetric.ManualReader) metricdata.ResourceMetrics {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))
	return rm
}

func findMetric(rm metricdata.ResourceMetrics, name string) *metricdata.Metrics {
	for _, sm := range rm.ScopeMetrics {
		for i := range sm.Metrics {
			if sm.Metrics[i].Name == name {
				return &sm.Metrics[i]
			}
		}
	}
	return nil
}

// counterValue sums data points whose attributes include every pair in want.
func counterValue(t *testing.T, m *metricdata.Metrics, want ...attribute.KeyValue) int64 {
	t.Helper()
	require.NotNil(t, m)
	sum, ok := m.Data.(metricdata.Sum[int64])
	require.True(t, ok, "expected Sum[int64], got %T", m.Data)
	var total int64
	for _, dp := range sum.DataPoints {
		matched := true
		for _, kv := range want {
			v, found := dp.Attributes.Value(kv.Key)
			if !found || v.Emit() != kv.Value.Emit() {
				matched = false
				break
			}
		}
		if matched {
			total += dp.Value
		}
	}
	return total
}

func TestRecordAPIRequest(t *testing.T) {
	m, reader := newTestMetrics(t)
	ctx := context.Background()

	m.RecordAPIRequest(ctx, "/bookmarks/list", 120*time.Millisecond, nil)
	m.RecordAPIRequest(ctx, "/bookmarks/list", 80*time.Millisecond, errors.New("boom"))
	m.RecordAPIRequest(ctx, "/folders/list", 10*time.Millisecond, nil)

	rm := collect(t, reader)
	requests := findMetric(rm, "instapaper.api.requests")
	assert.EqualValues(t, 1, counterValue(t, requests,
		attribute.String("endpoint", "/bookmarks/list"), attribute.String("status", StatusOK)))
	assert.EqualValues(t, 1, counterValue(t, requests,
		attribute.String("endpoint", "/bookmarks/list"), attribute.String("status", StatusError)))
	assert.EqualValues(t, 3, counterValue(t, requests))

	duration := findMetric(rm, "instapaper.api.duration")
	require.NotNil(t, duration)
	hist, ok := duration.Data.(metricdata.Histogram[float64])
	require.True(t, ok)
	var count uint64
	for _, dp := range hist.DataPoints {
		count += dp.Count
	}
	assert.EqualValues(t, 3, count)
}

func TestRecordBulk(t *testing.T) {
	m, reader := newTestMetrics(t)
	m.RecordBulk(context.Background(), "star", 3, 2)

	bulk := findMetric(collect(t, reader), "instapaper.bulk.items")
	assert.EqualValues(t, 3, counterValue(t, bulk, attribute.String("status", StatusOK)))
	assert.EqualValues(t, 2, counterValue(t, bulk, attribute.String("status", StatusError)))
}

func TestRecordToolCallAndAuthentication(t *testing.T) {
	m, reader := newTestMetrics(t)
	ctx := context.Background()
	m.RecordToolCall(ctx, "list_folders", time.Millisecond, nil)
	m.RecordAuthentication(ctx, time.Millisecond, errors.New("denied"))

	rm := collect(t, reader)
	assert.EqualValues(t, 1, counterValue(t, findMetric(rm, "instapaper.mcp.tool_calls"),
		attribute.String("tool", "list_folders")))
	assert.EqualValues(t, 1, counterValue(t, findMetric(rm, "instapaper.auth.exchanges"),
		attribute.String("status", StatusError)))
}

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.RecordAPIRequest(context.Background(), "/x", time.Second, nil)
		m.RecordAuthentication(context.Background(), time.Second, nil)
		m.RecordBulk(context.Background(), "star", 1, 1)
		m.RecordToolCall(context.Background(), "x", time.Second, nil)
	})
}

func TestNoop(t *testing.T) {
	require.NotNil(t, Noop())
	assert.Same(t, DefaultMetrics(), DefaultMetrics())
}
