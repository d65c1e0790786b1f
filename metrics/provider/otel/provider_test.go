package otel

import (
	"context"
	"testing"

	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func collect(t *testing.T, reader *sdkmetric.ManualReader) metricdata.ResourceMetrics {
	t.Helper()

	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		t.Fatalf("collect: %v", err)
	}
	return rm
}

func findMetric(t *testing.T, rm metricdata.ResourceMetrics, name string) metricdata.Metrics {
	t.Helper()

	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name == name {
				return m
			}
		}
	}
	t.Fatalf("no metric named %s", name)
	return metricdata.Metrics{}
}

func TestCounter(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	p := NewFromMeter(mp.Meter("test"))

	c := p.NewCounter("requests.total")
	c.Add(1)
	c.With("method", "GET").Add(2)

	m := findMetric(t, collect(t, reader), "requests.total")
	sum, ok := m.Data.(metricdata.Sum[float64])
	if !ok {
		t.Fatalf("unexpected data type %T", m.Data)
	}
	if !sum.IsMonotonic {
		t.Fatal("counter should be monotonic")
	}

	var total float64
	for _, dp := range sum.DataPoints {
		total += dp.Value
	}
	if total != 3 {
		t.Fatalf("total = %v, want 3", total)
	}
}

func TestGauge(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	p := NewFromMeter(mp.Meter("test"))

	g := p.NewGauge("active")
	g.Add(2)
	g.Add(1)
	g.Add(-1)

	m := findMetric(t, collect(t, reader), "active")
	gauge, ok := m.Data.(metricdata.Gauge[float64])
	if !ok {
		t.Fatalf("unexpected data type %T", m.Data)
	}
	if len(gauge.DataPoints) != 1 {
		t.Fatalf("len(datapoints) = %d, want 1", len(gauge.DataPoints))
	}
	if got := gauge.DataPoints[0].Value; got != 2 {
		t.Fatalf("gauge = %v, want 2", got)
	}
}

func TestHistogram(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	p := NewFromMeter(mp.Meter("test"))

	h := p.NewHistogram("request.duration", 50)
	h.Observe(0.25)
	h.Observe(0.75)

	m := findMetric(t, collect(t, reader), "request.duration")
	hist, ok := m.Data.(metricdata.Histogram[float64])
	if !ok {
		t.Fatalf("unexpected data type %T", m.Data)
	}

	var count uint64
	for _, dp := range hist.DataPoints {
		count += dp.Count
	}
	if count != 2 {
		t.Fatalf("count = %v, want 2", count)
	}
}

func TestInstrumentReuse(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	p := NewFromMeter(mp.Meter("test"))

	a := p.NewCounter("reused")
	b := p.NewCounter("reused")
	if a != b {
		t.Fatal("expected the same counter for the same name")
	}
}
