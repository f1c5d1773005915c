package observe

import (
	"context"
	"testing"

	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

// newTestMetrics returns a Metrics instance backed by a ManualReader for
// programmatic metric inspection.
func newTestMetrics(t *testing.T) (*Metrics, *sdkmetric.ManualReader) {
	t.Helper()
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = mp.Shutdown(context.Background()) })

	m, err := NewMetrics(mp)
	if err != nil {
		t.Fatalf("NewMetrics: %v", err)
	}
	return m, reader
}

// collect gathers all metric data from the reader.
func collect(t *testing.T, reader *sdkmetric.ManualReader) metricdata.ResourceMetrics {
	t.Helper()
	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		t.Fatalf("Collect: %v", err)
	}
	return rm
}

// findMetric searches for a metric by name across all scope metrics.
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

func TestNewMetrics_CreatesWithoutError(t *testing.T) {
	m, _ := newTestMetrics(t)
	if m == nil {
		t.Fatal("NewMetrics returned nil")
	}
}

func TestHistogramObservation(t *testing.T) {
	m, reader := newTestMetrics(t)
	ctx := context.Background()

	histograms := []struct {
		name string
		h    metric.Float64Histogram
	}{
		{"newsflash.search.duration", m.SearchDuration},
		{"newsflash.summary.duration", m.SummaryDuration},
		{"newsflash.sentiment.duration", m.SentimentDuration},
		{"newsflash.tts.duration", m.TTSDuration},
	}
	for _, h := range histograms {
		h.h.Record(ctx, 0.42)
	}

	rm := collect(t, reader)
	for _, h := range histograms {
		if findMetric(rm, h.name) == nil {
			t.Errorf("metric %q not found after recording", h.name)
		}
	}
}

func TestFallbackEventRecorder(t *testing.T) {
	m, reader := newTestMetrics(t)

	m.FallbackEvent("language", "summarize", "hi")
	m.FallbackEvent("ai_service", "summarize", "")
	m.RetryAttempt("summarize")

	rm := collect(t, reader)
	fb := findMetric(rm, "newsflash.fallback.events")
	if fb == nil {
		t.Fatal("fallback events metric not found")
	}
	sum, ok := fb.Data.(metricdata.Sum[int64])
	if !ok {
		t.Fatalf("fallback events data type = %T, want Sum[int64]", fb.Data)
	}
	var total int64
	for _, dp := range sum.DataPoints {
		total += dp.Value
	}
	if total != 2 {
		t.Fatalf("fallback event total = %d, want 2", total)
	}

	if findMetric(rm, "newsflash.retry.attempts") == nil {
		t.Fatal("retry attempts metric not found")
	}
}

func TestRecordProviderError(t *testing.T) {
	m, reader := newTestMetrics(t)
	m.RecordProviderError(context.Background(), "gemini", "llm")

	rm := collect(t, reader)
	if findMetric(rm, "newsflash.provider.errors") == nil {
		t.Fatal("provider errors metric not found")
	}
}
