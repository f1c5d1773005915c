// Package observe provides observability primitives for NewsFlash:
// OpenTelemetry metrics with a Prometheus exporter bridge.
//
// Metrics are recorded through the OpenTelemetry Metrics API. A package-level
// default [Metrics] instance ([DefaultMetrics]) is provided for convenience;
// tests should use [NewMetrics] with a custom [metric.MeterProvider] to avoid
// cross-test pollution.
package observe

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// meterName is the instrumentation scope name used for all NewsFlash metrics.
const meterName = "github.com/newsflash/newsflash"

// Metrics holds all OpenTelemetry metric instruments for the application.
// All fields are safe for concurrent use — the underlying OTel types handle
// their own synchronisation.
type Metrics struct {
	// --- Latency histograms per pipeline stage ---

	// SearchDuration tracks news search latency.
	SearchDuration metric.Float64Histogram

	// SummaryDuration tracks LLM summarization latency.
	SummaryDuration metric.Float64Histogram

	// SentimentDuration tracks sentiment classification latency.
	SentimentDuration metric.Float64Histogram

	// TTSDuration tracks text-to-speech synthesis latency.
	TTSDuration metric.Float64Histogram

	// --- Counters ---

	// FallbackEvents counts failure/fallback occurrences. Use with attributes:
	//   attribute.String("kind", ...), attribute.String("operation", ...),
	//   attribute.String("language", ...)
	FallbackEvents metric.Int64Counter

	// RetryAttempts counts retries of failed provider calls by operation.
	RetryAttempts metric.Int64Counter

	// ArticlesProcessed counts summarized articles. Use with attributes:
	//   attribute.String("language", ...), attribute.String("mode", "ai"|"fallback")
	ArticlesProcessed metric.Int64Counter

	// ProviderErrors counts provider errors by provider and kind.
	ProviderErrors metric.Int64Counter
}

// latencyBuckets defines histogram bucket boundaries (in seconds) sized for
// remote LLM/TTS round trips.
var latencyBuckets = []float64{
	0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60,
}

// NewMetrics creates a fully initialised [Metrics] struct using the given
// [metric.MeterProvider]. Returns an error if any instrument creation fails.
func NewMetrics(mp metric.MeterProvider) (*Metrics, error) {
	m := mp.Meter(meterName)
	var err error
	met := &Metrics{}

	// Histograms.
	if met.SearchDuration, err = m.Float64Histogram("newsflash.search.duration",
		metric.WithDescription("Latency of news search requests."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}
	if met.SummaryDuration, err = m.Float64Histogram("newsflash.summary.duration",
		metric.WithDescription("Latency of LLM summarization."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}
	if met.SentimentDuration, err = m.Float64Histogram("newsflash.sentiment.duration",
		metric.WithDescription("Latency of sentiment classification."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}
	if met.TTSDuration, err = m.Float64Histogram("newsflash.tts.duration",
		metric.WithDescription("Latency of text-to-speech synthesis."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}

	// Counters.
	if met.FallbackEvents, err = m.Int64Counter("newsflash.fallback.events",
		metric.WithDescription("Total failure/fallback events by kind, operation, and language."),
	); err != nil {
		return nil, err
	}
	if met.RetryAttempts, err = m.Int64Counter("newsflash.retry.attempts",
		metric.WithDescription("Total retries of failed provider calls by operation."),
	); err != nil {
		return nil, err
	}
	if met.ArticlesProcessed, err = m.Int64Counter("newsflash.articles.processed",
		metric.WithDescription("Total summarized articles by language and mode."),
	); err != nil {
		return nil, err
	}
	if met.ProviderErrors, err = m.Int64Counter("newsflash.provider.errors",
		metric.WithDescription("Total provider errors by provider and kind."),
	); err != nil {
		return nil, err
	}

	return met, nil
}

// defaultMetrics is the lazily-initialised package-level Metrics instance.
var (
	defaultMetrics     *Metrics
	defaultMetricsOnce sync.Once
)

// DefaultMetrics returns the package-level [Metrics] instance, creating it on
// first call using [otel.GetMeterProvider]. Subsequent calls return the same
// pointer. Panics if instrument creation fails (should not happen with the
// global provider).
func DefaultMetrics() *Metrics {
	defaultMetricsOnce.Do(func() {
		var err error
		defaultMetrics, err = NewMetrics(otel.GetMeterProvider())
		if err != nil {
			panic("observe: failed to create default metrics: " + err.Error())
		}
	})
	return defaultMetrics
}

// Attr is a convenience alias for [attribute.String] to reduce verbosity at
// call sites.
func Attr(key, value string) attribute.KeyValue {
	return attribute.String(key, value)
}

// FallbackEvent implements the resilience error log's Recorder contract:
// fire-and-forget counting of fallback events.
func (m *Metrics) FallbackEvent(kind, operation, language string) {
	attrs := []attribute.KeyValue{
		attribute.String("kind", kind),
		attribute.String("operation", operation),
	}
	if language != "" {
		attrs = append(attrs, attribute.String("language", language))
	}
	m.FallbackEvents.Add(context.Background(), 1, metric.WithAttributes(attrs...))
}

// RetryAttempt implements the resilience error log's Recorder contract.
func (m *Metrics) RetryAttempt(operation string) {
	m.RetryAttempts.Add(context.Background(), 1,
		metric.WithAttributes(attribute.String("operation", operation)))
}

// RecordProviderError counts one provider error with the standard attribute
// set.
func (m *Metrics) RecordProviderError(ctx context.Context, provider, kind string) {
	m.ProviderErrors.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("provider", provider),
			attribute.String("kind", kind),
		))
}
