// Package observe holds the OpenTelemetry metric instruments for the
// translation pipeline and the Prometheus bridge that exposes them on
// /metrics.
//
// Tests should use [NewMetrics] with their own [metric.MeterProvider]
// instead of [DefaultMetrics] to avoid cross-test pollution.
package observe

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const meterName = "github.com/ayusman/swaram"

// Metrics holds all metric instruments. The OTel types are safe for
// concurrent use.
type Metrics struct {
	// FrameDuration tracks decode + extract + classify latency per frame.
	FrameDuration metric.Float64Histogram

	// SynthesisDuration tracks text-to-speech latency.
	SynthesisDuration metric.Float64Histogram

	// Frames counts received frames. Attributes: mode, status.
	Frames metric.Int64Counter

	// Predictions counts fired prediction events. Attributes: label, kind.
	Predictions metric.Int64Counter

	// Flushes counts utterances flushed after a pause.
	Flushes metric.Int64Counter

	// Errors counts per-message failures. Attribute: kind.
	Errors metric.Int64Counter

	// ActiveSessions tracks open WebSocket connections.
	ActiveSessions metric.Int64UpDownCounter
}

// latencyBuckets are in seconds, tuned around the 100 ms frame budget.
var latencyBuckets = []float64{
	0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5,
}

// NewMetrics creates all instruments on the given provider.
func NewMetrics(mp metric.MeterProvider) (*Metrics, error) {
	m := mp.Meter(meterName)
	var err error
	met := &Metrics{}

	if met.FrameDuration, err = m.Float64Histogram("swaram.frame.duration",
		metric.WithDescription("Latency of frame decode, extraction and classification."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}
	if met.SynthesisDuration, err = m.Float64Histogram("swaram.speech.duration",
		metric.WithDescription("Latency of speech synthesis."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}

	if met.Frames, err = m.Int64Counter("swaram.frames",
		metric.WithDescription("Frames received by mode and status."),
	); err != nil {
		return nil, err
	}
	if met.Predictions, err = m.Int64Counter("swaram.predictions",
		metric.WithDescription("Prediction events emitted by label and kind."),
	); err != nil {
		return nil, err
	}
	if met.Flushes, err = m.Int64Counter("swaram.flushes",
		metric.WithDescription("Utterances flushed after a pause."),
	); err != nil {
		return nil, err
	}
	if met.Errors, err = m.Int64Counter("swaram.errors",
		metric.WithDescription("Per-message failures by kind."),
	); err != nil {
		return nil, err
	}

	if met.ActiveSessions, err = m.Int64UpDownCounter("swaram.active_sessions",
		metric.WithDescription("Number of open client connections."),
	); err != nil {
		return nil, err
	}

	return met, nil
}

var (
	defaultMetrics     *Metrics
	defaultMetricsOnce sync.Once
)

// DefaultMetrics returns the package-level instance, created on first call
// from [otel.GetMeterProvider].
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

// RecordFrame records one processed frame.
func (m *Metrics) RecordFrame(ctx context.Context, mode, status string, d time.Duration) {
	attrs := metric.WithAttributes(attribute.String("mode", mode), attribute.String("status", status))
	m.Frames.Add(ctx, 1, attrs)
	if d > 0 {
		m.FrameDuration.Record(ctx, d.Seconds(), metric.WithAttributes(attribute.String("mode", mode)))
	}
}

// RecordPrediction records a fired prediction event.
func (m *Metrics) RecordPrediction(ctx context.Context, label, kind string) {
	m.Predictions.Add(ctx, 1, metric.WithAttributes(
		attribute.String("label", label),
		attribute.String("kind", kind),
	))
}

// RecordFlush records a flushed utterance.
func (m *Metrics) RecordFlush(ctx context.Context) {
	m.Flushes.Add(ctx, 1)
}

// RecordSynthesis records a speech synthesis call.
func (m *Metrics) RecordSynthesis(ctx context.Context, provider string, d time.Duration) {
	m.SynthesisDuration.Record(ctx, d.Seconds(), metric.WithAttributes(attribute.String("provider", provider)))
}

// RecordError counts a per-message failure.
func (m *Metrics) RecordError(ctx context.Context, kind string) {
	m.Errors.Add(ctx, 1, metric.WithAttributes(attribute.String("kind", kind)))
}
