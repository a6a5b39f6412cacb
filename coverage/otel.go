package coverage

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// otelMetrics holds the OpenTelemetry instruments for the analyzer. They are
// created once during WithMeter configuration and reused for all analyses.
type otelMetrics struct {
	// durationHistogram records analysis duration in milliseconds
	durationHistogram metric.Float64Histogram

	// recordCounter counts findings analyzed
	recordCounter metric.Int64Counter

	// edgeCounter counts coverage edges produced (full view)
	edgeCounter metric.Int64Counter
}

// newOTelMetrics creates the instruments. Creation errors leave the
// corresponding instrument nil; recording skips nil instruments so a partial
// failure never breaks analysis.
func newOTelMetrics(meter metric.Meter) *otelMetrics {
	if meter == nil {
		return nil
	}

	m := &otelMetrics{}
	m.durationHistogram, _ = meter.Float64Histogram(
		"coverage.analyze.duration",
		metric.WithDescription("Coverage analysis duration in milliseconds"),
		metric.WithUnit("ms"),
	)
	m.recordCounter, _ = meter.Int64Counter(
		"coverage.analyze.records",
		metric.WithDescription("Finding records analyzed"),
		metric.WithUnit("1"),
	)
	m.edgeCounter, _ = meter.Int64Counter(
		"coverage.analyze.edges",
		metric.WithDescription("Coverage edges produced (full edge set)"),
		metric.WithUnit("1"),
	)
	return m
}

// record captures one analysis. Safe to call on a nil receiver, which is the
// unconfigured case.
func (m *otelMetrics) record(ctx context.Context, records int, analysis *Analysis, elapsed time.Duration) {
	if m == nil {
		return
	}

	opts := metric.WithAttributes(
		attribute.Int("coverage.groups", len(analysis.Groups)),
	)
	if m.durationHistogram != nil {
		m.durationHistogram.Record(ctx, float64(elapsed.Milliseconds()), opts)
	}
	if m.recordCounter != nil {
		m.recordCounter.Add(ctx, int64(records), opts)
	}
	if m.edgeCounter != nil {
		m.edgeCounter.Add(ctx, int64(len(analysis.Edges)), opts)
	}
}
