package serve

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// LogSpanExporter implements the OpenTelemetry SpanExporter interface and
// writes finished spans to a structured logger. It gives analysis servers
// trace visibility without requiring a collector deployment: each span
// becomes one log record carrying its trace identity, timing, and
// attributes.
type LogSpanExporter struct {
	logger *slog.Logger
}

// NewLogSpanExporter creates a LogSpanExporter writing to the given logger.
// A nil logger falls back to slog.Default(). The returned exporter should
// be registered with the OpenTelemetry SDK's TracerProvider.
func NewLogSpanExporter(logger *slog.Logger) *LogSpanExporter {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogSpanExporter{logger: logger}
}

// ExportSpans writes a batch of finished spans to the logger. It always
// returns nil: logging failures must not break the trace pipeline.
func (e *LogSpanExporter) ExportSpans(ctx context.Context, spans []sdktrace.ReadOnlySpan) error {
	for _, span := range spans {
		sc := span.SpanContext()
		attrs := []slog.Attr{
			slog.String("trace_id", sc.TraceID().String()),
			slog.String("span_id", sc.SpanID().String()),
			slog.Duration("duration", span.EndTime().Sub(span.StartTime())),
			slog.String("kind", span.SpanKind().String()),
		}
		if parent := span.Parent(); parent.HasSpanID() {
			attrs = append(attrs, slog.String("parent_span_id", parent.SpanID().String()))
		}
		for _, kv := range span.Attributes() {
			attrs = append(attrs, slog.Any(string(kv.Key), kv.Value.AsInterface()))
		}

		level := slog.LevelInfo
		if span.Status().Code == codes.Error {
			level = slog.LevelError
			if span.Status().Description != "" {
				attrs = append(attrs, slog.String("status", span.Status().Description))
			}
		}
		e.logger.LogAttrs(ctx, level, "span "+span.Name(), attrs...)
	}
	return nil
}

// Shutdown performs cleanup when the exporter is being shut down. It is a
// no-op: the logger's lifecycle belongs to the caller.
func (e *LogSpanExporter) Shutdown(ctx context.Context) error {
	return nil
}
