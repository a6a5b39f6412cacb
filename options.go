package cerno

import (
	"log/slog"

	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/cerno-sec/cerno/endpoint"
	"github.com/cerno-sec/cerno/finding"
)

// SessionOption configures a Session.
type SessionOption func(*sessionConfig)

// sessionConfig holds configuration for a Session instance.
type sessionConfig struct {
	logger        *slog.Logger
	tracer        trace.Tracer
	meter         metric.Meter
	cache         endpoint.Cache
	cacheCapacity int
	strictEmpty   bool
	minSeverity   finding.Severity
}

// WithLogger sets a custom structured logger for the session. If not
// provided, a default JSON logger writing to stdout is created.
func WithLogger(logger *slog.Logger) SessionOption {
	return func(c *sessionConfig) {
		c.logger = logger
	}
}

// WithTracer sets an OpenTelemetry tracer. When set, coverage analysis
// runs inside a span recording record and edge counts.
func WithTracer(tracer trace.Tracer) SessionOption {
	return func(c *sessionConfig) {
		c.tracer = tracer
	}
}

// WithMeter sets an OpenTelemetry meter for cache and analysis metrics.
func WithMeter(meter metric.Meter) SessionOption {
	return func(c *sessionConfig) {
		c.meter = meter
	}
}

// WithCache sets the parse cache used by the session's endpoint parser.
// This replaces the default in-memory LRU; use it to share a cache across
// sessions or to plug in the redis backend:
//
//	rc, err := cache.NewRedis(cache.RedisOptions{URL: redisURL})
//	if err != nil {
//	    return err
//	}
//	session, err := cerno.NewSession(cerno.WithCache(rc))
func WithCache(c endpoint.Cache) SessionOption {
	return func(cfg *sessionConfig) {
		cfg.cache = c
	}
}

// WithCacheCapacity sets the entry limit for the default in-memory parse
// cache. Ignored when WithCache is also given.
func WithCacheCapacity(n int) SessionOption {
	return func(c *sessionConfig) {
		c.cacheCapacity = n
	}
}

// WithStrictEmpty makes AnalyzeCoverage return an error for an empty record
// list instead of an empty analysis.
func WithStrictEmpty() SessionOption {
	return func(c *sessionConfig) {
		c.strictEmpty = true
	}
}

// WithMinSeverity sets the lowest severity included when comparing scans.
func WithMinSeverity(min finding.Severity) SessionOption {
	return func(c *sessionConfig) {
		c.minSeverity = min
	}
}
