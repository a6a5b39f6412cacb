package cerno

import (
	"context"
	"io"
	"log/slog"
	"os"
	"sync/atomic"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/cerno-sec/cerno/cache"
	"github.com/cerno-sec/cerno/config"
	"github.com/cerno-sec/cerno/coverage"
	"github.com/cerno-sec/cerno/endpoint"
	"github.com/cerno-sec/cerno/finding"
	"github.com/cerno-sec/cerno/scandiff"
)

// Session is the top-level entry point for scan review. It ties together an
// endpoint parser with a shared cache, a coverage analyzer, and scan
// comparison settings.
//
// A Session is safe for concurrent use. Create one per review workflow and
// close it when done.
type Session struct {
	parser      *endpoint.Parser
	analyzer    *coverage.Analyzer
	logger      *slog.Logger
	tracer      trace.Tracer
	minSeverity finding.Severity
	cacheCloser io.Closer
	closed      atomic.Bool
}

// NewSession creates a Session with the provided options.
//
//	session, err := cerno.NewSession(
//	    cerno.WithLogger(logger),
//	    cerno.WithCacheCapacity(512),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer session.Close()
func NewSession(opts ...SessionOption) (*Session, error) {
	cfg := &sessionConfig{}
	for _, opt := range opts {
		opt(cfg)
	}

	if cfg.logger == nil {
		cfg.logger = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		}))
	}

	if cfg.minSeverity != "" && !cfg.minSeverity.IsValid() {
		return nil, NewConfigurationError("NewSession", ErrInvalidConfig).
			WithContext(map[string]any{"min_severity": string(cfg.minSeverity)})
	}

	parseCache := cfg.cache
	var closer io.Closer
	if parseCache == nil {
		capacity := cfg.cacheCapacity
		if capacity <= 0 {
			capacity = cache.DefaultCapacity
		}
		var lruOpts []cache.LRUOption
		if cfg.meter != nil {
			lruOpts = append(lruOpts, cache.WithMeter(cfg.meter))
		}
		parseCache = cache.NewLRU(capacity, lruOpts...)
	} else if c, ok := parseCache.(io.Closer); ok {
		closer = c
	}

	analyzerOpts := []coverage.Option{coverage.WithLogger(cfg.logger)}
	if cfg.strictEmpty {
		analyzerOpts = append(analyzerOpts, coverage.WithStrictEmpty())
	}
	if cfg.meter != nil {
		analyzerOpts = append(analyzerOpts, coverage.WithMeter(cfg.meter))
	}

	return &Session{
		parser:      endpoint.NewParser(endpoint.WithCache(parseCache)),
		analyzer:    coverage.New(analyzerOpts...),
		logger:      cfg.logger,
		tracer:      cfg.tracer,
		minSeverity: cfg.minSeverity,
		cacheCloser: closer,
	}, nil
}

// NewSessionFromConfig creates a Session from a loaded cerno.yaml
// configuration. Options given here are applied after the file settings and
// override them.
func NewSessionFromConfig(cfg *config.Config, opts ...SessionOption) (*Session, error) {
	if cfg == nil {
		return nil, NewConfigurationError("NewSessionFromConfig", ErrInvalidConfig)
	}

	var fileOpts []SessionOption

	switch backend := cfg.Cache.GetBackend(); backend {
	case "memory":
		fileOpts = append(fileOpts, WithCacheCapacity(cfg.Cache.GetCapacity()))
	case "redis":
		rc, err := cache.NewRedis(cache.RedisOptions{
			URL:       cfg.Cache.RedisURL,
			KeyPrefix: cfg.Cache.GetKeyPrefix(),
			TTL:       cfg.Cache.GetTTL(),
		})
		if err != nil {
			return nil, NewCacheError("NewSessionFromConfig", err)
		}
		fileOpts = append(fileOpts, WithCache(rc))
	default:
		return nil, NewConfigurationError("NewSessionFromConfig", ErrInvalidConfig).
			WithContext(map[string]any{"cache_backend": backend})
	}

	if cfg.Analysis != nil {
		if cfg.Analysis.StrictEmpty {
			fileOpts = append(fileOpts, WithStrictEmpty())
		}
		if cfg.Analysis.MinSeverity != "" {
			sev, err := finding.ParseSeverity(cfg.Analysis.MinSeverity)
			if err != nil {
				return nil, NewConfigurationError("NewSessionFromConfig", err)
			}
			fileOpts = append(fileOpts, WithMinSeverity(sev))
		}
	}

	return NewSession(append(fileOpts, opts...)...)
}

// Parser returns the session's endpoint parser, for callers that build
// coverage records directly.
func (s *Session) Parser() *endpoint.Parser {
	return s.parser
}

// ParseEndpoints parses raw affected-endpoint lines into a canonical
// endpoint set, reporting unparseable lines as warnings.
func (s *Session) ParseEndpoints(lines []string) (*endpoint.Set, []endpoint.Warning) {
	return s.parser.Parse(lines)
}

// AnalyzeCoverage runs coverage analysis over the given records, producing
// equivalence groups and subset edges.
func (s *Session) AnalyzeCoverage(ctx context.Context, records []coverage.Record) (*coverage.Analysis, error) {
	if s.closed.Load() {
		return nil, ErrSessionClosed
	}
	if s.tracer != nil {
		var span trace.Span
		ctx, span = s.tracer.Start(ctx, "cerno.AnalyzeCoverage",
			trace.WithAttributes(attribute.Int("record_count", len(records))))
		defer span.End()

		analysis, err := s.analyzer.Analyze(ctx, records)
		if err != nil {
			span.RecordError(err)
			return nil, err
		}
		span.SetAttributes(
			attribute.Int("group_count", len(analysis.Groups)),
			attribute.Int("edge_count", len(analysis.Edges)),
		)
		return analysis, nil
	}

	return s.analyzer.Analyze(ctx, records)
}

// AnalyzeFindings converts findings to coverage records using the session's
// parser, then runs coverage analysis. Parse warnings are returned keyed by
// finding ID.
func (s *Session) AnalyzeFindings(ctx context.Context, findings []*finding.Finding) (*coverage.Analysis, map[string][]endpoint.Warning, error) {
	if s.closed.Load() {
		return nil, nil, ErrSessionClosed
	}
	records, warnings := finding.Records(s.parser, findings)
	for id, warns := range warnings {
		for _, w := range warns {
			s.logger.Warn("endpoint line not parsed",
				"finding_id", id,
				"line", w.Line,
				"code", w.Code,
				"text", w.Text)
		}
	}

	analysis, err := s.AnalyzeCoverage(ctx, records)
	if err != nil {
		return nil, warnings, err
	}
	return analysis, warnings, nil
}

// CompareScans classifies findings and hosts between a baseline scan and a
// newer one, honoring the session's minimum severity.
func (s *Session) CompareScans(baseline, current scandiff.Snapshot) *scandiff.Comparison {
	opts := []scandiff.CompareOption{scandiff.WithParser(s.parser)}
	if s.minSeverity != "" {
		opts = append(opts, scandiff.WithMinSeverity(s.minSeverity))
	}
	return scandiff.Compare(baseline, current, opts...)
}

// Close releases session resources. If the session owns a closable cache
// backend (such as redis), it is closed here. After Close, analysis methods
// return ErrSessionClosed; closing twice is a no-op.
func (s *Session) Close() error {
	if !s.closed.CompareAndSwap(false, true) {
		return nil
	}
	if s.cacheCloser != nil {
		return s.cacheCloser.Close()
	}
	return nil
}

// ParseEndpoints parses raw affected-endpoint lines with default settings
// and no shared cache. For repeated parsing, use a Session.
func ParseEndpoints(lines []string) (*endpoint.Set, []endpoint.Warning) {
	return endpoint.NewParser().Parse(lines)
}

// AnalyzeCoverage runs coverage analysis with default settings.
func AnalyzeCoverage(ctx context.Context, records []coverage.Record) (*coverage.Analysis, error) {
	return coverage.Analyze(ctx, records)
}
