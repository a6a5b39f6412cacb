package coverage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"go.opentelemetry.io/otel/metric"
)

// Sentinel errors returned by the analyzer. Use errors.Is to test for them
// through wrapping.
var (
	// ErrInvalidInput indicates structurally invalid input such as duplicate
	// finding IDs or a nil endpoint set. This signals a caller bug, not scan
	// noise, and is never degraded to a warning.
	ErrInvalidInput = errors.New("coverage: invalid input")

	// ErrEmptyInput is returned for an empty record slice only when the
	// analyzer was built with WithStrictEmpty. By default empty input yields
	// empty outputs.
	ErrEmptyInput = errors.New("coverage: empty input")
)

// Analyzer computes equivalence groups and coverage edges. A zero-option
// Analyzer is valid; construct one per configuration and reuse it freely,
// every Analyze invocation is independent and reentrant.
type Analyzer struct {
	strictEmpty bool
	logger      *slog.Logger
	metrics     *otelMetrics
}

// Option configures an Analyzer.
type Option func(*Analyzer)

// WithStrictEmpty makes Analyze fail with ErrEmptyInput when called with no
// records.
func WithStrictEmpty() Option {
	return func(a *Analyzer) {
		a.strictEmpty = true
	}
}

// WithLogger sets a structured logger for analysis summaries. Without one
// the analyzer is silent.
func WithLogger(logger *slog.Logger) Option {
	return func(a *Analyzer) {
		a.logger = logger
	}
}

// WithMeter attaches OpenTelemetry instruments recording analysis duration
// and result sizes.
func WithMeter(meter metric.Meter) Option {
	return func(a *Analyzer) {
		a.metrics = newOTelMetrics(meter)
	}
}

// New creates an Analyzer with the given options.
func New(opts ...Option) *Analyzer {
	a := &Analyzer{}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Analyze is shorthand for New().Analyze.
func Analyze(ctx context.Context, records []Record) (*Analysis, error) {
	return New().Analyze(ctx, records)
}

// Analyze computes equivalence groups and coverage edges for one scan's
// records.
//
// Grouping buckets records by pair-set signature in O(N) over precomputed
// signatures. Edge computation compares every ordered pair of records with
// non-empty, non-identical pair sets; the quadratic scan is bounded by a
// cardinality pre-filter (a larger pair set is never a subset of a smaller
// one) and is acceptable at the scale of findings per scan.
func (a *Analyzer) Analyze(ctx context.Context, records []Record) (*Analysis, error) {
	start := time.Now()

	if len(records) == 0 {
		if a.strictEmpty {
			return nil, ErrEmptyInput
		}
		analysis := &Analysis{}
		analysis.buildIndexes()
		return analysis, nil
	}

	if err := validateRecords(records); err != nil {
		return nil, err
	}

	analysis := &Analysis{
		Groups: buildGroups(records),
		Edges:  buildEdges(records),
	}
	analysis.buildIndexes()
	analysis.MaximalEdges = reduceMaximal(analysis.Edges, analysis.outgoing)

	elapsed := time.Since(start)
	if a.logger != nil {
		a.logger.Debug("coverage analysis complete",
			"records", len(records),
			"groups", len(analysis.Groups),
			"edges", len(analysis.Edges),
			"maximal_edges", len(analysis.MaximalEdges),
			"duration", elapsed)
	}
	a.metrics.record(ctx, len(records), analysis, elapsed)

	return analysis, nil
}

// validateRecords rejects structural misuse: duplicate or empty finding IDs
// and nil endpoint sets.
func validateRecords(records []Record) error {
	seen := make(map[string]struct{}, len(records))
	for i, r := range records {
		if r.FindingID == "" {
			return fmt.Errorf("%w: record %d has empty finding ID", ErrInvalidInput, i)
		}
		if r.Endpoints == nil {
			return fmt.Errorf("%w: finding %q has nil endpoint set", ErrInvalidInput, r.FindingID)
		}
		if _, dup := seen[r.FindingID]; dup {
			return fmt.Errorf("%w: duplicate finding ID %q", ErrInvalidInput, r.FindingID)
		}
		seen[r.FindingID] = struct{}{}
	}
	return nil
}

// buildGroups partitions records by pair-set signature.
func buildGroups(records []Record) []EquivalenceGroup {
	buckets := make(map[string][]string)
	for _, r := range records {
		sig := r.Endpoints.Signature()
		buckets[sig] = append(buckets[sig], r.FindingID)
	}

	groups := make([]EquivalenceGroup, 0, len(buckets))
	for sig, members := range buckets {
		sort.Strings(members)
		groups = append(groups, EquivalenceGroup{Signature: sig, Members: members})
	}
	sort.Slice(groups, func(i, j int) bool {
		return groups[i].Members[0] < groups[j].Members[0]
	})
	return groups
}

// buildEdges reports every ordered pair (A, B) where B's pairs are a
// non-empty strict subset of A's. Records with equal signatures are unified
// by grouping instead, so edges are strictly non-equal by construction.
func buildEdges(records []Record) []Edge {
	participants := make([]Record, 0, len(records))
	for _, r := range records {
		if r.Endpoints.PairCount() > 0 {
			participants = append(participants, r)
		}
	}

	var edges []Edge
	for _, super := range participants {
		for _, sub := range participants {
			if super.FindingID == sub.FindingID {
				continue
			}
			if sub.Endpoints.PairCount() >= super.Endpoints.PairCount() {
				continue
			}
			if super.Endpoints.ContainsAll(sub.Endpoints) {
				edges = append(edges, Edge{
					SupersetID: super.FindingID,
					SubsetID:   sub.FindingID,
				})
			}
		}
	}
	sortEdges(edges)
	return edges
}
