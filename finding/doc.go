// Package finding provides types for representing vulnerability-scan
// findings under review.
//
// A Finding corresponds to one scanner plugin's result within one scan: the
// plugin identity, severity, CVE references, and the raw endpoint lines
// describing which systems are affected. Findings carry review state
// (open or reviewed) so an analyst can work through a scan incrementally.
//
// The package bridges findings into the comparison engine: Record parses a
// finding's raw endpoint lines through an endpoint.Parser and yields the
// coverage.Record consumed by coverage.Analyzer.
//
// # Severity Levels
//
// Severity follows the scanner convention of five levels, critical through
// info, with numeric levels 4 down to 0 and weights for risk ordering.
package finding
