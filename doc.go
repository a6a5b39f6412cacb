// Package cerno provides the top-level API for reviewing vulnerability scan
// findings: parsing affected-endpoint exports, grouping findings with
// identical coverage, and surfacing the subset relationships between them.
//
// # Core Concepts
//
// The library is organized around a few concepts:
//
//   - Endpoint sets: canonical host/port data parsed from raw scanner
//     export lines (package endpoint)
//   - Findings: scanner results carrying severity, plugin metadata, and
//     raw endpoint lines (package finding)
//   - Coverage analysis: equivalence groups and subset edges over finding
//     endpoint sets (package coverage)
//   - Scan comparison: new/resolved/persistent classification between two
//     scans (package scandiff)
//
// # Getting Started
//
// A Session ties the pieces together with a shared parse cache, logger,
// and analyzer configuration:
//
//	session, err := cerno.NewSession(
//	    cerno.WithCacheCapacity(512),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer session.Close()
//
//	set, warnings := session.ParseEndpoints(lines)
//	analysis, err := session.AnalyzeCoverage(ctx, records)
//
// Callers that only need a single operation can use the package-level
// ParseEndpoints and AnalyzeCoverage, which run with default settings.
//
// # Configuration
//
// Sessions accept functional options (WithLogger, WithCache,
// WithStrictEmpty, and others), or can be built from a cerno.yaml file via
// NewSessionFromConfig. The config package documents the file format.
//
// # Serving
//
// The serve and registry packages provide gRPC server scaffolding and etcd
// service registration for running coverage analysis as a network service.
package cerno
