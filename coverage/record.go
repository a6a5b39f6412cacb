package coverage

import (
	"github.com/cerno-sec/cerno/endpoint"
)

// Record pairs a caller-supplied finding identifier with that finding's
// parsed endpoint set. The identifier is opaque to the analyzer; it is only
// compared for uniqueness and echoed into groups and edges. Records are
// constructed per analysis call and never retained.
type Record struct {
	// FindingID identifies the finding. Must be non-empty and unique within
	// one analysis request.
	FindingID string `json:"finding_id"`

	// Endpoints is the finding's canonical endpoint set.
	Endpoints *endpoint.Set `json:"endpoints"`
}

// EquivalenceGroup is a set of findings whose endpoint pair sets are exactly
// identical.
type EquivalenceGroup struct {
	// Signature is the canonical pair-set identity shared by all members
	// (endpoint.Set.Signature). Empty for findings with no declared pairs.
	Signature string `json:"signature"`

	// Members lists the finding IDs sharing the signature, sorted
	// lexicographically. Always has at least one element; callers typically
	// hide singleton groups at render time.
	Members []string `json:"members"`
}

// Edge is a directed coverage fact: the subset finding's pairs are a
// non-empty strict subset of the superset finding's pairs. Findings with
// equal pair sets are reported through equivalence groups, never as edges.
type Edge struct {
	SupersetID string `json:"superset_id"`
	SubsetID   string `json:"subset_id"`
}
