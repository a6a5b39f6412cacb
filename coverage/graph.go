package coverage

import "sort"

// Analysis is the result of one analyzer invocation. All slices are sorted
// deterministically: group members and groups by finding ID, edges by
// superset then subset ID.
type Analysis struct {
	// Groups partitions the analyzed findings by pair-set signature.
	Groups []EquivalenceGroup `json:"groups"`

	// Edges is the full edge set: every pairwise strict-subset fact.
	Edges []Edge `json:"edges"`

	// MaximalEdges is the derived view with transitively implied edges
	// removed: an edge A->C is suppressed when some intermediate B has both
	// A->B and B->C in the full set. Use this for display; use Edges when
	// every subset fact matters.
	MaximalEdges []Edge `json:"maximal_edges"`

	// Edge arena indexes keyed by finding ID, positions into Edges.
	outgoing map[string][]int
	incoming map[string][]int
}

// Outgoing returns the full-view edges where id is the superset, i.e. the
// findings id covers.
func (a *Analysis) Outgoing(id string) []Edge {
	return a.edgesAt(a.outgoing[id])
}

// Incoming returns the full-view edges where id is the subset, i.e. the
// findings that cover id.
func (a *Analysis) Incoming(id string) []Edge {
	return a.edgesAt(a.incoming[id])
}

// GroupOf returns the equivalence group containing id, or nil if the finding
// was not part of the analysis.
func (a *Analysis) GroupOf(id string) *EquivalenceGroup {
	for i := range a.Groups {
		members := a.Groups[i].Members
		pos := sort.SearchStrings(members, id)
		if pos < len(members) && members[pos] == id {
			return &a.Groups[i]
		}
	}
	return nil
}

func (a *Analysis) edgesAt(positions []int) []Edge {
	if len(positions) == 0 {
		return nil
	}
	out := make([]Edge, len(positions))
	for i, pos := range positions {
		out[i] = a.Edges[pos]
	}
	return out
}

// buildIndexes fills the outgoing/incoming lookup maps from the edge arena.
func (a *Analysis) buildIndexes() {
	a.outgoing = make(map[string][]int)
	a.incoming = make(map[string][]int)
	for i, e := range a.Edges {
		a.outgoing[e.SupersetID] = append(a.outgoing[e.SupersetID], i)
		a.incoming[e.SubsetID] = append(a.incoming[e.SubsetID], i)
	}
}

// reduceMaximal derives the maximal view: edges not implied by a length-two
// path through an intermediate finding. Subset containment is transitive, so
// any longer implying path also yields such an intermediate.
func reduceMaximal(edges []Edge, outgoing map[string][]int) []Edge {
	if len(edges) == 0 {
		return nil
	}

	present := make(map[Edge]struct{}, len(edges))
	for _, e := range edges {
		present[e] = struct{}{}
	}

	maximal := make([]Edge, 0, len(edges))
	for _, e := range edges {
		implied := false
		for _, pos := range outgoing[e.SupersetID] {
			mid := edges[pos].SubsetID
			if mid == e.SubsetID {
				continue
			}
			if _, ok := present[Edge{SupersetID: mid, SubsetID: e.SubsetID}]; ok {
				implied = true
				break
			}
		}
		if !implied {
			maximal = append(maximal, e)
		}
	}
	return maximal
}

func sortEdges(edges []Edge) {
	sort.Slice(edges, func(i, j int) bool {
		if edges[i].SupersetID != edges[j].SupersetID {
			return edges[i].SupersetID < edges[j].SupersetID
		}
		return edges[i].SubsetID < edges[j].SubsetID
	})
}
