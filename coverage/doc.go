// Package coverage computes equivalence and subsumption relationships across
// the findings of one scan.
//
// Given a collection of records pairing an opaque finding identifier with its
// parsed endpoint.Set, the analyzer produces:
//
//   - Equivalence groups: findings whose pair sets are exactly identical,
//     bucketed by canonical signature. Groups partition the input; every
//     finding belongs to exactly one group.
//   - Coverage edges: directed facts that one finding's pair set strictly
//     contains another's. The full edge set reports every pairwise subset
//     relation; the maximal view hides edges already implied through an
//     intermediate finding, which is what review UIs typically render.
//
// Records with an empty pair set still form their own equivalence group but
// never participate in coverage edges.
//
// The computation is pure and synchronous: no I/O, no goroutines, memory
// proportional to the total pair count. Output ordering is deterministic for
// identical input, so repeated or concurrent analyses of the same record set
// agree exactly.
//
// Example usage:
//
//	analysis, err := coverage.New().Analyze(ctx, records)
//	if err != nil {
//		return err
//	}
//	for _, g := range analysis.Groups {
//		if len(g.Members) > 1 {
//			fmt.Println("identical endpoint sets:", g.Members)
//		}
//	}
//	for _, e := range analysis.MaximalEdges {
//		fmt.Printf("%s covers %s\n", e.SupersetID, e.SubsetID)
//	}
package coverage
