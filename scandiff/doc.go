// Package scandiff compares the findings of two scans of the same
// environment.
//
// Given a baseline snapshot and a newer one, Compare classifies findings by
// plugin presence into new (in the newer scan only), resolved (in the
// baseline only), and persistent (in both), with per-severity counts for
// summary tables. Hosts are classified the same way: a host is derived from
// each finding's endpoint lines through the endpoint parser, so the host
// deltas reflect exactly the systems the scanner reported as affected.
//
// The comparison is a pure in-memory computation over caller-supplied
// snapshots. How scans are stored, and which two are compared, is the
// caller's concern.
package scandiff
