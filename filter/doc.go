// Package filter compiles caller-supplied expressions into predicates over
// findings and coverage records.
//
// Expressions use CEL (Common Expression Language). A compiled filter is
// immutable and safe for concurrent use, so it can be built once from
// configuration and applied across a whole scan.
//
// Finding filters see plugin_id, plugin_name, severity, severity_level,
// cvss3_score, has_metasploit, cves, and status. Record filters see
// finding_id, hosts, ports, pair_count, and signature.
//
// Example:
//
//	f, err := filter.CompileFinding(`severity_level >= 3 && has_metasploit`)
//	if err != nil {
//		return err
//	}
//	kept := f.Apply(findings)
package filter
