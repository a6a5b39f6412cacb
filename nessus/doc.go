// Package nessus imports Nessus scan exports (.nessus files) into findings.
//
// A .nessus file is a NessusClientData_v2 XML document listing report items
// per host. Import aggregates items across hosts by plugin, producing one
// finding per plugin whose endpoint lines name every affected host:port.
// Hosts reported without a specific port become bare host lines, and IPv6
// hosts with ports are bracketed, matching what the endpoint parser
// accepts.
//
// Example:
//
//	scan, err := nessus.ImportFile("weekly.nessus")
//	if err != nil {
//		return err
//	}
//	analysis, _, err := session.AnalyzeFindings(ctx, scan.Findings)
package nessus
