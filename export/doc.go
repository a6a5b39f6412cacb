// Package export serializes findings, coverage analyses, and scan
// comparisons for reports and downstream tooling.
//
// Two formats are supported: JSON for machine consumption and CSV for
// spreadsheet review. The Format type carries the file extension and MIME
// type for each, so callers writing files or HTTP responses do not
// duplicate that mapping.
//
// Example:
//
//	var buf bytes.Buffer
//	if err := export.WriteFindings(&buf, export.FormatCSV, findings); err != nil {
//		return err
//	}
package export
