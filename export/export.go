package export

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/cerno-sec/cerno/coverage"
	"github.com/cerno-sec/cerno/finding"
	"github.com/cerno-sec/cerno/scandiff"
)

// ErrUnsupportedFormat is returned when a writer is asked for a format it
// does not implement.
var ErrUnsupportedFormat = errors.New("export: unsupported format")

// WriteFindings serializes findings to w in the given format. CSV output
// has one row per finding with endpoints joined by semicolons.
func WriteFindings(w io.Writer, format Format, findings []*finding.Finding) error {
	switch format {
	case FormatJSON:
		return writeJSON(w, findings)
	case FormatCSV:
		return writeFindingsCSV(w, findings)
	default:
		return fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
}

// WriteAnalysis serializes a coverage analysis to w. JSON carries the
// complete analysis; CSV carries the maximal edge view, one superset/subset
// row per edge, which is the actionable list for review.
func WriteAnalysis(w io.Writer, format Format, a *coverage.Analysis) error {
	switch format {
	case FormatJSON:
		return writeJSON(w, a)
	case FormatCSV:
		return writeAnalysisCSV(w, a)
	default:
		return fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
}

// WriteComparison serializes a scan comparison to w. CSV output has one
// row per finding tagged with its class (new, resolved, or persistent).
func WriteComparison(w io.Writer, format Format, cmp *scandiff.Comparison) error {
	switch format {
	case FormatJSON:
		return writeJSON(w, cmp)
	case FormatCSV:
		return writeComparisonCSV(w, cmp)
	default:
		return fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("export: encoding JSON: %w", err)
	}
	return nil
}

func writeFindingsCSV(w io.Writer, findings []*finding.Finding) error {
	cw := csv.NewWriter(w)
	header := []string{
		"id", "scan_id", "plugin_id", "plugin_name", "severity",
		"cvss3_score", "has_metasploit", "cves", "status", "endpoints",
	}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("export: writing CSV header: %w", err)
	}
	for _, f := range findings {
		score := ""
		if f.CVSS3Score != nil {
			score = strconv.FormatFloat(*f.CVSS3Score, 'f', 1, 64)
		}
		row := []string{
			f.ID,
			f.ScanID,
			strconv.Itoa(f.PluginID),
			f.PluginName,
			f.Severity.String(),
			score,
			strconv.FormatBool(f.HasMetasploit),
			strings.Join(f.CVEs, ";"),
			string(f.Status),
			strings.Join(f.Endpoints, ";"),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("export: writing CSV row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

func writeAnalysisCSV(w io.Writer, a *coverage.Analysis) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"superset_id", "subset_id"}); err != nil {
		return fmt.Errorf("export: writing CSV header: %w", err)
	}
	for _, e := range a.MaximalEdges {
		if err := cw.Write([]string{e.SupersetID, e.SubsetID}); err != nil {
			return fmt.Errorf("export: writing CSV row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

func writeComparisonCSV(w io.Writer, cmp *scandiff.Comparison) error {
	cw := csv.NewWriter(w)
	header := []string{"class", "plugin_id", "plugin_name", "severity"}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("export: writing CSV header: %w", err)
	}
	write := func(class string, findings []*finding.Finding) error {
		for _, f := range findings {
			row := []string{class, strconv.Itoa(f.PluginID), f.PluginName, f.Severity.String()}
			if err := cw.Write(row); err != nil {
				return fmt.Errorf("export: writing CSV row: %w", err)
			}
		}
		return nil
	}
	if err := write("new", cmp.New); err != nil {
		return err
	}
	if err := write("resolved", cmp.Resolved); err != nil {
		return err
	}
	if err := write("persistent", cmp.Persistent); err != nil {
		return err
	}
	cw.Flush()
	return cw.Error()
}
