package scandiff

import (
	"sort"
	"time"

	"github.com/cerno-sec/cerno/endpoint"
	"github.com/cerno-sec/cerno/finding"
)

// Snapshot is one scan's findings as supplied by the caller.
type Snapshot struct {
	// ScanID identifies the scan.
	ScanID string `json:"scan_id"`

	// ScanName is the scan's display name.
	ScanName string `json:"scan_name"`

	// Date is when the scan ran.
	Date time.Time `json:"date"`

	// Findings are the scan's findings.
	Findings []*finding.Finding `json:"findings"`
}

// Comparison is the result of comparing two scans. Findings are classified
// by plugin presence; hosts by appearance in either scan's endpoint lines.
type Comparison struct {
	Baseline Snapshot `json:"baseline"`
	Current  Snapshot `json:"current"`

	// New findings appear in the current scan but not the baseline.
	New []*finding.Finding `json:"new"`

	// Resolved findings appear in the baseline but not the current scan.
	Resolved []*finding.Finding `json:"resolved"`

	// Persistent findings appear in both scans; the current scan's copy is
	// reported.
	Persistent []*finding.Finding `json:"persistent"`

	// Host deltas, sorted lexicographically.
	NewHosts        []string `json:"new_hosts"`
	RemovedHosts    []string `json:"removed_hosts"`
	PersistentHosts []string `json:"persistent_hosts"`

	// Per-severity counts for each finding class.
	NewBySeverity        map[finding.Severity]int `json:"new_by_severity"`
	ResolvedBySeverity   map[finding.Severity]int `json:"resolved_by_severity"`
	PersistentBySeverity map[finding.Severity]int `json:"persistent_by_severity"`
}

// TotalNew returns the count of new findings.
func (c *Comparison) TotalNew() int { return len(c.New) }

// TotalResolved returns the count of resolved findings.
func (c *Comparison) TotalResolved() int { return len(c.Resolved) }

// TotalPersistent returns the count of persistent findings.
func (c *Comparison) TotalPersistent() int { return len(c.Persistent) }

// CompareOption configures a comparison.
type CompareOption func(*compareConfig)

type compareConfig struct {
	minLevel int
	parser   *endpoint.Parser
}

// WithMinSeverity excludes findings below the given severity from the
// comparison on both sides.
func WithMinSeverity(min finding.Severity) CompareOption {
	return func(c *compareConfig) {
		c.minLevel = min.Level()
	}
}

// WithParser sets the endpoint parser used to derive host deltas. Supply a
// parser with a shared cache when comparing repeatedly; without this option
// an uncached parser is used.
func WithParser(p *endpoint.Parser) CompareOption {
	return func(c *compareConfig) {
		c.parser = p
	}
}

// Compare classifies findings and hosts between a baseline scan and a newer
// one. Findings sharing a plugin ID across the two scans are persistent;
// plugin IDs only in the current scan are new, only in the baseline are
// resolved. Output slices are sorted by severity descending, then plugin
// name, matching review display order.
func Compare(baseline, current Snapshot, opts ...CompareOption) *Comparison {
	cfg := &compareConfig{}
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.parser == nil {
		cfg.parser = endpoint.NewParser()
	}

	basePlugins := pluginSet(baseline.Findings, cfg.minLevel)
	currPlugins := pluginSet(current.Findings, cfg.minLevel)

	cmp := &Comparison{
		Baseline:             baseline,
		Current:              current,
		NewBySeverity:        make(map[finding.Severity]int),
		ResolvedBySeverity:   make(map[finding.Severity]int),
		PersistentBySeverity: make(map[finding.Severity]int),
	}

	for _, f := range eligible(current.Findings, cfg.minLevel) {
		if _, inBase := basePlugins[f.PluginID]; inBase {
			cmp.Persistent = append(cmp.Persistent, f)
			cmp.PersistentBySeverity[f.Severity]++
		} else {
			cmp.New = append(cmp.New, f)
			cmp.NewBySeverity[f.Severity]++
		}
	}
	for _, f := range eligible(baseline.Findings, cfg.minLevel) {
		if _, inCurr := currPlugins[f.PluginID]; !inCurr {
			cmp.Resolved = append(cmp.Resolved, f)
			cmp.ResolvedBySeverity[f.Severity]++
		}
	}

	sortFindings(cmp.New)
	sortFindings(cmp.Resolved)
	sortFindings(cmp.Persistent)

	baseHosts := hostSet(cfg.parser, baseline.Findings)
	currHosts := hostSet(cfg.parser, current.Findings)
	cmp.NewHosts = difference(currHosts, baseHosts)
	cmp.RemovedHosts = difference(baseHosts, currHosts)
	cmp.PersistentHosts = intersection(currHosts, baseHosts)

	return cmp
}

func eligible(findings []*finding.Finding, minLevel int) []*finding.Finding {
	out := make([]*finding.Finding, 0, len(findings))
	for _, f := range findings {
		if f.Severity.Level() >= minLevel {
			out = append(out, f)
		}
	}
	return out
}

func pluginSet(findings []*finding.Finding, minLevel int) map[int]struct{} {
	set := make(map[int]struct{}, len(findings))
	for _, f := range findings {
		if f.Severity.Level() >= minLevel {
			set[f.PluginID] = struct{}{}
		}
	}
	return set
}

// hostSet collects every host named by any finding's endpoint lines. Parse
// warnings are ignored here; the affected-host delta only needs the lines
// that did parse.
func hostSet(p *endpoint.Parser, findings []*finding.Finding) map[string]struct{} {
	hosts := make(map[string]struct{})
	for _, f := range findings {
		set, _ := p.Parse(f.Endpoints)
		for _, h := range set.Hosts() {
			hosts[h] = struct{}{}
		}
	}
	return hosts
}

func difference(a, b map[string]struct{}) []string {
	var out []string
	for h := range a {
		if _, ok := b[h]; !ok {
			out = append(out, h)
		}
	}
	sort.Strings(out)
	return out
}

func intersection(a, b map[string]struct{}) []string {
	var out []string
	for h := range a {
		if _, ok := b[h]; ok {
			out = append(out, h)
		}
	}
	sort.Strings(out)
	return out
}

func sortFindings(findings []*finding.Finding) {
	sort.Slice(findings, func(i, j int) bool {
		if findings[i].Severity.Level() != findings[j].Severity.Level() {
			return findings[i].Severity.Level() > findings[j].Severity.Level()
		}
		return findings[i].PluginName < findings[j].PluginName
	})
}
