package filter

import (
	"errors"
	"testing"

	"github.com/cerno-sec/cerno/coverage"
	"github.com/cerno-sec/cerno/endpoint"
	"github.com/cerno-sec/cerno/finding"
)

func TestCompileFindingInvalidExpression(t *testing.T) {
	_, err := CompileFinding("severity >>> 3")
	if !errors.Is(err, ErrInvalidExpression) {
		t.Errorf("error = %v, want ErrInvalidExpression", err)
	}
}

func TestCompileFindingNonBool(t *testing.T) {
	_, err := CompileFinding("plugin_id + 1")
	if !errors.Is(err, ErrNotBool) {
		t.Errorf("error = %v, want ErrNotBool", err)
	}
}

func TestFindingFilterMatch(t *testing.T) {
	score := 9.8
	critical := finding.New("s1", 10003, "Remote Code Execution", finding.SeverityCritical,
		[]string{"10.0.0.3:8080"})
	critical.CVSS3Score = &score
	critical.HasMetasploit = true
	critical.CVEs = []string{"CVE-2026-0001"}

	info := finding.New("s1", 20001, "Traceroute Information", finding.SeverityInfo, nil)

	tests := []struct {
		name string
		expr string
		f    *finding.Finding
		want bool
	}{
		{"severity level", "severity_level >= 3", critical, true},
		{"severity level excludes info", "severity_level >= 3", info, false},
		{"severity name", `severity == "critical"`, critical, true},
		{"metasploit", "has_metasploit", critical, true},
		{"metasploit false", "has_metasploit", info, false},
		{"cvss threshold", "cvss3_score >= 9.0", critical, true},
		{"cvss absent treated as zero", "cvss3_score >= 9.0", info, false},
		{"cve membership", `"CVE-2026-0001" in cves`, critical, true},
		{"plugin name contains", `plugin_name.contains("Execution")`, critical, true},
		{"conjunction", `severity_level >= 3 && has_metasploit`, critical, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			flt, err := CompileFinding(tt.expr)
			if err != nil {
				t.Fatalf("CompileFinding(%q) error = %v", tt.expr, err)
			}
			if got := flt.Match(tt.f); got != tt.want {
				t.Errorf("Match() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestFindingFilterApply(t *testing.T) {
	findings := []*finding.Finding{
		finding.New("s1", 1, "A", finding.SeverityCritical, nil),
		finding.New("s1", 2, "B", finding.SeverityInfo, nil),
		finding.New("s1", 3, "C", finding.SeverityHigh, nil),
	}
	flt, err := CompileFinding("severity_level >= 3")
	if err != nil {
		t.Fatalf("CompileFinding() error = %v", err)
	}
	kept := flt.Apply(findings)
	if len(kept) != 2 || kept[0].PluginID != 1 || kept[1].PluginID != 3 {
		t.Errorf("Apply() kept %v", kept)
	}
}

func TestRecordFilterMatch(t *testing.T) {
	parser := endpoint.NewParser()
	set, _ := parser.Parse([]string{"10.0.0.1:80", "10.0.0.1:443", "10.0.0.2:80"})
	rec := coverage.Record{FindingID: "f-1", Endpoints: set}

	tests := []struct {
		name string
		expr string
		want bool
	}{
		{"host membership", `"10.0.0.1" in hosts`, true},
		{"absent host", `"10.0.0.9" in hosts`, false},
		{"port membership", "443 in ports", true},
		{"pair count", "pair_count >= 3", true},
		{"finding id", `finding_id == "f-1"`, true},
		{"signature prefix", `signature.startsWith("10.0.0.1:443")`, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			flt, err := CompileRecord(tt.expr)
			if err != nil {
				t.Fatalf("CompileRecord(%q) error = %v", tt.expr, err)
			}
			if got := flt.Match(rec); got != tt.want {
				t.Errorf("Match() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRecordFilterNilEndpoints(t *testing.T) {
	flt, err := CompileRecord("pair_count >= 0")
	if err != nil {
		t.Fatalf("CompileRecord() error = %v", err)
	}
	if flt.Match(coverage.Record{FindingID: "f-1"}) {
		t.Error("Match() = true for record with nil endpoints, want false")
	}
}

func TestFilterConcurrentUse(t *testing.T) {
	flt, err := CompileFinding("severity_level >= 2")
	if err != nil {
		t.Fatalf("CompileFinding() error = %v", err)
	}
	f := finding.New("s1", 1, "A", finding.SeverityMedium, nil)

	done := make(chan bool, 8)
	for i := 0; i < 8; i++ {
		go func() {
			done <- flt.Match(f)
		}()
	}
	for i := 0; i < 8; i++ {
		if !<-done {
			t.Error("concurrent Match() = false, want true")
		}
	}
}
