package nessus

import (
	"errors"
	"strings"
	"testing"

	"github.com/cerno-sec/cerno/endpoint"
	"github.com/cerno-sec/cerno/finding"
)

const sampleExport = `<?xml version="1.0" ?>
<NessusClientData_v2>
  <Report name="weekly-external">
    <ReportHost name="10.0.0.1">
      <ReportItem port="443" severity="2" pluginID="10863" pluginName="SSL Certificate Expiry">
        <cve>CVE-2020-0001</cve>
      </ReportItem>
      <ReportItem port="0" severity="0" pluginID="19506" pluginName="Nessus Scan Information"/>
    </ReportHost>
    <ReportHost name="10.0.0.2">
      <ReportItem port="443" severity="2" pluginID="10863" pluginName="SSL Certificate Expiry">
        <cve>CVE-2020-0001</cve>
        <cve>CVE-2020-0002</cve>
      </ReportItem>
      <ReportItem port="22" severity="4" pluginID="90001" pluginName="Remote Code Execution">
        <cvss3_base_score>9.8</cvss3_base_score>
        <exploit_framework_metasploit>true</exploit_framework_metasploit>
      </ReportItem>
    </ReportHost>
    <ReportHost name="2001:db8::1">
      <ReportItem port="8080" severity="2" pluginID="10863" pluginName="SSL Certificate Expiry"/>
    </ReportHost>
  </Report>
</NessusClientData_v2>`

func importSample(t *testing.T) *Scan {
	t.Helper()
	scan, err := Import(strings.NewReader(sampleExport))
	if err != nil {
		t.Fatalf("Import() error = %v", err)
	}
	return scan
}

func findPlugin(t *testing.T, scan *Scan, pluginID int) *finding.Finding {
	t.Helper()
	for _, f := range scan.Findings {
		if f.PluginID == pluginID {
			return f
		}
	}
	t.Fatalf("plugin %d not found in scan", pluginID)
	return nil
}

func TestImportAggregatesByPlugin(t *testing.T) {
	scan := importSample(t)

	if scan.Name != "weekly-external" {
		t.Errorf("Name = %q, want weekly-external", scan.Name)
	}
	if len(scan.Findings) != 3 {
		t.Fatalf("got %d findings, want 3", len(scan.Findings))
	}

	ssl := findPlugin(t, scan, 10863)
	want := []string{"10.0.0.1:443", "10.0.0.2:443", "[2001:db8::1]:8080"}
	if len(ssl.Endpoints) != len(want) {
		t.Fatalf("endpoints = %v, want %v", ssl.Endpoints, want)
	}
	for i, line := range want {
		if ssl.Endpoints[i] != line {
			t.Errorf("Endpoints[%d] = %q, want %q", i, ssl.Endpoints[i], line)
		}
	}
}

func TestImportSeverityOrdering(t *testing.T) {
	scan := importSample(t)

	if scan.Findings[0].PluginID != 90001 {
		t.Errorf("first finding = plugin %d, want 90001 (critical first)", scan.Findings[0].PluginID)
	}
	if scan.Findings[len(scan.Findings)-1].Severity != finding.SeverityInfo {
		t.Errorf("last finding severity = %s, want info", scan.Findings[len(scan.Findings)-1].Severity)
	}
}

func TestImportPortZeroIsBareHost(t *testing.T) {
	scan := importSample(t)

	info := findPlugin(t, scan, 19506)
	if len(info.Endpoints) != 1 || info.Endpoints[0] != "10.0.0.1" {
		t.Errorf("Endpoints = %v, want [10.0.0.1]", info.Endpoints)
	}
}

func TestImportPluginMetadata(t *testing.T) {
	scan := importSample(t)

	rce := findPlugin(t, scan, 90001)
	if rce.Severity != finding.SeverityCritical {
		t.Errorf("Severity = %s, want critical", rce.Severity)
	}
	if !rce.HasMetasploit {
		t.Error("HasMetasploit = false, want true")
	}
	if rce.CVSS3Score == nil || *rce.CVSS3Score != 9.8 {
		t.Errorf("CVSS3Score = %v, want 9.8", rce.CVSS3Score)
	}

	ssl := findPlugin(t, scan, 10863)
	if len(ssl.CVEs) != 2 {
		t.Errorf("CVEs = %v, want deduplicated pair", ssl.CVEs)
	}
}

func TestImportNotNessus(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{name: "foreign root", input: `<?xml version="1.0"?><report/>`},
		{name: "prolog only", input: `<?xml version="1.0"?><!-- nothing -->`},
		{name: "empty input", input: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Import(strings.NewReader(tt.input))
			if !errors.Is(err, ErrNotNessus) {
				t.Errorf("error = %v, want ErrNotNessus", err)
			}
		})
	}
}

func TestImportSkipsProlog(t *testing.T) {
	doc := `<?xml version="1.0"?>
<!-- exported 2026-08-01 -->
<NessusClientData_v2><Report name="r"/></NessusClientData_v2>`
	scan, err := Import(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("Import() error = %v", err)
	}
	if scan.Name != "r" {
		t.Errorf("Name = %q, want r", scan.Name)
	}
}

func TestImportMalformedXML(t *testing.T) {
	_, err := Import(strings.NewReader("<NessusClientData_v2><unclosed"))
	if err == nil {
		t.Error("Import() of malformed XML succeeded, want error")
	}
}

func TestImportFindingsParseCleanly(t *testing.T) {
	scan := importSample(t)

	p := endpoint.NewParser()
	for _, f := range scan.Findings {
		rec, warns := f.Record(p)
		if len(warns) != 0 {
			t.Errorf("plugin %d: unexpected warnings %v", f.PluginID, warns)
		}
		if rec.Endpoints == nil {
			t.Errorf("plugin %d: nil endpoint set", f.PluginID)
		}
	}
}
