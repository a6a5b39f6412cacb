package scandiff

import (
	"testing"
	"time"

	"github.com/cerno-sec/cerno/finding"
)

func mkFinding(pluginID int, name string, sev finding.Severity, endpoints ...string) *finding.Finding {
	return finding.New("scan-1", pluginID, name, sev, endpoints)
}

func snapshot(id string, findings ...*finding.Finding) Snapshot {
	return Snapshot{
		ScanID:   id,
		ScanName: "weekly-" + id,
		Date:     time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC),
		Findings: findings,
	}
}

func TestCompareIdenticalScans(t *testing.T) {
	a := mkFinding(10001, "SSL Certificate Expiry", finding.SeverityMedium, "10.0.0.1:443")
	b := mkFinding(10002, "Outdated OpenSSH", finding.SeverityHigh, "10.0.0.2:22")

	cmp := Compare(snapshot("s1", a, b), snapshot("s2", a, b))

	if cmp.TotalNew() != 0 {
		t.Errorf("TotalNew() = %d, want 0", cmp.TotalNew())
	}
	if cmp.TotalResolved() != 0 {
		t.Errorf("TotalResolved() = %d, want 0", cmp.TotalResolved())
	}
	if cmp.TotalPersistent() != 2 {
		t.Errorf("TotalPersistent() = %d, want 2", cmp.TotalPersistent())
	}
	if len(cmp.NewHosts) != 0 || len(cmp.RemovedHosts) != 0 {
		t.Errorf("host deltas = %v / %v, want none", cmp.NewHosts, cmp.RemovedHosts)
	}
	if got := cmp.PersistentHosts; len(got) != 2 || got[0] != "10.0.0.1" || got[1] != "10.0.0.2" {
		t.Errorf("PersistentHosts = %v, want [10.0.0.1 10.0.0.2]", got)
	}
}

func TestCompareNewFinding(t *testing.T) {
	old := mkFinding(10001, "SSL Certificate Expiry", finding.SeverityMedium, "10.0.0.1:443")
	fresh := mkFinding(10003, "Remote Code Execution", finding.SeverityCritical, "10.0.0.3:8080")

	cmp := Compare(snapshot("s1", old), snapshot("s2", old, fresh))

	if cmp.TotalNew() != 1 {
		t.Fatalf("TotalNew() = %d, want 1", cmp.TotalNew())
	}
	if cmp.New[0].PluginID != 10003 {
		t.Errorf("New[0].PluginID = %d, want 10003", cmp.New[0].PluginID)
	}
	if cmp.TotalPersistent() != 1 {
		t.Errorf("TotalPersistent() = %d, want 1", cmp.TotalPersistent())
	}
	if cmp.NewBySeverity[finding.SeverityCritical] != 1 {
		t.Errorf("NewBySeverity[critical] = %d, want 1", cmp.NewBySeverity[finding.SeverityCritical])
	}
	if got := cmp.NewHosts; len(got) != 1 || got[0] != "10.0.0.3" {
		t.Errorf("NewHosts = %v, want [10.0.0.3]", got)
	}
}

func TestCompareResolvedFinding(t *testing.T) {
	fixed := mkFinding(10001, "SSL Certificate Expiry", finding.SeverityMedium, "10.0.0.1:443")
	kept := mkFinding(10002, "Outdated OpenSSH", finding.SeverityHigh, "10.0.0.2:22")

	cmp := Compare(snapshot("s1", fixed, kept), snapshot("s2", kept))

	if cmp.TotalResolved() != 1 {
		t.Fatalf("TotalResolved() = %d, want 1", cmp.TotalResolved())
	}
	if cmp.Resolved[0].PluginID != 10001 {
		t.Errorf("Resolved[0].PluginID = %d, want 10001", cmp.Resolved[0].PluginID)
	}
	if cmp.ResolvedBySeverity[finding.SeverityMedium] != 1 {
		t.Errorf("ResolvedBySeverity[medium] = %d, want 1", cmp.ResolvedBySeverity[finding.SeverityMedium])
	}
	if got := cmp.RemovedHosts; len(got) != 1 || got[0] != "10.0.0.1" {
		t.Errorf("RemovedHosts = %v, want [10.0.0.1]", got)
	}
}

func TestCompareMinSeverityFilter(t *testing.T) {
	info := mkFinding(20001, "Traceroute Information", finding.SeverityInfo, "10.0.0.9")
	high := mkFinding(20002, "Outdated OpenSSH", finding.SeverityHigh, "10.0.0.2:22")

	cmp := Compare(snapshot("s1"), snapshot("s2", info, high),
		WithMinSeverity(finding.SeverityMedium))

	if cmp.TotalNew() != 1 {
		t.Fatalf("TotalNew() = %d, want 1 (info filtered)", cmp.TotalNew())
	}
	if cmp.New[0].PluginID != 20002 {
		t.Errorf("New[0].PluginID = %d, want 20002", cmp.New[0].PluginID)
	}
	if cmp.NewBySeverity[finding.SeverityInfo] != 0 {
		t.Errorf("NewBySeverity[info] = %d, want 0", cmp.NewBySeverity[finding.SeverityInfo])
	}
}

func TestCompareSortsBySeverityThenName(t *testing.T) {
	findings := []*finding.Finding{
		mkFinding(30001, "B Medium Issue", finding.SeverityMedium, "10.0.0.1"),
		mkFinding(30002, "A Medium Issue", finding.SeverityMedium, "10.0.0.1"),
		mkFinding(30003, "Critical Issue", finding.SeverityCritical, "10.0.0.1"),
	}

	cmp := Compare(snapshot("s1"), snapshot("s2", findings...))

	want := []int{30003, 30002, 30001}
	for i, id := range want {
		if cmp.New[i].PluginID != id {
			t.Errorf("New[%d].PluginID = %d, want %d", i, cmp.New[i].PluginID, id)
		}
	}
}

func TestCompareEmptyScans(t *testing.T) {
	cmp := Compare(snapshot("s1"), snapshot("s2"))

	if cmp.TotalNew() != 0 || cmp.TotalResolved() != 0 || cmp.TotalPersistent() != 0 {
		t.Errorf("empty comparison produced findings: %+v", cmp)
	}
}
