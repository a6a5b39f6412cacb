package finding

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/cerno-sec/cerno/coverage"
	"github.com/cerno-sec/cerno/endpoint"
)

// Status indicates the review state of a finding.
type Status string

const (
	// StatusOpen indicates a finding that has not been reviewed yet.
	StatusOpen Status = "open"

	// StatusReviewed indicates a finding the analyst has worked through.
	StatusReviewed Status = "reviewed"
)

// IsValid returns true if the status is valid.
func (s Status) IsValid() bool {
	switch s {
	case StatusOpen, StatusReviewed:
		return true
	default:
		return false
	}
}

// String returns the string representation of the status.
func (s Status) String() string {
	return string(s)
}

// Finding represents one scanner plugin's result within one scan.
type Finding struct {
	// ID is a unique identifier for the finding.
	ID string `json:"id"`

	// ScanID identifies the scan this finding belongs to.
	ScanID string `json:"scan_id"`

	// PluginID is the scanner plugin that produced the finding.
	PluginID int `json:"plugin_id"`

	// PluginName is the plugin's human-readable name.
	PluginName string `json:"plugin_name"`

	// Severity indicates the severity level of the finding.
	Severity Severity `json:"severity"`

	// CVEs lists CVE identifiers associated with the finding.
	CVEs []string `json:"cves,omitempty"`

	// CVSS3Score is the CVSSv3 base score (0.0 to 10.0), if the scanner
	// reported one.
	CVSS3Score *float64 `json:"cvss3_score,omitempty"`

	// HasMetasploit indicates whether a Metasploit module exists for the
	// finding.
	HasMetasploit bool `json:"has_metasploit"`

	// Endpoints holds the raw affected host:port lines exactly as exported
	// by the scanner, one entry per line.
	Endpoints []string `json:"endpoints,omitempty"`

	// Status indicates the review state of the finding.
	Status Status `json:"status"`

	// CreatedAt is the timestamp when the finding was recorded.
	CreatedAt time.Time `json:"created_at"`

	// UpdatedAt is the timestamp when the finding was last updated.
	UpdatedAt time.Time `json:"updated_at"`
}

// New creates a Finding with required fields, an auto-generated ID, and
// open review state.
func New(scanID string, pluginID int, pluginName string, severity Severity, endpoints []string) *Finding {
	now := time.Now()
	return &Finding{
		ID:         uuid.New().String(),
		ScanID:     scanID,
		PluginID:   pluginID,
		PluginName: pluginName,
		Severity:   severity,
		Endpoints:  endpoints,
		Status:     StatusOpen,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// Validate checks if the finding has all required fields and valid values.
func (f *Finding) Validate() error {
	if f.ID == "" {
		return fmt.Errorf("finding ID is required")
	}
	if f.ScanID == "" {
		return fmt.Errorf("scan ID is required")
	}
	if f.PluginID <= 0 {
		return fmt.Errorf("plugin ID must be positive, got %d", f.PluginID)
	}
	if f.PluginName == "" {
		return fmt.Errorf("plugin name is required")
	}
	if !f.Severity.IsValid() {
		return fmt.Errorf("invalid severity: %s", f.Severity)
	}
	if !f.Status.IsValid() {
		return fmt.Errorf("invalid status: %s", f.Status)
	}
	if f.CVSS3Score != nil && (*f.CVSS3Score < 0.0 || *f.CVSS3Score > 10.0) {
		return fmt.Errorf("CVSS3 score must be between 0.0 and 10.0, got %f", *f.CVSS3Score)
	}
	if f.CreatedAt.IsZero() {
		return fmt.Errorf("created_at timestamp is required")
	}
	return nil
}

// MarkReviewed sets the finding's status to reviewed and updates the
// timestamp.
func (f *Finding) MarkReviewed() {
	f.Status = StatusReviewed
	f.UpdatedAt = time.Now()
}

// RiskScore computes a risk ordering value from severity weight and CVSS
// score. Findings without a CVSS score fall back to severity weight alone.
func (f *Finding) RiskScore() float64 {
	score := f.Severity.Weight()
	if f.CVSS3Score != nil {
		score += *f.CVSS3Score / 10.0
	}
	return score
}

// Record parses the finding's raw endpoint lines through p and returns the
// coverage record for this finding along with any parse warnings. The
// finding's ID becomes the record's opaque identifier.
func (f *Finding) Record(p *endpoint.Parser) (coverage.Record, []endpoint.Warning) {
	set, warns := p.Parse(f.Endpoints)
	return coverage.Record{FindingID: f.ID, Endpoints: set}, warns
}

// Records parses every finding through p and collects coverage records and
// warnings keyed by finding ID. This is the usual preparation step before
// coverage.Analyzer.Analyze.
func Records(p *endpoint.Parser, findings []*Finding) ([]coverage.Record, map[string][]endpoint.Warning) {
	records := make([]coverage.Record, 0, len(findings))
	warnings := make(map[string][]endpoint.Warning)
	for _, f := range findings {
		rec, warns := f.Record(p)
		records = append(records, rec)
		if len(warns) > 0 {
			warnings[f.ID] = warns
		}
	}
	return records, warnings
}
