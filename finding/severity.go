package finding

import "fmt"

// Severity represents the severity level of a scan finding.
type Severity string

const (
	// SeverityCritical indicates a critical issue requiring immediate attention.
	SeverityCritical Severity = "critical"

	// SeverityHigh indicates a high-impact issue.
	SeverityHigh Severity = "high"

	// SeverityMedium indicates a moderate issue.
	SeverityMedium Severity = "medium"

	// SeverityLow indicates a minor issue.
	SeverityLow Severity = "low"

	// SeverityInfo indicates an informational finding without direct impact.
	SeverityInfo Severity = "info"
)

// severityLevels maps severity to the scanner's numeric level (0-4).
var severityLevels = map[Severity]int{
	SeverityCritical: 4,
	SeverityHigh:     3,
	SeverityMedium:   2,
	SeverityLow:      1,
	SeverityInfo:     0,
}

// severityWeights maps severity levels to weights for risk ordering.
var severityWeights = map[Severity]float64{
	SeverityCritical: 10.0,
	SeverityHigh:     7.5,
	SeverityMedium:   5.0,
	SeverityLow:      2.5,
	SeverityInfo:     1.0,
}

// IsValid returns true if the severity level is valid.
func (s Severity) IsValid() bool {
	_, ok := severityLevels[s]
	return ok
}

// Level returns the scanner's numeric severity (4 for critical down to 0 for
// info). Returns -1 for invalid severities.
func (s Severity) Level() int {
	if level, ok := severityLevels[s]; ok {
		return level
	}
	return -1
}

// Weight returns the numeric weight associated with the severity level.
// Returns 0.0 for invalid severity levels.
func (s Severity) Weight() float64 {
	if weight, ok := severityWeights[s]; ok {
		return weight
	}
	return 0.0
}

// String returns the string representation of the severity.
func (s Severity) String() string {
	return string(s)
}

// ParseSeverity parses a string into a Severity value.
// Returns an error if the string is not a valid severity level.
func ParseSeverity(s string) (Severity, error) {
	severity := Severity(s)
	if !severity.IsValid() {
		return "", fmt.Errorf("invalid severity: %s", s)
	}
	return severity, nil
}

// SeverityFromLevel converts a scanner's numeric severity (0-4) into a
// Severity. Returns an error for levels outside that range.
func SeverityFromLevel(level int) (Severity, error) {
	for sev, l := range severityLevels {
		if l == level {
			return sev, nil
		}
	}
	return "", fmt.Errorf("invalid severity level: %d", level)
}

// CompareSeverity compares two severity levels.
// Returns:
//   - negative if s1 < s2
//   - zero if s1 == s2
//   - positive if s1 > s2
func CompareSeverity(s1, s2 Severity) int {
	return s1.Level() - s2.Level()
}

// AllSeverities returns all valid severity levels in order from critical to info.
func AllSeverities() []Severity {
	return []Severity{
		SeverityCritical,
		SeverityHigh,
		SeverityMedium,
		SeverityLow,
		SeverityInfo,
	}
}
