package core

import (
	"fmt"
	"strings"
)

// =============================================================================
// Severity
// =============================================================================

// Severity indicates the importance of a rewrite finding.
type Severity int

// Severity levels for findings.
const (
	// SeverityError indicates the file could not be converted safely.
	SeverityError Severity = iota
	// SeverityWarning indicates a lossy rewrite that a human must review.
	SeverityWarning
	// SeverityInfo indicates an occurrence that was left untouched.
	SeverityInfo
	// SeverityHint indicates a suggestion for a manual follow-up.
	SeverityHint
)

// String returns the string representation of the severity.
func (s Severity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	case SeverityInfo:
		return "info"
	case SeverityHint:
		return "hint"
	default:
		return "unknown"
	}
}

// MarshalText renders the severity by name in JSON and YAML output.
func (s Severity) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText parses a severity name.
func (s *Severity) UnmarshalText(text []byte) error {
	sev, ok := ParseSeverity(string(text))
	if !ok {
		return fmt.Errorf("unknown severity %q", text)
	}
	*s = sev
	return nil
}

// ParseSeverity converts a string to a Severity value.
// Returns the severity and true if valid, or SeverityWarning and false if invalid.
func ParseSeverity(s string) (Severity, bool) {
	switch strings.ToLower(s) {
	case "error":
		return SeverityError, true
	case "warning":
		return SeverityWarning, true
	case "info":
		return SeverityInfo, true
	case "hint":
		return SeverityHint, true
	default:
		return SeverityWarning, false
	}
}

// =============================================================================
// RuleInfo
// =============================================================================

// RuleInfo provides metadata about a rewrite rule for documentation/tooling.
// This is a DTO (Data Transfer Object) - it carries data without behavior.
type RuleInfo struct {
	ID              string   `json:"id"`
	Name            string   `json:"name"`
	Group           string   `json:"group"`
	Order           int      `json:"order"`
	Description     string   `json:"description"`
	DefaultSeverity Severity `json:"default_severity"`
	Lossy           bool     `json:"lossy"`

	// Documentation fields
	Rationale string `json:"rationale,omitempty"`
	Before    string `json:"before,omitempty"`
	After     string `json:"after,omitempty"`
}
