// Package driver runs the rewrite pipeline over a set of files on disk.
//
// Files are independent: each one is read, converted and written back on
// its own, so the driver processes them concurrently and a failure on one
// file never stops the others.
package driver

import (
	"github.com/leapstack-labs/dialectshift/pkg/core"
	"github.com/leapstack-labs/dialectshift/pkg/rewrite"
)

// Status is the outcome of converting one file.
type Status string

// File statuses.
const (
	StatusConverted             Status = "converted"
	StatusConvertedWithWarnings Status = "converted-with-warnings"
	StatusSkipped               Status = "skipped-no-changes"
	StatusMissing               Status = "missing"
	StatusFailed                Status = "failed"
)

// Changed reports whether the status stands for new file content.
func (s Status) Changed() bool {
	return s == StatusConverted || s == StatusConvertedWithWarnings
}

// SourceUnit is one file under transformation.
type SourceUnit struct {
	Path         string
	OriginalText string
	CurrentText  string
	Changed      bool
}

// FileResult reports what happened to one target file.
type FileResult struct {
	Name     string            `json:"name"`
	Path     string            `json:"path"`
	Status   Status            `json:"status"`
	Written  bool              `json:"written"`
	Applied  []string          `json:"applied,omitempty"`
	Findings []rewrite.Finding `json:"findings,omitempty"`
	Diff     string            `json:"diff,omitempty"`
	Error    string            `json:"error,omitempty"`
}

// Count returns the number of findings at the given severity.
func (r FileResult) Count(sev core.Severity) int {
	n := 0
	for _, f := range r.Findings {
		if f.Severity == sev {
			n++
		}
	}
	return n
}

// statusFor picks the status of a converted unit from its findings.
func statusFor(unit *SourceUnit, findings []rewrite.Finding) Status {
	if !unit.Changed {
		return StatusSkipped
	}
	for _, f := range findings {
		if f.Severity == core.SeverityWarning || f.Severity == core.SeverityError {
			return StatusConvertedWithWarnings
		}
	}
	return StatusConverted
}
