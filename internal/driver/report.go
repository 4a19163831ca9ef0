package driver

import (
	"time"

	"github.com/google/uuid"
)

// Report is the result of one driver run.
type Report struct {
	RunID     string        `json:"run_id"`
	Dir       string        `json:"dir"`
	DryRun    bool          `json:"dry_run"`
	StartedAt time.Time     `json:"started_at"`
	Duration  time.Duration `json:"duration_ns"`
	Files     []FileResult  `json:"files"`
}

func newReport(dir string, dryRun bool) *Report {
	return &Report{
		RunID:     uuid.NewString(),
		Dir:       dir,
		DryRun:    dryRun,
		StartedAt: time.Now(),
	}
}

// Summary counts files by status.
type Summary struct {
	Converted             int `json:"converted"`
	ConvertedWithWarnings int `json:"converted_with_warnings"`
	Skipped               int `json:"skipped"`
	Missing               int `json:"missing"`
	Failed                int `json:"failed"`
}

// Updated returns the number of files with new content.
func (s Summary) Updated() int {
	return s.Converted + s.ConvertedWithWarnings
}

// Summary counts the files of the report by status.
func (r *Report) Summary() Summary {
	var s Summary
	for _, f := range r.Files {
		switch f.Status {
		case StatusConverted:
			s.Converted++
		case StatusConvertedWithWarnings:
			s.ConvertedWithWarnings++
		case StatusSkipped:
			s.Skipped++
		case StatusMissing:
			s.Missing++
		case StatusFailed:
			s.Failed++
		}
	}
	return s
}
