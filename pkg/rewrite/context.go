package rewrite

import (
	"fmt"
	"sort"

	"github.com/leapstack-labs/dialectshift/pkg/core"
	"github.com/leapstack-labs/dialectshift/pkg/jsscan"
)

// Finding is something a rule wants a human to look at.
type Finding struct {
	RuleID   string        `json:"rule"`
	Severity core.Severity `json:"severity"`
	Pos      core.Position `json:"pos"`
	Message  string        `json:"message"`

	offset int // byte offset in the text the rule saw
}

func (f Finding) String() string {
	return fmt.Sprintf("%s %s [%s] %s", f.Pos, f.Severity, f.RuleID, f.Message)
}

// Edit replaces the byte range [Start, End) with Text.
type Edit struct {
	Start int
	End   int
	Text  string
}

// Context is what a rule sees while it runs: the current file, the
// options, and the edits and findings recorded so far.
type Context struct {
	File    *jsscan.File
	Options *Options

	rule     *RuleDef
	edits    []Edit
	findings []Finding
}

// NewContext creates a Context for running one rule over src.
func NewContext(src string, opts *Options, rule *RuleDef) *Context {
	return &Context{
		File:    jsscan.Parse(src),
		Options: opts,
		rule:    rule,
	}
}

// Replace records a replacement of the byte range [start, end).
func (c *Context) Replace(start, end int, text string) {
	c.edits = append(c.edits, Edit{Start: start, End: end, Text: text})
}

// ReplaceTokens replaces the tokens [from, to) with text.
func (c *Context) ReplaceTokens(from, to int, text string) {
	c.Replace(c.File.Tok(from).Start, c.File.Tok(to-1).End, text)
}

// RemoveStatement deletes the tokens [from, to), taking the whole line
// with it when the statement stands alone on its line. Otherwise one
// separating blank goes with it.
func (c *Context) RemoveStatement(from, to int) {
	tokStart, tokEnd := c.File.Tok(from).Start, c.File.Tok(to-1).End
	start, end := c.File.LineSpan(tokStart, tokEnd)
	if start == tokStart && end == tokEnd {
		src := c.File.Src
		switch {
		case end < len(src) && isBlank(src[end]):
			end++
		case start > 0 && isBlank(src[start-1]):
			start--
		}
	}
	c.Replace(start, end, "")
}

func isBlank(b byte) bool { return b == ' ' || b == '\t' }

// Report records a finding at the byte offset with the rule's severity.
func (c *Context) Report(offset int, format string, args ...any) {
	c.ReportSeverity(offset, c.rule.Severity, format, args...)
}

// ReportSeverity records a finding with an explicit severity. A severity
// override configured for the rule wins, except that a lossy rule's
// warnings never drop below warning.
func (c *Context) ReportSeverity(offset int, sev core.Severity, format string, args ...any) {
	if override, ok := c.Options.SeverityOverrides[c.rule.ID]; ok {
		if c.rule.Lossy && sev <= core.SeverityWarning && override > core.SeverityWarning {
			override = core.SeverityWarning
		}
		sev = override
	}
	c.findings = append(c.findings, Finding{
		RuleID:   c.rule.ID,
		Severity: sev,
		Message:  fmt.Sprintf(format, args...),
		offset:   offset,
	})
}

// Edits returns the edits recorded so far.
func (c *Context) Edits() []Edit { return c.edits }

// Findings returns the findings recorded so far.
func (c *Context) Findings() []Finding { return c.findings }

// ApplyEdits applies edits to text. Edits are taken leftmost first; an
// edit overlapping one already taken is dropped. The returned function
// maps an offset in text to the matching offset in the result.
func ApplyEdits(text string, edits []Edit) (string, func(int) int) {
	if len(edits) == 0 {
		return text, func(o int) int { return o }
	}
	sorted := make([]Edit, len(edits))
	copy(sorted, edits)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Start < sorted[j].Start })

	var kept []Edit
	var out []byte
	last := 0
	for _, e := range sorted {
		if e.Start < last || e.End < e.Start || e.End > len(text) {
			continue
		}
		out = append(out, text[last:e.Start]...)
		out = append(out, e.Text...)
		last = e.End
		kept = append(kept, e)
	}
	out = append(out, text[last:]...)

	mapOffset := func(o int) int {
		delta := 0
		for _, e := range kept {
			switch {
			case e.End <= o && e.Start < o:
				delta += len(e.Text) - (e.End - e.Start)
			case e.Start <= o && o < e.End:
				return e.Start + delta
			}
		}
		return o + delta
	}
	return string(out), mapOffset
}
