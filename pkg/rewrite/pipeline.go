package rewrite

import (
	"fmt"
	"sort"

	"github.com/leapstack-labs/dialectshift/pkg/core"
)

// Pipeline applies the enabled rules in order. A Pipeline is immutable
// and safe for concurrent use.
type Pipeline struct {
	rules []RuleDef
	opts  Options
}

// Outcome is the result of running the pipeline over one text.
type Outcome struct {
	Text     string
	Findings []Finding
	Applied  []string // IDs of the rules that changed the text
}

// Changed reports whether any rule edited the text.
func (o Outcome) Changed() bool { return len(o.Applied) > 0 }

// Count returns the number of findings at the given severity.
func (o Outcome) Count(sev core.Severity) int {
	n := 0
	for _, f := range o.Findings {
		if f.Severity == sev {
			n++
		}
	}
	return n
}

// NewPipeline builds a pipeline from the registered rules.
func NewPipeline(opts Options) (*Pipeline, error) {
	if err := opts.Validate(); err != nil {
		return nil, fmt.Errorf("invalid rewrite options: %w", err)
	}
	p := &Pipeline{opts: opts}
	for _, rule := range All() {
		if !opts.IsDisabled(rule.ID) {
			p.rules = append(p.rules, rule)
		}
	}
	return p, nil
}

// Rules returns the rules the pipeline runs, in order.
func (p *Pipeline) Rules() []RuleDef {
	return append([]RuleDef(nil), p.rules...)
}

// Options returns the options the pipeline was built with.
func (p *Pipeline) Options() Options { return p.opts }

// Run applies every rule to text. Each rule sees the output of the rules
// before it. Finding positions refer to the final text.
func (p *Pipeline) Run(text string) Outcome {
	var out Outcome
	for i := range p.rules {
		rule := &p.rules[i]
		ctx := NewContext(text, &p.opts, rule)
		rule.Apply(ctx)

		next, mapOffset := ApplyEdits(text, ctx.edits)
		for j := range out.Findings {
			out.Findings[j].offset = mapOffset(out.Findings[j].offset)
		}
		for _, f := range ctx.findings {
			f.offset = mapOffset(f.offset)
			out.Findings = append(out.Findings, f)
		}
		if next != text {
			out.Applied = append(out.Applied, rule.ID)
		}
		text = next
	}

	sort.SliceStable(out.Findings, func(i, j int) bool {
		return out.Findings[i].offset < out.Findings[j].offset
	})
	for j := range out.Findings {
		out.Findings[j].Pos = core.PositionAt(text, out.Findings[j].offset)
	}
	out.Text = text
	return out
}
