package rewrite

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/leapstack-labs/dialectshift/pkg/core"
)

func TestApplyEdits(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		edits []Edit
		want  string
	}{
		{
			name: "no edits",
			text: "abc",
			want: "abc",
		},
		{
			name:  "unsorted edits",
			text:  "pool.query(x)",
			edits: []Edit{{Start: 11, End: 12, Text: "y"}, {Start: 0, End: 10, Text: "all"}},
			want:  "all(y)",
		},
		{
			name:  "overlap keeps the leftmost",
			text:  "abcdef",
			edits: []Edit{{Start: 2, End: 5, Text: "X"}, {Start: 1, End: 3, Text: "Y"}},
			want:  "aYdef",
		},
		{
			name:  "insertion and deletion",
			text:  "a;b;",
			edits: []Edit{{Start: 0, End: 0, Text: "x"}, {Start: 1, End: 2, Text: ""}},
			want:  "xab;",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, _ := ApplyEdits(tt.text, tt.edits)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestApplyEdits_OffsetMapping(t *testing.T) {
	text := "aaaa pool.query bbbb"
	got, mapOffset := ApplyEdits(text, []Edit{{Start: 5, End: 15, Text: "all"}})
	assert.Equal(t, "aaaa all bbbb", got)

	assert.Equal(t, 2, mapOffset(2))
	assert.Equal(t, 5, mapOffset(5))
	assert.Equal(t, 5, mapOffset(9))
	assert.Equal(t, 9, mapOffset(16))
}

func TestContext_ReportUsesOverride(t *testing.T) {
	rule := &RuleDef{ID: "DS99", Severity: core.SeverityWarning}
	opts := DefaultOptions()
	ctx := NewContext("x", &opts, rule)
	ctx.Report(0, "plain %d", 1)
	assert.Equal(t, core.SeverityWarning, ctx.Findings()[0].Severity)
	assert.Equal(t, "plain 1", ctx.Findings()[0].Message)

	opts.SeverityOverrides = map[string]core.Severity{"DS99": core.SeverityError}
	ctx.ReportSeverity(0, core.SeverityInfo, "overridden")
	assert.Equal(t, core.SeverityError, ctx.Findings()[1].Severity)
}

func TestContext_LossyWarningsStayWarnings(t *testing.T) {
	rule := &RuleDef{ID: "DS98", Severity: core.SeverityWarning, Lossy: true}
	opts := DefaultOptions()
	opts.SeverityOverrides = map[string]core.Severity{"DS98": core.SeverityHint}
	ctx := NewContext("x", &opts, rule)

	ctx.Report(0, "narrowed")
	ctx.ReportSeverity(0, core.SeverityInfo, "left alone")
	assert.Equal(t, core.SeverityWarning, ctx.Findings()[0].Severity)
	assert.Equal(t, core.SeverityHint, ctx.Findings()[1].Severity)

	opts.SeverityOverrides["DS98"] = core.SeverityError
	ctx.Report(0, "raised")
	assert.Equal(t, core.SeverityError, ctx.Findings()[2].Severity)
}

func TestContext_RemoveStatement(t *testing.T) {
	rule := &RuleDef{ID: "DS99"}
	opts := DefaultOptions()
	src := "a();\n  b();\nc();\n"
	ctx := NewContext(src, &opts, rule)
	ctx.RemoveStatement(4, 8) // b ( ) ;

	got, _ := ApplyEdits(src, ctx.Edits())
	assert.Equal(t, "a();\nc();\n", got)
}

func TestContext_RemoveStatementSharingLine(t *testing.T) {
	tests := []struct {
		name     string
		src      string
		from, to int
		want     string
	}{
		{
			name: "followed by code",
			src:  "if (b) { params.push(b); i++; }",
			from: 12, to: 15, // i ++ ;
			want: "if (b) { params.push(b); }",
		},
		{
			name: "last on its line",
			src:  "params.push(b); i++;\n",
			from: 7, to: 10,
			want: "params.push(b);\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := DefaultOptions()
			ctx := NewContext(tt.src, &opts, &RuleDef{ID: "DS99"})
			ctx.RemoveStatement(tt.from, tt.to)

			got, _ := ApplyEdits(tt.src, ctx.Edits())
			assert.Equal(t, tt.want, got)
		})
	}
}
