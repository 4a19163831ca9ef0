package rules

import (
	"strings"

	"github.com/leapstack-labs/dialectshift/pkg/classify"
	"github.com/leapstack-labs/dialectshift/pkg/core"
	"github.com/leapstack-labs/dialectshift/pkg/jsscan"
	"github.com/leapstack-labs/dialectshift/pkg/placeholder"
	"github.com/leapstack-labs/dialectshift/pkg/rewrite"
)

func init() {
	rewrite.Register(Placeholders)
}

// Placeholders remaps numbered placeholders to positional markers.
var Placeholders = rewrite.RuleDef{
	ID:          "DS06",
	Name:        "sql.placeholders",
	Group:       "sql",
	Description: "Numbered placeholders ($1, $2, ...) in query literals become positional markers.",
	Order:       60,
	Severity:    core.SeverityWarning,
	Apply:       applyPlaceholders,

	Rationale: `Positional markers bind parameters strictly in order, so $1..$N are replaced
from the highest ordinal down. A literal whose ordinals are reused, out of
order or have gaps cannot be expressed with positional markers and is left
unchanged with a warning; its parameter array needs to be reordered by hand.`,

	BadExample: `await all('SELECT * FROM jobs WHERE status = $1 AND owner = $2', [status, owner]);`,

	GoodExample: `await all('SELECT * FROM jobs WHERE status = ? AND owner = ?', [status, owner]);`,
}

func applyPlaceholders(ctx *rewrite.Context) {
	f := ctx.File
	opts := ctx.Options
	pending := rewrite.PendingCalls(f, opts)
	whole := helperQueries(f, opts)

	for i, tok := range f.Toks {
		if !tok.IsLiteral() || tok.Unterminated || rewrite.InsideCalls(pending, i) {
			continue
		}
		body := tok.Body()
		if len(placeholder.Find(body)) == 0 {
			continue
		}

		var res placeholder.Result
		switch {
		case whole[i] || classify.LooksLikeSQL(body):
			res = placeholder.Remap(body, opts.Marker)
		case classify.LooksLikeFragment(body):
			res = placeholder.RemapFragment(body, opts.Marker)
		default:
			continue
		}

		if len(res.Issues) > 0 {
			msgs := make([]string, len(res.Issues))
			for k, issue := range res.Issues {
				msgs[k] = issue.String()
			}
			ctx.Report(tok.Start, "placeholders left unchanged: %s", strings.Join(msgs, "; "))
			continue
		}
		if res.Changed() {
			ctx.Replace(tok.Start, tok.End, tok.WithBody(res.Text))
		}
	}
}

// helperQueries returns the indexes of literals passed whole as the query
// argument of a helper call.
func helperQueries(f *jsscan.File, opts *rewrite.Options) map[int]bool {
	out := make(map[int]bool)
	for i := 0; i+1 < f.Len(); i++ {
		tok := f.Toks[i]
		if tok.Kind != jsscan.Ident || !opts.IsHelper(tok.Text) || !f.Is(i+1, "(") {
			continue
		}
		if prev := f.Tok(i - 1); i > 0 && (prev.Is(".") || prev.Is("?.")) {
			continue
		}
		args, ok := f.Args(i + 1)
		if !ok || len(args) == 0 {
			continue
		}
		if lit, ok := f.Single(args[0]); ok && lit.IsLiteral() {
			out[args[0].From] = true
		}
	}
	return out
}
