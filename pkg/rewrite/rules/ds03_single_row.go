package rules

import (
	"github.com/leapstack-labs/dialectshift/pkg/classify"
	"github.com/leapstack-labs/dialectshift/pkg/core"
	"github.com/leapstack-labs/dialectshift/pkg/rewrite"
)

func init() {
	rewrite.Register(SingleRowToGet)
}

// SingleRowToGet collapses a query and its first-row unwrap into get().
var SingleRowToGet = rewrite.RuleDef{
	ID:          "DS03",
	Name:        "calls.single_row",
	Group:       "calls",
	Description: "A query whose result is only read through rows[0] becomes a get() call.",
	Order:       30,
	Severity:    core.SeverityInfo,
	Apply:       applySingleRowToGet,

	Rationale: `The get helper returns the first row, or undefined when there is none,
which is exactly what result.rows[0] produced. The fold only happens when the
result variable is not used anywhere else in its block.`,

	BadExample: `const result = await pool.query('SELECT * FROM users WHERE id = $1', [id]);
const user = result.rows[0];`,

	GoodExample: `const user = await get('SELECT * FROM users WHERE id = ?', [id]);`,
}

func applySingleRowToGet(ctx *rewrite.Context) {
	f := ctx.File
	helper := ctx.Options.Helpers.Get
	for _, call := range rewrite.SourceCalls(f, ctx.Options) {
		kind, returning := rewrite.Classify(f, call)
		if classify.Shape(kind, returning, true) != classify.Get {
			continue
		}
		st, ok := rewrite.StatementOf(f, call)
		if !ok {
			continue
		}
		if _, ok := foldUnwrap(ctx, st, helper); ok && kind == classify.Unknown {
			ctx.Report(f.Tok(st.From).Start,
				"query text is not a literal; converted to %s() because only the first row is read", helper)
		}
	}
}
