package rules

import (
	"strings"

	"github.com/leapstack-labs/dialectshift/pkg/classify"
	"github.com/leapstack-labs/dialectshift/pkg/core"
	"github.com/leapstack-labs/dialectshift/pkg/rewrite"
)

func init() {
	rewrite.Register(ReturningToRun)
}

// ReturningToRun converts mutating queries with a RETURNING clause.
var ReturningToRun = rewrite.RuleDef{
	ID:          "DS02",
	Name:        "calls.returning",
	Group:       "calls",
	Description: "INSERT, UPDATE or DELETE with RETURNING becomes a single run() call.",
	Order:       20,
	Severity:    core.SeverityWarning,
	Lossy:       true,
	Apply:       applyReturningToRun,

	Rationale: `The run helper executes a statement and yields a result descriptor with
lastID and changes. The separate rows[0] unwrap is folded into the call, but
the columns named by RETURNING are no longer handed back, so every read of the
bound variable needs review.`,

	BadExample: `const result = await pool.query(
  'INSERT INTO jobs (title) VALUES ($1) RETURNING *', [title]);
const job = result.rows[0];`,

	GoodExample: `const job = await run(
  'INSERT INTO jobs (title) VALUES (?) RETURNING *', [title]);`,
}

func applyReturningToRun(ctx *rewrite.Context) {
	f := ctx.File
	helper := ctx.Options.Helpers.Run
	for _, call := range rewrite.SourceCalls(f, ctx.Options) {
		kind, returning := rewrite.Classify(f, call)
		if !returning || classify.Shape(kind, returning, false) != classify.Run {
			continue
		}
		st, ok := rewrite.StatementOf(f, call)
		if !ok {
			continue // reported by DS04
		}

		if fold, ok := foldUnwrap(ctx, st, helper); ok {
			ctx.Report(f.Tok(st.From).Start,
				"%s ... RETURNING folded into %s(); %s now holds the result descriptor, not the returned row",
				strings.ToUpper(kind.String()), helper, fold)
			continue
		}
		ctx.ReplaceTokens(call.Recv, call.Method+1, helper)
		ctx.Report(f.Tok(call.Recv).Start,
			"%s ... RETURNING converted to %s(); the returned columns are not available",
			strings.ToUpper(kind.String()), helper)
	}
}

// foldUnwrap collapses a query statement and the rows[0] unwrap that
// follows it into one helper call bound to the row variable. The result
// variable must not be referenced again in its block.
func foldUnwrap(ctx *rewrite.Context, st rewrite.Statement, helper string) (string, bool) {
	f := ctx.File
	if st.Name == "" {
		return "", false
	}
	u, ok := rewrite.UnwrapAt(f, st.To, st.Name)
	if !ok || rewrite.UsedBetween(f, st.Name, u.To, f.ScopeEnd(u.From)) {
		return "", false
	}

	text := u.Row + " = await " + helper + f.Text(st.Call.Open, st.Call.Close+1)
	if u.Decl != "" {
		text = u.Decl + " " + text
	}
	if f.Is(u.To-1, ";") {
		text += ";"
	}
	ctx.ReplaceTokens(st.From, u.To, text)
	return u.Row, true
}
