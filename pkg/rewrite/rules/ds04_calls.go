package rules

import (
	"github.com/leapstack-labs/dialectshift/pkg/classify"
	"github.com/leapstack-labs/dialectshift/pkg/core"
	"github.com/leapstack-labs/dialectshift/pkg/rewrite"
)

func init() {
	rewrite.Register(CallsToHelpers)
}

// CallsToHelpers converts the remaining query calls.
var CallsToHelpers = rewrite.RuleDef{
	ID:          "DS04",
	Name:        "calls.helpers",
	Group:       "calls",
	Description: "Remaining query calls become all(), or run() for statements that change data.",
	Order:       40,
	Severity:    core.SeverityWarning,
	Apply:       applyCallsToHelpers,

	Rationale: `all returns the row array that result.rows used to hold. Statements that
change data or schema go to run, whose result descriptor carries the affected
row count. Calls in any other shape (destructuring, .then chains, calls
without await) are left as they are and flagged for manual conversion.`,

	BadExample: `const result = await pool.query('SELECT * FROM jobs WHERE status = $1', [status]);
res.json(result.rows);`,

	GoodExample: `const result = await all('SELECT * FROM jobs WHERE status = ?', [status]);
res.json(result);`,
}

func applyCallsToHelpers(ctx *rewrite.Context) {
	f := ctx.File
	opts := ctx.Options
	for _, call := range rewrite.SourceCalls(f, opts) {
		pos := f.Tok(call.Recv).Start
		kind, returning := rewrite.Classify(f, call)
		if kind.IsTransactionControl() {
			if contains(opts.Receivers, call.Receiver(f)) {
				ctx.ReportSeverity(pos, core.SeverityInfo,
					"%s on %s is outside a recognised transaction block; left untouched", kind, call.Receiver(f))
			}
			continue
		}
		if _, ok := rewrite.StatementOf(f, call); !ok {
			ctx.Report(pos, "%s.%s() call in an unsupported shape; convert it by hand",
				call.Receiver(f), opts.QueryMethod)
			continue
		}

		helper := opts.HelperName(classify.Shape(kind, returning, false))
		ctx.ReplaceTokens(call.Recv, call.Method+1, helper)
		if kind == classify.Unknown {
			ctx.ReportSeverity(pos, core.SeverityInfo,
				"query text is not a literal; converted to %s(), check how the result is used", helper)
		}
	}
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
