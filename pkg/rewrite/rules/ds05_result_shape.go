package rules

import (
	"github.com/leapstack-labs/dialectshift/pkg/core"
	"github.com/leapstack-labs/dialectshift/pkg/jsscan"
	"github.com/leapstack-labs/dialectshift/pkg/rewrite"
)

func init() {
	rewrite.Register(ResultShape)
}

// ResultShape rewrites result accessors to match what each helper returns.
var ResultShape = rewrite.RuleDef{
	ID:          "DS05",
	Name:        "results.shape",
	Group:       "results",
	Description: "Rewrite .rows and .rowCount on helper results to the helper's return shape.",
	Order:       50,
	Severity:    core.SeverityInfo,
	Apply:       applyResultShape,

	Rationale: `all returns the row array itself, get returns one row and run returns a
descriptor with changes and lastID. Accessors written for the pooled client's
result object are rewritten according to the helper the variable was last
bound to in an enclosing block. On a run descriptor rows[0].id becomes lastID;
other columns of a returned row have no equivalent and are reported.`,

	BadExample: `const result = await all('SELECT * FROM jobs', []);
res.json({ jobs: result.rows, total: result.rowCount });`,

	GoodExample: `const result = await all('SELECT * FROM jobs', []);
res.json({ jobs: result, total: result.length });`,
}

func applyResultShape(ctx *rewrite.Context) {
	f := ctx.File
	opts := ctx.Options
	for i := 1; i+2 < f.Len(); i++ {
		tok := f.Toks[i]
		if tok.Kind != jsscan.Ident || !f.Is(i+1, ".") {
			continue
		}
		field := f.Tok(i + 2).Text
		if field != "rows" && field != "rowCount" {
			continue
		}
		if prev := f.Tok(i - 1); prev.Is(".") || prev.Is("?.") {
			continue
		}
		helper, ok := bindingHelper(f, opts, tok.Text, i)
		if !ok {
			continue
		}

		dot, name := f.Tok(i+1), f.Tok(i+2)
		firstRow := f.Is(i+3, "[") && f.Tok(i+4).Text == "0" && f.Is(i+5, "]")
		switch {
		case helper == opts.Helpers.All && field == "rows":
			ctx.Replace(dot.Start, name.End, "")
		case helper == opts.Helpers.All && field == "rowCount":
			ctx.Replace(name.Start, name.End, "length")
		case helper == opts.Helpers.Run && field == "rowCount":
			ctx.Replace(name.Start, name.End, "changes")
		case helper == opts.Helpers.Run && field == "rows" && firstRow && f.Is(i+6, ".") && f.Tok(i+7).Text == "id":
			ctx.Replace(dot.Start, f.Tok(i+7).End, ".lastID")
		case helper == opts.Helpers.Run && field == "rows" && firstRow:
			// The descriptor carries no row columns.
			ctx.ReportSeverity(tok.Start, core.SeverityWarning,
				"%s.rows[0] reads a returned row, but %s() only reports changes and lastID; left untouched",
				tok.Text, helper)
		case field == "rows" && firstRow:
			ctx.Replace(dot.Start, f.Tok(i+5).End, "")
		default:
			ctx.Report(tok.Start, "%s.%s has no equivalent on the result of %s(); left untouched",
				tok.Text, field, helper)
		}
	}
}

// bindingHelper finds the nearest assignment of name before token use in
// an enclosing block and returns the helper it calls. Assignments of any
// other value end the search.
func bindingHelper(f *jsscan.File, opts *rewrite.Options, name string, use int) (string, bool) {
	for j := use - 1; j >= 0; j-- {
		tok := f.Toks[j]
		if tok.Kind != jsscan.Ident || tok.Text != name || !f.Is(j+1, "=") {
			continue
		}
		if prev := f.Tok(j - 1); j > 0 && (prev.Is(".") || prev.Is("?.")) {
			continue
		}
		if !encloses(f, f.Enclosing(j), use) {
			continue
		}
		helper := f.Tok(j + 3)
		if !f.Is(j+2, "await") || helper.Kind != jsscan.Ident || !f.Is(j+4, "(") || !opts.IsHelper(helper.Text) {
			return "", false
		}
		return helper.Text, true
	}
	return "", false
}

// encloses reports whether the block opened at token open contains token
// i. A negative open stands for the whole file.
func encloses(f *jsscan.File, open, i int) bool {
	if open < 0 {
		return true
	}
	return open < i && i < f.Match(open)
}
