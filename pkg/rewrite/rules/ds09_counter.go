package rules

import (
	"strings"

	"github.com/leapstack-labs/dialectshift/pkg/classify"
	"github.com/leapstack-labs/dialectshift/pkg/core"
	"github.com/leapstack-labs/dialectshift/pkg/jsscan"
	"github.com/leapstack-labs/dialectshift/pkg/rewrite"
)

func init() {
	rewrite.Register(Counters)
}

// Counters removes running placeholder counters.
var Counters = rewrite.RuleDef{
	ID:          "DS09",
	Name:        "sql.counters",
	Group:       "sql",
	Description: "A counter that numbers placeholders in a dynamic query is replaced by positional markers.",
	Order:       90,
	Severity:    core.SeverityInfo,
	Apply:       applyCounters,

	Rationale: `Queries built piece by piece number their placeholders with a counter that
is incremented next to every params.push. Positional markers bind in push
order, so each $${counter} becomes a marker and the counter itself goes away
once nothing else reads it.`,

	BadExample: "let paramIndex = 1;\n" +
		"if (status) {\n" +
		"  query += ` AND status = $${paramIndex}`;\n" +
		"  params.push(status);\n" +
		"  paramIndex++;\n" +
		"}",

	GoodExample: "if (status) {\n" +
		"  query += ` AND status = ?`;\n" +
		"  params.push(status);\n" +
		"}",
}

// counterUse is one edit turning a counter reference into a marker.
type counterUse struct {
	start, end int
	text       string
	from, to   int // tokens consumed by the use
}

func applyCounters(ctx *rewrite.Context) {
	f := ctx.File
	for i := 0; i+3 < f.Len(); i++ {
		if !f.Is(i, "let") || f.Tok(i+1).Kind != jsscan.Ident || !f.Is(i+2, "=") || f.Tok(i+3).Kind != jsscan.Number {
			continue
		}
		if !f.StatementBoundary(i - 1) {
			continue
		}
		declTo, ok := f.StatementEnd(i + 3)
		if !ok {
			continue
		}
		name := f.Tok(i + 1).Text
		scopeEnd := f.ScopeEnd(i)

		uses, rest := counterUses(f, name, ctx.Options.Marker, declTo, scopeEnd)
		if len(uses) == 0 {
			continue
		}

		// Either every use goes or the counter stays exactly as written.
		incs := increments(f, name, declTo, scopeEnd)
		if rest > 0 || usedOutside(f, name, declTo, scopeEnd, uses, incs) {
			ctx.ReportSeverity(f.Tok(i).Start, core.SeverityWarning,
				"counter %s is also referenced outside query text; left unchanged", name)
			continue
		}
		for _, u := range uses {
			ctx.Replace(u.start, u.end, u.text)
		}
		ctx.RemoveStatement(i, declTo)
		for _, inc := range incs {
			ctx.RemoveStatement(inc[0], inc[1])
		}
	}
}

// counterUses finds the placeholder uses of the counter in [from, to):
// $${name} substitutions inside templates and '...$' + name concatenations,
// in literals that read as query text. rest counts substitutions mentioning
// the counter in any other way, including $${name} in prose such as prices.
func counterUses(f *jsscan.File, name, marker string, from, to int) ([]counterUse, int) {
	var uses []counterUse
	rest := 0
	for k := from; k < to; k++ {
		tok := f.Toks[k]
		switch {
		case tok.Kind == jsscan.Template:
			text, n, others := replaceSubstitutions(tok.Text, name, marker)
			rest += others
			if n > 0 && !queryText(tok.Body()) {
				rest += n
				continue
			}
			if n > 0 {
				uses = append(uses, counterUse{start: tok.Start, end: tok.End, text: text, from: k, to: k + 1})
			}
		case tok.IsLiteral() && !tok.Unterminated && strings.HasSuffix(tok.Body(), "$") && f.Is(k+1, "+"):
			end := counterOperand(f, name, k+2)
			if end < 0 || !queryText(tok.Body()) {
				continue
			}
			body := strings.TrimSuffix(tok.Body(), "$") + marker
			uses = append(uses, counterUse{start: tok.Start, end: f.Tok(end - 1).End, text: tok.WithBody(body), from: k, to: end})
			k = end - 1
		}
	}
	return uses, rest
}

// counterOperand matches name, name++ or ++name at token i and returns
// the index one past it, or -1.
func counterOperand(f *jsscan.File, name string, i int) int {
	isName := func(j int) bool { return f.Tok(j).Kind == jsscan.Ident && f.Tok(j).Text == name }
	switch {
	case f.Is(i, "++") && isName(i+1):
		return i + 2
	case isName(i) && f.Is(i+1, "++"):
		return i + 2
	case isName(i):
		return i + 1
	}
	return -1
}

// replaceSubstitutions rewrites $${name}, $${name++} and $${++name} in a
// template literal. It returns the new text, the number of rewrites and
// the number of other substitutions that mention name.
func replaceSubstitutions(text, name, marker string) (string, int, int) {
	var b strings.Builder
	n, others := 0, 0
	last := 0
	for i := 0; i+1 < len(text); i++ {
		if text[i] != '$' || text[i+1] != '{' {
			continue
		}
		end := strings.IndexByte(text[i:], '}')
		if end < 0 {
			break
		}
		end += i
		expr := strings.TrimSpace(text[i+2 : end])
		isUse := i > 0 && text[i-1] == '$' && (expr == name || expr == name+"++" || expr == "++"+name)
		switch {
		case isUse:
			b.WriteString(text[last : i-1])
			b.WriteString(marker)
			last = end + 1
			n++
		case containsIdent(expr, name):
			others++
		}
		i = end
	}
	if n == 0 {
		return text, 0, others
	}
	b.WriteString(text[last:])
	return b.String(), n, others
}

// increments returns the statements [from, to) in the range that only
// bump the counter: name++, ++name and name += k.
func increments(f *jsscan.File, name string, from, to int) [][2]int {
	var out [][2]int
	for i := from; i < to; i++ {
		if !f.StatementBoundary(i - 1) {
			continue
		}
		var last int
		switch {
		case f.Tok(i).Text == name && f.Tok(i).Kind == jsscan.Ident && f.Is(i+1, "++"):
			last = i + 1
		case f.Is(i, "++") && f.Tok(i+1).Text == name && f.Tok(i+1).Kind == jsscan.Ident:
			last = i + 1
		case f.Tok(i).Text == name && f.Tok(i).Kind == jsscan.Ident && f.Is(i+1, "+=") && f.Tok(i+2).Kind == jsscan.Number:
			last = i + 2
		default:
			continue
		}
		end, ok := f.StatementEnd(last)
		if !ok {
			continue
		}
		out = append(out, [2]int{i, end})
		i = end - 1
	}
	return out
}

// usedOutside reports whether name is referenced in [from, to) outside
// the rewritten uses and increment statements.
func usedOutside(f *jsscan.File, name string, from, to int, uses []counterUse, incs [][2]int) bool {
	covered := func(i int) bool {
		for _, u := range uses {
			if i >= u.from && i < u.to {
				return true
			}
		}
		for _, inc := range incs {
			if i >= inc[0] && i < inc[1] {
				return true
			}
		}
		return false
	}
	for i := from; i < to; i++ {
		tok := f.Toks[i]
		if tok.Kind != jsscan.Ident || tok.Text != name || covered(i) {
			continue
		}
		if prev := f.Tok(i - 1); prev.Is(".") || prev.Is("?.") {
			continue
		}
		return true
	}
	return false
}

func queryText(body string) bool {
	return classify.LooksLikeSQL(body) || classify.LooksLikeFragment(body)
}

func containsIdent(text, name string) bool {
	for i := 0; i+len(name) <= len(text); i++ {
		if text[i:i+len(name)] != name {
			continue
		}
		if (i == 0 || !isWordByte(text[i-1])) && (i+len(name) == len(text) || !isWordByte(text[i+len(name)])) {
			return true
		}
	}
	return false
}
