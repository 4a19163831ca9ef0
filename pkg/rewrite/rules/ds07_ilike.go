package rules

import (
	"strings"

	"github.com/leapstack-labs/dialectshift/pkg/core"
	"github.com/leapstack-labs/dialectshift/pkg/rewrite"
)

func init() {
	rewrite.Register(ILikeToLike)
}

// ILikeToLike narrows ILIKE to LIKE.
var ILikeToLike = rewrite.RuleDef{
	ID:          "DS07",
	Name:        "sql.ilike",
	Group:       "sql",
	Description: "ILIKE in query literals becomes LIKE.",
	Order:       70,
	Severity:    core.SeverityWarning,
	Lossy:       true,
	Apply:       applyILikeToLike,

	Rationale: `The destination database has no ILIKE operator. LIKE is the closest
equivalent but its case handling differs: it only folds ASCII letters, and not
at all when case_sensitive_like is on. Every occurrence is reported so the
comparison can be reviewed, for example by wrapping both sides in LOWER().`,

	BadExample: `await all('SELECT * FROM jobs WHERE title ILIKE ?', ['%' + q + '%']);`,

	GoodExample: `await all('SELECT * FROM jobs WHERE title LIKE ?', ['%' + q + '%']);`,
}

func applyILikeToLike(ctx *rewrite.Context) {
	f := ctx.File
	pending := rewrite.PendingCalls(f, ctx.Options)
	for i, tok := range f.Toks {
		if !tok.IsLiteral() || tok.Unterminated || rewrite.InsideCalls(pending, i) {
			continue
		}
		body := tok.Body()
		hits := findILike(body)
		if len(hits) == 0 {
			continue
		}

		var b strings.Builder
		last := 0
		for _, at := range hits {
			b.WriteString(body[last:at])
			// Drop the leading I and keep the spelling of LIKE.
			last = at + 1
			ctx.Report(tok.Start+1+at, "%s narrowed to %s; case-insensitive matching is no longer guaranteed",
				body[at:at+5], body[at+1:at+5])
		}
		b.WriteString(body[last:])
		ctx.Replace(tok.Start, tok.End, tok.WithBody(b.String()))
	}
}

// findILike returns the offsets of the ILIKE keyword in body, in any
// case, outside single-quoted SQL strings.
func findILike(body string) []int {
	var hits []int
	inQuote := false
	for i := 0; i < len(body); i++ {
		switch c := body[i]; {
		case c == '\\':
			// \' inside a single-quoted literal is an SQL quote.
			if i+1 < len(body) && body[i+1] == '\'' {
				inQuote = !inQuote
			}
			i++
		case c == '\'':
			inQuote = !inQuote
		case inQuote:
		case (c == 'i' || c == 'I') && i+5 <= len(body) && strings.EqualFold(body[i:i+5], "ILIKE"):
			before := i == 0 || !isWordByte(body[i-1])
			after := i+5 == len(body) || !isWordByte(body[i+5])
			if before && after {
				hits = append(hits, i)
				i += 4
			}
		}
	}
	return hits
}

func isWordByte(c byte) bool {
	return c == '_' || c == '$' || (c >= '0' && c <= '9') || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}
