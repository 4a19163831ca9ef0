package rules

import (
	"github.com/leapstack-labs/dialectshift/pkg/core"
	"github.com/leapstack-labs/dialectshift/pkg/jsscan"
	"github.com/leapstack-labs/dialectshift/pkg/rewrite"
)

func init() {
	rewrite.Register(Transactions)
}

// Transactions removes explicit transaction scaffolding.
var Transactions = rewrite.RuleDef{
	ID:          "DS08",
	Name:        "transactions.scaffolding",
	Group:       "transactions",
	Description: "Connection acquire, BEGIN, COMMIT, ROLLBACK and release statements are removed.",
	Order:       80,
	Severity:    core.SeverityWarning,
	Lossy:       true,
	Apply:       applyTransactions,

	Rationale: `The helpers run every statement on their own and offer no way to group
several statements into one transaction. The try/catch structure is kept, but
the statements inside it no longer commit or roll back together. Each removed
block is reported with the number of queries it held.`,

	BadExample: `const client = await pool.connect();
try {
  await client.query('BEGIN');
  await run('UPDATE accounts SET balance = balance - ? WHERE id = ?', [amount, from]);
  await run('UPDATE accounts SET balance = balance + ? WHERE id = ?', [amount, to]);
  await client.query('COMMIT');
} catch (err) {
  await client.query('ROLLBACK');
  throw err;
} finally {
  client.release();
}`,

	GoodExample: `try {
  await run('UPDATE accounts SET balance = balance - ? WHERE id = ?', [amount, from]);
  await run('UPDATE accounts SET balance = balance + ? WHERE id = ?', [amount, to]);
} catch (err) {
  throw err;
}`,
}

func applyTransactions(ctx *rewrite.Context) {
	f := ctx.File
	opts := ctx.Options
	blocks, unmatched := rewrite.MatchTransactions(f, opts)

	for _, tx := range blocks {
		ctx.ReplaceTokens(tx.From, tx.BeginTo, "try {")

		stmts := rewrite.ConnStatements(f, opts, tx.Conn, tx.BeginTo, tx.End)
		dropFinally := tx.Finally >= 0 && tx.CatchOpen >= 0 && onlyStatements(stmts, tx.FinallyOpen+1, tx.FinallyClose)
		if dropFinally {
			ctx.Replace(f.Tok(tx.CatchClose).End, f.Tok(tx.FinallyClose).End, "")
		}
		for _, st := range stmts {
			if dropFinally && st.From > tx.Finally {
				continue
			}
			ctx.RemoveStatement(st.From, st.To)
		}

		ctx.Report(f.Tok(tx.From).Start,
			"transaction on %s removed; %d queries in this block no longer commit or roll back together",
			tx.Conn, countQueries(f, opts, tx))
	}

	for _, call := range unmatched {
		ctx.ReportSeverity(f.Tok(call.Recv).Start, core.SeverityInfo,
			"%s.%s() does not open a recognised transaction block; left untouched",
			call.Receiver(f), opts.ConnectMethod)
	}
}

// onlyStatements reports whether the statements cover every token in
// [from, to).
func onlyStatements(stmts []rewrite.ConnStatement, from, to int) bool {
	i := from
	for _, st := range stmts {
		if st.To <= from || st.From >= to {
			continue
		}
		if st.From != i {
			return false
		}
		i = st.To
	}
	return i == to
}

// countQueries counts the helper calls and remaining connection queries
// inside the try block.
func countQueries(f *jsscan.File, opts *rewrite.Options, tx rewrite.Transaction) int {
	n := 0
	for i := tx.BeginTo; i < tx.TryClose; i++ {
		tok := f.Toks[i]
		if tok.Kind != jsscan.Ident || (!f.Is(i+1, "(") && !f.Is(i+1, ".")) {
			continue
		}
		if prev := f.Tok(i - 1); prev.Is(".") || prev.Is("?.") {
			continue
		}
		switch {
		case opts.IsHelper(tok.Text) && f.Is(i+1, "("):
			n++
		case tok.Text == tx.Conn && f.Tok(i+2).Text == opts.QueryMethod:
			if call := f.Tok(i + 4); f.Is(i+3, "(") && call.IsLiteral() {
				if k := rewrite.ClassifyText(call); k.IsTransactionControl() {
					continue
				}
			}
			n++
		}
	}
	return n
}
