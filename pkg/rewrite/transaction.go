package rewrite

import (
	"github.com/leapstack-labs/dialectshift/pkg/classify"
	"github.com/leapstack-labs/dialectshift/pkg/jsscan"
)

// Transaction is an explicit transaction on a dedicated connection:
//
//	const client = await pool.connect();
//	try {
//	  await client.query('BEGIN');
//	  ...
//	  await client.query('COMMIT');
//	} catch (err) {
//	  await client.query('ROLLBACK');
//	} finally {
//	  client.release();
//	}
//
// Fields are token indexes; clauses that are absent hold -1.
type Transaction struct {
	Conn string

	From    int // first token of the connect statement
	BeginTo int // one past the BEGIN statement
	Try     int

	TryOpen, TryClose         int
	CatchOpen, CatchClose     int
	Finally                   int
	FinallyOpen, FinallyClose int

	End int // one past the try statement
}

// Contains reports whether token i lies inside the try statement.
func (t Transaction) Contains(i int) bool {
	return i > t.Try && i < t.End
}

// MatchTransactions finds the transaction blocks of f. Connect calls that
// do not open a recognised block are returned separately.
func MatchTransactions(f *jsscan.File, opts *Options) ([]Transaction, []Call) {
	var blocks []Transaction
	var unmatched []Call
	for _, call := range FindCalls(f, opts.Receivers, opts.ConnectMethod) {
		tx, ok := matchTransaction(f, opts, call)
		if !ok {
			unmatched = append(unmatched, call)
			continue
		}
		blocks = append(blocks, tx)
	}
	return blocks, unmatched
}

func matchTransaction(f *jsscan.File, opts *Options, call Call) (Transaction, bool) {
	st, ok := StatementOf(f, call)
	if !ok || st.Name == "" || len(call.Args) != 0 {
		return Transaction{}, false
	}
	tx := Transaction{Conn: st.Name, From: st.From, Try: st.To, TryOpen: st.To + 1}
	tx.CatchOpen, tx.CatchClose = -1, -1
	tx.Finally, tx.FinallyOpen, tx.FinallyClose = -1, -1, -1
	if !f.Is(tx.Try, "try") || !f.Is(tx.TryOpen, "{") {
		return Transaction{}, false
	}
	tx.TryClose = f.Match(tx.TryOpen)
	if tx.TryClose < 0 {
		return Transaction{}, false
	}

	begin, ok := connStatementAt(f, opts, tx.Conn, tx.TryOpen+1)
	if !ok || begin.Kind != classify.Begin {
		return Transaction{}, false
	}
	tx.BeginTo = begin.To

	next := tx.TryClose + 1
	if f.Is(next, "catch") {
		open := next + 1
		if f.Is(open, "(") {
			open = f.Match(open) + 1
		}
		if open <= 0 || !f.Is(open, "{") || f.Match(open) < 0 {
			return Transaction{}, false
		}
		tx.CatchOpen, tx.CatchClose = open, f.Match(open)
		next = tx.CatchClose + 1
	}
	if f.Is(next, "finally") {
		if !f.Is(next+1, "{") || f.Match(next+1) < 0 {
			return Transaction{}, false
		}
		tx.Finally, tx.FinallyOpen, tx.FinallyClose = next, next+1, f.Match(next+1)
		next = tx.FinallyClose + 1
	}
	if tx.CatchOpen < 0 && tx.Finally < 0 {
		return Transaction{}, false
	}
	tx.End = next
	return tx, true
}

// ConnStatement is a statement run on a transaction's connection: either
// `await CONN.query(LITERAL)` or `[await] CONN.release()`.
type ConnStatement struct {
	Kind    classify.Kind // statement kind, Unknown for release
	Release bool
	From    int
	To      int
}

// connStatementAt matches a connection statement starting at token i.
func connStatementAt(f *jsscan.File, opts *Options, conn string, i int) (ConnStatement, bool) {
	st := ConnStatement{From: i}
	if f.Is(i, "await") {
		i++
	}
	if f.Tok(i).Kind != jsscan.Ident || f.Tok(i).Text != conn || !f.Is(i+1, ".") || !f.Is(i+3, "(") {
		return ConnStatement{}, false
	}
	method := f.Tok(i + 2).Text
	closeIdx := f.Match(i + 3)
	if closeIdx < 0 {
		return ConnStatement{}, false
	}
	switch {
	case method == opts.ReleaseMethod && closeIdx == i+4:
		st.Release = true
	case method == opts.QueryMethod && st.From != i && closeIdx == i+5 && f.Tok(i+4).IsLiteral():
		st.Kind = classify.Classify(f.Tok(i + 4).Body())
	default:
		return ConnStatement{}, false
	}
	to, ok := f.StatementEnd(closeIdx)
	if !ok {
		return ConnStatement{}, false
	}
	st.To = to
	return st, true
}

// ConnStatements returns the transaction-control and release statements
// on the connection within the token range [from, to).
func ConnStatements(f *jsscan.File, opts *Options, conn string, from, to int) []ConnStatement {
	var out []ConnStatement
	for i := from; i < to; i++ {
		if !f.StatementBoundary(i - 1) {
			continue
		}
		st, ok := connStatementAt(f, opts, conn, i)
		if !ok || st.To > to {
			continue
		}
		if st.Release || st.Kind.IsTransactionControl() {
			out = append(out, st)
			i = st.To - 1
		}
	}
	return out
}
