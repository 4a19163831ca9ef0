package rewrite

import (
	"sort"

	"github.com/leapstack-labs/dialectshift/pkg/classify"
	"github.com/leapstack-labs/dialectshift/pkg/jsscan"
)

// Call is a method call RECV.METHOD(args) found in a file. Fields are
// indexes into File.Toks.
type Call struct {
	Recv   int
	Method int
	Open   int
	Close  int
	Args   []jsscan.Arg
}

// Receiver returns the receiver name of the call.
func (c Call) Receiver(f *jsscan.File) string { return f.Tok(c.Recv).Text }

// FindCalls returns every call of method on one of the receivers, in
// source order. A receiver that is itself a property (a.pool.query) and
// a call whose brackets do not balance are skipped.
func FindCalls(f *jsscan.File, receivers []string, method string) []Call {
	var calls []Call
	for i := 0; i+3 < f.Len(); i++ {
		tok := f.Toks[i]
		if tok.Kind != jsscan.Ident || !contains(receivers, tok.Text) {
			continue
		}
		if prev := f.Tok(i - 1); i > 0 && (prev.Is(".") || prev.Is("?.")) {
			continue
		}
		if !f.Is(i+1, ".") || f.Tok(i+2).Kind != jsscan.Ident || f.Tok(i+2).Text != method || !f.Is(i+3, "(") {
			continue
		}
		args, ok := f.Args(i + 3)
		if !ok {
			continue
		}
		calls = append(calls, Call{Recv: i, Method: i + 2, Open: i + 3, Close: f.Match(i + 3), Args: args})
	}
	return calls
}

// Statement is a call in one of the accepted statement shapes:
//
//	[const|let|var] NAME = await CALL[;]
//	await CALL[;]
type Statement struct {
	Call  Call
	Decl  string // "const", "let", "var" or ""
	Name  string // assigned variable, "" for a bare statement
	Await int    // index of the await keyword
	From  int    // first token of the statement
	To    int    // one past the last token, ';' included
}

// StatementOf matches the statement around call, if it has an accepted shape.
func StatementOf(f *jsscan.File, call Call) (Statement, bool) {
	a := call.Recv - 1
	if !f.Is(a, "await") {
		return Statement{}, false
	}
	to, ok := f.StatementEnd(call.Close)
	if !ok {
		return Statement{}, false
	}
	st := Statement{Call: call, Await: a, From: a, To: to}

	switch {
	case f.Is(a-1, "=") && f.Tok(a-2).Kind == jsscan.Ident && !isKeyword(f.Tok(a-2).Text):
		st.Name = f.Tok(a - 2).Text
		if d := f.Tok(a - 3).Text; f.Tok(a-3).Kind == jsscan.Ident && isDecl(d) {
			if !f.StatementBoundary(a - 4) {
				return Statement{}, false
			}
			st.Decl, st.From = d, a-3
		} else {
			if !f.StatementBoundary(a - 3) {
				return Statement{}, false
			}
			st.From = a - 2
		}
	case f.StatementBoundary(a - 1):
	default:
		return Statement{}, false
	}
	return st, true
}

// Unwrap is the statement [const|let|var] ROW = NAME.rows[0][;].
type Unwrap struct {
	Decl string
	Row  string
	From int
	To   int
}

// UnwrapAt matches a first-row unwrap of name starting at token i.
func UnwrapAt(f *jsscan.File, i int, name string) (Unwrap, bool) {
	u := Unwrap{From: i}
	if tok := f.Tok(i); tok.Kind == jsscan.Ident && isDecl(tok.Text) {
		u.Decl = tok.Text
		i++
	}
	row := f.Tok(i)
	if row.Kind != jsscan.Ident || isKeyword(row.Text) || row.Text == name {
		return Unwrap{}, false
	}
	u.Row = row.Text
	want := []string{"=", name, ".", "rows", "[", "0", "]"}
	for k, w := range want {
		tok := f.Tok(i + 1 + k)
		if tok.Text != w || tok.IsLiteral() {
			return Unwrap{}, false
		}
	}
	last := i + len(want)
	to, ok := f.StatementEnd(last)
	if !ok {
		return Unwrap{}, false
	}
	u.To = to
	return u, true
}

// UsedBetween reports whether name is referenced by any token in
// [from, to). Template literals count when their text contains the name
// as a whole word.
func UsedBetween(f *jsscan.File, name string, from, to int) bool {
	for i := from; i < to && i < f.Len(); i++ {
		tok := f.Toks[i]
		switch tok.Kind {
		case jsscan.Ident:
			if tok.Text != name {
				continue
			}
			if prev := f.Tok(i - 1); i > 0 && (prev.Is(".") || prev.Is("?.")) {
				continue
			}
			return true
		case jsscan.Template:
			if containsWord(tok.Text, name) {
				return true
			}
		}
	}
	return false
}

// QueryText returns the literal a query call executes and whether it was
// found. A first argument naming a variable is resolved to the literal
// of its nearest preceding declaration. Concatenated queries resolve to
// their leading literal.
func QueryText(f *jsscan.File, call Call) (jsscan.Token, bool) {
	if len(call.Args) == 0 {
		return jsscan.Token{}, false
	}
	first := f.Tok(call.Args[0].From)
	if first.IsLiteral() {
		return first, true
	}
	if first.Kind != jsscan.Ident || call.Args[0].To-call.Args[0].From != 1 {
		return jsscan.Token{}, false
	}
	for i := call.Recv - 1; i >= 1; i-- {
		if f.Toks[i].Text != first.Text || f.Toks[i].Kind != jsscan.Ident {
			continue
		}
		if !f.Is(i+1, "=") || !isDecl(f.Tok(i-1).Text) {
			continue
		}
		if lit := f.Tok(i + 2); lit.IsLiteral() {
			return lit, true
		}
		return jsscan.Token{}, false
	}
	return jsscan.Token{}, false
}

// Classify returns the statement kind and RETURNING flag of a query call.
// Calls whose SQL cannot be resolved are Unknown.
func Classify(f *jsscan.File, call Call) (classify.Kind, bool) {
	lit, ok := QueryText(f, call)
	if !ok || lit.Unterminated {
		return classify.Unknown, false
	}
	body := lit.Body()
	return classify.Classify(body), classify.HasReturning(body)
}

// HelperName maps a destination shape to the configured helper name.
func (o *Options) HelperName(h classify.Helper) string {
	switch h {
	case classify.Get:
		return o.Helpers.Get
	case classify.Run:
		return o.Helpers.Run
	case classify.All:
		return o.Helpers.All
	}
	return ""
}

func isDecl(s string) bool {
	return s == "const" || s == "let" || s == "var"
}

var keywords = map[string]bool{
	"await": true, "async": true, "break": true, "case": true, "catch": true, "class": true,
	"const": true, "continue": true, "default": true, "delete": true, "do": true, "else": true,
	"export": true, "extends": true, "finally": true, "for": true, "function": true, "if": true,
	"import": true, "in": true, "instanceof": true, "let": true, "new": true, "of": true,
	"return": true, "switch": true, "this": true, "throw": true, "try": true, "typeof": true,
	"var": true, "void": true, "while": true, "yield": true,
}

func isKeyword(s string) bool { return keywords[s] }

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// containsWord reports whether name occurs in text bounded by
// non-identifier bytes.
func containsWord(text, name string) bool {
	for i := 0; i+len(name) <= len(text); i++ {
		if text[i:i+len(name)] != name {
			continue
		}
		before := i == 0 || !isIdentByte(text[i-1])
		after := i+len(name) == len(text) || !isIdentByte(text[i+len(name)])
		if before && after {
			return true
		}
	}
	return false
}

func isIdentByte(c byte) bool {
	return c == '_' || c == '$' || (c >= '0' && c <= '9') || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || c >= 0x80
}

// ConnectionNames returns the variables bound to a dedicated connection
// by NAME = await RECV.connect().
func ConnectionNames(f *jsscan.File, opts *Options) []string {
	var names []string
	for _, call := range FindCalls(f, opts.Receivers, opts.ConnectMethod) {
		if st, ok := StatementOf(f, call); ok && st.Name != "" && !contains(names, st.Name) {
			names = append(names, st.Name)
		}
	}
	return names
}

// SourceCalls returns the query calls to convert: calls on the configured
// receivers, and calls on the connection of a recognised transaction
// block made inside that block.
func SourceCalls(f *jsscan.File, opts *Options) []Call {
	calls := FindCalls(f, opts.Receivers, opts.QueryMethod)
	seen := make(map[int]bool, len(calls))
	for _, c := range calls {
		seen[c.Recv] = true
	}
	blocks, _ := MatchTransactions(f, opts)
	for _, tx := range blocks {
		for _, c := range FindCalls(f, []string{tx.Conn}, opts.QueryMethod) {
			if tx.Contains(c.Recv) && !seen[c.Recv] {
				seen[c.Recv] = true
				calls = append(calls, c)
			}
		}
	}
	sort.Slice(calls, func(i, j int) bool { return calls[i].Recv < calls[j].Recv })
	return calls
}

// PendingCalls returns every query call still written against the source
// client, on the receivers or on any dedicated connection.
func PendingCalls(f *jsscan.File, opts *Options) []Call {
	receivers := append(append([]string(nil), opts.Receivers...), ConnectionNames(f, opts)...)
	return FindCalls(f, receivers, opts.QueryMethod)
}

// InsideCalls reports whether token i lies within the parentheses of one
// of the calls.
func InsideCalls(calls []Call, i int) bool {
	for _, c := range calls {
		if i > c.Open && i < c.Close {
			return true
		}
	}
	return false
}

// ClassifyText classifies a literal token, Unknown for anything else.
func ClassifyText(tok jsscan.Token) classify.Kind {
	if !tok.IsLiteral() || tok.Unterminated {
		return classify.Unknown
	}
	return classify.Classify(tok.Body())
}
