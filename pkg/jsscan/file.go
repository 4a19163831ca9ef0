package jsscan

import (
	"sort"
	"strings"
)

// File is a tokenized source text. Toks holds the significant tokens only
// (no whitespace or comments) and always ends with EOF; All keeps trivia.
type File struct {
	Src  string
	All  []Token
	Toks []Token

	match  []int // index of the matching bracket, or -1
	parent []int // index of the innermost enclosing '{', or -1
}

// Arg is one top-level argument of a call, as a half-open token range.
type Arg struct {
	From int // index of the first token
	To   int // index one past the last token
}

// Parse tokenizes src and indexes its bracket structure.
func Parse(src string) *File {
	all := NewLexer(src).Tokenize()
	f := &File{Src: src, All: all}
	for _, tok := range all {
		if !tok.IsTrivia() {
			f.Toks = append(f.Toks, tok)
		}
	}
	f.index()
	return f
}

func (f *File) index() {
	f.match = make([]int, len(f.Toks))
	f.parent = make([]int, len(f.Toks))
	var stack []int
	for i, tok := range f.Toks {
		f.match[i] = -1
		f.parent[i] = -1
		for j := len(stack) - 1; j >= 0; j-- {
			if f.Toks[stack[j]].Text == "{" {
				f.parent[i] = stack[j]
				break
			}
		}
		if tok.Kind != Punct {
			continue
		}
		switch tok.Text {
		case "(", "[", "{":
			stack = append(stack, i)
		case ")", "]", "}":
			if len(stack) == 0 {
				continue
			}
			top := stack[len(stack)-1]
			if closerOf(f.Toks[top].Text) != tok.Text {
				continue
			}
			stack = stack[:len(stack)-1]
			f.match[top] = i
			f.match[i] = top
		}
	}
}

func closerOf(open string) string {
	switch open {
	case "(":
		return ")"
	case "[":
		return "]"
	case "{":
		return "}"
	}
	return ""
}

// Len returns the number of significant tokens, EOF included.
func (f *File) Len() int { return len(f.Toks) }

// Tok returns the significant token at i, or EOF when i is out of range.
func (f *File) Tok(i int) Token {
	if i < 0 || i >= len(f.Toks) {
		return Token{Kind: EOF, Start: len(f.Src), End: len(f.Src)}
	}
	return f.Toks[i]
}

// Is reports whether the token at i is an identifier or punctuator spelled s.
func (f *File) Is(i int, s string) bool {
	return f.Tok(i).Is(s)
}

// Match returns the index of the bracket matching the one at i, or -1.
func (f *File) Match(i int) int {
	if i < 0 || i >= len(f.match) {
		return -1
	}
	return f.match[i]
}

// Enclosing returns the index of the innermost '{' around token i, or -1
// when the token is at the top level.
func (f *File) Enclosing(i int) int {
	if i < 0 || i >= len(f.parent) {
		return -1
	}
	return f.parent[i]
}

// ScopeEnd returns the index of the '}' closing the block that contains
// token i, or the EOF index for top-level tokens.
func (f *File) ScopeEnd(i int) int {
	open := f.Enclosing(i)
	if open < 0 || f.Match(open) < 0 {
		return len(f.Toks) - 1
	}
	return f.Match(open)
}

// Args splits the argument list of the call whose '(' is at open.
// A trailing comma does not produce an empty argument.
func (f *File) Args(open int) ([]Arg, bool) {
	closeIdx := f.Match(open)
	if !f.Is(open, "(") || closeIdx < 0 {
		return nil, false
	}
	var args []Arg
	from := open + 1
	for i := open + 1; i < closeIdx; i++ {
		tok := f.Toks[i]
		if tok.Kind == Punct && (tok.Text == "(" || tok.Text == "[" || tok.Text == "{") {
			if f.match[i] < 0 {
				return nil, false
			}
			i = f.match[i]
			continue
		}
		if tok.Is(",") {
			args = append(args, Arg{From: from, To: i})
			from = i + 1
		}
	}
	if from < closeIdx {
		args = append(args, Arg{From: from, To: closeIdx})
	}
	for _, a := range args {
		if a.From >= a.To {
			return nil, false
		}
	}
	return args, true
}

// Text returns the source text spanning tokens [from, to).
func (f *File) Text(from, to int) string {
	if from >= to {
		return ""
	}
	return f.Src[f.Tok(from).Start:f.Tok(to - 1).End]
}

// Single returns the token when the argument consists of exactly one token.
func (f *File) Single(a Arg) (Token, bool) {
	if a.To-a.From != 1 {
		return Token{}, false
	}
	return f.Toks[a.From], true
}

// StatementBoundary reports whether a statement may begin right after token i.
func (f *File) StatementBoundary(i int) bool {
	if i < 0 {
		return true
	}
	tok := f.Tok(i)
	return tok.Is(";") || tok.Is("{") || tok.Is("}") || tok.Is(")") || tok.Is("else")
}

// EndsLine reports whether nothing but whitespace or a comment separates
// token i from the end of its line.
func (f *File) EndsLine(i int) bool {
	end := f.Tok(i).End
	next := f.Tok(i + 1)
	if next.Kind == EOF {
		return true
	}
	return strings.Contains(f.Src[end:next.Start], "\n")
}

// StatementEnd returns the index one past the statement ending at token
// last, consuming an optional ';'. ok is false when the next token would
// continue the expression on the same line.
func (f *File) StatementEnd(last int) (int, bool) {
	next := f.Tok(last + 1)
	switch {
	case next.Is(";"):
		return last + 2, true
	case next.Kind == EOF, next.Is("}"), f.EndsLine(last) && !continuesExpression(next):
		return last + 1, true
	}
	return 0, false
}

func continuesExpression(t Token) bool {
	if t.Kind != Punct {
		return false
	}
	switch t.Text {
	case ".", "?.", "[", "(", ",", "+", "-", "*", "/", "&&", "||", "??", "?", ":", "=", "==", "===", "!=", "!==":
		return true
	}
	return false
}

// LineSpan widens the byte range [start, end) to cover its whole line,
// trailing newline included, when nothing but whitespace shares the line
// with it. Otherwise the range is returned unchanged.
func (f *File) LineSpan(start, end int) (int, int) {
	ls := strings.LastIndexByte(f.Src[:start], '\n') + 1
	if strings.TrimSpace(f.Src[ls:start]) != "" {
		return start, end
	}
	le := strings.IndexByte(f.Src[end:], '\n')
	if le < 0 {
		if strings.TrimSpace(f.Src[end:]) != "" {
			return start, end
		}
		return ls, len(f.Src)
	}
	le += end
	if strings.TrimSpace(f.Src[end:le]) != "" {
		return start, end
	}
	return ls, le + 1
}

// IndexAt returns the index of the significant token starting at offset,
// or -1 when no such token exists.
func (f *File) IndexAt(offset int) int {
	i := sort.Search(len(f.Toks), func(i int) bool { return f.Toks[i].Start >= offset })
	if i < len(f.Toks) && f.Toks[i].Start == offset && f.Toks[i].Kind != EOF {
		return i
	}
	return -1
}
