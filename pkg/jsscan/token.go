// Package jsscan is a minimal tokenizer for JavaScript source files.
//
// It is not a parser. It knows enough about string, template and comment
// boundaries, and about bracket nesting, that rewrite rules never mistake text
// inside a literal for code (or the other way round). Regular expression
// literals are not recognised.
package jsscan

import "github.com/leapstack-labs/dialectshift/pkg/core"

// Kind identifies the type of token.
type Kind int

// Kind constants for JavaScript token types.
const (
	EOF          Kind = iota // End of input
	Ident                    // identifier or keyword
	Number                   // numeric literal
	String                   // '...' or "..."
	Template                 // `...` including ${...} substitutions
	LineComment              // // ...
	BlockComment             // /* ... */
	Punct                    // operator or delimiter
	Space                    // whitespace run, newlines included
)

func (k Kind) String() string {
	switch k {
	case EOF:
		return "EOF"
	case Ident:
		return "IDENT"
	case Number:
		return "NUMBER"
	case String:
		return "STRING"
	case Template:
		return "TEMPLATE"
	case LineComment:
		return "LINE_COMMENT"
	case BlockComment:
		return "BLOCK_COMMENT"
	case Punct:
		return "PUNCT"
	case Space:
		return "SPACE"
	default:
		return "UNKNOWN"
	}
}

// Token represents a lexical token.
type Token struct {
	Kind  Kind
	Text  string
	Start int // byte offset of the first character
	End   int // byte offset one past the last character
	Pos   core.Position

	// Unterminated is set on strings, templates and block comments that
	// run to the end of the line or input without a closing delimiter.
	Unterminated bool
}

// IsTrivia reports whether the token carries no meaning for matching.
func (t Token) IsTrivia() bool {
	return t.Kind == Space || t.Kind == LineComment || t.Kind == BlockComment
}

// IsLiteral reports whether the token is a string or template literal.
func (t Token) IsLiteral() bool {
	return t.Kind == String || t.Kind == Template
}

// Is reports whether the token is an identifier or punctuator spelled s.
func (t Token) Is(s string) bool {
	return (t.Kind == Ident || t.Kind == Punct) && t.Text == s
}

// Quote returns the opening delimiter of a literal, or 0.
func (t Token) Quote() byte {
	if !t.IsLiteral() || t.Text == "" {
		return 0
	}
	return t.Text[0]
}

// Body returns the raw text between the delimiters of a literal.
// Escape sequences are left as written.
func (t Token) Body() string {
	if !t.IsLiteral() || len(t.Text) < 1 {
		return ""
	}
	if t.Unterminated || len(t.Text) < 2 {
		return t.Text[1:]
	}
	return t.Text[1 : len(t.Text)-1]
}

// WithBody returns the literal's source text with its body replaced.
func (t Token) WithBody(body string) string {
	q := string(t.Quote())
	return q + body + q
}
