package jsscan

import (
	"strings"

	"github.com/leapstack-labs/dialectshift/pkg/core"
)

// punctuators longer than one byte, longest first.
var multiPunct = []string{
	"===", "!==", "**=", "...", ">>>",
	"==", "!=", "<=", ">=", "=>", "++", "--", "+=", "-=", "*=", "/=",
	"&&", "||", "??", "?.", "**", "<<", ">>",
}

// Lexer tokenizes JavaScript source.
type Lexer struct {
	input    string
	pos      int // current position in input
	line     int // current line number (1-based)
	col      int // current column number (1-based)
	lastLine int // line at start of current token
	lastCol  int // column at start of current token
	lastPos  int // offset at start of current token
}

// NewLexer creates a new lexer for the given input.
func NewLexer(input string) *Lexer {
	return &Lexer{
		input: input,
		line:  1,
		col:   1,
	}
}

// Tokenize converts the whole input into tokens, trivia included.
// The last token is always EOF. Tokenizing never fails: malformed
// literals are returned with Unterminated set.
func (l *Lexer) Tokenize() []Token {
	var tokens []Token
	for {
		tok := l.nextToken()
		tokens = append(tokens, tok)
		if tok.Kind == EOF {
			return tokens
		}
	}
}

func (l *Lexer) nextToken() Token {
	l.markStart()
	if l.pos >= len(l.input) {
		return l.emit(EOF)
	}

	c := l.input[l.pos]
	switch {
	case isSpace(c):
		for l.pos < len(l.input) && isSpace(l.input[l.pos]) {
			l.advance()
		}
		return l.emit(Space)
	case l.matchString("//"):
		for l.pos < len(l.input) && l.input[l.pos] != '\n' {
			l.advance()
		}
		return l.emit(LineComment)
	case l.matchString("/*"):
		return l.scanBlockComment()
	case c == '\'' || c == '"':
		return l.scanString(c)
	case c == '`':
		return l.scanTemplate()
	case isIdentStart(c):
		for l.pos < len(l.input) && isIdentPart(l.input[l.pos]) {
			l.advance()
		}
		return l.emit(Ident)
	case isDigit(c) || (c == '.' && l.pos+1 < len(l.input) && isDigit(l.input[l.pos+1])):
		for l.pos < len(l.input) && (isIdentPart(l.input[l.pos]) || l.input[l.pos] == '.') {
			l.advance()
		}
		return l.emit(Number)
	}

	for _, p := range multiPunct {
		if l.matchString(p) {
			l.advanceN(len(p))
			return l.emit(Punct)
		}
	}
	l.advance()
	return l.emit(Punct)
}

func (l *Lexer) scanBlockComment() Token {
	l.advanceN(2)
	for l.pos < len(l.input) {
		if l.matchString("*/") {
			l.advanceN(2)
			return l.emit(BlockComment)
		}
		l.advance()
	}
	tok := l.emit(BlockComment)
	tok.Unterminated = true
	return tok
}

// scanString scans a quoted string. An unescaped newline ends the token
// as unterminated, matching the language rule.
func (l *Lexer) scanString(quote byte) Token {
	l.advance()
	for l.pos < len(l.input) {
		c := l.input[l.pos]
		switch {
		case c == '\\':
			l.advanceN(2)
		case c == quote:
			l.advance()
			return l.emit(String)
		case c == '\n':
			tok := l.emit(String)
			tok.Unterminated = true
			return tok
		default:
			l.advance()
		}
	}
	tok := l.emit(String)
	tok.Unterminated = true
	return tok
}

func (l *Lexer) scanTemplate() Token {
	l.advance()
	if !l.skipTemplateBody() {
		tok := l.emit(Template)
		tok.Unterminated = true
		return tok
	}
	return l.emit(Template)
}

// skipTemplateBody consumes a template body through its closing backtick.
func (l *Lexer) skipTemplateBody() bool {
	for l.pos < len(l.input) {
		switch {
		case l.input[l.pos] == '\\':
			l.advanceN(2)
		case l.input[l.pos] == '`':
			l.advance()
			return true
		case l.matchString("${"):
			l.advanceN(2)
			if !l.skipCode('}') {
				return false
			}
		default:
			l.advance()
		}
	}
	return false
}

// skipCode consumes code up to and including the close delimiter at
// depth zero, stepping over nested literals and comments.
func (l *Lexer) skipCode(closer byte) bool {
	depth := 0
	for l.pos < len(l.input) {
		c := l.input[l.pos]
		switch {
		case c == '\'' || c == '"':
			if tok := l.scanString(c); tok.Unterminated {
				return false
			}
		case c == '`':
			l.advance()
			if !l.skipTemplateBody() {
				return false
			}
		case l.matchString("//"):
			for l.pos < len(l.input) && l.input[l.pos] != '\n' {
				l.advance()
			}
		case l.matchString("/*"):
			if tok := l.scanBlockComment(); tok.Unterminated {
				return false
			}
		case c == '{':
			depth++
			l.advance()
		case c == closer && depth == 0:
			l.advance()
			return true
		case c == '}':
			depth--
			l.advance()
		default:
			l.advance()
		}
	}
	return false
}

func (l *Lexer) markStart() {
	l.lastPos = l.pos
	l.lastLine = l.line
	l.lastCol = l.col
}

func (l *Lexer) emit(kind Kind) Token {
	return Token{
		Kind:  kind,
		Text:  l.input[l.lastPos:l.pos],
		Start: l.lastPos,
		End:   l.pos,
		Pos:   core.Position{Line: l.lastLine, Column: l.lastCol, Offset: l.lastPos},
	}
}

func (l *Lexer) advance() {
	if l.pos >= len(l.input) {
		return
	}
	if l.input[l.pos] == '\n' {
		l.line++
		l.col = 1
	} else {
		l.col++
	}
	l.pos++
}

func (l *Lexer) advanceN(n int) {
	for i := 0; i < n; i++ {
		l.advance()
	}
}

func (l *Lexer) matchString(s string) bool {
	return strings.HasPrefix(l.input[l.pos:], s)
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\f' || c == '\v'
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func isIdentStart(c byte) bool {
	return c == '_' || c == '$' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || c >= 0x80
}

func isIdentPart(c byte) bool {
	return isIdentStart(c) || isDigit(c)
}
