package jsscan

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func significant(tokens []Token) []Token {
	var out []Token
	for _, tok := range tokens {
		if !tok.IsTrivia() {
			out = append(out, tok)
		}
	}
	return out
}

func TestLexer_Kinds(t *testing.T) {
	tests := []struct {
		name  string
		input string
		kinds []Kind
		texts []string
	}{
		{
			name:  "call with string argument",
			input: `pool.query('SELECT 1')`,
			kinds: []Kind{Ident, Punct, Ident, Punct, String, Punct, EOF},
			texts: []string{"pool", ".", "query", "(", "'SELECT 1'", ")", ""},
		},
		{
			name:  "template with substitution",
			input: "x = `a ${b + `c`} d`;",
			kinds: []Kind{Ident, Punct, Template, Punct, EOF},
			texts: []string{"x", "=", "`a ${b + `c`} d`", ";", ""},
		},
		{
			name:  "multi-char punctuators",
			input: "a === b && c?.d",
			kinds: []Kind{Ident, Punct, Ident, Punct, Ident, Punct, Ident, EOF},
			texts: []string{"a", "===", "b", "&&", "c", "?.", "d", ""},
		},
		{
			name:  "identifiers with dollar",
			input: "$1 _x",
			kinds: []Kind{Ident, Ident, EOF},
			texts: []string{"$1", "_x", ""},
		},
		{
			name:  "numbers",
			input: "1 2.5 .5",
			kinds: []Kind{Number, Number, Number, EOF},
			texts: []string{"1", "2.5", ".5", ""},
		},
		{
			name:  "escaped quote",
			input: `'it\'s'`,
			kinds: []Kind{String, EOF},
			texts: []string{`'it\'s'`, ""},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tokens := significant(NewLexer(tt.input).Tokenize())
			require.Len(t, tokens, len(tt.kinds))
			for i, tok := range tokens {
				assert.Equal(t, tt.kinds[i], tok.Kind, "token %d kind", i)
				assert.Equal(t, tt.texts[i], tok.Text, "token %d text", i)
			}
		})
	}
}

func TestLexer_Comments(t *testing.T) {
	tokens := NewLexer("a // pool.query('x')\n/* b */ c").Tokenize()

	var kinds []Kind
	for _, tok := range tokens {
		kinds = append(kinds, tok.Kind)
	}
	assert.Equal(t, []Kind{Ident, Space, LineComment, Space, BlockComment, Space, Ident, EOF}, kinds)
	assert.Equal(t, "// pool.query('x')", tokens[2].Text)
}

func TestLexer_Unterminated(t *testing.T) {
	tests := []struct {
		name  string
		input string
		kind  Kind
	}{
		{"string broken by newline", "'abc\nx", String},
		{"template to end of input", "`abc ${x}", Template},
		{"block comment to end of input", "/* abc", BlockComment},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tokens := NewLexer(tt.input).Tokenize()
			require.NotEmpty(t, tokens)
			assert.Equal(t, tt.kind, tokens[0].Kind)
			assert.True(t, tokens[0].Unterminated)
		})
	}
}

func TestLexer_Positions(t *testing.T) {
	tokens := significant(NewLexer("a\n  bc").Tokenize())
	require.Len(t, tokens, 3)

	assert.Equal(t, 1, tokens[0].Pos.Line)
	assert.Equal(t, 1, tokens[0].Pos.Column)
	assert.Equal(t, 2, tokens[1].Pos.Line)
	assert.Equal(t, 3, tokens[1].Pos.Column)
	assert.Equal(t, 4, tokens[1].Start)
	assert.Equal(t, 6, tokens[1].End)
}

func TestLexer_RoundTrip(t *testing.T) {
	input := "const r = await pool.query(`SELECT ${cols} FROM t WHERE a = $1`, [a]); // done\n"
	var out string
	for _, tok := range NewLexer(input).Tokenize() {
		out += tok.Text
	}
	assert.Equal(t, input, out)
}

func TestToken_Body(t *testing.T) {
	tok := Token{Kind: String, Text: `"SELECT $1"`}
	assert.Equal(t, "SELECT $1", tok.Body())
	assert.Equal(t, byte('"'), tok.Quote())
	assert.Equal(t, `"SELECT ?"`, tok.WithBody("SELECT ?"))

	tpl := Token{Kind: Template, Text: "`x`"}
	assert.Equal(t, "x", tpl.Body())

	ident := Token{Kind: Ident, Text: "x"}
	assert.Empty(t, ident.Body())
	assert.Zero(t, ident.Quote())
}
