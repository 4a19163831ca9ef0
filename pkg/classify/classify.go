// Package classify inspects SQL text to decide how a query call is rewritten.
package classify

import "strings"

// Kind is the statement kind of a query literal.
type Kind int

// Statement kinds.
const (
	Unknown Kind = iota // not a literal, or no recognised leading verb
	Select
	Insert
	Update
	Delete
	Other // DDL and other statements that change state
	Begin
	Commit
	Rollback
)

func (k Kind) String() string {
	switch k {
	case Select:
		return "select"
	case Insert:
		return "insert"
	case Update:
		return "update"
	case Delete:
		return "delete"
	case Other:
		return "other"
	case Begin:
		return "begin"
	case Commit:
		return "commit"
	case Rollback:
		return "rollback"
	default:
		return "unknown"
	}
}

// IsMutation reports whether statements of this kind change data or schema.
func (k Kind) IsMutation() bool {
	return k == Insert || k == Update || k == Delete || k == Other
}

// IsTransactionControl reports whether the kind opens or closes a transaction.
func (k Kind) IsTransactionControl() bool {
	return k == Begin || k == Commit || k == Rollback
}

var verbs = map[string]Kind{
	"SELECT":    Select,
	"VALUES":    Select,
	"SHOW":      Select,
	"EXPLAIN":   Select,
	"INSERT":    Insert,
	"UPDATE":    Update,
	"DELETE":    Delete,
	"CREATE":    Other,
	"DROP":      Other,
	"ALTER":     Other,
	"TRUNCATE":  Other,
	"REPLACE":   Other,
	"MERGE":     Other,
	"UPSERT":    Other,
	"GRANT":     Other,
	"REVOKE":    Other,
	"VACUUM":    Other,
	"ANALYZE":   Other,
	"SET":       Other,
	"SAVEPOINT": Other,
	"RELEASE":   Other,
	"BEGIN":     Begin,
	"START":     Begin,
	"COMMIT":    Commit,
	"END":       Commit,
	"ROLLBACK":  Rollback,
	"ABORT":     Rollback,
}

// Classify returns the statement kind of query. WITH queries take the kind
// of their main statement.
func Classify(query string) Kind {
	words := scanWords(query, false)
	if len(words) == 0 {
		return Unknown
	}
	first := strings.ToUpper(words[0])
	if first == "WITH" {
		words = scanWords(query, true)
	}
	switch first {
	case "WITH":
		for _, w := range words[1:] {
			switch k := verbs[strings.ToUpper(w)]; k {
			case Select, Insert, Update, Delete:
				return k
			}
		}
		return Unknown
	case "START":
		if len(words) > 1 && strings.EqualFold(words[1], "TRANSACTION") {
			return Begin
		}
		return Unknown
	case "ROLLBACK":
		// ROLLBACK TO SAVEPOINT keeps the transaction open.
		if len(words) > 1 && strings.EqualFold(words[1], "TO") {
			return Other
		}
		return Rollback
	}
	return verbs[first]
}

// HasReturning reports whether the statement carries a RETURNING clause.
func HasReturning(query string) bool {
	for _, w := range scanWords(query, true) {
		if strings.EqualFold(w, "RETURNING") {
			return true
		}
	}
	return false
}

// LooksLikeSQL reports whether text starts with an SQL verb written in
// upper case. Lower-case prose such as "select a job" does not qualify.
func LooksLikeSQL(text string) bool {
	words := scanWords(text, false)
	if len(words) == 0 {
		return false
	}
	w := words[0]
	if w != strings.ToUpper(w) {
		return false
	}
	_, ok := verbs[w]
	return ok || w == "WITH"
}

var clauseWords = map[string]bool{
	"WHERE": true, "SET": true, "VALUES": true, "FROM": true, "LIMIT": true, "OFFSET": true,
	"ORDER": true, "GROUP": true, "HAVING": true, "JOIN": true, "LIKE": true, "ILIKE": true,
	"BETWEEN": true, "RETURNING": true, "INTO": true,
}

// Conjunctions also show up in upper-case prose ("Save $5 OR more"), so
// one of them counts only next to a comparison or another keyword.
var weakWords = map[string]bool{
	"AND": true, "OR": true, "ON": true, "IN": true, "NOT": true,
}

// LooksLikeFragment reports whether text reads as a piece of a query
// assembled at run time, as in " AND status = $2" or " LIMIT $3". It
// needs an upper-case clause keyword, or an upper-case conjunction
// together with a comparison operator or a second keyword.
func LooksLikeFragment(text string) bool {
	weak := 0
	for _, w := range scanWords(text, false) {
		switch {
		case clauseWords[w]:
			return true
		case weakWords[w]:
			weak++
		}
	}
	return weak > 1 || (weak == 1 && hasComparison(text))
}

// hasComparison reports whether text holds =, <, > or != outside quotes
// and substitutions.
func hasComparison(text string) bool {
	for i := 0; i < len(text); {
		switch c := text[i]; {
		case c == '\\':
			i += 2
		case c == '\'' || c == '"' || c == '`':
			i = skipQuoted(text, i)
		case c == '$' && strings.HasPrefix(text[i:], "${"):
			i = skipBraces(text, i+2)
		case c == '=' || c == '<' || c == '>':
			return true
		case c == '!' && strings.HasPrefix(text[i:], "!="):
			return true
		default:
			i++
		}
	}
	return false
}

// Helper names the destination call shape.
type Helper int

// Destination helpers.
const (
	None Helper = iota // leave the call alone
	Get                // at most one row
	All                // every row
	Run                // result descriptor
)

func (h Helper) String() string {
	switch h {
	case Get:
		return "get"
	case All:
		return "all"
	case Run:
		return "run"
	default:
		return "none"
	}
}

// Shape picks the destination helper for a query of the given kind.
// singleRow is set when the caller only ever reads the first row.
func Shape(kind Kind, returning, singleRow bool) Helper {
	switch {
	case kind.IsTransactionControl():
		return None
	case returning && (kind == Insert || kind == Update || kind == Delete):
		return Run
	case singleRow && !kind.IsMutation():
		return Get
	case kind.IsMutation():
		return Run
	default:
		return All
	}
}

// scanWords returns the bare words of query that sit outside quotes and
// comments, in order. With topLevel set, words inside parentheses are
// skipped as well.
func scanWords(query string, topLevel bool) []string {
	var words []string
	depth := 0
	for i := 0; i < len(query); {
		c := query[i]
		switch {
		case c == '\\':
			// Escapes in the host language literal stand for the next byte.
			i++
		case c == '\'' || c == '"' || c == '`':
			i = skipQuoted(query, i)
		case c == '-' && strings.HasPrefix(query[i:], "--"):
			if nl := strings.IndexByte(query[i:], '\n'); nl >= 0 {
				i += nl + 1
			} else {
				i = len(query)
			}
		case c == '/' && strings.HasPrefix(query[i:], "/*"):
			if end := strings.Index(query[i+2:], "*/"); end >= 0 {
				i += end + 4
			} else {
				i = len(query)
			}
		case c == '$' && strings.HasPrefix(query[i:], "${"):
			i = skipBraces(query, i+2)
		case c == '(':
			depth++
			i++
		case c == ')':
			if depth > 0 {
				depth--
			}
			i++
		case isWordStart(c):
			j := i
			for j < len(query) && isWordPart(query[j]) {
				j++
			}
			if depth == 0 || !topLevel {
				words = append(words, query[i:j])
			}
			i = j
		case c == '$' || isDigit(c):
			// Placeholders and numbers are not words.
			j := i + 1
			for j < len(query) && isWordPart(query[j]) {
				j++
			}
			i = j
		default:
			i++
		}
	}
	return words
}

func skipQuoted(s string, i int) int {
	quote := s[i]
	for i++; i < len(s); i++ {
		switch s[i] {
		case quote:
			if quote == '\'' && i+1 < len(s) && s[i+1] == '\'' {
				i++
				continue
			}
			return i + 1
		}
	}
	return len(s)
}

func skipBraces(s string, i int) int {
	depth := 0
	for ; i < len(s); i++ {
		switch s[i] {
		case '{':
			depth++
		case '}':
			if depth == 0 {
				return i + 1
			}
			depth--
		}
	}
	return len(s)
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func isWordStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isWordPart(c byte) bool { return isWordStart(c) || isDigit(c) }
