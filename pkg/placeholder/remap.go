package placeholder

import (
	"fmt"
	"strconv"
	"strings"
)

// Marker is the positional marker used by the destination dialect.
const Marker = "?"

// Placeholder is one numbered bind parameter found in a literal body.
type Placeholder struct {
	Ordinal int
	Start   int // byte offset of '$'
	End     int // byte offset one past the last digit
}

// IssueKind classifies a placeholder sequence that positional markers
// cannot express.
type IssueKind int

// Issue kinds.
const (
	// IssueReused means an ordinal appears more than once.
	IssueReused IssueKind = iota
	// IssueOutOfOrder means ordinals do not ascend left to right.
	IssueOutOfOrder
	// IssueGap means the ordinals do not cover 1..N.
	IssueGap
)

func (k IssueKind) String() string {
	switch k {
	case IssueReused:
		return "reused"
	case IssueOutOfOrder:
		return "out-of-order"
	case IssueGap:
		return "gap"
	default:
		return "unknown"
	}
}

// Issue describes why a literal was not remapped.
type Issue struct {
	Kind    IssueKind
	Ordinal int
}

func (i Issue) String() string {
	switch i.Kind {
	case IssueReused:
		return fmt.Sprintf("$%d is bound more than once", i.Ordinal)
	case IssueOutOfOrder:
		return fmt.Sprintf("$%d appears after a higher ordinal", i.Ordinal)
	case IssueGap:
		return fmt.Sprintf("$%d is never referenced", i.Ordinal)
	default:
		return fmt.Sprintf("$%d: %s", i.Ordinal, i.Kind)
	}
}

// Result is the outcome of remapping one literal.
type Result struct {
	Text     string // remapped text, or the input when Issues is not empty
	Ordinals []int  // ordinals in left-to-right order
	Distinct int    // number of distinct ordinals
	Issues   []Issue
}

// Changed reports whether the remapped text differs from the input.
func (r Result) Changed() bool {
	return len(r.Issues) == 0 && len(r.Ordinals) > 0
}

// Remap replaces every $k in literal with marker. Replacement runs from
// the highest ordinal down to 1 so that $1 can never match inside $10.
// A literal whose ordinals are not exactly 1..N in ascending order is
// returned unchanged together with the issues found.
func Remap(literal, marker string) Result {
	return remap(literal, marker, false)
}

// RemapFragment is Remap for a piece of a query assembled at run time,
// such as " AND status = $3". Its ordinals must ascend without reuse but
// need not start at 1 or be contiguous.
func RemapFragment(literal, marker string) Result {
	return remap(literal, marker, true)
}

func remap(literal, marker string, fragment bool) Result {
	found := Find(literal)
	res := Result{Text: literal}
	if len(found) == 0 {
		return res
	}

	seen := make(map[int]bool, len(found))
	maxOrdinal, prev := 0, 0
	for _, p := range found {
		res.Ordinals = append(res.Ordinals, p.Ordinal)
		if seen[p.Ordinal] {
			res.Issues = append(res.Issues, Issue{Kind: IssueReused, Ordinal: p.Ordinal})
		} else if p.Ordinal < prev {
			res.Issues = append(res.Issues, Issue{Kind: IssueOutOfOrder, Ordinal: p.Ordinal})
		}
		seen[p.Ordinal] = true
		prev = max(prev, p.Ordinal)
		maxOrdinal = max(maxOrdinal, p.Ordinal)
	}
	res.Distinct = len(seen)
	for k := 1; k <= maxOrdinal && !fragment; k++ {
		if !seen[k] {
			res.Issues = append(res.Issues, Issue{Kind: IssueGap, Ordinal: k})
		}
	}
	if len(res.Issues) > 0 {
		return res
	}

	text := literal
	for k := maxOrdinal; k >= 1; k-- {
		text = replaceOrdinal(text, k, marker)
	}
	res.Text = text
	return res
}

// replaceOrdinal substitutes marker for every placeholder numbered k.
func replaceOrdinal(text string, k int, marker string) string {
	var b strings.Builder
	last := 0
	for _, p := range Find(text) {
		if p.Ordinal != k {
			continue
		}
		b.WriteString(text[last:p.Start])
		b.WriteString(marker)
		last = p.End
	}
	if last == 0 {
		return text
	}
	b.WriteString(text[last:])
	return b.String()
}

// Find returns the numbered placeholders of a literal body in source order.
// Text inside SQL quotes and inside ${...} substitutions is ignored, as is
// a '$' glued to a preceding identifier character.
func Find(body string) []Placeholder {
	var out []Placeholder
	inSingle, inDouble := false, false

	for i := 0; i < len(body); i++ {
		ch := body[i]
		if ch == '\\' {
			// An escape stands for the character after it.
			i++
			if i >= len(body) || body[i] == '\\' {
				continue
			}
			ch = body[i]
		}

		switch {
		case ch == '\'' && !inDouble:
			inSingle = !inSingle
		case ch == '"' && !inSingle:
			inDouble = !inDouble
		case inSingle || inDouble:
		case ch == '$' && i+1 < len(body) && body[i+1] == '{':
			i = skipSubstitution(body, i+2) - 1
		case ch == '$' && i+1 < len(body) && isDigit(body[i+1]):
			if i > 0 && isWordByte(body[i-1]) {
				continue
			}
			j := i + 1
			for j < len(body) && isDigit(body[j]) {
				j++
			}
			n, err := strconv.Atoi(body[i+1 : j])
			if err == nil && n > 0 {
				out = append(out, Placeholder{Ordinal: n, Start: i, End: j})
			}
			i = j - 1
		}
	}
	return out
}

// skipSubstitution returns the offset just past the '}' closing a
// template substitution whose body starts at i.
func skipSubstitution(body string, i int) int {
	depth := 0
	var quote byte
	for ; i < len(body); i++ {
		c := body[i]
		switch {
		case quote != 0:
			if c == '\\' {
				i++
			} else if c == quote {
				quote = 0
			}
		case c == '\'' || c == '"' || c == '`':
			quote = c
		case c == '{':
			depth++
		case c == '}':
			if depth == 0 {
				return i + 1
			}
			depth--
		}
	}
	return len(body)
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func isWordByte(c byte) bool {
	return c == '_' || isDigit(c) || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}
