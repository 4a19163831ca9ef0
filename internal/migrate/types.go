// Package migrate copies tables and rows from a SQLite database into
// PostgreSQL.
//
// It is a one-shot copy: every selected table is dropped and recreated on
// the destination, then filled with batched inserts. Column types follow a
// fixed mapping and day-first date strings are rewritten to ISO form on the
// way through.
package migrate

import (
	"strings"
	"time"
)

// MapColumnType maps a declared SQLite column type to a PostgreSQL type.
// The tests are substring matches on the upper-cased declaration, applied
// in order, so "DATETIME" is a TIMESTAMP and "POINT" is an INTEGER.
func MapColumnType(decl string) string {
	t := strings.ToUpper(decl)
	switch {
	case strings.Contains(t, "INT"):
		return "INTEGER"
	case strings.Contains(t, "CHAR"), strings.Contains(t, "TEXT"):
		return "TEXT"
	case strings.Contains(t, "DATE"), strings.Contains(t, "TIME"):
		return "TIMESTAMP"
	case strings.Contains(t, "REAL"), strings.Contains(t, "FLOAT"):
		return "DOUBLE PRECISION"
	default:
		return "TEXT"
	}
}

const (
	dayFirstLayout = "2/1/2006"
	isoDateLayout  = "2006-01-02"
)

// NormalizeDate rewrites a day-first date string such as "18/11/2025" to
// "2025-11-18". Any other value, including strings that are not valid
// dates, is returned unchanged.
func NormalizeDate(v any) any {
	s, ok := v.(string)
	if !ok || strings.Count(s, "/") != 2 {
		return v
	}
	d, err := time.Parse(dayFirstLayout, s)
	if err != nil {
		return v
	}
	return d.Format(isoDateLayout)
}

// quoteIdent quotes a table or column name for either database.
func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// Column is a source column and its destination type.
type Column struct {
	Name     string `json:"name"`
	Declared string `json:"declared"`
	Type     string `json:"type"`
}

// TableSummary reports the copy of one table.
type TableSummary struct {
	Name    string   `json:"name"`
	Columns []Column `json:"columns"`
	Rows    int      `json:"rows"`
}

// Summary reports a whole migration.
type Summary struct {
	Tables   []TableSummary `json:"tables"`
	Duration time.Duration  `json:"duration_ns"`
}

// Rows returns the number of rows copied across all tables.
func (s *Summary) Rows() int {
	n := 0
	for _, t := range s.Tables {
		n += t.Rows
	}
	return n
}
