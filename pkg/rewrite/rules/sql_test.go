package rules_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/dialectshift/pkg/core"
)

func TestDS06_Placeholders(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{
			name: "helper argument",
			src:  `await get("SELECT * FROM t WHERE a = $1 AND b = $2", [a, b]);`,
			want: `await get("SELECT * FROM t WHERE a = ? AND b = ?", [a, b]);`,
		},
		{
			name: "template with substitution",
			src:  "await all(`SELECT ${cols} FROM t WHERE a = $1`, [x]);",
			want: "await all(`SELECT ${cols} FROM t WHERE a = ?`, [x]);",
		},
		{
			name: "lower-case query passed to a helper",
			src:  "await all('select * from t where a = $1', [x]);",
			want: "await all('select * from t where a = ?', [x]);",
		},
		{
			name: "query held in a variable",
			src:  "const sql = 'UPDATE t SET a = $1 WHERE id = $2';",
			want: "const sql = 'UPDATE t SET a = ? WHERE id = ?';",
		},
		{
			name: "query fragment",
			src:  "query += ' AND status = $2';",
			want: "query += ' AND status = ?';",
		},
		{
			name: "prose is left alone",
			src:  "const price = 'Total: $1';",
			want: "const price = 'Total: $1';",
		},
		{
			name: "prose with an upper-case conjunction is left alone",
			src:  "const promo = 'Save $5 OR more';",
			want: "const promo = 'Save $5 OR more';",
		},
		{
			name: "conjunction with a comparison",
			src:  "query += ' OR owner = $3';",
			want: "query += ' OR owner = ?';",
		},
		{
			name: "pending source call is left alone",
			src:  "const { rows } = await pool.query('SELECT * FROM t WHERE a = $1', [x]);",
			want: "const { rows } = await pool.query('SELECT * FROM t WHERE a = $1', [x]);",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := only(t, "DS06", tt.src)
			assert.Equal(t, tt.want, out.Text)
			assert.Empty(t, out.Findings)
		})
	}
}

func TestDS06_Issues(t *testing.T) {
	src := "await all('SELECT * FROM t WHERE a = $1 OR b = $1', [x]);\nawait run('INSERT INTO t (a, b) VALUES ($2, $1)', [b, a]);\n"

	out := only(t, "DS06", src)
	assert.Equal(t, src, out.Text)

	warns := findings(out, "DS06", core.SeverityWarning)
	require.Len(t, warns, 2)
	assert.Contains(t, warns[0].Message, "$1 is bound more than once")
	assert.Equal(t, 1, warns[0].Pos.Line)
	assert.Contains(t, warns[1].Message, "$1 appears after a higher ordinal")
	assert.Equal(t, 2, warns[1].Pos.Line)
}

func TestDS07_ILike(t *testing.T) {
	tests := []struct {
		name  string
		src   string
		want  string
		warns int
	}{
		{
			name:  "upper case",
			src:   "await all('SELECT * FROM t WHERE a ILIKE ?', [q]);",
			want:  "await all('SELECT * FROM t WHERE a LIKE ?', [q]);",
			warns: 1,
		},
		{
			name:  "lower case keeps its spelling",
			src:   "await all('select * from t where name ilike ?', [q]);",
			want:  "await all('select * from t where name like ?', [q]);",
			warns: 1,
		},
		{
			name:  "quoted text is kept",
			src:   `await all("SELECT * FROM t WHERE note = 'ILIKE' OR a ILIKE ?", [q]);`,
			want:  `await all("SELECT * FROM t WHERE note = 'ILIKE' OR a LIKE ?", [q]);`,
			warns: 1,
		},
		{
			name:  "several occurrences",
			src:   "await all('SELECT * FROM t WHERE a ILIKE ? AND b NOT ILIKE ?', [x, y]);",
			want:  "await all('SELECT * FROM t WHERE a LIKE ? AND b NOT LIKE ?', [x, y]);",
			warns: 2,
		},
		{
			name: "identifier containing the keyword",
			src:  "await all('SELECT ilike_count FROM t', []);",
			want: "await all('SELECT ilike_count FROM t', []);",
		},
		{
			name: "code outside literals",
			src:  "const ILIKE = 1;",
			want: "const ILIKE = 1;",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := only(t, "DS07", tt.src)
			assert.Equal(t, tt.want, out.Text)
			assert.Len(t, findings(out, "DS07", core.SeverityWarning), tt.warns)
		})
	}
}

func TestDS09_Counters(t *testing.T) {
	tests := []struct {
		name  string
		src   string
		want  string
		warns int
	}{
		{
			name: "template counter",
			src: "let n = 3;\n" +
				"q += ` AND a = $${n}`;\n" +
				"++n;\n" +
				"q += ` AND b = $${n}`;\n" +
				"n += 1;\n",
			want: "q += ` AND a = ?`;\n" +
				"q += ` AND b = ?`;\n",
		},
		{
			name: "concatenated counter",
			src: "let idx = 1;\n" +
				"if (a) {\n" +
				"  q += ' AND a = $' + idx++;\n" +
				"  params.push(a);\n" +
				"}\n",
			want: "if (a) {\n" +
				"  q += ' AND a = ?';\n" +
				"  params.push(a);\n" +
				"}\n",
		},
		{
			name: "counter still read elsewhere",
			src: "let i = 1;\n" +
				"q += ` AND a = $${i++}`;\n" +
				"q += ` LIMIT $${i}`;\n" +
				"console.log(i);\n",
			want: "let i = 1;\n" +
				"q += ` AND a = $${i++}`;\n" +
				"q += ` LIMIT $${i}`;\n" +
				"console.log(i);\n",
			warns: 1,
		},
		{
			name: "currency template is not a counter use",
			src: "let total = 0;\n" +
				"for (const it of items) { total += it.price; }\n" +
				"res.send(`Order total: $${total}`);\n",
			want: "let total = 0;\n" +
				"for (const it of items) { total += it.price; }\n" +
				"res.send(`Order total: $${total}`);\n",
		},
		{
			name: "price beside a query counter",
			src: "let n = 1;\n" +
				"q += ` AND a = $${n}`;\n" +
				"n++;\n" +
				"msg = `Charged $${n}`;\n",
			want: "let n = 1;\n" +
				"q += ` AND a = $${n}`;\n" +
				"n++;\n" +
				"msg = `Charged $${n}`;\n",
			warns: 1,
		},
		{
			name: "increment sharing a line",
			src: "let i = 1;\n" +
				"if (b) { q += ` AND b = $${i}`; params.push(b); i++; }\n",
			want: "if (b) { q += ` AND b = ?`; params.push(b); }\n",
		},
		{
			name: "plain counter",
			src:  "let count = 0;\ncount++;\n",
			want: "let count = 0;\ncount++;\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := only(t, "DS09", tt.src)
			assert.Equal(t, tt.want, out.Text)
			assert.Len(t, findings(out, "DS09", core.SeverityWarning), tt.warns)
		})
	}
}
