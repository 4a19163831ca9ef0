package rules_test

import (
	"fmt"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/dialectshift/pkg/core"
	"github.com/leapstack-labs/dialectshift/pkg/rewrite"
)

const searchRoute = `const pool = require('../../db');

router.get('/search', async (req, res) => {
  const { q } = req.query;
  const result = await pool.query('SELECT * FROM jobs WHERE title ILIKE $1', [q]);
  res.json(result.rows);
});
`

const transferRoute = `router.post('/transfer', async (req, res) => {
  const { amount, from, to } = req.body;
  const client = await pool.connect();
  try {
    await client.query('BEGIN');
    await client.query('UPDATE accounts SET balance = balance - $1 WHERE id = $2', [amount, from]);
    await client.query('UPDATE accounts SET balance = balance + $1 WHERE id = $2', [amount, to]);
    await client.query('COMMIT');
    res.json({ ok: true });
  } catch (err) {
    await client.query('ROLLBACK');
    res.status(500).json({ error: err.message });
  } finally {
    client.release();
  }
});
`

const jobsRoute = `const pool = require('../../db');

router.get('/:id', async (req, res) => {
  const result = await pool.query('SELECT * FROM jobs WHERE id = $1', [req.params.id]);
  const job = result.rows[0];
  if (!job) return res.status(404).end();
  res.json(job);
});

router.post('/', async (req, res) => {
  const { title, company } = req.body;
  const result = await pool.query(
    'INSERT INTO jobs (title, company) VALUES ($1, $2) RETURNING *',
    [title, company]
  );
  const job = result.rows[0];
  res.status(201).json(job);
});

router.delete('/:id', async (req, res) => {
  const result = await pool.query('DELETE FROM jobs WHERE id = $1', [req.params.id]);
  if (result.rowCount === 0) return res.status(404).end();
  res.status(204).end();
});

router.get('/', async (req, res) => {
  const { status } = req.query;
  let query = 'SELECT * FROM jobs WHERE 1=1';
  const params = [];
  let paramIndex = 1;
  if (status) {
    query += ` + "` AND status = $${paramIndex}`" + `;
    params.push(status);
    paramIndex++;
  }
  const result = await pool.query(query, params);
  res.json({ jobs: result.rows, total: result.rowCount });
});
`

func TestPipeline_SearchScenario(t *testing.T) {
	out := convert(t, searchRoute)

	want := `const { get, run, all } = require('../db/connection');

router.get('/search', async (req, res) => {
  const { q } = req.query;
  const result = await all('SELECT * FROM jobs WHERE title LIKE ?', [q]);
  res.json(result);
});
`
	assert.Equal(t, want, out.Text)
	assert.NotContains(t, out.Text, "result.rows")

	ilike := findings(out, "DS07", core.SeverityWarning)
	require.Len(t, ilike, 1)
	assert.Equal(t, 5, ilike[0].Pos.Line)
	assert.Equal(t, []string{"DS01", "DS04", "DS05", "DS06", "DS07"}, out.Applied)
}

func TestPipeline_TransactionScenario(t *testing.T) {
	out := convert(t, transferRoute)

	want := `router.post('/transfer', async (req, res) => {
  const { amount, from, to } = req.body;
  try {
    await run('UPDATE accounts SET balance = balance - ? WHERE id = ?', [amount, from]);
    await run('UPDATE accounts SET balance = balance + ? WHERE id = ?', [amount, to]);
    res.json({ ok: true });
  } catch (err) {
    res.status(500).json({ error: err.message });
  }
});
`
	assert.Equal(t, want, out.Text)
	for _, gone := range []string{"BEGIN", "COMMIT", "ROLLBACK", "release", "connect"} {
		assert.NotContains(t, out.Text, gone)
	}

	tx := findings(out, "DS08", core.SeverityWarning)
	require.Len(t, tx, 1)
	assert.Contains(t, tx[0].Message, "2 queries")
	assert.Equal(t, 3, tx[0].Pos.Line)
}

func TestPipeline_JobsRoutes(t *testing.T) {
	out := convert(t, jobsRoute)

	want := `const { get, run, all } = require('../db/connection');

router.get('/:id', async (req, res) => {
  const job = await get('SELECT * FROM jobs WHERE id = ?', [req.params.id]);
  if (!job) return res.status(404).end();
  res.json(job);
});

router.post('/', async (req, res) => {
  const { title, company } = req.body;
  const job = await run(
    'INSERT INTO jobs (title, company) VALUES (?, ?) RETURNING *',
    [title, company]
  );
  res.status(201).json(job);
});

router.delete('/:id', async (req, res) => {
  const result = await run('DELETE FROM jobs WHERE id = ?', [req.params.id]);
  if (result.changes === 0) return res.status(404).end();
  res.status(204).end();
});

router.get('/', async (req, res) => {
  const { status } = req.query;
  let query = 'SELECT * FROM jobs WHERE 1=1';
  const params = [];
  if (status) {
    query += ` + "` AND status = ?`" + `;
    params.push(status);
  }
  const result = await all(query, params);
  res.json({ jobs: result, total: result.length });
});
`
	assert.Equal(t, want, out.Text)
	assert.Len(t, findings(out, "DS02", core.SeverityWarning), 1)
}

func TestPipeline_Idempotent(t *testing.T) {
	inputs := map[string]string{
		"search":   searchRoute,
		"transfer": transferRoute,
		"jobs":     jobsRoute,
		"mixed":    searchRoute + "\n" + transferRoute,
	}

	for name, src := range inputs {
		t.Run(name, func(t *testing.T) {
			once := convert(t, src)
			twice := convert(t, once.Text)
			assert.Equal(t, once.Text, twice.Text)
			assert.Empty(t, twice.Applied)
		})
	}
}

func TestPipeline_NoOp(t *testing.T) {
	inputs := []string{
		"",
		"module.exports = router;\n",
		"const { get, run, all } = require('../db/connection');\n\nrouter.get('/', async (req, res) => {\n  res.json(await all('SELECT * FROM jobs', []));\n});\n",
		"// pool.query('SELECT * FROM jobs WHERE title ILIKE $1')\nconst note = \"pool.connect()\";\n",
	}

	for _, src := range inputs {
		out := convert(t, src)
		assert.Equal(t, src, out.Text)
		assert.False(t, out.Changed())
		assert.Empty(t, out.Findings)
	}
}

func TestPipeline_ManyPlaceholders(t *testing.T) {
	var cols, marks []string
	for i := 1; i <= 12; i++ {
		cols = append(cols, "c"+strings.Repeat("x", i))
		marks = append(marks, "$"+strconv.Itoa(i))
	}
	src := "await pool.query('INSERT INTO t (" + strings.Join(cols, ", ") + ") VALUES (" +
		strings.Join(marks, ", ") + ")', params);\n"

	out := convert(t, src)
	assert.Contains(t, out.Text, "await run('INSERT INTO t (")
	assert.Contains(t, out.Text, "VALUES ("+strings.TrimSuffix(strings.Repeat("?, ", 12), ", ")+")")
	assert.NotContains(t, out.Text, "$")
}

func TestPipeline_DisabledRule(t *testing.T) {
	out := convertWith(t, searchRoute, func(o *rewrite.Options) {
		o.Disabled = []string{"ds07"}
	})
	assert.Contains(t, out.Text, "ILIKE ?")
	assert.Empty(t, findings(out, "DS07"))
}

func TestPipeline_SeverityOverride(t *testing.T) {
	out := convertWith(t, searchRoute, func(o *rewrite.Options) {
		o.SeverityOverrides = map[string]core.Severity{"DS07": core.SeverityError}
	})
	ilike := findings(out, "DS07")
	require.Len(t, ilike, 1)
	assert.Equal(t, core.SeverityError, ilike[0].Severity)
}

func TestPipeline_RejectsInvalidOptions(t *testing.T) {
	opts := rewrite.DefaultOptions()
	opts.Disabled = []string{"DS99"}
	_, err := rewrite.NewPipeline(opts)
	assert.Error(t, err)

	opts = rewrite.DefaultOptions()
	opts.Imports = []rewrite.ImportRewrite{{From: "require('db')", To: "require('db'); require('x')"}}
	_, err = rewrite.NewPipeline(opts)
	assert.Error(t, err)

	for _, id := range []string{"DS02", "DS07", "DS08"} {
		opts = rewrite.DefaultOptions()
		opts.SeverityOverrides = map[string]core.Severity{id: core.SeverityInfo}
		_, err = rewrite.NewPipeline(opts)
		assert.ErrorContains(t, err, id+" changes program behavior")
	}
}

func TestRegistry_Order(t *testing.T) {
	rules := rewrite.All()
	require.Len(t, rules, 9)
	for i, r := range rules {
		assert.Equal(t, fmt.Sprintf("DS%02d", i+1), r.ID)
		assert.NotEmpty(t, r.Description)
		assert.NotNil(t, r.Apply)
	}
	lossy, ok := rewrite.GetByID("ds07")
	require.True(t, ok)
	assert.True(t, lossy.Info().Lossy)
}
