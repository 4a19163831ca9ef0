package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateRulesDocs(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, generateRulesDocs(dir))

	data, err := os.ReadFile(filepath.Join(dir, "index.md"))
	require.NoError(t, err)
	doc := string(data)

	assert.True(t, strings.HasPrefix(doc, "---\ntitle: \"Rewrite Rules\""))
	assert.Contains(t, doc, "### DS06 - sql.placeholders {#ds06}")
	assert.Contains(t, doc, "## SQL {#sql}")
	assert.Equal(t, 1, strings.Count(doc, "## SQL {#sql}"), "groups are written once")
	assert.Zero(t, strings.Count(doc, "```")%2, "code fences are balanced")
}

func TestGenerateCLIDocs(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, generateCLIDocs(dir))

	for _, name := range []string{"index.md", "convert.md", "rules.md", "migrate.md", "init.md"} {
		assert.FileExists(t, filepath.Join(dir, name))
	}

	data, err := os.ReadFile(filepath.Join(dir, "convert.md"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "dialectshift convert [files...]")
	assert.Contains(t, string(data), "`--dry-run`")
}

func TestMarkdownWriter_Table(t *testing.T) {
	w := NewMarkdownWriter()
	w.Table([]string{"Option", "Description"}, [][]string{{"`--watch`", "Re-run on change"}})

	out := string(w.Bytes())
	assert.Contains(t, out, "| Option | Description |")
	assert.Contains(t, out, "| `--watch` | Re-run on change |")
}
