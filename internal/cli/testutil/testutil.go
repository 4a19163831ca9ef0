// Package testutil provides test utilities for CLI testing.
package testutil

import (
	"bytes"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/leapstack-labs/dialectshift/internal/cli/output"
)

// SearchRoute is a route file written against the pg pool.
const SearchRoute = `const pool = require('../../db');

router.get('/search', async (req, res) => {
  const { q } = req.query;
  const result = await pool.query('SELECT * FROM jobs WHERE title ILIKE $1', [q]);
  res.json(result.rows);
});
`

// ConvertedSearchRoute is SearchRoute after conversion.
const ConvertedSearchRoute = `const { get, run, all } = require('../db/connection');

router.get('/search', async (req, res) => {
  const { q } = req.query;
  const result = await all('SELECT * FROM jobs WHERE title LIKE ?', [q]);
  res.json(result);
});
`

// HealthRoute is a route file with nothing to convert.
const HealthRoute = `const express = require('express');
const router = express.Router();

router.get('/health', (req, res) => res.json({ ok: true }));

module.exports = router;
`

// SetupRoutesProject creates a temporary project with a routes directory
// holding admin.js (convertible) and email.js (nothing to convert), and
// returns the project directory.
func SetupRoutesProject(t *testing.T) string {
	t.Helper()

	tmpDir := t.TempDir()
	routes := filepath.Join(tmpDir, "server", "src", "routes")
	if err := os.MkdirAll(routes, 0755); err != nil {
		t.Fatalf("failed to create directory %s: %v", routes, err)
	}

	files := map[string]string{
		"admin.js": SearchRoute,
		"email.js": HealthRoute,
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(routes, name), []byte(content), 0644); err != nil {
			t.Fatalf("failed to write %s: %v", name, err)
		}
	}
	return tmpDir
}

// TestRenderer wraps a Renderer with captured output buffers.
type TestRenderer struct {
	*output.Renderer
	Out    *bytes.Buffer
	ErrOut *bytes.Buffer
}

// NewTestRenderer creates a renderer writing to buffers.
func NewTestRenderer(mode output.Mode, isTTY bool) *TestRenderer {
	out := &bytes.Buffer{}
	errOut := &bytes.Buffer{}
	return &TestRenderer{
		Renderer: output.NewRendererWithTTY(out, errOut, isTTY, mode),
		Out:      out,
		ErrOut:   errOut,
	}
}

// Output returns the stdout output as a string.
func (tr *TestRenderer) Output() string {
	return tr.Out.String()
}

// ErrorOutput returns the stderr output as a string.
func (tr *TestRenderer) ErrorOutput() string {
	return tr.ErrOut.String()
}

// ansiPattern matches ANSI escape codes.
var ansiPattern = regexp.MustCompile(`\x1b\[[0-9;]*[a-zA-Z]`)

// AssertNoANSI checks that a string contains no ANSI escape codes.
func AssertNoANSI(t *testing.T, s string) {
	t.Helper()
	if ansiPattern.MatchString(s) {
		t.Errorf("string contains ANSI escape codes: %q", s)
	}
}

// AssertValidMarkdown performs basic markdown validation.
// It checks for unclosed code fences and empty headers.
func AssertValidMarkdown(t *testing.T, md string) {
	t.Helper()

	fenceCount := strings.Count(md, "```")
	if fenceCount%2 != 0 {
		t.Errorf("unbalanced code fences in markdown: found %d occurrences", fenceCount)
	}

	for i, line := range strings.Split(md, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "#") && strings.TrimLeft(trimmed, "# ") == "" {
			t.Errorf("empty header at line %d: %q", i+1, line)
		}
	}
}
