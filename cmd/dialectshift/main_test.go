// Package main provides tests for the dialectshift CLI.
package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/leapstack-labs/dialectshift/internal/cli"
	"github.com/leapstack-labs/dialectshift/internal/cli/config"
	"github.com/leapstack-labs/dialectshift/internal/cli/output"
	"github.com/leapstack-labs/dialectshift/internal/cli/testutil"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	config.ResetConfig()
	t.Cleanup(config.ResetConfig)

	cmd := cli.NewRootCmd()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs(args)

	err := cmd.Execute()
	return buf.String(), err
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "version")
	if err != nil {
		t.Errorf("version command error = %v", err)
	}
	if !strings.Contains(out, "dialectshift v") {
		t.Errorf("version output should contain 'dialectshift v', got: %s", out)
	}
}

func TestHelpCommand(t *testing.T) {
	out, err := execute(t, "--help")
	if err != nil {
		t.Errorf("help command error = %v", err)
	}

	for _, expected := range []string{"convert", "rules", "migrate", "init", "completion"} {
		if !strings.Contains(out, expected) {
			t.Errorf("help output should contain '%s', got: %s", expected, out)
		}
	}
}

func TestConvertCommand(t *testing.T) {
	project := testutil.SetupRoutesProject(t)
	t.Chdir(project)
	routes := filepath.Join("server", "src", "routes")

	out, err := execute(t, "convert", "--routes-dir", routes, "-o", "json", "admin.js", "email.js")
	if err != nil {
		t.Fatalf("convert command error = %v\n%s", err, out)
	}

	var result output.ConvertOutput
	if err := json.Unmarshal([]byte(out), &result); err != nil {
		t.Fatalf("convert output is not JSON: %v\n%s", err, out)
	}
	if result.Summary.Updated() != 1 {
		t.Errorf("expected 1 updated file, got %+v", result.Summary)
	}

	got, err := os.ReadFile(filepath.Join(routes, "admin.js"))
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != testutil.ConvertedSearchRoute {
		t.Errorf("admin.js not converted as expected, got:\n%s", got)
	}

	// A second run finds nothing left to do.
	out, err = execute(t, "convert", "--routes-dir", routes, "-o", "json", "admin.js")
	if err != nil {
		t.Fatalf("second convert error = %v", err)
	}
	result = output.ConvertOutput{}
	if err := json.Unmarshal([]byte(out), &result); err != nil {
		t.Fatalf("convert output is not JSON: %v\n%s", err, out)
	}
	if result.Summary.Skipped != 1 || result.Summary.Updated() != 0 {
		t.Errorf("second run should skip admin.js, got %+v", result.Summary)
	}
}

func TestConvertCommand_DryRunFlag(t *testing.T) {
	project := testutil.SetupRoutesProject(t)
	t.Chdir(project)

	out, err := execute(t, "convert", "--dry-run", "--routes-dir", "server/src/routes", "-o", "markdown", "admin.js")
	if err != nil {
		t.Fatalf("convert command error = %v\n%s", err, out)
	}
	if !strings.Contains(out, "```diff") {
		t.Errorf("dry run should print a diff, got:\n%s", out)
	}

	got, _ := os.ReadFile(filepath.Join(project, "server", "src", "routes", "admin.js"))
	if string(got) != testutil.SearchRoute {
		t.Errorf("dry run must not write admin.js")
	}
}

func TestConvertCommand_InvalidOutput(t *testing.T) {
	t.Chdir(t.TempDir())

	_, err := execute(t, "convert", "-o", "html")
	if err == nil {
		t.Fatal("expected an error for an unknown output format")
	}
}

func TestInitCommand(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	if _, err := execute(t, "init"); err != nil {
		t.Fatalf("init command error = %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, config.ConfigFileName)); err != nil {
		t.Errorf("expected %s to be written: %v", config.ConfigFileName, err)
	}
}
