package commands

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/leapstack-labs/dialectshift/internal/cli/config"
	"github.com/leapstack-labs/dialectshift/internal/cli/output"
	"github.com/leapstack-labs/dialectshift/internal/cli/testutil"
	"github.com/leapstack-labs/dialectshift/internal/driver"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func resetConfig(t *testing.T) {
	t.Helper()
	config.ResetConfig()
	t.Cleanup(config.ResetConfig)
}

// loadProject writes dialectshift.yaml into a fresh routes project and
// loads it as the current configuration.
func loadProject(t *testing.T, yaml string) string {
	t.Helper()
	resetConfig(t)

	dir := testutil.SetupRoutesProject(t)
	path := filepath.Join(dir, config.ConfigFileName)
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0600))

	_, err := config.LoadConfig(path, nil)
	require.NoError(t, err)
	return dir
}

func runConvertJSON(t *testing.T, args ...string) output.ConvertOutput {
	t.Helper()

	cmd := NewConvertCommand()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(new(bytes.Buffer))
	cmd.SetArgs(args)
	require.NoError(t, cmd.Execute())

	var out output.ConvertOutput
	require.NoError(t, json.Unmarshal(buf.Bytes(), &out), buf.String())
	return out
}

func readRoute(t *testing.T, dir, name string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(dir, "server", "src", "routes", name))
	require.NoError(t, err)
	return string(data)
}

func TestConvertCommand_JSON(t *testing.T) {
	dir := loadProject(t, `output: json
files: [admin.js, email.js, jobs.js]
`)

	out := runConvertJSON(t)

	require.Len(t, out.Report.Files, 3)
	statuses := map[string]driver.Status{}
	for _, f := range out.Report.Files {
		statuses[f.Name] = f.Status
	}
	assert.Equal(t, driver.StatusConvertedWithWarnings, statuses["admin.js"])
	assert.Equal(t, driver.StatusSkipped, statuses["email.js"])
	assert.Equal(t, driver.StatusMissing, statuses["jobs.js"])

	assert.Equal(t, driver.Summary{ConvertedWithWarnings: 1, Skipped: 1, Missing: 1}, out.Summary)
	assert.NotEmpty(t, out.Report.RunID)

	admin := out.Report.Files[0]
	assert.True(t, admin.Written)
	assert.Contains(t, admin.Applied, "DS07")
	var ruleIDs []string
	for _, fd := range admin.Findings {
		ruleIDs = append(ruleIDs, fd.RuleID)
	}
	assert.Contains(t, ruleIDs, "DS07")

	assert.Equal(t, testutil.ConvertedSearchRoute, readRoute(t, dir, "admin.js"))
	assert.Equal(t, testutil.HealthRoute, readRoute(t, dir, "email.js"))
}

func TestConvertCommand_ArgsOverrideFiles(t *testing.T) {
	dir := loadProject(t, "output: json\n")

	out := runConvertJSON(t, "email.js", "*.ts")

	require.Len(t, out.Report.Files, 1)
	assert.Equal(t, "email.js", out.Report.Files[0].Name)
	assert.Equal(t, testutil.SearchRoute, readRoute(t, dir, "admin.js"))
}

func TestConvertCommand_DryRun(t *testing.T) {
	dir := loadProject(t, `output: json
dry_run: true
files: [admin.js]
`)

	out := runConvertJSON(t)

	require.Len(t, out.Report.Files, 1)
	assert.True(t, out.Report.DryRun)
	assert.False(t, out.Report.Files[0].Written)
	assert.Contains(t, out.Report.Files[0].Diff, "+  const result = await all('SELECT * FROM jobs WHERE title LIKE ?', [q]);")
	assert.Equal(t, testutil.SearchRoute, readRoute(t, dir, "admin.js"))
}

func TestConvertCommand_DisabledRule(t *testing.T) {
	dir := loadProject(t, `output: json
files: [admin.js]
rewrite:
  disabled: [DS07]
`)

	out := runConvertJSON(t)

	require.Len(t, out.Report.Files, 1)
	assert.True(t, out.Report.Files[0].Status.Changed())
	assert.NotContains(t, out.Report.Files[0].Applied, "DS07")
	assert.Contains(t, readRoute(t, dir, "admin.js"), "ILIKE ?")
}

func TestConvertCommand_Markdown(t *testing.T) {
	loadProject(t, `output: markdown
dry_run: true
files: [admin.js, email.js]
`)

	cmd := NewConvertCommand()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{})
	require.NoError(t, cmd.Execute())

	out := buf.String()
	assert.Contains(t, out, "# Conversion Report")
	assert.Contains(t, out, "| admin.js | converted-with-warnings |")
	assert.Contains(t, out, "```diff")
	testutil.AssertNoANSI(t, out)
	testutil.AssertValidMarkdown(t, out)
}

func TestConvertCommand_MissingRoutesDir(t *testing.T) {
	resetConfig(t)
	dir := t.TempDir()
	path := filepath.Join(dir, config.ConfigFileName)
	require.NoError(t, os.WriteFile(path, []byte("routes_dir: nowhere\n"), 0600))
	_, err := config.LoadConfig(path, nil)
	require.NoError(t, err)

	cmd := NewConvertCommand()
	cmd.SetOut(new(bytes.Buffer))
	cmd.SetErr(new(bytes.Buffer))
	cmd.SetArgs([]string{})

	err = cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "routes directory does not exist")
}
