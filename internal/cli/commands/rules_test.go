package commands

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/leapstack-labs/dialectshift/internal/cli/testutil"
	"github.com/leapstack-labs/dialectshift/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runRules(t *testing.T, args ...string) string {
	t.Helper()
	resetConfig(t)

	cmd := NewRulesCommand()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs(args)

	require.NoError(t, cmd.Execute())
	return buf.String()
}

func TestNewRulesCommand(t *testing.T) {
	cmd := NewRulesCommand()

	assert.Equal(t, "rules [rule-id]", cmd.Use)
	assert.NotEmpty(t, cmd.Short, "Short should not be empty")
	assert.NotEmpty(t, cmd.Example, "Example should not be empty")

	flags := []string{"group", "verbose", "format"}
	for _, flag := range flags {
		assert.NotNil(t, cmd.Flags().Lookup(flag), "flag %q should exist", flag)
	}
}

func TestRulesCommand_ListAll(t *testing.T) {
	// A buffer is not a terminal, so auto mode renders markdown.
	out := runRules(t)

	assert.Contains(t, out, "# Rewrite Rules")
	for _, id := range []string{"DS01", "DS02", "DS03", "DS04", "DS05", "DS06", "DS07", "DS08", "DS09"} {
		assert.Contains(t, out, id)
	}
	testutil.AssertNoANSI(t, out)
	testutil.AssertValidMarkdown(t, out)
}

func TestRulesCommand_FilterByGroup(t *testing.T) {
	tests := []struct {
		group   string
		want    []string
		notWant []string
	}{
		{group: "sql", want: []string{"DS06", "DS07", "DS09"}, notWant: []string{"DS01", "DS08"}},
		{group: "TRANSACTIONS", want: []string{"DS08"}, notWant: []string{"DS06"}},
		{group: "imports", want: []string{"DS01"}, notWant: []string{"DS04"}},
	}

	for _, tt := range tests {
		t.Run(tt.group, func(t *testing.T) {
			out := runRules(t, "--group", tt.group)
			for _, id := range tt.want {
				assert.Contains(t, out, id)
			}
			for _, id := range tt.notWant {
				assert.NotContains(t, out, id)
			}
		})
	}
}

func TestRulesCommand_JSON(t *testing.T) {
	out := runRules(t, "--format", "json")

	var result RulesJSONOutput
	require.NoError(t, json.Unmarshal([]byte(out), &result))

	assert.Equal(t, 9, result.Count.Total)
	assert.Len(t, result.Rules, 9)
	assert.Positive(t, result.Count.Lossy)
	assert.Equal(t, "DS01", result.Rules[0].ID)
	for i := 1; i < len(result.Rules); i++ {
		assert.Less(t, result.Rules[i-1].Order, result.Rules[i].Order, "rules should be listed in pipeline order")
	}
}

func TestRulesCommand_ShowSpecificRule(t *testing.T) {
	t.Run("markdown", func(t *testing.T) {
		out := runRules(t, "DS07")
		assert.Contains(t, out, "# DS07 - sql.ilike")
		assert.Contains(t, out, "## Before")
		assert.Contains(t, out, "```js")
		testutil.AssertValidMarkdown(t, out)
	})

	t.Run("json", func(t *testing.T) {
		out := runRules(t, "DS08", "-f", "json")

		var info core.RuleInfo
		require.NoError(t, json.Unmarshal([]byte(out), &info))
		assert.Equal(t, "DS08", info.ID)
		assert.Equal(t, "transactions", info.Group)
		assert.True(t, info.Lossy)
	})

	t.Run("text", func(t *testing.T) {
		out := runRules(t, "DS06", "-f", "text")
		assert.Contains(t, out, "DS06 - sql.placeholders")
		assert.Contains(t, out, "Description")
	})
}

func TestRulesCommand_UnknownRule(t *testing.T) {
	resetConfig(t)

	cmd := NewRulesCommand()
	cmd.SetOut(new(bytes.Buffer))
	cmd.SetErr(new(bytes.Buffer))
	cmd.SetArgs([]string{"DS99"})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), `rule "DS99" not found`)
}
