package commands

import (
	"fmt"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/leapstack-labs/dialectshift/internal/cli/output"
	"github.com/leapstack-labs/dialectshift/pkg/core"
	"github.com/leapstack-labs/dialectshift/pkg/rewrite"
	_ "github.com/leapstack-labs/dialectshift/pkg/rewrite/rules" // register rules
	"github.com/spf13/cobra"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// RulesOptions holds options for the rules command.
type RulesOptions struct {
	Group   string // Filter by group
	Verbose bool   // Show full documentation
	Format  string // Output format
}

// NewRulesCommand creates the rules command.
func NewRulesCommand() *cobra.Command {
	opts := &RulesOptions{}
	cmd := &cobra.Command{
		Use:   "rules [rule-id]",
		Short: "List the rewrite rules",
		Long: `List the rewrite rules in the order the pipeline applies them.

Rules marked lossy change program behavior in a way the destination
dialect cannot express; their findings are warnings that need review.

Output adapts to environment:
  - Terminal: Styled output with colors
  - Piped/Scripted: Markdown format
  - JSON: Machine-readable format`,
		Example: `  # List all rules
  dialectshift rules

  # Show details for a specific rule
  dialectshift rules DS08

  # List rules in the sql group with descriptions
  dialectshift rules --group sql -V

  # Output as JSON
  dialectshift rules --format json`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) > 0 {
				return showRule(cmd, args[0], opts)
			}
			return listRules(cmd, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Group, "group", "g", "", "Filter by group")
	cmd.Flags().BoolVarP(&opts.Verbose, "verbose", "V", false, "Show full documentation")
	cmd.Flags().StringVarP(&opts.Format, "format", "f", "", "Output format: text, json, markdown")

	return cmd
}

func rulesRenderer(cmd *cobra.Command, opts *RulesOptions) *output.Renderer {
	if opts.Format != "" {
		return newRenderer(cmd, opts.Format)
	}
	return NewCommandContext(cmd).Renderer
}

func listRules(cmd *cobra.Command, opts *RulesOptions) error {
	r := rulesRenderer(cmd, opts)

	var rules []core.RuleInfo
	for _, rule := range rewrite.All() {
		if opts.Group != "" && !strings.EqualFold(rule.Group, opts.Group) {
			continue
		}
		rules = append(rules, rule.Info())
	}

	switch r.EffectiveMode() {
	case output.ModeJSON:
		return listRulesJSON(r, rules)
	case output.ModeMarkdown:
		return listRulesMarkdown(r, rules, opts.Verbose)
	default:
		return listRulesText(r, rules, opts.Verbose)
	}
}

func showRule(cmd *cobra.Command, ruleID string, opts *RulesOptions) error {
	r := rulesRenderer(cmd, opts)

	rule, ok := rewrite.GetByID(ruleID)
	if !ok {
		return fmt.Errorf("rule %q not found", ruleID)
	}
	info := rule.Info()

	switch r.EffectiveMode() {
	case output.ModeJSON:
		return r.JSON(info)
	case output.ModeMarkdown:
		return showRuleMarkdown(r, &info)
	default:
		return showRuleText(r, &info)
	}
}

func rulesTable(rules []core.RuleInfo, verbose bool) table.Writer {
	titleCaser := cases.Title(language.English)

	t := table.NewWriter()
	t.SetStyle(table.StyleLight)
	header := table.Row{"ID", "Name", "Group", "Severity", "Lossy"}
	if verbose {
		header = append(header, "Description")
	}
	t.AppendHeader(header)

	for _, rule := range rules {
		lossy := ""
		if rule.Lossy {
			lossy = "yes"
		}
		row := table.Row{rule.ID, rule.Name, titleCaser.String(rule.Group), rule.DefaultSeverity, lossy}
		if verbose {
			row = append(row, rule.Description)
		}
		t.AppendRow(row)
	}
	return t
}

// listRulesText outputs rules in styled text format.
func listRulesText(r *output.Renderer, rules []core.RuleInfo, verbose bool) error {
	styles := r.Styles()

	r.Println("")
	r.Println(styles.Header1.Render(fmt.Sprintf("Rewrite Rules (%d)", len(rules))))
	r.Println("")
	r.Println(rulesTable(rules, verbose).Render())
	r.Println("")
	r.Println(styles.Muted.Render("Use 'dialectshift rules <rule-id>' for detailed documentation"))
	r.Println("")

	return nil
}

// listRulesMarkdown outputs rules in markdown format.
func listRulesMarkdown(r *output.Renderer, rules []core.RuleInfo, verbose bool) error {
	r.Println("# Rewrite Rules")
	r.Println("")
	r.Println(rulesTable(rules, verbose).RenderMarkdown())
	r.Println("")
	return nil
}

// RulesJSONOutput is the JSON output structure for rules listing.
type RulesJSONOutput struct {
	Rules []core.RuleInfo `json:"rules"`
	Count struct {
		Lossy int `json:"lossy"`
		Total int `json:"total"`
	} `json:"count"`
}

// listRulesJSON outputs rules in JSON format.
func listRulesJSON(r *output.Renderer, rules []core.RuleInfo) error {
	jsonOutput := RulesJSONOutput{Rules: rules}
	if jsonOutput.Rules == nil {
		jsonOutput.Rules = []core.RuleInfo{}
	}
	for _, rule := range rules {
		if rule.Lossy {
			jsonOutput.Count.Lossy++
		}
	}
	jsonOutput.Count.Total = len(rules)
	return r.JSON(jsonOutput)
}

// showRuleText displays detailed rule info in text format.
func showRuleText(r *output.Renderer, rule *core.RuleInfo) error {
	styles := r.Styles()

	r.Println("")
	r.Println(styles.Header1.Render(fmt.Sprintf("%s - %s", rule.ID, rule.Name)))
	r.Println("")

	r.Printf("  %s: %s\n", styles.Bold.Render("Group"), rule.Group)
	r.Printf("  %s: %s\n", styles.Bold.Render("Severity"), styles.Severity(rule.DefaultSeverity).Render(rule.DefaultSeverity.String()))
	r.Printf("  %s: %d\n", styles.Bold.Render("Order"), rule.Order)
	if rule.Lossy {
		r.Printf("  %s: %s\n", styles.Bold.Render("Lossy"), styles.Warning.Render("yes"))
	}
	r.Println("")

	r.Println(styles.Bold.Render("Description"))
	r.Println("  " + rule.Description)
	r.Println("")

	if rule.Rationale != "" {
		r.Println(styles.Bold.Render("Why This Matters"))
		r.Println("  " + rule.Rationale)
		r.Println("")
	}

	if rule.Before != "" {
		r.Println(styles.Bold.Render("Before"))
		for _, line := range strings.Split(rule.Before, "\n") {
			r.Println(styles.Muted.Render("  " + line))
		}
		r.Println("")
	}

	if rule.After != "" {
		r.Println(styles.Bold.Render("After"))
		for _, line := range strings.Split(rule.After, "\n") {
			r.Println(styles.Success.Render("  " + line))
		}
		r.Println("")
	}

	return nil
}

// showRuleMarkdown displays detailed rule info in markdown format.
func showRuleMarkdown(r *output.Renderer, rule *core.RuleInfo) error {
	r.Printf("# %s - %s\n\n", rule.ID, rule.Name)
	r.Printf("**Group:** %s | **Severity:** `%s` | **Lossy:** %t\n\n", rule.Group, rule.DefaultSeverity, rule.Lossy)
	r.Println(rule.Description)
	r.Println("")

	if rule.Rationale != "" {
		r.Println("## Why This Matters")
		r.Println("")
		r.Println(rule.Rationale)
		r.Println("")
	}

	if rule.Before != "" {
		r.Println("## Before")
		r.Println("")
		r.Println("```js")
		r.Println(rule.Before)
		r.Println("```")
		r.Println("")
	}

	if rule.After != "" {
		r.Println("## After")
		r.Println("")
		r.Println("```js")
		r.Println(rule.After)
		r.Println("```")
		r.Println("")
	}

	return nil
}
