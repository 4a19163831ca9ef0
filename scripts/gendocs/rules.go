package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/leapstack-labs/dialectshift/pkg/core"
	"github.com/leapstack-labs/dialectshift/pkg/rewrite"
	_ "github.com/leapstack-labs/dialectshift/pkg/rewrite/rules"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// groupDescriptions introduces each rule group.
var groupDescriptions = map[string]string{
	"imports":      "Rules that swap the database module for the helper functions.",
	"calls":        "Rules that route pool.query calls to get, run or all.",
	"results":      "Rules that adapt code reading the pg result object.",
	"sql":          "Rules that rewrite the SQL text inside query literals.",
	"transactions": "Rules that remove pooled-client transaction scaffolding.",
}

// generateRulesDocs writes the rules overview and one section per rule.
func generateRulesDocs(outDir string) error {
	log.Printf("Generating rules docs to %s", outDir)

	if err := os.MkdirAll(outDir, 0750); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	var infos []core.RuleInfo
	for _, r := range rewrite.All() {
		infos = append(infos, r.Info())
	}

	w := NewMarkdownWriter()
	w.Frontmatter("Rewrite Rules", "The rewrite rules applied by dialectshift convert")
	w.GeneratedMarker()

	w.Header(1, "Rewrite Rules")
	w.Paragraph(fmt.Sprintf("dialectshift applies **%d rules** to every file, in the order below. "+
		"Each rule sees the output of the previous one.", len(infos)))

	rows := make([][]string, 0, len(infos))
	for _, info := range infos {
		lossy := ""
		if info.Lossy {
			lossy = "yes"
		}
		link := fmt.Sprintf("[%s](#%s)", info.ID, strings.ToLower(info.ID))
		rows = append(rows, []string{link, InlineCode(info.Name), info.DefaultSeverity.String(), lossy})
	}
	w.Table([]string{"Rule", "Name", "Severity", "Lossy"}, rows)

	w.Header(2, "Configuration")
	w.Paragraph("Rules can be disabled and their severities overridden in `dialectshift.yaml`:")
	w.CodeBlock("yaml", `rewrite:
  disabled: [DS07]     # keep ILIKE as written
  severity:
    DS08: error        # fail review on removed transactions`)

	// Groups appear in the order of their first rule.
	var groups []string
	byGroup := make(map[string][]core.RuleInfo)
	for _, info := range infos {
		if _, seen := byGroup[info.Group]; !seen {
			groups = append(groups, info.Group)
		}
		byGroup[info.Group] = append(byGroup[info.Group], info)
	}

	titleCaser := cases.Title(language.English)
	for _, group := range groups {
		title := titleCaser.String(group)
		if group == "sql" {
			title = "SQL"
		}
		w.Line(fmt.Sprintf("## %s {#%s}", title, group))
		w.Newline()
		if desc, ok := groupDescriptions[group]; ok {
			w.Paragraph(desc)
		}
		for _, info := range byGroup[group] {
			writeRuleDoc(w, &info)
		}
	}

	if err := os.WriteFile(filepath.Join(outDir, "index.md"), w.Bytes(), 0600); err != nil {
		return err
	}
	log.Printf("  Generated index.md")
	return nil
}

// writeRuleDoc writes detailed documentation for a single rule.
func writeRuleDoc(w *MarkdownWriter, info *core.RuleInfo) {
	w.Line(fmt.Sprintf("### %s - %s {#%s}", info.ID, info.Name, strings.ToLower(info.ID)))
	w.Newline()

	badge := "**Severity:** " + InlineCode(info.DefaultSeverity.String())
	if info.Lossy {
		badge += " | **Lossy**"
	}
	w.Line(badge)
	w.Newline()

	w.Paragraph(cleanDescription(info.Description))

	if info.Rationale != "" {
		w.Header(4, "Why This Matters")
		w.Paragraph(info.Rationale)
	}
	if info.Before != "" {
		w.Header(4, "Before")
		w.CodeBlock("js", info.Before)
	}
	if info.After != "" {
		w.Header(4, "After")
		w.CodeBlock("js", info.After)
	}

	w.Line("---")
	w.Newline()
}
