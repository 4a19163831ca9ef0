package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/leapstack-labs/dialectshift/internal/cli"
	"github.com/leapstack-labs/dialectshift/internal/cli/config"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// envVars documents the environment overrides most often used in CI.
var envVars = [][]string{
	{"DIALECTSHIFT_ROUTES_DIR", "Directory the target files are relative to"},
	{"DIALECTSHIFT_FILES", "Comma-separated files or glob patterns to convert"},
	{"DIALECTSHIFT_REWRITE__DISABLED", "Comma-separated rule IDs to skip"},
	{"DIALECTSHIFT_MIGRATE__POSTGRES", "Destination PostgreSQL DSN"},
	{"DIALECTSHIFT_MIGRATE__BATCH_SIZE", "Rows per INSERT statement"},
}

// generateCLIDocs writes index.md and one page per visible subcommand.
func generateCLIDocs(outDir string) error {
	log.Printf("Generating CLI docs to %s", outDir)

	if err := os.MkdirAll(outDir, 0750); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	root := cli.NewRootCmd()
	var cmds []*cobra.Command
	for _, c := range root.Commands() {
		if c.IsAvailableCommand() && c.Name() != "help" {
			cmds = append(cmds, c)
		}
	}

	pages := map[string][]byte{"index.md": cliIndex(root, cmds)}
	for _, c := range cmds {
		pages[c.Name()+".md"] = commandPage(c)
	}
	for name, data := range pages {
		if err := os.WriteFile(filepath.Join(outDir, name), data, 0600); err != nil {
			return fmt.Errorf("failed to write %s: %w", name, err)
		}
		log.Printf("  Generated %s", name)
	}
	return nil
}

func cliIndex(root *cobra.Command, cmds []*cobra.Command) []byte {
	w := NewMarkdownWriter()
	w.Frontmatter("CLI Reference", "Command-line interface reference for dialectshift")
	w.GeneratedMarker()

	w.Header(1, "CLI Reference")
	w.Paragraph(root.Long)
	w.CodeBlock("bash", "go install github.com/leapstack-labs/dialectshift/cmd/dialectshift@latest\n"+
		root.Name()+" <command> [options]")

	w.Header(2, "Commands")
	rows := make([][]string, 0, len(cmds))
	for _, c := range cmds {
		rows = append(rows, []string{fmt.Sprintf("[%s](./%s.md)", InlineCode(c.Name()), c.Name()), cleanDescription(c.Short)})
	}
	w.Table([]string{"Command", "Description"}, rows)

	w.Header(2, "Global Options")
	flagTable(w, root.PersistentFlags())

	w.Header(2, "Configuration")
	w.Paragraph(fmt.Sprintf("Settings are read from %s, searched for from the working directory upward. "+
		"Each layer overrides the one before it: defaults, the file, %s environment variables, then flags. "+
		"Nested keys in variable names are joined with %s.",
		InlineCode(config.ConfigFileName), InlineCode(config.EnvPrefix), InlineCode("__")))

	env := make([][]string, 0, len(envVars))
	for _, v := range envVars {
		env = append(env, []string{InlineCode(v[0]), v[1]})
	}
	w.Table([]string{"Variable", "Description"}, env)

	w.Header(2, "Exit Codes")
	w.BulletList([]string{
		InlineCode("0") + ": success, including runs where some files were reported as missing or failed",
		InlineCode("1") + ": the command could not run (bad configuration, unreachable database)",
	})
	return w.Bytes()
}

func commandPage(c *cobra.Command) []byte {
	w := NewMarkdownWriter()
	w.Frontmatter(c.Name(), c.Short)
	w.GeneratedMarker()

	w.Header(1, c.Name())
	if c.Long != "" {
		w.Paragraph(c.Long)
	} else {
		w.Paragraph(c.Short)
	}

	w.Header(2, "Usage")
	w.CodeBlock("bash", strings.TrimSuffix(c.UseLine(), " [flags]"))

	if c.HasLocalFlags() {
		w.Header(2, "Options")
		flagTable(w, c.LocalFlags())
	}
	if c.HasInheritedFlags() {
		w.Header(2, "Global Options")
		flagTable(w, c.InheritedFlags())
	}
	if c.Example != "" {
		w.Header(2, "Examples")
		w.CodeBlock("bash", dedent(c.Example))
	}
	return w.Bytes()
}

// flagTable lists the visible flags of fs.
func flagTable(w *MarkdownWriter, fs *pflag.FlagSet) {
	var rows [][]string
	fs.VisitAll(func(f *pflag.Flag) {
		if f.Hidden {
			return
		}
		name := InlineCode("--" + f.Name)
		if f.Shorthand != "" {
			name += ", " + InlineCode("-"+f.Shorthand)
		}
		def := f.DefValue
		if def != "" && def != "[]" && def != "false" && def != "0" {
			def = InlineCode(def)
		} else {
			def = ""
		}
		rows = append(rows, []string{name, def, cleanDescription(f.Usage)})
	})
	w.Table([]string{"Option", "Default", "Description"}, rows)
}

// dedent strips the indentation shared by every non-blank line.
func dedent(s string) string {
	lines := strings.Split(strings.Trim(s, "\n"), "\n")
	indent := -1
	for _, l := range lines {
		if strings.TrimSpace(l) == "" {
			continue
		}
		n := len(l) - len(strings.TrimLeft(l, " \t"))
		if indent < 0 || n < indent {
			indent = n
		}
	}
	for i, l := range lines {
		if len(l) >= indent && indent > 0 {
			lines[i] = l[indent:]
		}
	}
	return strings.Join(lines, "\n")
}
