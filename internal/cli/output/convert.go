package output

import (
	"fmt"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/leapstack-labs/dialectshift/internal/driver"
	"github.com/leapstack-labs/dialectshift/pkg/core"
)

// ConvertOutput is the JSON form of a conversion run.
type ConvertOutput struct {
	Report  *driver.Report `json:"report"`
	Summary driver.Summary `json:"summary"`
}

// ConvertReport renders the result of a conversion run. Info and hint
// findings are only shown when verbose is set.
func (r *Renderer) ConvertReport(rep *driver.Report, verbose bool) error {
	switch r.EffectiveMode() {
	case ModeJSON:
		return r.JSON(ConvertOutput{Report: rep, Summary: rep.Summary()})
	case ModeMarkdown:
		r.convertMarkdown(rep, verbose)
	default:
		r.convertText(rep, verbose)
	}
	return nil
}

func (r *Renderer) convertText(rep *driver.Report, verbose bool) {
	styles := r.Styles()

	verb := "Converted"
	if rep.DryRun {
		verb = "Dry run over"
	}
	r.Println(styles.Header1.Render(fmt.Sprintf("%s %d files in %s", verb, len(rep.Files), rep.Dir)))
	r.Println("")

	width := 0
	for _, f := range rep.Files {
		width = max(width, len(f.Name))
	}

	for _, f := range rep.Files {
		line := fmt.Sprintf("%s %-*s  %s", r.statusIcon(f.Status), width, f.Name, f.Status)
		if len(f.Applied) > 0 {
			line += styles.Muted.Render(" (" + strings.Join(f.Applied, ", ") + ")")
		}
		if f.Error != "" {
			line += ": " + styles.Error.Render(f.Error)
		}
		r.Println(line)

		for _, fd := range f.Findings {
			if !verbose && fd.Severity > core.SeverityWarning {
				continue
			}
			r.Printf("    %s %s %s %s\n",
				styles.Muted.Render(fd.Pos.String()),
				styles.Severity(fd.Severity).Render(fd.Severity.String()),
				styles.Muted.Render("["+fd.RuleID+"]"),
				fd.Message)
		}
		if f.Diff != "" {
			r.Println("")
			for _, l := range strings.Split(strings.TrimRight(f.Diff, "\n"), "\n") {
				r.Println("    " + r.diffLine(l))
			}
			r.Println("")
		}
	}

	r.Println("")
	r.Println(summaryTable(rep).Render())
	r.Println(styles.Muted.Render(fmt.Sprintf("run %s in %s", rep.RunID, rep.Duration.Round(1e6))))
}

func (r *Renderer) convertMarkdown(rep *driver.Report, verbose bool) {
	r.Println("# Conversion Report")
	r.Println("")
	r.Printf("- **Directory**: %s\n", rep.Dir)
	r.Printf("- **Run**: %s\n", rep.RunID)
	if rep.DryRun {
		r.Println("- **Dry run**: no files written")
	}
	r.Println("")

	r.Println("## Files")
	r.Println("")
	r.Println("| File | Status | Rules | Findings |")
	r.Println("| --- | --- | --- | --- |")
	for _, f := range rep.Files {
		r.Printf("| %s | %s | %s | %d |\n", f.Name, f.Status, strings.Join(f.Applied, ", "), len(f.Findings))
	}
	r.Println("")

	for _, f := range rep.Files {
		var lines []string
		for _, fd := range f.Findings {
			if !verbose && fd.Severity > core.SeverityWarning {
				continue
			}
			lines = append(lines, fmt.Sprintf("- `%s` **%s** [%s] %s", fd.Pos, fd.Severity, fd.RuleID, fd.Message))
		}
		if f.Error == "" && len(lines) == 0 && f.Diff == "" {
			continue
		}
		r.Println("## " + f.Name)
		r.Println("")
		if f.Error != "" {
			r.Println("> " + f.Error)
			r.Println("")
		}
		for _, l := range lines {
			r.Println(l)
		}
		if len(lines) > 0 {
			r.Println("")
		}
		if f.Diff != "" {
			r.Println("```diff")
			r.Println(strings.TrimRight(f.Diff, "\n"))
			r.Println("```")
			r.Println("")
		}
	}

	r.Println("## Summary")
	r.Println("")
	r.Println(summaryTable(rep).RenderMarkdown())
}

func (r *Renderer) statusIcon(s driver.Status) string {
	styles := r.Styles()
	switch s {
	case driver.StatusConverted:
		return styles.StatusSuccess.String()
	case driver.StatusConvertedWithWarnings:
		return styles.StatusWarning.String()
	case driver.StatusFailed, driver.StatusMissing:
		return styles.StatusFailed.String()
	default:
		return styles.StatusSkipped.String()
	}
}

func (r *Renderer) diffLine(l string) string {
	styles := r.Styles()
	switch {
	case strings.HasPrefix(l, "+++"), strings.HasPrefix(l, "---"):
		return styles.Bold.Render(l)
	case strings.HasPrefix(l, "+"):
		return styles.Success.Render(l)
	case strings.HasPrefix(l, "-"):
		return styles.Error.Render(l)
	case strings.HasPrefix(l, "@@"):
		return styles.Info.Render(l)
	default:
		return l
	}
}

func summaryTable(rep *driver.Report) table.Writer {
	s := rep.Summary()
	warnings, infos := 0, 0
	for _, f := range rep.Files {
		warnings += f.Count(core.SeverityWarning) + f.Count(core.SeverityError)
		infos += f.Count(core.SeverityInfo)
	}

	t := table.NewWriter()
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Status", "Files"})
	t.AppendRows([]table.Row{
		{driver.StatusConverted, s.Converted},
		{driver.StatusConvertedWithWarnings, s.ConvertedWithWarnings},
		{driver.StatusSkipped, s.Skipped},
		{driver.StatusMissing, s.Missing},
		{driver.StatusFailed, s.Failed},
	})
	t.AppendFooter(table.Row{"findings", fmt.Sprintf("%d warnings, %d info", warnings, infos)})
	return t
}
