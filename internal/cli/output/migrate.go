package output

import (
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/leapstack-labs/dialectshift/internal/migrate"
)

// MigrateSummary renders the result of a data migration.
func (r *Renderer) MigrateSummary(s *migrate.Summary) error {
	if r.EffectiveMode() == ModeJSON {
		return r.JSON(s)
	}

	t := table.NewWriter()
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Table", "Columns", "Rows"})
	for _, ts := range s.Tables {
		t.AppendRow(table.Row{ts.Name, len(ts.Columns), ts.Rows})
	}
	t.AppendFooter(table.Row{"total", "", s.Rows()})

	if r.EffectiveMode() == ModeMarkdown {
		r.Println("# Migration Summary")
		r.Println("")
		r.Println(t.RenderMarkdown())
		return nil
	}
	r.Println(t.Render())
	r.Success(fmt.Sprintf("migrated %d tables, %d rows in %s", len(s.Tables), s.Rows(), s.Duration.Round(1e6)))
	return nil
}
