package rules

import (
	"strings"

	"github.com/leapstack-labs/dialectshift/pkg/core"
	"github.com/leapstack-labs/dialectshift/pkg/rewrite"
)

func init() {
	rewrite.Register(ImportHelpers)
}

// ImportHelpers replaces the pool import with the helper import.
var ImportHelpers = rewrite.RuleDef{
	ID:          "DS01",
	Name:        "imports.helpers",
	Group:       "imports",
	Description: "Replace the connection pool import with the query helper import.",
	Order:       10,
	Severity:    core.SeverityInfo,
	Apply:       applyImportHelpers,

	Rationale: `Converted handlers call get, run and all instead of pool.query, so the
module they come from must be imported in place of the pool. Only the exact
statements listed in the configuration are replaced.`,

	BadExample: `const pool = require('../../db');`,

	GoodExample: `const { get, run, all } = require('../db/connection');`,
}

func applyImportHelpers(ctx *rewrite.Context) {
	f := ctx.File
	for _, imp := range ctx.Options.Imports {
		for off := 0; off < len(f.Src); {
			idx := strings.Index(f.Src[off:], imp.From)
			if idx < 0 {
				break
			}
			start := off + idx
			off = start + len(imp.From)
			// Text inside comments and string literals is not an import.
			if f.IndexAt(start) < 0 {
				continue
			}
			ctx.Replace(start, off, imp.To)
		}
	}
}
