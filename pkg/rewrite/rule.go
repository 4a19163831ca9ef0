package rewrite

import "github.com/leapstack-labs/dialectshift/pkg/core"

// RuleDef is a data-driven rewrite rule definition.
// Rules are stateless - all context comes via the Context passed to Apply.
type RuleDef struct {
	ID          string        // Unique identifier, e.g., "DS01"
	Name        string        // Human-readable name, e.g., "imports.helpers"
	Group       string        // Category, e.g., "calls", "results", "sql"
	Description string        // Human-readable description
	Order       int           // Position in the pipeline, ascending
	Severity    core.Severity // Default severity of the rule's findings
	Lossy       bool          // The rewrite narrows program behavior
	Apply       ApplyFunc     // The rewrite function

	// Documentation fields
	Rationale   string // Why the rewrite is needed
	BadExample  string // Code before the rewrite
	GoodExample string // Code after the rewrite
}

// ApplyFunc inspects ctx.File and records edits and findings on ctx.
type ApplyFunc func(ctx *Context)

// Info returns the documentation metadata of the rule.
func (r RuleDef) Info() core.RuleInfo {
	return core.RuleInfo{
		ID:              r.ID,
		Name:            r.Name,
		Group:           r.Group,
		Order:           r.Order,
		Description:     r.Description,
		DefaultSeverity: r.Severity,
		Lossy:           r.Lossy,
		Rationale:       r.Rationale,
		Before:          r.BadExample,
		After:           r.GoodExample,
	}
}
