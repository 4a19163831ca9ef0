// Package rules contains the rewrite rules.
// Import this package to register all rules with the rewrite registry.
//
// Rules are automatically registered via init() functions when this package is imported:
//
//	import _ "github.com/leapstack-labs/dialectshift/pkg/rewrite/rules"
//
// Rules run in a fixed order; later rules assume the canonical forms the
// earlier ones produce:
//   - DS01: Import - Replace the pool import with the helper import
//   - DS02: Returning - INSERT/UPDATE/DELETE ... RETURNING becomes run()
//   - DS03: Single Row - Query plus rows[0] unwrap becomes get()
//   - DS04: Calls - Remaining query calls become all() or run()
//   - DS05: Result Shape - .rows and .rowCount follow the helper's result
//   - DS06: Placeholders - $1..$N become ?
//   - DS07: ILIKE - ILIKE becomes LIKE
//   - DS08: Transactions - Explicit transaction scaffolding is removed
//   - DS09: Counters - Running placeholder counters are removed
package rules
