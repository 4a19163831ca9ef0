// Package rewrite converts database calls written for a pooled client with
// numbered placeholders into calls to single-connection helper functions.
//
// A conversion is an ordered list of rules. Each rule scans the whole file,
// records edits and findings through a Context, and hands the edited text
// to the next rule. Rules register themselves from the rules subpackage:
//
//	import _ "github.com/leapstack-labs/dialectshift/pkg/rewrite/rules"
//
// Findings flag everything a rule could not convert safely and every
// conversion that changes behavior, so a human can review the result.
package rewrite
