// Package core defines the shared language of the dialectshift system.
//
// This package contains:
//   - Severity levels attached to rewrite findings
//   - Source positions and spans used by the tokenizer and the rules
//
// The Golden Rule: pkg/core imports only the standard library.
// All other packages depend on core, not the reverse.
package core
