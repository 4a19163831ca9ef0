package rules_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/dialectshift/pkg/core"
	"github.com/leapstack-labs/dialectshift/pkg/rewrite"
	_ "github.com/leapstack-labs/dialectshift/pkg/rewrite/rules" // register rules
)

// convert runs the default pipeline over src.
func convert(t *testing.T, src string) rewrite.Outcome {
	t.Helper()
	return convertWith(t, src, func(*rewrite.Options) {})
}

// convertWith runs a pipeline whose options were adjusted by mutate.
func convertWith(t *testing.T, src string, mutate func(*rewrite.Options)) rewrite.Outcome {
	t.Helper()
	opts := rewrite.DefaultOptions()
	mutate(&opts)
	p, err := rewrite.NewPipeline(opts)
	require.NoError(t, err)
	return p.Run(src)
}

// only runs a single rule over src.
func only(t *testing.T, id, src string) rewrite.Outcome {
	t.Helper()
	return convertWith(t, src, func(o *rewrite.Options) {
		for _, r := range rewrite.All() {
			if r.ID != id {
				o.Disabled = append(o.Disabled, r.ID)
			}
		}
	})
}

// findings returns the findings of one rule, optionally filtered by severity.
func findings(out rewrite.Outcome, id string, sev ...core.Severity) []rewrite.Finding {
	var res []rewrite.Finding
	for _, f := range out.Findings {
		if f.RuleID != id {
			continue
		}
		if len(sev) > 0 && f.Severity != sev[0] {
			continue
		}
		res = append(res, f)
	}
	return res
}
