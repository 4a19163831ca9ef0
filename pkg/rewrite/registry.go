package rewrite

import (
	"cmp"
	"fmt"
	"slices"
	"strings"
	"sync"
)

// registry holds every rule registered by an init function. Lookups are
// case-insensitive on the rule ID.
var registry = struct {
	sync.RWMutex
	byID map[string]RuleDef
}{byID: make(map[string]RuleDef)}

// Register adds a rule to the pipeline's rule set. It is meant to be called
// from init functions and panics on a malformed or duplicate rule.
func Register(rule RuleDef) {
	if rule.ID == "" || rule.Apply == nil {
		panic(fmt.Sprintf("rewrite: rule %q registered without an ID or Apply function", rule.Name))
	}
	key := strings.ToUpper(rule.ID)

	registry.Lock()
	defer registry.Unlock()
	if prev, dup := registry.byID[key]; dup {
		panic(fmt.Sprintf("rewrite: rule %s registered twice (%s, %s)", rule.ID, prev.Name, rule.Name))
	}
	registry.byID[key] = rule
}

// All returns every registered rule in pipeline order.
func All() []RuleDef {
	registry.RLock()
	rules := make([]RuleDef, 0, len(registry.byID))
	for _, rule := range registry.byID {
		rules = append(rules, rule)
	}
	registry.RUnlock()

	slices.SortFunc(rules, func(a, b RuleDef) int {
		return cmp.Or(cmp.Compare(a.Order, b.Order), strings.Compare(a.ID, b.ID))
	})
	return rules
}

// GetByID returns a rule by its ID, ignoring case.
func GetByID(id string) (RuleDef, bool) {
	registry.RLock()
	defer registry.RUnlock()
	rule, ok := registry.byID[strings.ToUpper(id)]
	return rule, ok
}
