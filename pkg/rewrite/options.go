package rewrite

import (
	"errors"
	"fmt"
	"strings"

	"github.com/leapstack-labs/dialectshift/pkg/core"
	"github.com/leapstack-labs/dialectshift/pkg/placeholder"
)

// ImportRewrite replaces one exact import statement with another.
type ImportRewrite struct {
	From string `koanf:"from" yaml:"from"`
	To   string `koanf:"to" yaml:"to"`
}

// Helpers names the destination helper functions.
type Helpers struct {
	Get string `koanf:"get" yaml:"get"`
	Run string `koanf:"run" yaml:"run"`
	All string `koanf:"all" yaml:"all"`
}

// Options controls what the rules match and what they emit.
type Options struct {
	Imports       []ImportRewrite // exact import statements to replace
	Receivers     []string        // objects whose query method is converted
	QueryMethod   string          // method executing a statement, "query"
	ConnectMethod string          // method acquiring a dedicated connection, "connect"
	ReleaseMethod string          // method returning the connection, "release"
	Helpers       Helpers
	Marker        string // destination placeholder

	Disabled          []string                 // rule IDs to skip
	SeverityOverrides map[string]core.Severity // rule ID to severity
}

// DefaultOptions returns the options for converting route handlers from a
// node-postgres pool to the get/run/all connection helpers.
func DefaultOptions() Options {
	return Options{
		Imports: []ImportRewrite{{
			From: "const pool = require('../../db');",
			To:   "const { get, run, all } = require('../db/connection');",
		}},
		Receivers:     []string{"pool"},
		QueryMethod:   "query",
		ConnectMethod: "connect",
		ReleaseMethod: "release",
		Helpers:       Helpers{Get: "get", Run: "run", All: "all"},
		Marker:        placeholder.Marker,
	}
}

// Validate checks that the options cannot produce a rewrite that matches
// its own output on the next run.
func (o *Options) Validate() error {
	var errs []error
	for _, imp := range o.Imports {
		switch {
		case strings.TrimSpace(imp.From) == "":
			errs = append(errs, errors.New("import rewrite has an empty source statement"))
		case strings.Contains(imp.To, imp.From):
			errs = append(errs, fmt.Errorf("import rewrite %q contains its own source statement", imp.To))
		}
	}
	if len(o.Receivers) == 0 {
		errs = append(errs, errors.New("at least one query receiver is required"))
	}
	for _, name := range []string{o.QueryMethod, o.ConnectMethod, o.ReleaseMethod, o.Helpers.Get, o.Helpers.Run, o.Helpers.All} {
		if !isIdentifier(name) {
			errs = append(errs, fmt.Errorf("%q is not a valid identifier", name))
		}
	}
	for _, recv := range o.Receivers {
		if !isIdentifier(recv) {
			errs = append(errs, fmt.Errorf("receiver %q is not a valid identifier", recv))
		}
		if recv == o.Helpers.Get || recv == o.Helpers.Run || recv == o.Helpers.All {
			errs = append(errs, fmt.Errorf("receiver %q collides with a helper name", recv))
		}
	}
	if o.Marker == "" || strings.Contains(o.Marker, "$") {
		errs = append(errs, fmt.Errorf("placeholder marker %q must be non-empty and contain no '$'", o.Marker))
	}
	for _, id := range o.Disabled {
		if _, ok := GetByID(id); !ok {
			errs = append(errs, fmt.Errorf("unknown rule %q", id))
		}
	}
	for id, sev := range o.SeverityOverrides {
		rule, ok := GetByID(id)
		switch {
		case !ok:
			errs = append(errs, fmt.Errorf("unknown rule %q in severity overrides", id))
		case rule.Lossy && sev > core.SeverityWarning:
			errs = append(errs, fmt.Errorf("rule %s changes program behavior; its severity cannot be lowered to %s", rule.ID, sev))
		}
	}
	return errors.Join(errs...)
}

// IsDisabled reports whether the rule with the given ID is disabled.
func (o *Options) IsDisabled(id string) bool {
	for _, d := range o.Disabled {
		if strings.EqualFold(d, id) {
			return true
		}
	}
	return false
}

// IsHelper reports whether name is one of the destination helpers.
func (o *Options) IsHelper(name string) bool {
	return name != "" && (name == o.Helpers.Get || name == o.Helpers.Run || name == o.Helpers.All)
}

func isIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		letter := c == '_' || c == '$' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
		if !letter && (i == 0 || c < '0' || c > '9') {
			return false
		}
	}
	return true
}
