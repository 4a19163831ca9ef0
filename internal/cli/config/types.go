// Package config provides configuration management for the dialectshift CLI.
//
// Configuration is layered: built-in defaults, then dialectshift.yaml, then
// DIALECTSHIFT_ environment variables, then command-line flags.
package config

import (
	"strings"

	"github.com/leapstack-labs/dialectshift/internal/migrate"
	"github.com/leapstack-labs/dialectshift/pkg/core"
	"github.com/leapstack-labs/dialectshift/pkg/placeholder"
	"github.com/leapstack-labs/dialectshift/pkg/rewrite"
)

// Config holds all CLI configuration options.
type Config struct {
	RoutesDir    string        `koanf:"routes_dir"`
	Files        []string      `koanf:"files"`
	Workers      int           `koanf:"workers"`
	DryRun       bool          `koanf:"dry_run"`
	Verbose      bool          `koanf:"verbose"`
	OutputFormat string        `koanf:"output"`
	Rewrite      RewriteConfig `koanf:"rewrite"`
	Migrate      MigrateConfig `koanf:"migrate"`

	// ProjectRoot is the directory relative paths are resolved against.
	ProjectRoot string `koanf:"-"`
}

// RewriteConfig holds the options of the rewrite rules.
type RewriteConfig struct {
	Imports       []rewrite.ImportRewrite  `koanf:"imports"`
	Receivers     []string                 `koanf:"receivers"`
	QueryMethod   string                   `koanf:"query_method"`
	ConnectMethod string                   `koanf:"connect_method"`
	ReleaseMethod string                   `koanf:"release_method"`
	Helpers       rewrite.Helpers          `koanf:"helpers"`
	Marker        string                   `koanf:"marker"`
	Disabled      []string                 `koanf:"disabled"`
	Severity      map[string]core.Severity `koanf:"severity"`
}

// MigrateConfig holds the options of the data migrator.
type MigrateConfig struct {
	SQLite    string   `koanf:"sqlite"`
	Postgres  string   `koanf:"postgres"`
	BatchSize int      `koanf:"batch_size"`
	Tables    []string `koanf:"tables"`
}

// Default configuration values.
const (
	DefaultRoutesDir = "server/src/routes"
	DefaultOutput    = "auto" // Auto-detect: TTY=text, non-TTY=markdown
	ConfigFileName   = "dialectshift.yaml"
)

// DefaultFiles are the route files converted when none are configured.
var DefaultFiles = []string{"admin.js", "jobs.js", "email.js", "analytics.js"}

// Default returns the configuration used when nothing else is set.
func Default() *Config {
	opts := rewrite.DefaultOptions()
	return &Config{
		RoutesDir:    DefaultRoutesDir,
		Files:        append([]string(nil), DefaultFiles...),
		OutputFormat: DefaultOutput,
		Rewrite: RewriteConfig{
			Imports:       opts.Imports,
			Receivers:     opts.Receivers,
			QueryMethod:   opts.QueryMethod,
			ConnectMethod: opts.ConnectMethod,
			ReleaseMethod: opts.ReleaseMethod,
			Helpers:       opts.Helpers,
			Marker:        placeholder.Marker,
		},
		Migrate: MigrateConfig{BatchSize: migrate.DefaultBatchSize},
	}
}

// RewriteOptions converts the rewrite section to pipeline options.
func (c *Config) RewriteOptions() rewrite.Options {
	r := c.Rewrite
	overrides := make(map[string]core.Severity, len(r.Severity))
	for id, sev := range r.Severity {
		overrides[strings.ToUpper(id)] = sev
	}
	return rewrite.Options{
		Imports:           r.Imports,
		Receivers:         r.Receivers,
		QueryMethod:       r.QueryMethod,
		ConnectMethod:     r.ConnectMethod,
		ReleaseMethod:     r.ReleaseMethod,
		Helpers:           r.Helpers,
		Marker:            r.Marker,
		Disabled:          r.Disabled,
		SeverityOverrides: overrides,
	}
}

// MigrateOptions converts the migrate section to migrator options.
func (c *Config) MigrateOptions() migrate.Config {
	return migrate.Config{
		SQLitePath:  c.Migrate.SQLite,
		PostgresDSN: c.Migrate.Postgres,
		BatchSize:   c.Migrate.BatchSize,
		Tables:      c.Migrate.Tables,
	}
}
