package config

import (
	"fmt"

	"github.com/leapstack-labs/dialectshift/internal/cli/output"
	_ "github.com/leapstack-labs/dialectshift/pkg/rewrite/rules" // register rules
)

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.RoutesDir == "" {
		return fmt.Errorf("routes_dir is required")
	}
	if c.Workers < 0 {
		return fmt.Errorf("workers must not be negative, got %d", c.Workers)
	}
	if c.Migrate.BatchSize < 0 {
		return fmt.Errorf("migrate.batch_size must not be negative, got %d", c.Migrate.BatchSize)
	}
	if _, err := output.ParseMode(c.OutputFormat); err != nil {
		return err
	}
	opts := c.RewriteOptions()
	if err := opts.Validate(); err != nil {
		return fmt.Errorf("invalid rewrite configuration: %w", err)
	}
	return nil
}
