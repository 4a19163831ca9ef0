package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewVersionCommand creates the version command.
func NewVersionCommand(version string) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Long:  `Display dialectshift version and build information.`,
		Run: func(cmd *cobra.Command, _ []string) {
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "dialectshift v%s\n", version)
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Rewrites pg pool.query call sites for the sqlite get/run/all helpers")
		},
	}
}
