// Package main provides the dialectshift command-line tool.
package main

import (
	"os"

	"github.com/leapstack-labs/dialectshift/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
