// Command mementod is the CLI front end for the per-repository memory
// store: it maps each subcommand onto the core add/list/recall/etc.
// functions exposed by the internal packages.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:           "mementod",
	Short:         "Local-first memory store for a coding assistant",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
