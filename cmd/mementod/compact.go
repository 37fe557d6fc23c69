package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mementodev/mementod/internal/migrate"
)

var (
	compactInputPath  string
	compactOutputPath string
)

var compactCmd = &cobra.Command{
	Use:   "compact",
	Short: "Deduplicate a jsonl file by record id",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		res, err := migrate.Compact(compactInputPath, compactOutputPath)
		if err != nil {
			return err
		}
		fmt.Printf("Read %d entries, wrote %d entries\n", res.Read, res.Written)
		return nil
	},
}

func init() {
	compactCmd.Flags().StringVar(&compactInputPath, "input", "", "input jsonl file to compact")
	compactCmd.Flags().StringVar(&compactOutputPath, "output", "", "output jsonl file to write results")
	compactCmd.MarkFlagRequired("input")
	compactCmd.MarkFlagRequired("output")
	rootCmd.AddCommand(compactCmd)
}
