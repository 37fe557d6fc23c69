package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Upsert memory items read from standard input",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openRepoStore()
		if err != nil {
			return err
		}
		defer s.Close()

		n, err := s.Import(context.Background(), os.Stdin)
		if err != nil {
			return err
		}
		fmt.Printf("Imported %d items\n", n)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(importCmd)
}
