package main

import (
	"context"

	"github.com/spf13/cobra"
)

var rmCmd = &cobra.Command{
	Use:   "rm <id>",
	Short: "Delete a memory item (idempotent)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openRepoStore()
		if err != nil {
			return err
		}
		defer s.Close()
		return s.Delete(context.Background(), args[0])
	},
}

func init() {
	rootCmd.AddCommand(rmCmd)
}
