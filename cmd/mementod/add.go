package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mementodev/mementod/internal/ingest"
	"github.com/mementodev/mementod/internal/types"
)

var addCmd = &cobra.Command{
	Use:   "add <content>",
	Short: "Create a new memory item",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openRepoStore()
		if err != nil {
			return err
		}
		defer s.Close()

		item := types.New(types.ScopeRepo, types.KindNote, "mementod-cli", args[0])
		res, err := ingest.Add(context.Background(), s, item)
		if err != nil {
			return err
		}
		if res.Blocked {
			return fmt.Errorf("content blocked by redactor: %v", res.Issues)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(addCmd)
}
