package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mementodev/mementod/internal/store"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "Print the content of every memory item",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openRepoStore()
		if err != nil {
			return err
		}
		defer s.Close()

		items, err := s.List(context.Background(), store.ListFilter{})
		if err != nil {
			return err
		}
		for _, it := range items {
			fmt.Println(it.Content)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(listCmd)
}
