package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mementodev/mementod/internal/store"
	"github.com/mementodev/mementod/internal/types"
)

var editCmd = &cobra.Command{
	Use:   "edit <id> <content>",
	Short: "Replace a memory item's content",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openRepoStore()
		if err != nil {
			return err
		}
		defer s.Close()

		ctx := context.Background()
		id, content := args[0], args[1]

		item, err := s.Get(ctx, id)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return fmt.Errorf("memory id not found: %s", id)
			}
			return err
		}
		item.Content = content
		item.UpdatedAt = types.NowRFC3339()
		return s.Update(ctx, item)
	},
}

func init() {
	rootCmd.AddCommand(editCmd)
}
