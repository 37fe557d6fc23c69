package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mementodev/mementod/internal/recall"
	"github.com/mementodev/mementod/internal/types"
)

var recallQuery string

var recallCmd = &cobra.Command{
	Use:   "recall",
	Short: "Print the ranked memory items relevant to a query",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openRepoStore()
		if err != nil {
			return err
		}
		defer s.Close()

		cfg, err := loadRepoConfig()
		if err != nil {
			return err
		}

		rc := recall.Context{
			Now:      types.NowRFC3339(),
			ItemCap:  8,
			TokenCap: 300,
			Weights:  cfg.RecallWeights,
		}
		items, err := recall.Recall(context.Background(), s, recallQuery, rc)
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
	recallCmd.Flags().StringVar(&recallQuery, "for", "", "query text to recall against")
	recallCmd.MarkFlagRequired("for")
	rootCmd.AddCommand(recallCmd)
}
